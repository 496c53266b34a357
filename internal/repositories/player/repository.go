// Package player provides the interface for player persistence
package player

//go:generate mockgen -destination=mock/mock_repository.go -package=playermock github.com/KirkDiggler/guild-progression/internal/repositories/player Repository

import (
	"context"

	"github.com/KirkDiggler/guild-progression/internal/entities/progression"
)

// Repository stores one record per (guild, participant)
type Repository interface {
	// Get retrieves a player record
	// Returns errors.InvalidArgument for empty ids or a malformed stored record
	// Returns errors.NotFound if the player doesn't exist
	// Returns errors.Internal for storage failures
	Get(ctx context.Context, input GetInput) (*GetOutput, error)

	// Save writes the record, replacing any previous one
	// Returns errors.InvalidArgument for validation failures
	// Returns errors.Internal for storage failures
	Save(ctx context.Context, input SaveInput) (*SaveOutput, error)

	// Delete removes a player record
	// Returns errors.InvalidArgument for empty ids
	// Returns errors.NotFound if the player doesn't exist
	// Returns errors.Internal for storage failures
	Delete(ctx context.Context, input DeleteInput) (*DeleteOutput, error)

	// ListByGuild retrieves every player of a guild. Records that cannot be
	// decoded are reported in Failed instead of failing the call.
	// Returns errors.InvalidArgument for an empty guild id
	// Returns errors.Internal for storage failures
	ListByGuild(ctx context.Context, input ListByGuildInput) (*ListByGuildOutput, error)

	// ListGuilds returns the ids of every guild with at least one stored
	// player, sorted
	// Returns errors.Internal for storage failures
	ListGuilds(ctx context.Context, input ListGuildsInput) (*ListGuildsOutput, error)
}

// GetInput defines the input for getting a player
type GetInput struct {
	GuildID string
	DcID    string
}

// GetOutput defines the output for getting a player
type GetOutput struct {
	Record *progression.PlayerRecord
}

// SaveInput defines the input for saving a player
type SaveInput struct {
	Record *progression.PlayerRecord
}

// SaveOutput defines the output for saving a player
type SaveOutput struct {
	Record *progression.PlayerRecord
}

// DeleteInput defines the input for deleting a player
type DeleteInput struct {
	GuildID string
	DcID    string
}

// DeleteOutput defines the output for deleting a player
type DeleteOutput struct{}

// ListByGuildInput defines the input for listing a guild's players
type ListByGuildInput struct {
	GuildID string
}

// ListByGuildOutput defines the output for listing a guild's players
type ListByGuildOutput struct {
	Records []*progression.PlayerRecord
	// Failed maps the participant id of each unreadable record to its error
	Failed map[string]error
}

// ListGuildsInput defines the input for listing guilds
type ListGuildsInput struct{}

// ListGuildsOutput defines the output for listing guilds
type ListGuildsOutput struct {
	GuildIDs []string
}

const (
	errGuildIDEmpty = "guild ID cannot be empty"
	errDcIDEmpty    = "dc ID cannot be empty"
	errRecordNil    = "player record cannot be nil"
)
