package progression

import (
	entities "github.com/KirkDiggler/guild-progression/internal/entities/progression"
	"github.com/KirkDiggler/guild-progression/internal/presentation"
)

// GetOrCreatePlayerInput defines the request for loading a player
type GetOrCreatePlayerInput struct {
	GuildID string
	DcID    string
	// DcTag replaces the stored tag when it differs; empty keeps it
	DcTag string
	// Role applies only when the player is created; nil means member
	Role *entities.Role
}

// GetOrCreatePlayerOutput defines the response for loading a player
type GetOrCreatePlayerOutput struct {
	Player  *entities.Player
	Created bool
}

// GrantExperienceInput defines the request for adding experience
type GrantExperienceInput struct {
	GuildID string
	DcID    string
	DcTag   string
	// Amount may be negative; experience never drops below zero
	Amount int64
}

// GrantExperienceOutput defines the response for adding experience
type GrantExperienceOutput struct {
	Player       *entities.Player
	LevelsGained int32
}

// UpdateCurrencyInput defines the request for changing a balance
type UpdateCurrencyInput struct {
	GuildID  string
	DcID     string
	Currency entities.Currency
	Amount   int64
}

// UpdateCurrencyOutput defines the response for changing a balance
type UpdateCurrencyOutput struct {
	Player  *entities.Player
	Balance int64
}

// AcceptTaskInput defines the request for taking a task
type AcceptTaskInput struct {
	GuildID string
	DcID    string
	TaskID  string
}

// AcceptTaskOutput defines the response for taking a task
type AcceptTaskOutput struct {
	Player *entities.Player
}

// CompleteTaskInput defines the request for finishing the active task
type CompleteTaskInput struct {
	GuildID string
	DcID    string
	Tier    entities.RewardTier
}

// CompleteTaskOutput defines the response for finishing the active task
type CompleteTaskOutput struct {
	Player       *entities.Player
	TaskID       string
	ExpAwarded   int64
	CoinsAwarded int64
	LevelsGained int32
}

// AbandonTaskInput defines the request for dropping the active task
type AbandonTaskInput struct {
	GuildID string
	DcID    string
}

// AbandonTaskOutput defines the response for dropping the active task
type AbandonTaskOutput struct {
	Player *entities.Player
	TaskID string
}

// UpdateRoleInput defines the request for changing a role
type UpdateRoleInput struct {
	GuildID string
	DcID    string
	Role    entities.Role
}

// UpdateRoleOutput defines the response for changing a role
type UpdateRoleOutput struct {
	Player *entities.Player
}

// GetProfileInput defines the request for a profile
type GetProfileInput struct {
	GuildID string
	DcID    string
}

// GetProfileOutput defines the response for a profile
type GetProfileOutput struct {
	Profile *presentation.ProfileView
}

// LeaderboardInput defines the request for a guild ranking
type LeaderboardInput struct {
	GuildID string
	// Limit caps the entries returned; 0 means DefaultLeaderboardLimit
	Limit int32
}

// LeaderboardEntry is one ranked player
type LeaderboardEntry struct {
	Position int32
	DcID     string
	DcTag    string
	Level    int32
	Exp      int64
}

// LeaderboardOutput defines the response for a guild ranking
type LeaderboardOutput struct {
	Entries []*LeaderboardEntry
	// Skipped counts stored records that could not be read
	Skipped int32
}
