// Package dailycounter provides the interface for daily activity counter persistence
package dailycounter

//go:generate mockgen -destination=mock/mock_repository.go -package=dailycountermock github.com/KirkDiggler/guild-progression/internal/repositories/daily_counter Repository

import (
	"context"

	"github.com/KirkDiggler/guild-progression/internal/entities/progression"
)

// Repository stores one counter record per participant
type Repository interface {
	// Get retrieves the counters of a participant
	// Returns errors.InvalidArgument for an empty id or a malformed stored record
	// Returns errors.NotFound if no counters exist
	// Returns errors.Internal for storage failures
	Get(ctx context.Context, input GetInput) (*GetOutput, error)

	// Save writes the record, replacing any previous one
	// Returns errors.InvalidArgument when the record has no dcId
	// Returns errors.Internal for storage failures
	Save(ctx context.Context, input SaveInput) (*SaveOutput, error)

	// ListAll retrieves every counter record. Records that cannot be decoded
	// are reported in Failed instead of failing the call.
	// Returns errors.Internal for storage failures
	ListAll(ctx context.Context, input ListAllInput) (*ListAllOutput, error)
}

// GetInput defines the input for getting counters
type GetInput struct {
	DcID string
}

// GetOutput defines the output for getting counters
type GetOutput struct {
	Record *progression.DailyCounterRecord
}

// SaveInput defines the input for saving counters
type SaveInput struct {
	Record *progression.DailyCounterRecord
}

// SaveOutput defines the output for saving counters
type SaveOutput struct {
	Record *progression.DailyCounterRecord
}

// ListAllInput defines the input for listing every counter record
type ListAllInput struct{}

// ListAllOutput defines the output for listing every counter record
type ListAllOutput struct {
	Records []*progression.DailyCounterRecord
	// Failed maps the participant id of each unreadable record to its error
	Failed map[string]error
}

const (
	errDcIDEmpty = "dc ID cannot be empty"
	errRecordNil = "daily counter record cannot be nil"
)

func recordDcID(rec *progression.DailyCounterRecord) string {
	if rec == nil || rec.DcID == nil {
		return ""
	}
	return *rec.DcID
}
