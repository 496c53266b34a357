package activity

import (
	"time"

	entities "github.com/KirkDiggler/guild-progression/internal/entities/progression"
)

// RecordInput defines the request for adding activity
type RecordInput struct {
	DcID  string
	DcTag string
	// Amount is messages for text and minutes for voice; must be positive
	Amount int64
}

// RecordOutput defines the response for adding activity
type RecordOutput struct {
	Counter *entities.DailyCounter
	Created bool
}

// RetractTextInput defines the request for taking back one message
type RetractTextInput struct {
	DcID string
}

// RetractTextOutput defines the response for taking back one message
type RetractTextOutput struct {
	Counter *entities.DailyCounter
}

// GetCounterInput defines the request for reading counters
type GetCounterInput struct {
	DcID string
}

// GetCounterOutput defines the response for reading counters
type GetCounterOutput struct {
	Counter *entities.DailyCounter
}

// ResetDailyInput defines the request for the daily reset
type ResetDailyInput struct{}

// ResetDailyOutput summarizes one reset run
type ResetDailyOutput struct {
	RunID   string
	ResetAt time.Time
	Reset   int
	// Failed maps each participant id that could not be reset to its error
	Failed map[string]error
}
