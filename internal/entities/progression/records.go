package progression

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/KirkDiggler/guild-progression/internal/errors"
)

// PlayerRecord is the persisted shape of a Player. Level is written for
// readers of the store but is never trusted on load.
type PlayerRecord struct {
	DcID          string             `json:"dcId"`
	DcTag         string             `json:"dcTag"`
	GuildID       string             `json:"guildId"`
	Role          Role               `json:"role"`
	Level         int32              `json:"level"`
	Exp           int64              `json:"exp"`
	CurrentTaskID *string            `json:"currentTaskId"`
	Currencies    map[Currency]int64 `json:"currencies"`
}

// Validate checks that the record can be loaded into a Player
func (r *PlayerRecord) Validate() error {
	if r == nil {
		return errors.InvalidArgument("player record cannot be nil")
	}

	vb := errors.NewValidationBuilder()
	ValidateIdentity("guildId", r.GuildID, "dcId", r.DcID, vb)
	errors.ValidateNonNegative("exp", r.Exp, vb)
	if r.CurrentTaskID != nil && *r.CurrentTaskID == "" {
		vb.Field("currentTaskId", "must be null or a task id")
	}
	for code, balance := range r.Currencies {
		if !IsKnownCurrency(code) {
			vb.Fieldf("currencies", "unknown currency %q", string(code))
			continue
		}
		errors.ValidateNonNegative("currencies."+string(code), balance, vb)
	}
	return vb.Build()
}

// DailyCounterRecord is the persisted shape of a DailyCounter
type DailyCounterRecord struct {
	DcID                  *string   `json:"dcId"`
	DcTag                 *string   `json:"dcTag"`
	TextChatDailyCounter  int64     `json:"textChatDailyCounter"`
	VoiceChatDailyCounter int64     `json:"voiceChatDailyCounter"`
	LastResetTime         Timestamp `json:"lastResetTime"`
}

// Timestamp is a nullable instant that decodes from an ISO-8601 string or
// an epoch number in milliseconds and encodes as RFC 3339 in UTC. Strings
// without a zone, including date-only strings, are read as UTC.
type Timestamp struct {
	Time  time.Time
	Valid bool
}

// NewTimestamp wraps t as a valid Timestamp
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t, Valid: true}
}

// Ptr returns the instant or nil when the timestamp is null
func (t Timestamp) Ptr() *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

// MarshalJSON implements json.Marshaler
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if !t.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(t.Time.UTC().Format(time.RFC3339Nano))
}

// UnmarshalJSON implements json.Unmarshaler
// ISO-8601 forms accepted when decoding, most specific first
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	time.DateOnly,
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*t = Timestamp{}
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return errors.Wrap(err, "failed to decode lastResetTime")
		}
		if s == "" {
			*t = Timestamp{}
			return nil
		}
		for _, layout := range timestampLayouts {
			if parsed, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
				*t = NewTimestamp(parsed)
				return nil
			}
		}
		return errors.InvalidArgumentf("lastResetTime %q is not an ISO-8601 timestamp", s)
	}

	var millis json.Number
	if err := json.Unmarshal(data, &millis); err != nil {
		return errors.InvalidArgumentf("lastResetTime %s is neither a string nor a number", string(data))
	}
	ms, err := millis.Int64()
	if err != nil {
		f, ferr := millis.Float64()
		if ferr != nil {
			return errors.InvalidArgumentf("lastResetTime %s is not an epoch timestamp", string(data))
		}
		ms = int64(f)
	}
	*t = NewTimestamp(time.UnixMilli(ms).UTC())
	return nil
}
