package progression

import (
	"time"

	"github.com/KirkDiggler/guild-progression/internal/errors"
)

// DailyCounter holds one participant's activity counters for the current day,
// independent of guild.
type DailyCounter struct {
	DcID                  *string
	DcTag                 *string
	TextChatDailyCounter  int64
	VoiceChatDailyCounter int64
	LastResetTime         *time.Time
}

// NewDailyCounter creates zeroed counters stamped with now
func NewDailyCounter(now time.Time) *DailyCounter {
	c := &DailyCounter{}
	c.ResetDaily(now)
	return c
}

// DailyCounterFromRecord builds a DailyCounter from a stored record
func DailyCounterFromRecord(rec *DailyCounterRecord) (*DailyCounter, error) {
	c := &DailyCounter{}
	if err := c.Load(rec); err != nil {
		return nil, err
	}
	return c, nil
}

// SetDcID sets the participant id
func (c *DailyCounter) SetDcID(dcID string) {
	c.DcID = &dcID
}

// SetDcTag sets the display tag
func (c *DailyCounter) SetDcTag(dcTag string) {
	c.DcTag = &dcTag
}

// ResetDaily zeroes both counters and records now as the reset time
func (c *DailyCounter) ResetDaily(now time.Time) {
	c.LastResetTime = &now
	c.ResetAll()
}

// IncrementText adds n to the text counter
func (c *DailyCounter) IncrementText(n int64) {
	c.TextChatDailyCounter += n
}

// IncrementVoice adds n to the voice counter
func (c *DailyCounter) IncrementVoice(n int64) {
	c.VoiceChatDailyCounter += n
}

// DecrementText subtracts one from the text counter.
// There is no floor; the counter can go negative.
func (c *DailyCounter) DecrementText() {
	c.TextChatDailyCounter--
}

// ResetText zeroes the text counter
func (c *DailyCounter) ResetText() {
	c.TextChatDailyCounter = 0
}

// ResetVoice zeroes the voice counter
func (c *DailyCounter) ResetVoice() {
	c.VoiceChatDailyCounter = 0
}

// ResetAll zeroes both counters without touching LastResetTime
func (c *DailyCounter) ResetAll() {
	c.ResetText()
	c.ResetVoice()
}

// Snapshot copies the counters into a store record
func (c *DailyCounter) Snapshot() *DailyCounterRecord {
	rec := &DailyCounterRecord{
		DcID:                  copyString(c.DcID),
		DcTag:                 copyString(c.DcTag),
		TextChatDailyCounter:  c.TextChatDailyCounter,
		VoiceChatDailyCounter: c.VoiceChatDailyCounter,
	}
	if c.LastResetTime != nil {
		rec.LastResetTime = NewTimestamp(*c.LastResetTime)
	}
	return rec
}

// Load replaces every attribute with the record's
func (c *DailyCounter) Load(rec *DailyCounterRecord) error {
	if rec == nil {
		return errors.InvalidArgument("daily counter record cannot be nil")
	}
	c.DcID = copyString(rec.DcID)
	c.DcTag = copyString(rec.DcTag)
	c.TextChatDailyCounter = rec.TextChatDailyCounter
	c.VoiceChatDailyCounter = rec.VoiceChatDailyCounter
	c.LastResetTime = rec.LastResetTime.Ptr()
	return nil
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
