package testutils

import (
	"time"

	"github.com/KirkDiggler/guild-progression/internal/entities/progression"
)

// Shared identities for tests
const (
	TestGuildID = "guild-test-001"
	TestDcID    = "dc-test-001"
	TestDcTag   = "tester#0001"
)

// TestNow is a fixed instant for clock-dependent tests
var TestNow = time.Date(2024, time.March, 14, 15, 9, 26, 0, time.UTC)

// CreateTestPlayerRecord returns a fresh level 1 record
func CreateTestPlayerRecord() *progression.PlayerRecord {
	return progression.NewPlayer(TestDcID, TestDcTag, TestGuildID).Snapshot()
}

// CreateTestDailyCounterRecord returns zeroed counters reset at TestNow
func CreateTestDailyCounterRecord(dcID string) *progression.DailyCounterRecord {
	c := progression.NewDailyCounter(TestNow)
	c.SetDcID(dcID)
	c.SetDcTag(TestDcTag)
	return c.Snapshot()
}
