// Package builders provides test data builders for creating test fixtures
package builders

import (
	"github.com/KirkDiggler/guild-progression/internal/entities/progression"
)

// PlayerRecordBuilder provides a fluent interface for building PlayerRecord instances
type PlayerRecordBuilder struct {
	rec *progression.PlayerRecord
}

// NewPlayerRecordBuilder creates a builder for a level 1 member with empty balances
func NewPlayerRecordBuilder() *PlayerRecordBuilder {
	return &PlayerRecordBuilder{
		rec: &progression.PlayerRecord{
			DcID:    "dc-test-001",
			DcTag:   "tester#0001",
			GuildID: "guild-test-001",
			Role:    progression.RoleMember,
			Level:   1,
			Currencies: map[progression.Currency]int64{
				progression.CurrencySilverCoin: 0,
				progression.CurrencyRoyalPoint: 0,
			},
		},
	}
}

// WithIdentity sets the guild and participant ids
func (b *PlayerRecordBuilder) WithIdentity(guildID, dcID string) *PlayerRecordBuilder {
	b.rec.GuildID = guildID
	b.rec.DcID = dcID
	return b
}

// WithDcTag sets the display tag
func (b *PlayerRecordBuilder) WithDcTag(tag string) *PlayerRecordBuilder {
	b.rec.DcTag = tag
	return b
}

// WithRole sets the role
func (b *PlayerRecordBuilder) WithRole(role progression.Role) *PlayerRecordBuilder {
	b.rec.Role = role
	return b
}

// WithExp sets experience and the level it implies
func (b *PlayerRecordBuilder) WithExp(exp int64) *PlayerRecordBuilder {
	b.rec.Exp = exp
	b.rec.Level, _ = progression.LevelForExperience(exp)
	return b
}

// WithTask puts a task in the slot
func (b *PlayerRecordBuilder) WithTask(taskID string) *PlayerRecordBuilder {
	b.rec.CurrentTaskID = &taskID
	return b
}

// WithBalance sets one currency balance
func (b *PlayerRecordBuilder) WithBalance(code progression.Currency, amount int64) *PlayerRecordBuilder {
	b.rec.Currencies[code] = amount
	return b
}

// Build returns the record
func (b *PlayerRecordBuilder) Build() *progression.PlayerRecord {
	return b.rec
}
