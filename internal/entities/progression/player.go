package progression

import (
	"fmt"
	"math"
	"strings"

	"github.com/KirkDiggler/rpg-toolkit/core"

	"github.com/KirkDiggler/guild-progression/internal/errors"
)

// Rejection reasons returned by Player operations
const (
	ReasonTaskAlreadyAssigned = "task_already_assigned"
	ReasonNoActiveTask        = "no_active_task"
	ReasonUnknownCurrency     = "unknown_currency"
	ReasonInsufficientBalance = "insufficient_balance"
)

// EntityTypePlayer is the entity type reported to the event bus
const EntityTypePlayer = "player"

var _ core.Entity = (*Player)(nil)

// Player is one participant's standing within one guild.
//
// Level and ExpCurrentLevel are derived from Exp and are recomputed on every
// experience change and on load. A Player has no internal locking; callers
// serialize mutations per (guild, participant).
type Player struct {
	dcID    string
	guildID string

	DcTag string
	Role  Role

	exp             int64
	level           int32
	expCurrentLevel int64
	currentTaskID   *string
	currencies      map[Currency]int64
}

// PlayerOption customizes a new Player
type PlayerOption func(*Player)

// WithRole sets the initial role
func WithRole(role Role) PlayerOption {
	return func(p *Player) {
		p.Role = role
	}
}

// NewPlayer creates a level 1 player with no task and empty balances
func NewPlayer(dcID, dcTag, guildID string, opts ...PlayerOption) *Player {
	p := &Player{
		dcID:       dcID,
		guildID:    guildID,
		DcTag:      dcTag,
		Role:       RoleMember,
		level:      1,
		currencies: zeroBalances(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// PlayerFromRecord builds a Player from a stored record
func PlayerFromRecord(rec *PlayerRecord) (*Player, error) {
	if err := rec.Validate(); err != nil {
		return nil, err
	}
	p := NewPlayer(rec.DcID, rec.DcTag, rec.GuildID)
	if err := p.Load(rec); err != nil {
		return nil, err
	}
	return p, nil
}

// DcID returns the participant id
func (p *Player) DcID() string { return p.dcID }

// GuildID returns the guild id
func (p *Player) GuildID() string { return p.guildID }

// Key identifies the player across guilds
func (p *Player) Key() string {
	return PlayerKey(p.guildID, p.dcID)
}

// KeySeparator joins the guild and participant ids in PlayerKey. Neither id
// may contain it.
const KeySeparator = ":"

// PlayerKey builds the key a player is serialized under
func PlayerKey(guildID, dcID string) string {
	return guildID + KeySeparator + dcID
}

// ValidateIdentity records missing ids, and ids that would make PlayerKey
// ambiguous, under the given field names
func ValidateIdentity(guildField, guildID, dcField, dcID string, vb *errors.ValidationBuilder) {
	errors.ValidateRequired(guildField, guildID, vb)
	errors.ValidateRequired(dcField, dcID, vb)
	if strings.Contains(guildID, KeySeparator) {
		vb.Fieldf(guildField, "must not contain %q", KeySeparator)
	}
	if strings.Contains(dcID, KeySeparator) {
		vb.Fieldf(dcField, "must not contain %q", KeySeparator)
	}
}

// Exp returns the cumulative experience
func (p *Player) Exp() int64 { return p.exp }

// Level returns the level derived from experience
func (p *Player) Level() int32 { return p.level }

// ExpCurrentLevel returns the experience accrued inside the current level
func (p *Player) ExpCurrentLevel() int64 { return p.expCurrentLevel }

// CurrentTaskID returns the active task id, if any
func (p *Player) CurrentTaskID() (string, bool) {
	if p.currentTaskID == nil {
		return "", false
	}
	return *p.currentTaskID, true
}

// GetID implements core.Entity
func (p *Player) GetID() string { return p.Key() }

// GetType implements core.Entity
func (p *Player) GetType() string { return EntityTypePlayer }

// HasTask reports whether a task currently occupies the slot
func (p *Player) HasTask() bool {
	return p.currentTaskID != nil
}

// AcceptTask puts taskID in the task slot.
// Returns a rejection with ReasonTaskAlreadyAssigned when the slot is taken.
func (p *Player) AcceptTask(taskID string) error {
	if taskID == "" {
		return errors.InvalidArgument("task ID cannot be empty")
	}
	if p.HasTask() {
		return errors.Rejected(errors.CodeFailedPrecondition, ReasonTaskAlreadyAssigned,
			"player already has an active task").
			WithMeta("current_task_id", *p.currentTaskID)
	}
	id := taskID
	p.currentTaskID = &id
	return nil
}

// ReleaseTask empties the task slot and returns the released task id.
// Returns a rejection with ReasonNoActiveTask when the slot is empty.
func (p *Player) ReleaseTask() (string, error) {
	if !p.HasTask() {
		return "", errors.Rejected(errors.CodeFailedPrecondition, ReasonNoActiveTask,
			"player has no active task")
	}
	id := *p.currentTaskID
	p.currentTaskID = nil
	return id, nil
}

// UpdateExp adds delta to the experience total and returns how many levels
// were gained (negative when lost). Experience never drops below zero and
// saturates at math.MaxInt64.
func (p *Player) UpdateExp(delta int64) int32 {
	before := p.level
	switch {
	case delta > 0 && p.exp > math.MaxInt64-delta:
		p.exp = math.MaxInt64
	default:
		p.exp += delta
	}
	if p.exp < 0 {
		p.exp = 0
	}
	p.refreshLevel()
	return p.level - before
}

func (p *Player) refreshLevel() {
	p.level, p.expCurrentLevel = LevelForExperience(p.exp)
}

// UpdateCurrency adds amount to the balance of code, all or nothing.
// Returns a rejection with ReasonUnknownCurrency or ReasonInsufficientBalance.
func (p *Player) UpdateCurrency(code Currency, amount int64) error {
	balance, ok := p.currencies[code]
	if !ok {
		return errors.Rejected(errors.CodeInvalidArgument, ReasonUnknownCurrency,
			fmt.Sprintf("unknown currency %q", string(code)))
	}
	if balance+amount < 0 {
		return errors.Rejected(errors.CodeFailedPrecondition, ReasonInsufficientBalance,
			fmt.Sprintf("not enough %s", string(code))).
			WithMeta("balance", balance).
			WithMeta("amount", amount)
	}
	p.currencies[code] = balance + amount
	return nil
}

// Balance returns the balance of code, 0 for unknown codes
func (p *Player) Balance(code Currency) int64 {
	return p.currencies[code]
}

// Currencies returns a copy of all balances
func (p *Player) Currencies() map[Currency]int64 {
	out := make(map[Currency]int64, len(p.currencies))
	for k, v := range p.currencies {
		out[k] = v
	}
	return out
}

// UpdateRole sets the role without validating it
func (p *Player) UpdateRole(role Role) {
	p.Role = role
}

// Snapshot copies the player into a store record
func (p *Player) Snapshot() *PlayerRecord {
	p.refreshLevel()

	var taskID *string
	if p.currentTaskID != nil {
		id := *p.currentTaskID
		taskID = &id
	}

	return &PlayerRecord{
		DcID:          p.dcID,
		DcTag:         p.DcTag,
		GuildID:       p.guildID,
		Role:          p.Role,
		Level:         p.level,
		Exp:           p.exp,
		CurrentTaskID: taskID,
		Currencies:    p.Currencies(),
	}
}

// Load replaces the mutable attributes with the record's. The stored level
// is ignored and recomputed from exp; missing balances default to zero.
func (p *Player) Load(rec *PlayerRecord) error {
	if err := rec.Validate(); err != nil {
		return err
	}
	if rec.DcID != p.dcID || rec.GuildID != p.guildID {
		return errors.InvalidArgumentf("record %s does not belong to player %s",
			PlayerKey(rec.GuildID, rec.DcID), p.Key())
	}

	p.DcTag = rec.DcTag
	p.Role = rec.Role
	p.exp = rec.Exp
	p.refreshLevel()

	p.currentTaskID = nil
	if rec.CurrentTaskID != nil {
		id := *rec.CurrentTaskID
		p.currentTaskID = &id
	}

	p.currencies = zeroBalances()
	for code, balance := range rec.Currencies {
		p.currencies[code] = balance
	}
	return nil
}
