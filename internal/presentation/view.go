// Package presentation turns progression state into views for display.
package presentation

import (
	"github.com/KirkDiggler/guild-progression/internal/entities/progression"
)

// ProfileView is the read-only projection of a player shown to users
type ProfileView struct {
	DcID     string
	DcTag    string
	GuildID  string
	Role     progression.Role
	RoleName string
	Rank     string

	Level           int32
	Exp             int64
	ExpCurrentLevel int64
	// ExpToNextLevel is 0 at the level cap
	ExpToNextLevel int64

	Currencies    map[progression.Currency]int64
	CurrentTaskID string

	TextChatDailyCounter  int64
	VoiceChatDailyCounter int64
}

// NewProfileView projects a player and, when known, their daily counters
func NewProfileView(p *progression.Player, counter *progression.DailyCounter, ranks RankTable) *ProfileView {
	view := &ProfileView{
		DcID:            p.DcID(),
		DcTag:           p.DcTag,
		GuildID:         p.GuildID(),
		Role:            p.Role,
		RoleName:        p.Role.String(),
		Rank:            ranks.Name(p.Level()),
		Level:           p.Level(),
		Exp:             p.Exp(),
		ExpCurrentLevel: p.ExpCurrentLevel(),
		ExpToNextLevel:  progression.ExperienceToNextLevel(p.Level()),
		Currencies:      p.Currencies(),
	}
	if taskID, ok := p.CurrentTaskID(); ok {
		view.CurrentTaskID = taskID
	}
	if counter != nil {
		view.TextChatDailyCounter = counter.TextChatDailyCounter
		view.VoiceChatDailyCounter = counter.VoiceChatDailyCounter
	}
	return view
}

// Progress is the fraction of the current level completed, 1 at the cap
func (v *ProfileView) Progress() float64 {
	if v.ExpToNextLevel <= 0 {
		return 1
	}
	f := float64(v.ExpCurrentLevel) / float64(v.ExpToNextLevel)
	if f > 1 {
		return 1
	}
	return f
}
