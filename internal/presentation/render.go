package presentation

import (
	"fmt"
	"io"
	"strings"

	"github.com/KirkDiggler/guild-progression/internal/entities/progression"
)

// Renderer writes a profile in some display format
type Renderer interface {
	Render(w io.Writer, view *ProfileView) error
}

const progressBarWidth = 20

// TextRenderer writes a plain-text profile card
type TextRenderer struct{}

// Render implements Renderer
func (TextRenderer) Render(w io.Writer, view *ProfileView) error {
	var b strings.Builder

	fmt.Fprintf(&b, "%s (%s)\n", view.DcTag, view.RoleName)
	if view.Rank != "" {
		fmt.Fprintf(&b, "Rank: %s\n", view.Rank)
	}

	if view.ExpToNextLevel > 0 {
		fmt.Fprintf(&b, "Level %d [%s] %d/%d\n",
			view.Level, bar(view.Progress()), view.ExpCurrentLevel, view.ExpToNextLevel)
	} else {
		fmt.Fprintf(&b, "Level %d [%s] max\n", view.Level, bar(1))
	}
	fmt.Fprintf(&b, "Exp: %d\n", view.Exp)

	balances := make([]string, 0, len(progression.KnownCurrencies))
	for _, code := range progression.KnownCurrencies {
		balances = append(balances, fmt.Sprintf("%s %d", code, view.Currencies[code]))
	}
	fmt.Fprintf(&b, "Balance: %s\n", strings.Join(balances, ", "))

	task := view.CurrentTaskID
	if task == "" {
		task = "none"
	}
	fmt.Fprintf(&b, "Task: %s\n", task)
	fmt.Fprintf(&b, "Today: %d text, %d voice\n", view.TextChatDailyCounter, view.VoiceChatDailyCounter)

	_, err := io.WriteString(w, b.String())
	return err
}

func bar(progress float64) string {
	filled := int(progress * progressBarWidth)
	if filled > progressBarWidth {
		filled = progressBarWidth
	}
	return strings.Repeat("#", filled) + strings.Repeat("-", progressBarWidth-filled)
}
