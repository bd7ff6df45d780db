package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Libretto-Pic/the-sage-game/internal/catalog"
	"github.com/Libretto-Pic/the-sage-game/internal/engine"
)

// Sage theme (CLI + TUI).

const (
	IconSage    = "🧙"
	IconSparkle = "✨"
	IconPlus    = "➕"
	IconDone    = "✅"
	IconOpen    = "⬜"
	IconTrophy  = "🏆"
	IconBolt    = "⚡"
	IconCoin    = "🪙"
	IconInfo    = "ℹ️"
	IconWarn    = "⚠️"
	IconError   = "🧨"
	IconLoop    = "🔁"
	IconScroll  = "📜"
	IconBook    = "📖"
	IconWind    = "🌬"
	IconDemon   = "👹"
	IconSword   = "⚔️"
	IconTrial   = "🔥"
	IconKey     = "🗝"
	IconClock   = "⏰"
)

var (
	cPrimary = lipgloss.Color("63")  // blue
	cAccent  = lipgloss.Color("205") // magenta
	cGood    = lipgloss.Color("42")  // green
	cWarn    = lipgloss.Color("214") // orange
	cBad     = lipgloss.Color("196") // red
	cMuted   = lipgloss.Color("244") // gray
	cGold    = lipgloss.Color("220") // gold
)

var (
	Title = lipgloss.NewStyle().Bold(true).Foreground(cAccent)
	H2    = lipgloss.NewStyle().Bold(true).Foreground(cPrimary)
	Muted = lipgloss.NewStyle().Foreground(cMuted)
	Key   = lipgloss.NewStyle().Bold(true).Foreground(cPrimary)
	Good  = lipgloss.NewStyle().Bold(true).Foreground(cGood)
	Warn  = lipgloss.NewStyle().Bold(true).Foreground(cWarn)
	Bad   = lipgloss.NewStyle().Bold(true).Foreground(cBad)
	Gold  = lipgloss.NewStyle().Bold(true).Foreground(cGold)

	Panel       = lipgloss.NewStyle().BorderStyle(lipgloss.RoundedBorder()).BorderForeground(cMuted).Padding(0, 1)
	PanelTitle  = lipgloss.NewStyle().Bold(true).Foreground(cPrimary)
	SelectedRow = lipgloss.NewStyle().Bold(true).Foreground(cGold).Background(cPrimary)

	BadgeLevelUp = lipgloss.NewStyle().Bold(true).Foreground(cGold).Render("LEVEL UP")
)

func Heading(icon string, title string) string {
	icon = strings.TrimSpace(icon)
	if icon != "" {
		icon += " "
	}
	return Title.Render(icon + title)
}

func LabelValue(label string, value any) string {
	return fmt.Sprintf("%s %v", Key.Render(label+":"), value)
}

func CategoryIcon(c catalog.Category) string {
	switch c {
	case catalog.CategoryHealth:
		return "💪"
	case catalog.CategoryWealth:
		return "💰"
	case catalog.CategoryMind:
		return "🧠"
	case catalog.CategorySoul:
		return "🕊"
	default:
		return "•"
	}
}

func KindIcon(k engine.MissionKind) string {
	switch k {
	case engine.KindBoss:
		return IconSword
	case engine.KindTrial:
		return IconTrial
	case engine.KindActivation:
		return IconKey
	default:
		return ""
	}
}

// MissionLine renders a mission as a single list row.
func MissionLine(m engine.Mission) string {
	check := IconOpen
	if m.Completed {
		check = IconDone
	}
	title := m.Title
	if icon := KindIcon(m.Kind.Type); icon != "" {
		title = icon + " " + title
	}
	if m.Completed {
		title = Muted.Render(title)
	}
	extra := fmt.Sprintf("+%d XP", m.XP)
	if m.PowerPointsReward > 0 {
		extra += fmt.Sprintf(", +%d PP", m.PowerPointsReward)
	}
	if m.Difficulty != "" {
		extra += ", " + string(m.Difficulty)
	}
	return fmt.Sprintf("%s %s %s %s", check, CategoryIcon(m.Category), title, Muted.Render("("+extra+")"))
}

// StatBar renders value/max as a fixed-width bar.
func StatBar(value, total, width int) string {
	if total <= 0 {
		total = 1
	}
	if width < 3 {
		width = 3
	}
	value = min(max(value, 0), total)
	filled := value * width / total
	return "[" + strings.Repeat("#", filled) + strings.Repeat("-", width-filled) + "]"
}
