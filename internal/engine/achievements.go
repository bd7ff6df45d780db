package engine

import (
	"slices"
	"strings"
)

// AchievementView is an achievement with its earned status, for display.
type AchievementView struct {
	ID          string
	Name        string
	Description string
	Icon        string
	Earned      bool
}

func achievementIcon(id string) string {
	switch {
	case strings.HasPrefix(id, "level"):
		return "⭐"
	case strings.HasPrefix(id, "journal"):
		return "📜"
	case strings.HasPrefix(id, "kazuki"):
		return "👹"
	case strings.HasPrefix(id, "days"):
		return "📅"
	case strings.HasPrefix(id, "codex"):
		return "🌬"
	case strings.HasPrefix(id, "missions"), strings.HasPrefix(id, "first"):
		return "✓"
	default:
		return "🏅"
	}
}

// Achievements lists every achievement in catalog order.
func (g *Game) Achievements() []AchievementView {
	g.mu.Lock()
	defer g.mu.Unlock()

	defs := g.ach.Definitions()
	out := make([]AchievementView, 0, len(defs))
	for _, d := range defs {
		out = append(out, AchievementView{
			ID:          d.ID,
			Name:        d.Name,
			Description: d.Description,
			Icon:        achievementIcon(d.ID),
			Earned:      slices.Contains(g.state.UnlockedAchievements, d.ID),
		})
	}
	return out
}

// CountEarned returns how many of the views are earned.
func CountEarned(views []AchievementView) int {
	n := 0
	for _, v := range views {
		if v.Earned {
			n++
		}
	}
	return n
}
