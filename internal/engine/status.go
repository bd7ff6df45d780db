package engine

import "github.com/Libretto-Pic/the-sage-game/internal/catalog"

// Status is the summary shown on the dashboard.
type Status struct {
	Level           int
	Title           string
	Realm           catalog.Realm
	InRealm         bool
	XP              int
	XPToNext        int
	Day             int
	Stats           Stats
	SoulCoins       int
	PowerPoints     int
	XPMultiplier    float64
	FailedStreak    int
	Completed       int
	Total           int
	BreathingStyles []catalog.BreathingStyle
	ReadingProgress int
	Generating      bool
}

func (g *Game) Status() Status {
	g.mu.Lock()
	defer g.mu.Unlock()

	st := g.state
	realm, ok := g.cat.RealmFor(st.Level)
	s := Status{
		Level:           st.Level,
		Title:           g.cat.LevelTitle(st.Level),
		Realm:           realm,
		InRealm:         ok,
		XP:              st.XP,
		XPToNext:        XPToNextLevel(st),
		Day:             st.Day,
		Stats:           st.Stats,
		SoulCoins:       st.SoulCoins,
		PowerPoints:     st.PowerPoints,
		XPMultiplier:    st.XPMultiplier,
		FailedStreak:    st.ConsecutiveDaysFailed,
		Total:           len(st.Missions),
		BreathingStyles: g.cat.UnlockedBreathingStyles(st.Level),
		ReadingProgress: st.ReadingProgress,
		Generating:      g.busy.Load(),
	}
	for _, m := range st.Missions {
		if m.Completed {
			s.Completed++
		}
	}
	return s
}
