package engine

import (
	"context"

	"github.com/Libretto-Pic/the-sage-game/internal/catalog"
	"github.com/Libretto-Pic/the-sage-game/internal/generator"
)

type MissionSource string

const (
	SourceJourney   MissionSource = "journey"
	SourceGenerated MissionSource = "generated"
)

type DayResult struct {
	Day             int
	Source          MissionSource
	Missions        []Mission
	RitualsAdmitted int
	CarriedOver     int
	Penalty         *Penalty
	NewTrials       []Mission
	NewAchievements []catalog.Achievement
	SaveErr         error
}

// dayDraft is the generated content of a rollover, drafted without mu held.
type dayDraft struct {
	missions map[catalog.Category]generator.Mission
	trials   map[string]generator.Mission
}

// StartNewDay rolls the game over to the next day. Without force it refuses while
// any ordinary mission of the current day is incomplete. The first call of a new
// game starts day 1 instead of advancing. Missions are generated without mu held,
// and the rollover is refused if the day changed meanwhile.
func (g *Game) StartNewDay(ctx context.Context, force bool) (DayResult, error) {
	if err := g.beginGeneration(); err != nil {
		return DayResult{}, err
	}
	defer g.endGeneration()

	ready := func() error {
		if !force && !allCompleted(g.state.ordinaryMissions()) {
			return invalid("new day", ErrIncompleteMissions, "finish today's missions or force the rollover")
		}
		return nil
	}
	var base *PlayerState
	err := g.locked(ctx, func() error {
		base = g.state.Clone()
		return ready()
	})
	if err != nil {
		return DayResult{}, err
	}

	draft := g.draftDay(ctx, base)

	var res DayResult
	err = g.locked(ctx, func() error {
		if g.state.Day != base.Day || g.state.Started != base.Started {
			return invalid("new day", ErrStateChanged, "day %d was rolled over elsewhere", base.Day)
		}
		if err := ready(); err != nil {
			return err
		}
		var next *PlayerState
		next, res = g.rollover(ctx, g.state.Clone(), draft)
		g.log.Info("new day", "day", next.Day, "source", res.Source, "missions", len(next.Missions), "failed_streak", next.ConsecutiveDaysFailed)
		res.SaveErr = g.commit(ctx, next, nil)
		return nil
	})
	return res, err
}

// nextDay is the day a rollover of st starts.
func nextDay(st *PlayerState) int {
	if st.Started {
		return st.Day + 1
	}
	return st.Day
}

// draftDay generates the missions a rollover of base will need. mu must not be held.
func (g *Game) draftDay(ctx context.Context, base *PlayerState) dayDraft {
	d := dayDraft{missions: map[catalog.Category]generator.Mission{}}
	day := nextDay(base)
	if _, ok := g.cat.JourneyFor(day); !ok {
		generated, _ := g.gen.Generate(ctx, generator.BatchRequest{
			Level:        base.Level,
			RecentTitles: base.RecentTitles(RecentTitleWindow),
			Categories:   uncovered(admitRituals(base.RecurringMissions, day)),
		})
		for _, tm := range generated {
			if _, dup := d.missions[tm.Category]; !dup {
				d.missions[tm.Category] = tm
			}
		}
	}
	d.trials = g.draftTrials(ctx, base.Level, g.pendingTrials(base))
	return d
}

// rollover advances next to the following day using drafted content. mu must be held.
func (g *Game) rollover(ctx context.Context, next *PlayerState, d dayDraft) (*PlayerState, DayResult) {
	var res DayResult

	if next.Started {
		ordinary := next.ordinaryMissions()
		if len(ordinary) > 0 && !allCompleted(ordinary) {
			next.ConsecutiveDaysFailed++
		} else {
			next.ConsecutiveDaysFailed = 0
		}
		if next.ConsecutiveDaysFailed >= PenaltyThreshold {
			if p, ok := applyPenalty(g.cat, next); ok {
				res.Penalty = &p
				g.log.Warn("penalty applied", "kazuki", p.Kazuki, "from", p.Before, "to", p.After)
			}
			next.ConsecutiveDaysFailed = 0
		}
	}
	next.Day = nextDay(next)
	next.Started = true

	var carried []Mission
	for _, m := range next.Missions {
		if m.Kind.Persistent() && !m.Completed {
			carried = append(carried, m)
		}
	}
	res.CarriedOver = len(carried)

	fresh, source, admitted := g.sourceMissions(ctx, next, d)
	res.Source, res.RitualsAdmitted = source, admitted
	next.Missions = append(carried, fresh...)

	next.ReadingProgress = 0
	next.OnDemandGeneratedToday = 0
	next.DailyBonusClaimed = false

	res.NewTrials = g.encounterKazuki(ctx, next, d.trials)
	res.NewAchievements = g.evaluateAchievements(next)
	res.Day = next.Day
	res.Missions = append([]Mission(nil), next.Missions...)
	return next, res
}

// uncovered lists the categories none of the rituals covers, in catalog order.
func uncovered(rituals []RecurringMission) []catalog.Category {
	covered := map[catalog.Category]bool{}
	for _, r := range rituals {
		covered[r.Category] = true
	}
	var out []catalog.Category
	for _, c := range catalog.Categories {
		if !covered[c] {
			out = append(out, c)
		}
	}
	return out
}

// sourceMissions builds the ordinary missions of st.Day: the pregenerated journey
// when one exists, otherwise due rituals plus one drafted mission per uncovered
// category. A category with no drafted mission gets the static fallback.
func (g *Game) sourceMissions(ctx context.Context, st *PlayerState, d dayDraft) ([]Mission, MissionSource, int) {
	if j, ok := g.cat.JourneyFor(st.Day); ok {
		out := make([]Mission, 0, len(j.Missions))
		for _, t := range j.Missions {
			out = append(out, g.newMission(generator.Mission(t), JourneyXP(j.XP, t.Difficulty), Ordinary()))
		}
		return out, SourceJourney, 0
	}

	rituals := admitRituals(st.RecurringMissions, st.Day)
	out := make([]Mission, 0, len(rituals)+len(catalog.Categories))
	for _, r := range rituals {
		out = append(out, Mission{
			ID:          g.newID(),
			Title:       r.Title,
			Description: r.Description,
			Category:    r.Category,
			XP:          r.XP,
			Kind:        Ordinary(),
		})
	}
	for _, c := range uncovered(rituals) {
		tm, ok := d.missions[c]
		if !ok {
			tm, _ = g.fallback.GenerateSingle(ctx, generator.SingleRequest{Level: st.Level, Category: c})
		}
		out = append(out, g.newMission(tm, GeneratedXP(st.Level, tm.Difficulty), Ordinary()))
	}
	return out, SourceGenerated, len(rituals)
}
