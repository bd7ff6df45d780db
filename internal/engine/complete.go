package engine

import (
	"context"
	"slices"

	"github.com/Libretto-Pic/the-sage-game/internal/catalog"
)

type CompleteResult struct {
	MissionID         string
	XPGained          int
	PowerPointsGained int
	LevelBefore       int
	LevelAfter        int
	LevelUp           bool
	DailyBonus        bool
	ControlledKazuki  string
	ActivatedStat     string
	ActivatedPoints   int
	NewTrials         []Mission
	NewAchievements   []catalog.Achievement
	SaveErr           error
}

// CompleteMission completes a mission of the current day. Completing a missing or
// already completed mission returns a ValidationError and changes nothing. A
// level-up opens trials for newly reached Kazuki once the completion is saved.
func (g *Game) CompleteMission(ctx context.Context, id string) (CompleteResult, error) {
	res, err := g.completeMission(ctx, id)
	if err != nil || !res.LevelUp {
		return res, err
	}
	trials, err := g.summonTrials(ctx)
	res.NewTrials = trials
	if res.SaveErr == nil {
		res.SaveErr = err
	}
	return res, nil
}

func (g *Game) completeMission(ctx context.Context, id string) (CompleteResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.sync(ctx); err != nil {
		return CompleteResult{}, err
	}

	idx := g.state.missionIndex(id)
	if idx < 0 {
		return CompleteResult{}, invalid("complete", ErrMissionNotFound, "no mission with id %q", id)
	}
	if g.state.Missions[idx].Completed {
		return CompleteResult{}, invalid("complete", ErrAlreadyCompleted, "%q is already complete", g.state.Missions[idx].Title)
	}

	next := g.state.Clone()
	dayDoneBefore := next.DayComplete()

	next.Missions[idx].Completed = true
	m := next.Missions[idx]
	res := CompleteResult{MissionID: m.ID, LevelBefore: next.Level}

	res.XPGained = ScaledXP(m.XP, next.XPMultiplier)
	res.PowerPointsGained = PowerPointsFor(res.XPGained) + m.PowerPointsReward
	next.XP += res.XPGained
	next.PowerPoints += res.PowerPointsGained
	next.CompletedMissionHistory = append(next.CompletedMissionHistory, m.Title)
	next.Stats.MP = clampStat(next.Stats.MP - CompletionMPDrain)
	next.Stats.SP = clampStat(next.Stats.SP - CompletionSPDrain)

	if a, ok := g.cat.AbilityForCategory(m.Category); ok {
		next.AbilityXP[a.ID] += res.XPGained
	}

	switch {
	case m.Kind.Type == KindActivation:
		if pa, ok := resolveActivation(next, m.Kind.ActivationID); ok {
			res.ActivatedStat, res.ActivatedPoints = pa.Stat, pa.Points
		}
	case m.Kind.ControlsKazuki():
		if _, ok := markControlled(next, m.Kind.BossName); ok {
			res.ControlledKazuki = m.Kind.BossName
		}
	}

	if !dayDoneBefore && next.DayComplete() && !next.DailyBonusClaimed {
		next.DailyBonusClaimed = true
		next.XP += DailyBonusXP
		next.SoulCoins += DailyBonusSoulCoins
		next.PowerPoints += DailyBonusPowerPoints
		res.DailyBonus = true
	}

	if applyLeveling(next) > 0 {
		res.LevelUp = true
		g.log.Info("level up", "from", res.LevelBefore, "to", next.Level)
	}
	res.LevelAfter = next.Level
	res.NewAchievements = g.evaluateAchievements(next)

	rec := CompletionRecord{
		MissionID: m.ID,
		Title:     m.Title,
		Category:  m.Category,
		Kind:      m.Kind.Type,
		XPGained:  res.XPGained,
		Day:       next.Day,
		At:        g.now(),
	}
	g.log.Info("mission completed", "title", m.Title, "xp", res.XPGained, "pp", res.PowerPointsGained)
	res.SaveErr = g.commit(ctx, next, []CompletionRecord{rec})
	return res, nil
}

// resolveActivation moves a pending stat bonus into the permanent stats.
func resolveActivation(st *PlayerState, activationID string) (PendingActivation, bool) {
	idx := slices.IndexFunc(st.PendingActivations, func(p PendingActivation) bool { return p.ID == activationID })
	if idx < 0 {
		return PendingActivation{}, false
	}
	pa := st.PendingActivations[idx]
	st.PermanentStats[pa.Stat] += pa.Points
	st.PendingActivations = slices.Delete(st.PendingActivations, idx, idx+1)
	return pa, true
}
