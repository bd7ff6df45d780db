package engine

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/Libretto-Pic/the-sage-game/internal/catalog"
	"github.com/Libretto-Pic/the-sage-game/internal/generator"
)

const (
	PenaltyThreshold = 3
	PenaltyFactor    = 1.25
)

type ControlResult struct {
	Name            string
	PowerSpent      int
	XPMultiplier    float64
	Dismissed       int
	NewAchievements []catalog.Achievement
	SaveErr         error
}

// Penalty describes a Kazuki that grew stronger after repeated failed days.
type Penalty struct {
	Kazuki       string
	Before       int
	After        int
	JournalEntry string
}

// markControlled adds the Kazuki to the controlled set and raises the multiplier.
// Its open trial and boss missions are dismissed and their count returned. It
// reports false if the Kazuki was already controlled.
func markControlled(st *PlayerState, name string) (int, bool) {
	if st.IsControlled(name) {
		return 0, false
	}
	st.ControlledKazuki = append(st.ControlledKazuki, name)
	st.XPMultiplier = bumpMultiplier(st.XPMultiplier)
	before := len(st.Missions)
	st.Missions = slices.DeleteFunc(st.Missions, func(m Mission) bool {
		return !m.Completed && m.Kind.ControlsKazuki() && m.Kind.BossName == name
	})
	return before - len(st.Missions), true
}

// pendingTrials lists the free Kazuki that st's level has reached and that have
// no open trial.
func (g *Game) pendingTrials(st *PlayerState) []catalog.Kazuki {
	var out []catalog.Kazuki
	for _, k := range g.cat.Kazuki {
		if k.EncounterLevel > st.Level || st.IsControlled(k.Name) || st.hasOpenMission(KindTrial, k.Name) {
			continue
		}
		out = append(out, k)
	}
	return out
}

func trialRequest(level int, k catalog.Kazuki) generator.ThemedRequest {
	return generator.ThemedRequest{
		Level:    level,
		Theme:    k.Name,
		Context:  fmt.Sprintf("Face %s, %s. %s Weak to: %s.", k.Name, k.Title, k.Description, strings.Join(k.Weaknesses, ", ")),
		Category: catalog.CategorySoul,
	}
}

// draftTrials generates one trial per Kazuki, keyed by name. mu must not be held.
func (g *Game) draftTrials(ctx context.Context, level int, ks []catalog.Kazuki) map[string]generator.Mission {
	out := make(map[string]generator.Mission, len(ks))
	for _, k := range ks {
		tm, _ := g.gen.GenerateThemed(ctx, trialRequest(level, k))
		out[k.Name] = tm
	}
	return out
}

// encounterKazuki rolls power for every Kazuki the player's level has reached and
// gives each uncontrolled one a trial mission, unless one is already open. Trials
// come from drafted, or from the static fallback when none was drafted. Running it
// twice on the same state adds nothing.
func (g *Game) encounterKazuki(ctx context.Context, st *PlayerState, drafted map[string]generator.Mission) []Mission {
	var added []Mission
	for _, k := range g.cat.Kazuki {
		if k.EncounterLevel > st.Level || st.IsControlled(k.Name) {
			continue
		}
		power, ok := st.KazukiPower[k.Name]
		if !ok {
			power = rollPower(g.rng, k.BasePower, k.PowerVariance)
			st.KazukiPower[k.Name] = power
			g.log.Info("kazuki encountered", "name", k.Name, "power", power)
		}
		if st.hasOpenMission(KindTrial, k.Name) {
			continue
		}
		tm, ok := drafted[k.Name]
		if !ok {
			tm, _ = g.fallback.GenerateThemed(ctx, trialRequest(st.Level, k))
		}
		m := g.newMission(tm, GeneratedXP(st.Level, tm.Difficulty), Trial(k.Name))
		m.PowerPointsReward = power / 4
		st.Missions = append(st.Missions, m)
		added = append(added, m)
	}
	return added
}

// summonTrials adds trial missions after a level-up outside a rollover. The
// generator runs without mu. It does nothing while another generation runs, since
// every rollover repeats the encounter check.
func (g *Game) summonTrials(ctx context.Context) ([]Mission, error) {
	if g.beginGeneration() != nil {
		return nil, nil
	}
	defer g.endGeneration()

	var (
		level   int
		pending []catalog.Kazuki
	)
	err := g.locked(ctx, func() error {
		level, pending = g.state.Level, g.pendingTrials(g.state)
		return nil
	})
	if err != nil || len(pending) == 0 {
		return nil, nil
	}
	drafted := g.draftTrials(ctx, level, pending)

	var added []Mission
	err = g.locked(ctx, func() error {
		next := g.state.Clone()
		added = g.encounterKazuki(ctx, next, drafted)
		if len(added) == 0 {
			return nil
		}
		return g.commit(ctx, next, nil)
	})
	var se SaveError
	if err != nil && !errors.As(err, &se) {
		g.log.Warn("trials skipped", "err", err)
		return nil, nil
	}
	return added, err
}

// applyPenalty boosts the earliest-encountered Kazuki that is still free.
func applyPenalty(cat *catalog.Catalog, st *PlayerState) (Penalty, bool) {
	for _, k := range cat.Kazuki {
		if !st.Encountered(k.Name) || st.IsControlled(k.Name) {
			continue
		}
		before := st.KazukiCurrentPower(k.Name)
		after := int(math.Round(float64(before) * PenaltyFactor))
		st.BoostedKazuki[k.Name] = after
		entry := fmt.Sprintf("Day %d: Three days of neglect have fed %s. Its power swells from %d to %d.", st.Day, k.Name, before, after)
		st.JournalEntries = append(st.JournalEntries, entry)
		return Penalty{Kazuki: k.Name, Before: before, After: after, JournalEntry: entry}, true
	}
	return Penalty{}, false
}

func (g *Game) lookupKazuki(op, name string) (catalog.Kazuki, error) {
	k, ok := g.cat.KazukiByName(name)
	if !ok {
		return k, invalid(op, ErrUnknownKazuki, "no kazuki named %q", name)
	}
	if !g.state.Encountered(k.Name) {
		return k, invalid(op, ErrKazukiNotEncountered, "%s appears at level %d", k.Name, k.EncounterLevel)
	}
	if g.state.IsControlled(k.Name) {
		return k, invalid(op, ErrAlreadyControlled, "%s is already under your control", k.Name)
	}
	return k, nil
}

// ControlKazuki spends power points equal to the Kazuki's current power to control it.
func (g *Game) ControlKazuki(ctx context.Context, name string) (ControlResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.sync(ctx); err != nil {
		return ControlResult{}, err
	}

	k, err := g.lookupKazuki("control", name)
	if err != nil {
		return ControlResult{}, err
	}
	power := g.state.KazukiCurrentPower(k.Name)
	if g.state.PowerPoints < power {
		return ControlResult{}, invalid("control", ErrInsufficientPowerPoints, "%s needs %d PP, have %d", k.Name, power, g.state.PowerPoints)
	}

	next := g.state.Clone()
	next.PowerPoints -= power
	dismissed, _ := markControlled(next, k.Name)
	res := ControlResult{Name: k.Name, PowerSpent: power, XPMultiplier: next.XPMultiplier, Dismissed: dismissed}
	res.NewAchievements = g.evaluateAchievements(next)
	g.log.Info("kazuki controlled", "name", k.Name, "spent", power, "multiplier", next.XPMultiplier, "dismissed", dismissed)
	res.SaveErr = g.commit(ctx, next, nil)
	return res, nil
}

func openBoss(st *PlayerState, name string) (Mission, bool) {
	for _, m := range st.Missions {
		if !m.Completed && m.Kind.Type == KindBoss && m.Kind.BossName == name {
			return m, true
		}
	}
	return Mission{}, false
}

// ConfrontKazuki opens a boss mission against an encountered Kazuki. Completing it
// controls the Kazuki without spending power points. Confronting twice returns the
// open mission.
func (g *Game) ConfrontKazuki(ctx context.Context, name string) (MissionResult, error) {
	if err := g.beginGeneration(); err != nil {
		return MissionResult{}, err
	}
	defer g.endGeneration()

	var (
		res   MissionResult
		k     catalog.Kazuki
		level int
		open  bool
	)
	err := g.locked(ctx, func() error {
		var err error
		if k, err = g.lookupKazuki("confront", name); err != nil {
			return err
		}
		res.Mission, open = openBoss(g.state, k.Name)
		level = g.state.Level
		return nil
	})
	if err != nil || open {
		return res, err
	}

	tm, _ := g.gen.GenerateThemed(ctx, generator.ThemedRequest{
		Level:    level,
		Theme:    k.Name,
		Context:  fmt.Sprintf("Final confrontation with %s, demon of %s. Exploit: %s.", k.Name, k.Domain, strings.Join(k.Weaknesses, ", ")),
		Category: catalog.CategorySoul,
	})

	err = g.locked(ctx, func() error {
		if _, err := g.lookupKazuki("confront", k.Name); err != nil {
			return err
		}
		if m, ok := openBoss(g.state, k.Name); ok {
			res.Mission = m
			return nil
		}
		next := g.state.Clone()
		m := g.newMission(tm, GeneratedXP(next.Level, catalog.DifficultyHard), Boss(k.Name))
		m.Difficulty = catalog.DifficultyHard
		next.Missions = append(next.Missions, m)
		res.Mission = m
		g.log.Info("kazuki confronted", "name", k.Name, "mission", m.Title)
		res.SaveErr = g.commit(ctx, next, nil)
		return nil
	})
	return res, err
}

// KazukiStatus is one row of the roster view.
type KazukiStatus struct {
	catalog.Kazuki
	Encountered bool
	Controlled  bool
	Power       int
	Boosted     bool
}

func (g *Game) Roster() []KazukiStatus {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]KazukiStatus, 0, len(g.cat.Kazuki))
	for _, k := range g.cat.Kazuki {
		_, boosted := g.state.BoostedKazuki[k.Name]
		out = append(out, KazukiStatus{
			Kazuki:      k,
			Encountered: g.state.Encountered(k.Name),
			Controlled:  g.state.IsControlled(k.Name),
			Power:       g.state.KazukiCurrentPower(k.Name),
			Boosted:     boosted,
		})
	}
	return out
}

func (g *Game) newMission(tm generator.Mission, xp int, kind Kind) Mission {
	return Mission{
		ID:          g.newID(),
		Title:       tm.Title,
		Description: tm.Description,
		Category:    tm.Category,
		XP:          xp,
		Difficulty:  tm.Difficulty,
		Kind:        kind,
	}
}
