package engine

import (
	"context"

	"github.com/Libretto-Pic/the-sage-game/internal/catalog"
	"github.com/Libretto-Pic/the-sage-game/internal/generator"
)

// MissionResult is a mission added on demand.
type MissionResult struct {
	Mission Mission
	SaveErr error
}

// ForgeMission spends power points on one extra generated mission for today.
func (g *Game) ForgeMission(ctx context.Context, category catalog.Category) (MissionResult, error) {
	if !category.IsValid() {
		return MissionResult{}, invalid("forge", nil, "invalid category %q", category)
	}
	if err := g.beginGeneration(); err != nil {
		return MissionResult{}, err
	}
	defer g.endGeneration()

	var req generator.SingleRequest
	err := g.locked(ctx, func() error {
		if err := CanForge(g.state); err != nil {
			return err
		}
		req = generator.SingleRequest{
			Level:        g.state.Level,
			RecentTitles: g.state.RecentTitles(RecentTitleWindow),
			Category:     category,
		}
		return nil
	})
	if err != nil {
		return MissionResult{}, err
	}

	tm, _ := g.gen.GenerateSingle(ctx, req)

	var res MissionResult
	err = g.locked(ctx, func() error {
		if err := CanForge(g.state); err != nil {
			return err
		}
		next := g.state.Clone()
		m := g.newMission(tm, GeneratedXP(next.Level, tm.Difficulty), Ordinary())
		next.Missions = append(next.Missions, m)
		next.PowerPoints -= ForgeCost
		next.OnDemandGeneratedToday++
		g.log.Info("mission forged", "title", m.Title, "category", category)
		res.Mission = m
		res.SaveErr = g.commit(ctx, next, nil)
		return nil
	})
	return res, err
}
