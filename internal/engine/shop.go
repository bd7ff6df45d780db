package engine

import (
	"context"

	"github.com/Libretto-Pic/the-sage-game/internal/catalog"
	"github.com/Libretto-Pic/the-sage-game/internal/generator"
)

type PurchaseResult struct {
	Stat         string
	Points       int
	Cost         int
	ActivationID string
	Mission      Mission
	SaveErr      error
}

// statCategory is the mission category an activation trial for stat belongs to.
func (g *Game) statCategory(stat string) catalog.Category {
	if a, ok := g.cat.Ability(stat); ok {
		return a.Category
	}
	return catalog.CategoryHealth
}

// PurchaseStatBoost pays for points of a permanent stat. The bonus is held as a
// pending activation until its activation mission is completed.
func (g *Game) PurchaseStatBoost(ctx context.Context, stat string, points int) (PurchaseResult, error) {
	item, ok := g.cat.ShopItem(stat)
	if !ok {
		return PurchaseResult{}, invalid("purchase", ErrUnknownStat, "no shop item %q", stat)
	}
	if points < 1 {
		return PurchaseResult{}, invalid("purchase", nil, "points must be at least 1")
	}
	cost := item.CostPerPoint * points

	if err := g.beginGeneration(); err != nil {
		return PurchaseResult{}, err
	}
	defer g.endGeneration()

	canAfford := func() error {
		if g.state.SoulCoins < cost {
			return invalid("purchase", ErrInsufficientSoulCoins, "%s costs %d soul coins, have %d", item.Name, cost, g.state.SoulCoins)
		}
		return nil
	}
	var level int
	err := g.locked(ctx, func() error {
		level = g.state.Level
		return canAfford()
	})
	if err != nil {
		return PurchaseResult{}, err
	}

	tm, _ := g.gen.GenerateThemed(ctx, generator.ThemedRequest{
		Level:    level,
		Theme:    item.Name,
		Context:  item.PromptSuggestion,
		Category: g.statCategory(item.ID),
	})

	var res PurchaseResult
	err = g.locked(ctx, func() error {
		if err := canAfford(); err != nil {
			return err
		}
		next := g.state.Clone()
		activationID := g.newID()
		m := g.newMission(tm, GeneratedXP(next.Level, tm.Difficulty), Activation(activationID))
		next.Missions = append(next.Missions, m)
		next.PendingActivations = append(next.PendingActivations, PendingActivation{
			ID:        activationID,
			Stat:      item.ID,
			Points:    points,
			MissionID: m.ID,
		})
		next.SoulCoins -= cost

		g.log.Info("stat boost purchased", "stat", item.ID, "points", points, "cost", cost)
		res = PurchaseResult{Stat: item.ID, Points: points, Cost: cost, ActivationID: activationID, Mission: m}
		res.SaveErr = g.commit(ctx, next, nil)
		return nil
	})
	return res, err
}
