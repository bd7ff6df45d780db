package engine

import (
	"context"
	"strings"

	"github.com/Libretto-Pic/the-sage-game/internal/catalog"
)

type JournalResult struct {
	Entries         int
	NewAchievements []catalog.Achievement
	SaveErr         error
}

// SaveJournalEntry appends a reflection and restores some RP.
func (g *Game) SaveJournalEntry(ctx context.Context, text string) (JournalResult, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return JournalResult{}, invalid("journal", nil, "entry is empty")
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.sync(ctx); err != nil {
		return JournalResult{}, err
	}

	next := g.state.Clone()
	next.JournalEntries = append(next.JournalEntries, text)
	next.Stats.RP = clampStat(next.Stats.RP + JournalRPGain)
	res := JournalResult{Entries: len(next.JournalEntries)}
	res.NewAchievements = g.evaluateAchievements(next)
	res.SaveErr = g.commit(ctx, next, nil)
	return res, nil
}

type ReadingResult struct {
	Block           int
	XPGained        int
	LevelUp         bool
	NewTrials       []Mission
	NewAchievements []catalog.Achievement
	SaveErr         error
}

// CompleteReadingBlock records one of the day's reading blocks.
func (g *Game) CompleteReadingBlock(ctx context.Context) (ReadingResult, error) {
	res, err := g.completeReadingBlock(ctx)
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

func (g *Game) completeReadingBlock(ctx context.Context) (ReadingResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.sync(ctx); err != nil {
		return ReadingResult{}, err
	}

	if g.state.ReadingProgress >= ReadingBlocksByDay {
		return ReadingResult{}, invalid("reading", ErrDailyLimitReached, "all %d reading blocks are done today", ReadingBlocksByDay)
	}

	next := g.state.Clone()
	res := ReadingResult{Block: next.ReadingProgress + 1}
	res.XPGained = ScaledXP(ReadingRewards[next.ReadingProgress], next.XPMultiplier)
	next.ReadingProgress++
	next.XP += res.XPGained
	res.LevelUp = applyLeveling(next) > 0
	res.NewAchievements = g.evaluateAchievements(next)
	res.SaveErr = g.commit(ctx, next, nil)
	return res, nil
}
