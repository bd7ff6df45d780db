package engine

import (
	"math"

	"github.com/Libretto-Pic/the-sage-game/internal/catalog"
)

const (
	XPPerLevel        = 100
	StartingLevel     = 30
	MaxStat           = 100
	SoulCoinsPerLevel = 5

	// Completing every ordinary mission of a day pays this once.
	DailyBonusXP          = 10
	DailyBonusSoulCoins   = 2
	DailyBonusPowerPoints = 4

	MultiplierStep = 0.1

	// Each completion drains focus and stamina until the next level-up.
	CompletionMPDrain = 10
	CompletionSPDrain = 5

	JournalRPGain = 15
)

// Progression is the part of the state the leveling algorithm works on.
type Progression struct {
	Level     int
	XP        int
	SoulCoins int
	Stats     Stats
}

// Level unwinds xp into levels. Every level pays soul coins, and any level-up
// restores all stats.
func Level(p Progression) Progression {
	before := p.Level
	for p.XP >= XPPerLevel {
		p.XP -= XPPerLevel
		p.Level++
		p.SoulCoins += SoulCoinsPerLevel
	}
	if p.Level > before {
		p.Stats = FullStats()
	}
	return p
}

// applyLeveling runs Level on st and returns how many levels were gained.
func applyLeveling(st *PlayerState) int {
	before := st.Level
	p := Level(Progression{Level: st.Level, XP: st.XP, SoulCoins: st.SoulCoins, Stats: st.Stats})
	st.Level, st.XP, st.SoulCoins, st.Stats = p.Level, p.XP, p.SoulCoins, p.Stats
	return st.Level - before
}

// ScaledXP applies the permanent multiplier to a mission reward.
func ScaledXP(xp int, multiplier float64) int {
	return int(math.Round(float64(xp) * multiplier))
}

// PowerPointsFor is the power-point share of a completion: two fifths of the XP gained.
func PowerPointsFor(xpGained int) int {
	return xpGained * 2 / 5
}

// GeneratedXP is the reward of a generated mission at level.
func GeneratedXP(level int, d catalog.Difficulty) int {
	base := 10 + 5*(level/10)
	switch d {
	case catalog.DifficultyMedium:
		return int(math.Round(float64(base) * 1.5))
	case catalog.DifficultyHard:
		return base * 2
	default:
		return base
	}
}

// JourneyXP is the reward of a pregenerated mission. Hard missions pay double.
func JourneyXP(dayXP int, d catalog.Difficulty) int {
	if d == catalog.DifficultyHard {
		return dayXP * 2
	}
	return dayXP
}

func bumpMultiplier(m float64) float64 {
	return math.Round((m+MultiplierStep)*100) / 100
}

// XPToNextLevel is what remains before the next level-up.
func XPToNextLevel(st *PlayerState) int {
	return XPPerLevel - st.XP
}
