package engine

import (
	"github.com/Libretto-Pic/the-sage-game/internal/catalog"
)

const (
	ForgeCost          = 15
	ForgeDailyLimit    = 2
	ReadingBlocksByDay = 3
	RitualDailyXPCap   = 50
	MaxRitualXP        = 50
	DefaultRitualXP    = 15
	RecentTitleWindow  = 50
)

// ReadingRewards is the XP paid for each reading block of a day, in order.
var ReadingRewards = [ReadingBlocksByDay]int{25, 20, 15}

// CanUseBreathingStyle returns a GateError when the style is above the player's level.
func CanUseBreathingStyle(level int, style catalog.BreathingStyle) error {
	if level < style.UnlockLevel {
		return GateError{Feature: style.Name, RequiredLevel: style.UnlockLevel}
	}
	return nil
}

// CanForge checks the on-demand generation limits without mutating anything.
func CanForge(st *PlayerState) error {
	if st.OnDemandGeneratedToday >= ForgeDailyLimit {
		return invalid("forge", ErrDailyLimitReached, "already forged %d missions today", ForgeDailyLimit)
	}
	if st.PowerPoints < ForgeCost {
		return invalid("forge", ErrInsufficientPowerPoints, "need %d PP, have %d", ForgeCost, st.PowerPoints)
	}
	return nil
}

// CanTestAbility reports whether the ability is ready for its next test.
func CanTestAbility(st *PlayerState, a catalog.Ability) error {
	lvl := AbilityLevel(st, a.ID)
	if lvl >= a.MaxLevel() {
		return GateError{Feature: a.Name + " mastery"}
	}
	if have := st.AbilityXP[a.ID]; have < a.XPPerLevel {
		return invalid("ability test", nil, "%s needs %d more ability XP", a.ID, a.XPPerLevel-have)
	}
	return nil
}

// AbilityLevel defaults to 1 for untrained abilities.
func AbilityLevel(st *PlayerState, id string) int {
	if l, ok := st.AbilityLevels[id]; ok && l > 0 {
		return l
	}
	return 1
}
