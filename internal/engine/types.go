package engine

import (
	"slices"

	"github.com/Libretto-Pic/the-sage-game/internal/catalog"
)

// StateVersion is the shape of PlayerState written by this build.
const StateVersion = 3

type Stats struct {
	HP int `json:"hp"`
	MP int `json:"mp"`
	SP int `json:"sp"`
	RP int `json:"rp"`
}

func FullStats() Stats {
	return Stats{HP: MaxStat, MP: MaxStat, SP: MaxStat, RP: MaxStat}
}

func clampStat(v int) int {
	return min(max(v, 0), MaxStat)
}

func (s Stats) clamped() Stats {
	return Stats{HP: clampStat(s.HP), MP: clampStat(s.MP), SP: clampStat(s.SP), RP: clampStat(s.RP)}
}

type MissionKind string

const (
	KindOrdinary   MissionKind = "ordinary"
	KindBoss       MissionKind = "boss"
	KindTrial      MissionKind = "trial"
	KindActivation MissionKind = "activation"
)

func (k MissionKind) IsValid() bool {
	switch k {
	case KindOrdinary, KindBoss, KindTrial, KindActivation:
		return true
	default:
		return false
	}
}

// Persistent kinds survive day rollover until completed.
func (k MissionKind) Persistent() bool {
	return k == KindBoss || k == KindTrial || k == KindActivation
}

// Kind tags a mission. BossName is set for boss and trial missions,
// ActivationID for activation missions.
type Kind struct {
	Type         MissionKind `json:"type"`
	BossName     string      `json:"bossName,omitempty"`
	ActivationID string      `json:"activationId,omitempty"`
}

func Ordinary() Kind                { return Kind{Type: KindOrdinary} }
func Boss(name string) Kind         { return Kind{Type: KindBoss, BossName: name} }
func Trial(name string) Kind        { return Kind{Type: KindTrial, BossName: name} }
func Activation(id string) Kind     { return Kind{Type: KindActivation, ActivationID: id} }
func (k Kind) Persistent() bool     { return k.Type.Persistent() }
func (k Kind) ControlsKazuki() bool { return k.Type == KindBoss || k.Type == KindTrial }

type Mission struct {
	ID                string             `json:"id"`
	Title             string             `json:"title"`
	Description       string             `json:"description"`
	Category          catalog.Category   `json:"category"`
	XP                int                `json:"xp"`
	Completed         bool               `json:"isCompleted"`
	Difficulty        catalog.Difficulty `json:"difficulty,omitempty"`
	Kind              Kind               `json:"kind"`
	PowerPointsReward int                `json:"powerPointsReward,omitempty"`
}

type FrequencyType string

const (
	FrequencyDaily     FrequencyType = "daily"
	FrequencyEveryDays FrequencyType = "every_x_days"
)

func (f FrequencyType) IsValid() bool {
	return f == FrequencyDaily || f == FrequencyEveryDays
}

// RecurringMission is a user-authored ritual that spawns a mission on its due days.
type RecurringMission struct {
	ID             string           `json:"id"`
	Title          string           `json:"title"`
	Description    string           `json:"description"`
	Category       catalog.Category `json:"category"`
	FrequencyType  FrequencyType    `json:"frequencyType"`
	FrequencyValue int              `json:"frequencyValue"`
	StartDay       int              `json:"startDay"`
	XP             int              `json:"xp"`
}

// PendingActivation links a paid stat boost to the activation mission that releases it.
type PendingActivation struct {
	ID        string `json:"id"`
	Stat      string `json:"stat"`
	Points    int    `json:"statBonus"`
	MissionID string `json:"missionId"`
}

type AbilityTest struct {
	Question string `json:"question"`
	Day      int    `json:"day"`
}

// PlayerState is the whole saved game.
type PlayerState struct {
	Version                 int                    `json:"version"`
	Started                 bool                   `json:"started"`
	Level                   int                    `json:"level"`
	XP                      int                    `json:"xp"`
	Day                     int                    `json:"day"`
	Stats                   Stats                  `json:"stats"`
	Missions                []Mission              `json:"missions"`
	CompletedMissionHistory []string               `json:"completedMissionHistory"`
	JournalEntries          []string               `json:"journalEntries"`
	SoulCoins               int                    `json:"soulCoins"`
	PowerPoints             int                    `json:"powerPoints"`
	RecurringMissions       []RecurringMission     `json:"recurringMissions"`
	UnlockedAchievements    []string               `json:"unlockedAchievements"`
	XPMultiplier            float64                `json:"xpMultiplier"`
	ConsecutiveDaysFailed   int                    `json:"consecutiveDaysFailed"`
	ControlledKazuki        []string               `json:"controlledKazuki"`
	KazukiPower             map[string]int         `json:"kazukiPower"`
	BoostedKazuki           map[string]int         `json:"boostedKazuki"`
	PermanentStats          map[string]int         `json:"permanentStats"`
	PendingActivations      []PendingActivation    `json:"pendingActivations"`
	AbilityLevels           map[string]int         `json:"abilityLevels"`
	AbilityXP               map[string]int         `json:"abilityXp"`
	CurrentTests            map[string]AbilityTest `json:"currentTests"`
	ReadingProgress         int                    `json:"readingProgress"`
	OnDemandGeneratedToday  int                    `json:"onDemandMissionsGeneratedToday"`
	DailyBonusClaimed       bool                   `json:"dailyBonusClaimed"`
}

// NewPlayerState returns the state of a game that has never been played.
func NewPlayerState() *PlayerState {
	st := &PlayerState{
		Version:      StateVersion,
		Level:        StartingLevel,
		Day:          1,
		Stats:        FullStats(),
		XPMultiplier: 1.0,
	}
	st.Normalize()
	return st
}

// Normalize fills nil collections and clamps values that must stay in range.
func (st *PlayerState) Normalize() {
	if st.Missions == nil {
		st.Missions = []Mission{}
	}
	if st.CompletedMissionHistory == nil {
		st.CompletedMissionHistory = []string{}
	}
	if st.JournalEntries == nil {
		st.JournalEntries = []string{}
	}
	if st.RecurringMissions == nil {
		st.RecurringMissions = []RecurringMission{}
	}
	if st.UnlockedAchievements == nil {
		st.UnlockedAchievements = []string{}
	}
	if st.ControlledKazuki == nil {
		st.ControlledKazuki = []string{}
	}
	if st.PendingActivations == nil {
		st.PendingActivations = []PendingActivation{}
	}
	for _, m := range []*map[string]int{&st.KazukiPower, &st.BoostedKazuki, &st.PermanentStats, &st.AbilityLevels, &st.AbilityXP} {
		if *m == nil {
			*m = map[string]int{}
		}
	}
	if st.CurrentTests == nil {
		st.CurrentTests = map[string]AbilityTest{}
	}
	if st.Level < StartingLevel {
		st.Level = StartingLevel
	}
	if st.Day < 1 {
		st.Day = 1
	}
	if st.XPMultiplier < 1.0 {
		st.XPMultiplier = 1.0
	}
	st.SoulCoins = max(st.SoulCoins, 0)
	st.PowerPoints = max(st.PowerPoints, 0)
	st.Stats = st.Stats.clamped()
	// Overflowing XP is levelled up, so XP always ends in [0, XPPerLevel).
	st.XP = max(st.XP, 0)
	applyLeveling(st)
	st.Version = StateVersion
}

// Clone returns a deep copy.
func (st *PlayerState) Clone() *PlayerState {
	c := *st
	c.Missions = slices.Clone(st.Missions)
	c.CompletedMissionHistory = slices.Clone(st.CompletedMissionHistory)
	c.JournalEntries = slices.Clone(st.JournalEntries)
	c.RecurringMissions = slices.Clone(st.RecurringMissions)
	c.UnlockedAchievements = slices.Clone(st.UnlockedAchievements)
	c.ControlledKazuki = slices.Clone(st.ControlledKazuki)
	c.PendingActivations = slices.Clone(st.PendingActivations)
	c.KazukiPower = cloneMap(st.KazukiPower)
	c.BoostedKazuki = cloneMap(st.BoostedKazuki)
	c.PermanentStats = cloneMap(st.PermanentStats)
	c.AbilityLevels = cloneMap(st.AbilityLevels)
	c.AbilityXP = cloneMap(st.AbilityXP)
	c.CurrentTests = cloneMap(st.CurrentTests)
	return &c
}

func cloneMap[V any](m map[string]V) map[string]V {
	out := make(map[string]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (st *PlayerState) missionIndex(id string) int {
	return slices.IndexFunc(st.Missions, func(m Mission) bool { return m.ID == id })
}

func (st *PlayerState) IsControlled(name string) bool {
	return slices.Contains(st.ControlledKazuki, name)
}

// Encountered reports whether the Kazuki's power has been rolled.
func (st *PlayerState) Encountered(name string) bool {
	_, ok := st.KazukiPower[name]
	return ok
}

// KazukiCurrentPower is the boosted power if a penalty applied, else the rolled power.
func (st *PlayerState) KazukiCurrentPower(name string) int {
	if p, ok := st.BoostedKazuki[name]; ok {
		return p
	}
	return st.KazukiPower[name]
}

func (st *PlayerState) hasOpenMission(kind MissionKind, boss string) bool {
	for _, m := range st.Missions {
		if !m.Completed && m.Kind.Type == kind && m.Kind.BossName == boss {
			return true
		}
	}
	return false
}

// ordinaryMissions returns the day's non-persistent missions.
func (st *PlayerState) ordinaryMissions() []Mission {
	var out []Mission
	for _, m := range st.Missions {
		if !m.Kind.Persistent() {
			out = append(out, m)
		}
	}
	return out
}

func allCompleted(ms []Mission) bool {
	for _, m := range ms {
		if !m.Completed {
			return false
		}
	}
	return true
}

// DayComplete reports whether the day had ordinary missions and all of them are done.
func (st *PlayerState) DayComplete() bool {
	ord := st.ordinaryMissions()
	return len(ord) > 0 && allCompleted(ord)
}

// RecentTitles returns up to n of the most recent completed mission titles.
func (st *PlayerState) RecentTitles(n int) []string {
	h := st.CompletedMissionHistory
	if len(h) > n {
		h = h[len(h)-n:]
	}
	return slices.Clone(h)
}
