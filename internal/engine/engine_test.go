package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Libretto-Pic/the-sage-game/internal/catalog"
	"github.com/Libretto-Pic/the-sage-game/internal/generator"
)

type memStore struct {
	mu      sync.Mutex
	state   *PlayerState
	loadErr error
	saveErr error
	saves   int
	records []CompletionRecord
}

func (s *memStore) Load(context.Context) (*PlayerState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	if s.state == nil {
		return nil, nil
	}
	return s.state.Clone(), nil
}

func (s *memStore) Save(_ context.Context, st *PlayerState, done []CompletionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves++
	if s.saveErr != nil {
		return s.saveErr
	}
	s.state = st
	s.records = append(s.records, done...)
	return nil
}

// failingProvider errors on every call, so the game falls back to static content.
type failingProvider struct{}

func (failingProvider) Generate(context.Context, generator.BatchRequest) ([]generator.Mission, error) {
	return nil, errors.New("offline")
}
func (failingProvider) GenerateSingle(context.Context, generator.SingleRequest) (generator.Mission, error) {
	return generator.Mission{}, errors.New("offline")
}
func (failingProvider) GenerateThemed(context.Context, generator.ThemedRequest) (generator.Mission, error) {
	return generator.Mission{}, errors.New("offline")
}
func (failingProvider) AbilityQuestion(context.Context, int, string) (string, error) {
	return "", errors.New("offline")
}
func (failingProvider) JudgeAnswer(context.Context, string, string, string) (generator.Judgement, error) {
	return generator.Judgement{}, errors.New("offline")
}

// blockingProvider holds Generate until release is closed.
type blockingProvider struct {
	failingProvider
	entered chan struct{}
	release chan struct{}
}

func (p blockingProvider) Generate(ctx context.Context, req generator.BatchRequest) ([]generator.Mission, error) {
	close(p.entered)
	<-p.release
	return nil, errors.New("slow")
}

func newTestGame(t *testing.T, st *PlayerState, p generator.Provider) (*Game, *memStore) {
	t.Helper()
	store := &memStore{}
	if st != nil {
		st.Normalize()
		store.state = st
	}
	n := 0
	g, err := NewGame(context.Background(), Options{
		Provider: p,
		Store:    store,
		RNG:      NewSeededRNG(7),
		NewID: func() string {
			n++
			return fmt.Sprintf("id-%d", n)
		},
	})
	require.NoError(t, err)
	return g, store
}

func ordinary(id string, cat catalog.Category, xp int) Mission {
	return Mission{ID: id, Title: "Mission " + id, Description: "Do it.", Category: cat, XP: xp, Kind: Ordinary()}
}

// midGame is a started game past the pregenerated journey.
func midGame(missions ...Mission) *PlayerState {
	st := NewPlayerState()
	st.Started = true
	st.Day = 40
	st.Missions = missions
	return st
}

func countCategory(ms []Mission, c catalog.Category) int {
	n := 0
	for _, m := range ms {
		if m.Category == c && !m.Kind.Persistent() {
			n++
		}
	}
	return n
}

func TestLevelUnwindsLargeXP(t *testing.T) {
	p := Level(Progression{Level: 30, XP: 250, SoulCoins: 1, Stats: Stats{HP: 3, MP: 0, SP: 7, RP: 50}})
	assert.Equal(t, Progression{Level: 32, XP: 50, SoulCoins: 11, Stats: FullStats()}, p)

	p = Level(Progression{Level: 30, XP: 99, Stats: Stats{HP: 3}})
	assert.Equal(t, 30, p.Level)
	assert.Equal(t, Stats{HP: 3}, p.Stats)
}

func TestCompleteHundredXPLevelsUp(t *testing.T) {
	g, store := newTestGame(t, midGame(
		ordinary("a", catalog.CategoryHealth, 100),
		ordinary("b", catalog.CategoryWealth, 10),
	), nil)
	ctx := context.Background()

	res, err := g.CompleteMission(ctx, "a")
	require.NoError(t, err)
	assert.True(t, res.LevelUp)

	st := g.State()
	assert.Equal(t, 31, st.Level)
	assert.Equal(t, 0, st.XP)
	assert.Equal(t, FullStats(), st.Stats)
	assert.Equal(t, 5, st.SoulCoins)
	assert.Equal(t, 40, st.PowerPoints)
	assert.Equal(t, 100, st.AbilityXP["Physique"])
	require.Len(t, store.records, 1)
	assert.Equal(t, 100, store.records[0].XPGained)
}

func TestCompleteMissionHugeXPKeepsInvariant(t *testing.T) {
	g, _ := newTestGame(t, midGame(ordinary("a", catalog.CategoryMind, 1234)), nil)

	_, err := g.CompleteMission(context.Background(), "a")
	require.NoError(t, err)
	st := g.State()
	assert.GreaterOrEqual(t, st.Level, StartingLevel)
	assert.GreaterOrEqual(t, st.XP, 0)
	assert.Less(t, st.XP, XPPerLevel)
	// 1234 + 10 daily bonus
	assert.Equal(t, 30+12, st.Level)
	assert.Equal(t, 44, st.XP)
}

func TestCompleteMissionTwiceIsIdempotent(t *testing.T) {
	g, _ := newTestGame(t, midGame(
		ordinary("a", catalog.CategoryHealth, 20),
		ordinary("b", catalog.CategorySoul, 20),
	), nil)
	ctx := context.Background()

	_, err := g.CompleteMission(ctx, "a")
	require.NoError(t, err)
	once := g.State()

	_, err = g.CompleteMission(ctx, "a")
	assert.ErrorIs(t, err, ErrAlreadyCompleted)
	assert.Equal(t, once, g.State())

	_, err = g.CompleteMission(ctx, "missing")
	assert.ErrorIs(t, err, ErrMissionNotFound)
	var ve ValidationError
	assert.True(t, errors.As(err, &ve))
}

func TestStatsStayInRange(t *testing.T) {
	var ms []Mission
	for i := range 15 {
		ms = append(ms, ordinary(fmt.Sprint(i), catalog.CategoryWealth, 1))
	}
	g, _ := newTestGame(t, midGame(ms...), nil)
	ctx := context.Background()

	for i := range 15 {
		_, err := g.CompleteMission(ctx, fmt.Sprint(i))
		require.NoError(t, err)
		s := g.State().Stats
		for _, v := range []int{s.HP, s.MP, s.SP, s.RP} {
			assert.GreaterOrEqual(t, v, 0)
			assert.LessOrEqual(t, v, MaxStat)
		}
	}
	assert.Equal(t, 0, g.State().Stats.MP)
	assert.Equal(t, 25, g.State().Stats.SP)
}

func TestDailyBonusPaidOnce(t *testing.T) {
	g, _ := newTestGame(t, midGame(
		ordinary("a", catalog.CategoryWealth, 10),
		ordinary("b", catalog.CategoryWealth, 10),
	), nil)
	ctx := context.Background()

	res, err := g.CompleteMission(ctx, "a")
	require.NoError(t, err)
	assert.False(t, res.DailyBonus)

	res, err = g.CompleteMission(ctx, "b")
	require.NoError(t, err)
	assert.True(t, res.DailyBonus)

	st := g.State()
	assert.Equal(t, 30, st.XP)
	assert.Equal(t, DailyBonusSoulCoins, st.SoulCoins)
	assert.Equal(t, 4+4+DailyBonusPowerPoints, st.PowerPoints)
	assert.True(t, st.DailyBonusClaimed)
}

func TestRitualDueEveryThreeDays(t *testing.T) {
	r := RecurringMission{FrequencyType: FrequencyEveryDays, FrequencyValue: 3, StartDay: 5}
	for _, d := range []int{5, 8, 11, 14} {
		assert.True(t, r.Due(d), "day %d", d)
	}
	for _, d := range []int{3, 4, 6, 7, 9, 10} {
		assert.False(t, r.Due(d), "day %d", d)
	}
	assert.True(t, RecurringMission{FrequencyType: FrequencyDaily}.Due(99))
}

func TestAdmitRitualsStopsAtCap(t *testing.T) {
	rs := []RecurringMission{
		{ID: "1", FrequencyType: FrequencyDaily, XP: 20},
		{ID: "2", FrequencyType: FrequencyEveryDays, FrequencyValue: 2, StartDay: 1, XP: 25},
		{ID: "3", FrequencyType: FrequencyDaily, XP: 10},
		{ID: "4", FrequencyType: FrequencyDaily, XP: 5},
	}
	ids := func(rs []RecurringMission) []string {
		var out []string
		for _, r := range rs {
			out = append(out, r.ID)
		}
		return out
	}
	// 20+25 fits, the third would reach 55, so the cheaper fourth never gets a turn.
	assert.Equal(t, []string{"1", "2"}, ids(admitRituals(rs, 3)))
	assert.Equal(t, []string{"1", "3", "4"}, ids(admitRituals(rs, 2)))
}

func TestAddRitualAnchorsToCurrentDay(t *testing.T) {
	st := midGame()
	st.Day = 5
	g, _ := newTestGame(t, st, nil)
	ctx := context.Background()

	added, err := g.AddRecurringMission(ctx, RitualInput{Title: "Stretch", Category: catalog.CategoryHealth, FrequencyType: FrequencyEveryDays, FrequencyValue: 3})
	require.NoError(t, err)
	require.NoError(t, added.SaveErr)
	r := added.Ritual
	assert.Equal(t, 5, r.StartDay)
	assert.Equal(t, DefaultRitualXP, r.XP)

	_, err = g.AddRecurringMission(ctx, RitualInput{Title: "", Category: catalog.CategoryHealth, FrequencyType: FrequencyDaily})
	assert.Error(t, err)

	deleted, err := g.DeleteRecurringMission(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, r.ID, deleted.Ritual.ID)
	_, err = g.DeleteRecurringMission(ctx, r.ID)
	assert.ErrorIs(t, err, ErrRitualNotFound)
	assert.Empty(t, g.State().RecurringMissions)
}

func TestRitualSaveFailureIsReported(t *testing.T) {
	g, store := newTestGame(t, midGame(), nil)
	store.saveErr = errors.New("disk full")
	ctx := context.Background()

	added, err := g.AddRecurringMission(ctx, RitualInput{Title: "Stretch", Category: catalog.CategoryHealth, FrequencyType: FrequencyDaily})
	require.NoError(t, err)
	var se SaveError
	require.True(t, errors.As(added.SaveErr, &se))
	assert.Len(t, g.State().RecurringMissions, 1)

	deleted, err := g.DeleteRecurringMission(ctx, added.Ritual.ID)
	require.NoError(t, err)
	assert.ErrorAs(t, deleted.SaveErr, &se)
	assert.Empty(t, g.State().RecurringMissions)
}

func TestFirstDayUsesJourney(t *testing.T) {
	g, _ := newTestGame(t, nil, failingProvider{})

	res, err := g.StartNewDay(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Day)
	assert.Equal(t, SourceJourney, res.Source)

	st := g.State()
	assert.True(t, st.Started)
	require.Len(t, st.ordinaryMissions(), 3)
	for _, m := range st.ordinaryMissions() {
		assert.Equal(t, 25, m.XP)
	}

	require.Len(t, res.NewTrials, 1)
	trial := res.NewTrials[0]
	assert.Equal(t, Trial("Neru"), trial.Kind)
	power := st.KazukiPower["Neru"]
	assert.GreaterOrEqual(t, power, 40)
	assert.Less(t, power, 60)
	assert.Equal(t, power/4, trial.PowerPointsReward)
}

func TestNewDayRefusesIncompleteUnlessForced(t *testing.T) {
	g, _ := newTestGame(t, midGame(ordinary("a", catalog.CategoryHealth, 10)), nil)
	ctx := context.Background()

	_, err := g.StartNewDay(ctx, false)
	assert.ErrorIs(t, err, ErrIncompleteMissions)
	assert.Equal(t, 40, g.State().Day)

	res, err := g.StartNewDay(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, 41, res.Day)
	assert.Equal(t, 1, g.State().ConsecutiveDaysFailed)
}

func TestRolloverKeepsOnlyIncompletePersistentMissions(t *testing.T) {
	done := ordinary("done", catalog.CategoryHealth, 10)
	done.Completed = true
	trialDone := Mission{ID: "trial-done", Title: "Old trial", Kind: Trial("Zorga"), Completed: true}
	st := midGame(
		done,
		ordinary("open", catalog.CategoryMind, 10),
		Mission{ID: "trial", Title: "Trial of Neru", Kind: Trial("Neru")},
		trialDone,
		Mission{ID: "act", Title: "Activate", Kind: Activation("x")},
		Mission{ID: "boss", Title: "Confront Neru", Kind: Boss("Neru")},
	)
	st.KazukiPower["Neru"] = 45
	g, _ := newTestGame(t, st, nil)

	res, err := g.StartNewDay(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, 3, res.CarriedOver)

	ids := map[string]bool{}
	for _, m := range g.State().Missions {
		ids[m.ID] = true
	}
	assert.True(t, ids["trial"])
	assert.True(t, ids["act"])
	assert.True(t, ids["boss"])
	assert.False(t, ids["done"])
	assert.False(t, ids["open"])
	assert.False(t, ids["trial-done"])
	assert.Empty(t, res.NewTrials)
}

func TestPenaltyAfterThreeFailedDays(t *testing.T) {
	st := midGame(ordinary("a", catalog.CategoryHealth, 10))
	st.KazukiPower["Neru"] = 48
	g, _ := newTestGame(t, st, failingProvider{})
	ctx := context.Background()

	for want := 1; want <= 2; want++ {
		res, err := g.StartNewDay(ctx, true)
		require.NoError(t, err)
		assert.Nil(t, res.Penalty)
		assert.Equal(t, want, g.State().ConsecutiveDaysFailed)
	}

	res, err := g.StartNewDay(ctx, true)
	require.NoError(t, err)
	require.NotNil(t, res.Penalty)
	assert.Equal(t, Penalty{Kazuki: "Neru", Before: 48, After: 60, JournalEntry: res.Penalty.JournalEntry}, *res.Penalty)

	after := g.State()
	assert.Equal(t, map[string]int{"Neru": 60}, after.BoostedKazuki)
	assert.Equal(t, 0, after.ConsecutiveDaysFailed)
	assert.Len(t, after.JournalEntries, 1)
	assert.Equal(t, 60, after.KazukiCurrentPower("Neru"))
}

func TestCompletedDayResetsFailureStreak(t *testing.T) {
	done := ordinary("a", catalog.CategoryHealth, 10)
	done.Completed = true
	st := midGame(done)
	st.ConsecutiveDaysFailed = 2
	st.KazukiPower["Neru"] = 48
	g, _ := newTestGame(t, st, nil)

	res, err := g.StartNewDay(context.Background(), false)
	require.NoError(t, err)
	assert.Nil(t, res.Penalty)
	assert.Equal(t, 0, g.State().ConsecutiveDaysFailed)
	assert.Empty(t, g.State().BoostedKazuki)
}

func TestRolloverFallsBackPerCategory(t *testing.T) {
	g, _ := newTestGame(t, midGame(), failingProvider{})

	res, err := g.StartNewDay(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, SourceGenerated, res.Source)

	ms := g.State().Missions
	for _, c := range catalog.Categories {
		assert.Equal(t, 1, countCategory(ms, c), "category %s", c)
	}
	for _, m := range ms {
		assert.NotEmpty(t, m.Title)
		assert.NotEmpty(t, m.Description)
		assert.Positive(t, m.XP)
	}
}

func TestRolloverRitualsCoverCategories(t *testing.T) {
	st := midGame()
	st.RecurringMissions = []RecurringMission{
		{ID: "r1", Title: "Morning run", Description: "Run.", Category: catalog.CategoryHealth, FrequencyType: FrequencyDaily, XP: 30},
		{ID: "r2", Title: "Budget", Description: "Review.", Category: catalog.CategoryWealth, FrequencyType: FrequencyDaily, XP: 30},
	}
	g, _ := newTestGame(t, st, failingProvider{})

	res, err := g.StartNewDay(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, 1, res.RitualsAdmitted)

	ms := g.State().ordinaryMissions()
	require.Len(t, ms, 4)
	assert.Equal(t, "Morning run", ms[0].Title)
	assert.Equal(t, 30, ms[0].XP)
	for _, c := range catalog.Categories {
		assert.Equal(t, 1, countCategory(ms, c), "category %s", c)
	}
}

func TestSecondRolloverRefusedWhileGenerating(t *testing.T) {
	p := blockingProvider{entered: make(chan struct{}), release: make(chan struct{})}
	g, _ := newTestGame(t, midGame(), p)
	ctx := context.Background()

	done := make(chan error, 1)
	go func() {
		_, err := g.StartNewDay(ctx, true)
		done <- err
	}()
	<-p.entered
	assert.True(t, g.Generating())

	_, err := g.StartNewDay(ctx, true)
	assert.ErrorIs(t, err, ErrGenerationInProgress)
	_, err = g.ForgeMission(ctx, catalog.CategoryMind)
	assert.ErrorIs(t, err, ErrGenerationInProgress)

	close(p.release)
	require.NoError(t, <-done)
	assert.Equal(t, 41, g.State().Day)
	assert.False(t, g.Generating())
}

func TestPurchaseWithoutCoinsChangesNothing(t *testing.T) {
	st := midGame()
	st.SoulCoins = 40
	g, store := newTestGame(t, st, nil)
	before := g.State()

	_, err := g.PurchaseStatBoost(context.Background(), "Health", 5)
	assert.ErrorIs(t, err, ErrInsufficientSoulCoins)
	assert.Equal(t, before, g.State())
	assert.Zero(t, store.saves)
}

func TestActivationMissionGrantsPermanentStat(t *testing.T) {
	st := midGame()
	st.SoulCoins = 100
	g, _ := newTestGame(t, st, failingProvider{})
	ctx := context.Background()

	res, err := g.PurchaseStatBoost(ctx, "intellect", 2)
	require.NoError(t, err)
	assert.Equal(t, 40, res.Cost)
	assert.Equal(t, KindActivation, res.Mission.Kind.Type)
	assert.Equal(t, catalog.CategoryMind, res.Mission.Category)

	mid := g.State()
	assert.Equal(t, 60, mid.SoulCoins)
	require.Len(t, mid.PendingActivations, 1)
	assert.Zero(t, mid.PermanentStats["Intellect"])

	done, err := g.CompleteMission(ctx, res.Mission.ID)
	require.NoError(t, err)
	assert.Equal(t, "Intellect", done.ActivatedStat)

	after := g.State()
	assert.Equal(t, 2, after.PermanentStats["Intellect"])
	assert.Empty(t, after.PendingActivations)
	assert.True(t, after.Missions[after.missionIndex(res.Mission.ID)].Completed)
}

func TestControlKazuki(t *testing.T) {
	st := midGame()
	st.KazukiPower["Neru"] = 50
	st.PowerPoints = 49
	g, _ := newTestGame(t, st, nil)
	ctx := context.Background()

	_, err := g.ControlKazuki(ctx, "Zorga")
	assert.ErrorIs(t, err, ErrKazukiNotEncountered)
	_, err = g.ControlKazuki(ctx, "Nobody")
	assert.ErrorIs(t, err, ErrUnknownKazuki)

	_, err = g.ControlKazuki(ctx, "Neru")
	assert.ErrorIs(t, err, ErrInsufficientPowerPoints)
	assert.Equal(t, 49, g.State().PowerPoints)

	st = g.State()
	st.PowerPoints = 55
	require.NoError(t, g.Replace(ctx, st))

	res, err := g.ControlKazuki(ctx, "neru")
	require.NoError(t, err)
	assert.Equal(t, 50, res.PowerSpent)
	assert.InDelta(t, 1.1, res.XPMultiplier, 1e-9)
	assert.Equal(t, 5, g.State().PowerPoints)
	assert.Contains(t, g.State().UnlockedAchievements, "kazuki_first")

	_, err = g.ControlKazuki(ctx, "Neru")
	assert.ErrorIs(t, err, ErrAlreadyControlled)
}

func TestTrialCompletionControlsKazuki(t *testing.T) {
	st := midGame(Mission{ID: "t", Title: "Trial of Neru", Category: catalog.CategorySoul, XP: 20, Kind: Trial("Neru"), PowerPointsReward: 12})
	st.KazukiPower["Neru"] = 48
	g, _ := newTestGame(t, st, nil)

	res, err := g.CompleteMission(context.Background(), "t")
	require.NoError(t, err)
	assert.Equal(t, "Neru", res.ControlledKazuki)
	assert.Equal(t, PowerPointsFor(20)+12, res.PowerPointsGained)
	assert.InDelta(t, 1.1, g.State().XPMultiplier, 1e-9)
	assert.Equal(t, 20, g.State().AbilityXP["Memory"])
}

func TestEncounterIsIdempotent(t *testing.T) {
	st := midGame()
	st.Level = 36
	g, _ := newTestGame(t, st, nil)
	ctx := context.Background()

	next := g.State()
	first := g.encounterKazuki(ctx, next, nil)
	require.Len(t, first, 2)
	assert.Empty(t, g.encounterKazuki(ctx, next, nil))
	assert.Len(t, next.KazukiPower, 2)
}

func TestConfrontKazukiOpensOneBossMission(t *testing.T) {
	st := midGame()
	st.KazukiPower["Neru"] = 48
	g, _ := newTestGame(t, st, nil)
	ctx := context.Background()

	m1, err := g.ConfrontKazuki(ctx, "Neru")
	require.NoError(t, err)
	assert.Equal(t, Boss("Neru"), m1.Mission.Kind)
	m2, err := g.ConfrontKazuki(ctx, "Neru")
	require.NoError(t, err)
	assert.Equal(t, m1.Mission.ID, m2.Mission.ID)
	assert.Len(t, g.State().Missions, 1)
}

func TestConfrontSaveFailureIsReported(t *testing.T) {
	st := midGame()
	st.KazukiPower["Neru"] = 48
	g, store := newTestGame(t, st, nil)
	store.saveErr = errors.New("disk full")

	res, err := g.ConfrontKazuki(context.Background(), "Neru")
	require.NoError(t, err)
	var se SaveError
	assert.ErrorAs(t, res.SaveErr, &se)
	assert.Len(t, g.State().Missions, 1)
}

func TestControlDismissesOpenKazukiMissions(t *testing.T) {
	st := midGame(
		Mission{ID: "t", Title: "Trial of Neru", Category: catalog.CategorySoul, XP: 20, Kind: Trial("Neru"), PowerPointsReward: 12},
		Mission{ID: "b", Title: "Face Neru", Category: catalog.CategorySoul, XP: 40, Kind: Boss("Neru")},
		Mission{ID: "z", Title: "Trial of Zorga", Category: catalog.CategorySoul, XP: 20, Kind: Trial("Zorga")},
		ordinary("a", catalog.CategoryHealth, 10),
	)
	st.KazukiPower["Neru"] = 48
	st.KazukiPower["Zorga"] = 70
	st.PowerPoints = 60
	g, _ := newTestGame(t, st, nil)
	ctx := context.Background()

	res, err := g.ControlKazuki(ctx, "Neru")
	require.NoError(t, err)
	assert.Equal(t, 2, res.Dismissed)

	after := g.State()
	assert.Equal(t, -1, after.missionIndex("t"))
	assert.Equal(t, -1, after.missionIndex("b"))
	assert.GreaterOrEqual(t, after.missionIndex("z"), 0)
	assert.GreaterOrEqual(t, after.missionIndex("a"), 0)
	_, err = g.CompleteMission(ctx, "t")
	assert.ErrorIs(t, err, ErrMissionNotFound)
}

func TestTrialCompletionDismissesBossMission(t *testing.T) {
	st := midGame(
		Mission{ID: "t", Title: "Trial of Neru", Category: catalog.CategorySoul, XP: 20, Kind: Trial("Neru")},
		Mission{ID: "b", Title: "Face Neru", Category: catalog.CategorySoul, XP: 40, Kind: Boss("Neru")},
	)
	st.KazukiPower["Neru"] = 48
	g, _ := newTestGame(t, st, nil)

	res, err := g.CompleteMission(context.Background(), "t")
	require.NoError(t, err)
	assert.Equal(t, "Neru", res.ControlledKazuki)
	after := g.State()
	require.Len(t, after.Missions, 1)
	assert.True(t, after.Missions[0].Completed)
}

func TestForgeMission(t *testing.T) {
	st := midGame()
	st.PowerPoints = 40
	g, _ := newTestGame(t, st, nil)
	ctx := context.Background()

	m, err := g.ForgeMission(ctx, catalog.CategorySoul)
	require.NoError(t, err)
	assert.Equal(t, catalog.CategorySoul, m.Mission.Category)
	assert.Equal(t, 25, g.State().PowerPoints)

	_, err = g.ForgeMission(ctx, catalog.CategoryMind)
	require.NoError(t, err)
	_, err = g.ForgeMission(ctx, catalog.CategoryMind)
	assert.ErrorIs(t, err, ErrDailyLimitReached)
	assert.Equal(t, 10, g.State().PowerPoints)
	assert.Len(t, g.State().Missions, 2)
}

func TestReadingBlocks(t *testing.T) {
	g, _ := newTestGame(t, midGame(), nil)
	ctx := context.Background()

	for _, want := range ReadingRewards {
		res, err := g.CompleteReadingBlock(ctx)
		require.NoError(t, err)
		assert.Equal(t, want, res.XPGained)
	}
	_, err := g.CompleteReadingBlock(ctx)
	assert.ErrorIs(t, err, ErrDailyLimitReached)
	assert.Equal(t, 60, g.State().XP)
}

func TestJournalEntry(t *testing.T) {
	st := midGame()
	st.Stats.RP = 90
	g, _ := newTestGame(t, st, nil)
	ctx := context.Background()

	res, err := g.SaveJournalEntry(ctx, "  Today I held the line.  ")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Entries)
	var ids []string
	for _, a := range res.NewAchievements {
		ids = append(ids, a.ID)
	}
	assert.Contains(t, ids, "journal_1")
	assert.Equal(t, MaxStat, g.State().Stats.RP)
	assert.Equal(t, []string{"Today I held the line."}, g.State().JournalEntries)

	_, err = g.SaveJournalEntry(ctx, "   ")
	assert.Error(t, err)
}

func TestAbilityTest(t *testing.T) {
	st := midGame()
	st.AbilityXP["Intellect"] = 160
	g, _ := newTestGame(t, st, failingProvider{})
	ctx := context.Background()

	_, err := g.SubmitAbilityTest(ctx, "Intellect", "anything")
	assert.ErrorIs(t, err, ErrNoActiveTest)

	q, err := g.StartAbilityTest(ctx, "Intellect")
	require.NoError(t, err)
	assert.NotEmpty(t, q.Question)
	again, err := g.StartAbilityTest(ctx, "Intellect")
	require.NoError(t, err)
	assert.Equal(t, q.Question, again.Question)

	res, err := g.SubmitAbilityTest(ctx, "Intellect", "short")
	require.NoError(t, err)
	assert.False(t, res.Worthy)
	assert.Equal(t, 1, res.Level)

	res, err = g.SubmitAbilityTest(ctx, "Intellect", "I listed every assumption, tested each one against evidence, and kept only what survived")
	require.NoError(t, err)
	assert.True(t, res.Worthy)
	assert.Equal(t, 2, res.Level)
	after := g.State()
	assert.Equal(t, 10, after.AbilityXP["Intellect"])
	assert.Empty(t, after.CurrentTests)

	_, err = g.StartAbilityTest(ctx, "Physique")
	var ve ValidationError
	assert.True(t, errors.As(err, &ve))
}

func TestSaveFailureKeepsState(t *testing.T) {
	g, store := newTestGame(t, midGame(ordinary("a", catalog.CategoryHealth, 10), ordinary("b", catalog.CategoryHealth, 10)), nil)
	store.saveErr = errors.New("disk full")

	res, err := g.CompleteMission(context.Background(), "a")
	require.NoError(t, err)
	var se SaveError
	require.True(t, errors.As(res.SaveErr, &se))
	assert.True(t, g.State().Missions[0].Completed)
	assert.Error(t, g.LastSaveError())
}

func TestCorruptSaveStartsFresh(t *testing.T) {
	store := &memStore{loadErr: fmt.Errorf("%w: bad json", ErrCorruptSave)}
	g, err := NewGame(context.Background(), Options{Store: store})
	require.NoError(t, err)
	assert.ErrorIs(t, g.LoadError(), ErrCorruptSave)
	st := g.State()
	assert.Equal(t, StartingLevel, st.Level)
	assert.Equal(t, 1, st.Day)
	assert.Equal(t, FullStats(), st.Stats)
	assert.Equal(t, 1.0, st.XPMultiplier)

	// The fresh game may replace the corrupt save.
	_, err = g.SaveJournalEntry(context.Background(), "begin again")
	require.NoError(t, err)
	assert.Equal(t, 1, store.saves)
}

func TestUnreadableStoreIsNeverOverwritten(t *testing.T) {
	saved := midGame()
	saved.Level = 77
	store := &memStore{state: saved, loadErr: errors.New("database is locked")}
	g, err := NewGame(context.Background(), Options{Store: store})
	require.NoError(t, err)
	assert.Error(t, g.LoadError())
	ctx := context.Background()

	_, err = g.SaveJournalEntry(ctx, "first words")
	assert.ErrorIs(t, err, ErrStoreUnavailable)
	_, err = g.StartNewDay(ctx, true)
	assert.ErrorIs(t, err, ErrStoreUnavailable)
	assert.Zero(t, store.saves)
	assert.Equal(t, 77, store.state.Level)

	store.mu.Lock()
	store.loadErr = nil
	store.mu.Unlock()

	_, err = g.SaveJournalEntry(ctx, "first words")
	require.NoError(t, err)
	assert.NoError(t, g.LoadError())
	assert.Equal(t, 77, store.state.Level)
	assert.Equal(t, []string{"first words"}, store.state.JournalEntries)
}

func TestMutationsSeeOtherGamesSaves(t *testing.T) {
	st := midGame(
		ordinary("a", catalog.CategoryHealth, 10),
		ordinary("b", catalog.CategoryWealth, 10),
	)
	long, store := newTestGame(t, st, nil)
	other, err := NewGame(context.Background(), Options{Store: store, RNG: NewSeededRNG(9)})
	require.NoError(t, err)
	ctx := context.Background()

	_, err = other.CompleteMission(ctx, "a")
	require.NoError(t, err)
	_, err = other.SaveJournalEntry(ctx, "written elsewhere")
	require.NoError(t, err)

	_, err = long.StartNewDay(ctx, true)
	require.NoError(t, err)

	saved := store.state
	assert.Equal(t, 41, saved.Day)
	assert.Equal(t, []string{"Mission a"}, saved.CompletedMissionHistory)
	assert.Equal(t, []string{"written elsewhere"}, saved.JournalEntries)
	assert.Equal(t, saved.JournalEntries, long.State().JournalEntries)
}

func TestReloadPicksUpOtherGamesSaves(t *testing.T) {
	long, store := newTestGame(t, midGame(ordinary("a", catalog.CategoryHealth, 10)), nil)
	other, err := NewGame(context.Background(), Options{Store: store})
	require.NoError(t, err)
	ctx := context.Background()

	_, err = other.CompleteMission(ctx, "a")
	require.NoError(t, err)
	assert.False(t, long.State().Missions[0].Completed)

	require.NoError(t, long.Reload(ctx))
	assert.True(t, long.State().Missions[0].Completed)
}

func TestStatusAnswersWhileGenerating(t *testing.T) {
	p := blockingProvider{entered: make(chan struct{}), release: make(chan struct{})}
	g, _ := newTestGame(t, midGame(), p)
	ctx := context.Background()

	done := make(chan error, 1)
	go func() {
		_, err := g.StartNewDay(ctx, true)
		done <- err
	}()
	<-p.entered

	status := make(chan Status, 1)
	go func() { status <- g.Status() }()
	select {
	case s := <-status:
		assert.True(t, s.Generating)
		assert.Equal(t, 40, s.Day)
	case <-time.After(500 * time.Millisecond):
		t.Fatal("Status blocked while missions were generated")
	}
	_, err := g.SaveJournalEntry(ctx, "written during generation")
	require.NoError(t, err)

	close(p.release)
	require.NoError(t, <-done)
	st := g.State()
	assert.Equal(t, 41, st.Day)
	assert.Equal(t, []string{"written during generation"}, st.JournalEntries)
}

func TestRolloverRefusedWhenDayChangedDuringGeneration(t *testing.T) {
	p := blockingProvider{entered: make(chan struct{}), release: make(chan struct{})}
	g, store := newTestGame(t, midGame(), p)
	ctx := context.Background()

	done := make(chan error, 1)
	go func() {
		_, err := g.StartNewDay(ctx, true)
		done <- err
	}()
	<-p.entered

	// Another process rolls the day over meanwhile.
	store.mu.Lock()
	moved := store.state.Clone()
	moved.Day = 41
	store.state = moved
	store.mu.Unlock()

	close(p.release)
	assert.ErrorIs(t, <-done, ErrStateChanged)
	assert.Equal(t, 41, g.State().Day)
}

func TestBreathingGate(t *testing.T) {
	style, ok := catalog.Default().BreathingStyle("Iron Lung Breathing")
	require.True(t, ok)
	assert.NoError(t, CanUseBreathingStyle(style.UnlockLevel, style))

	var gate GateError
	locked := catalog.Default().BreathingStyles[len(catalog.Default().BreathingStyles)-1]
	require.True(t, errors.As(CanUseBreathingStyle(30, locked), &gate))
	assert.Equal(t, locked.UnlockLevel, gate.RequiredLevel)
}
