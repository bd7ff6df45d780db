package achievements

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Libretto-Pic/the-sage-game/internal/catalog"
)

func ids(list []catalog.Achievement) []string {
	out := make([]string, 0, len(list))
	for _, a := range list {
		out = append(out, a.ID)
	}
	return out
}

func TestEvaluateUnlocksByThreshold(t *testing.T) {
	e, err := NewEvaluator(catalog.Default())
	require.NoError(t, err)

	res, err := e.Evaluate(Progress{Level: 40, Day: 7, MissionsCompleted: 10, JournalEntries: 1, XPMultiplier: 1}, nil)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"missions_10", "level_40", "days_7", "journal_1"}, ids(res.Newly))
	assert.ElementsMatch(t, res.Unlocked, ids(res.Newly))
}

func TestEvaluateIsIdempotent(t *testing.T) {
	e, err := NewEvaluator(catalog.Default())
	require.NoError(t, err)

	p := Progress{Level: 50, Day: 30, MissionsCompleted: 55, XPMultiplier: 1}
	first, err := e.Evaluate(p, nil)
	require.NoError(t, err)
	second, err := e.Evaluate(p, first.Unlocked)
	require.NoError(t, err)

	assert.Empty(t, second.Newly)
	assert.Equal(t, first.Unlocked, second.Unlocked)
}

func TestUnlockedNeverShrinks(t *testing.T) {
	e, err := NewEvaluator(catalog.Default())
	require.NoError(t, err)

	res, err := e.Evaluate(Progress{Level: 30, Day: 1, XPMultiplier: 1}, []string{"level_100"})
	require.NoError(t, err)
	assert.Contains(t, res.Unlocked, "level_100")
}

func TestCodexMasterNeedsEveryStyle(t *testing.T) {
	e, err := NewEvaluator(catalog.Default())
	require.NoError(t, err)

	res, err := e.Evaluate(Progress{Level: 99, Day: 1, XPMultiplier: 1}, nil)
	require.NoError(t, err)
	assert.NotContains(t, res.Unlocked, "codex_master")

	res, err = e.Evaluate(Progress{Level: 100, Day: 1, XPMultiplier: 1}, nil)
	require.NoError(t, err)
	assert.Contains(t, res.Unlocked, "codex_master")
}

func TestControlledKazukiList(t *testing.T) {
	e, err := NewEvaluator(catalog.Default())
	require.NoError(t, err)

	res, err := e.Evaluate(Progress{Level: 30, Day: 1, XPMultiplier: 1.1, ControlledKazuki: []string{"Neru"}}, nil)
	require.NoError(t, err)
	assert.Contains(t, res.Unlocked, "kazuki_first")
}

func TestNonBooleanExpressionRejected(t *testing.T) {
	cat := &catalog.Catalog{Achievements: []catalog.Achievement{{ID: "bad", Unlock: "level + 1"}}}
	_, err := NewEvaluator(cat)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must evaluate to bool")
}

func TestBrokenExpressionRejected(t *testing.T) {
	cat := &catalog.Catalog{Achievements: []catalog.Achievement{{ID: "bad", Unlock: "level >= "}}}
	_, err := NewEvaluator(cat)
	assert.Error(t, err)
}
