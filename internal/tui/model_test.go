package tui

import (
	"context"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Libretto-Pic/the-sage-game/internal/engine"
)

func newBoard(t *testing.T) boardModel {
	t.Helper()
	g, err := engine.NewGame(context.Background(), engine.Options{RNG: engine.NewSeededRNG(1)})
	require.NoError(t, err)
	return newBoardModel(context.Background(), g)
}

// run executes cmd and feeds its message back into the model.
func run(t *testing.T, m boardModel, cmd tea.Cmd) boardModel {
	t.Helper()
	require.NotNil(t, cmd)
	next, _ := m.Update(cmd())
	return next.(boardModel)
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestBoardStartsDayAndCompletes(t *testing.T) {
	m := newBoard(t)
	assert.Empty(t, m.missions)
	assert.Contains(t, m.View(), "press n")

	next, cmd := m.Update(key("n"))
	m = run(t, next.(boardModel), cmd)
	require.NotEmpty(t, m.missions)
	assert.Equal(t, 1, m.status.Day)
	assert.Contains(t, m.lastLog, "Day 1 begins")

	next, cmd = m.Update(key("c"))
	m = run(t, next.(boardModel), cmd)
	assert.True(t, m.missions[0].Completed)
	assert.Contains(t, m.lastLog, "XP")

	next, cmd = m.Update(key("c"))
	m = next.(boardModel)
	assert.Nil(t, cmd)
	assert.Equal(t, "Already done.", m.lastLog)
}

func TestBoardRefusesUnfinishedDay(t *testing.T) {
	m := newBoard(t)
	next, cmd := m.Update(key("n"))
	m = run(t, next.(boardModel), cmd)

	next, cmd = m.Update(key("n"))
	m = run(t, next.(boardModel), cmd)
	assert.Contains(t, m.lastLog, "press N to force")
	assert.Equal(t, 1, m.status.Day)

	next, cmd = m.Update(key("N"))
	m = run(t, next.(boardModel), cmd)
	assert.Equal(t, 2, m.status.Day)
}

func TestBoardJournalEntry(t *testing.T) {
	m := newBoard(t)
	next, _ := m.Update(key("w"))
	m = next.(boardModel)
	assert.Equal(t, modeJournal, m.mode)

	for _, r := range "breathed slowly" {
		next, _ = m.Update(key(string(r)))
		m = next.(boardModel)
	}
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(boardModel)
	assert.Equal(t, modeList, m.mode)
	m = run(t, m, cmd)
	assert.Contains(t, m.lastLog, "Journal entry #1 recorded")
	assert.Equal(t, []string{"breathed slowly"}, m.game.State().JournalEntries)
}

func TestBoardJournalEscDiscards(t *testing.T) {
	m := newBoard(t)
	next, _ := m.Update(key("w"))
	m = next.(boardModel)
	next, _ = m.Update(key("x"))
	m = next.(boardModel)
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = next.(boardModel)
	assert.Nil(t, cmd)
	assert.Equal(t, modeList, m.mode)
	assert.Empty(t, m.game.State().JournalEntries)
}

// sharedStore lets two games stand in for two sage processes on one database.
type sharedStore struct {
	mu sync.Mutex
	st *engine.PlayerState
}

func (s *sharedStore) Load(context.Context) (*engine.PlayerState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.st == nil {
		return nil, nil
	}
	return s.st.Clone(), nil
}

func (s *sharedStore) Save(_ context.Context, st *engine.PlayerState, _ []engine.CompletionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st = st
	return nil
}

func TestBoardRefreshShowsOtherCommands(t *testing.T) {
	ctx := context.Background()
	store := &sharedStore{}
	board, err := engine.NewGame(ctx, engine.Options{Store: store, RNG: engine.NewSeededRNG(1)})
	require.NoError(t, err)
	m := newBoardModel(ctx, board)

	next, cmd := m.Update(key("n"))
	m = run(t, next.(boardModel), cmd)
	require.NotEmpty(t, m.missions)

	cli, err := engine.NewGame(ctx, engine.Options{Store: store, RNG: engine.NewSeededRNG(2)})
	require.NoError(t, err)
	_, err = cli.CompleteMission(ctx, m.missions[0].ID)
	require.NoError(t, err)
	assert.Zero(t, m.status.Completed)

	next, cmd = m.Update(key("r"))
	m = run(t, next.(boardModel), cmd)
	assert.Equal(t, 1, m.status.Completed)
	assert.True(t, m.missions[0].Completed)
	assert.Contains(t, m.lastLog, "Refreshed")
}
