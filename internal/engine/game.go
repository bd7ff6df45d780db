package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/Libretto-Pic/the-sage-game/internal/achievements"
	"github.com/Libretto-Pic/the-sage-game/internal/catalog"
	"github.com/Libretto-Pic/the-sage-game/internal/generator"
)

// CompletionRecord is one line of the mission log.
type CompletionRecord struct {
	MissionID string
	Title     string
	Category  catalog.Category
	Kind      MissionKind
	XPGained  int
	Day       int
	At        time.Time
}

// Store persists the player state. Load returns nil, nil when no game is saved.
type Store interface {
	Load(ctx context.Context) (*PlayerState, error)
	Save(ctx context.Context, st *PlayerState, done []CompletionRecord) error
}

type Options struct {
	Catalog  *catalog.Catalog
	Provider generator.Provider
	Store    Store
	Logger   *slog.Logger
	RNG      RandomSource
	NewID    func() string
	Now      func() time.Time
}

// Game owns the player state. Every mutation reloads the saved state and applies
// its change under mu. Operations that call the generator also hold the busy flag
// and release mu while the generator runs.
type Game struct {
	mu    sync.Mutex
	busy  atomic.Bool
	state *PlayerState

	cat      *catalog.Catalog
	gen      generator.Provider
	fallback *generator.Fallback
	ach      *achievements.Evaluator
	store    Store
	rng      RandomSource
	newID    func() string
	now      func() time.Time
	log      *slog.Logger

	loadErr error
	saveErr error
	// unsaved is set while the in-memory state is ahead of the store.
	unsaved bool
}

// NewGame loads the saved state. A corrupt save starts a fresh game that may
// overwrite it. Any other load failure also starts fresh in memory, but mutations
// are refused until the store can be read. Both are reported by LoadError.
func NewGame(ctx context.Context, opts Options) (*Game, error) {
	g := &Game{
		cat:   opts.Catalog,
		store: opts.Store,
		rng:   opts.RNG,
		newID: opts.NewID,
		now:   opts.Now,
		log:   opts.Logger,
	}
	if g.cat == nil {
		g.cat = catalog.Default()
	}
	if g.log == nil {
		g.log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if g.rng == nil {
		g.rng = DefaultRNG()
	}
	if g.newID == nil {
		g.newID = uuid.NewString
	}
	if g.now == nil {
		g.now = time.Now
	}
	g.fallback = generator.NewFallback(g.cat)
	g.gen = generator.Guard(opts.Provider, g.fallback, g.log)

	ach, err := achievements.NewEvaluator(g.cat)
	if err != nil {
		return nil, err
	}
	g.ach = ach

	if g.store != nil {
		st, err := g.store.Load(ctx)
		switch {
		case errors.Is(err, ErrCorruptSave):
			g.loadErr = err
			g.log.Warn("save is corrupt, starting fresh", "err", err)
		case err != nil:
			g.loadErr = err
			g.log.Warn("load failed, mutations refused until the store is readable", "err", err)
		case st != nil:
			st.Normalize()
			g.state = st
		}
	}
	if g.state == nil {
		g.state = NewPlayerState()
	}
	return g, nil
}

func (g *Game) Catalog() *catalog.Catalog { return g.cat }

// State returns a copy of the current state.
func (g *Game) State() *PlayerState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state.Clone()
}

func (g *Game) LoadError() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.loadErr
}

func (g *Game) LastSaveError() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.saveErr
}

// Generating reports whether a rollover or generation is running.
func (g *Game) Generating() bool { return g.busy.Load() }

// Replace swaps in an imported state and saves it.
func (g *Game) Replace(ctx context.Context, st *PlayerState) error {
	st = st.Clone()
	st.Normalize()
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.commit(ctx, st, nil)
}

// Reload adopts the saved state, picking up changes made by other processes.
func (g *Game) Reload(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.sync(ctx)
}

// sync replaces the in-memory state with the saved one. It keeps the in-memory
// state when the last save failed, when nothing is saved yet, or when the save is
// corrupt. Any other load failure is returned and the caller must not commit.
// mu must be held.
func (g *Game) sync(ctx context.Context) error {
	if g.store == nil || g.unsaved {
		return nil
	}
	st, err := g.store.Load(ctx)
	switch {
	case errors.Is(err, ErrCorruptSave):
		return nil
	case err != nil:
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	case st != nil:
		st.Normalize()
		g.state = st
		g.loadErr = nil
	}
	return nil
}

// locked runs fn with mu held on a state freshly reloaded from the store.
func (g *Game) locked(ctx context.Context, fn func() error) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.sync(ctx); err != nil {
		return err
	}
	return fn()
}

// commit makes next the current state and saves it. A save failure is logged and
// returned but never undoes the swap.
func (g *Game) commit(ctx context.Context, next *PlayerState, done []CompletionRecord) error {
	next.Version = StateVersion
	g.state = next
	g.saveErr = nil
	if g.store == nil {
		return nil
	}
	if err := g.store.Save(ctx, next.Clone(), done); err != nil {
		g.saveErr = SaveError{Err: err}
		g.unsaved = true
		g.log.Warn("save failed", "err", err)
		return g.saveErr
	}
	g.unsaved = false
	return nil
}

// beginGeneration claims the busy flag. The caller must release it.
func (g *Game) beginGeneration() error {
	if !g.busy.CompareAndSwap(false, true) {
		return ErrGenerationInProgress
	}
	return nil
}

func (g *Game) endGeneration() { g.busy.Store(false) }

func progressOf(st *PlayerState) achievements.Progress {
	return achievements.Progress{
		Level:             st.Level,
		Day:               st.Day,
		MissionsCompleted: len(st.CompletedMissionHistory),
		JournalEntries:    len(st.JournalEntries),
		SoulCoins:         st.SoulCoins,
		PowerPoints:       st.PowerPoints,
		XPMultiplier:      st.XPMultiplier,
		ControlledKazuki:  st.ControlledKazuki,
	}
}

// evaluateAchievements folds newly unlocked achievements into st.
func (g *Game) evaluateAchievements(st *PlayerState) []catalog.Achievement {
	res, err := g.ach.Evaluate(progressOf(st), st.UnlockedAchievements)
	if err != nil {
		g.log.Warn("achievement evaluation", "err", err)
	}
	if res.Unlocked != nil {
		st.UnlockedAchievements = res.Unlocked
	}
	for _, a := range res.Newly {
		g.log.Info("achievement unlocked", "id", a.ID)
	}
	return res.Newly
}
