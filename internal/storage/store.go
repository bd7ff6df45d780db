package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Libretto-Pic/the-sage-game/internal/engine"
	"github.com/Libretto-Pic/the-sage-game/internal/savegame"
)

// GameStore keeps the player state in a save slot and appends completions to the
// mission log in the same transaction.
type GameStore struct {
	db    *sql.DB
	codec *savegame.Codec
	key   string
	log   *slog.Logger
	now   func() time.Time
}

func NewGameStore(db *sql.DB, codec *savegame.Codec, log *slog.Logger) *GameStore {
	if log == nil {
		log = slog.Default()
	}
	return &GameStore{db: db, codec: codec, key: PlayerStateKey, log: log, now: time.Now}
}

// Load returns nil, nil when no game has been saved. A blob that cannot be decoded
// is reported with savegame.ErrCorrupt.
func (s *GameStore) Load(ctx context.Context) (*engine.PlayerState, error) {
	slot, err := reposFor(s.db).Slots.Get(ctx, s.key)
	if err != nil {
		return nil, err
	}
	if slot == nil {
		return nil, nil
	}
	st, err := s.codec.Decode(slot.Blob)
	if err != nil {
		if errors.Is(err, savegame.ErrCorrupt) {
			s.log.Warn("corrupt save slot", "key", s.key, "version", slot.Version, "err", err)
		}
		return nil, err
	}
	return st, nil
}

func (s *GameStore) Save(ctx context.Context, st *engine.PlayerState, done []engine.CompletionRecord) error {
	blob, err := s.codec.Encode(st)
	if err != nil {
		return err
	}
	return InTx(ctx, s.db, func(r Repos) error {
		if err := r.Slots.Put(ctx, Slot{Key: s.key, Version: st.Version, Blob: blob, UpdatedAt: s.now().UTC()}); err != nil {
			return err
		}
		for _, d := range done {
			if _, err := r.MissionLog.Insert(ctx, MissionLogEntry{
				MissionID:   d.MissionID,
				Title:       d.Title,
				Category:    string(d.Category),
				Kind:        string(d.Kind),
				XPGained:    d.XPGained,
				Day:         d.Day,
				CompletedAt: d.At.UTC(),
			}); err != nil {
				return fmt.Errorf("log completion %s: %w", d.MissionID, err)
			}
		}
		return nil
	})
}

func (s *GameStore) MissionLog() *MissionLogRepo { return reposFor(s.db).MissionLog }
