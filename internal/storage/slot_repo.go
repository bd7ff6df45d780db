package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// PlayerStateKey is the slot holding the single player's game.
const PlayerStateKey = "sages-path-player-state"

type SlotRepo struct {
	db DBTX
}

func NewSlotRepo(db DBTX) *SlotRepo {
	return &SlotRepo{db: db}
}

func (r *SlotRepo) Get(ctx context.Context, key string) (*Slot, error) {
	row := r.db.QueryRowContext(ctx, `SELECT key, version, blob, updated_at FROM save_slots WHERE key = ?`, key)

	var s Slot
	if err := row.Scan(&s.Key, &s.Version, &s.Blob, &s.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("slot get: %w", err)
	}
	return &s, nil
}

func (r *SlotRepo) Put(ctx context.Context, s Slot) error {
	if s.UpdatedAt.IsZero() {
		s.UpdatedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO save_slots (key, version, blob, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			version = excluded.version,
			blob = excluded.blob,
			updated_at = excluded.updated_at
	`, s.Key, s.Version, s.Blob, s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("slot put: %w", err)
	}
	return nil
}

func (r *SlotRepo) Delete(ctx context.Context, key string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM save_slots WHERE key = ?`, key); err != nil {
		return fmt.Errorf("slot delete: %w", err)
	}
	return nil
}
