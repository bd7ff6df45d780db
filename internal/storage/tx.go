package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Repos binds every repository to the same connection or transaction.
type Repos struct {
	Slots      *SlotRepo
	MissionLog *MissionLogRepo
}

func reposFor(q DBTX) Repos {
	return Repos{Slots: NewSlotRepo(q), MissionLog: NewMissionLogRepo(q)}
}

// WithTx runs fn inside a SQL transaction. A failed rollback is joined to fn's error.
func WithTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			return errors.Join(err, fmt.Errorf("rollback tx: %w", rbErr))
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// InTx runs fn with repositories bound to one transaction.
func InTx(ctx context.Context, db *sql.DB, fn func(r Repos) error) error {
	return WithTx(ctx, db, func(tx *sql.Tx) error {
		return fn(reposFor(tx))
	})
}
