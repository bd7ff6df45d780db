package storage

import (
	"context"
	"fmt"
)

type MissionLogRepo struct {
	db DBTX
}

func NewMissionLogRepo(db DBTX) *MissionLogRepo {
	return &MissionLogRepo{db: db}
}

func (r *MissionLogRepo) Insert(ctx context.Context, e MissionLogEntry) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO mission_log (mission_id, title, category, kind, xp_gained, day, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, e.MissionID, e.Title, e.Category, e.Kind, e.XPGained, e.Day, e.CompletedAt)
	if err != nil {
		return 0, fmt.Errorf("mission log insert: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("mission log last insert id: %w", err)
	}
	return id, nil
}

// Recent returns the latest entries, newest first.
func (r *MissionLogRepo) Recent(ctx context.Context, limit int) ([]MissionLogEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, mission_id, title, category, kind, xp_gained, day, completed_at
		FROM mission_log
		ORDER BY completed_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("mission log recent: %w", err)
	}
	defer rows.Close()

	var out []MissionLogEntry
	for rows.Next() {
		var e MissionLogEntry
		if err := rows.Scan(&e.ID, &e.MissionID, &e.Title, &e.Category, &e.Kind, &e.XPGained, &e.Day, &e.CompletedAt); err != nil {
			return nil, fmt.Errorf("mission log scan: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("mission log rows: %w", err)
	}
	return out, nil
}

func (r *MissionLogRepo) TotalsByCategory(ctx context.Context) ([]CategoryTotal, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT category, COUNT(*), COALESCE(SUM(xp_gained), 0)
		FROM mission_log
		GROUP BY category
		ORDER BY category
	`)
	if err != nil {
		return nil, fmt.Errorf("mission log totals: %w", err)
	}
	defer rows.Close()

	var out []CategoryTotal
	for rows.Next() {
		var t CategoryTotal
		if err := rows.Scan(&t.Category, &t.Count, &t.XP); err != nil {
			return nil, fmt.Errorf("mission log totals scan: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
