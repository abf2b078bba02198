package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/hhushhas/fingerpain/internal/model"
)

// StartRun records a daemon instance.
func (s *Store) StartRun(ctx context.Context, run model.Run) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, pid, started_at) VALUES (?, ?, ?)`,
		run.ID, run.PID, run.StartedAt.Unix())
	return err
}

// FinishRun marks a daemon instance as stopped.
func (s *Store) FinishRun(ctx context.Context, id string, endedAt time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET ended_at = ? WHERE id = ?`, endedAt.Unix(), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// LatestRun returns the most recently started daemon instance.
func (s *Store) LatestRun(ctx context.Context) (model.Run, error) {
	var run model.Run
	var started int64
	var ended sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		`SELECT id, pid, started_at, ended_at FROM runs ORDER BY started_at DESC, rowid DESC LIMIT 1`,
	).Scan(&run.ID, &run.PID, &started, &ended)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Run{}, ErrNotFound
	}
	if err != nil {
		return model.Run{}, err
	}
	run.StartedAt = time.Unix(started, 0).UTC()
	if ended.Valid {
		run.EndedAt = time.Unix(ended.Int64, 0).UTC()
	}
	return run, nil
}
