package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/hhushhas/fingerpain/internal/model"
)

func nullUnix(t time.Time) sql.NullInt64 {
	if t.IsZero() {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.Unix(), Valid: true}
}

// InsertSession stores a session and returns its id. Open sessions have no end time.
func (s *Store) InsertSession(ctx context.Context, sess model.TypingSession) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (start_time, end_time, char_count, word_count, wpm_avg, wpm_peak)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		sess.StartTime.Unix(),
		nullUnix(sess.EndTime),
		sess.CharCount,
		sess.WordCount,
		nullFloat(sess.WPMAvg),
		nullFloat(sess.WPMPeak),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// UpdateSession overwrites the mutable fields of an existing session.
func (s *Store) UpdateSession(ctx context.Context, sess model.TypingSession) error {
	if sess.ID == 0 {
		return ErrNotFound
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET end_time = ?, char_count = ?, word_count = ?, wpm_avg = ?, wpm_peak = ?
		 WHERE id = ?`,
		nullUnix(sess.EndTime),
		sess.CharCount,
		sess.WordCount,
		nullFloat(sess.WPMAvg),
		nullFloat(sess.WPMPeak),
		sess.ID,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("session %d: %w", sess.ID, ErrNotFound)
	}
	return nil
}

const sessionColumns = `id, start_time, end_time, char_count, word_count, wpm_avg, wpm_peak`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (model.TypingSession, error) {
	var sess model.TypingSession
	var start int64
	var end sql.NullInt64
	var avg, peak sql.NullFloat64
	if err := row.Scan(&sess.ID, &start, &end, &sess.CharCount, &sess.WordCount, &avg, &peak); err != nil {
		return model.TypingSession{}, err
	}
	sess.StartTime = time.Unix(start, 0).UTC()
	if end.Valid {
		sess.EndTime = time.Unix(end.Int64, 0).UTC()
	}
	if avg.Valid {
		v := avg.Float64
		sess.WPMAvg = &v
	}
	if peak.Valid {
		v := peak.Float64
		sess.WPMPeak = &v
	}
	return sess, nil
}

// ActiveSession returns the most recent session without an end time.
func (s *Store) ActiveSession(ctx context.Context) (model.TypingSession, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+sessionColumns+`
		 FROM sessions
		 WHERE end_time IS NULL
		 ORDER BY start_time DESC, id DESC
		 LIMIT 1`)
	sess, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.TypingSession{}, ErrNotFound
	}
	return sess, err
}

// Sessions returns sessions started in [start, end), oldest first.
func (s *Store) Sessions(ctx context.Context, start, end time.Time) ([]model.TypingSession, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+sessionColumns+`
		 FROM sessions
		 WHERE start_time >= ? AND start_time < ?
		 ORDER BY start_time ASC, id ASC`,
		start.Unix(), end.Unix())
	if err != nil {
		return nil, err
	}
	defer closeRows(rows)

	var out []model.TypingSession
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// CloseDanglingSessions ends sessions left open by a crashed daemon,
// using their start time as end.
func (s *Store) CloseDanglingSessions(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET end_time = start_time, wpm_avg = COALESCE(wpm_avg, 0), wpm_peak = COALESCE(wpm_peak, 0)
		 WHERE end_time IS NULL`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
