// Package session tracks typing sessions and their words-per-minute rates.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/hhushhas/fingerpain/internal/model"
)

const (
	// DefaultIdleTimeout is the gap after which a session is considered over.
	DefaultIdleTimeout = 5 * time.Second
	// RollingWindow is the history used for the instantaneous rate.
	RollingWindow = 60 * time.Second

	charsPerWord = 5.0
)

// Writer persists sessions. InsertSession returns the new row id.
type Writer interface {
	InsertSession(ctx context.Context, s model.TypingSession) (int64, error)
	UpdateSession(ctx context.Context, s model.TypingSession) error
}

// Config configures a Tracker. Zero values select defaults.
type Config struct {
	IdleTimeout time.Duration
	Now         func() time.Time
}

// Snapshot is a point-in-time view of the tracker.
type Snapshot struct {
	Active        bool
	Start         time.Time
	LastKeystroke time.Time
	Chars         int
	Words         int
	CurrentWPM    float64
	PeakWPM       float64
}

type sample struct {
	at    time.Time
	chars int
}

type active struct {
	session       model.TypingSession
	lastKeystroke time.Time
	window        []sample
	currentWPM    float64
	peakWPM       float64
}

// Tracker owns the single open session. All methods are safe for concurrent use.
// Persistence runs while the lock is held, so readers such as the live view
// may briefly wait on a slow write.
type Tracker struct {
	mu          sync.Mutex
	writer      Writer
	now         func() time.Time
	idleTimeout time.Duration
	cur         *active
}

// NewTracker creates a tracker that persists through w.
func NewTracker(w Writer, cfg Config) *Tracker {
	t := &Tracker{
		writer:      w,
		now:         cfg.Now,
		idleTimeout: cfg.IdleTimeout,
	}
	if t.now == nil {
		t.now = time.Now
	}
	if t.idleTimeout <= 0 {
		t.idleTimeout = DefaultIdleTimeout
	}
	return t
}

// IdleTimeout returns the configured idle timeout.
func (t *Tracker) IdleTimeout() time.Duration {
	return t.idleTimeout
}

// RecordKeystroke accounts one key event. A keystroke after the idle timeout
// closes the previous session and opens a new one seeded by this keystroke.
func (t *Tracker) RecordKeystroke(ctx context.Context, charDelta, wordDelta int) error {
	now := t.now()
	t.mu.Lock()
	defer t.mu.Unlock()

	var closeErr error
	if t.cur != nil && now.Sub(t.cur.lastKeystroke) > t.idleTimeout {
		closeErr = t.closeLocked(ctx, t.cur.lastKeystroke)
	}
	if t.cur == nil {
		if err := t.openLocked(ctx, now, charDelta, wordDelta); err != nil {
			return errors.Join(closeErr, err)
		}
		return closeErr
	}

	a := t.cur
	a.session.CharCount += charDelta
	a.session.WordCount += wordDelta
	a.lastKeystroke = now
	a.window = append(a.window, sample{at: now, chars: charDelta})
	a.window = evict(a.window, now.Add(-RollingWindow))
	a.currentWPM = windowWPM(a.window)
	if a.currentWPM > a.peakWPM {
		a.peakWPM = a.currentWPM
	}
	return nil
}

// CheckIdle closes the open session if no keystroke arrived within the idle timeout.
func (t *Tracker) CheckIdle(ctx context.Context) error {
	now := t.now()
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cur == nil || now.Sub(t.cur.lastKeystroke) <= t.idleTimeout {
		return nil
	}
	return t.closeLocked(ctx, t.cur.lastKeystroke)
}

// EndSession closes the open session unconditionally with the current time as end.
func (t *Tracker) EndSession(ctx context.Context) error {
	now := t.now()
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cur == nil {
		return nil
	}
	return t.closeLocked(ctx, now)
}

// CurrentWPM returns the instantaneous rate of the open session, or 0.
func (t *Tracker) CurrentWPM() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cur == nil {
		return 0
	}
	return t.cur.currentWPM
}

// PeakWPM returns the peak rate of the open session, or 0.
func (t *Tracker) PeakWPM() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cur == nil {
		return 0
	}
	return t.cur.peakWPM
}

// Snapshot returns the state of the open session.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cur == nil {
		return Snapshot{}
	}
	return Snapshot{
		Active:        true,
		Start:         t.cur.session.StartTime,
		LastKeystroke: t.cur.lastKeystroke,
		Chars:         t.cur.session.CharCount,
		Words:         t.cur.session.WordCount,
		CurrentWPM:    t.cur.currentWPM,
		PeakWPM:       t.cur.peakWPM,
	}
}

func (t *Tracker) openLocked(ctx context.Context, now time.Time, chars, words int) error {
	a := &active{
		session: model.TypingSession{
			StartTime: now,
			CharCount: chars,
			WordCount: words,
		},
		lastKeystroke: now,
		window:        []sample{{at: now, chars: chars}},
	}
	t.cur = a
	if t.writer == nil {
		return nil
	}
	id, err := t.writer.InsertSession(ctx, a.session)
	if err != nil {
		// The session stays open in memory and is inserted whole on close.
		return fmt.Errorf("failed to insert session: %w", err)
	}
	a.session.ID = id
	return nil
}

// closeLocked is the only transition out of the active state. Idle closes
// pass the last keystroke time as end; explicit ends pass the current time.
// The average rate always spans start to last keystroke.
func (t *Tracker) closeLocked(ctx context.Context, end time.Time) error {
	a := t.cur
	t.cur = nil

	s := a.session
	s.EndTime = end
	avg := averageWPM(s.CharCount, a.lastKeystroke.Sub(s.StartTime))
	peak := a.peakWPM
	s.WPMAvg = &avg
	s.WPMPeak = &peak

	if t.writer == nil {
		return nil
	}
	if s.ID == 0 {
		if _, err := t.writer.InsertSession(ctx, s); err != nil {
			return fmt.Errorf("failed to insert closed session: %w", err)
		}
		return nil
	}
	if err := t.writer.UpdateSession(ctx, s); err != nil {
		return fmt.Errorf("failed to update session %d: %w", s.ID, err)
	}
	return nil
}

func evict(window []sample, cutoff time.Time) []sample {
	i := 0
	for i < len(window) && !window[i].at.After(cutoff) {
		i++
	}
	if i == 0 {
		return window
	}
	return append(window[:0], window[i:]...)
}

func windowWPM(window []sample) float64 {
	if len(window) < 2 {
		return 0
	}
	span := window[len(window)-1].at.Sub(window[0].at)
	if span <= 0 {
		return 0
	}
	total := 0
	for _, s := range window {
		total += s.chars
	}
	return (float64(total) / charsPerWord) / span.Minutes()
}

func averageWPM(chars int, d time.Duration) float64 {
	if d <= 0 {
		return 0
	}
	return (float64(chars) / charsPerWord) / d.Minutes()
}
