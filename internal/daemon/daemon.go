// Package daemon runs the processing loop between the capture thread and
// persistence.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/hhushhas/fingerpain/internal/aggregate"
	"github.com/hhushhas/fingerpain/internal/capture"
	"github.com/hhushhas/fingerpain/internal/model"
	"github.com/hhushhas/fingerpain/internal/session"
)

const (
	// DefaultPollInterval is how often buffered events are drained.
	DefaultPollInterval = 100 * time.Millisecond
	// QueueSize bounds the events buffered between the hook and the loop.
	QueueSize = 4096
)

// KeystrokeWriter persists completed minute records.
type KeystrokeWriter interface {
	UpsertKeystroke(ctx context.Context, rec model.KeystrokeRecord) (int64, error)
}

// RunRecorder tracks daemon instances.
type RunRecorder interface {
	StartRun(ctx context.Context, run model.Run) error
	FinishRun(ctx context.Context, id string, endedAt time.Time) error
}

// EventSource delivers classified events. capture.Listener implements it.
type EventSource interface {
	Start(handle func(capture.Event)) error
	Stop() error
	Done() <-chan struct{}
	Err() error
}

// Config configures a Daemon. Zero values select defaults.
type Config struct {
	PollInterval time.Duration
	Runs         RunRecorder
	Logger       *slog.Logger
	Now          func() time.Time
}

// Counters are running totals for diagnostics.
type Counters struct {
	Events    uint64
	Dropped   uint64
	Persisted uint64
	Failed    uint64
}

// Daemon owns the aggregator and drives the session tracker.
type Daemon struct {
	source  EventSource
	writer  KeystrokeWriter
	tracker *session.Tracker
	agg     *aggregate.Aggregator
	runs    RunRecorder
	logger  *slog.Logger
	now     func() time.Time
	poll    time.Duration
	events  chan capture.Event
	runID   string

	nEvents    atomic.Uint64
	nDropped   atomic.Uint64
	nPersisted atomic.Uint64
	nFailed    atomic.Uint64
}

// New wires a daemon. tracker may be shared with readers such as the live view.
func New(src EventSource, w KeystrokeWriter, tracker *session.Tracker, cfg Config) *Daemon {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Daemon{
		source:  src,
		writer:  w,
		tracker: tracker,
		agg:     aggregate.NewAggregator(),
		runs:    cfg.Runs,
		logger:  cfg.Logger,
		now:     cfg.Now,
		poll:    cfg.PollInterval,
		events:  make(chan capture.Event, QueueSize),
		runID:   uuid.NewString(),
	}
}

// Counters returns the running totals.
func (d *Daemon) Counters() Counters {
	return Counters{
		Events:    d.nEvents.Load(),
		Dropped:   d.nDropped.Load(),
		Persisted: d.nPersisted.Load(),
		Failed:    d.nFailed.Load(),
	}
}

// Run starts capture and processes events until ctx is cancelled or the
// capture thread dies. Buffered events are flushed before returning.
func (d *Daemon) Run(ctx context.Context) error {
	if err := d.source.Start(d.enqueue); err != nil {
		return fmt.Errorf("start capture: %w", err)
	}
	d.startRun(ctx)
	d.logger.Info("collector started", "run", d.runID, "poll", d.poll, "idle_timeout", d.tracker.IdleTimeout())

	ticker := time.NewTicker(d.poll)
	defer ticker.Stop()

	var runErr error
loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case <-d.source.Done():
			runErr = fmt.Errorf("capture stopped: %w", d.sourceErr())
			break loop
		case <-ticker.C:
			d.drain(ctx)
			if err := d.tracker.CheckIdle(ctx); err != nil {
				d.logger.Error("close idle session", "err", err)
			}
		}
	}

	d.shutdown(context.WithoutCancel(ctx))
	return runErr
}

func (d *Daemon) sourceErr() error {
	if err := d.source.Err(); err != nil {
		return err
	}
	return errors.New("hook exited")
}

// enqueue runs on the hook thread and never blocks.
func (d *Daemon) enqueue(ev capture.Event) {
	select {
	case d.events <- ev:
	default:
		if d.nDropped.Add(1)%QueueSize == 1 {
			d.logger.Debug("event queue full, dropping", "dropped", d.nDropped.Load())
		}
	}
}

func (d *Daemon) drain(ctx context.Context) {
	for {
		select {
		case ev := <-d.events:
			d.process(ctx, ev)
		default:
			return
		}
	}
}

func (d *Daemon) process(ctx context.Context, ev capture.Event) {
	d.nEvents.Add(1)
	completed, delta := d.agg.Process(ev)
	d.persist(ctx, completed)
	if err := d.tracker.RecordKeystroke(ctx, delta.Chars, delta.Words); err != nil {
		d.logger.Error("record keystroke", "err", err)
	}
}

func (d *Daemon) persist(ctx context.Context, records []model.KeystrokeRecord) {
	for _, rec := range records {
		if !rec.HasActivity() {
			continue
		}
		if _, err := d.writer.UpsertKeystroke(ctx, rec); err != nil {
			d.nFailed.Add(1)
			d.logger.Error("persist keystrokes", "app", rec.AppID, "minute", rec.Timestamp, "err", err)
			continue
		}
		d.nPersisted.Add(1)
	}
}

func (d *Daemon) shutdown(ctx context.Context) {
	if err := d.source.Stop(); err != nil {
		d.logger.Warn("stop capture", "err", err)
	}
	d.drain(ctx)
	d.persist(ctx, d.agg.Flush())
	if err := d.tracker.EndSession(ctx); err != nil {
		d.logger.Error("end session", "err", err)
	}
	d.finishRun(ctx)
	c := d.Counters()
	d.logger.Info("collector stopped", "run", d.runID, "events", c.Events, "persisted", c.Persisted, "dropped", c.Dropped, "failed", c.Failed)
}

func (d *Daemon) startRun(ctx context.Context) {
	if d.runs == nil {
		return
	}
	run := model.Run{ID: d.runID, PID: os.Getpid(), StartedAt: d.now()}
	if err := d.runs.StartRun(ctx, run); err != nil {
		d.logger.Warn("record run start", "err", err)
	}
}

func (d *Daemon) finishRun(ctx context.Context) {
	if d.runs == nil {
		return
	}
	if err := d.runs.FinishRun(ctx, d.runID, d.now()); err != nil {
		d.logger.Warn("record run end", "err", err)
	}
}
