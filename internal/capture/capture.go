// Package capture runs the platform keyboard hook on a dedicated OS thread
// and turns raw keys into classified events.
package capture

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/hhushhas/fingerpain/internal/keys"
	"github.com/hhushhas/fingerpain/internal/model"
)

var (
	// ErrAlreadyRunning is returned by Start when the listener is active.
	ErrAlreadyRunning = errors.New("capture already running")
	// ErrHookInstall wraps failures to install the platform hook.
	ErrHookInstall = errors.New("failed to install keyboard hook")
)

// DefaultStopTimeout bounds how long Stop waits for the hook thread.
const DefaultStopTimeout = 2 * time.Second

// Event is a classified key press.
type Event = model.KeyEvent

// Hook is a platform keyboard hook. Run installs it on the calling thread,
// calls ready once events can flow, and blocks until Stop.
type Hook interface {
	Run(ready func(), emit func(keys.Key)) error
	Stop()
}

// ContextSource supplies the foreground context attached to each event.
type ContextSource interface {
	Current() model.ActiveContext
}

// Options configure a Listener.
type Options struct {
	Hook        Hook
	Context     ContextSource
	Logger      *slog.Logger
	Now         func() time.Time
	StopTimeout time.Duration
}

// Listener owns the hook thread.
type Listener struct {
	hook        Hook
	context     ContextSource
	logger      *slog.Logger
	now         func() time.Time
	stopTimeout time.Duration

	mu   sync.Mutex
	done chan struct{}

	errMu sync.Mutex
	err   error
}

// NewListener builds a listener. A nil Hook selects the platform hook.
func NewListener(opts Options) *Listener {
	if opts.Hook == nil {
		opts.Hook = NewPlatformHook()
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.StopTimeout <= 0 {
		opts.StopTimeout = DefaultStopTimeout
	}
	return &Listener{
		hook:        opts.Hook,
		context:     opts.Context,
		logger:      opts.Logger,
		now:         opts.Now,
		stopTimeout: opts.StopTimeout,
	}
}

// Start installs the hook and returns once it is live. handle is called on
// the hook thread for every non-Other key and must not block.
func (l *Listener) Start(handle func(Event)) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if running(l.done) {
		return ErrAlreadyRunning
	}

	ready := make(chan struct{})
	result := make(chan error, 1)
	done := make(chan struct{})
	l.setErr(nil)
	go func() {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
		defer close(done)

		var once sync.Once
		err := l.hook.Run(
			func() { once.Do(func() { close(ready) }) },
			func(k keys.Key) { l.dispatch(k, handle) },
		)
		l.setErr(err)
		result <- err
	}()

	select {
	case <-ready:
	case err := <-result:
		<-done
		if err == nil {
			return ErrHookInstall
		}
		return fmt.Errorf("%w: %w", ErrHookInstall, err)
	}

	l.done = done
	go func() {
		<-done
		if err := l.Err(); err != nil {
			l.logger.Error("keyboard hook stopped", "err", err)
		}
	}()
	return nil
}

// Done is closed when the hook thread exits. It is nil before Start.
func (l *Listener) Done() <-chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.done
}

// Err returns the error the hook exited with, if any. It is set before Done closes.
func (l *Listener) Err() error {
	l.errMu.Lock()
	defer l.errMu.Unlock()
	return l.err
}

func (l *Listener) setErr(err error) {
	l.errMu.Lock()
	l.err = err
	l.errMu.Unlock()
}

// running reports whether a hook thread started with done is still alive.
func running(done chan struct{}) bool {
	if done == nil {
		return false
	}
	select {
	case <-done:
		return false
	default:
		return true
	}
}

// Stop removes the hook. It is safe to call more than once. The listener
// counts as running until the hook thread has exited, even when Stop times out.
func (l *Listener) Stop() error {
	l.mu.Lock()
	done := l.done
	l.mu.Unlock()
	if !running(done) {
		return nil
	}

	l.hook.Stop()
	timer := time.NewTimer(l.stopTimeout)
	defer timer.Stop()
	select {
	case <-done:
		return nil
	case <-timer.C:
		return fmt.Errorf("keyboard hook did not stop within %s", l.stopTimeout)
	}
}

func (l *Listener) dispatch(k keys.Key, handle func(Event)) {
	kind := keys.Classify(k)
	if kind == keys.Other {
		return
	}
	ctx := model.UnknownContext()
	if l.context != nil {
		ctx = l.context.Current()
	}
	handle(Event{Timestamp: l.now(), Kind: kind, Context: ctx})
}
