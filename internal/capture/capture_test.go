package capture

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hhushhas/fingerpain/internal/keys"
	"github.com/hhushhas/fingerpain/internal/model"
)

// fakeHook emits whatever is sent on keys until stopped.
type fakeHook struct {
	installErr error
	keys       chan keys.Key
	stop       chan struct{}
	stopOnce   sync.Once
	ignoreStop bool
}

func newFakeHook() *fakeHook {
	return &fakeHook{keys: make(chan keys.Key), stop: make(chan struct{})}
}

func (h *fakeHook) Run(ready func(), emit func(keys.Key)) error {
	if h.installErr != nil {
		return h.installErr
	}
	ready()
	for {
		select {
		case k := <-h.keys:
			emit(k)
		case <-h.stop:
			if h.ignoreStop {
				select {}
			}
			return nil
		}
	}
}

func (h *fakeHook) Stop() {
	h.stopOnce.Do(func() { close(h.stop) })
}

type staticContext model.ActiveContext

func (s staticContext) Current() model.ActiveContext { return model.ActiveContext(s) }

type collector struct {
	mu     sync.Mutex
	events []Event
}

func (c *collector) handle(ev Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, ev)
}

func (c *collector) snapshot() []Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Event(nil), c.events...)
}

func TestListenerClassifiesAndEnriches(t *testing.T) {
	hook := newFakeHook()
	at := time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC)
	l := NewListener(Options{
		Hook:    hook,
		Context: staticContext{Name: "Editor", Identifier: "editor"},
		Now:     func() time.Time { return at },
	})
	var c collector
	require.NoError(t, l.Start(c.handle))

	hook.keys <- keys.KeyA
	hook.keys <- keys.KeyLeft
	hook.keys <- keys.KeySpace
	hook.keys <- keys.KeyBackspace
	require.NoError(t, l.Stop())

	got := c.snapshot()
	require.Len(t, got, 3)
	assert.Equal(t, keys.Character, got[0].Kind)
	assert.Equal(t, keys.Space, got[1].Kind)
	assert.Equal(t, keys.Backspace, got[2].Kind)
	assert.Equal(t, "editor", got[0].Context.Identifier)
	assert.True(t, got[0].Timestamp.Equal(at))
}

func TestListenerUnknownContextWithoutSource(t *testing.T) {
	hook := newFakeHook()
	l := NewListener(Options{Hook: hook})
	var c collector
	require.NoError(t, l.Start(c.handle))
	hook.keys <- keys.KeyZ
	require.NoError(t, l.Stop())

	got := c.snapshot()
	require.Len(t, got, 1)
	assert.Equal(t, model.UnknownApp, got[0].Context.Identifier)
}

func TestListenerStartTwice(t *testing.T) {
	l := NewListener(Options{Hook: newFakeHook()})
	require.NoError(t, l.Start(func(Event) {}))
	defer func() { _ = l.Stop() }()
	assert.ErrorIs(t, l.Start(func(Event) {}), ErrAlreadyRunning)
}

func TestListenerInstallFailure(t *testing.T) {
	hook := newFakeHook()
	cause := errors.New("permission denied")
	hook.installErr = cause
	l := NewListener(Options{Hook: hook})

	err := l.Start(func(Event) {})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrHookInstall)
	assert.ErrorIs(t, err, cause)

	// A failed start leaves the listener stopped.
	assert.NoError(t, l.Stop())
}

func TestListenerStopIsIdempotent(t *testing.T) {
	l := NewListener(Options{Hook: newFakeHook()})
	require.NoError(t, l.Start(func(Event) {}))
	require.NoError(t, l.Stop())
	require.NoError(t, l.Stop())

	select {
	case <-l.Done():
	case <-time.After(time.Second):
		t.Fatal("hook thread still running")
	}
}

func TestListenerStopIsBounded(t *testing.T) {
	hook := newFakeHook()
	hook.ignoreStop = true
	l := NewListener(Options{Hook: hook, StopTimeout: 20 * time.Millisecond})
	require.NoError(t, l.Start(func(Event) {}))

	start := time.Now()
	err := l.Stop()
	assert.Error(t, err)
	assert.Less(t, time.Since(start), time.Second)
}

func TestListenerRefusesStartWhileStuckHookAlive(t *testing.T) {
	hook := newFakeHook()
	hook.ignoreStop = true
	l := NewListener(Options{Hook: hook, StopTimeout: 20 * time.Millisecond})
	require.NoError(t, l.Start(func(Event) {}))

	require.Error(t, l.Stop())
	assert.ErrorIs(t, l.Start(func(Event) {}), ErrAlreadyRunning)
}

// exitingHook returns from Run whenever a value arrives on exit.
type exitingHook struct {
	exit chan error
	runs atomic.Int32
}

func (h *exitingHook) Run(ready func(), _ func(keys.Key)) error {
	h.runs.Add(1)
	ready()
	return <-h.exit
}

func (h *exitingHook) Stop() {}

func TestListenerRestartsAfterHookExits(t *testing.T) {
	hook := &exitingHook{exit: make(chan error)}
	l := NewListener(Options{Hook: hook})
	require.NoError(t, l.Start(func(Event) {}))

	gone := errors.New("all keyboard devices disappeared")
	hook.exit <- gone
	select {
	case <-l.Done():
	case <-time.After(time.Second):
		t.Fatal("hook thread still running")
	}
	assert.ErrorIs(t, l.Err(), gone)

	require.NoError(t, l.Start(func(Event) {}))
	assert.Equal(t, int32(2), hook.runs.Load())
	assert.NoError(t, l.Err())
	hook.exit <- nil
}
