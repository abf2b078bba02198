//go:build linux

package capture

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	evdev "github.com/holoplot/go-evdev"

	"github.com/hhushhas/fingerpain/internal/keys"
)

const (
	keyPress      = 1
	keyAutoRepeat = 2
)

var keyboardGlobs = []string{
	"/dev/input/by-path/*-event-kbd",
	"/dev/input/by-id/*-event-kbd",
}

type evdevHook struct {
	globs []string

	mu   sync.Mutex
	stop chan struct{}
}

// NewPlatformHook returns a hook reading evdev keyboard devices. The user
// needs read access to /dev/input (usually the input group).
func NewPlatformHook() Hook {
	return &evdevHook{globs: keyboardGlobs}
}

func (h *evdevHook) Run(ready func(), emit func(keys.Key)) error {
	paths := keyboardDevices(h.globs)
	if len(paths) == 0 {
		return errors.New("no keyboard devices found under /dev/input")
	}

	var devices []*evdev.InputDevice
	var openErr error
	for _, path := range paths {
		dev, err := evdev.Open(path)
		if err != nil {
			openErr = fmt.Errorf("open %s: %w", path, err)
			continue
		}
		devices = append(devices, dev)
	}
	if len(devices) == 0 {
		return openErr
	}
	// Closing the devices unblocks the readers.
	defer func() {
		for _, dev := range devices {
			_ = dev.Close()
		}
	}()

	stop := make(chan struct{})
	h.mu.Lock()
	h.stop = stop
	h.mu.Unlock()
	// Unblocks readers still sending when Run returns.
	defer h.Stop()

	pressed := make(chan keys.Key, 64)
	failed := make(chan error, len(devices))
	for _, dev := range devices {
		go readDevice(dev, pressed, failed, stop)
	}

	ready()

	live := len(devices)
	for {
		select {
		case <-stop:
			return nil
		case k := <-pressed:
			emit(k)
		case <-failed:
			live--
			if live == 0 {
				return errors.New("all keyboard devices disappeared")
			}
		}
	}
}

func (h *evdevHook) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.stop == nil {
		return
	}
	select {
	case <-h.stop:
	default:
		close(h.stop)
	}
}

// readDevice forwards key presses from one device until it fails.
func readDevice(dev *evdev.InputDevice, pressed chan<- keys.Key, failed chan<- error, stop <-chan struct{}) {
	for {
		ev, err := dev.ReadOne()
		if err != nil {
			failed <- err
			return
		}
		k, ok := keyFromEvent(ev)
		if !ok {
			continue
		}
		select {
		case pressed <- k:
		case <-stop:
			return
		}
	}
}

// keyFromEvent maps key presses and auto-repeats to keys. Releases and
// non-key events are ignored.
func keyFromEvent(ev *evdev.InputEvent) (keys.Key, bool) {
	if ev == nil || ev.Type != evdev.EV_KEY {
		return keys.KeyUnknown, false
	}
	if ev.Value != keyPress && ev.Value != keyAutoRepeat {
		return keys.KeyUnknown, false
	}
	return keys.FromEvdevCode(uint16(ev.Code)), true
}

// keyboardDevices resolves the glob matches to unique device nodes.
func keyboardDevices(globs []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, pattern := range globs {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			continue
		}
		for _, m := range matches {
			dev, err := filepath.EvalSymlinks(m)
			if err != nil {
				dev = m
			}
			if seen[dev] {
				continue
			}
			if _, err := os.Stat(dev); err != nil {
				continue
			}
			seen[dev] = true
			out = append(out, dev)
		}
	}
	return out
}
