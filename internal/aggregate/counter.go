// Package aggregate turns classified key events into per-minute, per-application records.
package aggregate

import "github.com/hhushhas/fingerpain/internal/keys"

// Delta is the change a single event made to a counter.
type Delta struct {
	Chars      int
	Words      int
	Paragraphs int
	Backspaces int
}

// Counter tracks characters typed since the last word boundary.
// A word is completed when a boundary follows at least one pending character.
type Counter struct {
	pending uint32
}

// Process applies one event kind and returns what it changed.
func (c *Counter) Process(kind keys.Kind) Delta {
	var d Delta
	if kind.CountsAsChar() {
		d.Chars = 1
	}
	switch {
	case kind == keys.Character:
		c.pending++
	case kind.IsWordBoundary():
		if c.pending > 0 {
			d.Words = 1
			c.pending = 0
		}
		if kind == keys.Enter {
			d.Paragraphs = 1
		}
	case kind == keys.Backspace:
		d.Backspaces = 1
		if c.pending > 0 {
			c.pending--
		}
	}
	return d
}

// Reset clears pending state.
func (c *Counter) Reset() {
	*c = Counter{}
}
