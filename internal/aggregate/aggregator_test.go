package aggregate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hhushhas/fingerpain/internal/keys"
	"github.com/hhushhas/fingerpain/internal/model"
)

var (
	editor  = model.ActiveContext{Name: "Editor", Identifier: "com.example.editor"}
	chrome  = model.ActiveContext{Name: "Chrome", Identifier: "com.google.Chrome", Browser: "Chrome", BrowserDomain: "github.com", BrowserURL: "https://github.com/a"}
	baseMin = time.Date(2024, 3, 1, 10, 15, 0, 0, time.UTC)
)

func ev(at time.Time, kind keys.Kind, ctx model.ActiveContext) model.KeyEvent {
	return model.KeyEvent{Timestamp: at, Kind: kind, Context: ctx}
}

func TestAggregatorRolloverEmitsPreviousMinute(t *testing.T) {
	a := NewAggregator()
	for i := 0; i < 3; i++ {
		done, _ := a.Process(ev(baseMin.Add(time.Duration(i)*time.Second), keys.Character, editor))
		require.Empty(t, done)
	}
	done, _ := a.Process(ev(baseMin.Add(4*time.Second), keys.Space, editor))
	require.Empty(t, done)

	done, _ = a.Process(ev(baseMin.Add(65*time.Second), keys.Character, editor))
	require.Len(t, done, 1)
	rec := done[0]
	assert.Equal(t, baseMin, rec.Timestamp)
	assert.Equal(t, "com.example.editor", rec.AppID)
	assert.Equal(t, "Editor", rec.AppName)
	assert.Equal(t, 4, rec.CharCount)
	assert.Equal(t, 1, rec.WordCount)

	rest := a.Flush()
	require.Len(t, rest, 1)
	assert.Equal(t, baseMin.Add(time.Minute), rest[0].Timestamp)
	assert.Equal(t, 1, rest[0].CharCount)
}

func TestAggregatorFirstEventNeverDrains(t *testing.T) {
	a := NewAggregator()
	done, _ := a.Process(ev(time.Unix(0, 0), keys.Character, editor))
	assert.Empty(t, done, "the epoch minute must not be mistaken for a previous bucket")
}

func TestAggregatorPendingWordsArePerApp(t *testing.T) {
	a := NewAggregator()
	a.Process(ev(baseMin, keys.Character, editor))
	a.Process(ev(baseMin.Add(time.Second), keys.Character, editor))
	// Switching app mid-word must not complete or lose the editor's pending word.
	_, d := a.Process(ev(baseMin.Add(2*time.Second), keys.Space, chrome))
	assert.Equal(t, 0, d.Words)
	_, d = a.Process(ev(baseMin.Add(3*time.Second), keys.Space, editor))
	assert.Equal(t, 1, d.Words)

	recs := a.Flush()
	require.Len(t, recs, 2)
	assert.Equal(t, "com.example.editor", recs[0].AppID)
	assert.Equal(t, 1, recs[0].WordCount)
	assert.Equal(t, "com.google.Chrome", recs[1].AppID)
	assert.Equal(t, 0, recs[1].WordCount)
}

func TestAggregatorFlushTwoAppsThenEmpty(t *testing.T) {
	a := NewAggregator()
	a.Process(ev(baseMin, keys.Character, chrome))
	a.Process(ev(baseMin.Add(time.Second), keys.Character, editor))

	recs := a.Flush()
	require.Len(t, recs, 2)
	assert.Equal(t, "com.example.editor", recs[0].AppID)
	assert.Equal(t, "com.google.Chrome", recs[1].AppID)

	assert.Empty(t, a.Flush())
	assert.Empty(t, a.entries)
}

func TestAggregatorRolloverResetsPendingState(t *testing.T) {
	a := NewAggregator()
	a.Process(ev(baseMin, keys.Character, editor))
	a.Process(ev(baseMin.Add(time.Minute), keys.Space, editor))

	recs := a.Flush()
	require.Len(t, recs, 1)
	assert.Equal(t, 0, recs[0].WordCount)
	assert.Equal(t, 1, recs[0].CharCount)
}

func TestAggregatorBrowserFieldsLatestWins(t *testing.T) {
	a := NewAggregator()
	a.Process(ev(baseMin, keys.Character, chrome))
	next := chrome
	next.BrowserDomain = "news.ycombinator.com"
	next.BrowserURL = ""
	a.Process(ev(baseMin.Add(time.Second), keys.Character, next))

	recs := a.Flush()
	require.Len(t, recs, 1)
	assert.Equal(t, "news.ycombinator.com", recs[0].BrowserDomain)
	assert.Equal(t, "https://github.com/a", recs[0].BrowserURL, "empty values must not erase a known URL")
}

func TestAggregatorUnknownContext(t *testing.T) {
	a := NewAggregator()
	a.Process(ev(baseMin, keys.Backspace, model.ActiveContext{}))
	a.Process(ev(baseMin, keys.Other, editor))

	recs := a.Flush()
	require.Len(t, recs, 1)
	assert.Equal(t, model.UnknownApp, recs[0].AppID)
	assert.Equal(t, 1, recs[0].BackspaceCount)
	assert.True(t, recs[0].HasActivity())
}

func TestAggregatorMissingIdentifierFilesUnderUnknown(t *testing.T) {
	a := NewAggregator()
	a.Process(ev(baseMin, keys.Character, model.ActiveContext{}))
	a.Process(ev(baseMin.Add(time.Second), keys.Character, model.ActiveContext{Identifier: "kitty"}))

	recs := a.Flush()
	require.Len(t, recs, 2)
	assert.Equal(t, "kitty", recs[0].AppID)
	assert.Equal(t, "kitty", recs[0].AppName)
	assert.Equal(t, model.UnknownApp, recs[1].AppID)
	assert.Equal(t, "Unknown", recs[1].AppName)
}
