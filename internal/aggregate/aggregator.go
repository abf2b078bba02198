package aggregate

import (
	"math"
	"sort"
	"time"

	"github.com/hhushhas/fingerpain/internal/keys"
	"github.com/hhushhas/fingerpain/internal/model"
)

// noBucket marks that no minute has been observed since creation or the last flush.
const noBucket int64 = math.MinInt64

// Aggregator keeps one open record per application for the current minute.
// It is not safe for concurrent use; the processing loop owns it.
type Aggregator struct {
	bucket   int64
	entries  map[string]*model.KeystrokeRecord
	counters map[string]*Counter
}

// NewAggregator returns an empty aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{
		bucket:   noBucket,
		entries:  make(map[string]*model.KeystrokeRecord),
		counters: make(map[string]*Counter),
	}
}

// Process applies an event. It returns the records completed by a minute
// rollover (if any) and the counter delta the event produced.
func (a *Aggregator) Process(ev model.KeyEvent) ([]model.KeystrokeRecord, Delta) {
	if ev.Kind == keys.Other {
		return nil, Delta{}
	}

	bucket := minuteBucket(ev.Timestamp)
	var completed []model.KeystrokeRecord
	if a.bucket != noBucket && bucket != a.bucket {
		completed = a.drain()
	}
	a.bucket = bucket

	key := ev.Context.AppKey()
	rec, ok := a.entries[key]
	if !ok {
		rec = &model.KeystrokeRecord{
			Timestamp:     time.Unix(bucket*60, 0).UTC(),
			AppName:       appName(ev.Context),
			AppID:         key,
			BrowserDomain: ev.Context.BrowserDomain,
			BrowserURL:    ev.Context.BrowserURL,
		}
		a.entries[key] = rec
	}
	c, ok := a.counters[key]
	if !ok {
		c = &Counter{}
		a.counters[key] = c
	}
	if ev.Context.IsBrowser() {
		if ev.Context.BrowserDomain != "" {
			rec.BrowserDomain = ev.Context.BrowserDomain
		}
		if ev.Context.BrowserURL != "" {
			rec.BrowserURL = ev.Context.BrowserURL
		}
	}

	d := c.Process(ev.Kind)
	rec.CharCount += d.Chars
	rec.WordCount += d.Words
	rec.ParagraphCount += d.Paragraphs
	rec.BackspaceCount += d.Backspaces
	return completed, d
}

// Flush drains every in-flight record and forgets the current minute.
// A second Flush with no events in between returns nothing.
func (a *Aggregator) Flush() []model.KeystrokeRecord {
	out := a.drain()
	a.bucket = noBucket
	return out
}

// appName files events with no identifier under the unknown app.
func appName(c model.ActiveContext) string {
	if c.Identifier == "" {
		return model.UnknownContext().Name
	}
	if c.Name == "" {
		return c.Identifier
	}
	return c.Name
}

// drain returns the open records sorted by app key and resets every app's
// pending word state.
func (a *Aggregator) drain() []model.KeystrokeRecord {
	for _, c := range a.counters {
		c.Reset()
	}
	if len(a.entries) == 0 {
		return nil
	}
	ids := make([]string, 0, len(a.entries))
	for id := range a.entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]model.KeystrokeRecord, 0, len(ids))
	for _, k := range ids {
		out = append(out, *a.entries[k])
	}
	a.entries = make(map[string]*model.KeystrokeRecord)
	return out
}

func minuteBucket(ts time.Time) int64 {
	sec := ts.Unix()
	b := sec / 60
	if sec%60 < 0 {
		b--
	}
	return b
}
