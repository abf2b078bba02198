// Package model defines shared data structures.
package model

import (
	"time"

	"github.com/hhushhas/fingerpain/internal/keys"
)

// UnknownApp is the identifier used when the foreground application cannot be resolved.
const UnknownApp = "unknown"

// ActiveContext describes the foreground application at the time of a keystroke.
type ActiveContext struct {
	Name          string
	Identifier    string
	Browser       string
	BrowserDomain string
	BrowserURL    string
}

// UnknownContext returns the context used when resolution fails.
func UnknownContext() ActiveContext {
	return ActiveContext{Name: "Unknown", Identifier: UnknownApp}
}

// AppKey returns the aggregation key for the context.
func (c ActiveContext) AppKey() string {
	if c.Identifier == "" {
		return UnknownApp
	}
	return c.Identifier
}

// IsBrowser reports whether the context belongs to a recognized browser.
func (c ActiveContext) IsBrowser() bool {
	return c.Browser != ""
}

// KeyEvent is a classified key press enriched with the active context.
type KeyEvent struct {
	Timestamp time.Time
	Kind      keys.Kind
	Context   ActiveContext
}

// KeystrokeRecord holds the counts for one application within one minute.
type KeystrokeRecord struct {
	ID             int64
	Timestamp      time.Time
	AppName        string
	AppID          string
	CharCount      int
	WordCount      int
	ParagraphCount int
	BackspaceCount int
	BrowserDomain  string
	BrowserURL     string
}

// HasActivity reports whether the record is worth persisting.
func (r KeystrokeRecord) HasActivity() bool {
	return r.CharCount > 0 || r.BackspaceCount > 0
}

// TypingSession is a contiguous run of typing separated from others by idle gaps.
type TypingSession struct {
	ID        int64
	StartTime time.Time
	EndTime   time.Time
	CharCount int
	WordCount int
	WPMAvg    *float64
	WPMPeak   *float64
}

// Open reports whether the session has not been closed yet.
func (s TypingSession) Open() bool {
	return s.EndTime.IsZero()
}

// BrowserContext is the last page reported by a browser extension.
type BrowserContext struct {
	Browser   string
	Domain    string
	URL       string
	Title     string
	UpdatedAt time.Time
}

// AggregatedStats summarizes keystroke activity over a time range.
type AggregatedStats struct {
	TotalChars      int
	TotalWords      int
	TotalParagraphs int
	TotalBackspaces int
	NetChars        int
	ActiveMinutes   int
	SessionCount    int
	AvgWPM          float64
	PeakWPM         float64
}

// AppStats summarizes activity for a single application.
type AppStats struct {
	AppName    string
	AppID      string
	Chars      int
	Words      int
	Percentage float64
	Domains    []DomainStats
}

// DomainStats summarizes browser activity for one domain.
type DomainStats struct {
	Domain string
	Chars  int
	Words  int
}

// HourlyStats holds totals for one (weekday, hour) cell.
type HourlyStats struct {
	Weekday int
	Hour    int
	Chars   int
	Words   int
}

// PeakMinute is a single busiest minute.
type PeakMinute struct {
	Timestamp time.Time
	AppName   string
	Chars     int
	Words     int
}

// DailyTotal holds totals for one calendar day.
type DailyTotal struct {
	Date  time.Time
	Chars int
	Words int
}

// Run records one daemon instance.
type Run struct {
	ID        string
	PID       int
	StartedAt time.Time
	EndedAt   time.Time
}
