package stats

import (
	"fmt"
	"strings"
	"time"
)

// RangeKind names a reporting period.
type RangeKind int

// Reporting periods.
const (
	Today RangeKind = iota
	Yesterday
	ThisWeek
	LastWeek
	ThisMonth
	LastMonth
	ThisYear
	LastYear
	Last7Days
	Last30Days
	Last90Days
	AllTime
	Custom
)

// allTimeStart predates any data the collector can have written.
var allTimeStart = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

var rangeAliases = map[string]RangeKind{
	"today":      Today,
	"yesterday":  Yesterday,
	"week":       ThisWeek,
	"this-week":  ThisWeek,
	"thisweek":   ThisWeek,
	"last-week":  LastWeek,
	"lastweek":   LastWeek,
	"month":      ThisMonth,
	"this-month": ThisMonth,
	"thismonth":  ThisMonth,
	"last-month": LastMonth,
	"lastmonth":  LastMonth,
	"year":       ThisYear,
	"this-year":  ThisYear,
	"thisyear":   ThisYear,
	"last-year":  LastYear,
	"lastyear":   LastYear,
	"7d":         Last7Days,
	"7days":      Last7Days,
	"last7days":  Last7Days,
	"30d":        Last30Days,
	"30days":     Last30Days,
	"last30days": Last30Days,
	"90d":        Last90Days,
	"90days":     Last90Days,
	"last90days": Last90Days,
	"3months":    Last90Days,
	"all":        AllTime,
	"alltime":    AllTime,
	"all-time":   AllTime,
}

var rangeLabels = map[RangeKind]string{
	Today:      "Today",
	Yesterday:  "Yesterday",
	ThisWeek:   "This Week",
	LastWeek:   "Last Week",
	ThisMonth:  "This Month",
	LastMonth:  "Last Month",
	ThisYear:   "This Year",
	LastYear:   "Last Year",
	Last7Days:  "Last 7 Days",
	Last30Days: "Last 30 Days",
	Last90Days: "Last 90 Days",
	AllTime:    "All Time",
}

// TimeRange is a reporting period resolved against a reference time.
type TimeRange struct {
	Kind  RangeKind
	start time.Time
	end   time.Time
}

// ParseRange parses a period name such as "today", "last-week" or "30d".
func ParseRange(s string) (TimeRange, error) {
	kind, ok := rangeAliases[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return TimeRange{}, fmt.Errorf("unknown time range %q", s)
	}
	return TimeRange{Kind: kind}, nil
}

// CustomRange covers [start, end).
func CustomRange(start, end time.Time) TimeRange {
	return TimeRange{Kind: Custom, start: start, end: end}
}

// DateRange builds a custom range from two YYYY-MM-DD dates in loc. Both days
// are included.
func DateRange(from, to string, loc *time.Location) (TimeRange, error) {
	if loc == nil {
		loc = time.Local
	}
	start, err := time.ParseInLocation(time.DateOnly, from, loc)
	if err != nil {
		return TimeRange{}, fmt.Errorf("invalid start date %q: %w", from, err)
	}
	last, err := time.ParseInLocation(time.DateOnly, to, loc)
	if err != nil {
		return TimeRange{}, fmt.Errorf("invalid end date %q: %w", to, err)
	}
	if last.Before(start) {
		return TimeRange{}, fmt.Errorf("end date %s is before start date %s", to, from)
	}
	return CustomRange(start, last.AddDate(0, 0, 1)), nil
}

// Label is a human-readable name for the period.
func (r TimeRange) Label() string {
	if r.Kind == Custom {
		return fmt.Sprintf("%s to %s", r.start.Format(time.DateOnly), r.end.AddDate(0, 0, -1).Format(time.DateOnly))
	}
	return rangeLabels[r.Kind]
}

// Bounds returns [start, end) for the period. Calendar periods are cut in
// now's location and weeks start on Monday.
func (r TimeRange) Bounds(now time.Time) (time.Time, time.Time) {
	loc := now.Location()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	weekStart := today.AddDate(0, 0, -daysSinceMonday(today.Weekday()))
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)
	yearStart := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, loc)

	switch r.Kind {
	case Today:
		return today, today.AddDate(0, 0, 1)
	case Yesterday:
		return today.AddDate(0, 0, -1), today
	case ThisWeek:
		return weekStart, weekStart.AddDate(0, 0, 7)
	case LastWeek:
		return weekStart.AddDate(0, 0, -7), weekStart
	case ThisMonth:
		return monthStart, monthStart.AddDate(0, 1, 0)
	case LastMonth:
		return monthStart.AddDate(0, -1, 0), monthStart
	case ThisYear:
		return yearStart, yearStart.AddDate(1, 0, 0)
	case LastYear:
		return yearStart.AddDate(-1, 0, 0), yearStart
	case Last7Days:
		return now.AddDate(0, 0, -7), now
	case Last30Days:
		return now.AddDate(0, 0, -30), now
	case Last90Days:
		return now.AddDate(0, 0, -90), now
	case AllTime:
		return allTimeStart.In(loc), now
	default:
		return r.start, r.end
	}
}

func daysSinceMonday(wd time.Weekday) int {
	return (int(wd) + 6) % 7
}
