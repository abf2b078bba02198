package stats

import (
	"testing"
	"time"
)

// Wednesday.
var refNow = time.Date(2024, 6, 5, 15, 4, 5, 0, time.UTC)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestParseRangeAliases(t *testing.T) {
	cases := map[string]RangeKind{
		"today":      Today,
		"Yesterday":  Yesterday,
		" week ":     ThisWeek,
		"last-week":  LastWeek,
		"lastmonth":  LastMonth,
		"year":       ThisYear,
		"30d":        Last30Days,
		"3months":    Last90Days,
		"all":        AllTime,
		"last7days":  Last7Days,
		"this-month": ThisMonth,
	}
	for in, want := range cases {
		got, err := ParseRange(in)
		if err != nil {
			t.Fatalf("parse %q: %v", in, err)
		}
		if got.Kind != want {
			t.Fatalf("parse %q: expected %v, got %v", in, want, got.Kind)
		}
	}
	if _, err := ParseRange("fortnight"); err == nil {
		t.Fatalf("expected error for unknown range")
	}
}

func TestBoundsCalendarPeriods(t *testing.T) {
	cases := []struct {
		kind       RangeKind
		start, end time.Time
	}{
		{Today, day(2024, 6, 5), day(2024, 6, 6)},
		{Yesterday, day(2024, 6, 4), day(2024, 6, 5)},
		{ThisWeek, day(2024, 6, 3), day(2024, 6, 10)},
		{LastWeek, day(2024, 5, 27), day(2024, 6, 3)},
		{ThisMonth, day(2024, 6, 1), day(2024, 7, 1)},
		{LastMonth, day(2024, 5, 1), day(2024, 6, 1)},
		{ThisYear, day(2024, 1, 1), day(2025, 1, 1)},
		{LastYear, day(2023, 1, 1), day(2024, 1, 1)},
	}
	for _, tc := range cases {
		start, end := TimeRange{Kind: tc.kind}.Bounds(refNow)
		if !start.Equal(tc.start) || !end.Equal(tc.end) {
			t.Fatalf("%s: expected [%v, %v), got [%v, %v)", rangeLabels[tc.kind], tc.start, tc.end, start, end)
		}
	}
}

func TestBoundsRollingPeriods(t *testing.T) {
	start, end := TimeRange{Kind: Last7Days}.Bounds(refNow)
	if !end.Equal(refNow) || !start.Equal(refNow.AddDate(0, 0, -7)) {
		t.Fatalf("unexpected last 7 days [%v, %v)", start, end)
	}
	start, end = TimeRange{Kind: AllTime}.Bounds(refNow)
	if !start.Equal(day(2020, 1, 1)) || !end.Equal(refNow) {
		t.Fatalf("unexpected all time [%v, %v)", start, end)
	}
}

func TestWeekStartsMondayOnSunday(t *testing.T) {
	sunday := time.Date(2024, 6, 9, 23, 0, 0, 0, time.UTC)
	start, _ := TimeRange{Kind: ThisWeek}.Bounds(sunday)
	if !start.Equal(day(2024, 6, 3)) {
		t.Fatalf("expected Monday 2024-06-03, got %v", start)
	}
}

func TestDateRange(t *testing.T) {
	rng, err := DateRange("2024-06-01", "2024-06-03", time.UTC)
	if err != nil {
		t.Fatalf("date range: %v", err)
	}
	start, end := rng.Bounds(refNow)
	if !start.Equal(day(2024, 6, 1)) || !end.Equal(day(2024, 6, 4)) {
		t.Fatalf("unexpected bounds [%v, %v)", start, end)
	}
	if rng.Label() != "2024-06-01 to 2024-06-03" {
		t.Fatalf("unexpected label %q", rng.Label())
	}
	if _, err := DateRange("2024-06-03", "2024-06-01", time.UTC); err == nil {
		t.Fatalf("expected error for reversed range")
	}
	if _, err := DateRange("06/01/2024", "2024-06-03", time.UTC); err == nil {
		t.Fatalf("expected error for bad date")
	}
}
