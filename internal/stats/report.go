package stats

import (
	"context"
	"time"

	"github.com/hhushhas/fingerpain/internal/model"
)

// DefaultPeakLimit is the number of peak minutes loaded into a report.
const DefaultPeakLimit = 10

// Source is the read side of the store.
type Source interface {
	Stats(ctx context.Context, start, end time.Time) (model.AggregatedStats, error)
	AppStats(ctx context.Context, start, end time.Time) ([]model.AppStats, error)
	PeakTimes(ctx context.Context, start, end time.Time, limit int) ([]model.PeakMinute, error)
	HourlyStats(ctx context.Context, start, end time.Time, loc *time.Location) ([]model.HourlyStats, error)
	DailyTotals(ctx context.Context, start, end time.Time, loc *time.Location) ([]model.DailyTotal, error)
}

// Report contains precomputed data for a period.
type Report struct {
	Label  string
	Start  time.Time
	End    time.Time
	Stats  model.AggregatedStats
	Apps   []model.AppStats
	Peaks  []model.PeakMinute
	Hourly []model.HourlyStats
	Daily  []model.DailyTotal
}

// BuildReport loads everything the renderers and exporters need for rng.
func BuildReport(ctx context.Context, src Source, rng TimeRange, now time.Time) (Report, error) {
	start, end := rng.Bounds(now)
	loc := now.Location()
	r := Report{Label: rng.Label(), Start: start, End: end}

	var err error
	if r.Stats, err = src.Stats(ctx, start, end); err != nil {
		return Report{}, err
	}
	if r.Apps, err = src.AppStats(ctx, start, end); err != nil {
		return Report{}, err
	}
	if r.Peaks, err = src.PeakTimes(ctx, start, end, DefaultPeakLimit); err != nil {
		return Report{}, err
	}
	if r.Hourly, err = src.HourlyStats(ctx, start, end, loc); err != nil {
		return Report{}, err
	}
	if r.Daily, err = src.DailyTotals(ctx, start, end, loc); err != nil {
		return Report{}, err
	}
	return r, nil
}

// FillDays returns one entry per calendar day in [start, end), inserting zero
// totals for days without typing.
func FillDays(daily []model.DailyTotal, start, end time.Time) []model.DailyTotal {
	byDay := make(map[string]model.DailyTotal, len(daily))
	for _, d := range daily {
		byDay[d.Date.Format(time.DateOnly)] = d
	}
	loc := start.Location()
	day := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, loc)
	var out []model.DailyTotal
	for ; day.Before(end); day = day.AddDate(0, 0, 1) {
		if d, ok := byDay[day.Format(time.DateOnly)]; ok {
			out = append(out, d)
			continue
		}
		out = append(out, model.DailyTotal{Date: day})
	}
	return out
}
