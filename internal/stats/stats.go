// Package stats contains period calculations and terminal reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/hhushhas/fingerpain/internal/model"
)

const sparkChars = " .:-=+*#%@"

// Options control terminal rendering.
type Options struct {
	Color bool
	// Width is the terminal width; zero means detect.
	Width int
	// Loc is used to display timestamps; nil means local time.
	Loc *time.Location
}

func (o Options) width() int {
	if o.Width > 0 {
		return o.Width
	}
	return TerminalWidth()
}

func (o Options) loc() *time.Location {
	if o.Loc != nil {
		return o.Loc
	}
	return time.Local
}

func (o Options) heading() *color.Color { return colorFor(o.Color, color.FgCyan, color.Bold) }
func (o Options) notice() *color.Color  { return colorFor(o.Color, color.FgYellow) }
func (o Options) dim() *color.Color     { return colorFor(o.Color, color.Faint) }

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	if window <= 1 {
		copy(out, values)
		return out
	}
	var sum float64
	for i, v := range values {
		sum += v
		if i >= window {
			sum -= values[i-window]
		}
		out[i] = sum / float64(min(i+1, window))
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline scaled from zero to the maximum.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	maxVal := 0.0
	for _, v := range values {
		maxVal = math.Max(maxVal, v)
	}
	var b strings.Builder
	for _, v := range values {
		b.WriteByte(sparkLevel(v, maxVal))
	}
	return b.String()
}

func sparkLevel(v, maxVal float64) byte {
	if maxVal <= 0 || v <= 0 {
		return sparkChars[0]
	}
	idx := int(math.Ceil(v / maxVal * float64(len(sparkChars)-1)))
	return sparkChars[min(max(idx, 1), len(sparkChars)-1)]
}

func writeLines(w io.Writer, lines []string) error {
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func writeHeading(w io.Writer, opts Options, title string, ruleWidth int) error {
	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, opts.heading().Sprint(title)); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, opts.dim().Sprint(strings.Repeat("─", ruleWidth)))
	return err
}

// RenderSummary prints the totals for a period.
func RenderSummary(w io.Writer, label string, s model.AggregatedStats, opts Options) error {
	if err := writeHeading(w, opts, label+" Statistics", 40); err != nil {
		return err
	}
	hasSessions := s.SessionCount > 0
	rows := [][]string{
		{"Characters", fmt.Sprintf("%s (net: %d)", FormatCount(s.TotalChars), s.NetChars)},
		{"Words", FormatCount(s.TotalWords)},
		{"Paragraphs", fmt.Sprintf("%d", s.TotalParagraphs)},
		{"Backspaces", fmt.Sprintf("%d", s.TotalBackspaces)},
		{"Active Time", FormatDuration(s.ActiveMinutes)},
		{"Sessions", fmt.Sprintf("%d", s.SessionCount)},
		{"Avg WPM", FormatWPM(s.AvgWPM, hasSessions)},
		{"Peak WPM", FormatWPM(s.PeakWPM, hasSessions)},
	}
	return writeLines(w, formatTable([]string{"Metric", "Value"}, rows, nil))
}

// RenderApps prints the per-application breakdown, with browser sites
// nested under their browser.
func RenderApps(w io.Writer, apps []model.AppStats, limit int, opts Options) error {
	if len(apps) == 0 {
		_, err := fmt.Fprintln(w, opts.notice().Sprint("No app data available for this period."))
		return err
	}
	if err := writeHeading(w, opts, "App Breakdown", 60); err != nil {
		return err
	}
	if limit > 0 && len(apps) > limit {
		apps = apps[:limit]
	}
	nameWidth := max(opts.width()/2, 16)
	var rows [][]string
	for _, app := range apps {
		name := app.AppName
		if name == "" {
			name = app.AppID
		}
		rows = append(rows, []string{
			truncate(name, nameWidth),
			FormatCount(app.Chars),
			FormatCount(app.Words),
			fmt.Sprintf("%.1f%%", app.Percentage),
		})
		for _, d := range app.Domains {
			rows = append(rows, []string{
				truncate("  └ "+d.Domain, nameWidth),
				FormatCount(d.Chars),
				FormatCount(d.Words),
				"",
			})
		}
	}
	lines := formatTable([]string{"App", "Characters", "Words", "%"}, rows, map[int]bool{1: true, 2: true, 3: true})
	if err := writeLines(w, lines); err != nil {
		return err
	}

	top := TopDomains(apps, 5)
	if len(top) == 0 {
		return nil
	}
	parts := make([]string, len(top))
	for i, d := range top {
		parts[i] = fmt.Sprintf("%s (%s)", d.Domain, FormatCount(d.Chars))
	}
	_, err := fmt.Fprintf(w, "\nTop sites: %s\n", strings.Join(parts, ", "))
	return err
}

// RenderPeaks prints the busiest minutes.
func RenderPeaks(w io.Writer, peaks []model.PeakMinute, opts Options) error {
	if len(peaks) == 0 {
		_, err := fmt.Fprintln(w, opts.notice().Sprint("No peak data available for this period."))
		return err
	}
	if err := writeHeading(w, opts, "Peak Typing Times", 50); err != nil {
		return err
	}
	rows := make([][]string, 0, len(peaks))
	for _, p := range peaks {
		rows = append(rows, []string{
			p.Timestamp.In(opts.loc()).Format("2006-01-02 15:04"),
			p.AppName,
			fmt.Sprintf("%d", p.Chars),
			fmt.Sprintf("%d", p.Words),
		})
	}
	return writeLines(w, formatTable([]string{"Time", "Top App", "Characters", "Words"}, rows, map[int]bool{2: true, 3: true}))
}

var heatmapDays = []time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday, time.Saturday, time.Sunday,
}

// RenderHeatmap prints characters typed per weekday and hour, Monday first.
func RenderHeatmap(w io.Writer, hourly []model.HourlyStats, opts Options) error {
	if len(hourly) == 0 {
		_, err := fmt.Fprintln(w, opts.notice().Sprint("No activity recorded for this period."))
		return err
	}
	if err := writeHeading(w, opts, "Typing Heatmap (characters by hour)", 4+24*2); err != nil {
		return err
	}
	var grid [7][24]int
	maxChars := 0
	for _, h := range hourly {
		if h.Weekday < 0 || h.Weekday > 6 || h.Hour < 0 || h.Hour > 23 {
			continue
		}
		grid[h.Weekday][h.Hour] += h.Chars
		maxChars = max(maxChars, grid[h.Weekday][h.Hour])
	}

	var header strings.Builder
	header.WriteString("    ")
	for hour := 0; hour < 24; hour += 3 {
		header.WriteString(fmt.Sprintf("%-6s", fmt.Sprintf("%02d", hour)))
	}
	lines := []string{strings.TrimRight(header.String(), " ")}
	cell := colorFor(opts.Color, color.FgGreen)
	for _, day := range heatmapDays {
		var row strings.Builder
		row.WriteString(day.String()[:3] + " ")
		for hour := 0; hour < 24; hour++ {
			ch := sparkLevel(float64(grid[day][hour]), float64(maxChars))
			row.WriteString(cell.Sprint(strings.Repeat(string(ch), 2)))
		}
		lines = append(lines, row.String())
	}
	lines = append(lines, "", fmt.Sprintf("    less %q more   (max %s chars/hour)", sparkChars, FormatCount(maxChars)))
	return writeLines(w, lines)
}

// RenderTrend prints daily totals for [start, end) as a sparkline and a chart.
func RenderTrend(w io.Writer, daily []model.DailyTotal, start, end time.Time, opts Options) error {
	days := FillDays(daily, start, end)
	total := 0
	best := model.DailyTotal{}
	for _, d := range days {
		total += d.Chars
		if d.Chars > best.Chars {
			best = d
		}
	}
	if total == 0 {
		_, err := fmt.Fprintln(w, opts.notice().Sprint("No activity recorded for this period."))
		return err
	}
	if err := writeHeading(w, opts, "Daily Trend", 40); err != nil {
		return err
	}
	chars := make([]float64, len(days))
	for i, d := range days {
		chars[i] = float64(d.Chars)
	}
	first, last := days[0].Date.Format(time.DateOnly), days[len(days)-1].Date.Format(time.DateOnly)
	if _, err := fmt.Fprintf(w, "%s |%s| %s\n", first, Sparkline(chars), last); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Total %s chars over %d days, best %s (%s)\n\n",
		FormatCount(total), len(days), best.Date.Format(time.DateOnly), FormatCount(best.Chars)); err != nil {
		return err
	}
	if len(days) < 2 {
		return nil
	}
	series := []Series{{Name: "chars", Values: chars}}
	if len(days) >= 7 {
		series = append(series, Series{Name: "7-day avg", Values: MovingAverage(chars, 7)})
	}
	plotWidth := PlotWidthFor(opts.width(), axisLabelWidth(series))
	return PlotSeries(w, "Characters per day", series, plotWidth, defaultPlotHeight, opts.Color)
}
