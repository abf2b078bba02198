package stats

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/hhushhas/fingerpain/internal/model"
)

var plainOpts = Options{Width: 80, Loc: time.UTC}

func TestMovingAverage(t *testing.T) {
	got := MovingAverage([]float64{2, 4, 6, 8}, 2)
	want := []float64{2, 3, 5, 7}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("index %d: expected %v, got %v", i, want[i], got[i])
		}
	}
}

func TestSparkline(t *testing.T) {
	got := Sparkline([]float64{0, 5, 10})
	if len(got) != 3 {
		t.Fatalf("unexpected length %q", got)
	}
	if got[0] != ' ' || got[2] != '@' {
		t.Fatalf("unexpected sparkline %q", got)
	}
	if Sparkline(nil) != "" {
		t.Fatalf("expected empty sparkline")
	}
}

func TestRenderSummary(t *testing.T) {
	var buf bytes.Buffer
	s := model.AggregatedStats{
		TotalChars:      1500,
		TotalWords:      300,
		TotalParagraphs: 4,
		TotalBackspaces: 20,
		NetChars:        1480,
		ActiveMinutes:   65,
	}
	if err := RenderSummary(&buf, "Today", s, plainOpts); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Today Statistics", "1.5K (net: 1480)", "1h 5m", "Paragraphs"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
	var wpmLine string
	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(line, "Avg WPM") {
			wpmLine = line
		}
	}
	if !strings.HasSuffix(wpmLine, "-") {
		t.Fatalf("expected dash for avg wpm without sessions, got %q", wpmLine)
	}
}

func TestRenderAppsNestsDomains(t *testing.T) {
	var buf bytes.Buffer
	apps := []model.AppStats{
		{AppName: "Chrome", AppID: "com.google.chrome", Chars: 600, Words: 100, Percentage: 60, Domains: []model.DomainStats{
			{Domain: "github.com", Chars: 400, Words: 70},
			{Domain: "Other", Chars: 200, Words: 30},
		}},
		{AppName: "Editor", Chars: 400, Words: 80, Percentage: 40},
	}
	if err := RenderApps(&buf, apps, 10, plainOpts); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Chrome", "└ github.com", "60.0%", "Top sites: github.com (400)"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestRenderAppsEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderApps(&buf, nil, 10, plainOpts); err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(buf.String(), "No app data") {
		t.Fatalf("unexpected output %q", buf.String())
	}
}

func TestRenderPeaks(t *testing.T) {
	var buf bytes.Buffer
	peaks := []model.PeakMinute{{Timestamp: time.Date(2024, 6, 3, 14, 7, 0, 0, time.UTC), AppName: "Editor", Chars: 320, Words: 55}}
	if err := RenderPeaks(&buf, peaks, plainOpts); err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(buf.String(), "2024-06-03 14:07") {
		t.Fatalf("unexpected output:\n%s", buf.String())
	}
}

func TestRenderHeatmap(t *testing.T) {
	var buf bytes.Buffer
	hourly := []model.HourlyStats{
		{Weekday: int(time.Monday), Hour: 9, Chars: 100},
		{Weekday: int(time.Sunday), Hour: 23, Chars: 10},
	}
	if err := RenderHeatmap(&buf, hourly, plainOpts); err != nil {
		t.Fatalf("render: %v", err)
	}
	lines := strings.Split(buf.String(), "\n")
	var mon, sun string
	for _, line := range lines {
		switch {
		case strings.HasPrefix(line, "Mon "):
			mon = line
		case strings.HasPrefix(line, "Sun "):
			sun = line
		}
	}
	if mon == "" || sun == "" {
		t.Fatalf("missing rows:\n%s", buf.String())
	}
	if got := mon[4+9*2 : 4+9*2+2]; got != "@@" {
		t.Fatalf("expected full intensity at Monday 09, got %q", got)
	}
	if got := sun[4+23*2:]; got == "  " || got == "@@" {
		t.Fatalf("expected partial intensity at Sunday 23, got %q", got)
	}
}

func TestRenderTrend(t *testing.T) {
	var buf bytes.Buffer
	start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 10)
	daily := []model.DailyTotal{
		{Date: start.AddDate(0, 0, 1), Chars: 500},
		{Date: start.AddDate(0, 0, 4), Chars: 2000},
	}
	if err := RenderTrend(&buf, daily, start, end, plainOpts); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"2024-06-01 |", "| 2024-06-10", "best 2024-06-05 (2.0K)", "Characters per day"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestRenderTrendEmpty(t *testing.T) {
	var buf bytes.Buffer
	start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	if err := RenderTrend(&buf, nil, start, start.AddDate(0, 0, 3), plainOpts); err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(buf.String(), "No activity") {
		t.Fatalf("unexpected output %q", buf.String())
	}
}
