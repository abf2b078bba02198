package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/hhushhas/fingerpain/internal/model"
)

type fakeSource struct {
	stats   model.AggregatedStats
	apps    []model.AppStats
	records []model.KeystrokeRecord
	err     error
}

func (f fakeSource) Stats(context.Context, time.Time, time.Time) (model.AggregatedStats, error) {
	return f.stats, f.err
}

func (f fakeSource) AppStats(context.Context, time.Time, time.Time) ([]model.AppStats, error) {
	return f.apps, f.err
}

func (f fakeSource) Records(context.Context, time.Time, time.Time) ([]model.KeystrokeRecord, error) {
	return f.records, f.err
}

var (
	periodStart = time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	periodEnd   = periodStart.AddDate(0, 0, 1)
	exportedAt  = time.Date(2024, 6, 3, 18, 0, 0, 0, time.UTC)
)

func sampleSource() fakeSource {
	return fakeSource{
		stats: model.AggregatedStats{
			TotalChars: 150, TotalWords: 30, TotalParagraphs: 2, TotalBackspaces: 5,
			NetChars: 145, ActiveMinutes: 2, SessionCount: 1, AvgWPM: 42.5, PeakWPM: 61,
		},
		apps: []model.AppStats{
			{AppName: "Chrome", AppID: "com.google.chrome", Chars: 100, Words: 20, Percentage: 66.7,
				Domains: []model.DomainStats{{Domain: "github.com", Chars: 100, Words: 20}}},
			{AppName: "Editor", AppID: "com.example.editor", Chars: 50, Words: 10, Percentage: 33.3},
		},
		records: []model.KeystrokeRecord{
			{Timestamp: periodStart.Add(9 * time.Hour), AppName: "Chrome", AppID: "com.google.chrome",
				CharCount: 100, WordCount: 20, ParagraphCount: 1, BackspaceCount: 3, BrowserDomain: "github.com"},
			{Timestamp: periodStart.Add(9*time.Hour + time.Minute), AppName: "Editor, Pro", AppID: "com.example.editor",
				CharCount: 50, WordCount: 10, ParagraphCount: 1, BackspaceCount: 2},
		},
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"csv": CSV, "JSON": JSON, "yml": YAML, " yaml ": YAML} {
		got, err := ParseFormat(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseFormat("xml")
	require.Error(t, err)
	assert.Equal(t, "json", JSON.Extension())
}

func TestWriteRecordsCSV(t *testing.T) {
	var buf bytes.Buffer
	err := Write(context.Background(), &buf, sampleSource(), Request{Format: CSV, Start: periodStart, End: periodEnd})
	require.NoError(t, err)

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, recordHeader, rows[0])
	assert.Equal(t, []string{"2024-06-03T09:00:00Z", "Chrome", "com.google.chrome", "100", "20", "1", "3", "github.com"}, rows[1])
	assert.Equal(t, "Editor, Pro", rows[2][1])
	assert.Equal(t, "", rows[2][7])
}

func TestWriteSummaryCSV(t *testing.T) {
	var buf bytes.Buffer
	err := Write(context.Background(), &buf, sampleSource(), Request{Format: CSV, SummaryOnly: true, Start: periodStart, End: periodEnd})
	require.NoError(t, err)

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 9)
	assert.Equal(t, []string{"metric", "value"}, rows[0])
	assert.Equal(t, []string{"net_chars", "145"}, rows[5])
	assert.Equal(t, []string{"avg_wpm", "42.5"}, rows[7])
	assert.Equal(t, []string{"peak_wpm", "61.0"}, rows[8])
}

func TestWriteSummaryCSVWithoutSessions(t *testing.T) {
	src := sampleSource()
	src.stats.SessionCount = 0
	var buf bytes.Buffer
	require.NoError(t, Write(context.Background(), &buf, src, Request{Format: CSV, SummaryOnly: true}))
	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Len(t, rows, 7)
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	req := Request{Format: JSON, Start: periodStart, End: periodEnd, Now: exportedAt}
	require.NoError(t, Write(context.Background(), &buf, sampleSource(), req))

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "2024-06-03T18:00:00Z", got["exported_at"])
	assert.Equal(t, "2024-06-03T00:00:00Z", got["period_start"])
	assert.Equal(t, "2024-06-04T00:00:00Z", got["period_end"])

	summary := got["summary"].(map[string]any)
	assert.EqualValues(t, 150, summary["total_chars"])
	assert.EqualValues(t, 42.5, summary["avg_wpm"])

	apps := got["app_breakdown"].([]any)
	require.Len(t, apps, 2)
	domains := apps[0].(map[string]any)["domains"].([]any)
	assert.Equal(t, "github.com", domains[0].(map[string]any)["domain"])

	records := got["records"].([]any)
	require.Len(t, records, 2)
	assert.Equal(t, "github.com", records[0].(map[string]any)["browser_domain"])
	assert.NotContains(t, records[1].(map[string]any), "browser_domain")
}

func TestWriteJSONSummaryOnlyNullWPM(t *testing.T) {
	src := sampleSource()
	src.stats.SessionCount = 0
	var buf bytes.Buffer
	require.NoError(t, Write(context.Background(), &buf, src, Request{Format: JSON, SummaryOnly: true, Now: exportedAt}))

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.NotContains(t, got, "records")
	summary := got["summary"].(map[string]any)
	assert.Nil(t, summary["avg_wpm"])
	assert.Nil(t, summary["peak_wpm"])
}

func TestWriteYAML(t *testing.T) {
	var buf bytes.Buffer
	req := Request{Format: YAML, Start: periodStart, End: periodEnd, Now: exportedAt}
	require.NoError(t, Write(context.Background(), &buf, sampleSource(), req))

	var got document
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	assert.True(t, got.ExportedAt.Equal(exportedAt))
	assert.Equal(t, 145, got.Summary.NetChars)
	require.Len(t, got.AppBreakdown, 2)
	assert.Equal(t, "com.example.editor", got.AppBreakdown[1].AppID)
	require.Len(t, got.Records, 2)
	assert.Equal(t, 3, got.Records[0].BackspaceCount)
}

func TestWritePropagatesSourceErrors(t *testing.T) {
	boom := errors.New("boom")
	for _, f := range []Format{CSV, JSON, YAML} {
		err := Write(context.Background(), &bytes.Buffer{}, fakeSource{err: boom}, Request{Format: f})
		require.ErrorIs(t, err, boom, "format %s", f)
	}
}
