// Package export writes keystroke data as CSV, JSON or YAML.
package export

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hhushhas/fingerpain/internal/model"
)

// Format is an output encoding.
type Format string

// Supported formats.
const (
	CSV  Format = "csv"
	JSON Format = "json"
	YAML Format = "yaml"
)

// ParseFormat accepts csv, json, yaml or yml.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "csv":
		return CSV, nil
	case "json":
		return JSON, nil
	case "yaml", "yml":
		return YAML, nil
	default:
		return "", fmt.Errorf("unknown export format %q (want csv, json or yaml)", s)
	}
}

// Extension is the file extension for f, without the dot.
func (f Format) Extension() string {
	return string(f)
}

// Source is the read side of the store used by exports.
type Source interface {
	Stats(ctx context.Context, start, end time.Time) (model.AggregatedStats, error)
	AppStats(ctx context.Context, start, end time.Time) ([]model.AppStats, error)
	Records(ctx context.Context, start, end time.Time) ([]model.KeystrokeRecord, error)
}

// Request selects what to export.
type Request struct {
	Format Format
	Start  time.Time
	End    time.Time
	// SummaryOnly leaves out per-minute records.
	SummaryOnly bool
	// Now stamps exported_at; zero means time.Now.
	Now time.Time
}

type recordDoc struct {
	Timestamp      time.Time `json:"timestamp" yaml:"timestamp"`
	AppName        string    `json:"app_name" yaml:"app_name"`
	AppBundleID    string    `json:"app_bundle_id" yaml:"app_bundle_id"`
	CharCount      int       `json:"char_count" yaml:"char_count"`
	WordCount      int       `json:"word_count" yaml:"word_count"`
	ParagraphCount int       `json:"paragraph_count" yaml:"paragraph_count"`
	BackspaceCount int       `json:"backspace_count" yaml:"backspace_count"`
	BrowserDomain  string    `json:"browser_domain,omitempty" yaml:"browser_domain,omitempty"`
	BrowserURL     string    `json:"browser_url,omitempty" yaml:"browser_url,omitempty"`
}

type summaryDoc struct {
	TotalChars      int      `json:"total_chars" yaml:"total_chars"`
	TotalWords      int      `json:"total_words" yaml:"total_words"`
	TotalParagraphs int      `json:"total_paragraphs" yaml:"total_paragraphs"`
	TotalBackspaces int      `json:"total_backspaces" yaml:"total_backspaces"`
	NetChars        int      `json:"net_chars" yaml:"net_chars"`
	ActiveMinutes   int      `json:"active_minutes" yaml:"active_minutes"`
	SessionCount    int      `json:"session_count" yaml:"session_count"`
	AvgWPM          *float64 `json:"avg_wpm" yaml:"avg_wpm"`
	PeakWPM         *float64 `json:"peak_wpm" yaml:"peak_wpm"`
}

type domainDoc struct {
	Domain string `json:"domain" yaml:"domain"`
	Chars  int    `json:"chars" yaml:"chars"`
	Words  int    `json:"words" yaml:"words"`
}

type appDoc struct {
	AppName    string      `json:"app_name" yaml:"app_name"`
	AppID      string      `json:"app_bundle_id" yaml:"app_bundle_id"`
	Chars      int         `json:"chars" yaml:"chars"`
	Words      int         `json:"words" yaml:"words"`
	Percentage float64     `json:"percentage" yaml:"percentage"`
	Domains    []domainDoc `json:"domains,omitempty" yaml:"domains,omitempty"`
}

type document struct {
	ExportedAt   time.Time   `json:"exported_at" yaml:"exported_at"`
	PeriodStart  time.Time   `json:"period_start" yaml:"period_start"`
	PeriodEnd    time.Time   `json:"period_end" yaml:"period_end"`
	Summary      summaryDoc  `json:"summary" yaml:"summary"`
	AppBreakdown []appDoc    `json:"app_breakdown" yaml:"app_breakdown"`
	Records      []recordDoc `json:"records,omitempty" yaml:"records,omitempty"`
}

// Write loads the requested period from src and encodes it to w.
func Write(ctx context.Context, w io.Writer, src Source, req Request) error {
	if req.Format == CSV {
		if req.SummaryOnly {
			s, err := src.Stats(ctx, req.Start, req.End)
			if err != nil {
				return err
			}
			return writeSummaryCSV(w, s)
		}
		recs, err := src.Records(ctx, req.Start, req.End)
		if err != nil {
			return err
		}
		return writeRecordsCSV(w, recs)
	}

	doc, err := buildDocument(ctx, src, req)
	if err != nil {
		return err
	}
	switch req.Format {
	case JSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	case YAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown export format %q", req.Format)
	}
}

func buildDocument(ctx context.Context, src Source, req Request) (document, error) {
	now := req.Now
	if now.IsZero() {
		now = time.Now()
	}
	s, err := src.Stats(ctx, req.Start, req.End)
	if err != nil {
		return document{}, err
	}
	apps, err := src.AppStats(ctx, req.Start, req.End)
	if err != nil {
		return document{}, err
	}
	doc := document{
		ExportedAt:   now.UTC(),
		PeriodStart:  req.Start.UTC(),
		PeriodEnd:    req.End.UTC(),
		Summary:      toSummaryDoc(s),
		AppBreakdown: make([]appDoc, 0, len(apps)),
	}
	for _, app := range apps {
		doc.AppBreakdown = append(doc.AppBreakdown, toAppDoc(app))
	}
	if req.SummaryOnly {
		return doc, nil
	}
	recs, err := src.Records(ctx, req.Start, req.End)
	if err != nil {
		return document{}, err
	}
	doc.Records = make([]recordDoc, 0, len(recs))
	for _, rec := range recs {
		doc.Records = append(doc.Records, toRecordDoc(rec))
	}
	return doc, nil
}

func toSummaryDoc(s model.AggregatedStats) summaryDoc {
	doc := summaryDoc{
		TotalChars:      s.TotalChars,
		TotalWords:      s.TotalWords,
		TotalParagraphs: s.TotalParagraphs,
		TotalBackspaces: s.TotalBackspaces,
		NetChars:        s.NetChars,
		ActiveMinutes:   s.ActiveMinutes,
		SessionCount:    s.SessionCount,
	}
	if s.SessionCount > 0 {
		avg, peak := s.AvgWPM, s.PeakWPM
		doc.AvgWPM, doc.PeakWPM = &avg, &peak
	}
	return doc
}

func toAppDoc(app model.AppStats) appDoc {
	doc := appDoc{
		AppName:    app.AppName,
		AppID:      app.AppID,
		Chars:      app.Chars,
		Words:      app.Words,
		Percentage: app.Percentage,
	}
	for _, d := range app.Domains {
		doc.Domains = append(doc.Domains, domainDoc{Domain: d.Domain, Chars: d.Chars, Words: d.Words})
	}
	return doc
}

func toRecordDoc(rec model.KeystrokeRecord) recordDoc {
	return recordDoc{
		Timestamp:      rec.Timestamp.UTC(),
		AppName:        rec.AppName,
		AppBundleID:    rec.AppID,
		CharCount:      rec.CharCount,
		WordCount:      rec.WordCount,
		ParagraphCount: rec.ParagraphCount,
		BackspaceCount: rec.BackspaceCount,
		BrowserDomain:  rec.BrowserDomain,
		BrowserURL:     rec.BrowserURL,
	}
}

var recordHeader = []string{
	"timestamp",
	"app_name",
	"app_bundle_id",
	"char_count",
	"word_count",
	"paragraph_count",
	"backspace_count",
	"browser_domain",
}

func writeRecordsCSV(w io.Writer, recs []model.KeystrokeRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(recordHeader); err != nil {
		return err
	}
	for _, rec := range recs {
		row := []string{
			rec.Timestamp.UTC().Format(time.RFC3339),
			rec.AppName,
			rec.AppID,
			strconv.Itoa(rec.CharCount),
			strconv.Itoa(rec.WordCount),
			strconv.Itoa(rec.ParagraphCount),
			strconv.Itoa(rec.BackspaceCount),
			rec.BrowserDomain,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeSummaryCSV(w io.Writer, s model.AggregatedStats) error {
	rows := [][]string{
		{"metric", "value"},
		{"total_chars", strconv.Itoa(s.TotalChars)},
		{"total_words", strconv.Itoa(s.TotalWords)},
		{"total_paragraphs", strconv.Itoa(s.TotalParagraphs)},
		{"total_backspaces", strconv.Itoa(s.TotalBackspaces)},
		{"net_chars", strconv.Itoa(s.NetChars)},
		{"active_minutes", strconv.Itoa(s.ActiveMinutes)},
	}
	if s.SessionCount > 0 {
		rows = append(rows,
			[]string{"avg_wpm", strconv.FormatFloat(s.AvgWPM, 'f', 1, 64)},
			[]string{"peak_wpm", strconv.FormatFloat(s.PeakWPM, 'f', 1, 64)},
		)
	}
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(rows); err != nil {
		return err
	}
	return cw.Error()
}
