package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hhushhas/fingerpain/internal/model"
)

// maxDomainsPerApp bounds the per-browser domain breakdown.
const maxDomainsPerApp = 20

func minuteUnix(t time.Time) int64 {
	ts := t.Unix()
	rem := ts % 60
	if rem < 0 {
		rem += 60
	}
	return ts - rem
}

// UpsertKeystroke adds a record's counts to the row for its (minute, app).
// Browser fields only overwrite when the incoming value is non-empty.
func (s *Store) UpsertKeystroke(ctx context.Context, rec model.KeystrokeRecord) (int64, error) {
	appID := rec.AppID
	if appID == "" {
		appID = model.UnknownApp
	}
	var id int64
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO keystrokes (timestamp, app_name, app_bundle_id, char_count, word_count, paragraph_count, backspace_count, browser_domain, browser_url)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(timestamp, app_bundle_id) DO UPDATE SET
			char_count = char_count + excluded.char_count,
			word_count = word_count + excluded.word_count,
			paragraph_count = paragraph_count + excluded.paragraph_count,
			backspace_count = backspace_count + excluded.backspace_count,
			app_name = COALESCE(excluded.app_name, app_name),
			browser_domain = COALESCE(excluded.browser_domain, browser_domain),
			browser_url = COALESCE(excluded.browser_url, browser_url)
		 RETURNING id`,
		minuteUnix(rec.Timestamp),
		nullString(rec.AppName),
		appID,
		rec.CharCount,
		rec.WordCount,
		rec.ParagraphCount,
		rec.BackspaceCount,
		nullString(rec.BrowserDomain),
		nullString(rec.BrowserURL),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to upsert keystrokes for %s: %w", appID, err)
	}
	return id, nil
}

// Stats aggregates keystroke and session data in [start, end).
func (s *Store) Stats(ctx context.Context, start, end time.Time) (model.AggregatedStats, error) {
	var out model.AggregatedStats
	err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(char_count), 0), COALESCE(SUM(word_count), 0),
			COALESCE(SUM(paragraph_count), 0), COALESCE(SUM(backspace_count), 0),
			COUNT(DISTINCT timestamp)
		 FROM keystrokes
		 WHERE timestamp >= ? AND timestamp < ?`,
		start.Unix(), end.Unix(),
	).Scan(&out.TotalChars, &out.TotalWords, &out.TotalParagraphs, &out.TotalBackspaces, &out.ActiveMinutes)
	if err != nil {
		return model.AggregatedStats{}, err
	}
	out.NetChars = out.TotalChars - out.TotalBackspaces

	var avg, peak sql.NullFloat64
	err = s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), AVG(wpm_avg), MAX(wpm_peak)
		 FROM sessions
		 WHERE start_time >= ? AND start_time < ? AND wpm_avg IS NOT NULL`,
		start.Unix(), end.Unix(),
	).Scan(&out.SessionCount, &avg, &peak)
	if err != nil {
		return model.AggregatedStats{}, err
	}
	out.AvgWPM = avg.Float64
	out.PeakWPM = peak.Float64
	return out, nil
}

// AppStats returns per-application totals in [start, end), busiest first.
// Applications with browser context carry a per-domain breakdown.
func (s *Store) AppStats(ctx context.Context, start, end time.Time) ([]model.AppStats, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT COALESCE(MAX(app_name), 'Unknown'), app_bundle_id,
			SUM(char_count) AS chars, SUM(word_count), COUNT(browser_domain)
		 FROM keystrokes
		 WHERE timestamp >= ? AND timestamp < ?
		 GROUP BY app_bundle_id
		 ORDER BY chars DESC, app_bundle_id ASC`,
		start.Unix(), end.Unix())
	if err != nil {
		return nil, err
	}
	defer closeRows(rows)

	var (
		apps        []model.AppStats
		withDomains []int
		total       int
	)
	for rows.Next() {
		var app model.AppStats
		var domainRows int
		if err := rows.Scan(&app.AppName, &app.AppID, &app.Chars, &app.Words, &domainRows); err != nil {
			return nil, err
		}
		total += app.Chars
		if domainRows > 0 {
			withDomains = append(withDomains, len(apps))
		}
		apps = append(apps, app)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if total == 0 {
		return nil, nil
	}
	for i := range apps {
		apps[i].Percentage = float64(apps[i].Chars) / float64(total) * 100
	}
	for _, i := range withDomains {
		domains, err := s.domainStats(ctx, apps[i].AppID, start, end)
		if err != nil {
			return nil, err
		}
		apps[i].Domains = domains
	}
	return apps, nil
}

func (s *Store) domainStats(ctx context.Context, appID string, start, end time.Time) ([]model.DomainStats, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT COALESCE(browser_domain, 'Other') AS domain, SUM(char_count) AS chars, SUM(word_count)
		 FROM keystrokes
		 WHERE app_bundle_id = ? AND timestamp >= ? AND timestamp < ?
		 GROUP BY domain
		 ORDER BY chars DESC, domain ASC
		 LIMIT ?`,
		appID, start.Unix(), end.Unix(), maxDomainsPerApp)
	if err != nil {
		return nil, err
	}
	defer closeRows(rows)

	var out []model.DomainStats
	for rows.Next() {
		var d model.DomainStats
		if err := rows.Scan(&d.Domain, &d.Chars, &d.Words); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// PeakTimes returns the busiest minutes in [start, end).
func (s *Store) PeakTimes(ctx context.Context, start, end time.Time, limit int) ([]model.PeakMinute, error) {
	if limit <= 0 {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT k.timestamp, SUM(k.char_count) AS chars, SUM(k.word_count),
			(SELECT COALESCE(k2.app_name, k2.app_bundle_id) FROM keystrokes k2
			 WHERE k2.timestamp = k.timestamp
			 ORDER BY k2.char_count DESC LIMIT 1)
		 FROM keystrokes k
		 WHERE k.timestamp >= ? AND k.timestamp < ?
		 GROUP BY k.timestamp
		 ORDER BY chars DESC, k.timestamp ASC
		 LIMIT ?`,
		start.Unix(), end.Unix(), limit)
	if err != nil {
		return nil, err
	}
	defer closeRows(rows)

	var out []model.PeakMinute
	for rows.Next() {
		var p model.PeakMinute
		var ts int64
		var app sql.NullString
		if err := rows.Scan(&ts, &p.Chars, &p.Words, &app); err != nil {
			return nil, err
		}
		p.Timestamp = time.Unix(ts, 0).UTC()
		p.AppName = app.String
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// HourlyStats buckets [start, end) by weekday and hour in loc.
func (s *Store) HourlyStats(ctx context.Context, start, end time.Time, loc *time.Location) ([]model.HourlyStats, error) {
	if loc == nil {
		loc = time.Local
	}
	type cell struct{ weekday, hour int }
	totals := map[cell]*model.HourlyStats{}
	err := s.eachMinute(ctx, start, end, func(ts time.Time, chars, words int) {
		local := ts.In(loc)
		c := cell{weekday: int(local.Weekday()), hour: local.Hour()}
		h, ok := totals[c]
		if !ok {
			h = &model.HourlyStats{Weekday: c.weekday, Hour: c.hour}
			totals[c] = h
		}
		h.Chars += chars
		h.Words += words
	})
	if err != nil {
		return nil, err
	}
	out := make([]model.HourlyStats, 0, len(totals))
	for wd := 0; wd < 7; wd++ {
		for hr := 0; hr < 24; hr++ {
			if h, ok := totals[cell{weekday: wd, hour: hr}]; ok {
				out = append(out, *h)
			}
		}
	}
	return out, nil
}

// DailyTotals returns per-day totals in [start, end), days cut in loc.
func (s *Store) DailyTotals(ctx context.Context, start, end time.Time, loc *time.Location) ([]model.DailyTotal, error) {
	if loc == nil {
		loc = time.Local
	}
	var out []model.DailyTotal
	err := s.eachMinute(ctx, start, end, func(ts time.Time, chars, words int) {
		local := ts.In(loc)
		day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
		if n := len(out); n > 0 && out[n-1].Date.Equal(day) {
			out[n-1].Chars += chars
			out[n-1].Words += words
			return
		}
		out = append(out, model.DailyTotal{Date: day, Chars: chars, Words: words})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// eachMinute visits per-minute totals across all apps in timestamp order.
func (s *Store) eachMinute(ctx context.Context, start, end time.Time, fn func(ts time.Time, chars, words int)) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT timestamp, SUM(char_count), SUM(word_count)
		 FROM keystrokes
		 WHERE timestamp >= ? AND timestamp < ?
		 GROUP BY timestamp
		 ORDER BY timestamp ASC`,
		start.Unix(), end.Unix())
	if err != nil {
		return err
	}
	defer closeRows(rows)

	for rows.Next() {
		var ts int64
		var chars, words int
		if err := rows.Scan(&ts, &chars, &words); err != nil {
			return err
		}
		fn(time.Unix(ts, 0).UTC(), chars, words)
	}
	return rows.Err()
}

// Records returns raw per-minute records in [start, end) for export.
func (s *Store) Records(ctx context.Context, start, end time.Time) ([]model.KeystrokeRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, timestamp, app_name, app_bundle_id, char_count, word_count,
			paragraph_count, backspace_count, browser_domain, browser_url
		 FROM keystrokes
		 WHERE timestamp >= ? AND timestamp < ?
		 ORDER BY timestamp ASC, app_bundle_id ASC`,
		start.Unix(), end.Unix())
	if err != nil {
		return nil, err
	}
	defer closeRows(rows)

	var out []model.KeystrokeRecord
	for rows.Next() {
		var rec model.KeystrokeRecord
		var ts int64
		var appName, appID, domain, url sql.NullString
		if err := rows.Scan(&rec.ID, &ts, &appName, &appID, &rec.CharCount, &rec.WordCount,
			&rec.ParagraphCount, &rec.BackspaceCount, &domain, &url); err != nil {
			return nil, err
		}
		rec.Timestamp = time.Unix(ts, 0).UTC()
		rec.AppName = appName.String
		rec.AppID = appID.String
		rec.BrowserDomain = domain.String
		rec.BrowserURL = url.String
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
