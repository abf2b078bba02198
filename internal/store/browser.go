package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/hhushhas/fingerpain/internal/model"
)

// UpsertBrowserContext replaces the last known page for a browser.
func (s *Store) UpsertBrowserContext(ctx context.Context, bc model.BrowserContext) error {
	updated := bc.UpdatedAt
	if updated.IsZero() {
		updated = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO browser_context (browser_name, url, domain, page_title, last_updated)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(browser_name) DO UPDATE SET
			url = excluded.url,
			domain = excluded.domain,
			page_title = excluded.page_title,
			last_updated = excluded.last_updated`,
		bc.Browser,
		nullString(bc.URL),
		nullString(bc.Domain),
		nullString(bc.Title),
		updated.Unix(),
	)
	return err
}

// BrowserContext returns the last known page for a browser name.
func (s *Store) BrowserContext(ctx context.Context, browser string) (model.BrowserContext, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT browser_name, url, domain, page_title, last_updated
		 FROM browser_context
		 WHERE browser_name = ?`, browser)
	bc, err := scanBrowserContext(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.BrowserContext{}, ErrNotFound
	}
	return bc, err
}

// BrowserContexts returns every stored browser context.
func (s *Store) BrowserContexts(ctx context.Context) ([]model.BrowserContext, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT browser_name, url, domain, page_title, last_updated
		 FROM browser_context
		 ORDER BY browser_name ASC`)
	if err != nil {
		return nil, err
	}
	defer closeRows(rows)

	var out []model.BrowserContext
	for rows.Next() {
		bc, err := scanBrowserContext(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, bc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func scanBrowserContext(row rowScanner) (model.BrowserContext, error) {
	var bc model.BrowserContext
	var url, domain, title sql.NullString
	var updated int64
	if err := row.Scan(&bc.Browser, &url, &domain, &title, &updated); err != nil {
		return model.BrowserContext{}, err
	}
	bc.URL = url.String
	bc.Domain = domain.String
	bc.Title = title.String
	bc.UpdatedAt = time.Unix(updated, 0).UTC()
	return bc, nil
}
