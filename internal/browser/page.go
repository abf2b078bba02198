package browser

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/hhushhas/fingerpain/internal/activeapp"
	"github.com/hhushhas/fingerpain/internal/model"
)

// UnknownDomain is stored when a URL has no parseable host.
const UnknownDomain = "unknown"

// ErrUnknownBrowser is returned for pages from browsers outside the allow-list.
var ErrUnknownBrowser = errors.New("unknown browser")

type page struct {
	Browser string `json:"browser"`
	URL     string `json:"url"`
	Title   string `json:"title"`
}

// ParsePage decodes a context file. modTime stamps the result.
func ParsePage(data []byte, modTime time.Time) (model.BrowserContext, error) {
	var p page
	if err := json.Unmarshal(data, &p); err != nil {
		return model.BrowserContext{}, fmt.Errorf("failed to decode page: %w", err)
	}
	name, ok := CanonicalName(p.Browser)
	if !ok {
		return model.BrowserContext{}, fmt.Errorf("%q: %w", p.Browser, ErrUnknownBrowser)
	}
	return model.BrowserContext{
		Browser:   name,
		URL:       p.URL,
		Domain:    Domain(p.URL),
		Title:     p.Title,
		UpdatedAt: modTime.UTC(),
	}, nil
}

// CanonicalName maps a browser name or identifier onto the allow-list spelling.
func CanonicalName(browser string) (string, bool) {
	browser = strings.TrimSpace(browser)
	for _, name := range activeapp.KnownBrowsers() {
		if strings.EqualFold(name, browser) {
			return name, true
		}
	}
	return activeapp.BrowserName(browser)
}

// Domain returns the host of rawURL, or UnknownDomain.
func Domain(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Hostname() == "" {
		return UnknownDomain
	}
	return strings.ToLower(u.Hostname())
}
