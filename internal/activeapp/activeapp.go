// Package activeapp resolves the foreground application and, for known
// browsers, the page the user was last on.
package activeapp

import (
	"context"
	"errors"
	"strings"

	"github.com/hhushhas/fingerpain/internal/model"
)

// ErrNoActiveApp is returned when no foreground application can be determined.
var ErrNoActiveApp = errors.New("no active application")

// App identifies a foreground application.
type App struct {
	Name       string
	Identifier string
}

// Resolver reports the current foreground application.
type Resolver interface {
	ActiveApp(ctx context.Context) (App, error)
}

// BrowserLookup returns the last known page for a browser name.
type BrowserLookup interface {
	BrowserContext(browser string) (model.BrowserContext, bool)
}

// browsers maps macOS bundle ids and lower-cased X11 WM_CLASS values to browser names.
var browsers = map[string]string{
	"com.google.chrome":     "Chrome",
	"org.mozilla.firefox":   "Firefox",
	"com.apple.safari":      "Safari",
	"com.jadeapps.helium":   "Helium",
	"org.chromium.chromium": "Chromium",
	"com.brave.browser":     "Brave",
	"com.microsoft.edgemac": "Edge",
	"google-chrome":         "Chrome",
	"firefox":               "Firefox",
	"firefox-esr":           "Firefox",
	"navigator":             "Firefox",
	"helium":                "Helium",
	"chromium":              "Chromium",
	"chromium-browser":      "Chromium",
	"brave-browser":         "Brave",
	"microsoft-edge":        "Edge",
	"microsoft-edge-stable": "Edge",
}

// BrowserName returns the browser name for an allow-listed identifier.
func BrowserName(identifier string) (string, bool) {
	name, ok := browsers[strings.ToLower(strings.TrimSpace(identifier))]
	return name, ok
}

// KnownBrowsers returns the distinct browser names on the allow-list.
func KnownBrowsers() []string {
	seen := map[string]bool{}
	var out []string
	for _, name := range browsers {
		if seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}

// Unsupported is a Resolver that always fails.
type Unsupported struct{}

// ActiveApp implements Resolver.
func (Unsupported) ActiveApp(context.Context) (App, error) {
	return App{}, ErrNoActiveApp
}
