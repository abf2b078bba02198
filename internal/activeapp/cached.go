package activeapp

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/hhushhas/fingerpain/internal/model"
)

// DefaultPollInterval bounds how often the foreground application is queried.
const DefaultPollInterval = 2 * time.Second

// Options configure a Cached resolver.
type Options struct {
	Interval time.Duration
	Browsers BrowserLookup
	Logger   *slog.Logger
	Now      func() time.Time
}

// Cached keeps the last resolved foreground context so the capture path
// never blocks on the window system.
type Cached struct {
	resolver Resolver
	browsers BrowserLookup
	interval time.Duration
	logger   *slog.Logger
	now      func() time.Time

	mu       sync.RWMutex
	app      App
	resolved bool
	lastPoll time.Time
}

// NewCached wraps a resolver. The cache starts as the unknown context.
func NewCached(r Resolver, opts Options) *Cached {
	if r == nil {
		r = Unsupported{}
	}
	if opts.Interval <= 0 {
		opts.Interval = DefaultPollInterval
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	return &Cached{
		resolver: r,
		browsers: opts.Browsers,
		interval: opts.Interval,
		logger:   opts.Logger,
		now:      opts.Now,
	}
}

// Refresh queries the resolver unless the last poll is more recent than the interval.
// It reports whether a query was made.
func (c *Cached) Refresh(ctx context.Context) bool {
	now := c.now()
	c.mu.RLock()
	fresh := !c.lastPoll.IsZero() && now.Sub(c.lastPoll) < c.interval
	c.mu.RUnlock()
	if fresh {
		return false
	}

	app, err := c.resolver.ActiveApp(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastPoll = now
	if err != nil {
		if c.resolved {
			c.logger.Debug("active app lookup failed", "err", err)
		}
		c.app = App{}
		c.resolved = false
		return true
	}
	if app.Identifier != c.app.Identifier {
		c.logger.Debug("active app changed", "app", app.Identifier, "name", app.Name)
	}
	c.app = app
	c.resolved = true
	return true
}

// Run refreshes the cache every interval until ctx is done.
func (c *Cached) Run(ctx context.Context) {
	c.Refresh(ctx)
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.Refresh(ctx)
		}
	}
}

// Current returns the cached context, enriched with browser page data for
// allow-listed browsers.
func (c *Cached) Current() model.ActiveContext {
	c.mu.RLock()
	app, ok := c.app, c.resolved
	c.mu.RUnlock()
	if !ok || app.Identifier == "" {
		return model.UnknownContext()
	}

	out := model.ActiveContext{Name: app.Name, Identifier: app.Identifier}
	if out.Name == "" {
		out.Name = app.Identifier
	}
	browser, isBrowser := BrowserName(app.Identifier)
	if !isBrowser {
		return out
	}
	out.Browser = browser
	if c.browsers == nil {
		return out
	}
	if bc, found := c.browsers.BrowserContext(browser); found {
		out.BrowserDomain = bc.Domain
		out.BrowserURL = bc.URL
	}
	return out
}
