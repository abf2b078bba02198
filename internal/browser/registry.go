// Package browser tracks the page each browser last reported, fed by
// JSON files a browser extension host drops into a watched directory.
package browser

import (
	"context"
	"sync"

	"github.com/hhushhas/fingerpain/internal/model"
)

// Source lists previously persisted browser contexts.
type Source interface {
	BrowserContexts(ctx context.Context) ([]model.BrowserContext, error)
}

// Registry holds the latest page per browser name. It is safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	pages map[string]model.BrowserContext
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{pages: make(map[string]model.BrowserContext)}
}

// Seed loads persisted contexts.
func (r *Registry) Seed(ctx context.Context, src Source) error {
	all, err := src.BrowserContexts(ctx)
	if err != nil {
		return err
	}
	for _, bc := range all {
		r.Set(bc)
	}
	return nil
}

// Set stores bc unless an entry with a newer timestamp exists.
// It reports whether the registry changed.
func (r *Registry) Set(bc model.BrowserContext) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cur, ok := r.pages[bc.Browser]; ok && cur.UpdatedAt.After(bc.UpdatedAt) {
		return false
	}
	r.pages[bc.Browser] = bc
	return true
}

// BrowserContext returns the latest page for a browser name.
func (r *Registry) BrowserContext(browser string) (model.BrowserContext, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	bc, ok := r.pages[browser]
	return bc, ok
}

// Len returns the number of browsers with a known page.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.pages)
}
