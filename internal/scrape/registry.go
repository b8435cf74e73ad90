// Package scrape orchestrates the site scrapers: a name-to-factory
// registry, the run service with active-run tracking and bounded history,
// and aggregate statistics.
package scrape

import (
	"fmt"
	"sort"
	"sync"

	"github.com/diegoamorenag/JobPersonilisePortal/internal/scrape/base"
	"github.com/diegoamorenag/JobPersonilisePortal/internal/scrape/computrabajo"
	"github.com/diegoamorenag/JobPersonilisePortal/internal/scrape/linkedin"
	"github.com/diegoamorenag/JobPersonilisePortal/internal/scrape/types"
	"github.com/diegoamorenag/JobPersonilisePortal/internal/scrape/util"
)

// Factory builds a fresh scraper instance for one run. A zero-value Config
// asks the factory for its defaults.
type Factory func(cfg types.Config) types.Scraper

// Registry maps scraper names to factories. Scrapers are instantiated per
// run; the registry itself is safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// DefaultRegistry returns a registry with the known scrapers pre-registered
// against the given store. All instances share one per-host rate limiter.
func DefaultRegistry(store base.JobStore) *Registry {
	limiter := util.NewHostLimiter(1, 2)

	r := NewRegistry()
	_ = r.Register(linkedin.ScraperID, func(cfg types.Config) types.Scraper {
		return linkedin.New(cfg, store, limiter)
	})
	_ = r.Register(computrabajo.ScraperID, func(cfg types.Config) types.Scraper {
		return computrabajo.New(cfg, store, limiter)
	})
	return r
}

func (r *Registry) Register(name string, f Factory) error {
	if f == nil {
		return fmt.Errorf("register %q: nil factory", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = f
	return nil
}

func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.factories, name)
}

// Get instantiates the named scraper. Unknown names fail fast with the
// available alternatives in the message.
func (r *Registry) Get(name string, cfg types.Config) (types.Scraper, error) {
	r.mu.RLock()
	f, ok := r.factories[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("scraper %q not found (available: %v)", name, r.Available())
	}
	if cfg == (types.Config{}) {
		cfg = types.DefaultConfig()
	}
	return f(cfg), nil
}

// Available lists registered scraper names, sorted.
func (r *Registry) Available() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Info instantiates each registered factory with default config solely to
// read its identity fields.
func (r *Registry) Info() []types.Info {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]types.Info, 0, len(r.factories))
	for _, f := range r.factories {
		infos = append(infos, f(types.DefaultConfig()).Info())
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].ID < infos[j].ID })
	return infos
}
