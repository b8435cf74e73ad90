package scrape

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/diegoamorenag/JobPersonilisePortal/internal/domain"
	"github.com/diegoamorenag/JobPersonilisePortal/internal/events"
	"github.com/diegoamorenag/JobPersonilisePortal/internal/scrape/types"
)

// Service runs scrapers and tracks their outcomes: an active-run map while
// a run is in flight, then an entry in the bounded history.
type Service struct {
	reg     *Registry
	history *RunHistory
	hub     *events.Hub // optional

	// Defaults seed every run's scraper config; per-run overrides win
	// field by field. Zero means the registry's built-in defaults.
	Defaults types.Config

	mu     sync.Mutex
	active map[string]domain.ScrapeRun
}

func NewService(reg *Registry, history *RunHistory, hub *events.Hub) *Service {
	return &Service{
		reg:     reg,
		history: history,
		hub:     hub,
		active:  make(map[string]domain.ScrapeRun),
	}
}

// RunRequest names a scraper and its run options for multi-scraper runs.
// Config fields left zero inherit the service defaults.
type RunRequest struct {
	Name    string        `json:"name"`
	Options types.Options `json:"options"`
	Config  types.Config  `json:"config"`
}

// RunOutcome is one slot of a multi-scraper run. A failed slot carries the
// error text; it never suppresses its siblings.
type RunOutcome struct {
	Name    string        `json:"name"`
	Success bool          `json:"success"`
	Result  *types.Result `json:"result,omitempty"`
	Error   string        `json:"error,omitempty"`
}

// Statistics aggregate the recorded history.
type Statistics struct {
	TotalRuns     int     `json:"totalRuns"`
	Successful    int     `json:"successful"`
	Failed        int     `json:"failed"`
	SuccessRate   float64 `json:"successRate"`
	TotalScraped  int     `json:"totalScraped"`
	TotalSaved    int     `json:"totalSaved"`
	AvgDurationMs int64   `json:"avgDurationMs"`
}

// runConfig layers a per-run config over the service defaults: any zero
// field inherits, any set field overrides.
func (s *Service) runConfig(cfg types.Config) types.Config {
	base := s.Defaults
	if base == (types.Config{}) {
		base = types.DefaultConfig()
	}
	if cfg.BaseURL != "" {
		base.BaseURL = cfg.BaseURL
	}
	if cfg.SourceName != "" {
		base.SourceName = cfg.SourceName
	}
	if cfg.RequestTimeout > 0 {
		base.RequestTimeout = cfg.RequestTimeout
	}
	if cfg.MaxRetries > 0 {
		base.MaxRetries = cfg.MaxRetries
	}
	if cfg.DelayBetweenRequests > 0 {
		base.DelayBetweenRequests = cfg.DelayBetweenRequests
	}
	if cfg.UserAgent != "" {
		base.UserAgent = cfg.UserAgent
	}
	return base
}

// RunScraper resolves and runs one scraper with cfg layered over the
// service defaults. The run is tracked as active while in flight and always
// lands in history afterwards; a fatal error is recorded as a failed run
// and returned to the caller, never swallowed.
func (s *Service) RunScraper(ctx context.Context, name string, opts types.Options, cfg types.Config) (*types.Result, error) {
	scraper, err := s.reg.Get(name, s.runConfig(cfg))
	if err != nil {
		return nil, err
	}

	run := domain.ScrapeRun{
		ID:        newRunID(name),
		Scraper:   name,
		StartedAt: time.Now().UTC(),
	}

	s.mu.Lock()
	s.active[run.ID] = run
	s.mu.Unlock()
	s.publish(events.TypeRunStarted, run)

	log.Printf("[svc] run %s started query=%q location=%q maxPages=%d",
		run.ID, opts.Query, opts.Location, opts.MaxPages)

	res, scrapeErr := scraper.Scrape(ctx, opts)

	run.FinishedAt = time.Now().UTC()
	run.DurationMs = run.FinishedAt.Sub(run.StartedAt).Milliseconds()
	if res != nil {
		run.Stats = res.Stats
		run.ErrorCount = len(res.Errors)
		run.Success = res.Success
	}
	if scrapeErr != nil {
		run.Success = false
		run.Error = scrapeErr.Error()
	}

	s.mu.Lock()
	delete(s.active, run.ID)
	s.mu.Unlock()
	s.history.Append(run)

	if scrapeErr != nil {
		s.publish(events.TypeRunFailed, run)
		log.Printf("[svc] run %s failed after %dms: %v", run.ID, run.DurationMs, scrapeErr)
		return res, scrapeErr
	}

	s.publish(events.TypeRunFinished, run)
	log.Printf("[svc] run %s done in %dms saved=%d duplicates=%d failed=%d",
		run.ID, run.DurationMs, run.Stats.Saved, run.Stats.Duplicates, run.Stats.Failed)
	return res, nil
}

// RunMany executes the requested scrapers, in parallel or one at a time.
// Each slot's failure is caught individually; result order follows the
// request order either way.
func (s *Service) RunMany(ctx context.Context, reqs []RunRequest, parallel bool) []RunOutcome {
	outcomes := make([]RunOutcome, len(reqs))

	runOne := func(i int) {
		req := reqs[i]
		res, err := s.RunScraper(ctx, req.Name, req.Options, req.Config)
		out := RunOutcome{Name: req.Name, Result: res}
		if err != nil {
			out.Error = err.Error()
		} else {
			out.Success = res.Success
		}
		outcomes[i] = out
	}

	if parallel {
		var g errgroup.Group
		for i := range reqs {
			g.Go(func() error {
				runOne(i) // best-effort: a failed slot never cancels siblings
				return nil
			})
		}
		_ = g.Wait()
	} else {
		for i := range reqs {
			runOne(i)
		}
	}

	return outcomes
}

// Scrapers describes every registered scraper.
func (s *Service) Scrapers() []types.Info {
	return s.reg.Info()
}

// ActiveRuns lists runs currently in flight.
func (s *Service) ActiveRuns() []domain.ScrapeRun {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.ScrapeRun, 0, len(s.active))
	for _, run := range s.active {
		out = append(out, run)
	}
	return out
}

// History returns up to limit completed runs, newest first.
func (s *Service) History(limit int) []domain.ScrapeRun {
	return s.history.Snapshot(limit)
}

func (s *Service) ClearHistory() {
	s.history.Clear()
}

// Stats aggregates the recorded history.
func (s *Service) Stats() Statistics {
	runs := s.history.Snapshot(0)

	var st Statistics
	st.TotalRuns = len(runs)

	var totalDur int64
	for _, r := range runs {
		if r.Success {
			st.Successful++
		} else {
			st.Failed++
		}
		st.TotalScraped += r.Stats.Total
		st.TotalSaved += r.Stats.Saved
		totalDur += r.DurationMs
	}
	if st.TotalRuns > 0 {
		st.SuccessRate = float64(st.Successful) / float64(st.TotalRuns)
		st.AvgDurationMs = totalDur / int64(st.TotalRuns)
	}
	return st
}

func (s *Service) publish(typ string, run domain.ScrapeRun) {
	if s.hub != nil {
		s.hub.Publish(events.Make(typ, run))
	}
}

func newRunID(name string) string {
	return fmt.Sprintf("%s-%d-%s", name, time.Now().UnixMilli(), uuid.NewString()[:8])
}
