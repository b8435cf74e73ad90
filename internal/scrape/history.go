package scrape

import (
	"sync"

	"github.com/diegoamorenag/JobPersonilisePortal/internal/domain"
)

// RunHistory is a bounded FIFO of completed runs. It is injected into the
// Service so tests can construct isolated instances.
type RunHistory struct {
	mu   sync.Mutex
	cap  int
	runs []domain.ScrapeRun
}

// DefaultHistoryCap bounds how many completed runs are kept in memory.
const DefaultHistoryCap = 100

func NewRunHistory(capacity int) *RunHistory {
	if capacity <= 0 {
		capacity = DefaultHistoryCap
	}
	return &RunHistory{cap: capacity}
}

// Append records a completed run, evicting the oldest entry once capacity
// is reached.
func (h *RunHistory) Append(run domain.ScrapeRun) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.runs = append(h.runs, run)
	if len(h.runs) > h.cap {
		h.runs = h.runs[len(h.runs)-h.cap:]
	}
}

// Snapshot returns up to limit runs, newest first. limit <= 0 returns
// everything.
func (h *RunHistory) Snapshot(limit int) []domain.ScrapeRun {
	h.mu.Lock()
	defer h.mu.Unlock()

	n := len(h.runs)
	if limit <= 0 || limit > n {
		limit = n
	}

	out := make([]domain.ScrapeRun, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		out = append(out, h.runs[i])
	}
	return out
}

func (h *RunHistory) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.runs)
}

func (h *RunHistory) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.runs = nil
}
