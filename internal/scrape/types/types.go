package types

import (
	"context"
	"time"

	"github.com/diegoamorenag/JobPersonilisePortal/internal/domain"
)

// Config is the per-instance scraper configuration. It is fixed at
// construction time; a new instance is built for every run. Durations on
// the wire are nanoseconds, Go's default encoding.
type Config struct {
	BaseURL              string        `json:"baseUrl,omitempty"`
	SourceName           string        `json:"sourceName,omitempty"`
	RequestTimeout       time.Duration `json:"requestTimeout,omitempty"`
	MaxRetries           int           `json:"maxRetries,omitempty"`
	DelayBetweenRequests time.Duration `json:"delayBetweenRequests,omitempty"`
	UserAgent            string        `json:"userAgent,omitempty"`
}

const defaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// DefaultConfig returns the baseline configuration; concrete scrapers fill
// in BaseURL and SourceName.
func DefaultConfig() Config {
	return Config{
		RequestTimeout:       15 * time.Second,
		MaxRetries:           3,
		DelayBetweenRequests: 2 * time.Second,
		UserAgent:            defaultUserAgent,
	}
}

// Options control a single scrape run.
type Options struct {
	Query    string `json:"query"`
	Location string `json:"location"`
	MaxPages int    `json:"maxPages"`
}

// ScrapeError is a contained, per-listing or per-page failure recorded
// during a run.
type ScrapeError struct {
	Context string `json:"context"`
	Message string `json:"message"`
}

// Result is what every scraper returns. On a fatal mid-run error Success is
// false, Jobs holds whatever was accumulated before the failure (reported,
// not persisted) and Stats stays zeroed.
type Result struct {
	Success bool                `json:"success"`
	Jobs    []domain.JobPosting `json:"jobs"`
	Stats   domain.RunStats     `json:"stats"`
	Errors  []ScrapeError       `json:"errors"`
}

// Info identifies a registered scraper without running it.
type Info struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	BaseURL     string `json:"baseUrl"`
}

// Scraper is implemented by every concrete source. Pagination scheme, URL
// shape and field selectors are genuinely site-specific, so Scrape is the
// whole contract.
type Scraper interface {
	Name() string
	Info() Info
	Scrape(ctx context.Context, opts Options) (*Result, error)
}
