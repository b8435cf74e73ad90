// Package base carries the behavior every site scraper shares: fetch with
// retry, HTML parsing, field cleaning, validation, external-ID generation
// and upsert-based persistence. Concrete scrapers embed *Base and supply
// their own pagination and selector logic.
package base

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/diegoamorenag/JobPersonilisePortal/internal/domain"
	"github.com/diegoamorenag/JobPersonilisePortal/internal/scrape/types"
	"github.com/diegoamorenag/JobPersonilisePortal/internal/scrape/util"
)

// JobStore is the persistence contract the scrapers depend on: a single
// upsert keyed by external ID. inserted reports whether the row was new.
type JobStore interface {
	UpsertJob(ctx context.Context, job domain.JobPosting) (inserted bool, err error)
}

// Base holds per-run accumulated state plus the shared plumbing. It is not
// safe for concurrent use; every run gets its own instance.
type Base struct {
	Cfg     types.Config
	Store   JobStore
	HC      *http.Client
	Limiter *util.HostLimiter

	jobs []domain.JobPosting
	errs []types.ScrapeError
}

func New(cfg types.Config, store JobStore, limiter *util.HostLimiter) *Base {
	return &Base{
		Cfg:     cfg,
		Store:   store,
		HC:      &http.Client{Timeout: cfg.RequestTimeout},
		Limiter: limiter,
	}
}

// Jobs returns the postings accumulated so far this run.
func (b *Base) Jobs() []domain.JobPosting { return b.jobs }

// Errors returns the contained failures recorded this run.
func (b *Base) Errors() []types.ScrapeError { return b.errs }

func (b *Base) AppendJobs(jobs ...domain.JobPosting) { b.jobs = append(b.jobs, jobs...) }

func (b *Base) AddError(context, message string) {
	b.errs = append(b.errs, types.ScrapeError{Context: context, Message: message})
}

// Reset clears accumulated jobs and errors between runs.
func (b *Base) Reset() {
	b.jobs = nil
	b.errs = nil
}

// Sleep suspends the current scrape for d without blocking sibling
// scrapers; it returns early if ctx is cancelled.
func (b *Base) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// FetchWithRetry GETs url with browser-like headers, retrying up to
// MaxRetries times with a linearly increasing delay (attempt x base delay)
// between attempts. Exhaustion yields an error carrying the last cause and
// the URL.
func (b *Base) FetchWithRetry(ctx context.Context, url string) (string, error) {
	var lastErr error

	attempts := b.Cfg.MaxRetries
	if attempts < 1 {
		attempts = 1
	}

	for attempt := 1; attempt <= attempts; attempt++ {
		if b.Limiter != nil {
			if err := b.Limiter.WaitURL(ctx, url); err != nil {
				return "", err
			}
		}

		body, err := b.fetchOnce(ctx, url)
		if err == nil {
			return body, nil
		}
		lastErr = err
		log.Printf("[%s] fetch attempt %d/%d failed url=%s err=%v",
			b.Cfg.SourceName, attempt, attempts, url, err)

		if attempt < attempts {
			backoff := time.Duration(attempt) * b.Cfg.DelayBetweenRequests
			if err := b.Sleep(ctx, backoff); err != nil {
				return "", err
			}
		}
	}

	return "", fmt.Errorf("fetch failed after %d attempts (%s): %w", attempts, url, lastErr)
}

func (b *Base) fetchOnce(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", b.Cfg.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9,es;q=0.8")

	res, err := b.HC.Do(req)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return "", fmt.Errorf("status %d", res.StatusCode)
	}

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// Parse loads raw markup into a selector-queryable document.
func (b *Base) Parse(html string) (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(strings.NewReader(html))
}

// FetchAndParse composes FetchWithRetry and Parse.
func (b *Base) FetchAndParse(ctx context.Context, url string) (*goquery.Document, error) {
	html, err := b.FetchWithRetry(ctx, url)
	if err != nil {
		return nil, err
	}
	return b.Parse(html)
}

// ExtractText returns the cleaned text of the first match of selector under
// scope, or "" when nothing matches.
func (b *Base) ExtractText(scope *goquery.Selection, selector string) string {
	return util.CleanText(scope.Find(selector).First().Text())
}

// ExtractAttr returns the named attribute of the first match of selector
// under scope, or "" when nothing matches.
func (b *Base) ExtractAttr(scope *goquery.Selection, selector, attr string) string {
	v, _ := scope.Find(selector).First().Attr(attr)
	return strings.TrimSpace(v)
}

// CleanJobData normalizes free-text fields, drops empty tags, fills in a
// generated external ID when the source provided none, and stamps Source
// and a default PostedAt.
func (b *Base) CleanJobData(job domain.JobPosting) domain.JobPosting {
	job.Title = util.CleanText(job.Title)
	job.Company = util.CleanText(job.Company)
	job.Location = util.CleanText(job.Location)
	job.Description = util.CleanText(job.Description)
	job.ApplyLink = strings.TrimSpace(job.ApplyLink)

	var tags []string
	for _, t := range job.Tags {
		if t = util.CleanText(t); t != "" {
			tags = append(tags, t)
		}
	}
	job.Tags = tags

	if job.Source == "" {
		job.Source = b.Cfg.SourceName
	}
	if job.ExternalID == "" {
		job.ExternalID = b.GenerateExternalID(job)
	}
	if job.PostedAt.IsZero() {
		job.PostedAt = time.Now().UTC()
	}
	return job
}

// ValidateJobData reports whether the required fields survived cleaning.
// Missing fields are logged; a miss is an expected condition, not a bug.
func (b *Base) ValidateJobData(job domain.JobPosting) bool {
	var missing []string
	if job.Title == "" {
		missing = append(missing, "title")
	}
	if job.Company == "" {
		missing = append(missing, "company")
	}
	if job.Location == "" {
		missing = append(missing, "location")
	}
	if job.ApplyLink == "" {
		missing = append(missing, "applyLink")
	}
	if job.Source == "" {
		missing = append(missing, "source")
	}
	if len(missing) > 0 {
		log.Printf("[%s] invalid job, missing %s title=%q company=%q",
			b.Cfg.SourceName, strings.Join(missing, ","), job.Title, job.Company)
		return false
	}
	return true
}

// GenerateExternalID synthesizes a fallback dedup key:
// {source-slug}-{company-slug<=30}-{title-slug<=50}-{epoch-millis}.
// The timestamp suffix makes it non-deterministic across invocations, so
// listings without a stable source ID never dedupe against their own
// reappearance. Known limitation.
func (b *Base) GenerateExternalID(job domain.JobPosting) string {
	return fmt.Sprintf("%s-%s-%s-%d",
		util.Slugify(b.Cfg.SourceName),
		util.SlugifyMax(job.Company, 30),
		util.SlugifyMax(job.Title, 50),
		time.Now().UnixMilli(),
	)
}

// SaveJobs cleans, validates and upserts each job. Invalid jobs count as
// failed and never reach the store; upsert of an existing external ID
// counts as a duplicate; store errors count as failed and are recorded in
// the run's error list. Empty input touches nothing.
func (b *Base) SaveJobs(ctx context.Context, jobs []domain.JobPosting) domain.RunStats {
	var stats domain.RunStats
	if len(jobs) == 0 {
		return stats
	}
	stats.Total = len(jobs)

	for _, job := range jobs {
		cleaned := b.CleanJobData(job)
		if !b.ValidateJobData(cleaned) {
			stats.Failed++
			continue
		}

		inserted, err := b.Store.UpsertJob(ctx, cleaned)
		if err != nil {
			stats.Failed++
			b.AddError("save "+cleaned.ExternalID,
				fmt.Sprintf("upsert failed title=%q company=%q: %v", cleaned.Title, cleaned.Company, err))
			continue
		}
		if inserted {
			stats.Saved++
		} else {
			stats.Duplicates++
		}
	}

	log.Printf("[%s] save done saved=%d duplicates=%d failed=%d total=%d",
		b.Cfg.SourceName, stats.Saved, stats.Duplicates, stats.Failed, stats.Total)
	return stats
}
