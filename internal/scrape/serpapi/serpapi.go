// Package serpapi is the aggregator fetch path: a one-shot query against a
// Google-Jobs-style search aggregation endpoint. Unlike the site scrapers
// there is no retry, no backoff and no pagination; listings carry a stable
// job_id, so dedup is exact.
package serpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/diegoamorenag/JobPersonilisePortal/internal/domain"
	"github.com/diegoamorenag/JobPersonilisePortal/internal/scrape/base"
	"github.com/diegoamorenag/JobPersonilisePortal/internal/scrape/util"
)

const (
	sourceName      = "Google Jobs"
	defaultEndpoint = "https://serpapi.com/search"
	httpTimeout     = 20 * time.Second
)

type Client struct {
	Endpoint string
	APIKey   string
	Store    base.JobStore
	hc       *http.Client
}

func New(endpoint, apiKey string, store base.JobStore) *Client {
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	return &Client{
		Endpoint: endpoint,
		APIKey:   apiKey,
		Store:    store,
		hc:       &http.Client{Timeout: httpTimeout},
	}
}

type searchResponse struct {
	JobsResults []jobResult `json:"jobs_results"`
}

type jobResult struct {
	Title        string   `json:"title"`
	CompanyName  string   `json:"company_name"`
	Location     string   `json:"location"`
	Description  string   `json:"description"`
	Via          string   `json:"via"`
	ShareLink    string   `json:"share_link"`
	JobID        string   `json:"job_id"`
	Extensions   []string `json:"extensions"`
	RelatedLinks []struct {
		Link string `json:"link"`
	} `json:"related_links"`
	DetectedExtensions struct {
		PostedAt string `json:"posted_at"`
	} `json:"detected_extensions"`
}

// Fetch runs one aggregator query and returns the normalized postings.
func (c *Client) Fetch(ctx context.Context, query, location string) ([]domain.JobPosting, error) {
	if c.APIKey == "" {
		return nil, fmt.Errorf("aggregator api key not configured")
	}

	params := url.Values{}
	params.Set("engine", "google_jobs")
	params.Set("q", query)
	if location != "" {
		params.Set("location", location)
	}
	params.Set("api_key", c.APIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.Endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("aggregator get: %w", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("aggregator status %d: %s", res.StatusCode, string(body))
	}

	var sr searchResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		return nil, fmt.Errorf("aggregator decode: %w", err)
	}

	now := time.Now().UTC()
	jobs := make([]domain.JobPosting, 0, len(sr.JobsResults))
	for _, r := range sr.JobsResults {
		jobs = append(jobs, normalize(r, now))
	}
	return jobs, nil
}

// Run fetches once and upserts everything with a stable job_id-derived
// external ID. Listings without a job_id are skipped: without a stable key
// the aggregator path would mint duplicates on every poll.
func (c *Client) Run(ctx context.Context, query, location string) (domain.RunStats, error) {
	var stats domain.RunStats

	jobs, err := c.Fetch(ctx, query, location)
	if err != nil {
		return stats, err
	}
	stats.Total = len(jobs)

	for _, job := range jobs {
		if job.ExternalID == "" {
			stats.Failed++
			continue
		}
		inserted, err := c.Store.UpsertJob(ctx, job)
		if err != nil {
			stats.Failed++
			log.Printf("[aggregator] upsert failed id=%s err=%v", job.ExternalID, err)
			continue
		}
		if inserted {
			stats.Saved++
		} else {
			stats.Duplicates++
		}
	}

	log.Printf("[aggregator] query=%q saved=%d duplicates=%d failed=%d total=%d",
		query, stats.Saved, stats.Duplicates, stats.Failed, stats.Total)
	return stats, nil
}

func normalize(r jobResult, now time.Time) domain.JobPosting {
	applyLink := r.ShareLink
	if applyLink == "" && len(r.RelatedLinks) > 0 {
		applyLink = r.RelatedLinks[0].Link
	}

	var tags []string
	for _, e := range r.Extensions {
		if e = util.CleanText(e); e != "" {
			tags = append(tags, e)
		}
	}

	externalID := ""
	if r.JobID != "" {
		externalID = util.Slugify(sourceName) + "-" + r.JobID
	}

	desc := util.CleanText(r.Description)
	if via := util.CleanText(r.Via); via != "" {
		tags = append(tags, via)
	}

	return domain.JobPosting{
		Title:       util.CleanText(r.Title),
		Company:     util.CleanText(r.CompanyName),
		Location:    util.CleanText(r.Location),
		Description: desc,
		Tags:        tags,
		ExternalID:  externalID,
		Source:      sourceName,
		ApplyLink:   applyLink,
		PostedAt:    util.ParseRelativeDate(r.DetectedExtensions.PostedAt, now),
	}
}
