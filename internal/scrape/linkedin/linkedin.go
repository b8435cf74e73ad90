// Package linkedin scrapes the LinkedIn guest job search. Pagination is
// offset-based: the start parameter advances 25 results per page.
package linkedin

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/diegoamorenag/JobPersonilisePortal/internal/domain"
	"github.com/diegoamorenag/JobPersonilisePortal/internal/scrape/base"
	"github.com/diegoamorenag/JobPersonilisePortal/internal/scrape/types"
	"github.com/diegoamorenag/JobPersonilisePortal/internal/scrape/util"
)

const (
	ScraperID   = "linkedin"
	sourceName  = "LinkedIn Jobs"
	baseURL     = "https://www.linkedin.com"
	pageSize    = 25
	cardSel     = "div.base-search-card, div.job-search-card"
	titleSel    = "h3.base-search-card__title"
	companySel  = "h4.base-search-card__subtitle a"
	company2Sel = "h4.base-search-card__subtitle"
	locationSel = "span.job-search-card__location"
	linkSel     = "a.base-card__full-link"
	dateSel     = "time"
	salarySel   = "span.job-search-card__salary-info"
	benefitSel  = "span.result-benefits__text"
)

var (
	reJobID = regexp.MustCompile(`/jobs/view/(?:[^/?#]*-)?(\d+)`)
	reURN   = regexp.MustCompile(`urn:li:jobPosting:(\d+)`)

	// listing boilerplate that leaks into card text
	boilerplate = []string{
		"Be among the first 25 applicants",
		"Actively Hiring",
		"See who LinkedIn Jobs has hired for this role",
	}
)

type Scraper struct {
	*base.Base
}

func New(cfg types.Config, store base.JobStore, limiter *util.HostLimiter) *Scraper {
	if cfg.BaseURL == "" {
		cfg.BaseURL = baseURL
	}
	if cfg.SourceName == "" {
		cfg.SourceName = sourceName
	}
	return &Scraper{Base: base.New(cfg, store, limiter)}
}

func (s *Scraper) Name() string { return ScraperID }

func (s *Scraper) Info() types.Info {
	return types.Info{ID: ScraperID, DisplayName: s.Cfg.SourceName, BaseURL: s.Cfg.BaseURL}
}

// Scrape walks result pages until MaxPages or an empty page, then persists
// everything collected. A fatal fetch error returns the partial job list
// unpersisted with zeroed stats.
func (s *Scraper) Scrape(ctx context.Context, opts types.Options) (*types.Result, error) {
	s.Reset()
	if opts.MaxPages <= 0 {
		opts.MaxPages = 1
	}

	for page := 0; page < opts.MaxPages; page++ {
		pageURL := s.buildSearchURL(opts, page)

		doc, err := s.FetchAndParse(ctx, pageURL)
		if err != nil {
			s.AddError(fmt.Sprintf("page %d", page+1), err.Error())
			return &types.Result{Success: false, Jobs: s.Jobs(), Errors: s.Errors()}, err
		}

		pageJobs := s.extractJobsFromPage(doc)
		if len(pageJobs) == 0 {
			break // end of results
		}
		s.AppendJobs(pageJobs...)

		if page < opts.MaxPages-1 {
			if err := s.Sleep(ctx, s.Cfg.DelayBetweenRequests); err != nil {
				s.AddError(fmt.Sprintf("page %d", page+1), err.Error())
				return &types.Result{Success: false, Jobs: s.Jobs(), Errors: s.Errors()}, err
			}
		}
	}

	stats := s.SaveJobs(ctx, s.Jobs())
	return &types.Result{Success: true, Jobs: s.Jobs(), Stats: stats, Errors: s.Errors()}, nil
}

func (s *Scraper) buildSearchURL(opts types.Options, page int) string {
	q := url.Values{}
	q.Set("keywords", opts.Query)
	if opts.Location != "" {
		q.Set("location", opts.Location)
	}
	if page > 0 {
		q.Set("start", strconv.Itoa(page*pageSize))
	}
	return s.Cfg.BaseURL + "/jobs/search/?" + q.Encode()
}

func (s *Scraper) extractJobsFromPage(doc *goquery.Document) []domain.JobPosting {
	var jobs []domain.JobPosting

	doc.Find(cardSel).Each(func(i int, card *goquery.Selection) {
		job, err := s.extractJobData(card)
		if err != nil {
			s.AddError(fmt.Sprintf("card %d", i), err.Error())
			return
		}
		if job.Title == "" || job.Company == "" {
			return
		}
		jobs = append(jobs, job)
	})

	return jobs
}

func (s *Scraper) extractJobData(card *goquery.Selection) (domain.JobPosting, error) {
	var job domain.JobPosting

	job.Title = s.ExtractText(card, titleSel)
	job.Company = s.ExtractText(card, companySel)
	if job.Company == "" {
		job.Company = s.ExtractText(card, company2Sel)
	}
	job.Location = s.ExtractText(card, locationSel)

	href := s.ExtractAttr(card, linkSel, "href")
	if href == "" {
		return job, fmt.Errorf("card has no apply link title=%q", job.Title)
	}
	job.ApplyLink = util.ResolveURL(s.Cfg.BaseURL, href)

	job.ExternalID = s.externalIDFrom(card, job.ApplyLink)
	job.PostedAt = s.postedAtFrom(card)
	job.Tags = s.tagsFrom(card)
	job.Description = stripBoilerplate(s.ExtractText(card, "p.base-search-card__metadata"))
	job.Source = s.Cfg.SourceName

	return job, nil
}

// externalIDFrom prefers the numeric listing ID embedded in the view URL,
// then the jobPosting URN; an empty return falls through to the generic
// generator during cleaning.
func (s *Scraper) externalIDFrom(card *goquery.Selection, applyLink string) string {
	if m := reJobID.FindStringSubmatch(applyLink); m != nil {
		return util.Slugify(s.Cfg.SourceName) + "-" + m[1]
	}
	if urn, ok := card.Attr("data-entity-urn"); ok {
		if m := reURN.FindStringSubmatch(urn); m != nil {
			return util.Slugify(s.Cfg.SourceName) + "-" + m[1]
		}
	}
	return ""
}

func (s *Scraper) postedAtFrom(card *goquery.Selection) time.Time {
	now := time.Now().UTC()
	t := card.Find(dateSel).First()
	if dt, ok := t.Attr("datetime"); ok {
		if parsed, err := time.Parse("2006-01-02", strings.TrimSpace(dt)); err == nil {
			return parsed
		}
	}
	return util.ParseRelativeDate(t.Text(), now)
}

func (s *Scraper) tagsFrom(card *goquery.Selection) []string {
	var tags []string
	for _, sel := range []string{salarySel, benefitSel} {
		card.Find(sel).Each(func(_ int, el *goquery.Selection) {
			if t := util.CleanText(el.Text()); t != "" {
				tags = append(tags, t)
			}
		})
	}
	return tags
}

func stripBoilerplate(desc string) string {
	for _, phrase := range boilerplate {
		desc = strings.ReplaceAll(desc, phrase, "")
	}
	return util.CleanText(desc)
}
