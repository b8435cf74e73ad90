// Package computrabajo scrapes the Computrabajo job board (Spanish-language
// listings, page-number pagination via ?p=N).
package computrabajo

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/diegoamorenag/JobPersonilisePortal/internal/domain"
	"github.com/diegoamorenag/JobPersonilisePortal/internal/scrape/base"
	"github.com/diegoamorenag/JobPersonilisePortal/internal/scrape/types"
	"github.com/diegoamorenag/JobPersonilisePortal/internal/scrape/util"
)

const (
	ScraperID   = "computrabajo"
	sourceName  = "Computrabajo"
	baseURL     = "https://co.computrabajo.com"
	cardSel     = "article.box_offer"
	titleSel    = "h2 a.js-o-link"
	title2Sel   = "h2 a"
	companySel  = "p a.fc_base"
	locationSel = "p span.mr10"
	dateSel     = "p.fs13"
	tagSel      = "span.tag"
)

// offer URLs end with a long hex token that identifies the listing
var reOfferToken = regexp.MustCompile(`([0-9A-Fa-f]{20,})\b`)

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

func (s *Scraper) Scrape(ctx context.Context, opts types.Options) (*types.Result, error) {
	s.Reset()
	if opts.MaxPages <= 0 {
		opts.MaxPages = 1
	}

	for page := 1; page <= opts.MaxPages; page++ {
		pageURL := s.buildSearchURL(opts, page)

		doc, err := s.FetchAndParse(ctx, pageURL)
		if err != nil {
			s.AddError(fmt.Sprintf("page %d", page), err.Error())
			return &types.Result{Success: false, Jobs: s.Jobs(), Errors: s.Errors()}, err
		}

		pageJobs := s.extractJobsFromPage(doc)
		if len(pageJobs) == 0 {
			break
		}
		s.AppendJobs(pageJobs...)

		if page < opts.MaxPages {
			if err := s.Sleep(ctx, s.Cfg.DelayBetweenRequests); err != nil {
				s.AddError(fmt.Sprintf("page %d", page), err.Error())
				return &types.Result{Success: false, Jobs: s.Jobs(), Errors: s.Errors()}, err
			}
		}
	}

	stats := s.SaveJobs(ctx, s.Jobs())
	return &types.Result{Success: true, Jobs: s.Jobs(), Stats: stats, Errors: s.Errors()}, nil
}

// buildSearchUrl follows the board's slug scheme:
// /trabajo-de-{query}[-en-{location}]?p=N
func (s *Scraper) buildSearchURL(opts types.Options, page int) string {
	path := "/trabajo-de-" + util.Slugify(opts.Query)
	if opts.Location != "" {
		path += "-en-" + util.Slugify(opts.Location)
	}
	if page > 1 {
		path += fmt.Sprintf("?p=%d", page)
	}
	return s.Cfg.BaseURL + path
}

func (s *Scraper) extractJobsFromPage(doc *goquery.Document) []domain.JobPosting {
	var jobs []domain.JobPosting

	doc.Find(cardSel).Each(func(i int, card *goquery.Selection) {
		job, err := s.extractJobData(card)
		if err != nil {
			s.AddError(fmt.Sprintf("oferta %d", i), err.Error())
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
	href := s.ExtractAttr(card, titleSel, "href")
	if job.Title == "" {
		job.Title = s.ExtractText(card, title2Sel)
		href = s.ExtractAttr(card, title2Sel, "href")
	}
	if href == "" {
		return job, fmt.Errorf("oferta has no link title=%q", job.Title)
	}
	job.ApplyLink = util.ResolveURL(s.Cfg.BaseURL, href)

	job.Company = s.ExtractText(card, companySel)
	job.Location = s.ExtractText(card, locationSel)
	job.PostedAt = util.ParseRelativeDate(s.ExtractText(card, dateSel), time.Now().UTC())
	job.Source = s.Cfg.SourceName

	card.Find(tagSel).Each(func(_ int, el *goquery.Selection) {
		if t := util.CleanText(el.Text()); t != "" {
			job.Tags = append(job.Tags, t)
		}
	})

	if m := reOfferToken.FindStringSubmatch(job.ApplyLink); m != nil {
		job.ExternalID = util.Slugify(s.Cfg.SourceName) + "-" + m[1]
	}

	return job, nil
}
