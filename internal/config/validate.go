package config

import (
	"fmt"
	"strings"
)

type Validation struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (v *Validation) addErr(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}
func (v *Validation) addWarn(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}
func (v Validation) OK() bool { return len(v.Errors) == 0 }

// NormalizeAndValidate fills defaults, trims list fields and returns the
// normalized copy plus everything worth telling the operator about.
func NormalizeAndValidate(cfg Config) (Config, Validation) {
	var out = cfg
	var res Validation

	trimList := func(xs []string) []string {
		seen := map[string]bool{}
		var ys []string
		for _, x := range xs {
			x = strings.TrimSpace(x)
			if x == "" {
				continue
			}
			key := strings.ToLower(x)
			if seen[key] {
				continue
			}
			seen[key] = true
			ys = append(ys, x)
		}
		return ys
	}

	out.Polling.Scrapers = trimList(out.Polling.Scrapers)

	if out.App.Port <= 0 || out.App.Port > 65535 {
		res.addErr("app.port must be 1..65535")
	}

	if out.Scrape.RequestTimeoutSeconds < 0 {
		res.addErr("scrape.request_timeout_seconds must be >= 0")
	}
	if out.Scrape.MaxRetries < 0 {
		res.addErr("scrape.max_retries must be >= 0")
	}
	if out.Scrape.DelaySeconds == 0 {
		res.addWarn("scrape.delay_seconds is 0; sites may rate limit or block.")
	} else if out.Scrape.DelaySeconds < 0 {
		res.addErr("scrape.delay_seconds must be >= 0")
	}

	if out.Polling.Enabled {
		if out.Polling.IntervalSeconds <= 0 {
			res.addErr("polling.interval_seconds must be > 0 when polling.enabled=true")
		} else if out.Polling.IntervalSeconds < 60 {
			res.addWarn("polling.interval_seconds is very low (%d) and may cause rate limits.", out.Polling.IntervalSeconds)
		}
		if strings.TrimSpace(out.Polling.Query) == "" {
			res.addWarn("polling.query is empty; scheduled runs will search with no keywords.")
		}
		if len(out.Polling.Scrapers) == 0 {
			res.addWarn("polling.scrapers is empty; all enabled sources will be polled.")
		}
	}

	if !out.Sources.LinkedIn.Enabled && !out.Sources.Computrabajo.Enabled &&
		!out.Sources.GoogleJobs.Enabled && !out.Email.Enabled {
		res.addWarn("no sources enabled; the engine will only serve stored data.")
	}

	if out.Sources.GoogleJobs.Enabled && strings.TrimSpace(out.Sources.GoogleJobs.Country) == "" {
		res.addWarn("sources.google_jobs.country is empty; results will not be localized.")
	}

	// The IMAP password lives in the OS keychain, not in this file.
	if out.Email.Enabled {
		if strings.TrimSpace(out.Email.IMAPHost) == "" {
			res.addErr("email.imap_host is required when email.enabled=true")
		}
		if out.Email.IMAPPort == 0 {
			res.addErr("email.imap_port is required when email.enabled=true")
		}
		if strings.TrimSpace(out.Email.Username) == "" {
			res.addErr("email.username is required when email.enabled=true")
		}
		if strings.TrimSpace(out.Email.Mailbox) == "" {
			res.addErr("email.mailbox is required when email.enabled=true")
		}
		if out.Polling.EmailSeconds <= 0 {
			res.addErr("polling.email_seconds must be > 0 when email.enabled=true")
		}
	}

	if strings.TrimSpace(out.Auth.JWTSecret) == "" {
		res.addWarn("auth.jwt_secret is empty; user accounts are disabled until one is set.")
	} else if len(out.Auth.JWTSecret) < 16 {
		res.addWarn("auth.jwt_secret is short (%d chars); use at least 16.", len(out.Auth.JWTSecret))
	}

	return out, res
}
