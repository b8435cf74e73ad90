package main

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"net"
	"net/http"
	"time"

	"github.com/diegoamorenag/JobPersonilisePortal/internal/auth"
	"github.com/diegoamorenag/JobPersonilisePortal/internal/config"
	"github.com/diegoamorenag/JobPersonilisePortal/internal/scrape"
	"github.com/diegoamorenag/JobPersonilisePortal/internal/scrape/computrabajo"
	"github.com/diegoamorenag/JobPersonilisePortal/internal/scrape/linkedin"
	"github.com/diegoamorenag/JobPersonilisePortal/internal/scrape/types"
)

func newTokens(cfg config.Config) *auth.Tokens {
	return auth.NewTokens(cfg.Auth.JWTSecret, cfg.TokenTTL())
}

// scraperDefaults turns the scrape: block of the YAML config into the
// service-wide scraper defaults. delay_seconds: 0 is an explicit choice
// and kept as-is.
func scraperDefaults(cfg config.Config) types.Config {
	out := types.DefaultConfig()
	if cfg.Scrape.RequestTimeoutSeconds > 0 {
		out.RequestTimeout = time.Duration(cfg.Scrape.RequestTimeoutSeconds) * time.Second
	}
	if cfg.Scrape.MaxRetries > 0 {
		out.MaxRetries = cfg.Scrape.MaxRetries
	}
	out.DelayBetweenRequests = time.Duration(cfg.Scrape.DelaySeconds) * time.Second
	if cfg.Scrape.UserAgent != "" {
		out.UserAgent = cfg.Scrape.UserAgent
	}
	return out
}

func sourceSettings(cfg config.Config, name string) (config.SourceConfig, bool) {
	switch name {
	case linkedin.ScraperID:
		return cfg.Sources.LinkedIn, true
	case computrabajo.ScraperID:
		return cfg.Sources.Computrabajo, true
	}
	return config.SourceConfig{}, false
}

// pollRequests builds the scheduled run list: disabled sources are skipped
// and per-source max_pages is applied. Names without a sources: entry run
// unrestricted.
func pollRequests(cfg config.Config, available []string) []scrape.RunRequest {
	names := cfg.Polling.Scrapers
	if len(names) == 0 {
		names = available
	}
	reqs := make([]scrape.RunRequest, 0, len(names))
	for _, name := range names {
		opts := types.Options{
			Query:    cfg.Polling.Query,
			Location: cfg.Polling.Location,
		}
		if src, known := sourceSettings(cfg, name); known {
			if !src.Enabled {
				continue
			}
			opts.MaxPages = src.MaxPages
		}
		reqs = append(reqs, scrape.RunRequest{Name: name, Options: opts})
	}
	return reqs
}

func randomToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// shutdownHandler lets the desktop shell stop the engine cleanly: POST only,
// loopback only, and the caller must present the token written next to the db.
func shutdownHandler(token *string, srv *http.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			host = r.RemoteAddr
		}
		if host != "127.0.0.1" && host != "::1" && host != "localhost" {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		got := r.Header.Get("X-Shutdown-Token")
		if got == "" || subtle.ConstantTimeCompare([]byte(got), []byte(*token)) != 1 {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("shutting down\n"))

		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(ctx)
		}()
	}
}
