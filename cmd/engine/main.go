package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gofrs/flock"

	"github.com/diegoamorenag/JobPersonilisePortal/internal/config"
	"github.com/diegoamorenag/JobPersonilisePortal/internal/events"
	"github.com/diegoamorenag/JobPersonilisePortal/internal/httpapi"
	"github.com/diegoamorenag/JobPersonilisePortal/internal/scheduler"
	"github.com/diegoamorenag/JobPersonilisePortal/internal/scrape"
	"github.com/diegoamorenag/JobPersonilisePortal/internal/scrape/email"
	"github.com/diegoamorenag/JobPersonilisePortal/internal/scrape/serpapi"
	"github.com/diegoamorenag/JobPersonilisePortal/internal/secrets"
	"github.com/diegoamorenag/JobPersonilisePortal/internal/store"
)

func main() {
	dataDir := os.Getenv("ENGINE_DATA_DIR")
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		log.Fatal(err)
	}

	// One engine per data dir; a second instance would fight over sqlite.
	lock := flock.New(filepath.Join(dataDir, "engine.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		log.Fatalf("data dir lock: %v", err)
	}
	if !locked {
		log.Fatalf("another engine instance is already running in %s", dataDir)
	}
	defer lock.Unlock()

	defaultCfgPath := filepath.Join("config", "config.yml")
	userCfgPath, err := config.EnsureUserConfig(dataDir, defaultCfgPath)
	if err != nil {
		log.Fatalf("config bootstrap failed: %v", err)
	}

	var cfgVal atomic.Value // stores config.Config
	loadCfg := func() (config.Config, error) {
		cfg, err := config.Load(userCfgPath)
		if err != nil {
			return cfg, err
		}
		config.OverlayEnv(&cfg)
		normalized, vr := config.NormalizeAndValidate(cfg)
		for _, warning := range vr.Warnings {
			log.Printf("[config] warning: %s", warning)
		}
		if !vr.OK() {
			return cfg, fmt.Errorf("config invalid: %v", vr.Errors)
		}
		return normalized, nil
	}
	cfg, err := loadCfg()
	if err != nil {
		log.Fatalf("config load failed (%s): %v", userCfgPath, err)
	}
	cfgVal.Store(cfg)

	dbPath := filepath.Join(dataDir, "jobportal.db")
	db, err := store.Open(dbPath)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()
	if err := store.Migrate(db); err != nil {
		log.Fatal(err)
	}

	jobs := &store.JobStore{DB: db}
	users := &store.UserStore{DB: db}
	hub := events.NewHub()

	reg := scrape.DefaultRegistry(jobs)
	svc := scrape.NewService(reg, scrape.NewRunHistory(scrape.DefaultHistoryCap), hub)
	svc.Defaults = scraperDefaults(cfg)

	var aggregator *serpapi.Client
	if cfg.Sources.GoogleJobs.Enabled {
		key, err := secrets.GetAggregatorAPIKey()
		if err != nil {
			log.Printf("[main] aggregator disabled: %v", err)
		} else {
			aggregator = serpapi.New(cfg.Sources.GoogleJobs.Endpoint, key, jobs)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Polling.Enabled {
		reqs := pollRequests(cfg, reg.Available())
		go scheduler.Every(ctx, cfg.PollInterval(), "poll", func(ctx context.Context) error {
			for _, out := range svc.RunMany(ctx, reqs, false) {
				if out.Error != "" {
					log.Printf("[poll] %s: %s", out.Name, out.Error)
				}
			}
			return nil
		})
	}

	if cfg.Email.Enabled {
		pw, err := secrets.GetIMAPPassword(secrets.IMAPKeyringAccount(cfg))
		if err != nil {
			log.Printf("[main] email ingestion disabled: %v", err)
		} else {
			ing := email.NewIngestor(email.Config{
				Addr:     fmt.Sprintf("%s:%d", cfg.Email.IMAPHost, cfg.Email.IMAPPort),
				Username: cfg.Email.Username,
				Password: pw,
				Mailbox:  cfg.Email.Mailbox,
			}, jobs)
			go scheduler.Every(ctx, cfg.EmailPollInterval(), "email", func(ctx context.Context) error {
				stats, err := ing.RunOnce(ctx)
				if err != nil {
					return err
				}
				if stats.Saved > 0 {
					hub.Publish(events.Make("job_created", stats))
				}
				return nil
			})
		}
	}

	mux := httpapi.NewMux(httpapi.Deps{
		Jobs:        jobs,
		Users:       users,
		Svc:         svc,
		Hub:         hub,
		Tokens:      newTokens(cfg),
		Aggregator:  aggregator,
		CfgVal:      &cfgVal,
		UserCfgPath: userCfgPath,
		LoadCfg:     loadCfg,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf("127.0.0.1:%d", cfg.App.Port),
		ReadHeaderTimeout: 5 * time.Second,
	}

	token, err := randomToken(16)
	if err != nil {
		log.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dataDir, "engine.token"), []byte(token), 0o600); err != nil {
		log.Fatal(err)
	}
	mux.HandleFunc("/shutdown", shutdownHandler(&token, srv))

	srv.Handler = httpapi.Chain(mux,
		httpapi.RequestID,
		httpapi.Recover,
		httpapi.Cors,
		httpapi.AccessLog,
	)

	serveErr := make(chan error, 1)
	go func() {
		log.Printf("engine listening on http://%s (db=%s)", srv.Addr, dbPath)
		serveErr <- srv.ListenAndServe()
	}()

	// Exit on SIGINT/SIGTERM or when the /shutdown handler closes the server;
	// either way the deferred lock release and db close must run.
	select {
	case <-ctx.Done():
		log.Printf("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	case err := <-serveErr:
		if err != nil && err != http.ErrServerClosed {
			log.Fatal(err)
		}
		log.Printf("server closed, shutting down")
	}
}
