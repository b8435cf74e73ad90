package httpapi

import "net/http"

// NewMux wires every handler; main() wraps the result with the middleware
// chain and owns the http.Server.
func NewMux(d Deps) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: HealthHandler{}.Health,
	}))

	// Jobs
	jh := JobsHandler{Jobs: d.Jobs, Hub: d.Hub}
	mux.HandleFunc("/jobs", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: jh.List,
	}))
	mux.HandleFunc("/jobs/", methodMux(map[string]http.HandlerFunc{
		http.MethodGet:    jh.GetByPath,    // /jobs/{id}
		http.MethodDelete: jh.DeleteByPath, // /jobs/{id}
	}))

	// Scrape runs
	sch := ScrapeHandler{Svc: d.Svc}
	mux.HandleFunc("/scrape/scrapers", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: sch.Scrapers,
	}))
	mux.HandleFunc("/scrape/run", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: sch.Run,
	}))
	mux.HandleFunc("/scrape/run-multiple", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: sch.RunMany,
	}))
	mux.HandleFunc("/scrape/active", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: sch.Active,
	}))
	mux.HandleFunc("/scrape/history", methodMux(map[string]http.HandlerFunc{
		http.MethodGet:    sch.History,
		http.MethodDelete: sch.ClearHistory,
	}))
	mux.HandleFunc("/scrape/stats", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: sch.Stats,
	}))

	// Aggregator
	ah := AggregatorHandler{Client: d.Aggregator}
	mux.HandleFunc("/aggregator/search", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: ah.Search,
	}))

	// Accounts
	acct := AuthHandler{Users: d.Users, Tokens: d.Tokens}
	mux.HandleFunc("/auth/register", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: acct.Register,
	}))
	mux.HandleFunc("/auth/login", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: acct.Login,
	}))

	uh := UsersHandler{Users: d.Users, Jobs: d.Jobs}
	authed := RequireAuth(d.Tokens)
	mux.Handle("/me", authed(methodMux(map[string]http.HandlerFunc{
		http.MethodGet: uh.Me,
	})))
	mux.Handle("/me/saved-jobs", authed(methodMux(map[string]http.HandlerFunc{
		http.MethodGet:  uh.ListSavedJobs,
		http.MethodPost: uh.SaveJob,
	})))
	mux.Handle("/me/saved-jobs/", authed(methodMux(map[string]http.HandlerFunc{
		http.MethodDelete: uh.UnsaveJobByPath, // /me/saved-jobs/{id}
	})))
	mux.Handle("/me/preferences", authed(methodMux(map[string]http.HandlerFunc{
		http.MethodGet: uh.GetPreferences,
		http.MethodPut: uh.PutPreferences,
	})))

	// Config
	ch := ConfigHandler{
		CfgVal:      d.CfgVal,
		UserCfgPath: d.UserCfgPath,
		LoadCfg:     d.LoadCfg,
	}
	mux.HandleFunc("/config", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Get,
		http.MethodPut: ch.Put,
	}))
	mux.HandleFunc("/config/path", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Path,
	}))
	mux.HandleFunc("/config/validate", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Validate,
	}))

	// Secrets
	sh := SecretsHandler{CfgVal: d.CfgVal}
	mux.HandleFunc("/secrets/imap", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: sh.SetIMAPPassword,
	}))
	mux.HandleFunc("/secrets/aggregator", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: sh.SetAggregatorKey,
	}))

	// SSE events
	eh := EventsHandler{Hub: d.Hub}
	mux.HandleFunc("/events", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: eh.ServeSSE,
	}))

	return mux
}
