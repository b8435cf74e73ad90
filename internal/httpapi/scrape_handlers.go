package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/diegoamorenag/JobPersonilisePortal/internal/scrape"
	"github.com/diegoamorenag/JobPersonilisePortal/internal/scrape/types"
)

type ScrapeHandler struct {
	Svc *scrape.Service
}

type runReq struct {
	Scraper string       `json:"scraper"`
	Config  types.Config `json:"config"`
	types.Options
}

func (h ScrapeHandler) Run(w http.ResponseWriter, r *http.Request) {
	var req runReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	if strings.TrimSpace(req.Scraper) == "" {
		WriteError(w, r, http.StatusBadRequest, "missing_scraper", "scraper name is required")
		return
	}

	res, err := h.Svc.RunScraper(r.Context(), req.Scraper, req.Options, req.Config)
	if err != nil {
		if res == nil {
			WriteError(w, r, http.StatusNotFound, "unknown_scraper", err.Error())
			return
		}
		// Partial results from a failed run still go back to the caller.
		WriteJSON(w, http.StatusBadGateway, map[string]any{
			"ok": false, "error": err.Error(), "result": res,
		})
		return
	}
	writeJSON(w, map[string]any{"ok": true, "result": res})
}

type runManyReq struct {
	Requests []scrape.RunRequest `json:"requests"`
	Parallel bool                `json:"parallel"`
}

func (h ScrapeHandler) RunMany(w http.ResponseWriter, r *http.Request) {
	var req runManyReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	if len(req.Requests) == 0 {
		WriteError(w, r, http.StatusBadRequest, "missing_requests", "requests must not be empty")
		return
	}
	writeJSON(w, h.Svc.RunMany(r.Context(), req.Requests, req.Parallel))
}

func (h ScrapeHandler) Scrapers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.Svc.Scrapers())
}

func (h ScrapeHandler) Active(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.Svc.ActiveRuns())
}

func (h ScrapeHandler) History(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	writeJSON(w, h.Svc.History(limit))
}

func (h ScrapeHandler) ClearHistory(w http.ResponseWriter, r *http.Request) {
	h.Svc.ClearHistory()
	w.WriteHeader(http.StatusNoContent)
}

func (h ScrapeHandler) Stats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.Svc.Stats())
}
