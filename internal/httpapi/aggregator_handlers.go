package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/diegoamorenag/JobPersonilisePortal/internal/scrape/serpapi"
)

type AggregatorHandler struct {
	Client *serpapi.Client
}

type aggregatorSearchReq struct {
	Query    string `json:"query"`
	Location string `json:"location"`
}

// Search runs one aggregator query and persists everything it returns.
func (h AggregatorHandler) Search(w http.ResponseWriter, r *http.Request) {
	if h.Client == nil {
		WriteError(w, r, http.StatusServiceUnavailable, "aggregator_disabled", "aggregator source is not configured")
		return
	}

	var req aggregatorSearchReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		WriteError(w, r, http.StatusBadRequest, "missing_query", "query is required")
		return
	}

	stats, err := h.Client.Run(r.Context(), req.Query, req.Location)
	if err != nil {
		WriteError(w, r, http.StatusBadGateway, "aggregator_error", err.Error())
		return
	}
	writeJSON(w, map[string]any{"ok": true, "stats": stats})
}
