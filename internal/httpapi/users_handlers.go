package httpapi

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/diegoamorenag/JobPersonilisePortal/internal/store"
)

type UsersHandler struct {
	Users *store.UserStore
	Jobs  *store.JobStore
}

func (h UsersHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.Users.GetUserByID(r.Context(), UserIDFrom(r.Context()))
	if errors.Is(err, store.ErrUserNotFound) {
		WriteError(w, r, http.StatusUnauthorized, "unauthorized", "account no longer exists")
		return
	}
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "store_error", err.Error())
		return
	}
	writeJSON(w, user)
}

func (h UsersHandler) ListSavedJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.Users.ListSavedJobs(r.Context(), UserIDFrom(r.Context()))
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "store_error", err.Error())
		return
	}
	writeJSON(w, jobs)
}

type saveJobReq struct {
	JobID int64 `json:"jobId"`
}

func (h UsersHandler) SaveJob(w http.ResponseWriter, r *http.Request) {
	var req saveJobReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.JobID <= 0 {
		WriteError(w, r, http.StatusBadRequest, "invalid_json", "jobId is required")
		return
	}

	// Saving an unknown job is a client error, not a silent no-op.
	if _, err := h.Jobs.GetJob(r.Context(), req.JobID); errors.Is(err, sql.ErrNoRows) {
		WriteError(w, r, http.StatusNotFound, "not_found", "job not found")
		return
	} else if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "store_error", err.Error())
		return
	}

	if err := h.Users.SaveJob(r.Context(), UserIDFrom(r.Context()), req.JobID); err != nil {
		WriteError(w, r, http.StatusInternalServerError, "store_error", err.Error())
		return
	}
	WriteJSON(w, http.StatusCreated, map[string]any{"ok": true, "jobId": req.JobID})
}

func (h UsersHandler) UnsaveJobByPath(w http.ResponseWriter, r *http.Request) {
	idStr := strings.TrimPrefix(r.URL.Path, "/me/saved-jobs/")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		WriteError(w, r, http.StatusBadRequest, "invalid_id", "invalid job id")
		return
	}
	if err := h.Users.UnsaveJob(r.Context(), UserIDFrom(r.Context()), id); err != nil {
		WriteError(w, r, http.StatusInternalServerError, "store_error", err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h UsersHandler) GetPreferences(w http.ResponseWriter, r *http.Request) {
	prefs, err := h.Users.GetPreferences(r.Context(), UserIDFrom(r.Context()))
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "store_error", err.Error())
		return
	}
	writeJSON(w, prefs)
}

func (h UsersHandler) PutPreferences(w http.ResponseWriter, r *http.Request) {
	var prefs store.Preferences
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&prefs); err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	if err := h.Users.PutPreferences(r.Context(), UserIDFrom(r.Context()), prefs); err != nil {
		WriteError(w, r, http.StatusInternalServerError, "store_error", err.Error())
		return
	}
	writeJSON(w, prefs)
}
