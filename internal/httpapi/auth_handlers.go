package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/diegoamorenag/JobPersonilisePortal/internal/auth"
	"github.com/diegoamorenag/JobPersonilisePortal/internal/store"
)

type AuthHandler struct {
	Users  *store.UserStore
	Tokens *auth.Tokens
}

type credentialsReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResp struct {
	Token string     `json:"token"`
	User  store.User `json:"user"`
}

func (h AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeCredentials(w, r)
	if !ok {
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		WriteError(w, r, http.StatusBadRequest, "weak_password", err.Error())
		return
	}

	user, err := h.Users.CreateUser(r.Context(), uuid.NewString(), req.Email, hash)
	if errors.Is(err, store.ErrUserExists) {
		WriteError(w, r, http.StatusConflict, "email_taken", "an account with this email already exists")
		return
	}
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "store_error", err.Error())
		return
	}

	token, err := h.Tokens.Issue(user.ID)
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "token_error", err.Error())
		return
	}
	WriteJSON(w, http.StatusCreated, authResp{Token: token, User: user})
}

func (h AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeCredentials(w, r)
	if !ok {
		return
	}

	user, err := h.Users.GetUserByEmail(r.Context(), req.Email)
	if errors.Is(err, store.ErrUserNotFound) || (err == nil && !auth.VerifyPassword(req.Password, user.PasswordHash)) {
		WriteError(w, r, http.StatusUnauthorized, "bad_credentials", "email or password is incorrect")
		return
	}
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "store_error", err.Error())
		return
	}

	token, err := h.Tokens.Issue(user.ID)
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "token_error", err.Error())
		return
	}
	writeJSON(w, authResp{Token: token, User: user})
}

func (h AuthHandler) decodeCredentials(w http.ResponseWriter, r *http.Request) (credentialsReq, bool) {
	if !h.Tokens.Enabled() {
		WriteError(w, r, http.StatusServiceUnavailable, "auth_disabled", "user accounts are disabled: no jwt secret configured")
		return credentialsReq{}, false
	}
	var req credentialsReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_json", err.Error())
		return req, false
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		WriteError(w, r, http.StatusBadRequest, "invalid_email", "a valid email is required")
		return req, false
	}
	if req.Password == "" {
		WriteError(w, r, http.StatusBadRequest, "missing_password", "password is required")
		return req, false
	}
	return req, true
}
