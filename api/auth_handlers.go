package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/salapa/vaultd/vault"
)

// RegisterAdmin handles POST /auth/register. Only the very first account can
// be created this way; it becomes the ADMIN.
func (a *API) RegisterAdmin(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeJSON[RegisterRequest](w, r)
	if !ok {
		return
	}

	userID, err := a.svc.RegisterAdmin(r.Context(), vault.RegisterAdminInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Pin:      req.Pin,
	})
	if err != nil {
		a.mapError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, RegisterResponse{UserID: userID})
}

// Login handles POST /auth/login.
func (a *API) Login(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeJSON[LoginRequest](w, r)
	if !ok {
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	// Backoff is keyed on the address and the source IP, checked before any
	// bcrypt work.
	accountKey := strings.ToLower(strings.TrimSpace(req.Email))
	clientIP := extractClientIP(r)
	if blocked, retryAfter := a.rateLimiter.check(accountKey, clientIP); blocked {
		writeRateLimited(w, retryAfter)
		return
	}

	token, user, err := a.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		a.rateLimiter.recordFailure(accountKey, clientIP)
		a.mapError(w, r, err)
		return
	}
	a.rateLimiter.recordSuccess(accountKey, clientIP)

	writeSessionCookie(w, r, token, time.Now().Add(vault.SessionTokenTTL))
	writeJSON(w, http.StatusOK, LoginResponse{
		UserID:   user.ID,
		Username: user.Username,
		Email:    user.Email,
	})
}

// Logout handles POST /auth/logout. Sessions are stateless tokens, so logout
// is a client-side cookie clear; tokens issued earlier stay valid until they
// expire or the credentials change.
func (a *API) Logout(w http.ResponseWriter, r *http.Request) {
	clearSessionCookie(w, r)
	w.WriteHeader(http.StatusNoContent)
}

// Activate handles POST /auth/activate, turning an invitation token into a
// registered account.
func (a *API) Activate(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeJSON[ActivateRequest](w, r)
	if !ok {
		return
	}

	userID, err := a.svc.Activate(r.Context(), req.Token, req.Password, req.Pin)
	if err != nil {
		a.mapError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, ActivateResponse{UserID: userID})
}

// ChangeCredentials handles POST /auth/change-credentials. The session that
// performed the change dies with every other one; the client must log in
// again.
func (a *API) ChangeCredentials(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeJSON[ChangeCredentialsRequest](w, r)
	if !ok {
		return
	}
	user := userFromContext(r.Context())

	err := a.svc.ChangeCredentials(r.Context(), user.ID, vault.ChangeCredentialsInput{
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
		NewPin:          req.NewPin,
	})
	if err != nil {
		a.mapError(w, r, err)
		return
	}
	clearSessionCookie(w, r)
	w.WriteHeader(http.StatusNoContent)
}

// ForgotAdminPassword handles POST /auth/forgot-admin-password, the
// short-lived reset variant reserved for the administrator account.
func (a *API) ForgotAdminPassword(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeJSON[EmailRequest](w, r)
	if !ok {
		return
	}
	if err := a.svc.RequestAdminPasswordReset(r.Context(), req.Email); err != nil {
		a.mapError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}
