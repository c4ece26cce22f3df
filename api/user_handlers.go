package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/salapa/vaultd/vault"
)

// ListUsers handles GET /users, paginated, admin only.
func (a *API) ListUsers(w http.ResponseWriter, r *http.Request) {
	accounts, err := a.svc.ListUsers(r.Context())
	if err != nil {
		a.mapError(w, r, err)
		return
	}

	limit, offset := parsePagination(r)
	start, end, meta := paginateSlice(len(accounts), limit, offset)

	out := make([]UserSummary, 0, end-start)
	for _, account := range accounts[start:end] {
		out = append(out, UserSummary{
			UserID:    account.ID,
			Username:  account.Username,
			Email:     account.Email,
			Role:      account.RoleID,
			CreatedAt: account.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, ListUsersResponse{Users: out, Pagination: meta})
}

// ListTemporaryUsers handles GET /users/temporary, admin only.
func (a *API) ListTemporaryUsers(w http.ResponseWriter, r *http.Request) {
	temps, err := a.svc.ListTemporaryUsers(r.Context())
	if err != nil {
		a.mapError(w, r, err)
		return
	}

	limit, offset := parsePagination(r)
	start, end, meta := paginateSlice(len(temps), limit, offset)

	out := make([]TemporaryUserSummary, 0, end-start)
	for _, t := range temps[start:end] {
		out = append(out, TemporaryUserSummary{
			TempID:         t.ID,
			Username:       t.Username,
			Email:          t.Email,
			Role:           t.RoleID,
			TokenExpiresAt: t.TokenExpiresAt,
			CreatedAt:      t.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, ListTemporaryUsersResponse{Users: out, Pagination: meta})
}

// CreateTemporaryUser handles POST /users/temporary, admin only.
func (a *API) CreateTemporaryUser(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeJSON[CreateTemporaryUserRequest](w, r)
	if !ok {
		return
	}

	tempID, err := a.svc.CreateTemporaryUser(r.Context(), vault.CreateTemporaryUserInput{
		Username:     req.Username,
		Email:        req.Email,
		TempPassword: req.Password,
		TempPin:      req.Pin,
		RoleID:       req.Role,
	})
	if err != nil {
		a.mapError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, CreateTemporaryUserResponse{TempID: tempID})
}

// DeleteTemporaryUser handles DELETE /users/temporary/{tempID}, admin only.
func (a *API) DeleteTemporaryUser(w http.ResponseWriter, r *http.Request) {
	tempID := chi.URLParam(r, "tempID")
	if err := a.svc.DeleteTemporaryUser(r.Context(), tempID); err != nil {
		a.mapError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetUserByEmail handles GET /users/by-email?email=..., admin only.
func (a *API) GetUserByEmail(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		writeError(w, http.StatusBadRequest, "email query parameter is required")
		return
	}

	user, err := a.svc.GetUserByEmail(r.Context(), email)
	if err != nil {
		a.mapError(w, r, err)
		return
	}
	role, err := a.svc.RoleOfUser(r.Context(), user.ID)
	if err != nil {
		a.mapError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, UserSummary{
		UserID:    user.ID,
		Username:  user.Username,
		Email:     user.Email,
		Role:      role,
		CreatedAt: user.CreatedAt,
	})
}

// UpdateUser handles PUT /users/{userID}, admin only.
func (a *API) UpdateUser(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeJSON[UpdateUserRequest](w, r)
	if !ok {
		return
	}
	userID := chi.URLParam(r, "userID")

	err := a.svc.UpdateUser(r.Context(), userID, vault.UpdateUserInput{
		Username: req.Username,
		Email:    req.Email,
	})
	if err != nil {
		a.mapError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteUser handles DELETE /users/{userID}, admin only.
func (a *API) DeleteUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if err := a.svc.DeleteUser(r.Context(), userID); err != nil {
		a.mapError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CountUsers handles GET /users/counts, admin only.
func (a *API) CountUsers(w http.ResponseWriter, r *http.Request) {
	counts, err := a.svc.CountUsers(r.Context())
	if err != nil {
		a.mapError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, UserCountsResponse{Total: counts.Total, ByRole: counts.ByRole})
}

// ListRoles handles GET /roles.
func (a *API) ListRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := a.svc.Roles(r.Context())
	if err != nil {
		a.mapError(w, r, err)
		return
	}
	out := make([]RoleResponse, 0, len(roles))
	for _, role := range roles {
		out = append(out, RoleResponse{RoleID: role.ID, Name: role.Name})
	}
	writeJSON(w, http.StatusOK, out)
}
