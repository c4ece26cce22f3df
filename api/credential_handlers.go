package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/salapa/vaultd/vault"
)

// CreateCredential handles POST /credentials.
func (a *API) CreateCredential(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeJSON[CreateCredentialRequest](w, r)
	if !ok {
		return
	}
	user := userFromContext(r.Context())

	id, err := a.svc.CreateCredential(r.Context(), user.ID, vault.CreateCredentialInput{
		Title:      req.Title,
		Username:   req.Username,
		Secret:     req.Password,
		URL:        req.URL,
		CategoryID: req.CategoryID,
		Notes:      req.Notes,
	})
	if err != nil {
		a.mapError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, CreateCredentialResponse{CredentialID: id})
}

// GetCredential handles GET /credentials/{credentialID}. The only route that
// returns a decrypted secret.
func (a *API) GetCredential(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	credentialID := chi.URLParam(r, "credentialID")

	detail, err := a.svc.GetCredential(r.Context(), user.ID, credentialID)
	if err != nil {
		a.mapError(w, r, err)
		return
	}

	accessType := "SHARED"
	if detail.Permission == vault.PermissionOwner {
		accessType = "OWNER"
	}
	writeJSON(w, http.StatusOK, CredentialResponse{
		CredentialID: detail.ID,
		Title:        detail.Title,
		Username:     detail.Username,
		Password:     detail.Secret,
		URL:          detail.URL,
		CategoryID:   detail.CategoryID,
		Notes:        detail.Notes,
		AccessType:   accessType,
		CreatedAt:    detail.CreatedAt,
		UpdatedAt:    detail.UpdatedAt,
	})
}

// ListCredentials handles GET /credentials with optional search, category
// and limit query parameters.
func (a *API) ListCredentials(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	q := r.URL.Query()

	opts := vault.ListCredentialsOptions{
		Search:   q.Get("search"),
		Category: q.Get("category"),
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		opts.Limit = n
	}

	list, err := a.svc.ListCredentials(r.Context(), user.ID, opts)
	if err != nil {
		a.mapError(w, r, err)
		return
	}

	out := make([]CredentialSummary, 0, len(list.Items))
	for _, item := range list.Items {
		out = append(out, CredentialSummary{
			CredentialID: item.ID,
			Title:        item.Title,
			Username:     item.Username,
			URL:          item.URL,
			CategoryID:   item.CategoryID,
			AccessType:   item.AccessType,
			SharedBy:     item.SharedBy,
			ShareLevel:   string(item.ShareLevel),
			CreatedAt:    item.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, ListCredentialsResponse{Total: list.Total, Credentials: out})
}

// UpdateCredential handles PUT /credentials/{credentialID}.
func (a *API) UpdateCredential(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeJSON[UpdateCredentialRequest](w, r)
	if !ok {
		return
	}
	user := userFromContext(r.Context())
	credentialID := chi.URLParam(r, "credentialID")

	err := a.svc.UpdateCredential(r.Context(), user.ID, credentialID, vault.UpdateCredentialInput{
		Title:      req.Title,
		Username:   req.Username,
		Secret:     req.Password,
		URL:        req.URL,
		CategoryID: req.CategoryID,
		Notes:      req.Notes,
	})
	if err != nil {
		a.mapError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteCredential handles DELETE /credentials/{credentialID}.
func (a *API) DeleteCredential(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	credentialID := chi.URLParam(r, "credentialID")

	if err := a.svc.DeleteCredential(r.Context(), user.ID, credentialID); err != nil {
		a.mapError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ShareCredential handles POST /credentials/{credentialID}/shares.
func (a *API) ShareCredential(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeJSON[ShareRequest](w, r)
	if !ok {
		return
	}
	user := userFromContext(r.Context())
	credentialID := chi.URLParam(r, "credentialID")

	shareID, err := a.svc.ShareCredential(r.Context(), user.ID, credentialID, req.UserID, vault.ShareLevel(req.Level))
	if err != nil {
		a.mapError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, ShareResponse{ShareID: shareID})
}

// ListShares handles GET /credentials/{credentialID}/shares.
func (a *API) ListShares(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	credentialID := chi.URLParam(r, "credentialID")

	shares, err := a.svc.ListShares(r.Context(), user.ID, credentialID)
	if err != nil {
		a.mapError(w, r, err)
		return
	}
	out := make([]ShareSummary, 0, len(shares))
	for _, share := range shares {
		out = append(out, ShareSummary{
			ShareID:  share.ID,
			UserID:   share.GranteeID,
			Level:    string(share.Level),
			SharedBy: share.GranterID,
			SharedAt: share.SharedAt,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// RevokeShare handles DELETE /shares/{shareID}.
func (a *API) RevokeShare(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	shareID := chi.URLParam(r, "shareID")

	if err := a.svc.RevokeShare(r.Context(), user.ID, shareID); err != nil {
		a.mapError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
