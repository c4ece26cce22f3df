package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// ListCategories handles GET /categories.
func (a *API) ListCategories(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	categories, err := a.svc.ListCategories(r.Context(), user.ID)
	if err != nil {
		a.mapError(w, r, err)
		return
	}
	out := make([]CategoryResponse, 0, len(categories))
	for _, c := range categories {
		out = append(out, CategoryResponse{CategoryID: c.ID, Name: c.Name})
	}
	writeJSON(w, http.StatusOK, out)
}

// CreateCategory handles POST /categories.
func (a *API) CreateCategory(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeJSON[CategoryRequest](w, r)
	if !ok {
		return
	}
	user := userFromContext(r.Context())

	id, err := a.svc.CreateCategory(r.Context(), user.ID, req.Name)
	if err != nil {
		a.mapError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, CategoryResponse{CategoryID: id, Name: req.Name})
}

// RenameCategory handles PUT /categories/{categoryID}.
func (a *API) RenameCategory(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeJSON[CategoryRequest](w, r)
	if !ok {
		return
	}
	user := userFromContext(r.Context())
	categoryID := chi.URLParam(r, "categoryID")

	if err := a.svc.RenameCategory(r.Context(), user.ID, categoryID, req.Name); err != nil {
		a.mapError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteCategory handles DELETE /categories/{categoryID}.
func (a *API) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	categoryID := chi.URLParam(r, "categoryID")

	if err := a.svc.DeleteCategory(r.Context(), user.ID, categoryID); err != nil {
		a.mapError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
