package handlers

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	apierrors "github.com/pribylovaa/go-news-formatter/internal/errors"
	"github.com/pribylovaa/go-news-formatter/internal/models"
)

type categoriesResponse struct {
	Categories []models.CategoryCount `json:"categories"`
}

// ListCategories — GET /categories: счётчики в порядке отображения.
func (h *Handlers) ListCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, categoriesResponse{Categories: h.Service.Categories()})
}

// ExportCategory — POST /categories/{category}/export: text/plain блок выгрузки.
func (h *Handlers) ExportCategory(w http.ResponseWriter, r *http.Request) {
	category, err := url.PathUnescape(chi.URLParam(r, "category"))
	if err != nil {
		apierrors.WriteError(w, r, apierrors.ErrInvalidArgument)
		return
	}

	payload, err := h.Service.ExportCategory(r.Context(), category)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeText(w, http.StatusOK, payload)
}

// Rates — GET /rates?source=: справка по курсам или 204, если её нет.
func (h *Handlers) Rates(w http.ResponseWriter, r *http.Request) {
	text, ok := h.Service.Rates(r.Context(), r.URL.Query().Get("source"))
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	writeText(w, http.StatusOK, text)
}
