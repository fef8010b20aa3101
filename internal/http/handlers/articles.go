package handlers

import (
	"net/http"

	apierrors "github.com/pribylovaa/go-news-formatter/internal/errors"
	"github.com/pribylovaa/go-news-formatter/internal/models"
)

// draftRequest — тело POST/PUT /articles.
type draftRequest struct {
	Category string `json:"category"`
	Title    string `json:"title"`
	City     string `json:"city"`
	Source   string `json:"source"`
	Body     string `json:"body"`
}

func (d draftRequest) toModel() models.Draft {
	return models.Draft{
		Category: d.Category,
		Title:    d.Title,
		City:     d.City,
		Source:   d.Source,
		Body:     d.Body,
	}
}

func draftResponse(d models.Draft) draftRequest {
	return draftRequest{
		Category: d.Category,
		Title:    d.Title,
		City:     d.City,
		Source:   d.Source,
		Body:     d.Body,
	}
}

type listResponse struct {
	Articles []models.IndexedArticle `json:"articles"`
}

type articleResponse struct {
	Index   int            `json:"index"`
	Article models.Article `json:"article"`
	Draft   draftRequest   `json:"draft"`
}

type moveRequest struct {
	To *int `json:"to"`
}

// ListArticles — GET /articles?category=.
func (h *Handlers) ListArticles(w http.ResponseWriter, r *http.Request) {
	list, err := h.Service.Articles(r.URL.Query().Get("category"))
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, listResponse{Articles: list})
}

// CreateArticle — POST /articles.
func (h *Handlers) CreateArticle(w http.ResponseWriter, r *http.Request) {
	var in draftRequest
	if err := decodeStrict(r, &in); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	saved, err := h.Service.SaveArticle(r.Context(), in.toModel())
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, saved)
}

// GetArticle — GET /articles/{index}: статья и черновик для редактирования.
func (h *Handlers) GetArticle(w http.ResponseWriter, r *http.Request) {
	idx, err := indexParam(r)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	a, err := h.Service.Article(idx)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	d, err := h.Service.Draft(idx)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, articleResponse{Index: idx, Article: a, Draft: draftResponse(d)})
}

// UpdateArticle — PUT /articles/{index}.
func (h *Handlers) UpdateArticle(w http.ResponseWriter, r *http.Request) {
	idx, err := indexParam(r)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	var in draftRequest
	if err := decodeStrict(r, &in); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	saved, err := h.Service.EditArticle(r.Context(), idx, in.toModel())
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, saved)
}

// DeleteArticle — DELETE /articles/{index}.
func (h *Handlers) DeleteArticle(w http.ResponseWriter, r *http.Request) {
	idx, err := indexParam(r)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	persisted, err := h.Service.DeleteArticle(r.Context(), idx)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, persistedResponse{Persisted: persisted})
}

// MoveArticle — POST /articles/{index}/move, тело {"to": n}.
func (h *Handlers) MoveArticle(w http.ResponseWriter, r *http.Request) {
	from, err := indexParam(r)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	var in moveRequest
	if err := decodeStrict(r, &in); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}
	if in.To == nil {
		apierrors.WriteError(w, r, apierrors.ErrInvalidArgument)
		return
	}

	persisted, err := h.Service.MoveArticle(r.Context(), from, *in.To)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, persistedResponse{Persisted: persisted})
}

// ClearArticles — DELETE /articles?confirm=true. Без подтверждения — 400.
func (h *Handlers) ClearArticles(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("confirm") != "true" {
		apierrors.WriteError(w, r, apierrors.ErrInvalidArgument)
		return
	}

	persisted, err := h.Service.ClearAll(r.Context())
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, persistedResponse{Persisted: persisted})
}
