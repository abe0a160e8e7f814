package book

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/url"
	"strings"

	"bookshelf/internal/httpx"
)

type HTTPHandler struct {
	repo Repository
}

func NewHTTPHandler(repo Repository) *HTTPHandler {
	return &HTTPHandler{repo: repo}
}

type addRequest struct {
	Author string `json:"author" validate:"notblank,max=200"`
	Title  string `json:"title" validate:"notblank,max=300"`
	Pages  int    `json:"pages" validate:"gte=0"`
}

type updateRequest struct {
	Author   string `query:"author" validate:"notblank"`
	OldTitle string `query:"oldTitle" validate:"notblank"`
	NewTitle string `query:"newTitle" validate:"notblank,max=300"`
}

type updateResponse struct {
	Author   string `json:"author"`
	OldTitle string `json:"old_title"`
	NewTitle string `json:"new_title"`
}

// @Summary List books
// @Description Get every book ordered by author, then title
// @Tags books
// @Produce json
// @Success 200 {object} httpx.SuccessResponse
// @Router /api/books [get]
func (h *HTTPHandler) List(w http.ResponseWriter, r *http.Request) {
	books := h.repo.List(r.Context())
	httpx.JSONSuccess(w, r, books, map[string]interface{}{"total": len(books)})
}

// @Summary Search books
// @Description Case-insensitive substring search over titles
// @Tags books
// @Produce json
// @Param keyword path string true "Part of the title"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Router /api/books/{keyword} [get]
func (h *HTTPHandler) Search(w http.ResponseWriter, r *http.Request) {
	keyword := r.PathValue("keyword")
	if keyword == "" {
		keyword = strings.TrimPrefix(r.URL.Path, "/api/books/")
	}
	if strings.TrimSpace(keyword) == "" {
		httpx.JSONError(w, r, http.StatusBadRequest, "INVALID_KEYWORD", "The keyword can not be empty", nil)
		return
	}

	books := h.repo.Search(r.Context(), keyword)
	httpx.JSONSuccess(w, r, books, map[string]interface{}{"total": len(books)})
}

// @Summary Add a book
// @Tags books
// @Accept json
// @Produce json
// @Success 201 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 409 {object} httpx.ErrorResponse
// @Router /api/books [post]
func (h *HTTPHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req addRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			httpx.JSONError(w, r, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "Request body too large", nil)
			return
		}
		httpx.JSONError(w, r, http.StatusBadRequest, "INVALID_JSON", "Request body must be a book object", nil)
		return
	}
	if details := httpx.ValidateStruct(req); details != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid book", details)
		return
	}

	b := Book{
		Author: strings.TrimSpace(req.Author),
		Title:  strings.TrimSpace(req.Title),
		Pages:  req.Pages,
	}
	if err := h.repo.Add(r.Context(), b); err != nil {
		writeStoreError(w, r, err)
		return
	}

	w.Header().Set("Location", "/api/books/"+url.PathEscape(b.Title))
	httpx.JSONSuccessCreated(w, r, b)
}

// @Summary Rename a book
// @Tags books
// @Produce json
// @Param author query string true "Author"
// @Param oldTitle query string true "Current title"
// @Param newTitle query string true "New title"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Failure 409 {object} httpx.ErrorResponse
// @Router /api/books [put]
func (h *HTTPHandler) Update(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	req := updateRequest{
		Author:   strings.TrimSpace(query.Get("author")),
		OldTitle: strings.TrimSpace(query.Get("oldTitle")),
		NewTitle: strings.TrimSpace(query.Get("newTitle")),
	}
	if details := httpx.ValidateStruct(req); details != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "author, oldTitle and newTitle are required", details)
		return
	}

	updated, err := h.repo.Update(r.Context(), req.Author, req.OldTitle, req.NewTitle)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	if !updated {
		httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", "Book with title '"+req.OldTitle+"' by author '"+req.Author+"' not found", nil)
		return
	}

	httpx.JSONSuccess(w, r, updateResponse{
		Author:   req.Author,
		OldTitle: req.OldTitle,
		NewTitle: req.NewTitle,
	}, nil)
}

// Reload handles POST /api/admin/reload
func (h *HTTPHandler) Reload(w http.ResponseWriter, r *http.Request) {
	if err := h.repo.Reload(r.Context()); err != nil {
		writeStoreError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, nil, map[string]interface{}{"total": len(h.repo.List(r.Context()))})
}

func writeStoreError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrDuplicate):
		httpx.JSONError(w, r, http.StatusConflict, "DUPLICATE_BOOK", err.Error(), nil)
	case errors.Is(err, ErrConflict):
		httpx.JSONError(w, r, http.StatusConflict, "TITLE_CONFLICT", err.Error(), nil)
	case errors.Is(err, ErrLoad):
		log.Printf("book store load failed: request_id=%s error=%v", httpx.RequestIDFrom(r), err)
		httpx.JSONError(w, r, http.StatusInternalServerError, "LOAD_ERROR", "The book file could not be read", nil)
	case errors.Is(err, ErrPersistence):
		log.Printf("book store write failed: request_id=%s error=%v", httpx.RequestIDFrom(r), err)
		httpx.JSONError(w, r, http.StatusInternalServerError, "PERSISTENCE_ERROR", "The book file could not be saved", nil)
	default:
		log.Printf("book store error: request_id=%s error=%v", httpx.RequestIDFrom(r), err)
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
	}
}
