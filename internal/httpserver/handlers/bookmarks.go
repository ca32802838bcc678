package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/linkmarkhq/linkmark/internal/dispatch"
	"github.com/linkmarkhq/linkmark/internal/domain"
	"github.com/linkmarkhq/linkmark/internal/httpserver/deps"
	"github.com/linkmarkhq/linkmark/internal/httpserver/mw"
	"github.com/linkmarkhq/linkmark/internal/logger"
	"github.com/linkmarkhq/linkmark/internal/store/sqlite"
)

type createBookmarkRequest struct {
	URL   string   `json:"url"`
	Title *string  `json:"title"`
	Note  *string  `json:"note"`
	Tags  []string `json:"tags"`
}

type createBookmarkResponse struct {
	*domain.Bookmark
	EnrichmentPath string `json:"enrichmentPath"`
}

// CreateBookmark persists a bookmark and kicks off metadata enrichment. The
// response is 201 either way; enrichmentPath tells the client whether the
// metadata is already final ("sync") or will arrive later ("async").
func CreateBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createBookmarkRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}

		b, path, err := d.Coordinator.Create(r.Context(), mw.UserID(r.Context()), dispatch.CreateRequest{
			URL:   req.URL,
			Title: req.Title,
			Note:  req.Note,
			Tags:  req.Tags,
		})
		if err != nil {
			if errors.Is(err, dispatch.ErrURLRequired) {
				writeError(w, http.StatusBadRequest, "url is required")
				return
			}
			d.Logger.Error("failed to create bookmark", logger.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to create bookmark")
			return
		}

		writeJSON(w, http.StatusCreated, createBookmarkResponse{
			Bookmark:       b,
			EnrichmentPath: string(path),
		})
	}
}

// ListBookmarks returns the caller's bookmarks, newest first.
func ListBookmarks(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := d.Store.ListBookmarks(r.Context(), mw.UserID(r.Context()))
		if err != nil {
			d.Logger.Error("failed to list bookmarks", logger.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to list bookmarks")
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

// GetBookmark returns a single bookmark. A bookmark owned by another user is
// indistinguishable from a missing one.
func GetBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b, err := d.Store.GetBookmark(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			if errors.Is(err, sqlite.ErrNotFound) {
				writeError(w, http.StatusNotFound, "bookmark not found")
				return
			}
			d.Logger.Error("failed to get bookmark", logger.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to get bookmark")
			return
		}
		if b.UserID != mw.UserID(r.Context()) {
			writeError(w, http.StatusNotFound, "bookmark not found")
			return
		}
		writeJSON(w, http.StatusOK, b)
	}
}
