package handlers

import (
	"net/http"

	"github.com/linkmarkhq/linkmark/internal/httpserver/deps"
	"github.com/linkmarkhq/linkmark/internal/httpserver/mw"
	"github.com/linkmarkhq/linkmark/internal/logger"
)

// Audit runs the broken-link checker over the caller's bookmarks and returns
// the report. The run is synchronous; large collections take a while.
func Audit(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := d.Store.ListBookmarks(r.Context(), mw.UserID(r.Context()))
		if err != nil {
			d.Logger.Error("failed to list bookmarks for audit", logger.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to list bookmarks")
			return
		}

		urls := make([]string, 0, len(list))
		for _, b := range list {
			urls = append(urls, b.URL)
		}

		writeJSON(w, http.StatusOK, d.Auditor.Check(r.Context(), urls))
	}
}
