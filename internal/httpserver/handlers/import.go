package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/linkmarkhq/linkmark/internal/httpserver/deps"
	"github.com/linkmarkhq/linkmark/internal/httpserver/mw"
	"github.com/linkmarkhq/linkmark/internal/importer"
	"github.com/linkmarkhq/linkmark/internal/logger"
)

// uploads larger than this are rejected before parsing
const maxImportSize = 20 << 20

// Import accepts a multipart upload under the "file" field and bulk-creates
// bookmarks from it. Imported bookmarks never enter the enrichment pipeline.
func Import(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(maxImportSize); err != nil {
			writeError(w, http.StatusBadRequest, "expected multipart form with a file field")
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			writeError(w, http.StatusBadRequest, "missing file field")
			return
		}
		defer file.Close()

		data, err := io.ReadAll(io.LimitReader(file, maxImportSize))
		if err != nil {
			writeError(w, http.StatusBadRequest, "failed to read upload")
			return
		}

		res, err := d.Importer.Import(r.Context(), mw.UserID(r.Context()), header.Filename, data)
		if err != nil {
			if errors.Is(err, importer.ErrUnsupportedFormat) || errors.Is(err, importer.ErrInvalidFile) {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			d.Logger.Error("import failed", logger.Error(err))
			writeError(w, http.StatusInternalServerError, "import failed")
			return
		}

		writeJSON(w, http.StatusOK, res)
	}
}
