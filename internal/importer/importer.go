// Package importer turns legacy bookmark exports (CSV, Netscape bookmark
// files, JSON) into stored bookmarks. Imported records skip enrichment
// entirely, which keeps large imports fast and leaves them outside the
// metadata lifecycle.
package importer

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/linkmarkhq/linkmark/internal/domain"
	"github.com/linkmarkhq/linkmark/internal/logger"
	"github.com/linkmarkhq/linkmark/internal/metrics"
)

var (
	// ErrUnsupportedFormat rejects file extensions no parser claims.
	ErrUnsupportedFormat = errors.New("unsupported import format")

	// ErrInvalidFile rejects files whose content does not match the format
	// their extension claims, e.g. a JSON upload that is not an array.
	ErrInvalidFile = errors.New("invalid import file")
)

// Result summarizes one import run.
type Result struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
	Total    int `json:"total"`
}

// Store is the slice of persistence the importer needs.
type Store interface {
	ExistsURL(ctx context.Context, userID, url string) (bool, error)
	CreateBookmark(ctx context.Context, b *domain.Bookmark) error
}

// Parse decodes data into normalized records, dispatching on the file
// extension of filename. An unrecognized extension is a format error, not a
// silent no-op.
func Parse(filename string, data []byte) ([]domain.ImportRecord, string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".json":
		records, err := parseJSON(data)
		return records, "json", err
	case ".csv":
		records, err := parseCSV(data)
		return records, "csv", err
	case ".html", ".htm":
		records, err := parseNetscape(data)
		return records, "netscape", err
	default:
		return nil, "", fmt.Errorf("%w: %q (use .json, .csv, or .html)", ErrUnsupportedFormat, ext)
	}
}

type Importer struct {
	store Store
	log   logger.Logger
}

func New(store Store, log logger.Logger) *Importer {
	return &Importer{store: store, log: log}
}

// Import parses the uploaded file and persists its records for userID.
// Records with no URL and URLs the user already has are skipped, not
// errored. Created bookmarks carry no metadata status.
func (i *Importer) Import(ctx context.Context, userID, filename string, data []byte) (Result, error) {
	records, format, err := Parse(filename, data)
	if err != nil {
		return Result{}, err
	}

	res := Result{Total: len(records)}
	for _, rec := range records {
		if rec.URL == "" {
			res.Skipped++
			metrics.ImportedBookmarksTotal.WithLabelValues(format, "skipped").Inc()
			continue
		}

		exists, err := i.store.ExistsURL(ctx, userID, rec.URL)
		if err != nil {
			return res, fmt.Errorf("failed to check for duplicate: %w", err)
		}
		if exists {
			res.Skipped++
			metrics.ImportedBookmarksTotal.WithLabelValues(format, "skipped").Inc()
			continue
		}

		now := time.Now().UTC()
		createdAt := now
		if rec.CreatedAt != nil {
			createdAt = rec.CreatedAt.UTC()
		}

		b := &domain.Bookmark{
			ID:          uuid.NewString(),
			UserID:      userID,
			URL:         rec.URL,
			Title:       rec.Title,
			Description: rec.Description,
			Note:        rec.Note,
			Tags:        rec.Tags,
			CreatedAt:   createdAt,
			UpdatedAt:   now,
		}
		if err := i.store.CreateBookmark(ctx, b); err != nil {
			return res, fmt.Errorf("failed to persist imported bookmark: %w", err)
		}
		res.Imported++
		metrics.ImportedBookmarksTotal.WithLabelValues(format, "imported").Inc()
	}

	i.log.Info("import finished",
		logger.String("format", format),
		logger.Int("imported", res.Imported),
		logger.Int("skipped", res.Skipped),
		logger.Int("total", res.Total))
	return res, nil
}

func optStr(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
