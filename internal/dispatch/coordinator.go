// Package dispatch decides how a new bookmark gets enriched: handed off to
// an out-of-process worker (async) or run inline (sync). The decision is
// made once, at creation time, and never retried.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/linkmarkhq/linkmark/internal/domain"
	"github.com/linkmarkhq/linkmark/internal/logger"
	"github.com/linkmarkhq/linkmark/internal/metrics"
)

// ErrURLRequired rejects a create request with no URL.
var ErrURLRequired = errors.New("url is required")

// Path is the dispatch decision for a single bookmark.
type Path string

const (
	PathAsync Path = "async"
	PathSync  Path = "sync"
)

// Store is the persistence boundary the coordinator and worker write
// through.
type Store interface {
	CreateBookmark(ctx context.Context, b *domain.Bookmark) error
	GetBookmark(ctx context.Context, id string) (*domain.Bookmark, error)
	CompleteMetadata(ctx context.Context, id string, m domain.Metadata) error
	FailMetadata(ctx context.Context, id string) error
}

// Enricher runs the enrichment pipeline for one URL. It never errors; the
// degraded all-nil result is a valid outcome.
type Enricher interface {
	Fetch(ctx context.Context, pageURL string) domain.Metadata
}

// CreateRequest carries the user-supplied fields of a new bookmark.
type CreateRequest struct {
	URL   string
	Title *string
	Note  *string
	Tags  []string
}

// Coordinator persists new bookmarks and routes their enrichment.
type Coordinator struct {
	store    Store
	enricher Enricher
	invoker  Invoker
	log      logger.Logger
}

// NewCoordinator builds a Coordinator. invoker may be nil, which forces the
// synchronous path for every bookmark.
func NewCoordinator(store Store, enricher Enricher, invoker Invoker, log logger.Logger) *Coordinator {
	return &Coordinator{store: store, enricher: enricher, invoker: invoker, log: log}
}

// Create persists the bookmark as pending with the user-supplied fields,
// then dispatches enrichment. On the async path the pending record comes
// back immediately; on the sync path the returned record is already
// complete, possibly with all enrichment fields null.
func (c *Coordinator) Create(ctx context.Context, userID string, req CreateRequest) (*domain.Bookmark, Path, error) {
	now := time.Now().UTC()
	b := &domain.Bookmark{
		ID:             uuid.NewString(),
		UserID:         userID,
		URL:            strings.TrimSpace(req.URL),
		Title:          req.Title,
		Note:           req.Note,
		Tags:           req.Tags,
		MetadataStatus: domain.StatusPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if b.URL == "" {
		return nil, "", ErrURLRequired
	}

	if err := c.store.CreateBookmark(ctx, b); err != nil {
		return nil, "", fmt.Errorf("failed to persist bookmark: %w", err)
	}

	if c.invoker != nil && c.invoker.Configured() {
		err := c.invoker.Invoke(ctx, b.ID, b.URL)
		if err == nil {
			c.log.Info("enrichment dispatched",
				logger.String("bookmark_id", b.ID),
				logger.String("path", string(PathAsync)))
			stored, err := c.store.GetBookmark(ctx, b.ID)
			if err != nil {
				return nil, "", err
			}
			return stored, PathAsync, nil
		}
		c.log.Warn("async hand-off failed, falling back to synchronous enrichment",
			logger.String("bookmark_id", b.ID),
			logger.Error(err))
	}

	m := c.enricher.Fetch(ctx, b.URL)
	if err := c.store.CompleteMetadata(ctx, b.ID, m); err != nil {
		return nil, "", fmt.Errorf("failed to write enrichment result: %w", err)
	}
	metrics.EnrichmentsTotal.WithLabelValues(string(PathSync), outcomeLabel(m)).Inc()

	stored, err := c.store.GetBookmark(ctx, b.ID)
	if err != nil {
		return nil, "", err
	}
	return stored, PathSync, nil
}

func outcomeLabel(m domain.Metadata) string {
	if m.Empty() {
		return "degraded"
	}
	return "complete"
}
