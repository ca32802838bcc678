package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/linkmarkhq/linkmark/internal/logger"
	"github.com/linkmarkhq/linkmark/internal/metrics"
	"github.com/linkmarkhq/linkmark/internal/store/sqlite"
)

// Worker executes the out-of-process side of enrichment: run the pipeline,
// write the result back as complete, and on any failure write failed. A
// record must never be stranded in pending by a worker-side error; only a
// worker that never runs at all may leave it there.
type Worker struct {
	store    Store
	enricher Enricher
	log      logger.Logger
}

func NewWorker(store Store, enricher Enricher, log logger.Logger) *Worker {
	return &Worker{store: store, enricher: enricher, log: log}
}

// Process handles one enrichment event.
func (w *Worker) Process(ctx context.Context, ev Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("enrichment panic: %v", r)
			w.fail(ctx, ev.BookmarkID)
		}
	}()

	m := w.enricher.Fetch(ctx, ev.URL)

	if err := w.store.CompleteMetadata(ctx, ev.BookmarkID, m); err != nil {
		if errors.Is(err, sqlite.ErrNotPending) {
			// Already terminal; at-most-once write-back, nothing to do.
			w.log.Debug("skipping write-back for non-pending bookmark",
				logger.String("bookmark_id", ev.BookmarkID))
			return nil
		}
		w.fail(ctx, ev.BookmarkID)
		return fmt.Errorf("failed to write enrichment result: %w", err)
	}

	metrics.EnrichmentsTotal.WithLabelValues(string(PathAsync), outcomeLabel(m)).Inc()
	w.log.Info("enrichment completed",
		logger.String("bookmark_id", ev.BookmarkID),
		logger.String("url", ev.URL))
	return nil
}

func (w *Worker) fail(ctx context.Context, bookmarkID string) {
	metrics.EnrichmentsTotal.WithLabelValues(string(PathAsync), "failed").Inc()
	if err := w.store.FailMetadata(ctx, bookmarkID); err != nil && !errors.Is(err, sqlite.ErrNotPending) {
		w.log.Error("failed to mark bookmark failed",
			logger.String("bookmark_id", bookmarkID),
			logger.Error(err))
	}
}

// Listen subscribes to subject and processes enrichment events until ctx is
// done.
func (w *Worker) Listen(ctx context.Context, conn *nats.Conn, subject string) error {
	sub, err := conn.Subscribe(subject, func(msg *nats.Msg) {
		var ev Event
		if err := json.Unmarshal(msg.Data, &ev); err != nil {
			w.log.Warn("dropping malformed enrichment event", logger.Error(err))
			return
		}
		if err := w.Process(ctx, ev); err != nil {
			w.log.Error("enrichment event failed",
				logger.String("bookmark_id", ev.BookmarkID),
				logger.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", subject, err)
	}

	w.log.Info("worker listening", logger.String("subject", subject))
	<-ctx.Done()
	return sub.Drain()
}
