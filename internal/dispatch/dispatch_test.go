package dispatch

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linkmarkhq/linkmark/internal/domain"
	"github.com/linkmarkhq/linkmark/internal/logger"
	"github.com/linkmarkhq/linkmark/internal/store/sqlite"
)

type stubEnricher struct {
	result domain.Metadata
	calls  int
	panics bool
}

func (e *stubEnricher) Fetch(context.Context, string) domain.Metadata {
	e.calls++
	if e.panics {
		panic("boom")
	}
	return e.result
}

type stubInvoker struct {
	configured bool
	err        error
	events     []Event
}

func (i *stubInvoker) Configured() bool { return i.configured }

func (i *stubInvoker) Invoke(_ context.Context, bookmarkID, url string) error {
	if i.err != nil {
		return i.err
	}
	i.events = append(i.events, Event{BookmarkID: bookmarkID, URL: url})
	return nil
}

func setupStore(t *testing.T) *sqlite.Store {
	t.Helper()
	s, err := sqlite.Open(filepath.Join(t.TempDir(), "linkmark.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func strp(s string) *string { return &s }

func TestCreateSyncWhenNoInvokerConfigured(t *testing.T) {
	store := setupStore(t)
	enricher := &stubEnricher{result: domain.Metadata{
		Title:       strp("Fetched"),
		Description: strp("desc"),
	}}
	c := NewCoordinator(store, enricher, nil, logger.Nop())

	b, path, err := c.Create(context.Background(), "u1", CreateRequest{
		URL:  "https://example.com",
		Tags: []string{"Reading"},
	})
	require.NoError(t, err)

	// The synchronous path never returns a pending record.
	assert.Equal(t, PathSync, path)
	assert.Equal(t, domain.StatusComplete, b.MetadataStatus)
	assert.Equal(t, "Fetched", *b.Title)
	assert.Equal(t, "desc", *b.Description)
	assert.Equal(t, []string{"reading"}, b.Tags)
	assert.Equal(t, 1, enricher.calls)
}

func TestCreateSyncUserTitleWins(t *testing.T) {
	store := setupStore(t)
	enricher := &stubEnricher{result: domain.Metadata{Title: strp("Fetched")}}
	c := NewCoordinator(store, enricher, nil, logger.Nop())

	b, _, err := c.Create(context.Background(), "u1", CreateRequest{
		URL:   "https://example.com",
		Title: strp("Mine"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Mine", *b.Title)
}

func TestCreateSyncDegradedStillCompletes(t *testing.T) {
	store := setupStore(t)
	c := NewCoordinator(store, &stubEnricher{}, nil, logger.Nop())

	b, path, err := c.Create(context.Background(), "u1", CreateRequest{URL: "https://down.example"})
	require.NoError(t, err)
	assert.Equal(t, PathSync, path)
	assert.Equal(t, domain.StatusComplete, b.MetadataStatus)
	assert.Nil(t, b.Title)
}

func TestCreateAsyncReturnsPending(t *testing.T) {
	store := setupStore(t)
	enricher := &stubEnricher{result: domain.Metadata{Title: strp("never used")}}
	invoker := &stubInvoker{configured: true}
	c := NewCoordinator(store, enricher, invoker, logger.Nop())

	b, path, err := c.Create(context.Background(), "u1", CreateRequest{URL: "https://example.com"})
	require.NoError(t, err)

	assert.Equal(t, PathAsync, path)
	assert.Equal(t, domain.StatusPending, b.MetadataStatus)
	assert.Equal(t, 0, enricher.calls, "async path must not enrich inline")
	require.Len(t, invoker.events, 1)
	assert.Equal(t, b.ID, invoker.events[0].BookmarkID)
	assert.Equal(t, "https://example.com", invoker.events[0].URL)
}

func TestCreateFallsBackToSyncWhenHandOffFails(t *testing.T) {
	store := setupStore(t)
	enricher := &stubEnricher{result: domain.Metadata{Title: strp("Fetched")}}
	invoker := &stubInvoker{configured: true, err: errors.New("nats down")}
	c := NewCoordinator(store, enricher, invoker, logger.Nop())

	b, path, err := c.Create(context.Background(), "u1", CreateRequest{URL: "https://example.com"})
	require.NoError(t, err)
	assert.Equal(t, PathSync, path)
	assert.Equal(t, domain.StatusComplete, b.MetadataStatus)
	assert.Equal(t, 1, enricher.calls)
}

func TestCreateRequiresURL(t *testing.T) {
	c := NewCoordinator(setupStore(t), &stubEnricher{}, nil, logger.Nop())
	_, _, err := c.Create(context.Background(), "u1", CreateRequest{URL: "   "})
	assert.ErrorIs(t, err, ErrURLRequired)
}

func TestWorkerProcessCompletes(t *testing.T) {
	store := setupStore(t)
	invoker := &stubInvoker{configured: true}
	c := NewCoordinator(store, &stubEnricher{}, invoker, logger.Nop())

	b, _, err := c.Create(context.Background(), "u1", CreateRequest{URL: "https://example.com"})
	require.NoError(t, err)

	w := NewWorker(store, &stubEnricher{result: domain.Metadata{Title: strp("Fetched")}}, logger.Nop())
	require.NoError(t, w.Process(context.Background(), invoker.events[0]))

	got, err := store.GetBookmark(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusComplete, got.MetadataStatus)
	assert.Equal(t, "Fetched", *got.Title)
}

func TestWorkerProcessPanicWritesFailed(t *testing.T) {
	store := setupStore(t)
	invoker := &stubInvoker{configured: true}
	c := NewCoordinator(store, &stubEnricher{}, invoker, logger.Nop())

	b, _, err := c.Create(context.Background(), "u1", CreateRequest{URL: "https://example.com"})
	require.NoError(t, err)

	w := NewWorker(store, &stubEnricher{panics: true}, logger.Nop())
	err = w.Process(context.Background(), invoker.events[0])
	require.Error(t, err)

	// The record is failed, never stranded in pending.
	got, err := store.GetBookmark(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFailed, got.MetadataStatus)
}

func TestWorkerProcessAlreadyTerminalIsNoOp(t *testing.T) {
	store := setupStore(t)
	invoker := &stubInvoker{configured: true}
	c := NewCoordinator(store, &stubEnricher{}, invoker, logger.Nop())

	b, _, err := c.Create(context.Background(), "u1", CreateRequest{URL: "https://example.com"})
	require.NoError(t, err)
	require.NoError(t, store.FailMetadata(context.Background(), b.ID))

	w := NewWorker(store, &stubEnricher{result: domain.Metadata{Title: strp("late")}}, logger.Nop())
	require.NoError(t, w.Process(context.Background(), invoker.events[0]))

	got, err := store.GetBookmark(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFailed, got.MetadataStatus)
	assert.Nil(t, got.Title)
}
