package metadata

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/linkmarkhq/linkmark/internal/domain"
	"github.com/linkmarkhq/linkmark/internal/logger"
	"github.com/linkmarkhq/linkmark/internal/utils"
)

// UserAgent identifies page and image fetches issued by the enrichment
// pipeline.
const UserAgent = "Linkmark/1.0"

// FaviconMinSize and PreviewMinSize are the smallest byte counts accepted
// when re-hosting. Anything smaller is treated as an error-page stand-in
// served at an image URL.
const (
	FaviconMinSize = 16
	PreviewMinSize = 100
)

// Uploader re-hosts a remote image under a storage key and returns the
// public URL, or nil on any failure or when storage is not configured.
type Uploader interface {
	Upload(ctx context.Context, imageURL, key string, minSize int) *string
	Configured() bool
}

// Cache is an optional read-through cache of enrichment results keyed by
// page URL. Both methods are best effort.
type Cache interface {
	Get(ctx context.Context, pageURL string) (*domain.Metadata, bool)
	Set(ctx context.Context, pageURL string, m domain.Metadata)
}

// Fetcher is the enrichment orchestrator: fetch the page under a fixed time
// budget, extract and decode the facts, then re-host referenced images when
// storage is available.
type Fetcher struct {
	client   *http.Client
	timeout  time.Duration
	uploader Uploader
	cache    Cache
	log      logger.Logger
}

// NewFetcher builds a Fetcher. uploader and cache may be nil.
func NewFetcher(timeout time.Duration, uploader Uploader, cache Cache, log logger.Logger) *Fetcher {
	return &Fetcher{
		client:   &http.Client{Timeout: timeout},
		timeout:  timeout,
		uploader: uploader,
		cache:    cache,
		log:      log,
	}
}

// Fetch returns the metadata for pageURL. Any failure along the way (timeout,
// network error, non-success status) degrades to nil fields; the zero
// Metadata is a valid result and the caller never sees an error.
func (f *Fetcher) Fetch(ctx context.Context, pageURL string) domain.Metadata {
	if f.cache != nil {
		if m, ok := f.cache.Get(ctx, pageURL); ok {
			f.log.Debug("metadata cache hit", logger.String("url", pageURL))
			return *m
		}
	}

	html, ok := f.fetchPage(ctx, pageURL)
	if !ok {
		return domain.Metadata{}
	}

	ex := Extract(html, pageURL)

	m := domain.Metadata{
		Title:        decodePtr(ex.Title),
		Description:  decodePtr(ex.Description),
		Favicon:      ex.FaviconURL,
		PreviewImage: ex.PreviewImage,
	}

	if f.uploader != nil && f.uploader.Configured() {
		if m.Favicon != nil {
			if hosted := f.uploader.Upload(ctx, *m.Favicon, FaviconKey(pageURL), FaviconMinSize); hosted != nil {
				m.Favicon = hosted
			}
		}
		if m.PreviewImage != nil {
			if hosted := f.uploader.Upload(ctx, *m.PreviewImage, PreviewKey(pageURL), PreviewMinSize); hosted != nil {
				m.PreviewImage = hosted
			}
		}
	}

	if f.cache != nil {
		f.cache.Set(ctx, pageURL, m)
	}

	return m
}

func (f *Fetcher) fetchPage(ctx context.Context, pageURL string) (string, bool) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, http.NoBody)
	if err != nil {
		return "", false
	}
	req.Header.Set("User-Agent", UserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		f.log.Debug("page fetch failed",
			logger.String("url", pageURL),
			logger.Error(err))
		return "", false
	}
	defer utils.Close(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		f.log.Debug("page fetch non-success status",
			logger.String("url", pageURL),
			logger.Int("status", resp.StatusCode))
		return "", false
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", false
	}
	return string(body), true
}

func decodePtr(s *string) *string {
	if s == nil {
		return nil
	}
	decoded := DecodeEntities(*s)
	return &decoded
}
