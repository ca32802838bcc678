// Package storage re-hosts remote images in S3 behind an optional CloudFront
// distribution. With no bucket configured every operation is a no-op.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/linkmarkhq/linkmark/internal/logger"
	"github.com/linkmarkhq/linkmark/internal/utils"
)

const (
	// Served when the origin omits a content type.
	defaultContentType = "image/png"

	// 30 days; re-hosted assets are overwritten in place on re-ingest, so a
	// long-lived directive is safe.
	cacheControl = "public, max-age=2592000"

	userAgent = "Linkmark/1.0"
)

// objectPutter is the slice of the S3 API the uploader needs.
type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Uploader downloads an image and persists it under a durable key, producing
// a stable public URL. The zero Uploader is valid and unconfigured.
type Uploader struct {
	client   objectPutter
	httpc    *http.Client
	bucket   string
	region   string
	cfDomain string
	log      logger.Logger
}

type Options struct {
	Bucket           string
	Region           string
	CloudFrontDomain string
	FetchTimeout     time.Duration
	Logger           logger.Logger
}

// New builds an Uploader. An empty bucket yields an unconfigured uploader
// whose Upload always returns nil without touching the network, so the same
// code path runs in environments with and without durable storage.
func New(ctx context.Context, opts Options) (*Uploader, error) {
	u := &Uploader{
		httpc:    &http.Client{Timeout: opts.FetchTimeout},
		bucket:   opts.Bucket,
		region:   opts.Region,
		cfDomain: opts.CloudFrontDomain,
		log:      opts.Logger,
	}
	if u.log == nil {
		u.log = logger.Nop()
	}
	if opts.Bucket == "" {
		return u, nil
	}

	awscfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(opts.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	u.client = s3.NewFromConfig(awscfg)
	return u, nil
}

// Configured reports whether uploads can happen at all.
func (u *Uploader) Configured() bool {
	return u != nil && u.client != nil && u.bucket != ""
}

// Upload fetches imageURL and persists the bytes under key, returning the
// public URL. Returns nil when storage is unconfigured, on any fetch or
// store failure, and for bodies under minSize bytes (error-page stand-ins
// served at image URLs). Re-ingesting the same key overwrites in place.
func (u *Uploader) Upload(ctx context.Context, imageURL, key string, minSize int) *string {
	if !u.Configured() {
		return nil
	}

	body, contentType, ok := u.fetchImage(ctx, imageURL)
	if !ok {
		return nil
	}
	if len(body) < minSize {
		u.log.Debug("image below minimum size, skipping",
			logger.String("url", imageURL),
			logger.Int("bytes", len(body)),
			logger.Int("min", minSize))
		return nil
	}

	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(u.bucket),
		Key:          aws.String(key),
		Body:         bytes.NewReader(body),
		ContentType:  aws.String(contentType),
		CacheControl: aws.String(cacheControl),
	})
	if err != nil {
		u.log.Warn("failed to store image",
			logger.String("key", key),
			logger.Error(err))
		return nil
	}

	publicURL := u.PublicURL(key)
	return &publicURL
}

// PublicURL builds the stable URL for a stored key, fronting it with
// CloudFront when a distribution domain is configured.
func (u *Uploader) PublicURL(key string) string {
	if u.cfDomain != "" {
		return fmt.Sprintf("https://%s/%s", u.cfDomain, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", u.bucket, u.region, key)
}

func (u *Uploader) fetchImage(ctx context.Context, imageURL string) ([]byte, string, bool) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, http.NoBody)
	if err != nil {
		return nil, "", false
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := u.httpc.Do(req)
	if err != nil {
		u.log.Debug("image fetch failed",
			logger.String("url", imageURL),
			logger.Error(err))
		return nil, "", false
	}
	defer utils.Close(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, "", false
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", false
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = defaultContentType
	}
	return body, contentType, true
}
