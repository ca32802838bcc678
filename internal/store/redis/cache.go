// Package redis implements the optional enrichment-result cache. Pages
// change rarely compared to how often the same URL gets bookmarked, so a
// successful extraction is kept for a TTL and served without re-fetching.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/linkmarkhq/linkmark/internal/domain"
	"github.com/linkmarkhq/linkmark/internal/logger"
	"github.com/linkmarkhq/linkmark/internal/metadata"
)

// Cache is a best-effort read-through cache. All failures degrade to a miss;
// a broken Redis never breaks enrichment.
type Cache struct {
	client *goredis.Client
	ttl    time.Duration
	log    logger.Logger
}

func NewCache(client *goredis.Client, ttl time.Duration, log logger.Logger) *Cache {
	return &Cache{client: client, ttl: ttl, log: log}
}

// Get returns the cached enrichment result for pageURL, if any.
func (c *Cache) Get(ctx context.Context, pageURL string) (*domain.Metadata, bool) {
	data, err := c.client.Get(ctx, MetadataKey(metadata.URLKey(pageURL))).Bytes()
	if err != nil {
		if !errors.Is(err, goredis.Nil) {
			c.log.Debug("metadata cache read failed",
				logger.String("url", pageURL),
				logger.Error(err))
		}
		return nil, false
	}

	var m domain.Metadata
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, false
	}
	return &m, true
}

// Set stores an enrichment result for pageURL. Best effort.
func (c *Cache) Set(ctx context.Context, pageURL string, m domain.Metadata) {
	data, err := json.Marshal(m)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, MetadataKey(metadata.URLKey(pageURL)), data, c.ttl).Err(); err != nil {
		c.log.Debug("metadata cache write failed",
			logger.String("url", pageURL),
			logger.Error(err))
	}
}
