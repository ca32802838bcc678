package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/nats-io/nats.go"

	"github.com/linkmarkhq/linkmark/internal/config"
	"github.com/linkmarkhq/linkmark/internal/dispatch"
	"github.com/linkmarkhq/linkmark/internal/logger"
	"github.com/linkmarkhq/linkmark/internal/metadata"
	"github.com/linkmarkhq/linkmark/internal/redis"
	"github.com/linkmarkhq/linkmark/internal/storage"
	redisstore "github.com/linkmarkhq/linkmark/internal/store/redis"
	"github.com/linkmarkhq/linkmark/internal/store/sqlite"
	"github.com/linkmarkhq/linkmark/internal/utils"
)

// RunWorker consumes enrichment events until interrupted. Unlike the API
// server, the worker cannot run without NATS; there is nothing else for it
// to do.
func RunWorker() error {
	cfg := config.Load()
	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	if !cfg.AsyncConfigured() {
		return fmt.Errorf("LINKMARK_NATS_URL is required in worker mode")
	}

	store, err := sqlite.Open(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open database at %s: %w", cfg.DatabasePath, err)
	}
	defer utils.MustClose(store)

	conn, err := nats.Connect(cfg.NATSURL)
	if err != nil {
		return fmt.Errorf("failed to connect to nats at %s: %w", cfg.NATSURL, err)
	}
	defer conn.Close()

	uploader, err := storage.New(context.Background(), storage.Options{
		Bucket:           cfg.S3Bucket,
		Region:           cfg.AWSRegion,
		CloudFrontDomain: cfg.CloudFrontDomain,
		FetchTimeout:     cfg.FetchTimeout,
		Logger:           loggerClient,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}

	var cache metadata.Cache
	if cfg.CacheConfigured() {
		redisClient, err := redis.New(redis.ConnectOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}, loggerClient)
		if err != nil {
			loggerClient.Warn("redis unavailable, running without enrichment cache",
				logger.Error(err))
		} else {
			defer utils.MustClose(redisClient)
			cache = redisstore.NewCache(redisClient, cfg.CacheTTL, loggerClient)
		}
	}

	fetcher := metadata.NewFetcher(cfg.FetchTimeout, uploader, cache, loggerClient)
	worker := dispatch.NewWorker(store, fetcher, loggerClient)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return worker.Listen(ctx, conn, cfg.MetadataSubject)
}
