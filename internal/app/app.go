package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"
	goredis "github.com/redis/go-redis/v9"

	"github.com/linkmarkhq/linkmark/internal/auditor"
	"github.com/linkmarkhq/linkmark/internal/config"
	"github.com/linkmarkhq/linkmark/internal/dispatch"
	"github.com/linkmarkhq/linkmark/internal/httpserver"
	"github.com/linkmarkhq/linkmark/internal/httpserver/deps"
	"github.com/linkmarkhq/linkmark/internal/importer"
	"github.com/linkmarkhq/linkmark/internal/logger"
	"github.com/linkmarkhq/linkmark/internal/metadata"
	"github.com/linkmarkhq/linkmark/internal/redis"
	"github.com/linkmarkhq/linkmark/internal/scheduler"
	"github.com/linkmarkhq/linkmark/internal/storage"
	redisstore "github.com/linkmarkhq/linkmark/internal/store/redis"
	"github.com/linkmarkhq/linkmark/internal/store/sqlite"
	"github.com/linkmarkhq/linkmark/internal/version"
)

type App struct {
	cfg         *config.Config
	logger      logger.Logger
	server      *httpserver.Server
	store       *sqlite.Store
	redisClient *goredis.Client
	natsConn    *nats.Conn
	auditJob    *scheduler.LinkAuditJob
}

// New wires the API server. Every optional backend (Redis, NATS, S3) that is
// unconfigured or unreachable downgrades a capability instead of refusing to
// start; only the database is mandatory.
func New() *App {
	cfg := config.Load()

	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	store, err := sqlite.Open(cfg.DatabasePath)
	if err != nil {
		loggerClient.Errorf("Failed to open database at %s: %v", cfg.DatabasePath, err)
		os.Exit(1)
	}
	loggerClient.Info("database ready", logger.String("path", cfg.DatabasePath))

	var redisClient *goredis.Client
	if cfg.CacheConfigured() {
		redisClient, err = redis.New(redis.ConnectOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}, loggerClient)
		if err != nil {
			loggerClient.Warn("redis unavailable, running without enrichment cache",
				logger.Error(err))
			redisClient = nil
		}
	}

	var natsConn *nats.Conn
	if cfg.AsyncConfigured() {
		natsConn, err = nats.Connect(cfg.NATSURL)
		if err != nil {
			loggerClient.Warn("nats unavailable, enrichment runs inline",
				logger.Error(err))
			natsConn = nil
		} else {
			loggerClient.Info("connected to nats", logger.String("url", cfg.NATSURL))
		}
	}

	uploader, err := storage.New(context.Background(), storage.Options{
		Bucket:           cfg.S3Bucket,
		Region:           cfg.AWSRegion,
		CloudFrontDomain: cfg.CloudFrontDomain,
		FetchTimeout:     cfg.FetchTimeout,
		Logger:           loggerClient,
	})
	if err != nil {
		loggerClient.Errorf("Failed to initialize storage: %v", err)
		os.Exit(1)
	}
	if !uploader.Configured() {
		loggerClient.Info("storage not configured, images link to their origin")
	}

	var cache metadata.Cache
	if redisClient != nil {
		cache = redisstore.NewCache(redisClient, cfg.CacheTTL, loggerClient)
	}

	fetcher := metadata.NewFetcher(cfg.FetchTimeout, uploader, cache, loggerClient)

	var invoker dispatch.Invoker
	if natsConn != nil {
		invoker = dispatch.NewNATSInvoker(natsConn, cfg.MetadataSubject)
	}

	coordinator := dispatch.NewCoordinator(store, fetcher, invoker, loggerClient)
	imp := importer.New(store, loggerClient)
	aud := auditor.New(cfg.LinkCheckTimeout, cfg.LinkCheckBatchSize, loggerClient)

	var auditJob *scheduler.LinkAuditJob
	if cfg.AuditInterval > 0 {
		auditJob = scheduler.NewLinkAuditJob(aud, store, loggerClient, cfg.AuditInterval)
	}

	d := deps.Deps{
		Logger:      loggerClient,
		StartTime:   time.Now(),
		Version:     version.Version,
		Commit:      version.Commit,
		BuildDate:   version.BuildDate,
		GoVersion:   version.GoVersion,
		Store:       store,
		Coordinator: coordinator,
		Importer:    imp,
		Auditor:     aud,
	}

	server := httpserver.New(cfg, loggerClient, d)

	return &App{
		cfg:         cfg,
		logger:      loggerClient,
		server:      server,
		store:       store,
		redisClient: redisClient,
		natsConn:    natsConn,
		auditJob:    auditJob,
	}
}

func (a *App) Run() error {
	a.logger.Infof("Starting Linkmark v%s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Infof("Linkmark %s (commit=%s, built=%s, go=%s)",
		version.Version, version.Commit, version.BuildDate, version.GoVersion)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if a.auditJob != nil {
		a.auditJob.Start(ctx)
		a.logger.Info("link audit job started",
			logger.Duration("interval", a.cfg.AuditInterval))
	}

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("Shutting down gracefully...")
	case err := <-errCh:
		return err
	}

	if a.auditJob != nil {
		a.auditJob.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	if a.natsConn != nil {
		a.natsConn.Close()
	}
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warnf("failed to close redis: %v", err)
		}
	}
	if err := a.store.Close(); err != nil {
		a.logger.Warnf("failed to close database: %v", err)
	}

	a.logger.Info("Linkmark stopped cleanly")
	return nil
}
