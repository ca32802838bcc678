package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	ListenPort      string        `yaml:"listen_port"`      // ex: ":8080"
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"` // ex: 5s

	LogLevel  string `yaml:"log_level"`  // "debug" | "info" | "warn" | "error"
	PrettyLog bool   `yaml:"pretty_log"` // true => zap dev (color), false => zap prod (JSON)

	DatabasePath string `yaml:"database_path"` // path to the SQLite database file

	// Enrichment
	FetchTimeout time.Duration `yaml:"fetch_timeout"` // page/image fetch budget (default: 5s)

	// Async worker hand-off (optional, empty = synchronous fallback)
	NATSURL         string `yaml:"nats_url"`         // ex: "nats://localhost:4222"
	MetadataSubject string `yaml:"metadata_subject"` // subject for enrichment events

	// Asset storage (optional, empty bucket = no re-hosting)
	S3Bucket         string `yaml:"s3_bucket"`
	AWSRegion        string `yaml:"aws_region"`
	CloudFrontDomain string `yaml:"cloudfront_domain"` // ex: "cdn.example.com"

	// Enrichment-result cache (optional, empty addr = no cache)
	RedisAddr     string        `yaml:"redis_addr"` // ex: "localhost:6379"
	RedisPassword string        `yaml:"redis_password"`
	RedisDB       int           `yaml:"redis_db"`
	CacheTTL      time.Duration `yaml:"cache_ttl"` // default: 24h

	// Link auditor
	LinkCheckTimeout   time.Duration `yaml:"link_check_timeout"`    // per-URL HEAD timeout (default: 10s)
	LinkCheckBatchSize int           `yaml:"link_check_batch_size"` // default: 10
	AuditInterval      time.Duration `yaml:"audit_interval"`        // 0 = periodic audit disabled
}

// Load builds the configuration from an optional YAML file (pointed to by
// LINKMARK_CONFIG_FILE) overlaid by environment variables. All enrichment
// infrastructure settings are optional: an absent bucket, NATS URL, or Redis
// address degrades to the no-storage / synchronous / no-cache path.
func Load() *Config {
	cfg := &Config{
		ListenPort:      ":8080",
		ShutdownTimeout: 5 * time.Second,

		LogLevel:  "info",
		PrettyLog: true,

		DatabasePath: "linkmark.db",

		FetchTimeout:    5 * time.Second,
		MetadataSubject: "linkmark.metadata.fetch",

		AWSRegion: "us-east-1",

		CacheTTL: 24 * time.Hour,

		LinkCheckTimeout:   10 * time.Second,
		LinkCheckBatchSize: 10,
		AuditInterval:      24 * time.Hour,
	}

	if path := os.Getenv("LINKMARK_CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			panic(fmt.Sprintf("FATAL: cannot load config file %s: %v", path, err))
		}
	}

	cfg.loadEnv()

	if cfg.DatabasePath == "" {
		panic("FATAL: database path must not be empty")
	}
	if cfg.LinkCheckBatchSize < 1 {
		cfg.LinkCheckBatchSize = 10
	}

	return cfg
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("invalid yaml: %w", err)
	}
	return nil
}

func (c *Config) loadEnv() {
	c.ListenPort = getenv("LINKMARK_LISTEN_PORT", c.ListenPort)
	c.ShutdownTimeout = mustDuration("LINKMARK_SHUTDOWN_TIMEOUT", c.ShutdownTimeout)

	c.LogLevel = getenv("LINKMARK_LOG_LEVEL", c.LogLevel)
	c.PrettyLog = mustBool("LINKMARK_PRETTY_LOG", c.PrettyLog)

	c.DatabasePath = getenv("LINKMARK_DATABASE_PATH", c.DatabasePath)

	c.FetchTimeout = mustDuration("LINKMARK_FETCH_TIMEOUT", c.FetchTimeout)

	c.NATSURL = getenv("LINKMARK_NATS_URL", c.NATSURL)
	c.MetadataSubject = getenv("LINKMARK_METADATA_SUBJECT", c.MetadataSubject)

	c.S3Bucket = getenv("LINKMARK_S3_BUCKET", c.S3Bucket)
	c.AWSRegion = getenv("LINKMARK_AWS_REGION", c.AWSRegion)
	c.CloudFrontDomain = getenv("LINKMARK_CLOUDFRONT_DOMAIN", c.CloudFrontDomain)

	c.RedisAddr = getenv("LINKMARK_REDIS_ADDR", c.RedisAddr)
	c.RedisPassword = getenv("LINKMARK_REDIS_PASSWORD", c.RedisPassword)
	c.RedisDB = getenvInt("LINKMARK_REDIS_DB", c.RedisDB)
	c.CacheTTL = mustDuration("LINKMARK_CACHE_TTL", c.CacheTTL)

	c.LinkCheckTimeout = mustDuration("LINKMARK_LINK_CHECK_TIMEOUT", c.LinkCheckTimeout)
	c.LinkCheckBatchSize = getenvInt("LINKMARK_LINK_CHECK_BATCH_SIZE", c.LinkCheckBatchSize)
	c.AuditInterval = mustDuration("LINKMARK_AUDIT_INTERVAL", c.AuditInterval)
}

// StorageConfigured reports whether asset re-hosting can run at all.
func (c *Config) StorageConfigured() bool { return c.S3Bucket != "" }

// AsyncConfigured reports whether the out-of-process hand-off is available.
func (c *Config) AsyncConfigured() bool { return c.NATSURL != "" }

// CacheConfigured reports whether the enrichment-result cache is available.
func (c *Config) CacheConfigured() bool { return c.RedisAddr != "" }

// helpers

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
