package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Record store backends.
const (
	RecordBackendMemory   = "memory"
	RecordBackendPostgres = "postgres"
	RecordBackendSQLite   = "sqlite"
)

// Config aggregates runtime configuration used across the service.
type Config struct {
	HTTP       HTTPConfig       `yaml:"http"`
	Scoring    ScoringConfig    `yaml:"scoring"`
	Results    ResultsConfig    `yaml:"results"`
	Records    RecordsConfig    `yaml:"records"`
	Submission SubmissionConfig `yaml:"submission"`
	Archive    ArchiveConfig    `yaml:"archive"`
	Events     EventsConfig     `yaml:"events"`
	Admin      AdminConfig      `yaml:"admin"`
	Metrics    MetricsConfig    `yaml:"metrics"`
}

// HTTPConfig controls server level behavior.
type HTTPConfig struct {
	Address      string        `yaml:"address"`
	ReadTimeout  time.Duration `yaml:"readTimeout"`
	WriteTimeout time.Duration `yaml:"writeTimeout"`
	// AllowedOrigins lists CORS origins; empty allows any.
	AllowedOrigins []string        `yaml:"allowedOrigins"`
	RateLimit      RateLimitConfig `yaml:"rateLimit"`
	Retry          RetryConfig     `yaml:"retry"`
}

// RateLimitConfig drives the request limiting middleware.
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requestsPerMinute"`
	Burst             int  `yaml:"burst"`
}

// RetryConfig configures server-side retries of transient 5xx responses.
// GET requests are always eligible; POSTs only when listed in IdempotentPosts.
type RetryConfig struct {
	Enabled         bool          `yaml:"enabled"`
	MaxAttempts     int           `yaml:"maxAttempts"`
	BaseBackoff     time.Duration `yaml:"baseBackoff"`
	IdempotentPosts []string      `yaml:"idempotentPosts"`
	Exclude         []string      `yaml:"exclude"`
}

// ScoringConfig tunes form validation.
type ScoringConfig struct {
	RequireVitals bool `yaml:"requireVitals"`
}

// ResultsConfig controls the per-session result slot.
type ResultsConfig struct {
	TTL    time.Duration `yaml:"ttl"`
	Prefix string        `yaml:"prefix"`
	Redis  RedisConfig   `yaml:"redis"`
}

// RedisConfig contains connection information for the result slot store.
type RedisConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// RecordsConfig selects and tunes the record collector storage.
type RecordsConfig struct {
	Backend      string         `yaml:"backend"`
	AutoMigrate  bool           `yaml:"autoMigrate"`
	SQLitePath   string         `yaml:"sqlitePath"`
	Postgres     PostgresConfig `yaml:"postgres"`
	DefaultLimit int            `yaml:"defaultLimit"`
	MaxLimit     int            `yaml:"maxLimit"`
}

// PostgresConfig contains DSN and pooling settings.
type PostgresConfig struct {
	DSN      string `yaml:"dsn"`
	MaxConns int32  `yaml:"maxConns"`
	MinConns int32  `yaml:"minConns"`
}

// SubmissionConfig points the fire-and-forget submission at a collector.
type SubmissionConfig struct {
	Enabled bool          `yaml:"enabled"`
	BaseURL string        `yaml:"baseUrl"`
	Timeout time.Duration `yaml:"timeout"`
}

// ArchiveConfig describes the S3-compatible record archive.
type ArchiveConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"accessKey"`
	SecretKey string `yaml:"secretKey"`
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	Prefix    string `yaml:"prefix"`
}

// EventsConfig describes the Kafka topic for record events.
type EventsConfig struct {
	Enabled bool     `yaml:"enabled"`
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

// AdminConfig holds the staff account used for the record listing.
type AdminConfig struct {
	Username     string        `yaml:"username"`
	PasswordHash string        `yaml:"passwordHash"`
	JWTSecret    string        `yaml:"jwtSecret"`
	TokenTTL     time.Duration `yaml:"tokenTtl"`
}

// MetricsConfig toggles the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// Load reads configuration from a YAML file and environment variables.
func Load() (*Config, error) {
	cfg := Default()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := hydrateFromFile(cfg, path); err != nil {
			return nil, err
		}
	} else if _, err := os.Stat("configs/config.yaml"); err == nil {
		if err := hydrateFromFile(cfg, "configs/config.yaml"); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg, os.Getenv)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func hydrateFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config, getenv func(string) string) {
	str := func(key string, dst *string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
	boolean := func(key string, dst *bool) {
		if v := getenv(key); v != "" {
			*dst = v == "1" || strings.EqualFold(v, "true")
		}
	}
	integer := func(key string, dst *int) {
		if v := getenv(key); v != "" {
			if parsed, err := strconv.Atoi(v); err == nil {
				*dst = parsed
			}
		}
	}
	duration := func(key string, dst *time.Duration) {
		if v := getenv(key); v != "" {
			if parsed, err := time.ParseDuration(v); err == nil {
				*dst = parsed
			}
		}
	}

	str("HTTP_ADDRESS", &cfg.HTTP.Address)
	if v := getenv("HTTP_ALLOWED_ORIGINS"); v != "" {
		cfg.HTTP.AllowedOrigins = splitList(v)
	}
	boolean("HTTP_RATE_LIMIT_ENABLED", &cfg.HTTP.RateLimit.Enabled)
	integer("HTTP_RATE_LIMIT_RPM", &cfg.HTTP.RateLimit.RequestsPerMinute)
	integer("HTTP_RATE_LIMIT_BURST", &cfg.HTTP.RateLimit.Burst)
	boolean("HTTP_RETRY_ENABLED", &cfg.HTTP.Retry.Enabled)
	integer("HTTP_RETRY_MAX_ATTEMPTS", &cfg.HTTP.Retry.MaxAttempts)
	duration("HTTP_RETRY_BASE_BACKOFF", &cfg.HTTP.Retry.BaseBackoff)

	boolean("SCORING_REQUIRE_VITALS", &cfg.Scoring.RequireVitals)

	duration("RESULTS_TTL", &cfg.Results.TTL)
	str("RESULTS_PREFIX", &cfg.Results.Prefix)
	boolean("RESULTS_REDIS_ENABLED", &cfg.Results.Redis.Enabled)
	str("RESULTS_REDIS_ADDR", &cfg.Results.Redis.Addr)

	str("RECORDS_BACKEND", &cfg.Records.Backend)
	boolean("RECORDS_AUTO_MIGRATE", &cfg.Records.AutoMigrate)
	str("RECORDS_SQLITE_PATH", &cfg.Records.SQLitePath)
	str("RECORDS_POSTGRES_DSN", &cfg.Records.Postgres.DSN)
	if v := getenv("RECORDS_POSTGRES_MAX_CONNS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Records.Postgres.MaxConns = int32(parsed)
		}
	}

	boolean("SUBMISSION_ENABLED", &cfg.Submission.Enabled)
	str("SUBMISSION_BASE_URL", &cfg.Submission.BaseURL)
	duration("SUBMISSION_TIMEOUT", &cfg.Submission.Timeout)

	boolean("ARCHIVE_ENABLED", &cfg.Archive.Enabled)
	str("ARCHIVE_ENDPOINT", &cfg.Archive.Endpoint)
	str("ARCHIVE_ACCESS_KEY", &cfg.Archive.AccessKey)
	str("ARCHIVE_SECRET_KEY", &cfg.Archive.SecretKey)
	str("ARCHIVE_BUCKET", &cfg.Archive.Bucket)
	str("ARCHIVE_REGION", &cfg.Archive.Region)

	boolean("EVENTS_ENABLED", &cfg.Events.Enabled)
	if v := getenv("EVENTS_BROKERS"); v != "" {
		cfg.Events.Brokers = splitList(v)
	}
	str("EVENTS_TOPIC", &cfg.Events.Topic)

	str("ADMIN_USERNAME", &cfg.Admin.Username)
	str("ADMIN_PASSWORD_HASH", &cfg.Admin.PasswordHash)
	str("ADMIN_JWT_SECRET", &cfg.Admin.JWTSecret)
	duration("ADMIN_TOKEN_TTL", &cfg.Admin.TokenTTL)

	boolean("METRICS_ENABLED", &cfg.Metrics.Enabled)
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Default returns the configuration used when no file or env override applies.
func Default() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Address:      ":8080",
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 5 * time.Second,
			RateLimit: RateLimitConfig{
				Enabled:           true,
				RequestsPerMinute: 120,
				Burst:             30,
			},
			Retry: RetryConfig{
				Enabled:     true,
				MaxAttempts: 3,
				BaseBackoff: 150 * time.Millisecond,
				IdempotentPosts: []string{
					"/api/v1/assessments/evaluate",
					"/api/v1/admin/login",
				},
				Exclude: []string{
					"/metrics",
					"/healthz",
				},
			},
		},
		Results: ResultsConfig{
			TTL:    24 * time.Hour,
			Prefix: "risk",
		},
		Records: RecordsConfig{
			Backend:      RecordBackendMemory,
			AutoMigrate:  true,
			SQLitePath:   "data/records.db",
			DefaultLimit: 50,
			MaxLimit:     500,
			Postgres: PostgresConfig{
				MaxConns: 4,
			},
		},
		Submission: SubmissionConfig{
			Timeout: 10 * time.Second,
		},
		Archive: ArchiveConfig{
			Bucket: "diabetes-records",
			Prefix: "records",
		},
		Events: EventsConfig{
			Topic: "diabetes.records",
		},
		Admin: AdminConfig{
			TokenTTL: 8 * time.Hour,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}

// Validate ensures the configuration is safe to use.
func (c *Config) Validate() error {
	if c.HTTP.Address == "" {
		return errors.New("http.address cannot be empty")
	}
	if c.HTTP.RateLimit.Enabled {
		if c.HTTP.RateLimit.RequestsPerMinute <= 0 {
			return errors.New("http.rateLimit.requestsPerMinute must be positive")
		}
		if c.HTTP.RateLimit.Burst <= 0 {
			return errors.New("http.rateLimit.burst must be positive")
		}
	}
	if c.HTTP.Retry.Enabled {
		if c.HTTP.Retry.MaxAttempts <= 0 {
			return errors.New("http.retry.maxAttempts must be positive")
		}
		if c.HTTP.Retry.BaseBackoff <= 0 {
			return errors.New("http.retry.baseBackoff must be positive")
		}
	}
	if c.Results.TTL < 0 {
		return errors.New("results.ttl cannot be negative")
	}
	if c.Results.Redis.Enabled && strings.TrimSpace(c.Results.Redis.Addr) == "" {
		return errors.New("results.redis.addr cannot be empty when redis is enabled")
	}
	switch c.Records.Backend {
	case RecordBackendMemory:
	case RecordBackendPostgres:
		if strings.TrimSpace(c.Records.Postgres.DSN) == "" {
			return errors.New("records.postgres.dsn cannot be empty for the postgres backend")
		}
	case RecordBackendSQLite:
		if strings.TrimSpace(c.Records.SQLitePath) == "" {
			return errors.New("records.sqlitePath cannot be empty for the sqlite backend")
		}
	default:
		return fmt.Errorf("records.backend %q is not one of memory, postgres, sqlite", c.Records.Backend)
	}
	if c.Records.DefaultLimit <= 0 || c.Records.MaxLimit < c.Records.DefaultLimit {
		return errors.New("records.defaultLimit must be positive and not exceed records.maxLimit")
	}
	if c.Submission.Enabled && strings.TrimSpace(c.Submission.BaseURL) == "" {
		return errors.New("submission.baseUrl cannot be empty when submission is enabled")
	}
	if c.Submission.Timeout < 0 {
		return errors.New("submission.timeout cannot be negative")
	}
	if c.Archive.Enabled && (strings.TrimSpace(c.Archive.Endpoint) == "" || strings.TrimSpace(c.Archive.Bucket) == "") {
		return errors.New("archive.endpoint and archive.bucket are required when archive is enabled")
	}
	if c.Events.Enabled {
		if len(c.Events.Brokers) == 0 {
			return errors.New("events.brokers cannot be empty when events are enabled")
		}
		if strings.TrimSpace(c.Events.Topic) == "" {
			return errors.New("events.topic cannot be empty when events are enabled")
		}
	}
	if c.Admin.Username != "" && (c.Admin.PasswordHash == "" || c.Admin.JWTSecret == "") {
		return errors.New("admin.passwordHash and admin.jwtSecret are required when admin.username is set")
	}
	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		return errors.New("metrics.path must start with /")
	}
	return nil
}
