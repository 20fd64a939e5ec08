package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestLoad_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
http:
  address: ":9090"
scoring:
  requireVitals: true
results:
  ttl: 2h
records:
  backend: sqlite
  sqlitePath: /tmp/records.db
events:
  brokers: ["kafka:9092"]
`), 0o600))

	t.Setenv("CONFIG_PATH", path)
	t.Setenv("RESULTS_TTL", "30m")
	t.Setenv("EVENTS_ENABLED", "true")
	t.Setenv("SUBMISSION_ENABLED", "1")
	t.Setenv("SUBMISSION_BASE_URL", "http://collector:8000")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.HTTP.Address)
	require.True(t, cfg.Scoring.RequireVitals)
	require.Equal(t, 30*time.Minute, cfg.Results.TTL)
	require.Equal(t, RecordBackendSQLite, cfg.Records.Backend)
	require.True(t, cfg.Events.Enabled)
	require.Equal(t, []string{"kafka:9092"}, cfg.Events.Brokers)
	require.Equal(t, "diabetes.records", cfg.Events.Topic)
	require.True(t, cfg.Submission.Enabled)
}

func TestApplyEnvOverrides_SplitsBrokers(t *testing.T) {
	cfg := Default()
	env := map[string]string{"EVENTS_BROKERS": " a:9092, ,b:9092 ", "RECORDS_POSTGRES_MAX_CONNS": "9"}
	applyEnvOverrides(cfg, func(k string) string { return env[k] })
	require.Equal(t, []string{"a:9092", "b:9092"}, cfg.Events.Brokers)
	require.Equal(t, int32(9), cfg.Records.Postgres.MaxConns)
}

func TestValidate_Rejections(t *testing.T) {
	cases := map[string]func(*Config){
		"unknown backend":          func(c *Config) { c.Records.Backend = "mongo" },
		"postgres without dsn":     func(c *Config) { c.Records.Backend = RecordBackendPostgres },
		"submission without url":   func(c *Config) { c.Submission.Enabled = true },
		"events without brokers":   func(c *Config) { c.Events.Enabled = true },
		"admin without secret":     func(c *Config) { c.Admin.Username = "nurse" },
		"redis without addr":       func(c *Config) { c.Results.Redis.Enabled = true },
		"archive without endpoint": func(c *Config) { c.Archive.Enabled = true },
		"limit above max":          func(c *Config) { c.Records.DefaultLimit = 1000 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			mutate(cfg)
			require.Error(t, cfg.Validate())
		})
	}
}

func TestShippedConfigIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, hydrateFromFile(cfg, filepath.Join("..", "..", "..", "configs", "config.yaml")))
	require.NoError(t, cfg.Validate())
	require.Equal(t, RecordBackendSQLite, cfg.Records.Backend)
	require.Equal(t, []string{"/api/v1/assessments/evaluate", "/api/v1/admin/login"}, cfg.HTTP.Retry.IdempotentPosts)
}
