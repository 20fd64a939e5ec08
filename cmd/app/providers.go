package main

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/diabetes-risk/internal/domain/admin"
	"github.com/yanqian/diabetes-risk/internal/domain/records"
	"github.com/yanqian/diabetes-risk/internal/domain/risk"
	"github.com/yanqian/diabetes-risk/internal/infra/archive"
	"github.com/yanqian/diabetes-risk/internal/infra/config"
	"github.com/yanqian/diabetes-risk/internal/infra/events"
	"github.com/yanqian/diabetes-risk/internal/infra/recordrepo"
	"github.com/yanqian/diabetes-risk/internal/infra/resultstore"
	"github.com/yanqian/diabetes-risk/internal/infra/submission"
)

func provideRiskConfig(cfg *config.Config) risk.Config {
	return risk.Config{
		RequireVitals: cfg.Scoring.RequireVitals,
		SubmitTimeout: cfg.Submission.Timeout,
		ResultTTL:     cfg.Results.TTL,
	}
}

func provideRecordsConfig(cfg *config.Config) records.Config {
	return records.Config{
		DefaultLimit: cfg.Records.DefaultLimit,
		MaxLimit:     cfg.Records.MaxLimit,
	}
}

func provideAdminConfig(cfg *config.Config) admin.Config {
	return admin.Config{
		Username:     cfg.Admin.Username,
		PasswordHash: cfg.Admin.PasswordHash,
		Secret:       cfg.Admin.JWTSecret,
		TokenTTL:     cfg.Admin.TokenTTL,
	}
}

func provideResultStore(cfg *config.Config, logger *slog.Logger) (risk.ResultStore, func()) {
	if cfg.Results.Redis.Enabled {
		opt, err := buildValkeyOptions(cfg)
		if err != nil {
			logger.Error("invalid valkey configuration, falling back to memory store", "error", err)
			return resultstore.NewMemoryStore(cfg.Results.Prefix), func() {}
		}
		client, err := valkey.NewClient(opt)
		if err != nil {
			logger.Error("failed to create valkey client, falling back to memory store", "error", err)
			return resultstore.NewMemoryStore(cfg.Results.Prefix), func() {}
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
			logger.Error("valkey ping failed, falling back to memory store", "error", err)
			client.Close()
		} else {
			logger.Info("result valkey store enabled", "addr", cfg.Results.Redis.Addr)
			return resultstore.NewValkeyStore(client, cfg.Results.Prefix, logger), client.Close
		}
	}
	return resultstore.NewMemoryStore(cfg.Results.Prefix), func() {}
}

func buildValkeyOptions(cfg *config.Config) (valkey.ClientOption, error) {
	var (
		opt valkey.ClientOption
		err error
	)
	if strings.Contains(cfg.Results.Redis.Addr, "://") {
		opt, err = valkey.ParseURL(cfg.Results.Redis.Addr)
	} else {
		opt = valkey.ClientOption{InitAddress: []string{cfg.Results.Redis.Addr}}
	}
	if err != nil {
		return valkey.ClientOption{}, err
	}
	return opt, nil
}

// provideRecordRepository opens the configured backend. Unlike the result
// store it fails hard: silently dropping saved records is not acceptable.
func provideRecordRepository(cfg *config.Config, logger *slog.Logger) (records.Repository, func(), error) {
	switch cfg.Records.Backend {
	case config.RecordBackendPostgres:
		return providePostgresRecords(cfg, logger)
	case config.RecordBackendSQLite:
		if err := os.MkdirAll(filepath.Dir(cfg.Records.SQLitePath), 0o755); err != nil {
			return nil, nil, err
		}
		if cfg.Records.AutoMigrate {
			if _, err := recordrepo.Migrate(recordrepo.BackendSQLite, cfg.Records.SQLitePath, -1, logger); err != nil {
				return nil, nil, err
			}
		}
		db, err := recordrepo.OpenSQLite(context.Background(), cfg.Records.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("sqlite record repository enabled", "path", cfg.Records.SQLitePath)
		return recordrepo.NewSQLiteRepository(db), func() { _ = db.Close() }, nil
	default:
		logger.Info("record backend is memory, records are lost on restart")
		return recordrepo.NewMemoryRepository(), func() {}, nil
	}
}

func providePostgresRecords(cfg *config.Config, logger *slog.Logger) (records.Repository, func(), error) {
	dsn := strings.TrimSpace(cfg.Records.Postgres.DSN)
	if cfg.Records.AutoMigrate {
		if _, err := recordrepo.Migrate(recordrepo.BackendPostgres, dsn, -1, logger); err != nil {
			return nil, nil, err
		}
	}
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, nil, err
	}
	if cfg.Records.Postgres.MaxConns > 0 {
		poolConfig.MaxConns = cfg.Records.Postgres.MaxConns
	}
	if cfg.Records.Postgres.MinConns > 0 {
		poolConfig.MinConns = cfg.Records.Postgres.MinConns
	}
	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		return nil, nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}
	logger.Info("postgres record repository enabled")
	return recordrepo.NewPostgresRepository(pool), pool.Close, nil
}

func provideSubmissionSink(cfg *config.Config, logger *slog.Logger) risk.Sink {
	if !cfg.Submission.Enabled {
		logger.Info("submission disabled, assessments stay local")
		return nil
	}
	return submission.NewClient(cfg.Submission.BaseURL, cfg.Submission.Timeout, logger)
}

func provideArchiver(cfg *config.Config, logger *slog.Logger) records.Archiver {
	if !cfg.Archive.Enabled {
		return nil
	}
	archiver, err := archive.NewMinioArchiver(archive.Options{
		Endpoint:  cfg.Archive.Endpoint,
		AccessKey: cfg.Archive.AccessKey,
		SecretKey: cfg.Archive.SecretKey,
		Bucket:    cfg.Archive.Bucket,
		Region:    cfg.Archive.Region,
		Prefix:    cfg.Archive.Prefix,
	}, logger)
	if err != nil {
		logger.Error("failed to initialize record archive, archiving disabled", "error", err)
		return nil
	}
	logger.Info("record archive enabled", "bucket", cfg.Archive.Bucket)
	return archiver
}

func providePublisher(cfg *config.Config, logger *slog.Logger) (records.Publisher, func()) {
	if !cfg.Events.Enabled {
		return nil, func() {}
	}
	publisher := events.NewKafkaPublisher(cfg.Events.Brokers, cfg.Events.Topic, logger)
	logger.Info("record events enabled", "topic", cfg.Events.Topic)
	return publisher, func() {
		if err := publisher.Close(); err != nil {
			logger.Warn("kafka writer close failed", "error", err)
		}
	}
}
