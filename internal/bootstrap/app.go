package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/yanqian/diabetes-risk/internal/domain/risk"
	"github.com/yanqian/diabetes-risk/internal/infra/config"
)

const shutdownTimeout = 10 * time.Second

// App owns the HTTP server and the background submissions started by it.
type App struct {
	cfg     *config.Config
	logger  *slog.Logger
	server  *http.Server
	riskSvc risk.Service
}

// NewApp is used by Wire to build the runnable app.
func NewApp(cfg *config.Config, logger *slog.Logger, server *http.Server, riskSvc risk.Service) *App {
	return &App{cfg: cfg, logger: logger.With("component", "bootstrap"), server: server, riskSvc: riskSvc}
}

// Run serves until ctx is cancelled or the listener fails. On shutdown it
// stops accepting requests, then waits for pending collector submissions.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("http server starting",
			"address", a.cfg.HTTP.Address,
			"records_backend", a.cfg.Records.Backend,
			"submission", a.cfg.Submission.Enabled,
			"result_store_redis", a.cfg.Results.Redis.Enabled,
		)
		errCh <- a.server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	a.logger.Info("shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var errs []error
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, err)
	}
	if err := a.riskSvc.Drain(shutdownCtx); err != nil {
		a.logger.Warn("pending submissions abandoned", "error", err)
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
