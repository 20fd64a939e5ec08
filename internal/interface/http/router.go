package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/diabetes-risk/internal/domain/admin"
	"github.com/yanqian/diabetes-risk/internal/infra/config"
	"github.com/yanqian/diabetes-risk/pkg/metrics"
)

// NewRouter wires up the HTTP handlers and returns a configured server.
func NewRouter(cfg *config.Config, handler *Handler, adminSvc admin.Service, recorder *metrics.Recorder, logger *slog.Logger) *http.Server {
	gin.SetMode(gin.ReleaseMode)
	logger = logger.With("component", "http.router")

	router := gin.New()
	router.Use(
		gin.Recovery(),
		requestLogger(logger),
		metricsMiddleware(recorder),
		corsMiddleware(cfg.HTTP.AllowedOrigins),
		errorHandlingMiddleware(logger),
	)

	router.GET("/healthz", handler.Healthz)
	if cfg.Metrics.Enabled {
		router.GET(cfg.Metrics.Path, gin.WrapH(recorder.Handler()))
	}

	limited := router.Group("", rateLimitMiddleware(cfg.HTTP.RateLimit, logger))
	limited.POST("/api/save/", handler.SaveRecord)

	api := limited.Group("/api/v1")
	{
		api.POST("/assessments", handler.Assess)
		api.POST("/assessments/evaluate", handler.Evaluate)
		api.GET("/assessments/result", handler.Result)
		api.POST("/admin/login", handler.AdminLogin)
	}

	staff := api.Group("/admin", requireStaff(adminSvc))
	{
		staff.GET("/records", handler.ListRecords)
		staff.GET("/records/:id", handler.GetRecord)
	}

	return &http.Server{
		Addr:           cfg.HTTP.Address,
		Handler:        withRetry(router, cfg.HTTP.Retry, logger),
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}
}
