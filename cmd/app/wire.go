//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/yanqian/diabetes-risk/internal/bootstrap"
	"github.com/yanqian/diabetes-risk/internal/domain/admin"
	"github.com/yanqian/diabetes-risk/internal/domain/records"
	"github.com/yanqian/diabetes-risk/internal/domain/risk"
	"github.com/yanqian/diabetes-risk/internal/infra/config"
	httpiface "github.com/yanqian/diabetes-risk/internal/interface/http"
	"github.com/yanqian/diabetes-risk/pkg/logger"
	"github.com/yanqian/diabetes-risk/pkg/metrics"
)

func initializeApp() (*bootstrap.App, func(), error) {
	wire.Build(
		config.Load,
		logger.New,
		metrics.NewRecorder,
		provideRiskConfig,
		provideRecordsConfig,
		provideAdminConfig,
		provideResultStore,
		provideRecordRepository,
		provideSubmissionSink,
		provideArchiver,
		providePublisher,
		risk.NewService,
		records.NewService,
		admin.NewService,
		wire.Bind(new(risk.Recorder), new(*metrics.Recorder)),
		wire.Bind(new(records.Recorder), new(*metrics.Recorder)),
		httpiface.NewHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil, nil
}
