//go:build wireinject
// +build wireinject

package di

import (
	"CryptoPulse/internal/domain/repository"
	"CryptoPulse/pkg/config"
	"CryptoPulse/pkg/metrics"
	"CryptoPulse/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Metrics
		ProvideRegistry,
		ProvideMetrics,
		wire.Bind(new(repository.Metrics), new(*metrics.Recorder)),

		// Infrastructure clients
		ProvideKafkaProducer,
		ProvideLogger,
		ProvideClickHouseClient,
		ProvideCache,

		// Repositories
		ProvideSnapshotStore,
		ProvideReportStore,

		// External services
		ProvideRateLimiter,
		ProvideQuoteSource,
		ProvideNotifier,
		ProvideTradeExecutor,

		// Use cases
		ProvideTickAnalyzer,
		ProvideDispatcher,
		ProvideStreamHub,
		ProvidePipeline,
		ProvideDisplay,
		ProvidePoller,

		// Application server
		ProvideHTTPServer,
		ProvideClosers,
		ProvideApp,
	)
	return &server.App{}, nil
}
