//go:build wireinject
// +build wireinject

package di

import (
	"TreasureEngine/pkg/config"
	"TreasureEngine/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideCapabilities,
		ProvideNetworkGate,
		ProvideMetrics,

		// infrastructure clients
		ProvideClickHouseClient,
		ProvideRedisClient,
		ProvideKafkaProducer,

		// repositories
		ProvideMarketStore,
		ProvideReplaySource,
		ProvideFillSource,
		ProvideOverfitSource,
		ProvideReportArchive,
		ProvideReportCache,
		ProvideReportStore,
		ProvideReportPublisher,

		// use cases
		ProvidePaperSession,
		ProvideCanaryController,
		ProvideCanaryService,
		ProvideKafkaConsumer,
		ProvideQueue,
		ProvideTickRecorder,

		// transport
		ProvideRateLimiter,
		ProvideHTTPHandler,
		ProvideApp,
	)
	return &server.App{}, nil
}
