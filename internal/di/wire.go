//go:build wireinject
// +build wireinject

package di

import (
	"github.com/google/wire"

	"MarketPulse/internal/usecase"
	"MarketPulse/pkg/config"
	"MarketPulse/pkg/server"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Observability
		ProvideLogger,
		ProvideRegistry,
		ProvideMetrics,
		ProvideEndpointMetrics,

		// Infrastructure clients
		ProvideMarketGateway,
		ProvideSnapshotPublisher,
		ProvideInsightProvider,

		// Engines
		ProvideHolt,
		ProvideAnalyzer,
		ProvideLatencyTracker,

		// Use cases
		usecase.NewMarketService,
		usecase.NewInsightService,
		ProvideIndicatorService,
		ProvidePredictionService,
		ProvideWarmer,

		// Transport
		ProvideRateLimiter,
		ProvideStreamHandler,
		ProvideMarketHandler,
		ProvideHTTPServer,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
