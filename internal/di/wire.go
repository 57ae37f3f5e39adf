//go:build wireinject
// +build wireinject

package di

import (
	"StockPulse/pkg/config"
	"StockPulse/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Ambient
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideCache,
		ProvideReadThrough,
		ProvidePostgresClient,

		// Repositories
		ProvidePredictionStore,
		ProvideWatchlistStore,
		ProvideQuoteProvider,
		ProvideForecastProvider,
		ProvideSearchProvider,

		// Use cases
		ProvideQuoteService,
		ProvideSynthesizer,
		ProvideWatchlistService,
		ProvideAuditor,
		ProvideSearchService,

		// HTTP handlers
		ProvidePriceStream,
		ProvideDashboardHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
