//go:build wireinject
// +build wireinject

package di

import (
	"SignalForge/pkg/config"
	"SignalForge/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Ambient infrastructure
		ProvideLogger,
		ProvideTrail,
		ProvideMetrics,
		ProvideCache,

		// Domain configuration
		ProvideAssets,
		ProvideIndicators,

		// Market data and state
		ProvideProviders,
		ProvideStateStore,
		ProvideStateReader,
		ProvideStateWriter,

		// Outbound channels
		ProvideAlerter,
		ProvidePublisher,

		// Use cases
		ProvideAcquirer,
		ProvideConsensus,
		ProvideOrchestrator,
		ProvideScheduler,

		// HTTP surface and application
		ProvideHandler,
		ProvideApp,
	)
	return &server.App{}, nil
}
