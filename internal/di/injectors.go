//go:build wireinject
// +build wireinject

package di

import (
	wire "github.com/google/wire"

	"github.com/lockedloop/tempus-fugit/internal"
	"github.com/lockedloop/tempus-fugit/internal/controllers"
	"github.com/lockedloop/tempus-fugit/internal/providers"
	"github.com/lockedloop/tempus-fugit/internal/services"
	"github.com/lockedloop/tempus-fugit/internal/storage"
	"github.com/lockedloop/tempus-fugit/internal/structures"
)

func InitApp(cfg *structures.CliFlags) (*internal.App, error) {

	wire.Build(
		providers.NewConfigProvider,
		providers.NewLogProvider,
		providers.NewMetricsProvider,
		providers.NewInstrumentedCacheProvider,

		storage.NewZstdCompressor,
		storage.NewFileBackend,
		storage.NewSyncBackend,
		storage.NewStore,
		services.NewContainerService,
		services.NewScheduler,
		controllers.NewApiController,
		controllers.NewHealthController,
		internal.InitRoutes,
		internal.NewApp,
	)

	return nil, nil
}
