//go:build wireinject
// +build wireinject

package di

import (
	"buildwatch/internal"
	"buildwatch/internal/controllers"
	"buildwatch/internal/itch"
	"buildwatch/internal/launcher"
	"buildwatch/internal/providers"
	"buildwatch/internal/services"
	"buildwatch/internal/storage"
	"buildwatch/internal/structures"
	"buildwatch/internal/watcher"

	wire "github.com/google/wire"
)

func InitApp(cfg *structures.CliFlags) (*internal.App, error) {

	wire.Build(
		providers.NewConfigProvider,
		providers.NewLogProvider,
		providers.NewMetricsProvider,
		providers.NewInstrumentedCacheProvider,
		providers.NewRateLimiter,

		storage.NewStore,
		storage.NewZstdCompressor,
		itch.NewClient,

		services.NewTokenManager,
		services.NewTemplateService,
		services.NewAnnouncementService,
		services.NewTitleService,
		services.NewUserService,
		services.NewAdminService,
		services.NewBackupService,

		watcher.NewReconciler,
		watcher.NewStatusTracker,
		watcher.NewNotifier,
		watcher.NewScheduler,
		wire.Bind(new(watcher.Announcer), new(services.AnnouncementServiceInterface)),
		wire.Bind(new(watcher.ReconcilerInterface), new(*watcher.Reconciler)),
		wire.Bind(new(services.VersionReconciler), new(*watcher.Reconciler)),

		launcher.NewMailbox,
		wire.Bind(new(launcher.MailboxInterface), new(*launcher.Mailbox)),

		controllers.NewTitleController,
		controllers.NewAnnouncementController,
		controllers.NewTemplateController,
		controllers.NewUserController,
		controllers.NewAdminController,
		controllers.NewLauncherController,
		controllers.NewHealthController,
		internal.InitRoutes,
		internal.NewApp,
	)

	return nil, nil
}
