package internal

import (
	"buildwatch/internal/controllers"
	"buildwatch/internal/providers"
	"buildwatch/internal/services"
	"net/http"
)

func InitRoutes(
	titles *controllers.TitleController,
	announcements *controllers.AnnouncementController,
	templates *controllers.TemplateController,
	users *controllers.UserController,
	admin *controllers.AdminController,
	launcher *controllers.LauncherController,
	health *controllers.HealthController,
	authz services.AdminServiceInterface,
	logger providers.Logger,
) providers.RouterProviderInterface {
	routers := providers.NewRouterProvider()
	adminOnly := providers.AdminOnly(authz, logger)
	guarded := func(h http.HandlerFunc) http.Handler { return adminOnly(h) }

	routers.Get("/", http.HandlerFunc(health.Root))
	routers.Get("/status", http.HandlerFunc(health.Status))

	routers.Post("/webhook/update/{titleId}", http.HandlerFunc(titles.ReportVersion))
	routers.Get("/titles/{titleId}/version", http.HandlerFunc(titles.GetCurrent))
	routers.Get("/titles/{titleId}/versions", http.HandlerFunc(titles.GetVersions))
	routers.Get("/titles/{titleId}/versions/download", http.HandlerFunc(titles.Download))

	routers.Get("/announcements", http.HandlerFunc(announcements.List))
	routers.Post("/admin/announcements", guarded(announcements.Create))
	routers.Put("/admin/announcements/{id}", guarded(announcements.Edit))
	routers.Delete("/admin/announcements/{id}", guarded(announcements.Delete))

	routers.Get("/templates", http.HandlerFunc(templates.Get))
	routers.Post("/admin/templates", guarded(templates.Save))

	routers.Post("/admin/login", http.HandlerFunc(admin.Login))
	routers.Post("/admin/users", guarded(admin.Users))
	routers.Get("/admin/titles", guarded(admin.Titles))
	routers.Get("/admin/backup", guarded(admin.Backup))
	routers.Post("/admin/restore", guarded(admin.Restore))

	routers.Post("/users/register", http.HandlerFunc(users.Register))
	routers.Post("/users/login", http.HandlerFunc(users.Login))

	routers.Get("/launcher/poll", http.HandlerFunc(launcher.Poll))
	routers.Post("/launcher/launch", guarded(launcher.Launch))
	return routers
}
