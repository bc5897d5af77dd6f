package app

import (
	"github.com/AltKhyin/reviewcanvas/internal/pkg/logger"
	"github.com/AltKhyin/reviewcanvas/internal/services"
)

type Services struct {
	Persistence services.ContentPersistenceService
	Migrations  services.MigrationService
	Sessions    services.SessionManager
}

func wireServices(log *logger.Logger, cfg Config, reposet Repos, clients Clients) Services {
	log.Info("Wiring services...")

	var invalidator services.CacheInvalidator
	if clients.RenderCache != nil {
		invalidator = clients.RenderCache
	}

	persistence := services.NewContentPersistenceService(log, reposet.Review, cfg.SavePolicy, invalidator)
	migrations := services.NewMigrationService(log, reposet.Review, persistence)
	sessions := services.NewSessionManager(log, persistence, cfg.AutosaveIdle)

	return Services{
		Persistence: persistence,
		Migrations:  migrations,
		Sessions:    sessions,
	}
}
