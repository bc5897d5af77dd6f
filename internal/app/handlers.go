package app

import (
	"github.com/AltKhyin/reviewcanvas/internal/handlers"
	"github.com/AltKhyin/reviewcanvas/internal/pkg/logger"
)

type Handlers struct {
	Editor  *handlers.EditorHandler
	Session *handlers.SessionHandler
	Admin   *handlers.AdminHandler
}

func wireHandlers(log *logger.Logger, cfg Config, serviceset Services, clients Clients) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Editor:  handlers.NewEditorHandler(log, serviceset.Persistence, clients.RenderCache, cfg.MobileCanvasWidth),
		Session: handlers.NewSessionHandler(log, serviceset.Sessions),
		Admin:   handlers.NewAdminHandler(log, serviceset.Migrations),
	}
}
