package app

import (
	"github.com/gin-gonic/gin"

	"github.com/AltKhyin/reviewcanvas/internal/server"
)

func wireRouter(handlerset Handlers, mw Middleware) *gin.Engine {
	return server.NewRouter(server.RouterConfig{
		EditorHandler:        handlerset.Editor,
		SessionHandler:       handlerset.Session,
		AdminHandler:         handlerset.Admin,
		RequestLogMiddleware: mw.RequestLog,
		ServiceName:          "reviewcanvas",
	})
}
