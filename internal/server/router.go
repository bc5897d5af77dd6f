package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/AltKhyin/reviewcanvas/internal/handlers"
	"github.com/AltKhyin/reviewcanvas/internal/middleware"
)

type RouterConfig struct {
	EditorHandler        *handlers.EditorHandler
	SessionHandler       *handlers.SessionHandler
	AdminHandler         *handlers.AdminHandler
	RequestLogMiddleware *middleware.RequestLogMiddleware
	ServiceName          string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	if cfg.RequestLogMiddleware != nil {
		router.Use(cfg.RequestLogMiddleware.Handler())
	}
	router.Use(otelgin.Middleware(cfg.ServiceName))

	// Cors
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			"http://localhost:80",
			"http://localhost:3000",
			"http://localhost:5174",
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	router.GET("/healthcheck", handlers.HealthCheck)

	api := router.Group("/api")
	{
		reviews := api.Group("/reviews/:id")
		{
			reviews.GET("/editor-content", cfg.EditorHandler.GetContent)
			reviews.PUT("/editor-content", cfg.EditorHandler.PutContent)
			reviews.GET("/rendered", cfg.EditorHandler.GetRendered)

			session := reviews.Group("/session")
			{
				session.POST("/open", cfg.SessionHandler.Open)
				session.POST("/close", cfg.SessionHandler.Close)
				session.POST("/save", cfg.SessionHandler.Save)
				session.GET("", cfg.SessionHandler.State)

				session.POST("/nodes", cfg.SessionHandler.AddNode)
				session.PATCH("/nodes/:nodeId", cfg.SessionHandler.UpdateNode)
				session.PUT("/nodes/:nodeId/position", cfg.SessionHandler.MoveNode)
				session.DELETE("/nodes/:nodeId", cfg.SessionHandler.DeleteNode)
				session.POST("/nodes/:nodeId/duplicate", cfg.SessionHandler.DuplicateNode)

				session.POST("/selection", cfg.SessionHandler.Select)
				session.DELETE("/selection", cfg.SessionHandler.ClearSelection)
				session.PUT("/selection/rect", cfg.SessionHandler.SetSelectionRect)
				session.POST("/focus", cfg.SessionHandler.Focus)
			}
		}

		admin := api.Group("/admin")
		{
			admin.POST("/migrations/table-blocks", cfg.AdminHandler.RunTableBlockMigration)
		}
	}

	return router
}
