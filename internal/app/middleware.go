package app

import (
	"github.com/AltKhyin/reviewcanvas/internal/middleware"
	"github.com/AltKhyin/reviewcanvas/internal/pkg/logger"
)

type Middleware struct {
	RequestLog *middleware.RequestLogMiddleware
}

func wireMiddleware(log *logger.Logger) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		RequestLog: middleware.NewRequestLogMiddleware(log),
	}
}
