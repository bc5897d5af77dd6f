package app

import (
	"github.com/AltKhyin/reviewcanvas/internal/clients/redis"
	"github.com/AltKhyin/reviewcanvas/internal/pkg/logger"
)

type Clients struct {
	// RenderCache is nil when REDIS_ADDR is unset; rendering then always
	// recomputes.
	RenderCache redis.RenderCache
}

func wireClients(log *logger.Logger) Clients {
	cache, err := redis.NewRenderCache(log)
	if err != nil {
		log.Warn("Render cache disabled", "error", err)
		cache = nil
	}
	return Clients{RenderCache: cache}
}
