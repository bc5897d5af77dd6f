package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/AltKhyin/reviewcanvas/internal/canvas"
	"github.com/AltKhyin/reviewcanvas/internal/pkg/logger"
)

// RenderCache stores computed render plans for published reviews, keyed by
// review id and viewport. Saves invalidate both viewports so readers never see
// a plan computed from a superseded document.
type RenderCache interface {
	GetPlan(ctx context.Context, reviewID int64, viewport canvas.Viewport) (*canvas.RenderPlan, bool)
	SetPlan(ctx context.Context, reviewID int64, viewport canvas.Viewport, plan *canvas.RenderPlan)
	Invalidate(ctx context.Context, reviewID int64)
	Close() error
}

type renderCache struct {
	log *logger.Logger
	rdb *goredis.Client
	ttl time.Duration
}

// NewRenderCache connects using REDIS_ADDR. Missing address is an error; the
// caller decides whether to run without a cache.
func NewRenderCache(log *logger.Logger) (RenderCache, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &renderCache{
		log: log.With("service", "RedisRenderCache"),
		rdb: rdb,
		ttl: 15 * time.Minute,
	}, nil
}

func planKey(reviewID int64, viewport canvas.Viewport) string {
	return fmt.Sprintf("review:%d:render:%s", reviewID, viewport)
}

func (c *renderCache) GetPlan(ctx context.Context, reviewID int64, viewport canvas.Viewport) (*canvas.RenderPlan, bool) {
	if c == nil || c.rdb == nil {
		return nil, false
	}
	raw, err := c.rdb.Get(ctx, planKey(reviewID, viewport)).Bytes()
	if err != nil {
		return nil, false
	}
	var plan canvas.RenderPlan
	if err := json.Unmarshal(raw, &plan); err != nil {
		c.log.Warn("bad cached render plan", "review_id", reviewID, "error", err)
		return nil, false
	}
	return &plan, true
}

func (c *renderCache) SetPlan(ctx context.Context, reviewID int64, viewport canvas.Viewport, plan *canvas.RenderPlan) {
	if c == nil || c.rdb == nil || plan == nil {
		return
	}
	raw, err := json.Marshal(plan)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, planKey(reviewID, viewport), raw, c.ttl).Err(); err != nil {
		c.log.Warn("render plan cache write failed", "review_id", reviewID, "error", err)
	}
}

func (c *renderCache) Invalidate(ctx context.Context, reviewID int64) {
	if c == nil || c.rdb == nil {
		return
	}
	keys := []string{
		planKey(reviewID, canvas.ViewportDesktop),
		planKey(reviewID, canvas.ViewportMobile),
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		c.log.Warn("render plan invalidation failed", "review_id", reviewID, "error", err)
	}
}

func (c *renderCache) Close() error {
	if c == nil || c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}
