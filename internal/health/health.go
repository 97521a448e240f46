package health

import (
	"net/http"

	"github.com/heptiolabs/healthcheck"
	"go.uber.org/zap"

	"msgapi/backend/internal/storage"
)

// Checker 健康检查器
type Checker struct {
	health    healthcheck.Handler
	store     storage.Store
	rateLimit storage.RateLimitRepository
	logger    *zap.Logger
}

// NewChecker 创建健康检查器
//
// rateLimit 允许为 nil（未启用 Redis 限流时）。
func NewChecker(store storage.Store, rateLimit storage.RateLimitRepository, logger *zap.Logger) *Checker {
	c := &Checker{
		health:    healthcheck.NewHandler(),
		store:     store,
		rateLimit: rateLimit,
		logger:    logger,
	}

	c.addChecks()
	return c
}

// addChecks 添加健康检查
func (c *Checker) addChecks() {
	// 存储后端检查
	c.health.AddReadinessCheck("storage", func() error {
		return c.store.Health()
	})

	// 限流后端检查
	if c.rateLimit != nil {
		c.health.AddReadinessCheck("ratelimit", func() error {
			_, err := c.rateLimit.GetRateLimit("health_check")
			return err
		})
	}
}

// LiveHandler 返回存活探针处理器
func (c *Checker) LiveHandler() http.HandlerFunc {
	return c.health.LiveEndpoint
}

// ReadyHandler 返回就绪探针处理器
func (c *Checker) ReadyHandler() http.HandlerFunc {
	return c.health.ReadyEndpoint
}
