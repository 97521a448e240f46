package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"msgapi/backend/internal/storage"
)

// RateLimitByIP 基于客户端 IP 的固定窗口限流中间件
//
// 计数由 RateLimitRepository 维护（Redis 或内存实现），
// repo 为 nil 时中间件退化为直通。
func RateLimitByIP(repo storage.RateLimitRepository, limit int64, window time.Duration, log *zap.Logger) gin.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}

	return func(c *gin.Context) {
		if repo == nil {
			c.Next()
			return
		}

		key := "ratelimit:" + c.ClientIP()
		count, err := repo.IncrementRateLimit(key, window)
		if err != nil {
			// 限流后端故障时放行请求，只记录日志
			log.Warn("rate limit backend error",
				zap.String("ip", c.ClientIP()),
				zap.Error(err),
			)
			c.Next()
			return
		}

		if count > limit {
			log.Warn("rate limit exceeded",
				zap.String("ip", c.ClientIP()),
				zap.Int64("count", count),
			)
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error": "too many requests",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
