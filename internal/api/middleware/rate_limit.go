package middleware

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	applogger "github.com/rajib3777/academia-sub001/pkg/logger"
	"github.com/rajib3777/academia-sub001/pkg/response"
)

// Limiter 固定窗口计数器
type Limiter interface {
	CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// RateLimit 按客户端 IP + 路由计数的限流中间件
// limit: 窗口内允许的最大请求数
// window: 窗口时长
// limiter 为 nil 或 Redis 出错时降级放行，出错记 Warn
func RateLimit(limiter Limiter, limit int, window time.Duration, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil {
			c.Next()
			return
		}

		key := fmt.Sprintf("rate_limit:%s:%s", c.ClientIP(), c.FullPath())
		allowed, err := limiter.CheckRateLimit(c.Request.Context(), key, limit, window)
		if err != nil {
			applogger.FromContext(c.Request.Context(), logger).Warn("限流计数失败，降级放行",
				zap.String("key", key), zap.Error(err))
		}
		if err == nil && !allowed {
			response.TooManyRequests(c, 10004, "请求过于频繁，请稍后再试")
			c.Abort()
			return
		}

		c.Next()
	}
}
