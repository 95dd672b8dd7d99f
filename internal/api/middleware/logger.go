package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	applogger "github.com/rajib3777/academia-sub001/pkg/logger"
)

// Logger 请求日志中间件，按状态码选择日志级别
// 同时向请求 context 注入携带 request_id 的 logger，供下游 FromContext 取用
func Logger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		rid := c.GetString(RequestIDKey)

		reqLogger := logger.With(zap.String("request_id", rid))
		c.Request = c.Request.WithContext(applogger.WithContext(c.Request.Context(), reqLogger))

		c.Next()

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.Int("status", status),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("query", c.Request.URL.RawQuery),
			zap.String("ip", c.ClientIP()),
			zap.Duration("latency", time.Since(start)),
		}
		if uid := c.GetString(ctxKeyUserID); uid != "" {
			fields = append(fields, zap.String("user_id", uid))
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.ByType(gin.ErrorTypePrivate).String()))
		}

		switch {
		case status >= 500:
			reqLogger.Error("请求处理失败", fields...)
		case status >= 400:
			reqLogger.Warn("客户端错误", fields...)
		default:
			reqLogger.Info("请求完成", fields...)
		}
	}
}
