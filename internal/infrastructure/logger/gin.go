package logger

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	// GinRequestIDKey is the gin context key the request ID middleware uses
	GinRequestIDKey = "request_id"
	// GinLoggerKey is the gin context key of the request-scoped logger
	GinLoggerKey = "logger"
	// TenantHeader names the tenant of an API call
	TenantHeader = "X-Tenant-ID"
)

// GinMiddleware logs one line per request. The request-scoped logger is
// stored in both the gin context and the request context so services can
// reach it through L(ctx).
func GinMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", path),
		}
		ctx := c.Request.Context()
		if requestID := c.GetString(GinRequestIDKey); requestID != "" {
			fields = append(fields, zap.String("request_id", requestID))
			ctx = withRawValue(ctx, RequestIDKey, requestID)
		}
		if tenantID := c.GetHeader(TenantHeader); tenantID != "" {
			fields = append(fields, zap.String("tenant_id", tenantID))
			ctx = withRawValue(ctx, TenantIDKey, tenantID)
		}
		reqLogger := logger.With(fields...)
		c.Set(GinLoggerKey, reqLogger)
		c.Request = c.Request.WithContext(WithContext(ctx, reqLogger))

		c.Next()

		status := c.Writer.Status()
		result := []zap.Field{
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
			zap.Int("body_size", c.Writer.Size()),
		}
		if query != "" {
			result = append(result, zap.String("query", query))
		}
		if len(c.Errors) > 0 {
			result = append(result, zap.Strings("errors", c.Errors.Errors()))
		}

		const msg = "HTTP Request"
		switch {
		case status >= http.StatusInternalServerError:
			reqLogger.Error(msg, result...)
		case status >= http.StatusBadRequest:
			reqLogger.Warn(msg, result...)
		default:
			reqLogger.Info(msg, result...)
		}
	}
}

// Recovery turns a handler panic into a 500 with the standard error body
func Recovery(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.Error("Panic recovered",
					zap.String("request_id", c.GetString(GinRequestIDKey)),
					zap.String("method", c.Request.Method),
					zap.String("path", c.Request.URL.Path),
					zap.Any("error", err),
					zap.Stack("stacktrace"),
				)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"success": false,
					"error": gin.H{
						"code":    "ERR_INTERNAL",
						"message": "internal server error",
					},
				})
			}
		}()
		c.Next()
	}
}

// GetGinLogger returns the request-scoped logger, or a no-op logger
func GetGinLogger(c *gin.Context) *zap.Logger {
	if l, ok := c.Get(GinLoggerKey); ok {
		if zl, ok := l.(*zap.Logger); ok {
			return zl
		}
	}
	return zap.NewNop()
}
