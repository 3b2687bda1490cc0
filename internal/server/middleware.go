package server

import (
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mabdulrehman08/propmanager/internal/auditcontext"
)

// RequestLogger logs one line per request with latency and status.
func RequestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

// AuditContext lifts request metadata into the context so audit entries can
// attribute mutations. Identity comes from the upstream auth layer via the
// X-User-ID header; this core does not authenticate.
func AuditContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		if raw := strings.TrimSpace(c.GetHeader("X-User-ID")); raw != "" {
			if userID, err := snowflake.ParseString(raw); err == nil {
				ctx = auditcontext.WithUserID(ctx, userID)
			}
		}
		if requestID := strings.TrimSpace(c.GetHeader("X-Request-ID")); requestID != "" {
			ctx = auditcontext.WithRequestID(ctx, requestID)
		}
		ctx = auditcontext.WithIPAddress(ctx, c.ClientIP())
		ctx = auditcontext.WithUserAgent(ctx, c.Request.UserAgent())

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
