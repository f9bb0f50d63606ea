package httpapi

import (
	"github.com/flowmesh/orchestrator/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// requestIDHeader is echoed back on every response so a caller can
// correlate a submission with engine logs.
const requestIDHeader = "X-Request-Id"

// RequestLogger assigns a per-request correlation id (falling back to one
// generated with google/uuid when the caller didn't supply one) and stores
// a logger carrying it in the request context, the way every other
// component in this engine logs through logger.FromContext rather than a
// package-level global.
func RequestLogger(base logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := c.GetHeader(requestIDHeader)
		if reqID == "" {
			reqID = uuid.New().String()
		}
		c.Header(requestIDHeader, reqID)
		log := base.With("requestId", reqID, "method", c.Request.Method, "path", c.FullPath())
		ctx := logger.ContextWithLogger(c.Request.Context(), log)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
