package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mrlokans/conduit/internal/auth"
)

const (
	RequestIDHeader = "X-Request-ID"
	ctxKeyLogger    = "logger"
	maxRequestIDLen = 64
)

// RequestLogger assigns a request id, stores a request-scoped logger on the
// context and logs one line per completed request.
func RequestLogger(log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" || len(requestID) > maxRequestIDLen {
			requestID = uuid.NewString()
		}
		c.Header(RequestIDHeader, requestID)

		reqLog := log.With("request_id", requestID)
		c.Set(ctxKeyLogger, reqLog)

		c.Next()

		reqLog.Infow("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"route", c.FullPath(),
			"status", c.Writer.Status(),
			"latency", time.Since(start),
			"client_ip", c.ClientIP(),
			"user", auth.GetUsername(c),
			"auth", string(auth.GetAuthType(c)),
		)
	}
}

// Recovery turns panics into a logged 500.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		loggerFrom(c).Errorw("panic recovered", "panic", recovered, "path", c.Request.URL.Path)
		c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
	})
}

// loggerFrom returns the request-scoped logger, or a no-op one outside RequestLogger.
func loggerFrom(c *gin.Context) *zap.SugaredLogger {
	if v, ok := c.Get(ctxKeyLogger); ok {
		if log, ok := v.(*zap.SugaredLogger); ok {
			return log
		}
	}
	return zap.NewNop().Sugar()
}
