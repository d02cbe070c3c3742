package web

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/sandevgo/tuskrelay/internal/core"
	"github.com/sandevgo/tuskrelay/internal/service/guard"
)

const (
	requestIDHeader = "X-Request-Id"
	corsMaxAge      = 600
)

var (
	corsMethods = strings.Join([]string{http.MethodPost, http.MethodOptions}, ", ")
	corsHeaders = strings.Join([]string{"Content-Type", guard.WidgetTokenHeader}, ", ")
)

// requestLogger attaches a per-request child logger to the request context
// and writes one access line when the request completes.
func requestLogger(base zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		reqID := uuid.NewString()
		c.Header(requestIDHeader, reqID)

		logger := base.With().
			Str("request_id", reqID).
			Str("client_ip", c.ClientIP()).
			Logger()
		c.Request = c.Request.WithContext(logger.WithContext(c.Request.Context()))

		c.Next()

		status := c.Writer.Status()
		event := logger.Info()
		if status >= http.StatusInternalServerError {
			event = logger.Error()
		}
		event.
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Msg("request served")
	}
}

// recovery turns a panic into a generic 500 instead of dropping the
// connection.
func recovery() gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(io.Discard, func(c *gin.Context, rec any) {
		abortWithError(c, fmt.Errorf("panic: %v", rec))
	})
}

// cors answers preflight requests for allow-listed origins only and never
// allows credentials. Actual requests are still checked by the guard.
func cors(origins *guard.AllowList) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		c.Header("Vary", "Origin")

		allowed := origins.Allowed(origin)
		if allowed {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Methods", corsMethods)
			c.Header("Access-Control-Allow-Headers", corsHeaders)
			c.Header("Access-Control-Max-Age", strconv.Itoa(corsMaxAge))
		}

		if c.Request.Method == http.MethodOptions {
			if !allowed {
				abortWithError(c, fmt.Errorf("%w: preflight from %q", core.ErrOriginNotAllowed, origin))
				return
			}
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
