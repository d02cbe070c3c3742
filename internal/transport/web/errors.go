package web

import (
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sandevgo/tuskrelay/internal/core"
	"github.com/sandevgo/tuskrelay/internal/service/guard"
	"github.com/sandevgo/tuskrelay/pkg/log"
)

const (
	msgOriginNotAllowed = "origin not allowed"
	msgUnauthorized     = "unauthorized"
	msgRateLimited      = "too many requests, please slow down"
	msgNotConfigured    = "chat service is not configured"
	msgUnavailable      = "the assistant is unavailable right now, please try again later"
)

type errorResponse struct {
	Reply string `json:"reply"`
}

// classify maps a failure to its status and client-facing message.
// Anything unrecognized is reported as an upstream failure.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, core.ErrOriginNotAllowed):
		return http.StatusForbidden, msgOriginNotAllowed
	case errors.Is(err, core.ErrUnauthorized):
		return http.StatusUnauthorized, msgUnauthorized
	case errors.Is(err, core.ErrRateLimited):
		return http.StatusTooManyRequests, msgRateLimited
	case errors.Is(err, core.ErrInvalidPayload):
		return http.StatusBadRequest, guard.Reason(err)
	case errors.Is(err, core.ErrNotConfigured):
		return http.StatusInternalServerError, msgNotConfigured
	default:
		return http.StatusInternalServerError, msgUnavailable
	}
}

// abortWithError logs the full error and answers with the generic message.
func abortWithError(c *gin.Context, err error) {
	status, message := classify(err)

	logger := log.FromCtx(c.Request.Context())
	event := logger.Warn()
	if status >= http.StatusInternalServerError {
		event = logger.Error()
	}
	event.Err(err).Int("status", status).Msg("chat request rejected")

	var rlErr *guard.RateLimitError
	if errors.As(err, &rlErr) {
		seconds := int(math.Ceil(rlErr.RetryAfter.Seconds()))
		c.Header("Retry-After", strconv.Itoa(max(seconds, 1)))
	}

	c.AbortWithStatusJSON(status, errorResponse{Reply: message})
}
