package core

import "errors"

// Request failure kinds. Callers wrap these with detail; the HTTP layer
// classifies them with errors.Is.
var (
	ErrOriginNotAllowed = errors.New("origin not allowed")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrRateLimited      = errors.New("rate limit exceeded")
	ErrInvalidPayload   = errors.New("invalid payload")
	ErrNotConfigured    = errors.New("not configured")
	ErrUpstream         = errors.New("upstream failure")
)
