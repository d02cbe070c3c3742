package guard

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/sandevgo/tuskrelay/internal/core"
)

const (
	MaxBodyBytes      = 16 << 10
	MaxMessageChars   = 2000
	MaxSessionIDChars = 128
)

type ChatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"sessionId,omitempty"`
}

func invalid(reason string) error {
	return fmt.Errorf("%w: %s", core.ErrInvalidPayload, reason)
}

// Decode reads and validates a chat request body. The returned message
// and session id are trimmed; an empty session id means none was sent.
func Decode(r io.Reader) (ChatRequest, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxBodyBytes+1))
	if err != nil {
		return ChatRequest{}, invalid("failed to read request body")
	}
	if len(data) > MaxBodyBytes {
		return ChatRequest{}, invalid("request body is too large")
	}

	var req ChatRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return ChatRequest{}, invalid("request body must be a JSON object with a message string")
	}

	req.Message = strings.TrimSpace(req.Message)
	if req.Message == "" {
		return ChatRequest{}, invalid("message is required")
	}
	if utf8.RuneCountInString(req.Message) > MaxMessageChars {
		return ChatRequest{}, invalid(fmt.Sprintf("message must be at most %d characters", MaxMessageChars))
	}

	req.SessionID = strings.TrimSpace(req.SessionID)
	if utf8.RuneCountInString(req.SessionID) > MaxSessionIDChars {
		return ChatRequest{}, invalid(fmt.Sprintf("sessionId must be at most %d characters", MaxSessionIDChars))
	}

	return req, nil
}

// Reason returns the client-safe part of a payload error.
func Reason(err error) string {
	msg := err.Error()
	prefix := core.ErrInvalidPayload.Error() + ": "
	return strings.TrimPrefix(msg, prefix)
}
