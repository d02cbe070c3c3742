package core

import "context"

// SessionStore keeps the bounded turn history of each session.
// Implementations must be safe for concurrent use and must never hold more
// than MaxHistoryTurns turns for a session.
type SessionStore interface {
	// Get returns the stored turns in chronological order. An unknown
	// session yields an empty history and no error.
	Get(ctx context.Context, sessionID string) ([]Message, error)
	// Put replaces the history of the session, trimming it first.
	Put(ctx context.Context, sessionID string, turns []Message) error
}
