// Package memory keeps session histories in process memory. Histories are
// lost on restart.
package memory

import (
	"context"
	"sync"

	"github.com/sandevgo/tuskrelay/internal/core"
)

type Store struct {
	mu       sync.RWMutex
	sessions map[string][]core.Message
	limit    int
}

func NewStore() *Store {
	return &Store{
		sessions: make(map[string][]core.Message),
		limit:    core.MaxHistoryTurns,
	}
}

func (s *Store) Get(_ context.Context, sessionID string) ([]core.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return core.TrimTurns(s.sessions[sessionID], s.limit), nil
}

func (s *Store) Put(_ context.Context, sessionID string, turns []core.Message) error {
	trimmed := core.TrimTurns(turns, s.limit)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sessionID] = trimmed
	return nil
}

// Len returns the number of known sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
