// Package chat runs one conversation exchange: assemble the prompt, call
// the completion gateway, then record both turns.
package chat

import (
	"context"
	"fmt"

	"github.com/sandevgo/tuskrelay/internal/core"
	"github.com/sandevgo/tuskrelay/internal/service/prompt"
	"github.com/sandevgo/tuskrelay/pkg/log"
)

type TokenCounter func(messages []core.Message) (int, error)

type Reply struct {
	SessionID string
	Text      string
}

type Service struct {
	store     core.SessionStore
	assembler *prompt.Assembler
	completer core.Completer
	locks     *Locker

	render      func(string) string
	countTokens TokenCounter
}

type Option func(*Service)

// WithRenderer converts the raw reply before it is returned. The stored
// assistant turn always keeps the raw text.
func WithRenderer(render func(string) string) Option {
	return func(s *Service) {
		if render != nil {
			s.render = render
		}
	}
}

// WithTokenCounter logs the prompt size at debug level.
func WithTokenCounter(counter TokenCounter) Option {
	return func(s *Service) {
		s.countTokens = counter
	}
}

func NewService(store core.SessionStore, assembler *prompt.Assembler, completer core.Completer, opts ...Option) *Service {
	s := &Service{
		store:     store,
		assembler: assembler,
		completer: completer,
		locks:     NewLocker(),
		render:    func(text string) string { return text },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Reply answers message within the session, creating one when
// requestedSessionID is empty. Requests on the same session run one at a
// time. The exchange is not cancelled when the caller goes away; on any
// error the session history is left as it was.
func (s *Service) Reply(ctx context.Context, requestedSessionID, message string) (Reply, error) {
	ctx = context.WithoutCancel(ctx)

	sessionID := s.assembler.SessionID(requestedSessionID)
	ctx = log.WithFields(ctx, map[string]any{"session_id": sessionID})
	logger := log.FromCtx(ctx)

	unlock := s.locks.Lock(sessionID)
	defer unlock()

	p, err := s.assembler.Build(ctx, sessionID, message)
	if err != nil {
		return Reply{}, err
	}

	if s.countTokens != nil && logger.Debug().Enabled() {
		if n, err := s.countTokens(p.Messages); err != nil {
			logger.Debug().Err(err).Msg("token count unavailable")
		} else {
			logger.Debug().Int("prompt_tokens", n).Int("history_turns", len(p.History)).Msg("prompt assembled")
		}
	}

	text, err := s.completer.Complete(ctx, p.Messages)
	if err != nil {
		return Reply{}, err
	}

	turns := make([]core.Message, 0, len(p.History)+2)
	turns = append(turns, p.History...)
	turns = append(turns,
		core.Message{Role: core.RoleUser, Content: message},
		core.Message{Role: core.RoleAssistant, Content: text},
	)

	if err := s.store.Put(ctx, sessionID, core.TrimTurns(turns, core.MaxHistoryTurns)); err != nil {
		return Reply{}, fmt.Errorf("failed to save session history: %w", err)
	}

	logger.Debug().Int("turns", min(len(turns), core.MaxHistoryTurns)).Msg("session updated")

	return Reply{
		SessionID: sessionID,
		Text:      s.render(text),
	}, nil
}
