package prompt

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sandevgo/tuskrelay/internal/core"
)

type Prompt struct {
	SessionID string
	// History is the stored window the prompt was built from
	History []core.Message
	// Messages is what goes to the provider: system, history, user turn
	Messages []core.Message
}

type Assembler struct {
	store  core.SessionStore
	system *Source
}

func NewAssembler(store core.SessionStore, system *Source) *Assembler {
	return &Assembler{
		store:  store,
		system: system,
	}
}

// SessionID returns requested, or a new UUIDv7 when the client sent none.
func (a *Assembler) SessionID(requested string) string {
	if requested != "" {
		return requested
	}
	return uuid.Must(uuid.NewV7()).String()
}

// Build reads the session window and assembles the provider messages. It
// never writes to the store.
func (a *Assembler) Build(ctx context.Context, sessionID, message string) (Prompt, error) {
	stored, err := a.store.Get(ctx, sessionID)
	if err != nil {
		return Prompt{}, fmt.Errorf("failed to load session history: %w", err)
	}
	history := core.TrimTurns(stored, core.MaxHistoryTurns)

	messages := make([]core.Message, 0, len(history)+2)
	messages = append(messages, core.Message{Role: core.RoleSystem, Content: a.system.Text()})
	messages = append(messages, history...)
	messages = append(messages, core.Message{Role: core.RoleUser, Content: message})

	return Prompt{
		SessionID: sessionID,
		History:   history,
		Messages:  messages,
	}, nil
}
