package core

import "context"

type AIProvider interface {
	Chat(ctx context.Context, history []Message) (Message, error)
}

// Completer turns an assembled prompt into reply text.
type Completer interface {
	Complete(ctx context.Context, messages []Message) (string, error)
}
