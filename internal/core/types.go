package core

const (
	RelayName          = "TuskRelay"
	RelayUserAgent     = "TuskRelay/0.1"
	RelayRepositoryURL = "https://github.com/sandevgo/tuskrelay"
	RelayVersion       = "0.1.0"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// MaxHistoryTurns is the number of most recent turns a session keeps and
// contributes to a prompt.
const MaxHistoryTurns = 12

// Temperature is the sampling temperature sent with every completion.
const Temperature = 0.35

// FallbackReply is returned when the provider answers without usable text.
const FallbackReply = "unable to respond right now"

// Message is one entry of a conversation. Stored turns use the user and
// assistant roles only; the system role appears in assembled prompts.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// TrimTurns returns the last limit turns of history. The returned slice
// never aliases history.
func TrimTurns(history []Message, limit int) []Message {
	if limit <= 0 {
		return nil
	}
	if len(history) > limit {
		history = history[len(history)-limit:]
	}
	out := make([]Message, len(history))
	copy(out, history)
	return out
}
