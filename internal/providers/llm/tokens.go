package llm

import (
	"fmt"
	"sync"

	"github.com/pkoukk/tiktoken-go"
	"github.com/sandevgo/tuskrelay/internal/core"
)

// perMessageOverhead approximates the framing tokens OpenAI adds per message.
const perMessageOverhead = 4

var (
	tkOnce sync.Once
	tk     *tiktoken.Tiktoken
	tkErr  error
)

func getTokenizer() (*tiktoken.Tiktoken, error) {
	tkOnce.Do(func() {
		tk, tkErr = tiktoken.GetEncoding("cl100k_base")
	})
	return tk, tkErr
}

// CountTokens estimates the prompt size of messages with cl100k_base.
func CountTokens(messages []core.Message) (int, error) {
	enc, err := getTokenizer()
	if err != nil {
		return 0, fmt.Errorf("load tokenizer: %w", err)
	}

	total := 0
	for _, m := range messages {
		total += perMessageOverhead + len(enc.Encode(m.Content, nil, nil))
	}
	return total, nil
}
