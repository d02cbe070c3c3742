// Package cli is a terminal front end for the chat service, used to try a
// persona locally without a widget.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/sandevgo/tuskrelay/internal/service/chat"
	"github.com/sandevgo/tuskrelay/pkg/log"
)

const (
	cmdExit  = "/exit"
	cmdReset = "/reset"
)

type ChatService interface {
	Reply(ctx context.Context, sessionID, message string) (chat.Reply, error)
}

type ReadLine struct {
	chat      ChatService
	rl        *readline.Instance
	sessionID string
}

func NewReadLine(chatSvc ChatService, runtimePath string) (*ReadLine, error) {
	// Ensure runtime directory exists
	if err := os.MkdirAll(runtimePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create runtime directory: %w", err)
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          ">>> ",
		HistoryFile:     filepath.Join(runtimePath, "input_history"),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, err
	}

	return &ReadLine{
		chat: chatSvc,
		rl:   rl,
	}, nil
}

func (r *ReadLine) Start(ctx context.Context) error {
	logger := log.FromCtx(ctx)
	logger.Info().Msg("terminal chat started, type /exit to quit or /reset for a new session")

	for {
		// Check context before blocking read
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		line, err := r.rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				if len(line) == 0 {
					return nil // Exit on Ctrl+C
				}
				continue
			} else if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		if !r.handle(ctx, r.rl.Stdout(), line) {
			return nil
		}
	}
}

// handle processes one input line and reports whether to keep reading.
func (r *ReadLine) handle(ctx context.Context, out io.Writer, line string) bool {
	line = strings.TrimSpace(line)
	switch line {
	case "":
		return true
	case cmdExit, "exit":
		return false
	case cmdReset:
		r.sessionID = ""
		fmt.Fprintln(out, "[session reset]")
		return true
	}

	reply, err := r.chat.Reply(ctx, r.sessionID, line)
	if err != nil {
		log.FromCtx(ctx).Error().Err(err).Msg("chat reply failed")
		fmt.Fprintf(out, "Error: %v\n", err)
		return true
	}

	r.sessionID = reply.SessionID
	fmt.Fprintln(out, reply.Text)
	return true
}

func (r *ReadLine) Shutdown(ctx context.Context) error {
	if r.rl != nil {
		return r.rl.Close()
	}
	return nil
}
