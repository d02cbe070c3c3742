package cli

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/sandevgo/tuskrelay/internal/service/chat"
	"github.com/stretchr/testify/assert"
)

type scriptedChat struct {
	sessions []string
	err      error
}

func (s *scriptedChat) Reply(_ context.Context, sessionID, message string) (chat.Reply, error) {
	s.sessions = append(s.sessions, sessionID)
	if s.err != nil {
		return chat.Reply{}, s.err
	}
	if sessionID == "" {
		sessionID = "generated"
	}
	return chat.Reply{SessionID: sessionID, Text: "re: " + message}, nil
}

func TestReadLine_Handle(t *testing.T) {
	ctx := context.Background()
	svc := &scriptedChat{}
	r := &ReadLine{chat: svc}
	var out bytes.Buffer

	assert.True(t, r.handle(ctx, &out, "  "))
	assert.Empty(t, svc.sessions)

	assert.True(t, r.handle(ctx, &out, "hello"))
	assert.True(t, r.handle(ctx, &out, "again"))
	assert.Equal(t, []string{"", "generated"}, svc.sessions)
	assert.Contains(t, out.String(), "re: hello\n")

	assert.True(t, r.handle(ctx, &out, "/reset"))
	assert.Empty(t, r.sessionID)

	assert.False(t, r.handle(ctx, &out, "/exit"))
	assert.False(t, r.handle(ctx, &out, "exit"))
}

func TestReadLine_HandleError(t *testing.T) {
	r := &ReadLine{chat: &scriptedChat{err: errors.New("upstream down")}}
	var out bytes.Buffer

	assert.True(t, r.handle(context.Background(), &out, "hi"))
	assert.Contains(t, out.String(), "Error: upstream down")
	assert.Empty(t, r.sessionID)
}
