package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/sandevgo/tuskrelay/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeTurns(n int) []core.Message {
	turns := make([]core.Message, n)
	for i := range turns {
		role := core.RoleUser
		if i%2 == 1 {
			role = core.RoleAssistant
		}
		turns[i] = core.Message{Role: role, Content: fmt.Sprintf("turn %d", i)}
	}
	return turns
}

func TestStore_GetUnknown(t *testing.T) {
	s := NewStore()

	turns, err := s.Get(context.Background(), "missing")
	require.NoError(t, err)
	assert.Empty(t, turns)
}

func TestStore_PutTrims(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	require.NoError(t, s.Put(ctx, "abc", makeTurns(15)))

	turns, err := s.Get(ctx, "abc")
	require.NoError(t, err)
	require.Len(t, turns, core.MaxHistoryTurns)
	assert.Equal(t, "turn 3", turns[0].Content)
	assert.Equal(t, "turn 14", turns[len(turns)-1].Content)
}

func TestStore_GetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	require.NoError(t, s.Put(ctx, "abc", makeTurns(2)))

	turns, _ := s.Get(ctx, "abc")
	turns[0].Content = "mutated"

	again, _ := s.Get(ctx, "abc")
	assert.Equal(t, "turn 0", again[0].Content)
}

func TestStore_Overwrite(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	require.NoError(t, s.Put(ctx, "abc", makeTurns(4)))
	require.NoError(t, s.Put(ctx, "abc", makeTurns(2)))

	turns, _ := s.Get(ctx, "abc")
	assert.Len(t, turns, 2)
	assert.Equal(t, 1, s.Len())
}

func TestStore_Concurrent(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("s-%d", i%5)
			_ = s.Put(ctx, id, makeTurns(i%20))
			_, _ = s.Get(ctx, id)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 5, s.Len())
}
