package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/sandevgo/tuskrelay/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := NewDB(context.Background(), filepath.Join(t.TempDir(), "nested", "sessions.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func turns(n int) []core.Message {
	out := make([]core.Message, n)
	for i := range out {
		role := core.RoleUser
		if i%2 == 1 {
			role = core.RoleAssistant
		}
		out[i] = core.Message{Role: role, Content: fmt.Sprintf("turn %d", i)}
	}
	return out
}

func TestSessionsRepo_RoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewSessionsRepo(newTestDB(t))

	empty, err := repo.Get(ctx, "unknown")
	require.NoError(t, err)
	assert.Empty(t, empty)

	require.NoError(t, repo.Put(ctx, "abc", turns(4)))

	got, err := repo.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, turns(4), got)
}

func TestSessionsRepo_PutTrimsAndOverwrites(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewSessionsRepo(db)

	require.NoError(t, repo.Put(ctx, "abc", turns(20)))
	require.NoError(t, repo.Put(ctx, "other", turns(2)))

	got, err := repo.Get(ctx, "abc")
	require.NoError(t, err)
	require.Len(t, got, core.MaxHistoryTurns)
	assert.Equal(t, "turn 8", got[0].Content)
	assert.Equal(t, "turn 19", got[len(got)-1].Content)

	var rows int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM session_turns WHERE session_id = ?`, "abc").Scan(&rows))
	assert.Equal(t, core.MaxHistoryTurns, rows)

	require.NoError(t, repo.Put(ctx, "abc", turns(1)))
	got, err = repo.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Len(t, got, 1)

	other, err := repo.Get(ctx, "other")
	require.NoError(t, err)
	assert.Len(t, other, 2)
}

func TestNewDB_MigratesTwice(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.db")

	db, err := NewDB(context.Background(), path)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = NewDB(context.Background(), path)
	require.NoError(t, err)
	require.NoError(t, db.Close())
}
