package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sandevgo/tuskrelay/internal/core"
	"github.com/sandevgo/tuskrelay/pkg/log"
)

// SessionsRepo is a durable core.SessionStore. Each Put rewrites the
// session's rows inside one transaction, so readers never observe a
// partially written history.
type SessionsRepo struct {
	db    *sql.DB
	limit int
}

func NewSessionsRepo(db *sql.DB) *SessionsRepo {
	return &SessionsRepo{db: db, limit: core.MaxHistoryTurns}
}

func (r *SessionsRepo) Get(ctx context.Context, sessionID string) ([]core.Message, error) {
	// Fetch the LAST 'limit' turns by ordering DESC
	query := `SELECT role, content FROM session_turns WHERE session_id = ? ORDER BY id DESC LIMIT ?`

	rows, err := r.db.QueryContext(ctx, query, sessionID, r.limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query turns: %w", err)
	}
	defer rows.Close()

	turns := make([]core.Message, 0, r.limit)
	for rows.Next() {
		var msg core.Message
		if err := rows.Scan(&msg.Role, &msg.Content); err != nil {
			return nil, fmt.Errorf("failed to scan turn: %w", err)
		}
		turns = append(turns, msg)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Newest -> Oldest back to chronological order
	for i, j := 0, len(turns)-1; i < j; i, j = i+1, j-1 {
		turns[i], turns[j] = turns[j], turns[i]
	}

	log.FromCtx(ctx).Debug().Str("session_id", sessionID).Int("count", len(turns)).Msg("loaded session turns")
	return turns, nil
}

func (r *SessionsRepo) Put(ctx context.Context, sessionID string, turns []core.Message) error {
	trimmed := core.TrimTurns(turns, r.limit)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM session_turns WHERE session_id = ?`, sessionID); err != nil {
		return fmt.Errorf("failed to clear turns: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO session_turns (session_id, role, content) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, turn := range trimmed {
		if _, err := stmt.ExecContext(ctx, sessionID, turn.Role, turn.Content); err != nil {
			return fmt.Errorf("failed to insert turn: %w", err)
		}
	}

	return tx.Commit()
}
