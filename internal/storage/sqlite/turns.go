package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/polychat/polychat/internal/core"
	"github.com/polychat/polychat/pkg/log"
	"github.com/polychat/polychat/pkg/retry"
)

type TurnsRepo struct {
	db      *sql.DB
	retrier *retry.Retrier
}

func NewTurnsRepo(db *sql.DB) *TurnsRepo {
	return &TurnsRepo{
		db:      db,
		retrier: retry.NewStorageRetrier(),
	}
}

func (r *TurnsRepo) AddTurn(ctx context.Context, sessionID, role, content string) error {
	query := `INSERT INTO turns (session_id, role, content) VALUES (?, ?, ?)`

	// A concurrent writer can hold the database briefly (SQLITE_BUSY);
	// a short bounded retry absorbs that instead of failing the append.
	err := r.retrier.Do(ctx, func() error {
		_, execErr := r.db.ExecContext(ctx, query, sessionID, role, content)
		return execErr
	})
	if err != nil {
		return fmt.Errorf("failed to insert turn: %w", err)
	}
	return nil
}

func (r *TurnsRepo) GetTurns(ctx context.Context, sessionID string, limit int, window core.WindowPolicy) ([]core.Turn, error) {
	newestFirst := window == core.WindowLatest && limit > 0

	query := `SELECT id, session_id, role, content, created_at FROM turns WHERE session_id = ? ORDER BY id`
	args := []any{sessionID}
	if newestFirst {
		query += ` DESC`
	}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query turns: %w", err)
	}
	defer rows.Close()

	var turns []core.Turn
	for rows.Next() {
		var t core.Turn
		if err := rows.Scan(&t.ID, &t.SessionID, &t.Role, &t.Content, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan turn: %w", err)
		}
		turns = append(turns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// A latest-window read came back newest first; put it back into
	// chronological order before handing it out.
	if newestFirst {
		for i, j := 0, len(turns)-1; i < j; i, j = i+1, j-1 {
			turns[i], turns[j] = turns[j], turns[i]
		}
	}

	log.FromCtx(ctx).Debug().Int("count", len(turns)).Str("session", sessionID).Msg("loaded turns")
	return turns, nil
}

func (r *TurnsRepo) DeleteTurns(ctx context.Context, sessionID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM turns WHERE session_id = ?`, sessionID)
	if err != nil {
		return fmt.Errorf("failed to delete turns: %w", err)
	}
	return nil
}
