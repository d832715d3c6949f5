package chat

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Exchange is one user message and the assistant's reply.
type Exchange struct {
	SessionID   string
	UserMessage string
	BotResponse string
	CreatedAt   time.Time
}

type HistoryRepository interface {
	Insert(ctx context.Context, e Exchange) error
	ListBySession(ctx context.Context, sessionID string) ([]Exchange, error)
}

type dbconn interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type PgHistory struct {
	db dbconn
}

func NewPgHistory(pool *pgxpool.Pool) *PgHistory {
	return &PgHistory{db: pool}
}

func newPgHistoryWithDB(db dbconn) *PgHistory {
	return &PgHistory{db: db}
}

func (r *PgHistory) Insert(ctx context.Context, e Exchange) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO chat_history (session_id, user_message, bot_response)
		VALUES ($1, $2, $3)
	`, e.SessionID, e.UserMessage, e.BotResponse)
	if err != nil {
		return fmt.Errorf("insert chat exchange: %w", err)
	}
	return nil
}

func (r *PgHistory) ListBySession(ctx context.Context, sessionID string) ([]Exchange, error) {
	rows, err := r.db.Query(ctx, `
		SELECT session_id, user_message, bot_response, created_at
		FROM chat_history
		WHERE session_id = $1
		ORDER BY created_at ASC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list chat history: %w", err)
	}
	defer rows.Close()

	result := []Exchange{}
	for rows.Next() {
		var e Exchange
		if err := rows.Scan(&e.SessionID, &e.UserMessage, &e.BotResponse, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan chat exchange: %w", err)
		}
		result = append(result, e)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}
