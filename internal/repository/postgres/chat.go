package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/clinicore/decision-api/internal/model"
	"github.com/clinicore/decision-api/internal/repository"
)

type chatRepository struct {
	db *sqlx.DB
}

func NewChatRepository(db *sqlx.DB) repository.ChatRepository {
	return &chatRepository{db: db}
}

func (r *chatRepository) AppendTurn(ctx context.Context, turn *model.ChatTurn) error {
	query := `
		INSERT INTO chat_turns (id, user_id, session_id, role, text, language, timestamp)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.ExecContext(ctx, query,
		turn.ID,
		turn.UserID,
		turn.SessionID,
		turn.Role,
		turn.Text,
		turn.Language,
		turn.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to append chat turn: %w", err)
	}
	return nil
}

func (r *chatRepository) ListTurns(ctx context.Context, sessionID string) ([]*model.ChatTurn, error) {
	query := `SELECT * FROM chat_turns WHERE session_id = $1 ORDER BY timestamp ASC`
	var turns []*model.ChatTurn
	err := r.db.SelectContext(ctx, &turns, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list chat turns: %w", err)
	}
	return turns, nil
}
