package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/custodia-labs/studyhall/internal/core/domain"
	"github.com/custodia-labs/studyhall/internal/core/ports/driven"
)

// Ensure ConversationStore implements the interface.
var _ driven.ConversationStore = (*ConversationStore)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS conversation_turns (
    seq        BIGSERIAL PRIMARY KEY,
    id         TEXT NOT NULL UNIQUE,
    user_id    TEXT NOT NULL,
    subject_id TEXT NOT NULL,
    role       TEXT NOT NULL CHECK (role IN ('system', 'user', 'assistant')),
    content    TEXT NOT NULL,
    ts         TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_turns_key ON conversation_turns (user_id, subject_id, ts, seq);
`

// ConversationStore is a pgx-backed driven.ConversationStore.
type ConversationStore struct {
	pool *pgxpool.Pool
}

// Open connects to dsn and ensures the schema exists.
func Open(ctx context.Context, dsn string) (*ConversationStore, error) {
	if dsn == "" {
		return nil, fmt.Errorf("%w: postgres dsn is empty", domain.ErrInvalidInput)
	}
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres config: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	s := &ConversationStore{pool: pool}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return s, nil
}

// Close releases the pool.
func (s *ConversationStore) Close() {
	if s != nil && s.pool != nil {
		s.pool.Close()
	}
}

// Append inserts a turn.
func (s *ConversationStore) Append(ctx context.Context, turn domain.ConversationTurn) error {
	if err := turn.Key.Validate(); err != nil {
		return err
	}
	if turn.ID == "" {
		turn.ID = uuid.New().String()
	}
	if turn.Timestamp.IsZero() {
		turn.Timestamp = time.Now()
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO conversation_turns (id, user_id, subject_id, role, content, ts)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, turn.ID, turn.Key.UserID, turn.Key.SubjectID, turn.Role.String(), turn.Content, turn.Timestamp)
	if err != nil {
		return fmt.Errorf("append turn: %w", err)
	}
	return nil
}

// List returns the newest limit turns in ascending time order.
func (s *ConversationStore) List(
	ctx context.Context, key domain.ConversationKey, limit int,
) ([]domain.ConversationTurn, error) {
	// LIMIT NULL is unbounded in Postgres.
	var limitArg *int
	if limit > 0 {
		limitArg = &limit
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, role, content, ts FROM (
			SELECT id, role, content, ts, seq
			FROM conversation_turns
			WHERE user_id = $1 AND subject_id = $2
			ORDER BY ts DESC, seq DESC
			LIMIT $3
		) newest
		ORDER BY ts ASC, seq ASC
	`, key.UserID, key.SubjectID, limitArg)
	if err != nil {
		return nil, fmt.Errorf("query turns: %w", err)
	}

	turns, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.ConversationTurn, error) {
		var turn domain.ConversationTurn
		var role string
		if err := row.Scan(&turn.ID, &role, &turn.Content, &turn.Timestamp); err != nil {
			return turn, err
		}
		turn.Key = key
		turn.Role = domain.Role(role)
		return turn, nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan turns: %w", err)
	}
	if turns == nil {
		turns = make([]domain.ConversationTurn, 0)
	}
	return turns, nil
}

// Count returns the number of turns stored for key.
func (s *ConversationStore) Count(ctx context.Context, key domain.ConversationKey) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM conversation_turns WHERE user_id = $1 AND subject_id = $2",
		key.UserID, key.SubjectID).Scan(&n)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("count turns: %w", err)
	}
	return n, nil
}

// Clear deletes every turn for key.
func (s *ConversationStore) Clear(ctx context.Context, key domain.ConversationKey) (int, error) {
	tag, err := s.pool.Exec(ctx,
		"DELETE FROM conversation_turns WHERE user_id = $1 AND subject_id = $2",
		key.UserID, key.SubjectID)
	if err != nil {
		return 0, fmt.Errorf("clear turns: %w", err)
	}
	return int(tag.RowsAffected()), nil
}
