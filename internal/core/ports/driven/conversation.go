package driven

import (
	"context"

	"github.com/custodia-labs/studyhall/internal/core/domain"
)

// ConversationStore is the append-only log of turns per conversation key.
//
// Append must be atomic and visible to subsequent reads. Two concurrent
// appends to the same key may interleave; no stronger ordering is promised.
// There is no update-in-place operation.
type ConversationStore interface {
	// Append inserts a turn. Turns are never edited after this call.
	Append(ctx context.Context, turn domain.ConversationTurn) error

	// List returns the newest limit turns for key in ascending time order.
	// A limit <= 0 returns every turn.
	List(ctx context.Context, key domain.ConversationKey, limit int) ([]domain.ConversationTurn, error)

	// Count returns the number of turns stored for key.
	Count(ctx context.Context, key domain.ConversationKey) (int, error)

	// Clear deletes every turn for key and returns how many were removed.
	Clear(ctx context.Context, key domain.ConversationKey) (int, error)
}
