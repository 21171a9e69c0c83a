package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/studyhall/internal/core/domain"
	"github.com/custodia-labs/studyhall/internal/core/ports/driven"
)

// Ensure ConversationStore implements the interface.
var _ driven.ConversationStore = (*ConversationStore)(nil)

// ConversationStore is an in-memory implementation of driven.ConversationStore.
type ConversationStore struct {
	mu    sync.RWMutex
	turns map[domain.ConversationKey][]domain.ConversationTurn
}

// NewConversationStore creates a new in-memory conversation store.
func NewConversationStore() *ConversationStore {
	return &ConversationStore{
		turns: make(map[domain.ConversationKey][]domain.ConversationTurn),
	}
}

// Append inserts a turn, keeping each conversation sorted by timestamp.
// Turns with equal timestamps keep insertion order.
func (s *ConversationStore) Append(_ context.Context, turn domain.ConversationTurn) error {
	if err := turn.Key.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	turns := append(s.turns[turn.Key], turn)
	sort.SliceStable(turns, func(i, j int) bool {
		return turns[i].Timestamp.Before(turns[j].Timestamp)
	})
	s.turns[turn.Key] = turns
	return nil
}

// List returns the newest limit turns in ascending time order.
func (s *ConversationStore) List(_ context.Context, key domain.ConversationKey, limit int) ([]domain.ConversationTurn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	turns := s.turns[key]
	if limit > 0 && len(turns) > limit {
		turns = turns[len(turns)-limit:]
	}
	result := make([]domain.ConversationTurn, len(turns))
	copy(result, turns)
	return result, nil
}

// Count returns the number of turns stored for key.
func (s *ConversationStore) Count(_ context.Context, key domain.ConversationKey) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.turns[key]), nil
}

// Clear deletes every turn for key.
func (s *ConversationStore) Clear(_ context.Context, key domain.ConversationKey) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.turns[key])
	delete(s.turns, key)
	return n, nil
}
