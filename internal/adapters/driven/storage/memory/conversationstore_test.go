package memory

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/studyhall/internal/core/domain"
)

func appendTurns(t *testing.T, store *ConversationStore, key domain.ConversationKey, n int) {
	t.Helper()
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		require.NoError(t, store.Append(context.Background(), domain.ConversationTurn{
			ID:        fmt.Sprintf("t%d", i),
			Key:       key,
			Role:      domain.RoleUser,
			Content:   fmt.Sprintf("turn %d", i),
			Timestamp: base.Add(time.Duration(i) * time.Second),
		}))
	}
}

func TestConversationStore_ListReturnsNewestInAscendingOrder(t *testing.T) {
	store := NewConversationStore()
	key := domain.ConversationKey{UserID: "u1", SubjectID: "bio"}
	appendTurns(t, store, key, 5)

	turns, err := store.List(context.Background(), key, 3)
	require.NoError(t, err)
	require.Len(t, turns, 3)
	assert.Equal(t, "turn 2", turns[0].Content)
	assert.Equal(t, "turn 3", turns[1].Content)
	assert.Equal(t, "turn 4", turns[2].Content)
}

func TestConversationStore_ListWithoutLimit(t *testing.T) {
	store := NewConversationStore()
	key := domain.ConversationKey{UserID: "u1", SubjectID: "bio"}
	appendTurns(t, store, key, 4)

	turns, err := store.List(context.Background(), key, 0)
	require.NoError(t, err)
	assert.Len(t, turns, 4)
}

func TestConversationStore_OutOfOrderAppend(t *testing.T) {
	store := NewConversationStore()
	ctx := context.Background()
	key := domain.ConversationKey{UserID: "u1", SubjectID: "bio"}
	now := time.Now()

	require.NoError(t, store.Append(ctx, domain.ConversationTurn{ID: "late", Key: key, Content: "late", Timestamp: now}))
	require.NoError(t, store.Append(ctx, domain.ConversationTurn{ID: "early", Key: key, Content: "early", Timestamp: now.Add(-time.Minute)}))

	turns, err := store.List(ctx, key, 10)
	require.NoError(t, err)
	require.Len(t, turns, 2)
	assert.Equal(t, "early", turns[0].ID)
}

func TestConversationStore_KeysAreIsolated(t *testing.T) {
	store := NewConversationStore()
	bio := domain.ConversationKey{UserID: "u1", SubjectID: "bio"}
	chem := domain.ConversationKey{UserID: "u1", SubjectID: "chem"}
	appendTurns(t, store, bio, 2)
	appendTurns(t, store, chem, 3)

	n, err := store.Count(context.Background(), bio)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	removed, err := store.Clear(context.Background(), chem)
	require.NoError(t, err)
	assert.Equal(t, 3, removed)

	n, err = store.Count(context.Background(), bio)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestConversationStore_ClearEmpty(t *testing.T) {
	store := NewConversationStore()

	removed, err := store.Clear(context.Background(), domain.ConversationKey{UserID: "u1", SubjectID: "bio"})
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestConversationStore_AppendRejectsInvalidKey(t *testing.T) {
	store := NewConversationStore()

	err := store.Append(context.Background(), domain.ConversationTurn{Key: domain.ConversationKey{UserID: "u1"}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
