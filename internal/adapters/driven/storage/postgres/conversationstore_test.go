package postgres

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/studyhall/internal/core/domain"
)

// openTestStore connects to STUDYHALL_TEST_POSTGRES_DSN or skips.
func openTestStore(t *testing.T) *ConversationStore {
	t.Helper()
	dsn := os.Getenv("STUDYHALL_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("STUDYHALL_TEST_POSTGRES_DSN not set")
	}

	store, err := Open(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(store.Close)
	return store
}

// uniqueKey keeps test runs against a shared database apart.
func uniqueKey() domain.ConversationKey {
	return domain.ConversationKey{UserID: "test-" + uuid.NewString(), SubjectID: "biology"}
}

func TestOpen_EmptyDSN(t *testing.T) {
	_, err := Open(context.Background(), "")

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestOpen_InvalidDSN(t *testing.T) {
	_, err := Open(context.Background(), "postgres://%zz")

	assert.Error(t, err)
}

func TestConversationStore_AppendListNewest(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	key := uniqueKey()
	t.Cleanup(func() { _, _ = store.Clear(ctx, key) })

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		role := domain.RoleUser
		if i%2 == 1 {
			role = domain.RoleAssistant
		}
		require.NoError(t, store.Append(ctx, domain.ConversationTurn{
			ID:        fmt.Sprintf("%s-%d", key.UserID, i),
			Key:       key,
			Role:      role,
			Content:   fmt.Sprintf("turn %d", i),
			Timestamp: base.Add(time.Duration(i) * time.Second),
		}))
	}

	all, err := store.List(ctx, key, 0)
	require.NoError(t, err)
	require.Len(t, all, 5)
	assert.Equal(t, "turn 0", all[0].Content)
	assert.Equal(t, domain.RoleAssistant, all[1].Role)
	assert.Equal(t, key, all[0].Key)

	newest, err := store.List(ctx, key, 2)
	require.NoError(t, err)
	require.Len(t, newest, 2)
	assert.Equal(t, "turn 3", newest[0].Content)
	assert.Equal(t, "turn 4", newest[1].Content)
}

func TestConversationStore_CountAndClear(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	key := uniqueKey()

	require.NoError(t, store.Append(ctx, domain.ConversationTurn{Key: key, Role: domain.RoleUser, Content: "a"}))
	require.NoError(t, store.Append(ctx, domain.ConversationTurn{Key: key, Role: domain.RoleAssistant, Content: "b"}))

	n, err := store.Count(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	removed, err := store.Clear(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	empty, err := store.List(ctx, key, 0)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestConversationStore_AppendRejectsInvalidKey(t *testing.T) {
	store := openTestStore(t)

	err := store.Append(context.Background(), domain.ConversationTurn{Role: domain.RoleUser, Content: "x"})

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
