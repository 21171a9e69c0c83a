package mcp

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/studyhall/internal/core/domain"
)

func TestServer_handleAsk(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the reply", func(t *testing.T) {
		chat := &mockChatService{
			reply: &domain.ChatReply{Reply: "Mitochondria make ATP.", Truncated: true},
		}
		server, err := NewServer(&Ports{Chat: chat, DefaultUser: "alice"})
		require.NoError(t, err)

		_, output, err := server.handleAsk(ctx, nil, AskInput{SubjectID: "bio", Question: "What do mitochondria do?"})

		require.NoError(t, err)
		assert.Equal(t, "Mitochondria make ATP.", output.Reply)
		assert.True(t, output.Truncated)
		assert.False(t, output.NoMaterial)
		assert.Equal(t, domain.ConversationKey{UserID: "alice", SubjectID: "bio"}, chat.lastKey)
		assert.Equal(t, "What do mitochondria do?", chat.lastQuestion)
	})

	t.Run("reports missing material", func(t *testing.T) {
		chat := &mockChatService{
			reply: &domain.ChatReply{Reply: "still processing", NoMaterial: true},
		}
		server, err := NewServer(&Ports{Chat: chat})
		require.NoError(t, err)

		_, output, err := server.handleAsk(ctx, nil, AskInput{UserID: "bob", SubjectID: "bio", Question: "hi"})

		require.NoError(t, err)
		assert.True(t, output.NoMaterial)
	})

	t.Run("missing subject is rejected before the service", func(t *testing.T) {
		chat := &mockChatService{}
		server, err := NewServer(&Ports{Chat: chat, DefaultUser: "alice"})
		require.NoError(t, err)

		_, _, err = server.handleAsk(ctx, nil, AskInput{Question: "hi"})

		assert.ErrorIs(t, err, domain.ErrInvalidInput)
		assert.Empty(t, chat.lastQuestion)
	})

	t.Run("returns service errors", func(t *testing.T) {
		chat := &mockChatService{err: domain.ErrLLMUnavailable}
		server, err := NewServer(&Ports{Chat: chat, DefaultUser: "alice"})
		require.NoError(t, err)

		_, _, err = server.handleAsk(ctx, nil, AskInput{SubjectID: "bio", Question: "hi"})

		assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
	})
}

func TestServer_handleFlashcards(t *testing.T) {
	ctx := context.Background()
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("returns the set", func(t *testing.T) {
		flashcards := &mockFlashcardService{
			set: &domain.FlashcardSet{
				ID:        "set-1",
				Title:     "Cells",
				Cards:     []domain.Flashcard{{Front: "Powerhouse?", Back: "Mitochondrion"}},
				CreatedAt: created,
			},
		}
		server, err := NewServer(&Ports{Chat: &mockChatService{}, Flashcards: flashcards, DefaultUser: "alice"})
		require.NoError(t, err)

		_, output, err := server.handleFlashcards(ctx, nil, FlashcardsInput{
			SubjectID: "bio",
			Count:     5,
			Title:     "Cells",
			Focus:     "organelles",
		})

		require.NoError(t, err)
		assert.Equal(t, "set-1", output.ID)
		assert.Equal(t, 1, output.Count)
		assert.Equal(t, "2026-03-01T12:00:00Z", output.CreatedAt)
		assert.Equal(t, 5, flashcards.lastOpts.Count)
		assert.Equal(t, "organelles", flashcards.lastOpts.Focus)
	})

	t.Run("returns service errors", func(t *testing.T) {
		flashcards := &mockFlashcardService{err: errors.New("boom")}
		server, err := NewServer(&Ports{Chat: &mockChatService{}, Flashcards: flashcards, DefaultUser: "alice"})
		require.NoError(t, err)

		_, _, err = server.handleFlashcards(ctx, nil, FlashcardsInput{SubjectID: "bio"})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "boom")
	})
}

func TestServer_handleKeywords(t *testing.T) {
	ctx := context.Background()

	keywords := &mockKeywordService{
		keywords: []domain.Keyword{
			{Term: "ATP", Definition: "Energy currency of the cell"},
			{Term: "Ribosome", Definition: "Site of protein synthesis"},
		},
	}
	server, err := NewServer(&Ports{Chat: &mockChatService{}, Keywords: keywords, DefaultUser: "alice"})
	require.NoError(t, err)

	_, output, err := server.handleKeywords(ctx, nil, KeywordsInput{SubjectID: "bio", Count: 2})

	require.NoError(t, err)
	assert.Equal(t, 2, output.Count)
	assert.Equal(t, "ATP", output.Keywords[0].Term)
	assert.Equal(t, 2, keywords.lastOpts.Count)
}

func TestServer_handleClearHistory(t *testing.T) {
	ctx := context.Background()

	chat := &mockChatService{removed: 4}
	server, err := NewServer(&Ports{Chat: chat, DefaultUser: "alice"})
	require.NoError(t, err)

	_, output, err := server.handleClearHistory(ctx, nil, ClearHistoryInput{SubjectID: "bio"})

	require.NoError(t, err)
	assert.Equal(t, 4, output.Removed)
	assert.Equal(t, "bio", chat.lastKey.SubjectID)
}
