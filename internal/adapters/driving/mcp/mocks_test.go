package mcp

import (
	"context"

	"github.com/custodia-labs/studyhall/internal/core/domain"
	"github.com/custodia-labs/studyhall/internal/core/ports/driving"
)

// mockChatService is a mock implementation of driving.ChatService.
type mockChatService struct {
	reply   *domain.ChatReply
	turns   []domain.ConversationTurn
	removed int
	err     error

	lastKey      domain.ConversationKey
	lastQuestion string
	lastLimit    int
}

func (m *mockChatService) Ask(_ context.Context, key domain.ConversationKey, question string) (*domain.ChatReply, error) {
	m.lastKey = key
	m.lastQuestion = question
	return m.reply, m.err
}

func (m *mockChatService) History(_ context.Context, key domain.ConversationKey, limit int) ([]domain.ConversationTurn, error) {
	m.lastKey = key
	m.lastLimit = limit
	return m.turns, m.err
}

func (m *mockChatService) ClearHistory(_ context.Context, key domain.ConversationKey) (int, error) {
	m.lastKey = key
	return m.removed, m.err
}

// mockFlashcardService is a mock implementation of driving.FlashcardService.
type mockFlashcardService struct {
	set      *domain.FlashcardSet
	err      error
	lastOpts driving.FlashcardOptions
}

func (m *mockFlashcardService) Generate(
	_ context.Context,
	_ domain.ConversationKey,
	opts driving.FlashcardOptions,
) (*domain.FlashcardSet, error) {
	m.lastOpts = opts
	return m.set, m.err
}

// mockKeywordService is a mock implementation of driving.KeywordService.
type mockKeywordService struct {
	keywords []domain.Keyword
	err      error
	lastOpts driving.KeywordOptions
}

func (m *mockKeywordService) Generate(
	_ context.Context,
	_ domain.ConversationKey,
	opts driving.KeywordOptions,
) ([]domain.Keyword, error) {
	m.lastOpts = opts
	return m.keywords, m.err
}

// mockNoteService is a mock implementation of driving.NoteService.
type mockNoteService struct {
	notes []domain.Note
	err   error

	lastUser    string
	lastSubject string
}

func (m *mockNoteService) Add(_ context.Context, _ driving.NoteInput) (*domain.Note, error) {
	return nil, m.err
}

func (m *mockNoteService) List(_ context.Context, userID, subjectID string) ([]domain.Note, error) {
	m.lastUser = userID
	m.lastSubject = subjectID
	return m.notes, m.err
}

func (m *mockNoteService) Remove(_ context.Context, _ string) error {
	return m.err
}
