package driving

import (
	"context"

	"github.com/custodia-labs/studyhall/internal/core/domain"
)

// ChatService answers questions about a subject's notes and keeps the conversation.
type ChatService interface {
	// Ask answers question using the subject's notes and the recent conversation.
	// When the subject has no usable material the fixed notes-still-processing
	// reply is returned and the generation service is not called.
	Ask(ctx context.Context, key domain.ConversationKey, question string) (*domain.ChatReply, error)

	// History returns the newest limit turns, oldest first.
	History(ctx context.Context, key domain.ConversationKey, limit int) ([]domain.ConversationTurn, error)

	// ClearHistory deletes the conversation and returns how many turns were removed.
	ClearHistory(ctx context.Context, key domain.ConversationKey) (int, error)
}

// FlashcardOptions configures flashcard generation.
type FlashcardOptions struct {
	// Count is the number of cards wanted. Clamped to [1, 50]; zero means 10.
	Count int

	// Title names the generated set. Empty derives one from the subject.
	Title string

	// Focus optionally narrows the topic.
	Focus string
}

// FlashcardService generates flashcards from a subject's notes.
type FlashcardService interface {
	Generate(ctx context.Context, key domain.ConversationKey, opts FlashcardOptions) (*domain.FlashcardSet, error)
}

// KeywordOptions configures keyword generation.
type KeywordOptions struct {
	// Count is the number of keywords wanted. Clamped to [1, 50]; zero means 15.
	Count int

	// Focus optionally narrows the topic.
	Focus string
}

// KeywordService extracts key terms from a subject's notes.
type KeywordService interface {
	Generate(ctx context.Context, key domain.ConversationKey, opts KeywordOptions) ([]domain.Keyword, error)
}

// NoteInput is an upload to add to a subject.
type NoteInput struct {
	UserID      string
	SubjectID   string
	DisplayName string
	MIMEType    string
	Data        []byte
}

// NoteService manages the notes of a subject.
type NoteService interface {
	// Add extracts text from the upload and stores it as a note.
	Add(ctx context.Context, input NoteInput) (*domain.Note, error)

	// List returns the notes of a subject, oldest first.
	List(ctx context.Context, userID, subjectID string) ([]domain.Note, error)

	// Remove deletes a note and its text.
	Remove(ctx context.Context, noteID string) error
}
