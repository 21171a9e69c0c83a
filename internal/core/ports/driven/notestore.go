package driven

import (
	"context"

	"github.com/custodia-labs/studyhall/internal/core/domain"
)

// NoteStore persists note metadata.
type NoteStore interface {
	// SaveNote stores or updates a note.
	SaveNote(ctx context.Context, note *domain.Note) error

	// GetNote retrieves a note by ID, or domain.ErrNotFound.
	GetNote(ctx context.Context, id string) (*domain.Note, error)

	// ListNotes returns the notes of a (user, subject) pair, oldest first.
	ListNotes(ctx context.Context, userID, subjectID string) ([]domain.Note, error)

	// DeleteNote removes a note.
	DeleteNote(ctx context.Context, id string) error
}
