package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/studyhall/internal/core/domain"
	"github.com/custodia-labs/studyhall/internal/core/ports/driven"
)

// Ensure NoteStore implements the interface.
var _ driven.NoteStore = (*NoteStore)(nil)

// NoteStore is an in-memory implementation of driven.NoteStore.
type NoteStore struct {
	mu    sync.RWMutex
	notes map[string]domain.Note
}

// NewNoteStore creates a new in-memory note store.
func NewNoteStore() *NoteStore {
	return &NoteStore{
		notes: make(map[string]domain.Note),
	}
}

// SaveNote stores or updates a note.
func (s *NoteStore) SaveNote(_ context.Context, note *domain.Note) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notes[note.ID] = *note
	return nil
}

// GetNote retrieves a note by ID.
func (s *NoteStore) GetNote(_ context.Context, id string) (*domain.Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	note, ok := s.notes[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &note, nil
}

// ListNotes returns the notes of a (user, subject) pair, oldest first.
func (s *NoteStore) ListNotes(_ context.Context, userID, subjectID string) ([]domain.Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.Note, 0)
	for _, note := range s.notes {
		if note.UserID == userID && note.SubjectID == subjectID {
			result = append(result, note)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

// DeleteNote removes a note.
func (s *NoteStore) DeleteNote(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.notes[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.notes, id)
	return nil
}
