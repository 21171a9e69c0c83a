package services

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/studyhall/internal/core/domain"
	"github.com/custodia-labs/studyhall/internal/core/ports/driven"
	"github.com/custodia-labs/studyhall/internal/core/ports/driving"
	"github.com/custodia-labs/studyhall/internal/logger"
)

// extensionTypes covers extensions the system MIME table may not know.
var extensionTypes = map[string]string{
	".txt":      "text/plain",
	".text":     "text/plain",
	".md":       "text/markdown",
	".markdown": "text/markdown",
	".pdf":      "application/pdf",
	".html":     "text/html",
	".htm":      "text/html",
	".docx":     "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

// Verify interface implementation.
var _ driving.NoteService = (*NoteService)(nil)

// NoteService ingests uploads into notes with extracted text.
type NoteService struct {
	notes      driven.NoteStore
	blobs      driven.BlobStore
	extractors map[string]driven.TextExtractor
	now        func() time.Time
}

// NewNoteService creates a new note service. Later extractors win when two
// claim the same MIME type.
func NewNoteService(notes driven.NoteStore, blobs driven.BlobStore, extractors ...driven.TextExtractor) *NoteService {
	registry := make(map[string]driven.TextExtractor)
	for _, e := range extractors {
		for _, mimeType := range e.SupportedMIMETypes() {
			registry[mimeType] = e
		}
	}
	return &NoteService{
		notes:      notes,
		blobs:      blobs,
		extractors: registry,
		now:        time.Now,
	}
}

// SupportedMIMETypes lists every MIME type with a registered extractor.
func (s *NoteService) SupportedMIMETypes() []string {
	types := make([]string, 0, len(s.extractors))
	for t := range s.extractors {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// Add extracts text from an upload and stores the resulting note.
func (s *NoteService) Add(ctx context.Context, input driving.NoteInput) (*domain.Note, error) {
	key := domain.ConversationKey{UserID: input.UserID, SubjectID: input.SubjectID}
	if err := key.Validate(); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(input.DisplayName)
	if name == "" {
		return nil, fmt.Errorf("%w: display name is required", domain.ErrInvalidInput)
	}

	mimeType, extractor, err := s.resolve(input.MIMEType, name)
	if err != nil {
		return nil, err
	}

	note := &domain.Note{
		ID:          uuid.New().String(),
		UserID:      input.UserID,
		SubjectID:   input.SubjectID,
		DisplayName: name,
		MIMEType:    mimeType,
		TextHandle:  domain.HandleFailed,
		CreatedAt:   s.now(),
	}

	text, err := extractor.Extract(ctx, &domain.RawUpload{
		Filename: name,
		MIMEType: mimeType,
		Content:  input.Data,
	})
	switch {
	case err != nil:
		logger.Warn("extracting text from %s: %v", name, err)
	case strings.TrimSpace(text) == "":
		logger.Warn("no text extracted from %s", name)
	default:
		handle, err := s.blobs.Put(ctx, []byte(text))
		if err != nil {
			return nil, fmt.Errorf("storing text: %w", err)
		}
		note.TextHandle = handle
		note.ByteLength = len(text)
	}

	if err := s.notes.SaveNote(ctx, note); err != nil {
		if note.HasUsableText() {
			if delErr := s.blobs.Delete(ctx, note.TextHandle); delErr != nil {
				logger.Warn("cleaning up text blob %s: %v", note.TextHandle, delErr)
			}
		}
		return nil, fmt.Errorf("saving note: %w", err)
	}

	logger.Info("added note %s (%s, %d bytes of text)", note.DisplayName, note.MIMEType, note.ByteLength)
	return note, nil
}

// resolve picks the extractor for an upload, falling back to the file extension.
func (s *NoteService) resolve(mimeType, filename string) (string, driven.TextExtractor, error) {
	if t := normaliseMIME(mimeType); t != "" {
		if e, ok := s.extractors[t]; ok {
			return t, e, nil
		}
	}

	ext := strings.ToLower(filepath.Ext(filename))
	candidates := []string{extensionTypes[ext], normaliseMIME(mime.TypeByExtension(ext))}
	for _, t := range candidates {
		if e, ok := s.extractors[t]; ok && t != "" {
			return t, e, nil
		}
	}

	return "", nil, fmt.Errorf("%w: %q (%s)", domain.ErrUnsupportedType, mimeType, filename)
}

// normaliseMIME strips parameters such as charset.
func normaliseMIME(mimeType string) string {
	mimeType = strings.TrimSpace(mimeType)
	if mimeType == "" {
		return ""
	}
	if parsed, _, err := mime.ParseMediaType(mimeType); err == nil {
		return parsed
	}
	return strings.ToLower(mimeType)
}

// List returns the notes of a subject.
func (s *NoteService) List(ctx context.Context, userID, subjectID string) ([]domain.Note, error) {
	key := domain.ConversationKey{UserID: userID, SubjectID: subjectID}
	if err := key.Validate(); err != nil {
		return nil, err
	}
	return s.notes.ListNotes(ctx, userID, subjectID)
}

// Remove deletes a note's text blob and then the note.
func (s *NoteService) Remove(ctx context.Context, noteID string) error {
	note, err := s.notes.GetNote(ctx, noteID)
	if err != nil {
		return err
	}

	if note.HasUsableText() {
		if err := s.blobs.Delete(ctx, note.TextHandle); err != nil && !errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("deleting text: %w", err)
		}
	}

	return s.notes.DeleteNote(ctx, noteID)
}
