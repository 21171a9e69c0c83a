package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/studyhall/internal/core/domain"
	"github.com/custodia-labs/studyhall/internal/core/ports/driven"
	"github.com/custodia-labs/studyhall/internal/core/ports/driving"
)

// Flashcard count bounds.
const (
	DefaultFlashcardCount = 10
	MaxFlashcardCount     = 50
)

// Verify interface implementation.
var _ driving.FlashcardService = (*FlashcardService)(nil)

// FlashcardService generates flashcard sets from a subject's notes.
type FlashcardService struct {
	pipeline *Pipeline
	rules    []RepairRule
	now      func() time.Time
}

// NewFlashcardService creates a new flashcard service.
func NewFlashcardService(pipeline *Pipeline) *FlashcardService {
	return &FlashcardService{
		pipeline: pipeline,
		rules:    DefaultRepairRules,
		now:      time.Now,
	}
}

var flashcardSpec = RecordSpec[domain.Flashcard]{
	Keys: []string{"front", "back"},
	Normalize: func(c domain.Flashcard) domain.Flashcard {
		c.Front = strings.TrimSpace(c.Front)
		c.Back = strings.TrimSpace(c.Back)
		return c
	},
	Validate: func(c domain.Flashcard) bool {
		return c.Front != "" && c.Back != ""
	},
}

// Generate produces up to opts.Count flashcards with distinct fronts.
func (s *FlashcardService) Generate(
	ctx context.Context,
	key domain.ConversationKey,
	opts driving.FlashcardOptions,
) (*domain.FlashcardSet, error) {
	count := clampCount(opts.Count, DefaultFlashcardCount, MaxFlashcardCount)

	result, err := s.pipeline.Run(ctx, PipelineRequest{
		Key:      key,
		Task:     domain.TaskFlashcards,
		Prompt:   driven.PromptFlashcards,
		Count:    count,
		UserTurn: structuredRequest(fmt.Sprintf("Create %d flashcards", count), opts.Focus),
	})
	if err != nil {
		return nil, err
	}

	cards, err := ExtractRecords(StructuredText(result.Completion), 0, flashcardSpec, s.rules)
	if err != nil {
		return nil, fmt.Errorf("extracting flashcards: %w", err)
	}
	cards = dedupeRecords(cards, count, func(c domain.Flashcard) string { return c.Front })

	title := strings.TrimSpace(opts.Title)
	if title == "" {
		title = fmt.Sprintf("%s flashcards", key.SubjectID)
	}

	return &domain.FlashcardSet{
		ID:        uuid.New().String(),
		Title:     title,
		UserID:    key.UserID,
		SubjectID: key.SubjectID,
		Cards:     cards,
		Truncated: result.Bundle.WasTruncated,
		CreatedAt: s.now(),
	}, nil
}

// clampCount bounds a requested record count to [1, maxCount].
// Zero or negative selects def.
func clampCount(n, def, maxCount int) int {
	if n <= 0 {
		return def
	}
	return min(n, maxCount)
}

// structuredRequest is the user turn for structured generation.
func structuredRequest(base, focus string) string {
	focus = strings.TrimSpace(focus)
	if focus == "" {
		return base + " from the study material."
	}
	return fmt.Sprintf("%s from the study material, focusing on: %s.", base, focus)
}
