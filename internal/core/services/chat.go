package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/studyhall/internal/core/domain"
	"github.com/custodia-labs/studyhall/internal/core/ports/driven"
	"github.com/custodia-labs/studyhall/internal/core/ports/driving"
	"github.com/custodia-labs/studyhall/internal/logger"
)

// NotesProcessingReply is returned when a subject has no usable material yet.
const NotesProcessingReply = "Your notes for this subject are still being processed, or none have been uploaded yet. " +
	"Please upload a document or try again in a moment."

// Verify interface implementation.
var _ driving.ChatService = (*ChatService)(nil)

// ChatService answers questions about a subject's notes.
type ChatService struct {
	pipeline      *Pipeline
	conversations driven.ConversationStore
	historyLimit  int
	now           func() time.Time
}

// NewChatService creates a new chat service.
func NewChatService(pipeline *Pipeline, conversations driven.ConversationStore, historyLimit int) *ChatService {
	if historyLimit <= 0 {
		historyLimit = domain.DefaultGenerationSettings().HistoryLimit
	}
	return &ChatService{
		pipeline:      pipeline,
		conversations: conversations,
		historyLimit:  historyLimit,
		now:           time.Now,
	}
}

// Ask answers a question and records the exchange.
func (s *ChatService) Ask(ctx context.Context, key domain.ConversationKey, question string) (*domain.ChatReply, error) {
	if err := key.Validate(); err != nil {
		return nil, err
	}
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("%w: question is empty", domain.ErrInvalidInput)
	}

	history, err := s.conversations.List(ctx, key, s.historyLimit)
	if err != nil {
		return nil, fmt.Errorf("loading history: %w", err)
	}

	askedAt := s.now()
	result, err := s.pipeline.Run(ctx, PipelineRequest{
		Key:      key,
		Task:     domain.TaskChat,
		Prompt:   driven.PromptChatSystem,
		History:  history,
		UserTurn: question,
	})
	if errors.Is(err, domain.ErrNoMaterial) {
		logger.Info("no material for %s: %v", key, err)
		return &domain.ChatReply{Reply: NotesProcessingReply, NoMaterial: true}, nil
	}
	if err != nil {
		return nil, err
	}

	reply := ExtractReply(result.Completion)
	s.record(ctx, key, question, reply, askedAt)

	return &domain.ChatReply{
		Reply:     reply,
		Truncated: result.Bundle.WasTruncated,
	}, nil
}

// record appends the user and assistant turns. A failed append is logged
// and does not fail the request.
func (s *ChatService) record(ctx context.Context, key domain.ConversationKey, question, reply string, askedAt time.Time) {
	answeredAt := s.now()
	if !answeredAt.After(askedAt) {
		answeredAt = askedAt.Add(time.Nanosecond)
	}

	turns := []domain.ConversationTurn{
		{ID: uuid.New().String(), Key: key, Role: domain.RoleUser, Content: question, Timestamp: askedAt},
		{ID: uuid.New().String(), Key: key, Role: domain.RoleAssistant, Content: reply, Timestamp: answeredAt},
	}
	for i := range turns {
		if err := s.conversations.Append(ctx, turns[i]); err != nil {
			logger.Warn("failed to record %s turn for %s: %v", turns[i].Role, key, err)
		}
	}
}

// History returns the newest limit turns, oldest first.
func (s *ChatService) History(ctx context.Context, key domain.ConversationKey, limit int) ([]domain.ConversationTurn, error) {
	if err := key.Validate(); err != nil {
		return nil, err
	}
	return s.conversations.List(ctx, key, limit)
}

// ClearHistory deletes every turn of the conversation.
func (s *ChatService) ClearHistory(ctx context.Context, key domain.ConversationKey) (int, error) {
	if err := key.Validate(); err != nil {
		return 0, err
	}
	return s.conversations.Clear(ctx, key)
}
