package mcp

import (
	"context"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/studyhall/internal/core/domain"
	"github.com/custodia-labs/studyhall/internal/core/ports/driving"
)

// AskInput is the input schema for the ask tool.
type AskInput struct {
	SubjectID string `json:"subject_id" jsonschema:"the subject whose notes the question is about"`
	Question  string `json:"question" jsonschema:"the question to answer"`
	UserID    string `json:"user_id,omitempty" jsonschema:"the studying user (defaults to the server user)"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Reply      string `json:"reply"`
	Truncated  bool   `json:"truncated"`
	NoMaterial bool   `json:"no_material"`
}

// FlashcardsInput is the input schema for the generate_flashcards tool.
type FlashcardsInput struct {
	SubjectID string `json:"subject_id" jsonschema:"the subject to build flashcards from"`
	Count     int    `json:"count,omitempty" jsonschema:"number of cards to generate (1-50, default 10)"`
	Title     string `json:"title,omitempty" jsonschema:"title for the flashcard set"`
	Focus     string `json:"focus,omitempty" jsonschema:"optional topic to concentrate on"`
	UserID    string `json:"user_id,omitempty" jsonschema:"the studying user (defaults to the server user)"`
}

// FlashcardsOutput is the output schema for the generate_flashcards tool.
type FlashcardsOutput struct {
	ID        string             `json:"id"`
	Title     string             `json:"title"`
	Cards     []domain.Flashcard `json:"cards"`
	Count     int                `json:"count"`
	Truncated bool               `json:"truncated"`
	CreatedAt string             `json:"created_at"`
}

// KeywordsInput is the input schema for the generate_keywords tool.
type KeywordsInput struct {
	SubjectID string `json:"subject_id" jsonschema:"the subject to extract key terms from"`
	Count     int    `json:"count,omitempty" jsonschema:"number of terms to generate (1-50, default 15)"`
	Focus     string `json:"focus,omitempty" jsonschema:"optional topic to concentrate on"`
	UserID    string `json:"user_id,omitempty" jsonschema:"the studying user (defaults to the server user)"`
}

// KeywordsOutput is the output schema for the generate_keywords tool.
type KeywordsOutput struct {
	Keywords []domain.Keyword `json:"keywords"`
	Count    int              `json:"count"`
}

// ClearHistoryInput is the input schema for the clear_history tool.
type ClearHistoryInput struct {
	SubjectID string `json:"subject_id" jsonschema:"the subject whose conversation is cleared"`
	UserID    string `json:"user_id,omitempty" jsonschema:"the studying user (defaults to the server user)"`
}

// ClearHistoryOutput is the output schema for the clear_history tool.
type ClearHistoryOutput struct {
	Removed int `json:"removed"`
}

// registerTools registers tool handlers for the configured ports.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Answer a question using the notes of a subject and the ongoing conversation",
	}, s.handleAsk)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "clear_history",
		Description: "Delete the stored conversation for a subject",
	}, s.handleClearHistory)

	if s.ports.Flashcards != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "generate_flashcards",
			Description: "Generate question and answer flashcards from the notes of a subject",
		}, s.handleFlashcards)
	}

	if s.ports.Keywords != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "generate_keywords",
			Description: "Extract key terms with short definitions from the notes of a subject",
		}, s.handleKeywords)
	}
}

func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	key, err := s.key(input.UserID, input.SubjectID)
	if err != nil {
		return nil, AskOutput{}, err
	}

	reply, err := s.ports.Chat.Ask(ctx, key, input.Question)
	if err != nil {
		return nil, AskOutput{}, err
	}

	return nil, AskOutput{
		Reply:      reply.Reply,
		Truncated:  reply.Truncated,
		NoMaterial: reply.NoMaterial,
	}, nil
}

func (s *Server) handleFlashcards(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input FlashcardsInput,
) (*mcp.CallToolResult, FlashcardsOutput, error) {
	key, err := s.key(input.UserID, input.SubjectID)
	if err != nil {
		return nil, FlashcardsOutput{}, err
	}

	set, err := s.ports.Flashcards.Generate(ctx, key, driving.FlashcardOptions{
		Count: input.Count,
		Title: input.Title,
		Focus: input.Focus,
	})
	if err != nil {
		return nil, FlashcardsOutput{}, err
	}

	return nil, FlashcardsOutput{
		ID:        set.ID,
		Title:     set.Title,
		Cards:     set.Cards,
		Count:     len(set.Cards),
		Truncated: set.Truncated,
		CreatedAt: set.CreatedAt.UTC().Format(time.RFC3339),
	}, nil
}

func (s *Server) handleKeywords(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input KeywordsInput,
) (*mcp.CallToolResult, KeywordsOutput, error) {
	key, err := s.key(input.UserID, input.SubjectID)
	if err != nil {
		return nil, KeywordsOutput{}, err
	}

	keywords, err := s.ports.Keywords.Generate(ctx, key, driving.KeywordOptions{
		Count: input.Count,
		Focus: input.Focus,
	})
	if err != nil {
		return nil, KeywordsOutput{}, err
	}

	return nil, KeywordsOutput{Keywords: keywords, Count: len(keywords)}, nil
}

func (s *Server) handleClearHistory(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ClearHistoryInput,
) (*mcp.CallToolResult, ClearHistoryOutput, error) {
	key, err := s.key(input.UserID, input.SubjectID)
	if err != nil {
		return nil, ClearHistoryOutput{}, err
	}

	removed, err := s.ports.Chat.ClearHistory(ctx, key)
	if err != nil {
		return nil, ClearHistoryOutput{}, err
	}

	return nil, ClearHistoryOutput{Removed: removed}, nil
}
