package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/studyhall/internal/core/domain"
)

func TestChatService_Ask_NoMaterialSkipsGeneration(t *testing.T) {
	llm := newScriptedLLM(replyWith("should not be used"))
	f := newStudyFixture(llm)
	// A note exists but its text is still being extracted.
	require.NoError(t, f.notes.SaveNote(context.Background(), &domain.Note{
		ID: "n1", UserID: "u1", SubjectID: "bio", DisplayName: "cells.pdf", TextHandle: domain.HandlePending,
	}))
	chat := NewChatService(f.pipeline, f.conversations, 20)

	reply, err := chat.Ask(context.Background(), bio, "What is a cell?")

	require.NoError(t, err)
	assert.Equal(t, NotesProcessingReply, reply.Reply)
	assert.True(t, reply.NoMaterial)
	assert.Zero(t, llm.calls())

	n, err := f.conversations.Count(context.Background(), bio)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestChatService_Ask_NoNotesAtAll(t *testing.T) {
	llm := newScriptedLLM(replyWith("unused"))
	f := newStudyFixture(llm)
	chat := NewChatService(f.pipeline, f.conversations, 20)

	reply, err := chat.Ask(context.Background(), bio, "Anything?")

	require.NoError(t, err)
	assert.Equal(t, NotesProcessingReply, reply.Reply)
	assert.Zero(t, llm.calls())
}

func TestChatService_Ask_RecordsExchange(t *testing.T) {
	llm := newScriptedLLM(replyWith("A cell is the basic unit of life."))
	f := newStudyFixture(llm)
	f.addNote(bio, "n1", "cells.md", "Cells are the basic unit of life.", time.Now())
	chat := NewChatService(f.pipeline, f.conversations, 20)

	reply, err := chat.Ask(context.Background(), bio, "  What is a cell?  ")

	require.NoError(t, err)
	assert.Equal(t, "A cell is the basic unit of life.", reply.Reply)
	assert.False(t, reply.Truncated)

	req := llm.lastRequest()
	require.Len(t, req.Messages, 2)
	assert.Equal(t, domain.RoleSystem, req.Messages[0].Role)
	assert.Contains(t, req.Messages[0].Content, "=== Document: cells.md ===")
	assert.Equal(t, "What is a cell?", req.Messages[1].Content)

	turns, err := chat.History(context.Background(), bio, 0)
	require.NoError(t, err)
	require.Len(t, turns, 2)
	assert.Equal(t, domain.RoleUser, turns[0].Role)
	assert.Equal(t, "What is a cell?", turns[0].Content)
	assert.Equal(t, domain.RoleAssistant, turns[1].Role)
	assert.True(t, turns[1].Timestamp.After(turns[0].Timestamp))
}

func TestChatService_Ask_ReplaysBoundedHistory(t *testing.T) {
	llm := newScriptedLLM(replyWith("ok"))
	f := newStudyFixture(llm)
	f.addNote(bio, "n1", "cells.md", "Cells.", time.Now())
	base := time.Now().Add(-time.Hour)
	for i := 0; i < 6; i++ {
		require.NoError(t, f.conversations.Append(context.Background(), domain.ConversationTurn{
			ID: fmt.Sprintf("t%d", i), Key: bio, Role: domain.RoleUser,
			Content: fmt.Sprintf("old %d", i), Timestamp: base.Add(time.Duration(i) * time.Minute),
		}))
	}
	chat := NewChatService(f.pipeline, f.conversations, 4)

	_, err := chat.Ask(context.Background(), bio, "new")

	require.NoError(t, err)
	req := llm.lastRequest()
	require.Len(t, req.Messages, 1+4+1)
	assert.Equal(t, "old 2", req.Messages[1].Content)
	assert.Equal(t, "old 5", req.Messages[4].Content)
}

func TestChatService_Ask_EmptyReplyUsesFallback(t *testing.T) {
	llm := newScriptedLLM(replyWith("   "))
	f := newStudyFixture(llm)
	f.addNote(bio, "n1", "cells.md", "Cells.", time.Now())
	chat := NewChatService(f.pipeline, f.conversations, 20)

	reply, err := chat.Ask(context.Background(), bio, "?")

	require.NoError(t, err)
	assert.Equal(t, FallbackReply, reply.Reply)
}

func TestChatService_Ask_UpstreamFailure(t *testing.T) {
	llm := newScriptedLLM(scriptedResult{err: errors.New("service unavailable")})
	f := newStudyFixture(llm)
	f.addNote(bio, "n1", "cells.md", "Cells.", time.Now())
	chat := NewChatService(f.pipeline, f.conversations, 20)

	_, err := chat.Ask(context.Background(), bio, "?")

	assert.ErrorIs(t, err, domain.ErrUpstreamFatal)
	n, _ := f.conversations.Count(context.Background(), bio)
	assert.Zero(t, n)
}

func TestChatService_Ask_AppendFailureIsNotFatal(t *testing.T) {
	llm := newScriptedLLM(replyWith("still answered"))
	f := newStudyFixture(llm)
	f.addNote(bio, "n1", "cells.md", "Cells.", time.Now())
	chat := NewChatService(f.pipeline, &failingConversationStore{ConversationStore: f.conversations}, 20)

	reply, err := chat.Ask(context.Background(), bio, "?")

	require.NoError(t, err)
	assert.Equal(t, "still answered", reply.Reply)
}

func TestChatService_Ask_TruncatedMaterial(t *testing.T) {
	llm := newScriptedLLM(replyWith("ok"))
	f := newStudyFixture(llm)
	f.addNote(bio, "n1", "big.txt", strings.Repeat("photosynthesis ", 10000), time.Now())
	chat := NewChatService(f.pipeline, f.conversations, 20)

	reply, err := chat.Ask(context.Background(), bio, "Summarise")

	require.NoError(t, err)
	assert.True(t, reply.Truncated)
	assert.Contains(t, llm.lastRequest().Messages[0].Content, TruncationNote)
}

func TestChatService_Ask_InvalidInput(t *testing.T) {
	f := newStudyFixture(newScriptedLLM())
	chat := NewChatService(f.pipeline, f.conversations, 20)

	_, err := chat.Ask(context.Background(), domain.ConversationKey{UserID: "u1"}, "q")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = chat.Ask(context.Background(), bio, "   ")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestChatService_ClearHistory(t *testing.T) {
	llm := newScriptedLLM(replyWith("ok"))
	f := newStudyFixture(llm)
	f.addNote(bio, "n1", "cells.md", "Cells.", time.Now())
	chat := NewChatService(f.pipeline, f.conversations, 20)
	_, err := chat.Ask(context.Background(), bio, "one")
	require.NoError(t, err)

	removed, err := chat.ClearHistory(context.Background(), bio)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	turns, err := chat.History(context.Background(), bio, 50)
	require.NoError(t, err)
	assert.Empty(t, turns)
}

func TestPipeline_Run_NilInvokerAfterMaterial(t *testing.T) {
	f := newStudyFixture(newScriptedLLM())
	f.addNote(bio, "n1", "cells.md", "Cells.", time.Now())
	pipeline := NewPipeline(NewNoteCorpusAggregator(f.notes, f.blobs), nil, nil, f.settings)

	_, err := pipeline.Run(context.Background(), PipelineRequest{Key: bio, Task: domain.TaskChat, UserTurn: "q"})
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
}

type stubPromptStore struct {
	prompts map[string]string
}

func (s *stubPromptStore) Load(name string) (string, error) {
	p, ok := s.prompts[name]
	if !ok {
		return "", domain.ErrNotFound
	}
	return p, nil
}

func (s *stubPromptStore) Reload() {}

func TestPipeline_Run_UsesPromptStore(t *testing.T) {
	llm := newScriptedLLM(replyWith("[]"))
	f := newStudyFixture(llm)
	f.addNote(bio, "n1", "cells.md", "Cells.", time.Now())
	prompts := &stubPromptStore{prompts: map[string]string{"custom": "Make %d cards from: %s"}}
	invoker := NewResilientInvoker(llm, f.settings.Generation)
	pipeline := NewPipeline(NewNoteCorpusAggregator(f.notes, f.blobs), invoker, prompts, f.settings)

	_, err := pipeline.Run(context.Background(), PipelineRequest{Key: bio, Task: domain.TaskFlashcards, Prompt: "custom", Count: 3, UserTurn: "go"})

	require.NoError(t, err)
	assert.Equal(t, "Make 3 cards from: === Document: cells.md ===\nCells.", llm.lastRequest().Messages[0].Content)
}
