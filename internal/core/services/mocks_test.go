package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/custodia-labs/studyhall/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/studyhall/internal/core/domain"
	"github.com/custodia-labs/studyhall/internal/core/ports/driven"
)

// scriptedResult is one canned answer from scriptedLLM.
type scriptedResult struct {
	completion *domain.Completion
	err        error
}

// scriptedLLM replays results in order, repeating the last one.
type scriptedLLM struct {
	mu       sync.Mutex
	results  []scriptedResult
	requests []domain.GenerationRequest
}

var _ driven.LLMService = (*scriptedLLM)(nil)

func newScriptedLLM(results ...scriptedResult) *scriptedLLM {
	return &scriptedLLM{results: results}
}

func replyWith(text string) scriptedResult {
	return scriptedResult{completion: &domain.Completion{Text: text, FinishReason: "stop"}}
}

func rateLimited(hint time.Duration, hasHint bool) scriptedResult {
	return scriptedResult{err: &domain.RateLimitError{RetryAfter: hint, HasHint: hasHint, Message: "slow down"}}
}

func (m *scriptedLLM) Complete(_ context.Context, req domain.GenerationRequest) (*domain.Completion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, req)
	if len(m.results) == 0 {
		return nil, errors.New("no scripted result")
	}
	idx := min(len(m.requests)-1, len(m.results)-1)
	r := m.results[idx]
	return r.completion, r.err
}

func (m *scriptedLLM) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

func (m *scriptedLLM) lastRequest() domain.GenerationRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.requests[len(m.requests)-1]
}

func (m *scriptedLLM) ModelName() string            { return "scripted" }
func (m *scriptedLLM) Ping(_ context.Context) error { return nil }
func (m *scriptedLLM) Close() error                 { return nil }

// recordingSleeper records requested waits without sleeping.
type recordingSleeper struct {
	mu    sync.Mutex
	waits []time.Duration
}

func (s *recordingSleeper) sleep(_ context.Context, d time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.waits = append(s.waits, d)
	return nil
}

// failingBlobStore fails every fetch of the listed handles.
type failingBlobStore struct {
	*memory.BlobStore
	failing map[string]bool
}

func (f *failingBlobStore) Fetch(ctx context.Context, handle string) ([]byte, error) {
	if f.failing[handle] {
		return nil, errors.New("storage offline")
	}
	return f.BlobStore.Fetch(ctx, handle)
}

// failingConversationStore rejects every append.
type failingConversationStore struct {
	*memory.ConversationStore
}

func (f *failingConversationStore) Append(context.Context, domain.ConversationTurn) error {
	return errors.New("database is locked")
}

// stubExtractor returns fixed text for its MIME types.
type stubExtractor struct {
	types []string
	text  string
	err   error
}

func (s *stubExtractor) SupportedMIMETypes() []string { return s.types }

func (s *stubExtractor) Extract(_ context.Context, _ *domain.RawUpload) (string, error) {
	return s.text, s.err
}

// studyFixture wires in-memory stores into a pipeline.
type studyFixture struct {
	notes         *memory.NoteStore
	blobs         *memory.BlobStore
	conversations *memory.ConversationStore
	llm           *scriptedLLM
	sleeper       *recordingSleeper
	settings      domain.AppSettings
	pipeline      *Pipeline
}

func newStudyFixture(llm *scriptedLLM) *studyFixture {
	f := &studyFixture{
		notes:         memory.NewNoteStore(),
		blobs:         memory.NewBlobStore(),
		conversations: memory.NewConversationStore(),
		llm:           llm,
		sleeper:       &recordingSleeper{},
		settings:      domain.DefaultAppSettings(),
	}
	invoker := NewResilientInvoker(llm, f.settings.Generation, WithSleeper(f.sleeper.sleep))
	f.pipeline = NewPipeline(NewNoteCorpusAggregator(f.notes, f.blobs), invoker, nil, f.settings)
	return f
}

// addNote stores text as a ready note for key.
func (f *studyFixture) addNote(key domain.ConversationKey, id, name, text string, createdAt time.Time) {
	handle := "blob-" + id
	f.blobs.PutWithHandle(handle, []byte(text))
	_ = f.notes.SaveNote(context.Background(), &domain.Note{
		ID:          id,
		UserID:      key.UserID,
		SubjectID:   key.SubjectID,
		DisplayName: name,
		TextHandle:  handle,
		ByteLength:  len(text),
		CreatedAt:   createdAt,
	})
}
