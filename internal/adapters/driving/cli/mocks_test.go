package cli

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"github.com/custodia-labs/studyhall/internal/core/domain"
	"github.com/custodia-labs/studyhall/internal/core/ports/driving"
)

type mockChatService struct {
	reply   *domain.ChatReply
	turns   []domain.ConversationTurn
	removed int
	err     error

	questions []string
	lastKey   domain.ConversationKey
	lastLimit int
}

func (m *mockChatService) Ask(_ context.Context, key domain.ConversationKey, question string) (*domain.ChatReply, error) {
	m.lastKey = key
	m.questions = append(m.questions, question)
	if m.err != nil {
		return nil, m.err
	}
	return m.reply, nil
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

type mockFlashcardService struct {
	err      error
	lastKey  domain.ConversationKey
	lastOpts driving.FlashcardOptions
}

func (m *mockFlashcardService) Generate(
	_ context.Context,
	key domain.ConversationKey,
	opts driving.FlashcardOptions,
) (*domain.FlashcardSet, error) {
	m.lastKey = key
	m.lastOpts = opts
	if m.err != nil {
		return nil, m.err
	}
	title := opts.Title
	if title == "" {
		title = key.SubjectID + " flashcards"
	}
	return &domain.FlashcardSet{
		ID:        "set-1",
		Title:     title,
		UserID:    key.UserID,
		SubjectID: key.SubjectID,
		Cards: []domain.Flashcard{
			{Front: "What is the powerhouse of the cell?", Back: "The mitochondrion"},
			{Front: "Where are proteins made?", Back: "At the ribosome"},
		},
		CreatedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}, nil
}

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

type mockNoteService struct {
	notes []domain.Note
	err   error

	added   []driving.NoteInput
	removed []string
}

func (m *mockNoteService) Add(_ context.Context, input driving.NoteInput) (*domain.Note, error) {
	m.added = append(m.added, input)
	if m.err != nil {
		return nil, m.err
	}
	return &domain.Note{
		ID:          "note-1",
		UserID:      input.UserID,
		SubjectID:   input.SubjectID,
		DisplayName: input.DisplayName,
		MIMEType:    "text/plain",
		TextHandle:  "blob-1",
		ByteLength:  len(input.Data),
	}, nil
}

func (m *mockNoteService) List(_ context.Context, _, _ string) ([]domain.Note, error) {
	return m.notes, m.err
}

func (m *mockNoteService) Remove(_ context.Context, noteID string) error {
	m.removed = append(m.removed, noteID)
	return m.err
}

type mockSettingsService struct {
	settings domain.AppSettings
	err      error

	setCalls    map[string]string
	provider    domain.AIProvider
	model       string
	apiKey      string
	validateErr error
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	if m.err != nil {
		return nil, m.err
	}
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Save(settings *domain.AppSettings) error {
	m.settings = *settings
	return m.err
}

func (m *mockSettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	m.provider, m.model, m.apiKey = provider, model, apiKey
	return m.err
}

func (m *mockSettingsService) Set(key, value string) error {
	if m.err != nil {
		return m.err
	}
	if m.setCalls == nil {
		m.setCalls = make(map[string]string)
	}
	m.setCalls[key] = value
	return nil
}

func (m *mockSettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

func (m *mockSettingsService) ValidateLLMConfig() error {
	return m.validateErr
}

// testServices holds the mocks installed by setupTestServices.
type testServices struct {
	chat       *mockChatService
	flashcards *mockFlashcardService
	keywords   *mockKeywordService
	notes      *mockNoteService
	settings   *mockSettingsService
}

// setupTestServices installs mock services and returns a cleanup function
// that removes them and resets every flag variable.
func setupTestServices() (*testServices, func()) {
	ts := &testServices{
		chat:       &mockChatService{reply: &domain.ChatReply{Reply: "Mitochondria produce ATP."}},
		flashcards: &mockFlashcardService{},
		keywords: &mockKeywordService{keywords: []domain.Keyword{
			{Term: "ATP", Definition: "Energy currency of the cell"},
			{Term: "Ribosome", Definition: "Builds proteins"},
		}},
		notes:    &mockNoteService{},
		settings: &mockSettingsService{settings: domain.DefaultAppSettings()},
	}

	SetServices(Services{
		Chat:        ts.chat,
		Flashcards:  ts.flashcards,
		Keywords:    ts.keywords,
		Notes:       ts.notes,
		Settings:    ts.settings,
		SettingKeys: []string{"llm.provider", "generation.max_retries", "budget.chat.max_chars"},
	})

	return ts, func() {
		SetServices(Services{})
		resetFlags()
	}
}

func resetFlags() {
	userID, subjectID = "", ""
	verbose, jsonOutput = false, false
	flashcardCount, flashcardTitle, flashcardFocus = 10, "", ""
	keywordCount, keywordFocus = 15, ""
	historyLimit = 20
	chatHistoryLimit = 50
	noteName, noteType = "", ""
}

// execute runs the root command with args and returns everything written.
func execute(t *testing.T, stdin io.Reader, args ...string) (string, error) {
	t.Helper()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(stdin)
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
		resetFlags()
	}()

	err := rootCmd.Execute()
	return buf.String(), err
}
