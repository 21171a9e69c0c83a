package domain

import "time"

const unknownDescription = "Unknown"

// AIProvider identifies an LLM service provider.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API, or any compatible endpoint.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	default:
		return unknownDescription
	}
}

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint. Empty uses the provider default.
	BaseURL string

	// APIKey is the API key (for OpenAI/Anthropic).
	APIKey string
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// GenerationSettings controls retry, pacing and response size for every generation call.
type GenerationSettings struct {
	// MaxRetries is the number of calls made before rate limiting becomes fatal.
	MaxRetries int

	// FallbackWaitSeconds is used when a rate-limit response carries no hint.
	FallbackWaitSeconds int

	// MaxWaitSeconds caps any single backoff regardless of the server hint.
	MaxWaitSeconds int

	// RequestsPerMinute paces outgoing calls. Zero disables pacing.
	RequestsPerMinute int

	// HistoryLimit bounds how many persisted turns are replayed into a chat prompt.
	HistoryLimit int

	// MaxResponseTokens is the response-size limit sent with every request.
	MaxResponseTokens int
}

// FallbackWait returns the no-hint wait as a duration.
func (g GenerationSettings) FallbackWait() time.Duration {
	return time.Duration(g.FallbackWaitSeconds) * time.Second
}

// MaxWait returns the backoff cap as a duration.
func (g GenerationSettings) MaxWait() time.Duration {
	return time.Duration(g.MaxWaitSeconds) * time.Second
}

// BudgetSettings sizes the context budget for one kind of task.
// All values are in characters.
type BudgetSettings struct {
	MaxChars       int
	HeadChars      int
	TailChars      int
	MidSampleChars int
}

// Task names a generation feature with its own budget.
type Task string

// Generation tasks.
const (
	TaskChat       Task = "chat"
	TaskFlashcards Task = "flashcards"
	TaskKeywords   Task = "keywords"
)

// AllTasks returns every generation task.
func AllTasks() []Task {
	return []Task{TaskChat, TaskFlashcards, TaskKeywords}
}

// StorageSettings selects persistence backends.
type StorageSettings struct {
	// DataDir holds the SQLite database. Empty uses ~/.studyhall/data.
	DataDir string

	// PostgresDSN, when set, moves conversation history to Postgres.
	PostgresDSN string
}

// AppSettings holds all application settings. It is built once at start-up
// and passed into constructors; nothing reads configuration lazily.
type AppSettings struct {
	LLM        LLMSettings
	Generation GenerationSettings
	Budgets    map[Task]BudgetSettings
	Storage    StorageSettings
}

// Budget returns the budget for task, falling back to the chat budget.
func (s AppSettings) Budget(task Task) BudgetSettings {
	if b, ok := s.Budgets[task]; ok {
		return b
	}
	return DefaultBudgets()[TaskChat]
}

// DefaultGenerationSettings returns the retry and pacing defaults.
func DefaultGenerationSettings() GenerationSettings {
	return GenerationSettings{
		MaxRetries:          3,
		FallbackWaitSeconds: 60,
		MaxWaitSeconds:      120,
		RequestsPerMinute:   0,
		HistoryLimit:        20,
		MaxResponseTokens:   2048,
	}
}

// DefaultBudgets returns per-task context budgets. A conversational answer
// affords a larger budget than keyword extraction.
func DefaultBudgets() map[Task]BudgetSettings {
	return map[Task]BudgetSettings{
		TaskChat:       {MaxChars: 60000, HeadChars: 24000, TailChars: 12000, MidSampleChars: 6000},
		TaskFlashcards: {MaxChars: 30000, HeadChars: 12000, TailChars: 6000, MidSampleChars: 4000},
		TaskKeywords:   {MaxChars: 15000, HeadChars: 6000, TailChars: 3000, MidSampleChars: 2000},
	}
}

// DefaultAppSettings returns settings with sensible defaults.
// The LLM is left unconfigured; users must set a provider explicitly.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		LLM:        LLMSettings{},
		Generation: DefaultGenerationSettings(),
		Budgets:    DefaultBudgets(),
	}
}

// AllLLMProviders returns providers that support LLM operations.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderAnthropic,
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:    "llama3.2",
		AIProviderOpenAI:    "gpt-4o-mini",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
	}
}
