package services

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/custodia-labs/studyhall/internal/core/domain"
	"github.com/custodia-labs/studyhall/internal/core/ports/driven"
	"github.com/custodia-labs/studyhall/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyLLMProvider = "llm.provider"
	keyLLMModel    = "llm.model"
	keyLLMBaseURL  = "llm.base_url"
	keyLLMAPIKey   = "llm.api_key"

	keyMaxRetries        = "generation.max_retries"
	keyFallbackWait      = "generation.fallback_wait_seconds"
	keyMaxWait           = "generation.max_wait_seconds"
	keyRequestsPerMinute = "generation.requests_per_minute"
	keyHistoryLimit      = "generation.history_limit"
	keyMaxTokens         = "generation.max_response_tokens"

	keyDataDir     = "storage.data_dir"
	keyPostgresDSN = "storage.postgres_dsn"

	budgetPrefix = "budget."
)

// Environment variables that override the config file.
//
//nolint:gosec // G101: These are variable names, not actual credentials.
const (
	EnvLLMProvider = "STUDYHALL_LLM_PROVIDER"
	EnvLLMModel    = "STUDYHALL_LLM_MODEL"
	EnvLLMBaseURL  = "STUDYHALL_LLM_BASE_URL"
	EnvLLMAPIKey   = "STUDYHALL_LLM_API_KEY"
	EnvPostgresDSN = "STUDYHALL_POSTGRES_DSN"
)

// Budget field names under budget.<task>.
const (
	budgetMaxChars  = "max_chars"
	budgetHeadChars = "head_chars"
	budgetTailChars = "tail_chars"
	budgetMidChars  = "mid_sample_chars"
)

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
	lookupEnv   func(string) (string, bool)
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
		lookupEnv:   os.LookupEnv,
	}
}

// Get retrieves current application settings. Environment variables take
// precedence over the config file.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	settings := s.stored()
	s.applyEnv(settings)
	return settings, nil
}

// stored reads settings from the config store only.
func (s *SettingsService) stored() *domain.AppSettings {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		LLM: domain.LLMSettings{
			Provider: s.getProvider(keyLLMProvider, defaults.LLM.Provider),
			Model:    s.getString(keyLLMModel, defaults.LLM.Model),
			BaseURL:  s.configStore.GetString(keyLLMBaseURL), // No default - empty uses the provider endpoint
			APIKey:   s.configStore.GetString(keyLLMAPIKey),
		},
		Generation: domain.GenerationSettings{
			MaxRetries:          s.getInt(keyMaxRetries, defaults.Generation.MaxRetries),
			FallbackWaitSeconds: s.getInt(keyFallbackWait, defaults.Generation.FallbackWaitSeconds),
			MaxWaitSeconds:      s.getInt(keyMaxWait, defaults.Generation.MaxWaitSeconds),
			RequestsPerMinute:   s.getInt(keyRequestsPerMinute, defaults.Generation.RequestsPerMinute),
			HistoryLimit:        s.getInt(keyHistoryLimit, defaults.Generation.HistoryLimit),
			MaxResponseTokens:   s.getInt(keyMaxTokens, defaults.Generation.MaxResponseTokens),
		},
		Budgets: make(map[domain.Task]domain.BudgetSettings, len(defaults.Budgets)),
		Storage: domain.StorageSettings{
			DataDir:     s.configStore.GetString(keyDataDir),
			PostgresDSN: s.configStore.GetString(keyPostgresDSN),
		},
	}

	for _, task := range domain.AllTasks() {
		def := defaults.Budgets[task]
		prefix := budgetPrefix + string(task) + "."
		settings.Budgets[task] = domain.BudgetSettings{
			MaxChars:       s.getInt(prefix+budgetMaxChars, def.MaxChars),
			HeadChars:      s.getInt(prefix+budgetHeadChars, def.HeadChars),
			TailChars:      s.getInt(prefix+budgetTailChars, def.TailChars),
			MidSampleChars: s.getInt(prefix+budgetMidChars, def.MidSampleChars),
		}
	}

	return settings
}

func (s *SettingsService) applyEnv(settings *domain.AppSettings) {
	if v, ok := s.env(EnvLLMProvider); ok {
		if provider := domain.AIProvider(strings.ToLower(v)); provider.IsValid() {
			settings.LLM.Provider = provider
		}
	}
	if v, ok := s.env(EnvLLMModel); ok {
		settings.LLM.Model = v
	}
	if v, ok := s.env(EnvLLMBaseURL); ok {
		settings.LLM.BaseURL = v
	}
	if v, ok := s.env(EnvLLMAPIKey); ok {
		settings.LLM.APIKey = v
	}
	if v, ok := s.env(EnvPostgresDSN); ok {
		settings.Storage.PostgresDSN = v
	}
	if settings.LLM.Provider.IsValid() && settings.LLM.Model == "" {
		settings.LLM.Model = domain.DefaultLLMModels()[settings.LLM.Provider]
	}
}

// env returns a non-empty environment value.
func (s *SettingsService) env(name string) (string, bool) {
	if s.lookupEnv == nil {
		return "", false
	}
	v, ok := s.lookupEnv(name)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	// Save LLM settings
	if err := s.configStore.Set(keyLLMProvider, settings.LLM.Provider.String()); err != nil {
		return fmt.Errorf("save llm provider: %w", err)
	}
	if err := s.configStore.Set(keyLLMModel, settings.LLM.Model); err != nil {
		return fmt.Errorf("save llm model: %w", err)
	}
	if err := s.configStore.Set(keyLLMBaseURL, settings.LLM.BaseURL); err != nil {
		return fmt.Errorf("save llm base_url: %w", err)
	}
	if settings.LLM.APIKey != "" {
		if err := s.configStore.Set(keyLLMAPIKey, settings.LLM.APIKey); err != nil {
			return fmt.Errorf("save llm api_key: %w", err)
		}
	}

	// Save generation settings
	gen := settings.Generation
	for key, value := range map[string]int{
		keyMaxRetries:        gen.MaxRetries,
		keyFallbackWait:      gen.FallbackWaitSeconds,
		keyMaxWait:           gen.MaxWaitSeconds,
		keyRequestsPerMinute: gen.RequestsPerMinute,
		keyHistoryLimit:      gen.HistoryLimit,
		keyMaxTokens:         gen.MaxResponseTokens,
	} {
		if err := s.configStore.Set(key, value); err != nil {
			return fmt.Errorf("save %s: %w", key, err)
		}
	}

	// Save budgets
	for task, b := range settings.Budgets {
		prefix := budgetPrefix + string(task) + "."
		for field, value := range map[string]int{
			budgetMaxChars:  b.MaxChars,
			budgetHeadChars: b.HeadChars,
			budgetTailChars: b.TailChars,
			budgetMidChars:  b.MidSampleChars,
		} {
			if err := s.configStore.Set(prefix+field, value); err != nil {
				return fmt.Errorf("save %s: %w", prefix+field, err)
			}
		}
	}

	// Save storage settings
	if err := s.configStore.Set(keyDataDir, settings.Storage.DataDir); err != nil {
		return fmt.Errorf("save storage data_dir: %w", err)
	}
	if settings.Storage.PostgresDSN != "" {
		if err := s.configStore.Set(keyPostgresDSN, settings.Storage.PostgresDSN); err != nil {
			return fmt.Errorf("save storage postgres_dsn: %w", err)
		}
	}

	return nil
}

// SetLLMProvider configures the LLM provider.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid LLM provider: %s", provider)
	}

	// Validate API key if required
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	settings := s.stored()
	settings.LLM.Provider = provider

	// Set model - use provided or default
	if model != "" {
		settings.LLM.Model = model
	} else {
		settings.LLM.Model = domain.DefaultLLMModels()[provider]
	}

	// Local providers need a base URL; cloud providers use their own endpoint
	if provider == domain.AIProviderOllama {
		if settings.LLM.BaseURL == "" {
			settings.LLM.BaseURL = "http://localhost:11434"
		}
	} else {
		settings.LLM.BaseURL = ""
	}

	settings.LLM.APIKey = apiKey

	return s.Save(settings)
}

// Set stores a single dotted key, validating its value first.
func (s *SettingsService) Set(key, value string) error {
	key = strings.ToLower(strings.TrimSpace(key))
	value = strings.TrimSpace(value)

	switch {
	case key == keyLLMProvider:
		provider := domain.AIProvider(strings.ToLower(value))
		if !provider.IsValid() {
			return fmt.Errorf("%w: unknown provider %q", domain.ErrInvalidInput, value)
		}
		return s.configStore.Set(key, provider.String())
	case isStringKey(key):
		return s.configStore.Set(key, value)
	case isIntKey(key):
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%w: %s must be an integer", domain.ErrInvalidInput, key)
		}
		if n < 0 {
			return fmt.Errorf("%w: %s must not be negative", domain.ErrInvalidInput, key)
		}
		return s.configStore.Set(key, n)
	default:
		return fmt.Errorf("%w: unknown setting %q (known: %s)",
			domain.ErrInvalidInput, key, strings.Join(KnownSettingKeys(), ", "))
	}
}

// KnownSettingKeys lists every key accepted by Set.
func KnownSettingKeys() []string {
	keys := []string{
		keyLLMProvider, keyLLMModel, keyLLMBaseURL, keyLLMAPIKey,
		keyMaxRetries, keyFallbackWait, keyMaxWait, keyRequestsPerMinute, keyHistoryLimit, keyMaxTokens,
		keyDataDir, keyPostgresDSN,
	}
	for _, task := range domain.AllTasks() {
		for _, field := range []string{budgetMaxChars, budgetHeadChars, budgetTailChars, budgetMidChars} {
			keys = append(keys, budgetPrefix+string(task)+"."+field)
		}
	}
	sort.Strings(keys)
	return keys
}

func isStringKey(key string) bool {
	switch key {
	case keyLLMModel, keyLLMBaseURL, keyLLMAPIKey, keyDataDir, keyPostgresDSN:
		return true
	}
	return false
}

func isIntKey(key string) bool {
	switch key {
	case keyMaxRetries, keyFallbackWait, keyMaxWait, keyRequestsPerMinute, keyHistoryLimit, keyMaxTokens:
		return true
	}
	rest, ok := strings.CutPrefix(key, budgetPrefix)
	if !ok {
		return false
	}
	task, field, ok := strings.Cut(rest, ".")
	if !ok {
		return false
	}
	if !isTask(domain.Task(task)) {
		return false
	}
	switch field {
	case budgetMaxChars, budgetHeadChars, budgetTailChars, budgetMidChars:
		return true
	}
	return false
}

func isTask(task domain.Task) bool {
	for _, t := range domain.AllTasks() {
		if t == task {
			return true
		}
	}
	return false
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
func (s *SettingsService) ValidateLLMConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateLLM(&settings.LLM)
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	val := s.configStore.GetInt(key)
	if val < 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	provider := domain.AIProvider(val)
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}
