// Command studyhall is a study assistant that answers questions, writes
// flashcards and extracts key terms from a subject's notes.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/custodia-labs/studyhall/internal/adapters/driven/ai"
	"github.com/custodia-labs/studyhall/internal/adapters/driven/config/file"
	"github.com/custodia-labs/studyhall/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/studyhall/internal/adapters/driven/storage/postgres"
	"github.com/custodia-labs/studyhall/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/studyhall/internal/adapters/driving/cli"
	"github.com/custodia-labs/studyhall/internal/core/domain"
	"github.com/custodia-labs/studyhall/internal/core/ports/driven"
	"github.com/custodia-labs/studyhall/internal/core/services"
	"github.com/custodia-labs/studyhall/internal/extractors/docx"
	"github.com/custodia-labs/studyhall/internal/extractors/html"
	"github.com/custodia-labs/studyhall/internal/extractors/markdown"
	"github.com/custodia-labs/studyhall/internal/extractors/pdf"
	"github.com/custodia-labs/studyhall/internal/extractors/plaintext"
	"github.com/custodia-labs/studyhall/internal/logger"
)

// version is set at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx)
	stop()
	os.Exit(code)
}

func run(ctx context.Context) int {
	app, err := wire(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	defer app.close()

	cli.SetVersion(version)
	cli.SetServices(app.services)

	if err := cli.Execute(ctx); err != nil {
		return 1
	}
	return 0
}

// app holds the wired services and whatever must be released on exit.
type app struct {
	services cli.Services
	closers  []func()
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func wire(ctx context.Context) (*app, error) {
	a := &app{}

	configDir := ""
	if home, err := os.UserHomeDir(); err == nil {
		configDir = file.DefaultDir(home)
	} else {
		logger.Warn("no home directory, settings will not persist: %v", err)
	}

	if configDir != "" {
		loaded, err := file.LoadEnv(configDir)
		if err != nil {
			logger.Warn("%v", err)
		}
		for _, path := range loaded {
			logger.Debug("loaded environment from %s", path)
		}
	}

	configStore := openConfigStore(configDir)
	settingsService := services.NewSettingsService(configStore, ai.NewConfigValidator())
	settings, err := settingsService.Get()
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	notes, blobs, conversations := openStorage(ctx, a, settings.Storage)

	var invoker *services.ResilientInvoker
	llm, err := ai.CreateLLMService(&settings.LLM)
	switch {
	case err != nil:
		logger.Warn("LLM disabled: %v", err)
	case llm != nil:
		a.closers = append(a.closers, func() {
			if err := llm.Close(); err != nil {
				logger.Warn("closing LLM client: %v", err)
			}
		})
		invoker = services.NewResilientInvoker(llm, settings.Generation)
		logger.Debug("using %s model %s", settings.LLM.Provider, llm.ModelName())
	default:
		logger.Debug("no LLM provider configured")
	}

	promptDir := ""
	if configDir != "" {
		promptDir = filepath.Join(configDir, "prompts")
	}
	prompts, err := file.NewPromptStore(promptDir)
	if err != nil {
		return nil, fmt.Errorf("prompt store: %w", err)
	}

	aggregator := services.NewNoteCorpusAggregator(notes, blobs)
	pipeline := services.NewPipeline(aggregator, invoker, prompts, *settings)

	a.services = cli.Services{
		Chat:        services.NewChatService(pipeline, conversations, settings.Generation.HistoryLimit),
		Flashcards:  services.NewFlashcardService(pipeline),
		Keywords:    services.NewKeywordService(pipeline),
		Notes:       services.NewNoteService(notes, blobs, plaintext.New(), markdown.New(), html.New(), docx.New(), pdf.New()),
		Settings:    settingsService,
		SettingKeys: services.KnownSettingKeys(),
	}
	return a, nil
}

// openConfigStore returns the TOML store, or an in-memory one when the
// config directory cannot be used.
func openConfigStore(configDir string) driven.ConfigStore {
	if configDir != "" {
		store, err := file.NewConfigStore(configDir)
		if err == nil {
			return store
		}
		logger.Warn("config file unavailable, using defaults: %v", err)
	}
	return memory.NewConfigStore()
}

// openStorage opens SQLite for notes, text and history, moving history to
// Postgres when a DSN is configured. Any failure degrades to memory.
func openStorage(
	ctx context.Context,
	a *app,
	cfg domain.StorageSettings,
) (driven.NoteStore, driven.BlobStore, driven.ConversationStore) {
	var (
		notes         driven.NoteStore
		blobs         driven.BlobStore
		conversations driven.ConversationStore
	)

	store, err := sqlite.NewStore(cfg.DataDir)
	if err != nil {
		logger.Warn("database unavailable, nothing will be saved: %v", err)
		notes = memory.NewNoteStore()
		blobs = memory.NewBlobStore()
		conversations = memory.NewConversationStore()
	} else {
		a.closers = append(a.closers, func() {
			if err := store.Close(); err != nil {
				logger.Warn("closing database: %v", err)
			}
		})
		logger.Debug("database at %s", store.Path())
		notes = store.NoteStore()
		blobs = store.BlobStore()
		conversations = store.ConversationStore()
	}

	if cfg.PostgresDSN != "" {
		pg, err := postgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			logger.Warn("postgres unavailable, keeping history locally: %v", err)
		} else {
			a.closers = append(a.closers, pg.Close)
			conversations = pg
		}
	}

	return notes, blobs, conversations
}
