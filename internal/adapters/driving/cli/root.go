// Package cli provides the studyhall command-line interface.
//
// Commands are registered on rootCmd from init functions. Services are
// injected by main through SetServices before Execute is called.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/studyhall/internal/adapters/driving/styles"
	"github.com/custodia-labs/studyhall/internal/core/domain"
	"github.com/custodia-labs/studyhall/internal/core/ports/driving"
	"github.com/custodia-labs/studyhall/internal/logger"
)

// Environment variables that supply defaults for the persistent flags.
const (
	EnvUser    = "STUDYHALL_USER"
	EnvSubject = "STUDYHALL_SUBJECT"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	userID     string
	subjectID  string
	verbose    bool
	jsonOutput bool
)

// Services wired in by main.
var (
	chatService      driving.ChatService
	flashcardService driving.FlashcardService
	keywordService   driving.KeywordService
	noteService      driving.NoteService
	settingsService  driving.SettingsService
)

// Services bundles the driving ports the commands call.
type Services struct {
	Chat       driving.ChatService
	Flashcards driving.FlashcardService
	Keywords   driving.KeywordService
	Notes      driving.NoteService
	Settings   driving.SettingsService

	// SettingKeys lists the keys accepted by 'settings set'.
	SettingKeys []string
}

var rootCmd = &cobra.Command{
	Use:   "studyhall",
	Short: "Study assistant for your own notes",
	Long: `studyhall answers questions, writes flashcards and extracts key terms
from the notes you add to a subject, using the LLM provider you configure.

Add notes with 'studyhall notes add', configure a provider with
'studyhall settings llm', then ask away.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&userID, "user", "u", "", "user ID (env "+EnvUser+", default $USER)")
	rootCmd.PersistentFlags().StringVarP(&subjectID, "subject", "s", "", "subject ID (env "+EnvSubject+")")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output results as JSON")
}

// SetServices injects the services used by the commands.
func SetServices(s Services) {
	chatService = s.Chat
	flashcardService = s.Flashcards
	keywordService = s.Keywords
	noteService = s.Notes
	settingsService = s.Settings
	settingKeys = s.SettingKeys
}

// SetVersion overrides the version reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command. ctx is cancelled on interrupt by main.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// resolveUser returns the --user flag, then $STUDYHALL_USER, then $USER.
func resolveUser() string {
	for _, candidate := range []string{userID, os.Getenv(EnvUser), os.Getenv("USER")} {
		if c := strings.TrimSpace(candidate); c != "" {
			return c
		}
	}
	return ""
}

// conversationKey builds the key for the current user and subject.
func conversationKey() (domain.ConversationKey, error) {
	subject := strings.TrimSpace(subjectID)
	if subject == "" {
		subject = strings.TrimSpace(os.Getenv(EnvSubject))
	}
	key := domain.ConversationKey{UserID: resolveUser(), SubjectID: subject}
	if key.SubjectID == "" {
		return key, errors.New("no subject selected: pass --subject or set " + EnvSubject)
	}
	if key.UserID == "" {
		return key, errors.New("no user selected: pass --user or set " + EnvUser)
	}
	return key, nil
}

// stylesFor returns styles bound to the command's output.
func stylesFor(cmd *cobra.Command) *styles.Styles {
	return styles.NewStylesFor(cmd.OutOrStdout(), nil)
}

// describeError turns domain errors into actionable messages.
func describeError(action string, err error) error {
	var rateLimited *domain.RateLimitError
	switch {
	case errors.Is(err, domain.ErrLLMUnavailable):
		return fmt.Errorf("%s: no LLM configured, run 'studyhall settings llm': %w", action, err)
	case errors.Is(err, domain.ErrMaxRetriesExceeded):
		return fmt.Errorf("%s: the provider kept rate limiting, try again later: %w", action, err)
	case errors.As(err, &rateLimited):
		return fmt.Errorf("%s: rate limited by the provider: %w", action, err)
	case errors.Is(err, domain.ErrMalformedOutput):
		return fmt.Errorf("%s: the model's reply could not be parsed, try again: %w", action, err)
	default:
		return fmt.Errorf("%s: %w", action, err)
	}
}
