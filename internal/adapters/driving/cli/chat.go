package cli

import (
	"errors"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/studyhall/internal/adapters/driving/tui"
)

var chatHistoryLimit int

// startTUI runs the chat program. Replaced in tests.
var startTUI = func(app *tui.App) error {
	return app.Run()
}

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Open an interactive chat about a subject",
	Long: `Open a full-screen chat about the notes of one subject.

Controls:
  Enter        - Ask
  PgUp/PgDn    - Scroll the conversation
  Ctrl+L       - Clear the stored conversation
  Esc, Ctrl+C  - Quit`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().IntVar(&chatHistoryLimit, "history", 50, "number of stored turns to show on start (0 = all)")
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, _ []string) (err error) {
	if chatService == nil {
		return errors.New("chat service not configured")
	}

	key, err := conversationKey()
	if err != nil {
		return err
	}

	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
			err = fmt.Errorf("chat crashed: %v", r)
		}
	}()

	app, err := tui.NewApp(&tui.Ports{Chat: chatService, Key: key, HistoryLimit: chatHistoryLimit})
	if err != nil {
		return fmt.Errorf("failed to create chat: %w", err)
	}
	app.WithContext(cmd.Context())

	if err := startTUI(app); err != nil {
		return fmt.Errorf("chat error: %w", err)
	}
	return nil
}
