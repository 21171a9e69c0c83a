package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/studyhall/internal/core/ports/driving"
)

var (
	flashcardCount int
	flashcardTitle string
	flashcardFocus string
)

var flashcardsCmd = &cobra.Command{
	Use:     "flashcards",
	Aliases: []string{"cards"},
	Short:   "Generate flashcards from your notes",
	Long: `Generates question and answer flashcards from the notes of the selected
subject. Use --focus to concentrate on one topic.`,
	Example: `  studyhall flashcards -s biology -n 20 --focus "cell division"`,
	Args:    cobra.NoArgs,
	RunE:    runFlashcards,
}

func init() {
	flashcardsCmd.Flags().IntVarP(&flashcardCount, "count", "n", 10, "number of cards (1-50)")
	flashcardsCmd.Flags().StringVar(&flashcardTitle, "title", "", "title for the set")
	flashcardsCmd.Flags().StringVar(&flashcardFocus, "focus", "", "topic to concentrate on")
	rootCmd.AddCommand(flashcardsCmd)
}

func runFlashcards(cmd *cobra.Command, _ []string) error {
	if flashcardService == nil {
		return errors.New("flashcard service not configured")
	}

	key, err := conversationKey()
	if err != nil {
		return err
	}

	set, err := flashcardService.Generate(cmd.Context(), key, driving.FlashcardOptions{
		Count: flashcardCount,
		Title: flashcardTitle,
		Focus: flashcardFocus,
	})
	if err != nil {
		return describeError("flashcard generation failed", err)
	}

	if jsonOutput {
		return printJSON(cmd, set)
	}
	renderFlashcards(cmd, set)
	return nil
}
