package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/studyhall/internal/core/ports/driving"
)

var (
	keywordCount int
	keywordFocus string
)

var keywordsCmd = &cobra.Command{
	Use:     "keywords",
	Aliases: []string{"terms"},
	Short:   "Extract key terms from your notes",
	Long:    `Lists the key terms of the selected subject with a short definition for each.`,
	Args:    cobra.NoArgs,
	RunE:    runKeywords,
}

func init() {
	keywordsCmd.Flags().IntVarP(&keywordCount, "count", "n", 15, "number of terms (1-50)")
	keywordsCmd.Flags().StringVar(&keywordFocus, "focus", "", "topic to concentrate on")
	rootCmd.AddCommand(keywordsCmd)
}

func runKeywords(cmd *cobra.Command, _ []string) error {
	if keywordService == nil {
		return errors.New("keyword service not configured")
	}

	key, err := conversationKey()
	if err != nil {
		return err
	}

	keywords, err := keywordService.Generate(cmd.Context(), key, driving.KeywordOptions{
		Count: keywordCount,
		Focus: keywordFocus,
	})
	if err != nil {
		return describeError("keyword generation failed", err)
	}

	if jsonOutput {
		return printJSON(cmd, keywords)
	}
	renderKeywords(cmd, keywords)
	return nil
}
