package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the conversation for a subject",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete the conversation for a subject",
	Args:  cobra.NoArgs,
	RunE:  runHistoryClear,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "number of most recent turns to show (0 = all)")
	historyCmd.AddCommand(historyClearCmd)
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, _ []string) error {
	if chatService == nil {
		return errors.New("chat service not configured")
	}

	key, err := conversationKey()
	if err != nil {
		return err
	}

	turns, err := chatService.History(cmd.Context(), key, historyLimit)
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}

	if jsonOutput {
		return printJSON(cmd, turns)
	}
	renderTurns(cmd, turns)
	return nil
}

func runHistoryClear(cmd *cobra.Command, _ []string) error {
	if chatService == nil {
		return errors.New("chat service not configured")
	}

	key, err := conversationKey()
	if err != nil {
		return err
	}

	removed, err := chatService.ClearHistory(cmd.Context(), key)
	if err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}

	cmd.Printf("Removed %d turns for %s.\n", removed, key.SubjectID)
	return nil
}
