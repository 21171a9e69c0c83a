package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question about your notes",
	Long: `Answers a question using the notes of the selected subject and the
recent conversation. Each question and answer is remembered for follow-ups.

With no arguments, questions are read interactively from the terminal, or
as a single question from piped input.`,
	Example: `  studyhall ask -s biology "What does the mitochondrion do?"
  echo "Summarise chapter 2" | studyhall ask -s biology`,
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if chatService == nil {
		return errors.New("chat service not configured")
	}

	if len(args) > 0 {
		return askOnce(cmd, strings.Join(args, " "))
	}

	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return askInteractive(cmd, in)
	}

	data, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("failed to read question: %w", err)
	}
	question := strings.TrimSpace(string(data))
	if question == "" {
		return errors.New("no question given")
	}
	return askOnce(cmd, question)
}

func askOnce(cmd *cobra.Command, question string) error {
	key, err := conversationKey()
	if err != nil {
		return err
	}

	reply, err := chatService.Ask(cmd.Context(), key, question)
	if err != nil {
		return describeError("ask failed", err)
	}

	if jsonOutput {
		return printJSON(cmd, reply)
	}
	renderReply(cmd, reply)
	return nil
}

// askInteractive reads questions until EOF or an exit command. Errors from
// single questions are printed and the loop continues.
func askInteractive(cmd *cobra.Command, in io.Reader) error {
	key, err := conversationKey()
	if err != nil {
		return err
	}

	st := stylesFor(cmd)
	cmd.Println(st.Muted.Render(fmt.Sprintf("Studying %s. Type 'exit' to finish.", key.SubjectID)))

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for {
		cmd.Print(st.UserLabel.Render("you:") + " ")
		if !scanner.Scan() {
			cmd.Println()
			return scanner.Err()
		}

		question := strings.TrimSpace(scanner.Text())
		switch strings.ToLower(question) {
		case "":
			continue
		case "exit", "quit":
			return nil
		}

		reply, err := chatService.Ask(cmd.Context(), key, question)
		if err != nil {
			cmd.PrintErrln(st.Error.Render(describeError("ask failed", err).Error()))
			if cmd.Context().Err() != nil {
				return cmd.Context().Err()
			}
			continue
		}
		renderReply(cmd, reply)
		cmd.Println()
	}
}
