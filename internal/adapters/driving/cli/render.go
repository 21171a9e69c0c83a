package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/studyhall/internal/core/domain"
)

const truncatedNotice = "Your notes were too long to read in full; this was built from a sample."

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func renderReply(cmd *cobra.Command, reply *domain.ChatReply) {
	st := stylesFor(cmd)
	if reply.NoMaterial {
		cmd.Println(st.Warning.Render(reply.Reply))
		return
	}
	cmd.Println(st.AssistantLabel.Render("studyhall:") + " " + reply.Reply)
	if reply.Truncated {
		cmd.Println(st.Muted.Render(truncatedNotice))
	}
}

func renderFlashcards(cmd *cobra.Command, set *domain.FlashcardSet) {
	st := stylesFor(cmd)
	cmd.Println(st.Title.Render(set.Title))
	cmd.Println(st.Muted.Render(fmt.Sprintf("%d cards", len(set.Cards))))
	cmd.Println()
	for i, card := range set.Cards {
		body := st.Term.Render(fmt.Sprintf("%d. %s", i+1, card.Front)) + "\n" + st.Normal.Render(card.Back)
		cmd.Println(st.Card.Render(body))
	}
	if set.Truncated {
		cmd.Println(st.Muted.Render(truncatedNotice))
	}
}

func renderKeywords(cmd *cobra.Command, keywords []domain.Keyword) {
	st := stylesFor(cmd)
	if len(keywords) == 0 {
		cmd.Println("No keywords generated.")
		return
	}
	width := 0
	for _, kw := range keywords {
		width = max(width, len(kw.Term))
	}
	for _, kw := range keywords {
		term := kw.Term + strings.Repeat(" ", width-len(kw.Term))
		cmd.Println(st.Term.Render(term) + "  " + kw.Definition)
	}
}

func renderTurns(cmd *cobra.Command, turns []domain.ConversationTurn) {
	st := stylesFor(cmd)
	if len(turns) == 0 {
		cmd.Println("No conversation yet.")
		return
	}
	for _, turn := range turns {
		label := st.UserLabel.Render("you:")
		if turn.Role == domain.RoleAssistant {
			label = st.AssistantLabel.Render("studyhall:")
		}
		stamp := st.Muted.Render(turn.Timestamp.Local().Format("2006-01-02 15:04"))
		cmd.Printf("%s %s\n%s\n\n", stamp, label, turn.Content)
	}
}
