package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/studyhall/internal/core/domain"
	"github.com/custodia-labs/studyhall/internal/core/ports/driving"
)

var (
	noteName string
	noteType string
)

var notesCmd = &cobra.Command{
	Use:   "notes",
	Short: "Manage the notes of a subject",
	Long: `Add, list and remove the study notes a subject is built from.

Plain text, Markdown, HTML, Word (.docx) and PDF files are supported. The text is extracted
once when the note is added.`,
}

var notesAddCmd = &cobra.Command{
	Use:   "add <file>",
	Short: "Add a file to the subject",
	Args:  cobra.ExactArgs(1),
	RunE:  runNotesAdd,
}

var notesListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List the notes of the subject",
	Args:    cobra.NoArgs,
	RunE:    runNotesList,
}

var notesRemoveCmd = &cobra.Command{
	Use:     "remove <note-id>",
	Aliases: []string{"rm"},
	Short:   "Remove a note",
	Args:    cobra.ExactArgs(1),
	RunE:    runNotesRemove,
}

func init() {
	notesAddCmd.Flags().StringVar(&noteName, "name", "", "display name (default: file name)")
	notesAddCmd.Flags().StringVar(&noteType, "type", "", "MIME type (default: detected from the file extension)")
	notesCmd.AddCommand(notesAddCmd)
	notesCmd.AddCommand(notesListCmd)
	notesCmd.AddCommand(notesRemoveCmd)
	rootCmd.AddCommand(notesCmd)
}

func runNotesAdd(cmd *cobra.Command, args []string) error {
	if noteService == nil {
		return errors.New("note service not configured")
	}

	key, err := conversationKey()
	if err != nil {
		return err
	}

	path := args[0]
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	name := noteName
	if name == "" {
		name = filepath.Base(path)
	}

	note, err := noteService.Add(cmd.Context(), driving.NoteInput{
		UserID:      key.UserID,
		SubjectID:   key.SubjectID,
		DisplayName: name,
		MIMEType:    noteType,
		Data:        data,
	})
	if err != nil {
		if errors.Is(err, domain.ErrUnsupportedType) {
			return fmt.Errorf("cannot add %s: unsupported file type, use --type to override: %w", name, err)
		}
		return fmt.Errorf("failed to add note: %w", err)
	}

	if jsonOutput {
		return printJSON(cmd, noteView(note))
	}

	st := stylesFor(cmd)
	if note.HasUsableText() {
		cmd.Println(st.Success.Render(fmt.Sprintf("Added %s (%d bytes of text)", note.DisplayName, note.ByteLength)))
	} else {
		cmd.Println(st.Warning.Render(fmt.Sprintf("Added %s, but no text could be extracted", note.DisplayName)))
	}
	cmd.Printf("ID: %s\n", note.ID)
	return nil
}

func runNotesList(cmd *cobra.Command, _ []string) error {
	if noteService == nil {
		return errors.New("note service not configured")
	}

	key, err := conversationKey()
	if err != nil {
		return err
	}

	notes, err := noteService.List(cmd.Context(), key.UserID, key.SubjectID)
	if err != nil {
		return fmt.Errorf("failed to list notes: %w", err)
	}

	if jsonOutput {
		views := make([]noteJSON, len(notes))
		for i := range notes {
			views[i] = noteView(&notes[i])
		}
		return printJSON(cmd, views)
	}

	if len(notes) == 0 {
		cmd.Printf("No notes for %s. Add one with 'studyhall notes add <file>'.\n", key.SubjectID)
		return nil
	}

	st := stylesFor(cmd)
	cmd.Println(st.Title.Render("Notes for " + key.SubjectID))
	for i := range notes {
		n := &notes[i]
		status := st.Success.Render("ready")
		if !n.HasUsableText() {
			status = st.Warning.Render("no text")
		}
		cmd.Printf("  %s  %s  %s  %s\n", st.Muted.Render(n.ID), n.DisplayName, st.Muted.Render(n.MIMEType), status)
	}
	return nil
}

func runNotesRemove(cmd *cobra.Command, args []string) error {
	if noteService == nil {
		return errors.New("note service not configured")
	}

	if err := noteService.Remove(cmd.Context(), args[0]); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("note %s not found", args[0])
		}
		return fmt.Errorf("failed to remove note: %w", err)
	}

	cmd.Printf("Removed note %s\n", args[0])
	return nil
}

type noteJSON struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	MIMEType   string `json:"mime_type"`
	ByteLength int    `json:"byte_length"`
	Ready      bool   `json:"ready"`
	CreatedAt  string `json:"created_at"`
}

func noteView(n *domain.Note) noteJSON {
	return noteJSON{
		ID:         n.ID,
		Name:       n.DisplayName,
		MIMEType:   n.MIMEType,
		ByteLength: n.ByteLength,
		Ready:      n.HasUsableText(),
		CreatedAt:  n.CreatedAt.UTC().Format(time.RFC3339),
	}
}
