package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/studyhall/internal/core/domain"
)

func writeNote(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestNotesAddCmd(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	path := writeNote(t, "cells.md", "# Cells\n\nMitochondria.")

	out, err := execute(t, nil, "notes", "add", path, "-u", "alice", "-s", "bio")

	require.NoError(t, err)
	require.Len(t, ts.notes.added, 1)
	added := ts.notes.added[0]
	assert.Equal(t, "alice", added.UserID)
	assert.Equal(t, "bio", added.SubjectID)
	assert.Equal(t, "cells.md", added.DisplayName)
	assert.Empty(t, added.MIMEType)
	assert.Equal(t, "# Cells\n\nMitochondria.", string(added.Data))
	assert.Contains(t, out, "Added cells.md")
	assert.Contains(t, out, "ID: note-1")
}

func TestNotesAddCmd_NameAndTypeFlags(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	path := writeNote(t, "export.bin", "plain words")

	_, err := execute(t, nil, "notes", "add", path, "--name", "Lecture 1", "--type", "text/plain", "-u", "alice", "-s", "bio")

	require.NoError(t, err)
	require.Len(t, ts.notes.added, 1)
	assert.Equal(t, "Lecture 1", ts.notes.added[0].DisplayName)
	assert.Equal(t, "text/plain", ts.notes.added[0].MIMEType)
}

func TestNotesAddCmd_MissingFile(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	_, err := execute(t, nil, "notes", "add", filepath.Join(t.TempDir(), "absent.txt"), "-u", "alice", "-s", "bio")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read")
	assert.Empty(t, ts.notes.added)
}

func TestNotesAddCmd_UnsupportedType(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.notes.err = fmt.Errorf("%w: image/png", domain.ErrUnsupportedType)
	path := writeNote(t, "diagram.png", "not really a png")

	_, err := execute(t, nil, "notes", "add", path, "-u", "alice", "-s", "bio")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)
	assert.Contains(t, err.Error(), "--type")
}

func TestNotesListCmd(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.notes.notes = []domain.Note{
		{ID: "n1", DisplayName: "cells.md", MIMEType: "text/markdown", TextHandle: "blob-1"},
		{ID: "n2", DisplayName: "scan.pdf", MIMEType: "application/pdf", TextHandle: domain.HandleFailed},
	}

	out, err := execute(t, nil, "notes", "list", "-u", "alice", "-s", "bio")

	require.NoError(t, err)
	assert.Contains(t, out, "Notes for bio")
	assert.Contains(t, out, "cells.md")
	assert.Contains(t, out, "ready")
	assert.Contains(t, out, "scan.pdf")
	assert.Contains(t, out, "no text")
}

func TestNotesListCmd_Empty(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, nil, "notes", "ls", "-u", "alice", "-s", "bio")

	require.NoError(t, err)
	assert.Contains(t, out, "No notes for bio")
}

func TestNotesListCmd_JSONOutput(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.notes.notes = []domain.Note{{ID: "n1", DisplayName: "cells.md", TextHandle: "blob-1", ByteLength: 42}}

	out, err := execute(t, nil, "notes", "list", "--json", "-u", "alice", "-s", "bio")

	require.NoError(t, err)
	var decoded []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, "n1", decoded[0]["id"])
	assert.Equal(t, true, decoded[0]["ready"])
	assert.InDelta(t, 42, decoded[0]["byte_length"], 0)
}

func TestNotesRemoveCmd(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, nil, "notes", "rm", "n1")

	require.NoError(t, err)
	assert.Equal(t, []string{"n1"}, ts.notes.removed)
	assert.Contains(t, out, "Removed note n1")
}

func TestNotesRemoveCmd_NotFound(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.notes.err = domain.ErrNotFound

	_, err := execute(t, nil, "notes", "remove", "missing")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "note missing not found")
}

func TestNotesRemoveCmd_RequiresID(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := execute(t, nil, "notes", "remove")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}
