package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/studyhall/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/studyhall/internal/core/domain"
	"github.com/custodia-labs/studyhall/internal/core/ports/driven"
)

// DatabaseFile is the name of the database inside the data directory.
const DatabaseFile = "studyhall.db"

// Store is a unified SQLite-based storage that provides access to
// the note, blob and conversation stores through wrapper types.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.studyhall/data/studyhall.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".studyhall", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, DatabaseFile)

	// WAL lets readers proceed while a turn is being appended.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// NoteStore returns a NoteStore interface backed by this store.
func (s *Store) NoteStore() driven.NoteStore {
	return &noteStore{store: s}
}

// BlobStore returns a BlobStore interface backed by this store.
func (s *Store) BlobStore() driven.BlobStore {
	return &blobStore{store: s}
}

// ConversationStore returns a ConversationStore interface backed by this store.
func (s *Store) ConversationStore() driven.ConversationStore {
	return &conversationStore{store: s}
}

// migrate runs all pending migrations. Each migration and its version row
// are applied in one transaction.
func (s *Store) migrate(fsys fs.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_initial.up.sql" -> 1
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if err := s.applyMigration(version, string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

func (s *Store) applyMigration(version int, script string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	if _, err := tx.Exec(script); err != nil {
		_ = tx.Rollback()
		return err
	}
	if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// ==================== Note Store ====================

// noteStore implements driven.NoteStore.
type noteStore struct {
	store *Store
}

var _ driven.NoteStore = (*noteStore)(nil)

// SaveNote stores or updates a note.
func (s *noteStore) SaveNote(ctx context.Context, note *domain.Note) error {
	if note.CreatedAt.IsZero() {
		note.CreatedAt = time.Now()
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO notes (id, user_id, subject_id, display_name, mime_type, text_handle, byte_length, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			user_id = excluded.user_id,
			subject_id = excluded.subject_id,
			display_name = excluded.display_name,
			mime_type = excluded.mime_type,
			text_handle = excluded.text_handle,
			byte_length = excluded.byte_length
	`, note.ID, note.UserID, note.SubjectID, note.DisplayName, note.MIMEType,
		note.TextHandle, note.ByteLength, note.CreatedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("saving note: %w", err)
	}
	return nil
}

// GetNote retrieves a note by ID.
func (s *noteStore) GetNote(ctx context.Context, id string) (*domain.Note, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, user_id, subject_id, display_name, mime_type, text_handle, byte_length, created_at
		FROM notes WHERE id = ?
	`, id)

	note, err := scanNote(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning note: %w", err)
	}
	return note, nil
}

// ListNotes returns the notes of a (user, subject) pair, oldest first.
func (s *noteStore) ListNotes(ctx context.Context, userID, subjectID string) ([]domain.Note, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, user_id, subject_id, display_name, mime_type, text_handle, byte_length, created_at
		FROM notes
		WHERE user_id = ? AND subject_id = ?
		ORDER BY created_at ASC, id ASC
	`, userID, subjectID)
	if err != nil {
		return nil, fmt.Errorf("querying notes: %w", err)
	}
	defer rows.Close()

	notes := make([]domain.Note, 0)
	for rows.Next() {
		note, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning note: %w", err)
		}
		notes = append(notes, *note)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating notes: %w", err)
	}
	return notes, nil
}

// DeleteNote removes a note.
func (s *noteStore) DeleteNote(ctx context.Context, id string) error {
	result, err := s.store.db.ExecContext(ctx, "DELETE FROM notes WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting note: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting note: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanNote(row rowScanner) (*domain.Note, error) {
	var note domain.Note
	var createdAt int64
	if err := row.Scan(&note.ID, &note.UserID, &note.SubjectID, &note.DisplayName,
		&note.MIMEType, &note.TextHandle, &note.ByteLength, &createdAt); err != nil {
		return nil, err
	}
	note.CreatedAt = time.Unix(0, createdAt)
	return &note, nil
}

// ==================== Blob Store ====================

// blobStore implements driven.BlobStore.
type blobStore struct {
	store *Store
}

var _ driven.BlobStore = (*blobStore)(nil)

// Put stores data under a new handle.
func (s *blobStore) Put(ctx context.Context, data []byte) (string, error) {
	handle := uuid.New().String()
	if data == nil {
		data = []byte{}
	}
	_, err := s.store.db.ExecContext(ctx,
		"INSERT INTO blobs (handle, data, created_at) VALUES (?, ?, ?)",
		handle, data, time.Now().UnixNano())
	if err != nil {
		return "", fmt.Errorf("saving blob: %w", err)
	}
	return handle, nil
}

// Fetch returns the bytes stored under handle.
func (s *blobStore) Fetch(ctx context.Context, handle string) ([]byte, error) {
	var data []byte
	err := s.store.db.QueryRowContext(ctx, "SELECT data FROM blobs WHERE handle = ?", handle).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("fetching blob: %w", err)
	}
	return data, nil
}

// Delete removes a blob. Missing handles are ignored.
func (s *blobStore) Delete(ctx context.Context, handle string) error {
	if _, err := s.store.db.ExecContext(ctx, "DELETE FROM blobs WHERE handle = ?", handle); err != nil {
		return fmt.Errorf("deleting blob: %w", err)
	}
	return nil
}

// ==================== Conversation Store ====================

// conversationStore implements driven.ConversationStore.
// Turns are ordered by timestamp, then by insertion sequence.
type conversationStore struct {
	store *Store
}

var _ driven.ConversationStore = (*conversationStore)(nil)

// Append inserts a turn.
func (s *conversationStore) Append(ctx context.Context, turn domain.ConversationTurn) error {
	if err := turn.Key.Validate(); err != nil {
		return err
	}
	if turn.ID == "" {
		turn.ID = uuid.New().String()
	}
	if turn.Timestamp.IsZero() {
		turn.Timestamp = time.Now()
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO conversation_turns (id, user_id, subject_id, role, content, ts)
		VALUES (?, ?, ?, ?, ?, ?)
	`, turn.ID, turn.Key.UserID, turn.Key.SubjectID, turn.Role.String(), turn.Content, turn.Timestamp.UnixNano())
	if err != nil {
		return fmt.Errorf("appending turn: %w", err)
	}
	return nil
}

// List returns the newest limit turns in ascending time order.
func (s *conversationStore) List(
	ctx context.Context, key domain.ConversationKey, limit int,
) ([]domain.ConversationTurn, error) {
	if limit <= 0 {
		limit = -1 // SQLite treats a negative LIMIT as unbounded
	}

	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, role, content, ts FROM (
			SELECT id, role, content, ts, seq
			FROM conversation_turns
			WHERE user_id = ? AND subject_id = ?
			ORDER BY ts DESC, seq DESC
			LIMIT ?
		) ORDER BY ts ASC, seq ASC
	`, key.UserID, key.SubjectID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying turns: %w", err)
	}
	defer rows.Close()

	turns := make([]domain.ConversationTurn, 0)
	for rows.Next() {
		var turn domain.ConversationTurn
		var role string
		var ts int64
		if err := rows.Scan(&turn.ID, &role, &turn.Content, &ts); err != nil {
			return nil, fmt.Errorf("scanning turn: %w", err)
		}
		turn.Key = key
		turn.Role = domain.Role(role)
		turn.Timestamp = time.Unix(0, ts)
		turns = append(turns, turn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating turns: %w", err)
	}
	return turns, nil
}

// Count returns the number of turns stored for key.
func (s *conversationStore) Count(ctx context.Context, key domain.ConversationKey) (int, error) {
	var n int
	err := s.store.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM conversation_turns WHERE user_id = ? AND subject_id = ?",
		key.UserID, key.SubjectID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting turns: %w", err)
	}
	return n, nil
}

// Clear deletes every turn for key.
func (s *conversationStore) Clear(ctx context.Context, key domain.ConversationKey) (int, error) {
	result, err := s.store.db.ExecContext(ctx,
		"DELETE FROM conversation_turns WHERE user_id = ? AND subject_id = ?",
		key.UserID, key.SubjectID)
	if err != nil {
		return 0, fmt.Errorf("clearing turns: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("clearing turns: %w", err)
	}
	return int(n), nil
}
