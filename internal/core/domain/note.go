package domain

import (
	"strings"
	"time"
)

// Note is an uploaded study document belonging to one (user, subject) pair.
// The extracted text lives in a BlobStore and is referenced by TextHandle.
type Note struct {
	// ID is the unique identifier for the note.
	ID string

	// UserID owns the note.
	UserID string

	// SubjectID groups notes for generation.
	SubjectID string

	// DisplayName is the human-readable name shown in provenance headers.
	DisplayName string

	// MIMEType is the type of the original upload.
	MIMEType string

	// TextHandle addresses the extracted text blob.
	// It may be empty or a placeholder while extraction is pending.
	TextHandle string

	// ByteLength is the size of the extracted text in bytes.
	ByteLength int

	// CreatedAt is when the note was uploaded.
	CreatedAt time.Time
}

// Placeholder handles written by ingestion before, or instead of, a real blob handle.
const (
	HandlePending    = "pending"
	HandleProcessing = "processing"
	HandleFailed     = "failed"
	HandleNone       = "none"
)

// HasUsableText reports whether the note's handle can be fetched.
// A handle is usable when present and not a known placeholder sentinel.
func (n Note) HasUsableText() bool {
	return IsUsableHandle(n.TextHandle)
}

// IsUsableHandle reports whether handle is present and not a placeholder.
func IsUsableHandle(handle string) bool {
	switch strings.ToLower(strings.TrimSpace(handle)) {
	case "", HandlePending, HandleProcessing, HandleFailed, HandleNone:
		return false
	default:
		return true
	}
}

// SourceDocument is one extracted-text unit fetched for a single request.
// It is never mutated after the fetch.
type SourceDocument struct {
	ID          string
	DisplayName string
	Text        string
	ByteLength  int
}

// DocumentSpan records where a SourceDocument's text sits inside Corpus.FullText.
// Offsets are in characters (runes).
type DocumentSpan struct {
	ID          string
	DisplayName string
	Offset      int
	Length      int
}

// Corpus is the concatenation of all usable SourceDocuments for one subject.
// TotalLength is measured in characters (runes), not bytes.
type Corpus struct {
	FullText      string
	TotalLength   int
	DocumentCount int
	Documents     []DocumentSpan
}

// IsEmpty reports whether no document contributed text.
func (c Corpus) IsEmpty() bool {
	return c.DocumentCount == 0
}

// ContextBundle is the result of applying a context budget to a Corpus.
// When WasTruncated is false, Text equals the corpus FullText exactly.
//
// WasTruncated means the corpus exceeded the budget, not that Text is
// shorter: when the head and tail windows cover the whole corpus, or the
// sampling markers would outweigh what is dropped, Text is the full corpus
// and WasTruncated is still true. Callers must not infer it from lengths.
type ContextBundle struct {
	Text           string
	WasTruncated   bool
	TruncationNote string
}
