package services

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/studyhall/internal/core/domain"
	"github.com/custodia-labs/studyhall/internal/core/ports/driven"
	"github.com/custodia-labs/studyhall/internal/logger"
)

// documentSeparator sits between two documents in the corpus.
const documentSeparator = "\n\n"

// NoteCorpusAggregator pulls every usable extracted text for a subject and
// concatenates it into one Corpus with a provenance header per document.
type NoteCorpusAggregator struct {
	notes driven.NoteStore
	blobs driven.BlobStore
}

// NewNoteCorpusAggregator creates a new aggregator.
func NewNoteCorpusAggregator(notes driven.NoteStore, blobs driven.BlobStore) *NoteCorpusAggregator {
	return &NoteCorpusAggregator{
		notes: notes,
		blobs: blobs,
	}
}

// Aggregate builds the corpus for a (user, subject) pair.
//
// Notes without a usable handle are skipped. A failed fetch is logged and the
// note skipped, so one bad document cannot fail the whole request. When nothing
// yields text the result is domain.ErrNoNotes or domain.ErrNoExtractedText and
// the caller must not proceed to generation.
func (a *NoteCorpusAggregator) Aggregate(ctx context.Context, userID, subjectID string) (domain.Corpus, error) {
	notes, err := a.notes.ListNotes(ctx, userID, subjectID)
	if err != nil {
		return domain.Corpus{}, fmt.Errorf("listing notes: %w", err)
	}
	if len(notes) == 0 {
		return domain.Corpus{}, domain.ErrNoNotes
	}

	docs := make([]domain.SourceDocument, 0, len(notes))
	for i := range notes {
		if err := ctx.Err(); err != nil {
			return domain.Corpus{}, err
		}

		note := notes[i]
		if !note.HasUsableText() {
			logger.Debug("note %s (%s) has no usable text handle %q", note.ID, note.DisplayName, note.TextHandle)
			continue
		}

		data, err := a.blobs.Fetch(ctx, note.TextHandle)
		if err != nil {
			logger.Warn("skipping note %s (%s): fetch failed: %v", note.ID, note.DisplayName, err)
			continue
		}

		text := strings.TrimSpace(strings.ToValidUTF8(string(data), string(utf8.RuneError)))
		if text == "" {
			logger.Debug("note %s (%s) has empty text", note.ID, note.DisplayName)
			continue
		}

		docs = append(docs, domain.SourceDocument{
			ID:          note.ID,
			DisplayName: note.DisplayName,
			Text:        text,
			ByteLength:  len(text),
		})
	}

	if len(docs) == 0 {
		return domain.Corpus{}, domain.ErrNoExtractedText
	}

	corpus := BuildCorpus(docs)
	logger.Debug("aggregated %d/%d notes into %d chars", corpus.DocumentCount, len(notes), corpus.TotalLength)
	return corpus, nil
}

// DocumentHeader returns the provenance header written before a document's text.
func DocumentHeader(displayName string) string {
	return "=== Document: " + displayName + " ===\n"
}

// BuildCorpus concatenates documents in order. Documents without text are
// excluded rather than represented as empty entries.
func BuildCorpus(docs []domain.SourceDocument) domain.Corpus {
	var sb strings.Builder
	corpus := domain.Corpus{}
	offset := 0

	for _, doc := range docs {
		if doc.Text == "" {
			continue
		}
		if corpus.DocumentCount > 0 {
			sb.WriteString(documentSeparator)
			offset += utf8.RuneCountInString(documentSeparator)
		}

		header := DocumentHeader(doc.DisplayName)
		sb.WriteString(header)
		offset += utf8.RuneCountInString(header)

		length := utf8.RuneCountInString(doc.Text)
		sb.WriteString(doc.Text)
		corpus.Documents = append(corpus.Documents, domain.DocumentSpan{
			ID:          doc.ID,
			DisplayName: doc.DisplayName,
			Offset:      offset,
			Length:      length,
		})
		offset += length
		corpus.DocumentCount++
	}

	corpus.FullText = sb.String()
	corpus.TotalLength = offset
	return corpus
}
