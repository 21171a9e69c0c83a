package pdf

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/custodia-labs/studyhall/internal/core/domain"
	"github.com/custodia-labs/studyhall/internal/core/ports/driven"
	"github.com/custodia-labs/studyhall/internal/extractors/plaintext"
)

// Ensure Extractor implements the interface.
var _ driven.TextExtractor = (*Extractor)(nil)

var pdfMagic = []byte("%PDF-")

// Extractor pulls the text layer out of PDF notes. Scanned PDFs without a
// text layer yield an empty string.
type Extractor struct{}

// New creates a new PDF extractor.
func New() *Extractor {
	return &Extractor{}
}

// SupportedMIMETypes returns the MIME types this extractor handles.
func (e *Extractor) SupportedMIMETypes() []string {
	return []string{"application/pdf"}
}

// Extract returns the plain text of every page, pages separated by a blank line.
func (e *Extractor) Extract(ctx context.Context, raw *domain.RawUpload) (text string, err error) {
	if raw == nil {
		return "", domain.ErrInvalidInput
	}
	if !bytes.HasPrefix(bytes.TrimLeft(raw.Content, " \t\r\n"), pdfMagic) {
		return "", fmt.Errorf("%w: %q is not a PDF", domain.ErrInvalidInput, raw.Filename)
	}

	// The parser panics on some malformed files.
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("read pdf %q: %v", raw.Filename, r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(raw.Content), int64(len(raw.Content)))
	if err != nil {
		return "", fmt.Errorf("open pdf %q: %w", raw.Filename, err)
	}

	pages := make([]string, 0, reader.NumPage())
	for i := 1; i <= reader.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("read page %d of %q: %w", i, raw.Filename, err)
		}
		if cleaned := plaintext.Clean(pageText); cleaned != "" {
			pages = append(pages, cleaned)
		}
	}

	return strings.Join(pages, "\n\n"), nil
}
