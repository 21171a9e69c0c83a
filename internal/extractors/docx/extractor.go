// Package docx extracts the body text of Word documents.
package docx

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/custodia-labs/studyhall/internal/core/domain"
	"github.com/custodia-labs/studyhall/internal/core/ports/driven"
	"github.com/custodia-labs/studyhall/internal/extractors/plaintext"
)

// Ensure Extractor implements the interface.
var _ driven.TextExtractor = (*Extractor)(nil)

const (
	mimeType     = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	documentPart = "word/document.xml"

	// maxDocumentXML bounds the decompressed size of the document part.
	maxDocumentXML = 64 << 20
)

// Extractor handles DOCX notes.
type Extractor struct{}

// New creates a new DOCX extractor.
func New() *Extractor {
	return &Extractor{}
}

// SupportedMIMETypes returns the MIME types this extractor handles.
func (e *Extractor) SupportedMIMETypes() []string {
	return []string{mimeType}
}

// Extract reads word/document.xml and returns one line per paragraph.
// Table cells in a row are joined with " | ".
func (e *Extractor) Extract(ctx context.Context, raw *domain.RawUpload) (string, error) {
	if raw == nil {
		return "", domain.ErrInvalidInput
	}

	reader, err := zip.NewReader(bytes.NewReader(raw.Content), int64(len(raw.Content)))
	if err != nil {
		return "", fmt.Errorf("%w: not a docx archive: %w", domain.ErrInvalidInput, err)
	}

	for _, f := range reader.File {
		if f.Name != documentPart {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", fmt.Errorf("%w: open %s: %w", domain.ErrInvalidInput, documentPart, err)
		}
		defer rc.Close()

		text, err := parseDocument(ctx, io.LimitReader(rc, maxDocumentXML))
		if err != nil {
			return "", err
		}
		return plaintext.Clean(text), nil
	}

	return "", fmt.Errorf("%w: %s missing", domain.ErrInvalidInput, documentPart)
}

// parseDocument walks the WordprocessingML token stream. Only w:t text is
// kept; w:tab and w:br become whitespace.
func parseDocument(ctx context.Context, r io.Reader) (string, error) {
	dec := xml.NewDecoder(r)

	var (
		out       strings.Builder
		para      strings.Builder
		cells     []string
		inText    bool
		cellDepth int
	)

	endParagraph := func() {
		text := strings.TrimSpace(para.String())
		para.Reset()
		if cellDepth > 0 {
			if text != "" {
				cells = append(cells, text)
			}
			return
		}
		if text == "" {
			return
		}
		out.WriteString(text)
		out.WriteByte('\n')
	}

	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return out.String(), nil
		}
		if err != nil {
			return "", fmt.Errorf("%w: parse %s: %w", domain.ErrInvalidInput, documentPart, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				para.WriteByte('\t')
			case "br", "cr":
				para.WriteByte('\n')
			case "tc":
				cellDepth++
			case "tr":
				cells = cells[:0]
			}

		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				endParagraph()
			case "tc":
				cellDepth--
			case "tr":
				if len(cells) > 0 {
					out.WriteString(strings.Join(cells, " | "))
					out.WriteByte('\n')
				}
			}

		case xml.CharData:
			if inText {
				para.Write(t)
			}
		}
	}
}
