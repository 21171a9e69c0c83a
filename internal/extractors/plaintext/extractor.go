package plaintext

import (
	"context"
	"strings"

	"github.com/custodia-labs/studyhall/internal/core/domain"
	"github.com/custodia-labs/studyhall/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.TextExtractor = (*Extractor)(nil)

const byteOrderMark = "\uFEFF"

// Extractor handles plain text notes.
type Extractor struct{}

// New creates a new plain text extractor.
func New() *Extractor {
	return &Extractor{}
}

// SupportedMIMETypes returns the MIME types this extractor handles.
func (e *Extractor) SupportedMIMETypes() []string {
	return []string{
		"text/plain",
		"text/csv",
		"text/x-go",
		"text/x-python",
		"text/x-java",
		"text/x-c",
		"text/x-sql",
		"text/javascript",
		"application/json",
		"application/xml",
	}
}

// Extract returns the upload as text. Line endings are normalised to \n,
// a leading byte order mark is dropped and invalid UTF-8 is replaced.
func (e *Extractor) Extract(_ context.Context, raw *domain.RawUpload) (string, error) {
	if raw == nil {
		return "", domain.ErrInvalidInput
	}
	return Clean(string(raw.Content)), nil
}

// Clean applies the plain text normalisation shared by every extractor.
func Clean(s string) string {
	s = strings.ToValidUTF8(s, "\uFFFD")
	s = strings.TrimPrefix(s, byteOrderMark)
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return strings.TrimSpace(s)
}
