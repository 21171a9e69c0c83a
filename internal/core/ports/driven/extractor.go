package driven

import (
	"context"

	"github.com/custodia-labs/studyhall/internal/core/domain"
)

// TextExtractor turns an uploaded file into plain text.
// Each extractor handles specific MIME types (e.g., PDF, Markdown).
type TextExtractor interface {
	// SupportedMIMETypes returns the MIME types this extractor handles.
	SupportedMIMETypes() []string

	// Extract returns the plain text of the upload.
	Extract(ctx context.Context, raw *domain.RawUpload) (string, error)
}
