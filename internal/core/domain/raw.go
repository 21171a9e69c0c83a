package domain

// RawUpload is an uploaded file before text extraction.
type RawUpload struct {
	// Filename is the original file name, used for MIME fallback and titles.
	Filename string

	// MIMEType is the declared content type (e.g., "application/pdf").
	MIMEType string

	// Content is the raw bytes.
	Content []byte
}
