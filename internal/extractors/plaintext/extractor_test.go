package plaintext

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/studyhall/internal/core/domain"
	"github.com/custodia-labs/studyhall/internal/core/ports/driven"
)

func TestNew(t *testing.T) {
	extractor := New()
	require.NotNil(t, extractor)
	var _ driven.TextExtractor = extractor
}

func TestSupportedMIMETypes(t *testing.T) {
	mimeTypes := New().SupportedMIMETypes()

	require.NotEmpty(t, mimeTypes)
	assert.Contains(t, mimeTypes, "text/plain")
	assert.Contains(t, mimeTypes, "application/json")
	assert.NotContains(t, mimeTypes, "text/markdown")
}

func TestExtract_Success(t *testing.T) {
	raw := &domain.RawUpload{
		Filename: "photosynthesis.txt",
		MIMEType: "text/plain",
		Content:  []byte("Chlorophyll absorbs light."),
	}

	text, err := New().Extract(context.Background(), raw)

	require.NoError(t, err)
	assert.Equal(t, "Chlorophyll absorbs light.", text)
}

func TestExtract_NilUpload(t *testing.T) {
	text, err := New().Extract(context.Background(), nil)

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Empty(t, text)
}

func TestExtract_EmptyContent(t *testing.T) {
	text, err := New().Extract(context.Background(), &domain.RawUpload{Content: []byte("  \n\t")})

	require.NoError(t, err)
	assert.Empty(t, text)
}

func TestClean(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "windows line endings", input: "a\r\nb\r\n", want: "a\nb"},
		{name: "old mac line endings", input: "a\rb", want: "a\nb"},
		{name: "byte order mark", input: "\uFEFFhello", want: "hello"},
		{name: "invalid utf8", input: "ok\xffok", want: "ok\uFFFDok"},
		{name: "unicode preserved", input: "Δx ≈ 0, über", want: "Δx ≈ 0, über"},
		{name: "surrounding whitespace", input: "\n\n text \n", want: "text"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Clean(tt.input))
		})
	}
}
