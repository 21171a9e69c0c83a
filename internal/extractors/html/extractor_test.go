package html

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
	assert.Equal(t, []string{"text/html", "application/xhtml+xml"}, New().SupportedMIMETypes())
}

func TestExtract_NilUpload(t *testing.T) {
	text, err := New().Extract(context.Background(), nil)

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Empty(t, text)
}

func TestStrip(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "paragraphs on separate lines",
			input:    "<p>First</p><p>Second</p>",
			expected: "First\nSecond",
		},
		{
			name:     "inline tags removed",
			input:    "<p>This is <b>bold</b> and <a href=\"x\">linked</a>.</p>",
			expected: "This is bold and linked.",
		},
		{
			name:     "entities decoded",
			input:    "<p>Fish &amp; chips &lt;3</p>",
			expected: "Fish & chips <3",
		},
		{
			name:     "scripts and styles dropped",
			input:    "<style>p{color:red}</style><p>Visible</p><script>alert('x')</script>",
			expected: "Visible",
		},
		{
			name:     "head dropped",
			input:    "<html><head><title>Page</title></head><body><h1>Heading</h1></body></html>",
			expected: "Heading",
		},
		{
			name:     "whitespace collapsed",
			input:    "<div>  lots   of\n\n   space  </div>",
			expected: "lots of space",
		},
		{
			name:     "line breaks split lines",
			input:    "one<br>two<br/>three",
			expected: "one\ntwo\nthree",
		},
		{
			name:     "list items one per line",
			input:    "<ul><li>Nucleus</li><li>Ribosome</li></ul>",
			expected: "Nucleus\nRibosome",
		},
		{
			name:     "table cells joined",
			input:    "<table><tr><th>Organelle</th><th>Function</th></tr><tr><td>Nucleus</td><td>DNA</td></tr></table>",
			expected: "Organelle | Function\nNucleus | DNA",
		},
		{
			name:     "comments dropped",
			input:    "<p>Keep<!-- hidden --> this</p>",
			expected: "Keep this",
		},
		{
			name:     "empty document",
			input:    "",
			expected: "",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result, err := Strip(context.Background(), []byte(tc.input))
			require.NoError(t, err)
			assert.Equal(t, tc.expected, result)
		})
	}
}

func TestStrip_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Strip(ctx, []byte("<p>text</p>"))

	assert.ErrorIs(t, err, context.Canceled)
}
