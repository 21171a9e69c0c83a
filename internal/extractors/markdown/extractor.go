package markdown

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"

	"github.com/custodia-labs/studyhall/internal/core/domain"
	"github.com/custodia-labs/studyhall/internal/core/ports/driven"
	"github.com/custodia-labs/studyhall/internal/extractors/plaintext"
)

// Ensure Extractor implements the interface.
var _ driven.TextExtractor = (*Extractor)(nil)

var (
	parserInstance goldmark.Markdown
	parserOnce     sync.Once
)

func getParser() goldmark.Markdown {
	parserOnce.Do(func() {
		parserInstance = goldmark.New(goldmark.WithExtensions(extension.GFM))
	})
	return parserInstance
}

// Extractor handles Markdown notes.
type Extractor struct{}

// New creates a new Markdown extractor.
func New() *Extractor {
	return &Extractor{}
}

// SupportedMIMETypes returns the MIME types this extractor handles.
func (e *Extractor) SupportedMIMETypes() []string {
	return []string{"text/markdown", "text/x-markdown"}
}

// Extract renders the Markdown as plain text. Headings, paragraphs, list
// items, table rows and code blocks each become their own lines; emphasis,
// link targets, images and raw HTML are dropped.
func (e *Extractor) Extract(_ context.Context, raw *domain.RawUpload) (string, error) {
	if raw == nil {
		return "", domain.ErrInvalidInput
	}
	return Strip(plaintext.Clean(string(raw.Content)))
}

// Strip converts Markdown source to plain text.
func Strip(content string) (string, error) {
	if content == "" {
		return "", nil
	}
	source := []byte(content)
	document := getParser().Parser().Parse(text.NewReader(source))

	w := &textWriter{source: source}
	if err := ast.Walk(document, w.walk); err != nil {
		return "", fmt.Errorf("walk markdown: %w", err)
	}
	return strings.TrimSpace(w.output.String()), nil
}

// blockKind decides the separator written before the next block.
type blockKind int

const (
	blockNone blockKind = iota
	blockParagraph
	blockLine
)

// textWriter accumulates inline text and flushes it when its block closes.
type textWriter struct {
	source []byte
	output strings.Builder
	inline strings.Builder
	last   blockKind
}

func (w *textWriter) walk(n ast.Node, entering bool) (ast.WalkStatus, error) {
	switch node := n.(type) {
	case *ast.Text:
		if entering {
			w.inline.Write(node.Segment.Value(w.source))
			switch {
			case node.HardLineBreak():
				w.inline.WriteByte('\n')
			case node.SoftLineBreak():
				w.inline.WriteByte(' ')
			}
		}

	case *ast.String:
		if entering {
			w.inline.Write(node.Value)
		}

	case *ast.AutoLink:
		if entering {
			w.inline.Write(node.Label(w.source))
		}
		return ast.WalkSkipChildren, nil

	case *ast.Image, *ast.RawHTML, *ast.HTMLBlock, *extast.TaskCheckBox:
		return ast.WalkSkipChildren, nil

	case *ast.FencedCodeBlock, *ast.CodeBlock:
		if entering {
			lines := n.Lines()
			for i := 0; i < lines.Len(); i++ {
				segment := lines.At(i)
				w.inline.Write(segment.Value(w.source))
			}
			w.flush(blockParagraph)
		}
		return ast.WalkSkipChildren, nil

	case *ast.Paragraph, *ast.Heading:
		if !entering {
			w.flush(blockParagraph)
		}

	case *ast.TextBlock:
		if !entering {
			w.flush(blockLine)
		}

	case *extast.TableCell:
		if !entering && node.NextSibling() != nil {
			w.inline.WriteString(" | ")
		}

	case *extast.TableRow, *extast.TableHeader:
		if !entering {
			w.flush(blockLine)
		}
	}

	return ast.WalkContinue, nil
}

// flush writes the pending inline text as one block. Consecutive line blocks
// (tight list items, table rows) are separated by a single newline; anything
// else by a blank line.
func (w *textWriter) flush(kind blockKind) {
	content := strings.TrimSpace(w.inline.String())
	w.inline.Reset()
	if content == "" {
		return
	}
	if w.output.Len() > 0 {
		if kind == blockLine && w.last == blockLine {
			w.output.WriteString("\n")
		} else {
			w.output.WriteString("\n\n")
		}
	}
	w.output.WriteString(content)
	w.last = kind
}
