// Package prose renders article Markdown to HTML with goldmark.
package prose

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

// Renderer converts Markdown to HTML. A single Renderer may be shared
// between goroutines.
type Renderer struct {
	md goldmark.Markdown
}

// New builds a renderer with GFM, footnotes, definition lists, heading IDs
// and raw HTML passthrough. Raw HTML must survive so expanded gallery
// figures reach the page intact.
func New() *Renderer {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Linkify,
			extension.TaskList,
			extension.Footnote,
			extension.DefinitionList,
		),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithRendererOptions(html.WithUnsafe()),
	)
	return &Renderer{md: md}
}

// Render converts body to HTML.
func (r *Renderer) Render(body string) (string, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(body), &buf); err != nil {
		return "", fmt.Errorf("prose: render: %w", err)
	}
	return buf.String(), nil
}
