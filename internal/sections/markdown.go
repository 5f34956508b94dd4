package sections

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
)

// Markdown renders overview bodies. Raw HTML in the source is dropped.
type Markdown struct {
	engine goldmark.Markdown
}

// NewMarkdown returns a goldmark renderer with GFM and auto heading ids.
func NewMarkdown() *Markdown {
	return &Markdown{
		engine: goldmark.New(
			goldmark.WithExtensions(extension.GFM, extension.Linkify),
			goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		),
	}
}

// Render converts src into HTML.
func (m *Markdown) Render(src string) (template.HTML, error) {
	if src == "" {
		return "", nil
	}
	var buf bytes.Buffer
	if err := m.engine.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("sections: markdown: %w", err)
	}
	return template.HTML(buf.String()), nil
}
