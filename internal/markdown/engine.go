// Package markdown builds the goldmark engine used to parse and render
// chapters with the Markdown dialect mdBook supports.
package markdown

import (
	"bytes"

	"github.com/Laisky/errors/v2"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
)

// New returns an engine configured like mdBook's parser: tables,
// footnotes, strikethrough, task lists and heading attributes, with raw
// HTML passed through and XHTML output. Filters are added as extenders.
func New(filters ...goldmark.Extender) goldmark.Markdown {
	exts := []goldmark.Extender{
		extension.Table,
		extension.Strikethrough,
		extension.TaskList,
		extension.Footnote,
	}
	exts = append(exts, filters...)

	return goldmark.New(
		goldmark.WithExtensions(exts...),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
			parser.WithAttribute(),
		),
		goldmark.WithRendererOptions(
			html.WithUnsafe(),
			html.WithXHTML(),
		),
	)
}

// Parse returns the syntax tree of source using the default engine.
func Parse(source []byte) ast.Node {
	return New().Parser().Parse(text.NewReader(source))
}

// Render converts source to XHTML with the given filters applied.
func Render(source []byte, filters ...goldmark.Extender) ([]byte, error) {
	var buf bytes.Buffer
	if err := New(filters...).Convert(source, &buf); err != nil {
		return nil, errors.Wrap(err, "markdown: render")
	}
	return buf.Bytes(), nil
}
