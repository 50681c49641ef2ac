// Package filter holds the goldmark extensions applied to chapters while
// they are rendered for the EPUB: typographic quotes, EPUB footnotes,
// asset link rewriting and chapter link rewriting.
package filter

import (
	"strings"
	"unicode"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/util"
)

// QuoteConverter turns straight quotes in prose into curly ones. Code spans
// and code blocks are left alone.
type QuoteConverter struct{}

// Extend implements goldmark.Extender.
func (QuoteConverter) Extend(m goldmark.Markdown) {
	m.Renderer().AddOptions(renderer.WithNodeRenderers(
		util.Prioritized(&quoteRenderer{}, 100),
	))
}

type quoteRenderer struct{}

func (r *quoteRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindText, r.renderText)
}

func (r *quoteRenderer) renderText(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*ast.Text)
	value := n.Segment.Value(source)
	if n.IsRaw() {
		_, _ = w.Write(value)
		return ast.WalkContinue, nil
	}

	value = util.UnescapePunctuations(value)
	value = util.ResolveNumericReferences(value)
	value = util.ResolveEntityNames(value)
	_, _ = w.Write(util.EscapeHTML([]byte(CurlyQuotes(string(value)))))

	switch {
	case n.HardLineBreak():
		_, _ = w.WriteString("<br />\n")
	case n.SoftLineBreak():
		_ = w.WriteByte('\n')
	}
	return ast.WalkContinue, nil
}

// CurlyQuotes replaces straight quotes in s. A quote opens at the start of
// s or after whitespace and closes otherwise, so apostrophes become right
// single quotes. Each call starts in the opening state.
func CurlyQuotes(s string) string {
	if !strings.ContainsAny(s, `"'`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 8)
	afterSpace := true
	for _, c := range s {
		switch c {
		case '"':
			if afterSpace {
				b.WriteRune('“')
			} else {
				b.WriteRune('”')
			}
		case '\'':
			if afterSpace {
				b.WriteRune('‘')
			} else {
				b.WriteRune('’')
			}
		default:
			b.WriteRune(c)
		}
		afterSpace = unicode.IsSpace(c)
	}
	return b.String()
}
