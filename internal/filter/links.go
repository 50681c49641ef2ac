package filter

import (
	"net/url"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// ChapterLinks rewrites links between chapters from their Markdown source
// to the generated XHTML file, e.g. "intro.md#setup" to "intro.html#setup".
type ChapterLinks struct{}

// Extend implements goldmark.Extender.
func (ChapterLinks) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(parser.WithASTTransformers(
		util.Prioritized(chapterLinkTransformer{}, 500),
	))
}

type chapterLinkTransformer struct{}

func (chapterLinkTransformer) Transform(doc *ast.Document, _ text.Reader, _ parser.Context) {
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if link, ok := n.(*ast.Link); ok && entering {
			link.Destination = []byte(ChapterHref(string(link.Destination)))
		}
		return ast.WalkContinue, nil
	})
}

// ChapterHref maps a relative link to a .md file onto its .html
// counterpart. Absolute URLs and other files are returned unchanged.
func ChapterHref(dest string) string {
	if dest == "" || strings.HasPrefix(dest, "#") {
		return dest
	}
	if u, err := url.Parse(dest); err != nil || u.Scheme != "" || u.Host != "" {
		return dest
	}
	p, rest := dest, ""
	if i := strings.IndexAny(dest, "?#"); i >= 0 {
		p, rest = dest[:i], dest[i:]
	}
	if !strings.HasSuffix(p, ".md") {
		return dest
	}
	return strings.TrimSuffix(p, ".md") + ".html" + rest
}
