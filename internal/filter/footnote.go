package filter

import (
	"strconv"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"
)

// Footnotes renders footnotes the way EPUB 3 reading systems expect them:
// references carry epub:type-aware ids, definitions are marked as
// epub:type="footnote" and every definition links back to each of its
// references.
//
// Definitions that are never referenced are dropped and the rest are
// listed in order of first reference.
type Footnotes struct{}

// Extend implements goldmark.Extender. The footnote extension itself must
// also be enabled.
func (Footnotes) Extend(m goldmark.Markdown) {
	m.Renderer().AddOptions(renderer.WithNodeRenderers(
		util.Prioritized(&footnoteRenderer{}, 100),
	))
}

type footnoteRenderer struct {
	names map[int]string // footnote index to label
	refs  map[int]int    // footnote index to number of references
	seen  map[int]int    // references rendered so far
}

func (r *footnoteRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindDocument, r.renderDocument)
	reg.Register(ast.KindParagraph, r.renderParagraph)
	reg.Register(east.KindFootnoteLink, r.renderFootnoteLink)
	reg.Register(east.KindFootnoteBacklink, r.renderFootnoteBacklink)
	reg.Register(east.KindFootnote, r.renderFootnote)
	reg.Register(east.KindFootnoteList, r.renderFootnoteList)
}

// renderDocument collects labels and reference counts before anything is
// written.
func (r *footnoteRenderer) renderDocument(_ util.BufWriter, _ []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	r.names = make(map[int]string)
	r.refs = make(map[int]int)
	r.seen = make(map[int]int)

	_ = ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n := n.(type) {
		case *east.Footnote:
			r.names[n.Index] = string(n.Ref)
		case *east.FootnoteLink:
			r.refs[n.Index]++
		}
		return ast.WalkContinue, nil
	})
	return ast.WalkContinue, nil
}

func (r *footnoteRenderer) name(index int) []byte {
	name, ok := r.names[index]
	if !ok {
		name = strconv.Itoa(index)
	}
	return util.EscapeHTML([]byte(name))
}

func (r *footnoteRenderer) renderFootnoteLink(w util.BufWriter, _ []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*east.FootnoteLink)
	r.seen[n.Index]++
	name := r.name(n.Index)

	_, _ = w.WriteString(`<sup class="footnote-reference" id="fr-`)
	_, _ = w.Write(name)
	_, _ = w.WriteString("-" + strconv.Itoa(r.seen[n.Index]))
	_, _ = w.WriteString(`"><a href="#fn-`)
	_, _ = w.Write(name)
	_, _ = w.WriteString(`">[` + strconv.Itoa(n.Index) + `]</a></sup>`)
	return ast.WalkContinue, nil
}

// Backlinks are written when the enclosing paragraph or definition closes.
func (r *footnoteRenderer) renderFootnoteBacklink(util.BufWriter, []byte, ast.Node, bool) (ast.WalkStatus, error) {
	return ast.WalkContinue, nil
}

func (r *footnoteRenderer) renderFootnoteList(w util.BufWriter, _ []byte, _ ast.Node, entering bool) (ast.WalkStatus, error) {
	if entering {
		_, _ = w.WriteString(`<div class="footnotes" epub:type="footnotes">` + "\n")
	} else {
		_, _ = w.WriteString("</div>\n")
	}
	return ast.WalkContinue, nil
}

func (r *footnoteRenderer) renderFootnote(w util.BufWriter, _ []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	n := node.(*east.Footnote)
	if entering {
		_, _ = w.WriteString(`<div class="footnote-definition" id="fn-`)
		_, _ = w.Write(r.name(n.Index))
		_, _ = w.WriteString(`" epub:type="footnote">`)
		if _, ok := n.FirstChild().(*ast.Paragraph); !ok {
			r.writeLabel(w, n.Index)
		}
		return ast.WalkContinue, nil
	}

	if _, ok := n.LastChild().(*ast.Paragraph); !ok {
		r.writeBacklinks(w, n.Index)
	}
	_, _ = w.WriteString("</div>\n")
	return ast.WalkContinue, nil
}

func (r *footnoteRenderer) renderParagraph(w util.BufWriter, _ []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	fn, inFootnote := node.Parent().(*east.Footnote)
	if entering {
		if node.Attributes() != nil {
			_, _ = w.WriteString("<p")
			html.RenderAttributes(w, node, html.ParagraphAttributeFilter)
			_ = w.WriteByte('>')
		} else {
			_, _ = w.WriteString("<p>")
		}
		if inFootnote && fn.FirstChild() == node {
			r.writeLabel(w, fn.Index)
		}
		return ast.WalkContinue, nil
	}

	if inFootnote && fn.LastChild() == node {
		r.writeBacklinks(w, fn.Index)
	}
	_, _ = w.WriteString("</p>\n")
	return ast.WalkContinue, nil
}

func (r *footnoteRenderer) writeLabel(w util.BufWriter, index int) {
	_, _ = w.WriteString(`<span class="footnote-definition-label">[` + strconv.Itoa(index) + `]</span> `)
}

// writeBacklinks links back to every reference of the footnote: the first
// as "↩", later ones numbered "↩2", "↩3" and so on.
func (r *footnoteRenderer) writeBacklinks(w util.BufWriter, index int) {
	name := r.name(index)
	for i := 1; i <= r.refs[index]; i++ {
		_, _ = w.WriteString(` <a href="#fr-`)
		_, _ = w.Write(name)
		_, _ = w.WriteString("-" + strconv.Itoa(i) + `">↩`)
		if i > 1 {
			_, _ = w.WriteString(strconv.Itoa(i))
		}
		_, _ = w.WriteString("</a>")
	}
}
