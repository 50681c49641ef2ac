package filter

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"

	"github.com/simp-lee/mdbook-epub/internal/resource"
)

// AssetLinks points image links at the copies packed into the book.
// Remote images and links rooted at the source directory are rewritten
// relative to the chapter; relative links already match the archive
// layout and are kept.
type AssetLinks struct {
	// Assets are the assets found in the book.
	Assets *resource.Assets

	// Depth is how many directories deep the chapter sits below the
	// content directory.
	Depth int
}

// Extend implements goldmark.Extender.
func (a AssetLinks) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(parser.WithASTTransformers(
		util.Prioritized(&assetLinkTransformer{links: a}, 500),
	))
	m.Renderer().AddOptions(renderer.WithNodeRenderers(
		util.Prioritized(&rawHTMLRenderer{links: a}, 100),
	))
}

// Rewrite returns the in-book location of link, or link itself when it is
// not a known asset.
func (a AssetLinks) Rewrite(link string) string {
	asset, ok := a.Assets.Lookup(link)
	if !ok {
		return link
	}
	return strings.Repeat("../", a.Depth) + asset.Filename
}

// RewriteHTML replaces image sources inside a fragment of raw HTML.
func (a AssetLinks) RewriteHTML(fragment string) string {
	for _, src := range resource.ImageSources([]byte(fragment)) {
		to := a.Rewrite(src)
		if to == src {
			continue
		}
		fragment = strings.ReplaceAll(fragment, `"`+src+`"`, `"`+to+`"`)
		fragment = strings.ReplaceAll(fragment, `'`+src+`'`, `'`+to+`'`)
	}
	return fragment
}

type assetLinkTransformer struct {
	links AssetLinks
}

func (t *assetLinkTransformer) Transform(doc *ast.Document, _ text.Reader, _ parser.Context) {
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if img, ok := n.(*ast.Image); ok && entering {
			img.Destination = []byte(t.links.Rewrite(string(img.Destination)))
		}
		return ast.WalkContinue, nil
	})
}

// rawHTMLRenderer writes raw HTML like the default renderer in unsafe
// mode, with image sources rewritten.
type rawHTMLRenderer struct {
	links AssetLinks
}

func (r *rawHTMLRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindHTMLBlock, r.renderHTMLBlock)
	reg.Register(ast.KindRawHTML, r.renderRawHTML)
}

func (r *rawHTMLRenderer) renderHTMLBlock(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	n := node.(*ast.HTMLBlock)
	if entering {
		var sb strings.Builder
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			line := lines.At(i)
			sb.Write(line.Value(source))
		}
		_, _ = w.WriteString(r.links.RewriteHTML(sb.String()))
		return ast.WalkContinue, nil
	}
	if n.HasClosure() {
		_, _ = w.WriteString(r.links.RewriteHTML(string(n.ClosureLine.Value(source))))
	}
	return ast.WalkContinue, nil
}

func (r *rawHTMLRenderer) renderRawHTML(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkSkipChildren, nil
	}
	n := node.(*ast.RawHTML)
	var sb strings.Builder
	for i := 0; i < n.Segments.Len(); i++ {
		seg := n.Segments.At(i)
		sb.Write(seg.Value(source))
	}
	_, _ = w.WriteString(r.links.RewriteHTML(sb.String()))
	return ast.WalkSkipChildren, nil
}
