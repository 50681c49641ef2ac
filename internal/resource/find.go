package resource

import (
	"os"
	"path"
	"slices"
	"strings"

	"github.com/Laisky/errors/v2"
	"github.com/Laisky/zap"
	"github.com/yuin/goldmark/ast"

	"github.com/simp-lee/mdbook-epub/book"
	"github.com/simp-lee/mdbook-epub/internal/markdown"
)

// Assets is the set of files referenced by a book.
type Assets struct {
	list  []*Asset
	byKey map[string]*Asset
	links map[string]*Asset
}

func newAssets() *Assets {
	return &Assets{
		byKey: make(map[string]*Asset),
		links: make(map[string]*Asset),
	}
}

// add records a unless an asset for the same file or URL exists, and
// returns the stored asset.
func (s *Assets) add(a Asset) *Asset {
	key := "local:" + a.LocationOnDisk
	if a.Kind == Remote {
		key = "remote:" + a.URL.String()
	}
	if existing, ok := s.byKey[key]; ok {
		return existing
	}
	stored := &a
	s.byKey[key] = stored
	s.list = append(s.list, stored)
	return stored
}

// Lookup returns the asset for a link that resolves the same way in every
// chapter: remote URLs and links rooted at the source directory.
// Relative links are not indexed because their target depends on the
// chapter.
func (s *Assets) Lookup(link string) (*Asset, bool) {
	if s == nil {
		return nil, false
	}
	a, ok := s.links[strings.TrimSpace(link)]
	return a, ok
}

// All returns every asset in discovery order.
func (s *Assets) All() []*Asset {
	if s == nil {
		return nil
	}
	return s.list
}

// Remote returns the assets that must be downloaded.
func (s *Assets) Remote() []*Asset {
	var out []*Asset
	for _, a := range s.All() {
		if a.Kind == Remote {
			out = append(out, a)
		}
	}
	return out
}

// Len reports the number of assets.
func (s *Assets) Len() int {
	return len(s.All())
}

// Find collects the images referenced by every non-draft chapter of the
// book: Markdown images, <img> tags in raw HTML and SVG <image> tags.
// Local links that point outside the source directory or at missing
// files are logged and skipped; other resolution errors abort. A missing
// source directory is ErrSourceDir.
func Find(rc *book.RenderContext, log *zap.Logger) (*Assets, error) {
	if log == nil {
		log = zap.NewNop()
	}
	srcDir := rc.SourceDir()
	if info, err := os.Stat(srcDir); err != nil || !info.IsDir() {
		return nil, errors.Wrapf(ErrSourceDir, "%s", srcDir)
	}
	assets := newAssets()

	for _, ch := range rc.Book.Chapters() {
		if ch.IsDraft() {
			continue
		}
		chapterDir := path.Dir(*ch.Path)

		for _, link := range Links([]byte(ch.Content)) {
			a, err := classify(link, srcDir, chapterDir, rc.Destination)
			switch {
			case errors.Is(err, errSkip):
				continue
			case errors.Is(err, ErrAssetOutsideSrcDir), errors.Is(err, ErrAssetFileNotFound):
				log.Warn("skipping asset",
					zap.String("chapter", ch.Name),
					zap.String("link", link),
					zap.Error(err))
				continue
			case err != nil:
				return nil, errors.Wrapf(err, "chapter %q", ch.Name)
			}

			stored := assets.add(a)
			if a.Kind == Remote || strings.HasPrefix(strings.TrimSpace(link), "/") {
				assets.links[strings.TrimSpace(link)] = stored
			}
			log.Debug("found asset",
				zap.String("chapter", ch.Name),
				zap.String("link", link),
				zap.String("kind", a.Kind.String()),
				zap.String("filename", stored.Filename))
		}
	}
	return assets, nil
}

// Links returns the unique image links in a Markdown document, sorted.
func Links(source []byte) []string {
	doc := markdown.Parse(source)

	var links []string
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n := n.(type) {
		case *ast.Image:
			links = append(links, string(n.Destination))
		case *ast.HTMLBlock:
			var buf []byte
			lines := n.Lines()
			for i := 0; i < lines.Len(); i++ {
				seg := lines.At(i)
				buf = append(buf, seg.Value(source)...)
			}
			if n.HasClosure() {
				buf = append(buf, n.ClosureLine.Value(source)...)
			}
			links = append(links, ImageSources(buf)...)
		case *ast.RawHTML:
			var buf []byte
			for i := 0; i < n.Segments.Len(); i++ {
				seg := n.Segments.At(i)
				buf = append(buf, seg.Value(source)...)
			}
			links = append(links, ImageSources(buf)...)
		}
		return ast.WalkContinue, nil
	})

	slices.Sort(links)
	return slices.Compact(links)
}
