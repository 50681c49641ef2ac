package epub

import (
	"bytes"
	"context"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"text/template"
	"time"

	"github.com/Laisky/errors/v2"
	"github.com/Laisky/zap"
	"github.com/yuin/goldmark"

	"github.com/simp-lee/mdbook-epub/book"
	"github.com/simp-lee/mdbook-epub/builder"
	"github.com/simp-lee/mdbook-epub/internal/filter"
	"github.com/simp-lee/mdbook-epub/internal/markdown"
	"github.com/simp-lee/mdbook-epub/internal/resource"
)

const (
	generatorName      = "mdbook-epub"
	defaultConcurrency = 4
)

// Generator renders one book into an EPUB archive.
//
// A Generator is single use and not safe for concurrent use by multiple
// goroutines.
type Generator struct {
	rc          *book.RenderContext
	cfg         *Config
	builder     *builder.Builder
	tmpl        *template.Template
	assets      *resource.Assets
	retriever   resource.Retriever
	log         *zap.Logger
	modified    time.Time
	concurrency int
}

// New prepares a generator for the book in rc. It fails when the
// [output.epub] options are invalid or the chapter template cannot be
// loaded.
func New(rc *book.RenderContext, opts ...Option) (*Generator, error) {
	cfg, err := ConfigFromRenderContext(rc)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	b, err := builder.New(cfg.Version())
	if err != nil {
		return nil, err
	}
	tmpl, err := cfg.Template(rc.Root)
	if err != nil {
		return nil, err
	}

	g := &Generator{
		rc:          rc,
		cfg:         cfg,
		builder:     b,
		tmpl:        tmpl,
		log:         zap.NewNop(),
		concurrency: defaultConcurrency,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.retriever == nil {
		g.retriever = resource.NewHTTPRetriever(nil, g.log)
	}
	return g, nil
}

// Config returns the [output.epub] options in use.
func (g *Generator) Config() *Config {
	return g.cfg
}

// Render builds the book and writes the archive to w.
func (g *Generator) Render(ctx context.Context, w io.Writer) error {
	g.log.Info("generating the EPUB book", zap.Int("version", int(g.cfg.Version())))

	g.populateMetadata()
	if err := g.findAssets(ctx); err != nil {
		return err
	}
	if err := g.generateChapters(); err != nil {
		return err
	}
	if err := g.addCoverImage(); err != nil {
		return err
	}
	if err := g.embedStylesheets(); err != nil {
		return err
	}
	if err := g.additionalAssets(); err != nil {
		return err
	}
	if err := g.additionalResources(); err != nil {
		return err
	}

	if err := g.builder.Generate(w); err != nil {
		return errors.Wrap(err, "epub: write archive")
	}
	g.log.Info("generated the EPUB book", zap.Int("chapters", g.builder.Contents()))
	return nil
}

func (g *Generator) populateMetadata() {
	bc := g.rc.Config.Book
	if bc.Title == "" {
		g.log.Warn("no title found in book.toml; every EPUB document should have a title")
	}

	md := builder.Metadata{
		Title:       bc.Title,
		Description: bc.Description,
		Language:    bc.Language,
		Generator:   generatorName,
		Modified:    g.modified,
	}
	if len(bc.Authors) > 0 {
		md.Authors = []string{strings.Join(bc.Authors, ", ")}
	}
	g.builder.SetMetadata(md)
}

// findAssets collects referenced images and downloads the remote ones so
// their final file names are known before chapters are rendered.
func (g *Generator) findAssets(ctx context.Context) error {
	assets, err := resource.Find(g.rc, g.log)
	if err != nil {
		return errors.Wrap(err, "epub: find assets")
	}
	g.assets = assets

	remote := assets.Remote()
	g.log.Debug("found assets",
		zap.Int("total", assets.Len()),
		zap.Int("remote", len(remote)))
	if len(remote) == 0 {
		return nil
	}
	if err := resource.DownloadAll(ctx, g.retriever, remote, g.concurrency); err != nil {
		return errors.Wrap(err, "epub: download remote assets")
	}
	return nil
}

func (g *Generator) generateChapters() error {
	added := 0
	for i := range g.rc.Book.Sections {
		item := &g.rc.Book.Sections[i]
		if item.Kind != book.KindChapter || item.Chapter == nil {
			continue
		}
		n, err := g.addChapter(item.Chapter, i == 0)
		if err != nil {
			return err
		}
		added += n
	}
	g.log.Debug("generated chapters", zap.Int("count", added))
	return nil
}

// addChapter adds ch and its sub-chapters and reports how many were added.
// The first top-level chapter marks where the body matter starts.
func (g *Generator) addChapter(ch *book.Chapter, first bool) (int, error) {
	rendered, err := g.renderChapter(ch)
	if errors.Is(err, ErrContentFileNotFound) {
		g.log.Warn("skipped chapter", zap.String("chapter", ch.Name), zap.Error(err))
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	content := builder.Content{
		Path:  contentPath(*ch.Path),
		Title: g.chapterTitle(ch),
		Level: max(len(ch.Number)-1, 0),
	}
	if first {
		content.RefType = builder.RefText
	}
	if err := g.builder.AddContent(content, strings.NewReader(rendered)); err != nil {
		return 0, errors.Wrapf(err, "epub: add chapter %q", ch.Name)
	}

	added := 1
	for i := range ch.SubItems {
		sub := &ch.SubItems[i]
		if sub.Kind != book.KindChapter || sub.Chapter == nil {
			continue
		}
		n, err := g.addChapter(sub.Chapter, false)
		if err != nil {
			return added, err
		}
		added += n
	}
	return added, nil
}

func (g *Generator) chapterTitle(ch *book.Chapter) string {
	if g.cfg.NoSectionLabel || len(ch.Number) == 0 {
		return ch.Name
	}
	return ch.Number.String() + " " + ch.Name
}

// contentPath maps a chapter source path to its XHTML file in the book.
func contentPath(p string) string {
	p = filepath.ToSlash(p)
	return strings.TrimSuffix(p, path.Ext(p)) + ".html"
}

// chapterDepth is the number of directories between the content root and
// the chapter file.
func chapterDepth(p string) int {
	dir := path.Dir(filepath.ToSlash(p))
	if dir == "." || dir == "/" {
		return 0
	}
	return strings.Count(strings.Trim(dir, "/"), "/") + 1
}

// renderChapter converts a chapter to a complete XHTML document.
func (g *Generator) renderChapter(ch *book.Chapter) (string, error) {
	if ch.IsDraft() {
		return "", errors.Wrapf(ErrContentFileNotFound, "draft chapter %q could not be rendered", ch.Name)
	}
	depth := chapterDepth(*ch.Path)

	body, err := markdown.Render([]byte(ch.Content), g.filters(depth)...)
	if err != nil {
		return "", errors.Wrapf(err, "epub: render chapter %q", ch.Name)
	}

	var buf bytes.Buffer
	err = g.tmpl.Execute(&buf, TemplateData{
		EpubVersion3: g.cfg.IsEpub3(),
		Title:        ch.Name,
		Body:         string(body),
		Stylesheet:   strings.Repeat("../", depth) + "stylesheet.css",
	})
	if err != nil {
		return "", errors.Wrapf(err, "epub: apply template to chapter %q", ch.Name)
	}
	return buf.String(), nil
}

func (g *Generator) filters(depth int) []goldmark.Extender {
	filters := []goldmark.Extender{
		filter.AssetLinks{Assets: g.assets, Depth: depth},
		filter.ChapterLinks{},
	}
	if g.cfg.CurlyQuotes {
		filters = append(filters, filter.QuoteConverter{})
	}
	if g.cfg.IsEpub3() && g.cfg.FootnoteBackrefs {
		filters = append(filters, filter.Footnotes{})
	}
	return filters
}

func (g *Generator) addCoverImage() error {
	if g.cfg.CoverImage == "" {
		return nil
	}
	full, ok := firstFile(g.cfg.CoverImage, filepath.Join(g.rc.SourceDir(), g.cfg.CoverImage))
	if !ok {
		return errors.Wrapf(ErrResourceNotFound, "cover image %s", g.cfg.CoverImage)
	}
	data, err := os.ReadFile(full)
	if err != nil {
		return errors.Wrapf(ErrAssetOpen, "%s: %v", full, err)
	}
	g.log.Debug("adding cover image", zap.String("path", full))
	return g.builder.AddCoverImage(bookPath(g.cfg.CoverImage), bytes.NewReader(data), "")
}

func (g *Generator) embedStylesheets() error {
	var css bytes.Buffer
	if g.cfg.UseDefaultCSS {
		css.Write(defaultCSS)
	}
	for _, p := range g.cfg.AdditionalCSS {
		full, ok := firstFile(p, filepath.Join(g.rc.Root, p))
		if !ok {
			return errors.Wrapf(ErrCSSOpen, "%s", p)
		}
		f, err := os.Open(full)
		if err != nil {
			return errors.Wrapf(ErrCSSOpen, "%s: %v", full, err)
		}
		_, err = io.Copy(&css, f)
		f.Close()
		if err != nil {
			return errors.Wrapf(ErrStylesheetRead, "%s: %v", full, err)
		}
		g.log.Debug("embedded stylesheet", zap.String("path", full))
	}
	return g.builder.Stylesheet(&css)
}

func (g *Generator) additionalAssets() error {
	for _, a := range g.assets.All() {
		if g.builder.HasPath(a.Filename) {
			g.log.Debug("asset already in the book", zap.String("filename", a.Filename))
			continue
		}
		data, err := g.retriever.Read(a)
		if err != nil {
			return err
		}
		if err := g.builder.AddResource(a.Filename, bytes.NewReader(data), a.MediaType); err != nil {
			return errors.Wrapf(err, "epub: add asset %s", a.OriginalLink)
		}
	}
	return nil
}

func (g *Generator) additionalResources() error {
	for _, p := range g.cfg.AdditionalResources {
		full, ok := firstFile(p,
			filepath.Join(g.rc.SourceDir(), p),
			filepath.Join(g.rc.Root, p))
		if !ok {
			return errors.Wrapf(ErrResourceNotFound, "%s", p)
		}
		target := bookPath(p)
		if g.builder.HasPath(target) {
			g.log.Warn("resource already in the book", zap.String("path", target))
			continue
		}
		data, err := os.ReadFile(full)
		if err != nil {
			return errors.Wrapf(ErrAssetOpen, "%s: %v", full, err)
		}
		if err := g.builder.AddResource(target, bytes.NewReader(data), ""); err != nil {
			return errors.Wrapf(err, "epub: add resource %s", p)
		}
		g.log.Debug("embedded resource", zap.String("path", full))
	}
	return nil
}

// firstFile returns the first candidate naming a regular file.
func firstFile(candidates ...string) (string, bool) {
	for _, c := range candidates {
		if info, err := os.Stat(c); err == nil && info.Mode().IsRegular() {
			return c, true
		}
	}
	return "", false
}

// bookPath is where a configured file is stored inside the book: the path
// as written, or just the file name when it is absolute.
func bookPath(p string) string {
	if filepath.IsAbs(p) {
		return filepath.Base(p)
	}
	return filepath.ToSlash(filepath.Clean(p))
}
