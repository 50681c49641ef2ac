package book

import (
	"os"
	"path/filepath"

	"github.com/Laisky/errors/v2"
)

// MdbookVersion is the mdBook release whose render protocol this package
// speaks.
const MdbookVersion = "0.4.52"

// MDBook is a book loaded from disk.
type MDBook struct {
	Root    string
	Config  *Config
	Summary *Summary
	Book    Book
}

// Load reads book.toml and SUMMARY.md below root and loads every chapter.
// Missing chapter files are created when build.create-missing is set, as
// mdBook does.
func Load(root string) (*MDBook, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, errors.Wrapf(err, "book: resolve root %s", root)
	}

	cfg, err := LoadConfig(filepath.Join(abs, "book.toml"))
	if err != nil {
		return nil, err
	}

	srcDir := joinRoot(abs, cfg.Book.Src)
	summaryPath := filepath.Join(srcDir, "SUMMARY.md")
	data, err := os.ReadFile(summaryPath)
	if err != nil {
		return nil, errors.Wrapf(err, "book: read %s", summaryPath)
	}
	summary, err := ParseSummary(data)
	if err != nil {
		return nil, err
	}

	l := loader{srcDir: srcDir, createMissing: cfg.Build.CreateMissing}
	var sections []BookItem
	for _, group := range [][]SummaryItem{summary.PrefixChapters, summary.NumberedChapters, summary.SuffixChapters} {
		items, err := l.load(group, nil)
		if err != nil {
			return nil, err
		}
		sections = append(sections, items...)
	}

	return &MDBook{
		Root:    abs,
		Config:  cfg,
		Summary: summary,
		Book:    Book{Sections: sections},
	}, nil
}

// RenderContext returns the context for rendering the book into
// destination.
func (md *MDBook) RenderContext(destination string) *RenderContext {
	return NewRenderContext(md.Root, md.Book, md.Config, destination)
}

type loader struct {
	srcDir        string
	createMissing bool
}

func (l *loader) load(items []SummaryItem, parents []string) ([]BookItem, error) {
	out := make([]BookItem, 0, len(items))
	for _, it := range items {
		switch it.Kind {
		case KindSeparator:
			out = append(out, SeparatorItem())
		case KindPartTitle:
			out = append(out, PartTitleItem(it.PartTitle))
		case KindChapter:
			ch, err := l.chapter(it.Link, parents)
			if err != nil {
				return nil, err
			}
			out = append(out, ChapterItem(ch))
		}
	}
	return out, nil
}

func (l *loader) chapter(link *Link, parents []string) (*Chapter, error) {
	ch := &Chapter{
		Name:        link.Name,
		Number:      link.Number,
		ParentNames: append([]string{}, parents...),
	}

	if link.Location != nil {
		loc := filepath.ToSlash(*link.Location)
		content, err := l.read(loc, link.Name)
		if err != nil {
			return nil, err
		}
		ch.Content = content
		ch.Path = &loc
		src := loc
		ch.SourcePath = &src
	}

	sub, err := l.load(link.NestedItems, append(ch.ParentNames, link.Name))
	if err != nil {
		return nil, err
	}
	ch.SubItems = sub
	return ch, nil
}

func (l *loader) read(location, name string) (string, error) {
	p := filepath.Join(l.srcDir, filepath.FromSlash(location))
	data, err := os.ReadFile(p)
	if err == nil {
		return string(data), nil
	}
	if !os.IsNotExist(err) || !l.createMissing {
		return "", errors.Wrapf(err, "book: read chapter %q", name)
	}

	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return "", errors.Wrapf(err, "book: create directory for %s", location)
	}
	stub := "# " + name + "\n"
	if err := os.WriteFile(p, []byte(stub), 0o644); err != nil {
		return "", errors.Wrapf(err, "book: create missing chapter %s", location)
	}
	return stub, nil
}

// joinRoot resolves p against root unless it is already absolute.
func joinRoot(root, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(root, p)
}
