package filter

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/yuin/goldmark"

	"github.com/simp-lee/mdbook-epub/book"
	"github.com/simp-lee/mdbook-epub/internal/markdown"
	"github.com/simp-lee/mdbook-epub/internal/resource"
)

func render(t *testing.T, src string, filters ...goldmark.Extender) string {
	t.Helper()
	out, err := markdown.Render([]byte(src), filters...)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	return string(out)
}

func TestCurlyQuotes(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain", "plain"},
		{"Here's a 'quote'", "Here’s a ‘quote’"},
		{`"double"`, "“double”"},
		{"''", "‘’"},
		{`""`, "“”"},
		{"word'word'word", "word’word’word"},
		{`("hi")`, "(”hi”)"},
		{"say\t'tab'", "say\t‘tab’"},
		{`'s`, "‘s"},
	}
	for _, tt := range tests {
		if got := CurlyQuotes(tt.in); got != tt.want {
			t.Errorf("CurlyQuotes(%q) = %q; want %q", tt.in, got, tt.want)
		}
	}
}

func TestQuoteConverter(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"prose", "Here's a 'quote'\n", "<p>Here’s a ‘quote’</p>\n"},
		{"double", `She said "hi".` + "\n", "<p>She said “hi”.</p>\n"},
		{"code span", "A `'raw'` \"cooked\"\n", "<p>A <code>'raw'</code> “cooked”</p>\n"},
		{"escaped html", "Tom & 'Jerry' <3\n", "<p>Tom &amp; ‘Jerry’ &lt;3</p>\n"},
		{"text node reset", `**x**"y"` + "\n", "<p><strong>x</strong>“y”</p>\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := render(t, tt.src, QuoteConverter{}); got != tt.want {
				t.Errorf("render(%q) = %q; want %q", tt.src, got, tt.want)
			}
		})
	}

	code := render(t, "```\nit's 'code'\n```\n", QuoteConverter{})
	if !strings.Contains(code, "it's 'code'") {
		t.Errorf("code block was converted: %q", code)
	}
}

func TestFootnotes(t *testing.T) {
	src := "Text[^example] and again[^example].\n\n" +
		"[^example]: The note.\n\n" +
		"[^unused]: Never referenced.\n"

	got := render(t, src, Footnotes{})

	for _, w := range []string{
		`Text<sup class="footnote-reference" id="fr-example-1"><a href="#fn-example">[1]</a></sup>`,
		`again<sup class="footnote-reference" id="fr-example-2"><a href="#fn-example">[1]</a></sup>`,
		`<div class="footnotes" epub:type="footnotes">` + "\n",
		`<div class="footnote-definition" id="fn-example" epub:type="footnote"><p><span class="footnote-definition-label">[1]</span> The note.`,
		` <a href="#fr-example-1">↩</a> <a href="#fr-example-2">↩2</a></p>` + "\n</div>\n</div>\n",
	} {
		if !strings.Contains(got, w) {
			t.Errorf("output missing %q\n%s", w, got)
		}
	}
	for _, nw := range []string{"Never referenced", "<hr", `role="doc-`} {
		if strings.Contains(got, nw) {
			t.Errorf("output unexpectedly contains %q\n%s", nw, got)
		}
	}
}

func TestFootnotes_Order(t *testing.T) {
	src := "First[^b] then[^a].\n\n[^a]: Alpha.\n\n[^b]: Beta.\n"
	got := render(t, src, Footnotes{})

	b := strings.Index(got, `id="fn-b"`)
	a := strings.Index(got, `id="fn-a"`)
	if a < 0 || b < 0 || b > a {
		t.Errorf("footnotes not listed in reference order\n%s", got)
	}
	if !strings.Contains(got, `<a href="#fn-a">[2]</a>`) {
		t.Errorf("second referenced footnote not numbered 2\n%s", got)
	}
}

func TestChapterHref(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"chapter_1.md", "chapter_1.html"},
		{"sub/page.md#anchor", "sub/page.html#anchor"},
		{"../up.md?x=1", "../up.html?x=1"},
		{"#local", "#local"},
		{"https://example.com/readme.md", "https://example.com/readme.md"},
		{"image.png", "image.png"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := ChapterHref(tt.in); got != tt.want {
			t.Errorf("ChapterHref(%q) = %q; want %q", tt.in, got, tt.want)
		}
	}

	got := render(t, "[next](chapter_2.md#intro)\n", ChapterLinks{})
	if want := `<p><a href="chapter_2.html#intro">next</a></p>` + "\n"; got != want {
		t.Errorf("render = %q; want %q", got, want)
	}
}

func TestAssetLinks(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "src")
	for _, name := range []string{"assets/a.svg", "part/rel.png"} {
		p := filepath.Join(src, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	content := "![a](/assets/a.svg)\n\n" +
		"![r](https://example.com/r.png)\n\n" +
		"![rel](rel.png)\n\n" +
		"<img src=\"/assets/a.svg\" alt=\"raw\">\n\n" +
		"Inline <img src='https://example.com/r.png'> html.\n"
	chapterPath := "part/chapter.md"
	ch := &book.Chapter{Name: "Chapter", Path: &chapterPath, Content: content}
	rc := book.NewRenderContext(root, book.Book{Sections: []book.BookItem{book.ChapterItem(ch)}}, nil, filepath.Join(root, "out"))

	assets, err := resource.Find(rc, nil)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	remote, ok := assets.Lookup("https://example.com/r.png")
	if !ok {
		t.Fatal("remote asset not found")
	}

	got := render(t, content, AssetLinks{Assets: assets, Depth: 1})
	for _, w := range []string{
		`<img src="../assets/a.svg" alt="a" />`,
		`<img src="../` + remote.Filename + `" alt="r" />`,
		`<img src="rel.png" alt="rel" />`,
		`<img src="../assets/a.svg" alt="raw">`,
		`<img src='../` + remote.Filename + `'>`,
	} {
		if !strings.Contains(got, w) {
			t.Errorf("output missing %q\n%s", w, got)
		}
	}
	if strings.Contains(got, "example.com") {
		t.Errorf("remote URL left in output\n%s", got)
	}
}
