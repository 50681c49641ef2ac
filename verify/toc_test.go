package verify

import (
	"reflect"
	"testing"
)

func TestTOC_Nav(t *testing.T) {
	b := openEntries(t, validEntries())

	want := []TOCItem{
		{
			Title:      "One",
			Href:       "OEBPS/text/ch1.xhtml",
			SpineIndex: 0,
			Children: []TOCItem{
				{Title: "One A", Href: "OEBPS/text/ch1.xhtml#part", SpineIndex: 0},
			},
		},
		{Title: "Two", Href: "OEBPS/text/ch2.xhtml", SpineIndex: 1},
	}
	if got := b.TOC(); !reflect.DeepEqual(got, want) {
		t.Errorf("TOC() = %+v; want %+v", got, want)
	}

	landmarks := b.Landmarks()
	if len(landmarks) != 1 || landmarks[0].Title != "Start" || landmarks[0].SpineIndex != 0 {
		t.Errorf("Landmarks() = %+v", landmarks)
	}
}

func TestTOC_NCXFallback(t *testing.T) {
	// An EPUB 2 package reads its table of contents from the NCX.
	entries := replaced(validEntries(), "OEBPS/content.opf", `version="3.0"`, `version="2.0"`)
	b := openEntries(t, entries)

	toc := b.TOC()
	if len(toc) != 2 {
		t.Fatalf("len(TOC()) = %d; want 2", len(toc))
	}
	if toc[0].Title != "NCX One" || toc[0].Href != "OEBPS/text/ch1.xhtml" {
		t.Errorf("TOC()[0] = %+v", toc[0])
	}
	if len(toc[0].Children) != 1 || toc[0].Children[0].Href != "OEBPS/text/ch1.xhtml#part" {
		t.Errorf("TOC()[0].Children = %+v", toc[0].Children)
	}
	if b.Landmarks() != nil {
		t.Errorf("Landmarks() = %+v; want nil", b.Landmarks())
	}
}

func TestTOC_BrokenNavFallsBackToNCX(t *testing.T) {
	entries := replaced(validEntries(), "OEBPS/nav.xhtml", `epub:type="toc"`, `epub:type="other"`)
	b := openEntries(t, entries)

	toc := b.TOC()
	if len(toc) == 0 || toc[0].Title != "NCX One" {
		t.Errorf("TOC() = %+v; want the NCX entries", toc)
	}
	if len(b.Warnings()) != 1 {
		t.Errorf("Warnings() = %v; want one nav warning", b.Warnings())
	}
}

func TestTOC_None(t *testing.T) {
	entries := replaced(validEntries(), "OEBPS/content.opf", `<spine toc="ncx">`, `<spine>`)
	entries = replaced(entries, "OEBPS/content.opf", `version="3.0"`, `version="2.0"`)
	b := openEntries(t, entries)

	toc := b.TOC()
	if toc == nil || len(toc) != 0 {
		t.Errorf("TOC() = %#v; want empty non-nil", toc)
	}
}

func TestResolveHref(t *testing.T) {
	tests := []struct {
		base, href, want string
	}{
		{"OEBPS/toc.ncx", "text/ch1.xhtml", "OEBPS/text/ch1.xhtml"},
		{"OEBPS/toc.ncx", "text/ch1.xhtml#a", "OEBPS/text/ch1.xhtml#a"},
		{"OEBPS/text/nav.xhtml", "../ch%201.xhtml", "OEBPS/ch 1.xhtml"},
		{"OEBPS/nav.xhtml", "#top", "OEBPS/nav.xhtml#top"},
		{"OEBPS/nav.xhtml", "../../escape.xhtml", ""},
		{"OEBPS/nav.xhtml", "", ""},
	}
	for _, tt := range tests {
		if got := resolveHref(tt.base, tt.href); got != tt.want {
			t.Errorf("resolveHref(%q, %q) = %q; want %q", tt.base, tt.href, got, tt.want)
		}
	}
}
