package verify

import (
	"errors"
	"testing"
)

func TestCover_Property(t *testing.T) {
	b := openEntries(t, validEntries())

	cover, err := b.Cover()
	if err != nil {
		t.Fatalf("Cover: %v", err)
	}
	if cover.Path != "OEBPS/images/cover.svg" || cover.MediaType != "image/svg+xml" {
		t.Errorf("Cover() = {%q, %q}", cover.Path, cover.MediaType)
	}
	if string(cover.Data) != testCover {
		t.Errorf("Cover().Data = %q", cover.Data)
	}
}

func TestCover_MetaCover(t *testing.T) {
	entries := replaced(validEntries(), "OEBPS/content.opf", ` properties="cover-image"`, "")
	entries = replaced(entries, "OEBPS/content.opf",
		`<meta name="generator" content="mdbook-epub"/>`,
		`<meta name="generator" content="mdbook-epub"/><meta name="Cover" content="cover"/>`)
	b := openEntries(t, entries)

	cover, err := b.Cover()
	if err != nil {
		t.Fatalf("Cover: %v", err)
	}
	if cover.Path != "OEBPS/images/cover.svg" {
		t.Errorf("Cover().Path = %q", cover.Path)
	}
}

func TestCover_Guide(t *testing.T) {
	entries := replaced(validEntries(), "OEBPS/content.opf", ` properties="cover-image"`, "")
	entries = replaced(entries, "OEBPS/content.opf",
		`<reference type="text"`,
		`<reference type="cover" title="Cover" href="images/cover.svg"/><reference type="text"`)
	b := openEntries(t, entries)

	cover, err := b.Cover()
	if err != nil {
		t.Fatalf("Cover: %v", err)
	}
	if cover.MediaType != "image/svg+xml" {
		t.Errorf("Cover().MediaType = %q", cover.MediaType)
	}
}

func TestCover_None(t *testing.T) {
	entries := replaced(validEntries(), "OEBPS/content.opf", ` properties="cover-image"`, "")
	b := openEntries(t, entries)

	if _, err := b.Cover(); !errors.Is(err, ErrNoCover) {
		t.Errorf("Cover() error = %v; want ErrNoCover", err)
	}
}
