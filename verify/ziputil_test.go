package verify

import (
	"bytes"
	"strings"
	"testing"

	"github.com/klauspost/compress/zip"
)

func TestResolveRelativePath(t *testing.T) {
	tests := []struct {
		base, href, want string
	}{
		{"OEBPS/content.opf", "text/ch1.xhtml", "OEBPS/text/ch1.xhtml"},
		{"content.opf", "ch1.xhtml", "ch1.xhtml"},
		{"OEBPS/text/ch1.xhtml", "../images/a%20b.png", "OEBPS/images/a b.png"},
		{"OEBPS/content.opf", "/etc/passwd", ""},
		{"OEBPS/content.opf", "../../etc/passwd", ""},
		{"OEBPS/content.opf", "  ", ""},
	}
	for _, tt := range tests {
		if got := resolveRelativePath(tt.base, tt.href); got != tt.want {
			t.Errorf("resolveRelativePath(%q, %q) = %q; want %q", tt.base, tt.href, got, tt.want)
		}
	}
}

func TestIsSafePath(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"OEBPS/ch1.xhtml", true},
		{"a/../b", true},
		{"..", false},
		{"../x", false},
		{"a/../../x", false},
		{"/abs", false},
	}
	for _, tt := range tests {
		if got := isSafePath(tt.path); got != tt.want {
			t.Errorf("isSafePath(%q) = %v; want %v", tt.path, got, tt.want)
		}
	}
}

func TestStripBOM(t *testing.T) {
	if got := stripBOM([]byte("\xEF\xBB\xBF<a/>")); string(got) != "<a/>" {
		t.Errorf("stripBOM = %q; want %q", got, "<a/>")
	}
	if got := stripBOM([]byte("<a/>")); string(got) != "<a/>" {
		t.Errorf("stripBOM without BOM = %q", got)
	}
}

func TestReadZipFileWithLimit(t *testing.T) {
	data := buildArchive(t, []entry{
		deflated("small.txt", "hello"),
		deflated("big.txt", strings.Repeat("x", 100)),
	})
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}

	got, err := readZipFileWithLimit(zr.File[0], 10)
	if err != nil || string(got) != "hello" {
		t.Errorf("readZipFileWithLimit(small) = %q, %v", got, err)
	}
	if _, err := readZipFileWithLimit(zr.File[1], 10); err == nil {
		t.Error("readZipFileWithLimit(big) succeeded; want size error")
	}
}

func TestStripFragment(t *testing.T) {
	tests := map[string]string{
		"a.xhtml#top": "a.xhtml",
		"a.xhtml?x=1": "a.xhtml",
		"a.xhtml":     "a.xhtml",
		"#only":       "",
	}
	for in, want := range tests {
		if got := stripFragment(in); got != want {
			t.Errorf("stripFragment(%q) = %q; want %q", in, got, want)
		}
	}
}
