package epub

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/simp-lee/mdbook-epub/book"
)

func TestIsValidFilename(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"DummyBook", true},
		{"My Book (2nd ed.)", true},
		{".hidden", true},
		{"COM10", true},
		{"console", true},
		{strings.Repeat("a", 255), true},
		{"", false},
		{strings.Repeat("a", 256), false},
		{".", false},
		{"..", false},
		{"CON", false},
		{"con", false},
		{"lpt1.txt", false},
		{"Aux.tar.gz", false},
		{"a/b", false},
		{`a\b`, false},
		{"nul\x00byte", false},
		{"what?", false},
		{"a:b", false},
		{`"quoted"`, false},
		{"pipe|d", false},
		{"star*", false},
		{"<tag>", false},
	}
	for _, tt := range tests {
		if got := IsValidFilename(tt.name); got != tt.want {
			t.Errorf("IsValidFilename(%q) = %v; want %v", tt.name, got, tt.want)
		}
	}
}

func TestOutputFilename(t *testing.T) {
	cfg := book.NewConfig()
	cfg.Book.Title = "DummyBook"
	got, err := OutputFilename("out", cfg)
	if err != nil {
		t.Fatalf("OutputFilename: %v", err)
	}
	if want := filepath.Join("out", "DummyBook.epub"); got != want {
		t.Errorf("OutputFilename() = %q; want %q", got, want)
	}

	for _, title := range []string{"", "CON", "a/b"} {
		cfg.Book.Title = title
		if _, err := OutputFilename("out", cfg); err == nil {
			t.Errorf("OutputFilename(title %q) error = nil; want ErrBookNameOrPath", title)
		}
	}
	if _, err := OutputFilename("out", nil); err == nil {
		t.Error("OutputFilename(nil) error = nil; want ErrBookNameOrPath")
	}
}
