package epub

import (
	"path/filepath"
	"strings"

	"github.com/Laisky/errors/v2"

	"github.com/simp-lee/mdbook-epub/book"
)

const maxFilenameLen = 255

// reservedNames are device names Windows refuses as file names, with or
// without an extension.
var reservedNames = map[string]bool{
	"CON": true, "PRN": true, "AUX": true, "NUL": true,
	"COM1": true, "COM2": true, "COM3": true, "COM4": true, "COM5": true,
	"COM6": true, "COM7": true, "COM8": true, "COM9": true,
	"LPT1": true, "LPT2": true, "LPT3": true, "LPT4": true, "LPT5": true,
	"LPT6": true, "LPT7": true, "LPT8": true, "LPT9": true,
}

// IsValidFilename reports whether name can be used as a file name on
// Linux, macOS and Windows alike.
func IsValidFilename(name string) bool {
	if name == "" || len(name) > maxFilenameLen {
		return false
	}
	if strings.ContainsAny(name, "<>:\"/\\|?*\x00") {
		return false
	}
	if name == "." || name == ".." {
		return false
	}
	stem, _, _ := strings.Cut(name, ".")
	if reservedNames[strings.ToUpper(strings.TrimSpace(stem))] {
		return false
	}
	return filepath.Base(name) == name
}

// OutputFilename returns dest/{title}.epub for the book described by cfg.
func OutputFilename(dest string, cfg *book.Config) (string, error) {
	var title string
	if cfg != nil {
		title = cfg.Book.Title
	}
	if !IsValidFilename(title) {
		return "", errors.Wrapf(ErrBookNameOrPath, "%q", title)
	}
	return filepath.Join(dest, title+".epub"), nil
}
