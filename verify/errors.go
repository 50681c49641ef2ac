package verify

import "github.com/Laisky/errors/v2"

var (
	// ErrInvalidEPub indicates the archive has no usable package document.
	ErrInvalidEPub = errors.New("verify: invalid EPUB file")

	// ErrFileNotFound indicates the requested entry does not exist in the
	// archive.
	ErrFileNotFound = errors.New("verify: file not found in archive")

	// ErrNoCover indicates the book declares no cover image.
	ErrNoCover = errors.New("verify: no cover image found")

	// ErrEpubCheck indicates epubcheck reported errors for the book.
	ErrEpubCheck = errors.New("verify: epubcheck failed")

	// ErrEpubCheckMissing indicates neither an epubcheck executable nor
	// EPUBCHECK_PATH could be found.
	ErrEpubCheckMissing = errors.New("verify: epubcheck not installed")
)
