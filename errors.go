package epub

import (
	"fmt"

	"github.com/Laisky/errors/v2"

	"github.com/simp-lee/mdbook-epub/book"
	"github.com/simp-lee/mdbook-epub/builder"
	"github.com/simp-lee/mdbook-epub/internal/resource"
	"github.com/simp-lee/mdbook-epub/verify"
)

// Sentinel errors returned by the epub package. Errors raised by the
// packages doing the work are re-exported so callers only import this one.
var (
	// ErrIncompatibleVersion indicates the mdBook calling the backend is
	// outside the supported version range. See [IncompatibleVersionError].
	ErrIncompatibleVersion = errors.New("epub: incompatible mdbook version")

	// ErrTemplateParse indicates the chapter template could not be parsed.
	ErrTemplateParse = errors.New("epub: could not parse the template")

	// ErrContentFileNotFound indicates a chapter has no backing file.
	ErrContentFileNotFound = errors.New("epub: content file was not found")

	// ErrCSSOpen indicates an additional stylesheet could not be opened.
	ErrCSSOpen = errors.New("epub: could not open css file")

	// ErrStylesheetRead indicates an additional stylesheet could not be read.
	ErrStylesheetRead = errors.New("epub: error reading stylesheet")

	// ErrOpenTemplate indicates the configured index template could not be
	// opened.
	ErrOpenTemplate = errors.New("epub: unable to open template")

	// ErrResourceNotFound indicates the cover image or an additional
	// resource could not be found in any of the searched locations.
	ErrResourceNotFound = errors.New("epub: failed to find resource file")

	// ErrBookNameOrPath indicates the book title cannot be used as a file
	// name.
	ErrBookNameOrPath = errors.New("epub: incorrect book title, impossible to create file")

	// ErrUnsupportedVersion indicates an epub-version other than 2 or 3.
	// See [UnsupportedVersionError].
	ErrUnsupportedVersion = builder.ErrUnsupportedVersion

	// ErrDuplicatePath indicates two files were added at the same path
	// inside the book.
	ErrDuplicatePath = builder.ErrDuplicatePath

	// ErrRenderContext indicates the JSON on stdin is not a RenderContext.
	ErrRenderContext = book.ErrRenderContext

	// ErrAssetFileNotFound indicates a referenced image does not exist.
	ErrAssetFileNotFound = resource.ErrAssetFileNotFound

	// ErrAssetFile indicates a referenced image is not a regular file.
	ErrAssetFile = resource.ErrAssetFile

	// ErrAssetOutsideSrcDir indicates a referenced image lies outside the
	// source directory.
	ErrAssetOutsideSrcDir = resource.ErrAssetOutsideSrcDir

	// ErrSourceDir indicates the book's source directory does not exist.
	ErrSourceDir = resource.ErrSourceDir

	// ErrAssetOpen indicates an asset could not be read.
	ErrAssetOpen = resource.ErrAssetOpen

	// ErrEpubCheck indicates epubcheck rejected the generated book.
	ErrEpubCheck = verify.ErrEpubCheck
)

// IncompatibleVersionError reports the mdBook version that was rejected.
type IncompatibleVersionError struct {
	Expected string
	Got      string
}

func (e *IncompatibleVersionError) Error() string {
	return fmt.Sprintf("Incompatible mdbook version got %s expected %s", e.Got, e.Expected)
}

// Is makes errors.Is(err, ErrIncompatibleVersion) match.
func (e *IncompatibleVersionError) Is(target error) bool {
	return target == ErrIncompatibleVersion
}

// UnsupportedVersionError reports an epub-version that is neither 2 nor 3.
type UnsupportedVersionError struct {
	Version int
}

func (e *UnsupportedVersionError) Error() string {
	return fmt.Sprintf("Unsupported epub version specified in book.toml: %d", e.Version)
}

// Is makes errors.Is(err, ErrUnsupportedVersion) match.
func (e *UnsupportedVersionError) Is(target error) bool {
	return target == ErrUnsupportedVersion
}
