package builder

import "github.com/Laisky/errors/v2"

// Sentinel errors returned by the builder package.
var (
	// ErrDuplicatePath indicates two entries were added at the same
	// archive path.
	ErrDuplicatePath = errors.New("builder: duplicate path in archive")

	// ErrUnsafePath indicates an entry path that is absolute or escapes
	// the content directory.
	ErrUnsafePath = errors.New("builder: unsafe archive path")

	// ErrNoContent indicates Generate was called before any content
	// document was added; an EPUB needs a non-empty spine.
	ErrNoContent = errors.New("builder: book has no content documents")

	// ErrUnsupportedVersion indicates an EPUB version other than 2 or 3.
	ErrUnsupportedVersion = errors.New("builder: unsupported EPUB version")
)
