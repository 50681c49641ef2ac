package resource

import "github.com/Laisky/errors/v2"

// Sentinel errors returned by the resource package.
var (
	// ErrAssetFileNotFound indicates a referenced local file or remote
	// resource does not exist.
	ErrAssetFileNotFound = errors.New("resource: asset was not found")

	// ErrAssetFile indicates a local asset that is not a regular file,
	// e.g. a directory or a symlink.
	ErrAssetFile = errors.New("resource: asset is not a regular file")

	// ErrAssetOutsideSrcDir indicates a local asset that resolves outside
	// the book's source directory.
	ErrAssetOutsideSrcDir = errors.New("resource: asset is outside of the source directory")

	// ErrSourceDir indicates the book's source directory does not exist.
	ErrSourceDir = errors.New("resource: source directory was not found")

	// ErrAssetOpen indicates an asset file could not be read or written.
	ErrAssetOpen = errors.New("resource: unable to open asset")

	// ErrRemoteFetch indicates a remote asset request failed with a
	// status other than 200 or 404.
	ErrRemoteFetch = errors.New("resource: unable to fetch remote asset")

	// errSkip marks links that are not assets at all (fragments, data
	// URIs, mailto links).
	errSkip = errors.New("resource: not an asset link")
)
