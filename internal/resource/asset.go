// Package resource discovers the images a book references and makes them
// available on disk: local files are resolved against the source
// directory and remote images are downloaded into the destination.
package resource

import (
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/Laisky/errors/v2"
	"github.com/cespare/xxhash/v2"
	"github.com/gabriel-vasile/mimetype"

	"github.com/simp-lee/mdbook-epub/builder"
)

// Kind tells where an asset comes from.
type Kind int

const (
	// Local assets live below the book's source directory.
	Local Kind = iota
	// Remote assets are fetched over HTTP(S).
	Remote
)

func (k Kind) String() string {
	if k == Remote {
		return "remote"
	}
	return "local"
}

// Asset is a file referenced by a chapter that must be packed into the
// book.
type Asset struct {
	// OriginalLink is the link as written in the chapter.
	OriginalLink string

	// LocationOnDisk is the absolute path of the file, or where a remote
	// asset is cached.
	LocationOnDisk string

	// Filename is the slash-separated path of the asset inside the book.
	// Local assets keep their path relative to the source directory;
	// remote assets get a hashed name at the root.
	Filename string

	// MediaType is the MIME type, possibly empty until a remote asset is
	// downloaded.
	MediaType string

	// Kind is Local or Remote.
	Kind Kind

	// URL is set for remote assets.
	URL *url.URL
}

// FromURL describes a remote asset cached under destDir.
func FromURL(link, destDir string) (Asset, error) {
	u, err := url.Parse(strings.TrimSpace(link))
	if err != nil {
		return Asset{}, errors.Wrapf(err, "resource: parse url %q", link)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return Asset{}, errors.Wrapf(errSkip, "unsupported scheme %q", u.Scheme)
	}

	name := HashLink(u)
	return Asset{
		OriginalLink:   link,
		LocationOnDisk: filepath.Join(destDir, name),
		Filename:       name,
		MediaType:      builder.MediaTypeByExtension(name),
		Kind:           Remote,
		URL:            u,
	}, nil
}

// HashLink names a remote asset: 16 hex digits of the URL hash followed by
// the extension of the URL path, e.g. "811c431d49ec880b.svg".
func HashLink(u *url.URL) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(u.String())) + linkExtension(u.Path)
}

// linkExtension returns the lower-cased extension of p when it looks like
// a real file extension.
func linkExtension(p string) string {
	ext := strings.ToLower(path.Ext(p))
	if len(ext) < 2 || len(ext) > 6 {
		return ""
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return ""
		}
	}
	return ext
}

// FromLocal resolves link as written in a chapter located in chapterDir
// (slash path relative to srcDir). Links starting with "/" are relative
// to srcDir itself. Query strings and fragments are ignored and
// percent-escapes are decoded.
func FromLocal(link, srcDir, chapterDir string) (Asset, error) {
	p := strings.TrimSpace(link)
	if u, err := url.Parse(p); err == nil {
		p = u.Path
	}
	if p == "" {
		return Asset{}, errors.Wrapf(errSkip, "empty path in %q", link)
	}

	var full string
	if strings.HasPrefix(p, "/") {
		full = filepath.Join(srcDir, filepath.FromSlash(p))
	} else {
		full = filepath.Join(srcDir, filepath.FromSlash(chapterDir), filepath.FromSlash(p))
	}

	rel, err := filepath.Rel(srcDir, full)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return Asset{}, errors.Wrapf(ErrAssetOutsideSrcDir, "%s", full)
	}

	info, err := os.Lstat(full)
	if err != nil {
		if os.IsNotExist(err) {
			return Asset{}, errors.Wrapf(ErrAssetFileNotFound, "%s", full)
		}
		return Asset{}, errors.Wrapf(ErrAssetFile, "%s: %v", full, err)
	}
	if !info.Mode().IsRegular() {
		return Asset{}, errors.Wrapf(ErrAssetFile, "%s is not a regular file", full)
	}

	filename := filepath.ToSlash(rel)
	mediaType := builder.MediaTypeByExtension(filename)
	if mediaType == "" {
		if m, err := mimetype.DetectFile(full); err == nil {
			mediaType, _, _ = strings.Cut(m.String(), ";")
		}
	}

	return Asset{
		OriginalLink:   link,
		LocationOnDisk: full,
		Filename:       filename,
		MediaType:      mediaType,
		Kind:           Local,
	}, nil
}

// classify turns a link into an asset. Fragments, data URIs and other
// non-HTTP schemes yield errSkip.
func classify(link, srcDir, chapterDir, destDir string) (Asset, error) {
	link = strings.TrimSpace(link)
	if link == "" || strings.HasPrefix(link, "#") {
		return Asset{}, errSkip
	}
	if u, err := url.Parse(link); err == nil && u.Scheme != "" {
		if u.Scheme == "http" || u.Scheme == "https" {
			return FromURL(link, destDir)
		}
		return Asset{}, errSkip
	}
	if strings.HasPrefix(link, "//") {
		return FromURL("https:"+link, destDir)
	}
	return FromLocal(link, srcDir, chapterDir)
}
