package verify

import (
	"io"
	"net/url"
	"path"
	"strings"

	"github.com/Laisky/errors/v2"
	"github.com/klauspost/compress/zip"
)

// maxDecompressSize caps a single entry to guard against zip bombs.
const maxDecompressSize int64 = 256 * 1024 * 1024

// findFile looks up an entry by its exact name.
func findFile(zr *zip.Reader, name string) *zip.File {
	for _, f := range zr.File {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// findFileInsensitive looks up an entry by exact name, then
// case-insensitively.
func findFileInsensitive(zr *zip.Reader, name string) *zip.File {
	if f := findFile(zr, name); f != nil {
		return f
	}
	for _, f := range zr.File {
		if strings.EqualFold(f.Name, name) {
			return f
		}
	}
	return nil
}

// resolveRelativePath resolves href against the directory of basePath.
// It returns "" for absolute hrefs and paths escaping the archive root.
func resolveRelativePath(basePath, href string) string {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "/") {
		return ""
	}
	if decoded, err := url.PathUnescape(href); err == nil {
		href = decoded
	}
	cleaned := path.Clean(path.Join(path.Dir(basePath), href))
	if !isSafePath(cleaned) {
		return ""
	}
	return cleaned
}

func isSafePath(p string) bool {
	cleaned := path.Clean(p)
	if strings.HasPrefix(cleaned, "/") {
		return false
	}
	return cleaned != ".." && !strings.HasPrefix(cleaned, "../")
}

// hasURIScheme reports whether href starts with a scheme such as
// "https:" or "mailto:".
func hasURIScheme(href string) bool {
	u, err := url.Parse(href)
	return err == nil && u.Scheme != ""
}

func stripFragment(href string) string {
	if i := strings.IndexAny(href, "#?"); i >= 0 {
		return href[:i]
	}
	return href
}

// stripBOM removes a leading UTF-8 byte order mark.
func stripBOM(data []byte) []byte {
	if len(data) >= 3 && data[0] == 0xEF && data[1] == 0xBB && data[2] == 0xBF {
		return data[3:]
	}
	return data
}

func readZipFile(f *zip.File) ([]byte, error) {
	return readZipFileWithLimit(f, maxDecompressSize)
}

func readZipFileWithLimit(f *zip.File, limit int64) ([]byte, error) {
	if !isSafePath(f.Name) {
		return nil, errors.Errorf("verify: unsafe zip entry path: %s", f.Name)
	}
	if f.UncompressedSize64 > uint64(limit) {
		return nil, errors.Errorf("verify: zip entry %s too large: %d bytes (max %d)",
			f.Name, f.UncompressedSize64, limit)
	}

	rc, err := f.Open()
	if err != nil {
		return nil, errors.Wrapf(err, "verify: open zip entry %s", f.Name)
	}
	defer rc.Close()

	// The declared size may be forged, so read one byte past the limit.
	data, err := io.ReadAll(io.LimitReader(rc, limit+1))
	if err != nil {
		return nil, errors.Wrapf(err, "verify: read zip entry %s", f.Name)
	}
	if int64(len(data)) > limit {
		return nil, errors.Errorf("verify: zip entry %s decompressed size exceeds limit (%d bytes)", f.Name, limit)
	}
	return data, nil
}
