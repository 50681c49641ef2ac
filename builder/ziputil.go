package builder

import (
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/Laisky/errors/v2"
	"github.com/klauspost/compress/zip"
)

// mimetypeContent is the required content of the first archive entry.
const mimetypeContent = "application/epub+zip"

// cleanPath normalises an entry path given relative to the content
// directory. Backslashes are treated as separators and a leading "./" is
// dropped. Absolute paths and paths escaping the root are rejected.
func cleanPath(p string) (string, error) {
	p = strings.ReplaceAll(strings.TrimSpace(p), "\\", "/")
	if p == "" || strings.HasPrefix(p, "/") || !isSafePath(p) {
		return "", errors.Wrapf(ErrUnsafePath, "%q", p)
	}
	cleaned := path.Clean(p)
	if cleaned == "." {
		return "", errors.Wrapf(ErrUnsafePath, "%q", p)
	}
	return cleaned, nil
}

// hrefURL percent-encodes each segment of an entry path so it can be used
// as a URL reference in the package, NCX and nav documents. A fragment is
// kept as is.
func hrefURL(p string) string {
	p, frag, hasFrag := strings.Cut(p, "#")
	segs := strings.Split(p, "/")
	for i, s := range segs {
		segs[i] = url.PathEscape(s)
	}
	out := strings.Join(segs, "/")
	if hasFrag {
		out += "#" + frag
	}
	return out
}

// isSafePath checks whether p stays inside the archive root, i.e. it does
// not escape via traversal (e.g. "../../etc/passwd").
func isSafePath(p string) bool {
	cleaned := path.Clean(p)
	if strings.HasPrefix(cleaned, "/") {
		return false
	}
	if cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return false
	}
	return true
}

// zipWriter writes archive entries with a fixed timestamp so that the same
// input yields the same bytes.
type zipWriter struct {
	zw       *zip.Writer
	modified time.Time
}

// writeStored writes an uncompressed entry. EPUB requires this for the
// mimetype file.
func (z *zipWriter) writeStored(name string, data []byte) error {
	return z.write(name, data, zip.Store)
}

// writeDeflated writes a compressed entry.
func (z *zipWriter) writeDeflated(name string, data []byte) error {
	return z.write(name, data, zip.Deflate)
}

func (z *zipWriter) write(name string, data []byte, method uint16) error {
	date, clock := msDosTime(z.modified)
	fw, err := z.zw.CreateHeader(&zip.FileHeader{
		Name:         name,
		Method:       method,
		ModifiedDate: date,
		ModifiedTime: clock,
	})
	if err != nil {
		return errors.Wrapf(err, "builder: create entry %s", name)
	}
	if _, err := fw.Write(data); err != nil {
		return errors.Wrapf(err, "builder: write entry %s", name)
	}
	return nil
}

// msDosTime encodes t in the legacy header fields. Setting
// FileHeader.Modified instead would add an extended timestamp extra field,
// which the mimetype entry must not carry.
func msDosTime(t time.Time) (date, clock uint16) {
	if t.Year() < 1980 {
		t = time.Date(1980, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	date = uint16(t.Day() + int(t.Month())<<5 + (t.Year()-1980)<<9)
	clock = uint16(t.Second()/2 + t.Minute()<<5 + t.Hour()<<11)
	return date, clock
}
