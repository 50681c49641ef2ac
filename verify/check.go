package verify

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/Laisky/errors/v2"
	"github.com/gabriel-vasile/mimetype"
	"github.com/klauspost/compress/zip"
)

const xhtmlMediaType = "application/xhtml+xml"

// Severity classifies a [Problem].
type Severity int

const (
	// SeverityError marks a violation reading systems may reject.
	SeverityError Severity = iota
	// SeverityWarning marks something suspicious that most readers
	// tolerate.
	SeverityWarning
)

func (s Severity) String() string {
	if s == SeverityWarning {
		return "WARNING"
	}
	return "ERROR"
}

// Problem is a single finding of [Check].
type Problem struct {
	Severity Severity

	// Path is the archive entry the problem was found in, if any.
	Path    string
	Message string
}

func (p Problem) String() string {
	if p.Path == "" {
		return p.Severity.String() + ": " + p.Message
	}
	return p.Severity.String() + " " + p.Path + ": " + p.Message
}

// Report collects the problems found in one book.
type Report struct {
	Problems []Problem
}

// Errors returns the problems of error severity.
func (r *Report) Errors() []Problem {
	return r.filter(SeverityError)
}

// Warnings returns the problems of warning severity.
func (r *Report) Warnings() []Problem {
	return r.filter(SeverityWarning)
}

// OK reports whether no errors were found.
func (r *Report) OK() bool {
	return len(r.Errors()) == 0
}

func (r *Report) filter(s Severity) []Problem {
	var out []Problem
	for _, p := range r.Problems {
		if p.Severity == s {
			out = append(out, p)
		}
	}
	return out
}

func (r *Report) errorf(path, format string, args ...any) {
	r.Problems = append(r.Problems, Problem{SeverityError, path, fmt.Sprintf(format, args...)})
}

func (r *Report) warnf(path, format string, args ...any) {
	r.Problems = append(r.Problems, Problem{SeverityWarning, path, fmt.Sprintf(format, args...)})
}

// Check opens the EPUB at path and checks its structure. The error is
// non-nil only when the file cannot be read as a ZIP archive; everything
// else is reported in the returned [Report].
func Check(path string) (*Report, error) {
	zrc, err := zip.OpenReader(path)
	if err != nil {
		return nil, errors.Wrapf(err, "verify: open %s", path)
	}
	defer zrc.Close()
	return checkArchive(&zrc.Reader), nil
}

// CheckReader is like [Check] for an archive held in r.
func CheckReader(r io.ReaderAt, size int64) (*Report, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, errors.Wrap(err, "verify: open zip")
	}
	return checkArchive(zr), nil
}

func checkArchive(zr *zip.Reader) *Report {
	r := &Report{}
	checkMimetype(zr, r)

	b, err := initBook(zr, nil)
	if err != nil {
		r.errorf("", "%v", err)
		return r
	}
	for _, w := range b.warnings {
		r.warnf("", "%s", w)
	}

	checkMetadata(b, r)
	checkManifest(b, r)
	checkSpine(b, r)
	checkNavigation(b, r)
	checkContentDocuments(b, r)
	checkCover(b, r)
	return r
}

// checkMimetype enforces the OCF rules for the first entry: it must be an
// uncompressed "mimetype" file without extra field holding exactly
// application/epub+zip.
func checkMimetype(zr *zip.Reader, r *Report) {
	if len(zr.File) == 0 || zr.File[0].Name != "mimetype" {
		r.errorf("mimetype", "mimetype must be the first entry in the archive")
		return
	}
	f := zr.File[0]
	if f.Method != zip.Store {
		r.errorf(f.Name, "mimetype must be stored uncompressed")
	}
	if len(f.Extra) != 0 {
		r.errorf(f.Name, "mimetype must not have an extra field")
	}
	data, err := readZipFile(f)
	if err != nil {
		r.errorf(f.Name, "%v", err)
		return
	}
	if string(data) != expectedMimetype {
		r.errorf(f.Name, "content is %q; want %q", data, expectedMimetype)
	}
}

func checkMetadata(b *Book, r *Report) {
	md := b.metadata
	if len(md.Titles) == 0 {
		r.errorf(b.opfPath, "missing dc:title")
	}
	if len(md.Languages) == 0 {
		r.errorf(b.opfPath, "missing dc:language")
	}
	switch {
	case len(md.Identifiers) == 0:
		r.errorf(b.opfPath, "missing dc:identifier")
	case b.opf.UniqueIdentifier == "":
		r.errorf(b.opfPath, "package has no unique-identifier attribute")
	case md.UniqueIdentifier == "":
		r.errorf(b.opfPath, "unique-identifier %q does not match any dc:identifier", b.opf.UniqueIdentifier)
	}
	if b.IsEpub3() && md.Modified == "" {
		r.errorf(b.opfPath, "missing dcterms:modified")
	}
}

func checkManifest(b *Book, r *Report) {
	if len(b.opf.Manifest.Items) > len(b.manifest) {
		r.errorf(b.opfPath, "manifest has duplicate ids")
	}

	declared := make(map[string]bool, len(b.manifest))
	for _, it := range b.manifest {
		if hasURIScheme(it.Href) {
			continue
		}
		if it.Path == "" {
			r.errorf(b.opfPath, "manifest item %q has invalid href %q", it.ID, it.Href)
			continue
		}
		if declared[it.Path] {
			r.errorf(b.opfPath, "%s is declared twice in the manifest", it.Path)
		}
		declared[it.Path] = true
		if it.MediaType == "" {
			r.errorf(b.opfPath, "manifest item %q has no media-type", it.ID)
		}
		if findFile(b.zip, it.Path) == nil {
			r.errorf(b.opfPath, "manifest item %q references missing file %s", it.ID, it.Path)
		}
	}

	for _, f := range b.zip.File {
		name := f.Name
		if name == "mimetype" || name == b.opfPath || strings.HasPrefix(name, "META-INF/") || strings.HasSuffix(name, "/") {
			continue
		}
		if !declared[name] {
			r.warnf(name, "file is not declared in the manifest")
		}
	}
}

func checkSpine(b *Book, r *Report) {
	if len(b.spine) == 0 {
		r.errorf(b.opfPath, "spine is empty")
		return
	}
	for _, si := range b.spine {
		switch {
		case si.Item == nil:
			r.errorf(b.opfPath, "spine itemref %q does not match a manifest item", si.IDRef)
		case si.Item.MediaType != xhtmlMediaType:
			r.warnf(si.Item.Path, "spine item has media type %s", si.Item.MediaType)
		}
	}
}

func checkNavigation(b *Book, r *Report) {
	ncx := b.ncxItem()
	switch {
	case b.opf.Spine.Toc == "":
		if !b.IsEpub3() {
			r.errorf(b.opfPath, "spine has no toc attribute")
		}
	case ncx == nil:
		r.errorf(b.opfPath, "spine toc %q does not match a manifest item", b.opf.Spine.Toc)
	case ncx.MediaType != "application/x-dtbncx+xml":
		r.errorf(ncx.Path, "NCX has media type %s", ncx.MediaType)
	}

	if b.IsEpub3() {
		nav := b.navItem()
		if nav == nil {
			r.errorf(b.opfPath, "no manifest item has the nav property")
		} else if len(b.toc) == 0 {
			r.errorf(nav.Path, "nav document has no toc entries")
		}
	}

	var walk func([]TOCItem)
	walk = func(items []TOCItem) {
		for _, it := range items {
			if it.Href != "" && findFile(b.zip, stripFragment(it.Href)) == nil {
				r.errorf("", "table of contents entry %q points to missing %s", it.Title, it.Href)
			}
			walk(it.Children)
		}
	}
	walk(b.toc)
}

// checkContentDocuments requires every XHTML item to be well-formed XML.
func checkContentDocuments(b *Book, r *Report) {
	for _, it := range b.manifest {
		if it.MediaType != xhtmlMediaType || it.Path == "" {
			continue
		}
		data, err := b.ReadFile(it.Path)
		if err != nil {
			continue // reported by checkManifest
		}
		if err := wellFormed(data); err != nil {
			r.errorf(it.Path, "not well-formed: %v", err)
		}
	}
}

func wellFormed(data []byte) error {
	d := xml.NewDecoder(bytes.NewReader(stripBOM(data)))
	d.Strict = true
	for {
		_, err := d.Token()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

func checkCover(b *Book, r *Report) {
	if item := b.coverFromProperties(); item != nil && !isImageMediaType(item.MediaType) {
		r.errorf(item.Path, "cover-image has media type %s", item.MediaType)
		return
	}
	cover, err := b.Cover()
	if errors.Is(err, ErrNoCover) {
		return
	}
	if err != nil {
		r.errorf("", "read cover: %v", err)
		return
	}
	// Only a sniffed image type is trusted; text formats like SVG sniff
	// inconsistently.
	sniffed := mimetype.Detect(cover.Data)
	if isImageMediaType(sniffed.String()) && !sniffed.Is(cover.MediaType) {
		r.warnf(cover.Path, "declared as %s but looks like %s", cover.MediaType, sniffed.String())
	}
}
