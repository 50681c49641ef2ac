package verify

import (
	"io"
	"slices"
	"strings"

	"github.com/Laisky/errors/v2"
	"github.com/klauspost/compress/zip"
)

// expectedMimetype is the required content of the "mimetype" entry.
const expectedMimetype = "application/epub+zip"

// Book is an opened EPUB archive. Use [Open] or [NewReader] to create one.
//
// A Book is not safe for concurrent use by multiple goroutines.
type Book struct {
	zip          *zip.Reader
	closer       io.Closer // non-nil only when created via Open
	opfPath      string
	opf          *opfPackage
	manifest     []Item
	manifestByID map[string]int
	spine        []SpineItem
	metadata     Metadata
	toc          []TOCItem
	landmarks    []TOCItem
	warnings     []string
}

// Open opens the EPUB file at path. The caller must call Close when done.
func Open(path string) (*Book, error) {
	zrc, err := zip.OpenReader(path)
	if err != nil {
		return nil, errors.Wrapf(err, "verify: open %s", path)
	}
	b, err := initBook(&zrc.Reader, zrc)
	if err != nil {
		zrc.Close()
		return nil, err
	}
	return b, nil
}

// NewReader reads an EPUB from r. The caller owns r; Close only releases
// internal state.
func NewReader(r io.ReaderAt, size int64) (*Book, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, errors.Wrap(err, "verify: open zip")
	}
	return initBook(zr, nil)
}

func initBook(zr *zip.Reader, closer io.Closer) (*Book, error) {
	b := &Book{zip: zr, closer: closer}

	opfPath, err := parseContainer(zr)
	if err != nil {
		return nil, err
	}
	b.opfPath = opfPath

	f := findFileInsensitive(zr, opfPath)
	if f == nil {
		return nil, errors.Wrapf(ErrInvalidEPub, "package document %s not found", opfPath)
	}
	data, err := readZipFile(f)
	if err != nil {
		return nil, errors.Wrap(err, "verify: read package document")
	}
	if b.opf, err = parseOPF(data); err != nil {
		return nil, err
	}

	b.manifest, b.manifestByID = buildManifest(b.opf.Manifest, opfPath)
	b.spine = buildSpine(b.opf.Spine, b.manifest, b.manifestByID)
	b.metadata = extractMetadata(b.opf)
	b.parseTOC()
	return b, nil
}

// Close releases the underlying file when the book was created by Open.
// It is safe to call more than once.
func (b *Book) Close() error {
	if b.closer == nil {
		return nil
	}
	err := b.closer.Close()
	b.closer = nil
	return err
}

// ReadFile returns the content of the archive entry name. The lookup falls
// back to a case-insensitive match.
func (b *Book) ReadFile(name string) ([]byte, error) {
	f := findFileInsensitive(b.zip, name)
	if f == nil {
		return nil, errors.Wrapf(ErrFileNotFound, "%s", name)
	}
	return readZipFile(f)
}

// Files lists the archive entry names in archive order.
func (b *Book) Files() []string {
	names := make([]string, 0, len(b.zip.File))
	for _, f := range b.zip.File {
		names = append(names, f.Name)
	}
	return names
}

// PackagePath is the archive path of the package document.
func (b *Book) PackagePath() string {
	return b.opfPath
}

// Metadata returns a copy of the package metadata.
func (b *Book) Metadata() Metadata {
	md := b.metadata
	md.Titles = slices.Clone(md.Titles)
	md.Authors = slices.Clone(md.Authors)
	md.Languages = slices.Clone(md.Languages)
	md.Identifiers = slices.Clone(md.Identifiers)
	return md
}

// Title is the main title, or "".
func (b *Book) Title() string {
	if len(b.metadata.Titles) == 0 {
		return ""
	}
	return b.metadata.Titles[0]
}

// IsEpub3 reports whether the package declares version 3.
func (b *Book) IsEpub3() bool {
	return strings.HasPrefix(b.metadata.Version, "3")
}

// Resources returns the manifest items in document order.
func (b *Book) Resources() []Item {
	return slices.Clone(b.manifest)
}

// Spine returns the reading order.
func (b *Book) Spine() []SpineItem {
	return slices.Clone(b.spine)
}

// TOC returns the table of contents. It is empty, not nil, when the book
// has no usable navigation document.
func (b *Book) TOC() []TOCItem {
	return copyTOCItems(b.toc)
}

// Landmarks returns the landmarks nav of an EPUB 3 book.
func (b *Book) Landmarks() []TOCItem {
	return copyTOCItems(b.landmarks)
}

// Warnings lists problems found while reading that did not prevent the
// book from opening.
func (b *Book) Warnings() []string {
	return slices.Clone(b.warnings)
}

func copyTOCItems(in []TOCItem) []TOCItem {
	if in == nil {
		return nil
	}
	out := make([]TOCItem, len(in))
	for i, it := range in {
		out[i] = it
		out[i].Children = copyTOCItems(it.Children)
	}
	return out
}
