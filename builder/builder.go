package builder

import (
	"bytes"
	"io"
	"strings"
	"time"

	"github.com/Laisky/errors/v2"
	"github.com/google/uuid"
	"github.com/klauspost/compress/zip"
)

const (
	ncxID        = "ncx"
	navID        = "nav"
	stylesheetID = "stylesheet"

	ncxPath        = "toc.ncx"
	navPath        = "nav.xhtml"
	stylesheetPath = "stylesheet.css"

	xhtmlMediaType = "application/xhtml+xml"
	defaultLang    = "en"
)

// Builder assembles an EPUB archive in memory and writes it with Generate.
// All paths are relative to the content directory (OEBPS), use forward
// slashes and must be unique.
//
// A Builder is not safe for concurrent use by multiple goroutines.
type Builder struct {
	version    Version
	md         Metadata
	stylesheet []byte
	contents   []*contentItem
	resources  []*manifestItem
	cover      *manifestItem
	paths      map[string]bool
	ids        *idSet
}

// New returns an empty Builder producing the given EPUB version.
func New(version Version) (*Builder, error) {
	if version != V2 && version != V3 {
		return nil, errors.Wrapf(ErrUnsupportedVersion, "%d", int(version))
	}
	return &Builder{
		version: version,
		paths: map[string]bool{
			ncxPath:        true,
			navPath:        true,
			stylesheetPath: true,
		},
		ids: newIDSet(ncxID, navID, stylesheetID),
	}, nil
}

// Version reports the EPUB version being produced.
func (b *Builder) Version() Version {
	return b.version
}

// SetMetadata replaces the book metadata.
func (b *Builder) SetMetadata(md Metadata) {
	md.Authors = append([]string(nil), md.Authors...)
	b.md = md
}

// Stylesheet sets the content of stylesheet.css.
func (b *Builder) Stylesheet(r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return errors.Wrap(err, "builder: read stylesheet")
	}
	b.stylesheet = data
	return nil
}

// AddContent appends an XHTML content document to the spine.
func (b *Builder) AddContent(c Content, body io.Reader) error {
	p, err := b.claim(c.Path)
	if err != nil {
		return err
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return errors.Wrapf(err, "builder: read content %s", p)
	}
	b.contents = append(b.contents, &contentItem{
		manifestItem: manifestItem{
			ID:         b.ids.forPath(p),
			Href:       p,
			MediaType:  xhtmlMediaType,
			Properties: contentProperties(data),
			Data:       data,
		},
		Title:   c.Title,
		Level:   max(c.Level, 0),
		RefType: c.RefType,
	})
	return nil
}

// AddResource adds a non-spine file such as an image or font. An empty
// mediaType is determined from the path and the data.
func (b *Builder) AddResource(p string, r io.Reader, mediaType string) error {
	item, err := b.resource(p, r, mediaType)
	if err != nil {
		return err
	}
	b.resources = append(b.resources, item)
	return nil
}

// AddCoverImage adds the cover image. It is flagged with the cover-image
// property (EPUB 3) and referenced by <meta name="cover"> (both versions).
func (b *Builder) AddCoverImage(p string, r io.Reader, mediaType string) error {
	if b.cover != nil {
		return errors.Wrapf(ErrDuplicatePath, "cover image already set to %s", b.cover.Href)
	}
	item, err := b.resource(p, r, mediaType)
	if err != nil {
		return err
	}
	item.Properties = append(item.Properties, "cover-image")
	b.cover = item
	return nil
}

// HasPath reports whether an entry was already added at p.
func (b *Builder) HasPath(p string) bool {
	cleaned, err := cleanPath(p)
	return err == nil && b.paths[cleaned]
}

// Contents reports how many content documents were added.
func (b *Builder) Contents() int {
	return len(b.contents)
}

// Generate writes the EPUB archive to w.
func (b *Builder) Generate(w io.Writer) error {
	if len(b.contents) == 0 {
		return ErrNoContent
	}
	if b.md.Modified.IsZero() {
		b.md.Modified = time.Now()
	}
	md := b.metadata()

	zw := zip.NewWriter(w)
	out := &zipWriter{zw: zw, modified: md.Modified.UTC().Truncate(time.Second)}

	if err := out.writeStored("mimetype", []byte(mimetypeContent)); err != nil {
		return err
	}

	container, err := marshalXML(buildContainer())
	if err != nil {
		return err
	}
	if err := out.writeDeflated(containerPath, container); err != nil {
		return err
	}

	opf, err := marshalXML(b.buildOPF())
	if err != nil {
		return err
	}
	if err := out.writeDeflated(opfPath, opf); err != nil {
		return err
	}

	toc := b.TOC()
	ncx, err := marshalXML(b.buildNCX(toc))
	if err != nil {
		return err
	}
	if err := out.writeDeflated(contentDir+"/"+ncxPath, ncx); err != nil {
		return err
	}

	if b.version == V3 {
		nav, err := b.buildNav(toc)
		if err != nil {
			return err
		}
		if err := out.writeDeflated(contentDir+"/"+navPath, nav); err != nil {
			return err
		}
	}

	for _, it := range b.manifest() {
		if it.Data == nil {
			continue
		}
		if err := out.writeDeflated(contentDir+"/"+it.Href, it.Data); err != nil {
			return err
		}
	}

	if err := zw.Close(); err != nil {
		return errors.Wrap(err, "builder: finish archive")
	}
	return nil
}

// metadata returns the metadata with defaults filled in.
func (b *Builder) metadata() Metadata {
	md := b.md
	if md.Language == "" {
		md.Language = defaultLang
	}
	if md.Identifier == "" {
		md.Identifier = stableIdentifier(md.Title, md.Authors)
	}
	return md
}

// stableIdentifier derives a name-based UUID so that rebuilding the same
// book keeps its identity in reading systems.
func stableIdentifier(title string, authors []string) string {
	name := title + "\x00" + strings.Join(authors, "\x00")
	return "urn:uuid:" + uuid.NewSHA1(uuid.NameSpaceURL, []byte(name)).String()
}

// manifest lists every item in archive order. Generated documents (NCX,
// nav) carry no data here.
func (b *Builder) manifest() []*manifestItem {
	items := []*manifestItem{{ID: ncxID, Href: ncxPath, MediaType: "application/x-dtbncx+xml"}}
	if b.version == V3 {
		items = append(items, &manifestItem{ID: navID, Href: navPath, MediaType: xhtmlMediaType, Properties: []string{"nav"}})
	}
	if b.stylesheet != nil {
		items = append(items, &manifestItem{ID: stylesheetID, Href: stylesheetPath, MediaType: "text/css", Data: b.stylesheet})
	}
	for _, c := range b.contents {
		items = append(items, &c.manifestItem)
	}
	items = append(items, b.resources...)
	if b.cover != nil {
		items = append(items, b.cover)
	}
	return items
}

// claim validates p and records it as used.
func (b *Builder) claim(p string) (string, error) {
	cleaned, err := cleanPath(p)
	if err != nil {
		return "", err
	}
	if b.paths[cleaned] {
		return "", errors.Wrapf(ErrDuplicatePath, "%s", cleaned)
	}
	b.paths[cleaned] = true
	return cleaned, nil
}

func (b *Builder) resource(p string, r io.Reader, mediaType string) (*manifestItem, error) {
	cleaned, err := b.claim(p)
	if err != nil {
		return nil, err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrapf(err, "builder: read resource %s", cleaned)
	}
	if data == nil {
		data = []byte{}
	}
	if mediaType == "" {
		mediaType = MediaType(cleaned, data)
	}
	return &manifestItem{
		ID:        b.ids.forPath(cleaned),
		Href:      cleaned,
		MediaType: mediaType,
		Data:      data,
	}, nil
}

// contentProperties returns the EPUB 3 manifest properties a content
// document needs based on what it embeds.
func contentProperties(data []byte) []string {
	var props []string
	if bytes.Contains(data, []byte("<svg")) {
		props = append(props, "svg")
	}
	if bytes.Contains(data, []byte(`src="http://`)) || bytes.Contains(data, []byte(`src="https://`)) {
		props = append(props, "remote-resources")
	}
	if bytes.Contains(data, []byte("<script")) {
		props = append(props, "scripted")
	}
	return props
}
