package builder

import (
	"encoding/xml"
	"strconv"
	"strings"

	"github.com/Laisky/errors/v2"
)

const (
	opfNamespace = "http://www.idpf.org/2007/opf"
	dcNamespace  = "http://purl.org/dc/elements/1.1/"

	// uniqueIdentifierID is the id of the dc:identifier element the
	// package's unique-identifier attribute points to.
	uniqueIdentifierID = "epub-id-1"
)

// opfPackage is the root <package> element of the package document.
// Prefixed names are spelled out literally so encoding/xml writes them
// as-is.
type opfPackage struct {
	XMLName          xml.Name    `xml:"package"`
	Xmlns            string      `xml:"xmlns,attr"`
	Version          string      `xml:"version,attr"`
	UniqueIdentifier string      `xml:"unique-identifier,attr"`
	Metadata         opfMetadata `xml:"metadata"`
	Manifest         opfManifest `xml:"manifest"`
	Spine            opfSpine    `xml:"spine"`
	Guide            *opfGuide   `xml:"guide,omitempty"`
}

// opfMetadata holds the Dublin Core elements and <meta> entries.
type opfMetadata struct {
	XmlnsDC      string         `xml:"xmlns:dc,attr"`
	XmlnsOPF     string         `xml:"xmlns:opf,attr"`
	Identifiers  []opfDCElement `xml:"dc:identifier"`
	Titles       []opfDCElement `xml:"dc:title"`
	Languages    []opfDCElement `xml:"dc:language"`
	Creators     []opfDCElement `xml:"dc:creator"`
	Descriptions []opfDCElement `xml:"dc:description,omitempty"`
	Metas        []opfMeta      `xml:"meta"`
}

// opfDCElement is a Dublin Core element. EPUB 2 expresses roles with
// opf: attributes; EPUB 3 uses refining <meta> elements instead.
type opfDCElement struct {
	Value  string `xml:",chardata"`
	ID     string `xml:"id,attr,omitempty"`
	Role   string `xml:"opf:role,attr,omitempty"`
	Scheme string `xml:"opf:scheme,attr,omitempty"`
}

// opfMeta is a <meta> element.
// EPUB 2: <meta name="..." content="..."/>
// EPUB 3: <meta property="..." refines="...">value</meta>
type opfMeta struct {
	Name     string `xml:"name,attr,omitempty"`
	Content  string `xml:"content,attr,omitempty"`
	Property string `xml:"property,attr,omitempty"`
	Refines  string `xml:"refines,attr,omitempty"`
	Scheme   string `xml:"scheme,attr,omitempty"`
	Value    string `xml:",chardata"`
}

type opfManifest struct {
	Items []opfManifestItem `xml:"item"`
}

type opfManifestItem struct {
	ID         string `xml:"id,attr"`
	Href       string `xml:"href,attr"`
	MediaType  string `xml:"media-type,attr"`
	Properties string `xml:"properties,attr,omitempty"`
}

type opfSpine struct {
	Toc      string            `xml:"toc,attr,omitempty"`
	ItemRefs []opfSpineItemRef `xml:"itemref"`
}

type opfSpineItemRef struct {
	IDRef string `xml:"idref,attr"`
}

type opfGuide struct {
	References []opfGuideReference `xml:"reference"`
}

type opfGuideReference struct {
	Type  string `xml:"type,attr"`
	Title string `xml:"title,attr"`
	Href  string `xml:"href,attr"`
}

// buildOPF assembles the package document for the current state of b.
func (b *Builder) buildOPF() opfPackage {
	md := b.metadata()

	pkg := opfPackage{
		Xmlns:            opfNamespace,
		Version:          "2.0",
		UniqueIdentifier: uniqueIdentifierID,
		Metadata: opfMetadata{
			XmlnsDC:  dcNamespace,
			XmlnsOPF: opfNamespace,
		},
	}
	if b.version == V3 {
		pkg.Version = "3.0"
	}

	m := &pkg.Metadata
	ident := opfDCElement{Value: md.Identifier, ID: uniqueIdentifierID}
	if b.version == V2 && strings.HasPrefix(md.Identifier, "urn:uuid:") {
		ident.Scheme = "UUID"
	}
	m.Identifiers = []opfDCElement{ident}
	m.Titles = []opfDCElement{{Value: md.Title}}
	m.Languages = []opfDCElement{{Value: md.Language}}
	for i, author := range md.Authors {
		creator := opfDCElement{Value: author}
		if b.version == V2 {
			creator.Role = "aut"
		} else {
			creator.ID = creatorID(i)
			m.Metas = append(m.Metas, opfMeta{
				Property: "role",
				Refines:  "#" + creator.ID,
				Scheme:   "marc:relators",
				Value:    "aut",
			})
		}
		m.Creators = append(m.Creators, creator)
	}
	if md.Description != "" {
		m.Descriptions = []opfDCElement{{Value: md.Description}}
	}
	if md.Generator != "" {
		m.Metas = append(m.Metas, opfMeta{Name: "generator", Content: md.Generator})
	}
	if b.cover != nil {
		m.Metas = append(m.Metas, opfMeta{Name: "cover", Content: b.cover.ID})
	}
	if b.version == V3 {
		m.Metas = append(m.Metas, opfMeta{
			Property: "dcterms:modified",
			Value:    md.Modified.UTC().Format("2006-01-02T15:04:05Z"),
		})
	}

	for _, it := range b.manifest() {
		item := opfManifestItem{ID: it.ID, Href: hrefURL(it.Href), MediaType: it.MediaType}
		if b.version == V3 {
			item.Properties = strings.Join(it.Properties, " ")
		}
		pkg.Manifest.Items = append(pkg.Manifest.Items, item)
	}

	pkg.Spine.Toc = ncxID
	for _, c := range b.contents {
		pkg.Spine.ItemRefs = append(pkg.Spine.ItemRefs, opfSpineItemRef{IDRef: c.ID})
	}

	var refs []opfGuideReference
	for _, c := range b.contents {
		if c.RefType == "" {
			continue
		}
		refs = append(refs, opfGuideReference{Type: string(c.RefType), Title: c.Title, Href: hrefURL(c.Href)})
	}
	if len(refs) > 0 {
		pkg.Guide = &opfGuide{References: refs}
	}

	return pkg
}

func creatorID(i int) string {
	return "epub-creator-" + strconv.Itoa(i+1)
}

// marshalXML renders v as an indented XML document with declaration.
func marshalXML(v any) ([]byte, error) {
	out, err := xml.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "builder: marshal xml")
	}
	return append([]byte(xml.Header), out...), nil
}
