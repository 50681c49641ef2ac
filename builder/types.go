package builder

import "time"

// Version is the EPUB specification version of the generated archive.
type Version int

const (
	// V2 produces an EPUB 2.0.1 package with an NCX table of contents.
	V2 Version = 2

	// V3 produces an EPUB 3 package with a navigation document and
	// landmarks in addition to the NCX.
	V3 Version = 3
)

// ReferenceType marks a content document as a structural component of the
// book. It is written to the OPF guide and, for EPUB 3, to the landmarks.
type ReferenceType string

const (
	RefCover           ReferenceType = "cover"
	RefTitlePage       ReferenceType = "title-page"
	RefTOC             ReferenceType = "toc"
	RefPreface         ReferenceType = "preface"
	RefText            ReferenceType = "text"
	RefAcknowledgments ReferenceType = "acknowledgements"
	RefBibliography    ReferenceType = "bibliography"
	RefGlossary        ReferenceType = "glossary"
	RefIndex           ReferenceType = "index"
)

// landmarkType maps a guide reference type to its EPUB 3 structural
// semantics vocabulary term.
func (r ReferenceType) landmarkType() string {
	switch r {
	case RefText:
		return "bodymatter"
	case RefTitlePage:
		return "titlepage"
	case RefAcknowledgments:
		return "acknowledgments"
	default:
		return string(r)
	}
}

// Metadata is the Dublin Core metadata written to the package document.
type Metadata struct {
	// Title is the dc:title value.
	Title string

	// Authors become one dc:creator each, with role "aut".
	Authors []string

	// Description is the dc:description value.
	Description string

	// Language is the dc:language value (BCP 47). Empty means "en".
	Language string

	// Generator is written as <meta name="generator">.
	Generator string

	// Identifier is the unique book identifier. When empty a stable
	// urn:uuid is derived from the title and authors.
	Identifier string

	// Modified is the last modification time (dcterms:modified in
	// EPUB 3 and the timestamp of every archive entry). Zero means now.
	Modified time.Time
}

// Content describes a content document to add to the spine.
type Content struct {
	// Path is the document location relative to the content directory,
	// e.g. "chapter_1.html".
	Path string

	// Title is the table of contents label. Documents without a title
	// are part of the spine but not of the table of contents.
	Title string

	// Level is the nesting depth in the table of contents, 0 for
	// top-level entries.
	Level int

	// RefType optionally marks the document in the guide and landmarks.
	RefType ReferenceType
}

// TOCItem is a node of the generated table of contents.
type TOCItem struct {
	// Title is the display text of the entry.
	Title string

	// Href is the content document path relative to the content directory.
	Href string

	// Children are nested entries.
	Children []TOCItem
}

// manifestItem is an entry of the OPF manifest together with its data.
type manifestItem struct {
	ID         string
	Href       string
	MediaType  string
	Properties []string
	Data       []byte
}

// contentItem is a content document waiting to be written.
type contentItem struct {
	manifestItem
	Title   string
	Level   int
	RefType ReferenceType
}
