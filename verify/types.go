package verify

// Metadata holds the package metadata of a book.
type Metadata struct {
	// Version is the EPUB version attribute of the package, e.g. "3.0".
	Version string

	// Titles holds every dc:title. The first is the main title.
	Titles []string

	Authors     []Author
	Languages   []string
	Identifiers []Identifier

	// UniqueIdentifier is the value of the identifier the package's
	// unique-identifier attribute points to, or "" when none matches.
	UniqueIdentifier string

	Description string

	// Generator is the content of <meta name="generator">.
	Generator string

	// Modified is the dcterms:modified value of an EPUB 3 package.
	Modified string
}

// Author is a dc:creator entry.
type Author struct {
	Name string

	// Role is the MARC relator code, e.g. "aut", taken from the opf:role
	// attribute or a refining role meta.
	Role string
}

// Identifier is a dc:identifier entry.
type Identifier struct {
	Value  string
	Scheme string
	ID     string
}

// Item is a manifest entry.
type Item struct {
	ID        string
	MediaType string

	// Href is relative to the package document; Path is the entry's name
	// inside the archive.
	Href string
	Path string

	Properties []string
}

// HasProperty reports whether the item carries the given manifest
// property, e.g. "nav" or "cover-image".
func (it Item) HasProperty(prop string) bool {
	for _, p := range it.Properties {
		if p == prop {
			return true
		}
	}
	return false
}

// SpineItem is a reading-order entry resolved against the manifest.
type SpineItem struct {
	IDRef  string
	Linear bool

	// Item is nil when the idref does not name a manifest entry.
	Item *Item
}

// TOCItem is a node of the table of contents.
type TOCItem struct {
	Title string

	// Href is an archive path, possibly with a fragment.
	Href string

	Children []TOCItem

	// SpineIndex is the position of the referenced document in the spine,
	// or -1 when it is not part of the reading order.
	SpineIndex int
}

// CoverImage is the cover declared by the package.
type CoverImage struct {
	Path      string
	MediaType string
	Data      []byte
}
