package verify

import (
	"encoding/xml"
	"regexp"
	"strings"

	"github.com/Laisky/errors/v2"
)

type opfPackage struct {
	XMLName          xml.Name    `xml:"package"`
	Version          string      `xml:"version,attr"`
	UniqueIdentifier string      `xml:"unique-identifier,attr"`
	Metadata         opfMetadata `xml:"metadata"`
	Manifest         opfManifest `xml:"manifest"`
	Spine            opfSpine    `xml:"spine"`
	Guide            opfGuide    `xml:"guide"`
}

type opfMetadata struct {
	Titles       []opfDCElement `xml:"http://purl.org/dc/elements/1.1/ title"`
	Creators     []opfDCElement `xml:"http://purl.org/dc/elements/1.1/ creator"`
	Languages    []opfDCElement `xml:"http://purl.org/dc/elements/1.1/ language"`
	Identifiers  []opfDCElement `xml:"http://purl.org/dc/elements/1.1/ identifier"`
	Descriptions []opfDCElement `xml:"http://purl.org/dc/elements/1.1/ description"`
	Metas        []opfMeta      `xml:"meta"`
}

// opfDCElement is a Dublin Core element. EPUB 2 puts role and scheme on
// opf: attributes, EPUB 3 moves them to refining metas.
type opfDCElement struct {
	Value  string `xml:",chardata"`
	ID     string `xml:"id,attr"`
	Role   string `xml:"role,attr"`
	Scheme string `xml:"scheme,attr"`
}

type opfMeta struct {
	Name     string `xml:"name,attr"`
	Content  string `xml:"content,attr"`
	Property string `xml:"property,attr"`
	Refines  string `xml:"refines,attr"`
	Scheme   string `xml:"scheme,attr"`
	Value    string `xml:",chardata"`
}

type opfManifest struct {
	Items []opfManifestItem `xml:"item"`
}

type opfManifestItem struct {
	ID         string `xml:"id,attr"`
	Href       string `xml:"href,attr"`
	MediaType  string `xml:"media-type,attr"`
	Properties string `xml:"properties,attr"`
}

type opfSpine struct {
	Toc      string            `xml:"toc,attr"`
	ItemRefs []opfSpineItemRef `xml:"itemref"`
}

type opfSpineItemRef struct {
	IDRef  string `xml:"idref,attr"`
	Linear string `xml:"linear,attr"`
}

type opfGuide struct {
	References []opfGuideReference `xml:"reference"`
}

type opfGuideReference struct {
	Type  string `xml:"type,attr"`
	Title string `xml:"title,attr"`
	Href  string `xml:"href,attr"`
}

// namedEntityPattern matches the HTML entities hand-edited package
// documents tend to contain.
var namedEntityPattern = regexp.MustCompile(`&(nbsp|mdash|ndash|hellip|lsquo|rsquo|ldquo|rdquo|copy);`)

var namedEntities = map[string]string{
	"nbsp": "&#160;", "mdash": "&#8212;", "ndash": "&#8211;", "hellip": "&#8230;",
	"lsquo": "&#8216;", "rsquo": "&#8217;", "ldquo": "&#8220;", "rdquo": "&#8221;",
	"copy": "&#169;",
}

// replaceNamedEntities turns the entities above into numeric references
// encoding/xml understands.
func replaceNamedEntities(data []byte) []byte {
	return namedEntityPattern.ReplaceAllFunc(data, func(m []byte) []byte {
		return []byte(namedEntities[string(m[1:len(m)-1])])
	})
}

func parseOPF(data []byte) (*opfPackage, error) {
	var pkg opfPackage
	if err := xml.Unmarshal(replaceNamedEntities(stripBOM(data)), &pkg); err != nil {
		return nil, errors.Wrap(err, "verify: parse package document")
	}
	if pkg.Version == "" {
		pkg.Version = "2.0"
	}
	return &pkg, nil
}

// buildManifest resolves manifest hrefs against opfPath and indexes the
// items by id. Items with a duplicate id keep the first occurrence.
func buildManifest(m opfManifest, opfPath string) ([]Item, map[string]int) {
	items := make([]Item, 0, len(m.Items))
	byID := make(map[string]int, len(m.Items))
	for _, raw := range m.Items {
		if _, dup := byID[raw.ID]; dup {
			continue
		}
		byID[raw.ID] = len(items)
		items = append(items, Item{
			ID:         raw.ID,
			MediaType:  strings.TrimSpace(raw.MediaType),
			Href:       raw.Href,
			Path:       resolveRelativePath(opfPath, stripFragment(raw.Href)),
			Properties: strings.Fields(raw.Properties),
		})
	}
	return items, byID
}

func buildSpine(s opfSpine, items []Item, byID map[string]int) []SpineItem {
	spine := make([]SpineItem, 0, len(s.ItemRefs))
	for _, ref := range s.ItemRefs {
		si := SpineItem{
			IDRef:  ref.IDRef,
			Linear: !strings.EqualFold(strings.TrimSpace(ref.Linear), "no"),
		}
		if i, ok := byID[ref.IDRef]; ok {
			si.Item = &items[i]
		}
		spine = append(spine, si)
	}
	return spine
}

func extractMetadata(pkg *opfPackage) Metadata {
	md := Metadata{Version: pkg.Version}
	m := pkg.Metadata

	roles := make(map[string]string)
	for _, meta := range m.Metas {
		switch {
		case meta.Property == "role" && strings.HasPrefix(meta.Refines, "#"):
			roles[meta.Refines[1:]] = strings.TrimSpace(meta.Value)
		case meta.Property == "dcterms:modified":
			md.Modified = strings.TrimSpace(meta.Value)
		case strings.EqualFold(meta.Name, "generator"):
			md.Generator = meta.Content
		}
	}

	for _, t := range m.Titles {
		if v := strings.TrimSpace(t.Value); v != "" {
			md.Titles = append(md.Titles, v)
		}
	}
	for _, c := range m.Creators {
		name := strings.TrimSpace(c.Value)
		if name == "" {
			continue
		}
		role := c.Role
		if r, ok := roles[c.ID]; ok && c.ID != "" {
			role = r
		}
		md.Authors = append(md.Authors, Author{Name: name, Role: role})
	}
	for _, l := range m.Languages {
		if v := strings.TrimSpace(l.Value); v != "" {
			md.Languages = append(md.Languages, v)
		}
	}
	for _, id := range m.Identifiers {
		ident := Identifier{Value: strings.TrimSpace(id.Value), Scheme: id.Scheme, ID: id.ID}
		md.Identifiers = append(md.Identifiers, ident)
		if pkg.UniqueIdentifier != "" && id.ID == pkg.UniqueIdentifier {
			md.UniqueIdentifier = ident.Value
		}
	}
	if len(m.Descriptions) > 0 {
		md.Description = strings.TrimSpace(m.Descriptions[0].Value)
	}
	return md
}
