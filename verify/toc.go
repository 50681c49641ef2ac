package verify

import (
	"bytes"
	"encoding/xml"
	"strings"

	"github.com/Laisky/errors/v2"
	"golang.org/x/net/html"
)

// parseTOC reads the table of contents from the nav document of an EPUB 3
// book, falling back to the NCX. Read failures become warnings.
func (b *Book) parseTOC() {
	spineIndex := make(map[string]int, len(b.spine))
	for i, si := range b.spine {
		if si.Item != nil {
			spineIndex[si.Item.Path] = i
		}
	}

	if nav := b.navItem(); nav != nil && strings.HasPrefix(b.metadata.Version, "3") {
		data, err := b.ReadFile(nav.Path)
		if err == nil {
			var toc, landmarks []TOCItem
			toc, landmarks, err = parseNavDocument(data, nav.Path)
			if err == nil {
				assignSpineIndices(toc, spineIndex)
				assignSpineIndices(landmarks, spineIndex)
				b.toc, b.landmarks = toc, landmarks
				return
			}
		}
		b.warnings = append(b.warnings, "nav document: "+err.Error())
	}

	if ncx := b.ncxItem(); ncx != nil {
		data, err := b.ReadFile(ncx.Path)
		if err == nil {
			var toc []TOCItem
			toc, err = parseNCX(data, ncx.Path)
			if err == nil {
				assignSpineIndices(toc, spineIndex)
				b.toc = toc
				return
			}
		}
		b.warnings = append(b.warnings, "NCX: "+err.Error())
	}

	b.toc = []TOCItem{}
}

// navItem is the manifest item with the "nav" property.
func (b *Book) navItem() *Item {
	for i := range b.manifest {
		if b.manifest[i].HasProperty("nav") {
			return &b.manifest[i]
		}
	}
	return nil
}

// ncxItem is the manifest item named by the spine's toc attribute.
func (b *Book) ncxItem() *Item {
	if i, ok := b.manifestByID[b.opf.Spine.Toc]; ok && b.opf.Spine.Toc != "" {
		return &b.manifest[i]
	}
	return nil
}

func assignSpineIndices(items []TOCItem, spineIndex map[string]int) {
	for i := range items {
		if idx, ok := spineIndex[stripFragment(items[i].Href)]; ok {
			items[i].SpineIndex = idx
		}
		assignSpineIndices(items[i].Children, spineIndex)
	}
}

type ncxDocument struct {
	XMLName xml.Name      `xml:"ncx"`
	NavMap  []ncxNavPoint `xml:"navMap>navPoint"`
}

type ncxNavPoint struct {
	ID        string        `xml:"id,attr"`
	PlayOrder string        `xml:"playOrder,attr"`
	Label     string        `xml:"navLabel>text"`
	Content   ncxContent    `xml:"content"`
	Children  []ncxNavPoint `xml:"navPoint"`
}

type ncxContent struct {
	Src string `xml:"src,attr"`
}

// parseNCX parses an EPUB 2 navigation control file. Hrefs are resolved
// against ncxPath.
func parseNCX(data []byte, ncxPath string) ([]TOCItem, error) {
	var doc ncxDocument
	if err := xml.Unmarshal(replaceNamedEntities(stripBOM(data)), &doc); err != nil {
		return nil, errors.Wrap(err, "verify: parse NCX")
	}
	return convertNavPoints(doc.NavMap, ncxPath), nil
}

func convertNavPoints(points []ncxNavPoint, ncxPath string) []TOCItem {
	if len(points) == 0 {
		return nil
	}
	items := make([]TOCItem, 0, len(points))
	for _, np := range points {
		items = append(items, TOCItem{
			Title:      strings.TrimSpace(np.Label),
			Href:       resolveHref(ncxPath, np.Content.Src),
			Children:   convertNavPoints(np.Children, ncxPath),
			SpineIndex: -1,
		})
	}
	return items
}

// resolveHref resolves href against basePath and keeps its fragment.
func resolveHref(basePath, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	file, frag, _ := strings.Cut(href, "#")
	if file == "" {
		file = basePath
	} else {
		file = resolveRelativePath(basePath, file)
		if file == "" {
			return ""
		}
	}
	if frag != "" {
		return file + "#" + frag
	}
	return file
}

// parseNavDocument returns the toc and landmarks lists of an EPUB 3 nav
// document.
func parseNavDocument(data []byte, basePath string) (toc, landmarks []TOCItem, err error) {
	doc, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, nil, errors.Wrap(err, "verify: parse nav document")
	}

	var visit func(*html.Node)
	visit = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "nav" {
			ol := findFirstElement(n, "ol")
			switch {
			case ol == nil:
			case hasEpubType(n, "toc"):
				toc = parseNavOL(ol, basePath)
			case hasEpubType(n, "landmarks"):
				landmarks = parseNavOL(ol, basePath)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	visit(doc)

	if toc == nil {
		return nil, nil, errors.New("verify: nav document has no toc nav")
	}
	return toc, landmarks, nil
}

func parseNavOL(ol *html.Node, basePath string) []TOCItem {
	var items []TOCItem
	for c := ol.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == "li" {
			items = append(items, parseNavLI(c, basePath))
		}
	}
	return items
}

func parseNavLI(li *html.Node, basePath string) TOCItem {
	item := TOCItem{SpineIndex: -1}
	for c := li.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		switch c.Data {
		case "a":
			if item.Href == "" {
				item.Href = resolveHref(basePath, attr(c, "href"))
				item.Title = strings.TrimSpace(textContent(c))
			}
		case "span":
			if item.Title == "" {
				item.Title = strings.TrimSpace(textContent(c))
			}
		case "ol":
			item.Children = parseNavOL(c, basePath)
		}
	}
	return item
}

func hasEpubType(n *html.Node, typ string) bool {
	for _, t := range strings.Fields(attr(n, "epub:type")) {
		if t == typ {
			return true
		}
	}
	return false
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// findFirstElement is a depth-first search for a descendant element.
func findFirstElement(n *html.Node, tag string) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == tag {
			return c
		}
		if found := findFirstElement(c, tag); found != nil {
			return found
		}
	}
	return nil
}

func textContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		sb.WriteString(textContent(c))
	}
	return sb.String()
}
