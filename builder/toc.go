package builder

import (
	"bytes"
	"encoding/xml"
	"strconv"
	"text/template"

	"github.com/Laisky/errors/v2"
)

const ncxNamespace = "http://www.daisy.org/z3986/2005/ncx/"

// --- NCX XML encoding structs (both versions) ---

// ncxDocument is the root <ncx> element of toc.ncx.
type ncxDocument struct {
	XMLName  xml.Name  `xml:"ncx"`
	Xmlns    string    `xml:"xmlns,attr"`
	Version  string    `xml:"version,attr"`
	Head     ncxHead   `xml:"head"`
	DocTitle ncxLabel  `xml:"docTitle"`
	NavMap   ncxNavMap `xml:"navMap"`
}

type ncxHead struct {
	Metas []ncxMeta `xml:"meta"`
}

type ncxMeta struct {
	Name    string `xml:"name,attr"`
	Content string `xml:"content,attr"`
}

// ncxLabel wraps a <text> child, used by <docTitle> and <navLabel>.
type ncxLabel struct {
	Text string `xml:"text"`
}

type ncxNavMap struct {
	NavPoints []ncxNavPoint `xml:"navPoint"`
}

// ncxNavPoint is a <navPoint> element which may contain nested navPoints.
type ncxNavPoint struct {
	ID        string        `xml:"id,attr"`
	PlayOrder int           `xml:"playOrder,attr"`
	Label     ncxLabel      `xml:"navLabel"`
	Content   ncxContent    `xml:"content"`
	Children  []ncxNavPoint `xml:"navPoint"`
}

type ncxContent struct {
	Src string `xml:"src,attr"`
}

// TOC returns the table of contents tree built from the content documents
// added so far. Each document's Level places it below the closest
// preceding document with a smaller level.
func (b *Builder) TOC() []TOCItem {
	type frame struct {
		level int
		item  *TOCItem
	}
	var roots []*TOCItem
	var stack []frame

	for _, c := range b.contents {
		if c.Title == "" {
			continue
		}
		node := &TOCItem{Title: c.Title, Href: c.Href}
		for len(stack) > 0 && stack[len(stack)-1].level >= c.Level {
			stack = stack[:len(stack)-1]
		}
		if len(stack) == 0 {
			roots = append(roots, node)
		} else {
			parent := stack[len(stack)-1].item
			parent.Children = append(parent.Children, TOCItem{})
			node = &parent.Children[len(parent.Children)-1]
			node.Title, node.Href = c.Title, c.Href
		}
		stack = append(stack, frame{level: c.Level, item: node})
	}

	out := make([]TOCItem, 0, len(roots))
	for _, r := range roots {
		out = append(out, *r)
	}
	return out
}

// buildNCX converts toc into the NCX document.
func (b *Builder) buildNCX(toc []TOCItem) ncxDocument {
	md := b.metadata()
	order := 0
	var convert func(items []TOCItem) []ncxNavPoint
	convert = func(items []TOCItem) []ncxNavPoint {
		points := make([]ncxNavPoint, 0, len(items))
		for _, it := range items {
			order++
			np := ncxNavPoint{
				ID:        "navPoint-" + strconv.Itoa(order),
				PlayOrder: order,
				Label:     ncxLabel{Text: it.Title},
				Content:   ncxContent{Src: hrefURL(it.Href)},
			}
			np.Children = convert(it.Children)
			points = append(points, np)
		}
		return points
	}

	return ncxDocument{
		Xmlns:   ncxNamespace,
		Version: "2005-1",
		Head: ncxHead{Metas: []ncxMeta{
			{Name: "dtb:uid", Content: md.Identifier},
			{Name: "dtb:depth", Content: strconv.Itoa(tocDepth(toc))},
			{Name: "dtb:totalPageCount", Content: "0"},
			{Name: "dtb:maxPageNumber", Content: "0"},
		}},
		DocTitle: ncxLabel{Text: md.Title},
		NavMap:   ncxNavMap{NavPoints: convert(toc)},
	}
}

// tocDepth returns the number of levels of the tree, at least 1.
func tocDepth(items []TOCItem) int {
	depth := 1
	for _, it := range items {
		if len(it.Children) > 0 {
			depth = max(depth, 1+tocDepth(it.Children))
		}
	}
	return depth
}

// --- Navigation document (EPUB 3) ---

type landmark struct {
	Type  string
	Title string
	Href  string
}

var navTemplate = template.Must(template.New("nav").Funcs(template.FuncMap{"href": hrefURL}).Parse(`<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE html>
<html xmlns="http://www.w3.org/1999/xhtml" xmlns:epub="http://www.idpf.org/2007/ops" lang="{{ .Language | html }}" xml:lang="{{ .Language | html }}">
<head>
<meta charset="utf-8" />
<title>{{ .Title | html }}</title>
</head>
<body>
<nav epub:type="toc" id="toc">
<h1>{{ .Title | html }}</h1>
{{ template "list" .TOC }}
</nav>
{{- if .Landmarks }}
<nav epub:type="landmarks" id="landmarks" hidden="hidden">
<ol>
{{- range .Landmarks }}
<li><a epub:type="{{ .Type | html }}" href="{{ .Href | href | html }}">{{ .Title | html }}</a></li>
{{- end }}
</ol>
</nav>
{{- end }}
</body>
</html>
{{ define "list" }}<ol>
{{- range . }}
<li><a href="{{ .Href | href | html }}">{{ .Title | html }}</a>
{{- if .Children }}
{{ template "list" .Children }}
{{- end }}</li>
{{- end }}
</ol>{{ end }}`))

// buildNav renders the EPUB 3 navigation document.
func (b *Builder) buildNav(toc []TOCItem) ([]byte, error) {
	md := b.metadata()
	data := struct {
		Title     string
		Language  string
		TOC       []TOCItem
		Landmarks []landmark
	}{
		Title:    "Table of Contents",
		Language: md.Language,
		TOC:      toc,
	}
	for _, c := range b.contents {
		if c.RefType == "" {
			continue
		}
		data.Landmarks = append(data.Landmarks, landmark{
			Type:  c.RefType.landmarkType(),
			Title: c.Title,
			Href:  c.Href,
		})
	}

	var buf bytes.Buffer
	if err := navTemplate.Execute(&buf, data); err != nil {
		return nil, errors.Wrap(err, "builder: render nav document")
	}
	return buf.Bytes(), nil
}
