package book

import (
	"bytes"
	"net/url"

	"github.com/Laisky/errors/v2"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Link is a chapter entry in SUMMARY.md.
type Link struct {
	// Name is the link text.
	Name string

	// Location is the link target relative to the source directory,
	// nil for a draft chapter.
	Location *string

	// Number is set for numbered chapters only.
	Number SectionNumber

	// NestedItems are the entries of a nested list under this link.
	NestedItems []SummaryItem
}

// SummaryItem is a Link, a separator or a part title.
type SummaryItem struct {
	Kind      ItemKind
	Link      *Link
	PartTitle string
}

// Summary is the parsed form of SUMMARY.md.
type Summary struct {
	Title            string
	PrefixChapters   []SummaryItem
	NumberedChapters []SummaryItem
	SuffixChapters   []SummaryItem
}

type summarySection int

const (
	sectionPrefix summarySection = iota
	sectionNumbered
	sectionSuffix
)

// ParseSummary parses the table of contents of a book.
//
// The layout follows mdBook: an optional "# Title", unnumbered prefix
// chapters, numbered chapters written as (nested) lists and grouped by
// "# Part" headings, then unnumbered suffix chapters. "---" inserts a
// separator and "[Name]()" declares a draft chapter.
func ParseSummary(src []byte) (*Summary, error) {
	doc := goldmark.DefaultParser().Parse(text.NewReader(src))

	s := &Summary{}
	section := sectionPrefix
	counter := 0
	first := true

	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		isFirst := first
		first = false

		switch node := n.(type) {
		case *ast.Heading:
			title := nodeText(node, src)
			if isFirst && node.Level == 1 {
				s.Title = title
				continue
			}
			if section == sectionSuffix {
				return nil, errors.Errorf("book: SUMMARY.md: part title %q after suffix chapters", title)
			}
			section = sectionNumbered
			s.NumberedChapters = append(s.NumberedChapters, SummaryItem{Kind: KindPartTitle, PartTitle: title})

		case *ast.Paragraph:
			links := paragraphLinks(node, src)
			if len(links) == 0 {
				continue
			}
			if section == sectionNumbered {
				section = sectionSuffix
			}
			for _, l := range links {
				item := SummaryItem{Kind: KindChapter, Link: l}
				if section == sectionPrefix {
					s.PrefixChapters = append(s.PrefixChapters, item)
				} else {
					s.SuffixChapters = append(s.SuffixChapters, item)
				}
			}

		case *ast.ThematicBreak:
			sep := SummaryItem{Kind: KindSeparator}
			switch section {
			case sectionPrefix:
				s.PrefixChapters = append(s.PrefixChapters, sep)
			case sectionNumbered:
				s.NumberedChapters = append(s.NumberedChapters, sep)
			default:
				s.SuffixChapters = append(s.SuffixChapters, sep)
			}

		case *ast.List:
			if section == sectionSuffix {
				return nil, errors.New("book: SUMMARY.md: numbered chapters after suffix chapters")
			}
			section = sectionNumbered
			items, err := parseList(node, src, nil, &counter)
			if err != nil {
				return nil, err
			}
			s.NumberedChapters = append(s.NumberedChapters, items...)
		}
	}

	return s, nil
}

// parseList converts a list into numbered items. counter holds the last
// number used at this nesting level.
func parseList(list *ast.List, src []byte, parent SectionNumber, counter *int) ([]SummaryItem, error) {
	var items []SummaryItem
	for li := list.FirstChild(); li != nil; li = li.NextSibling() {
		var link *Link
		var nested *ast.List
		for c := li.FirstChild(); c != nil; c = c.NextSibling() {
			switch child := c.(type) {
			case *ast.Paragraph, *ast.TextBlock:
				if link == nil {
					if links := paragraphLinks(child, src); len(links) > 0 {
						link = links[0]
					}
				}
			case *ast.List:
				nested = child
			}
		}
		if link == nil {
			if li.FirstChild() == nil {
				continue
			}
			return nil, errors.Errorf("book: SUMMARY.md: list item %q is not a link", nodeText(li, src))
		}

		*counter++
		link.Number = append(append(SectionNumber{}, parent...), *counter)
		if nested != nil {
			sub := 0
			nestedItems, err := parseList(nested, src, link.Number, &sub)
			if err != nil {
				return nil, err
			}
			link.NestedItems = nestedItems
		}
		items = append(items, SummaryItem{Kind: KindChapter, Link: link})
	}
	return items, nil
}

// paragraphLinks returns the links that are direct children of n.
func paragraphLinks(n ast.Node, src []byte) []*Link {
	var links []*Link
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		l, ok := c.(*ast.Link)
		if !ok {
			continue
		}
		link := &Link{Name: nodeText(l, src)}
		if dest := string(l.Destination); dest != "" {
			if decoded, err := url.PathUnescape(dest); err == nil {
				dest = decoded
			}
			link.Location = &dest
		}
		links = append(links, link)
	}
	return links
}

// nodeText concatenates the text of every descendant of n.
func nodeText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *ast.Text:
			buf.Write(t.Segment.Value(src))
			if t.SoftLineBreak() {
				buf.WriteByte(' ')
			}
		case *ast.String:
			buf.Write(t.Value)
		}
		return ast.WalkContinue, nil
	})
	return string(bytes.TrimSpace(buf.Bytes()))
}
