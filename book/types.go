package book

import (
	"bytes"
	"encoding/json"
	"iter"
	"strconv"
	"strings"

	"github.com/Laisky/errors/v2"
)

// SectionNumber is the position of a chapter in the numbered part of a book.
// The value [1 2] is the second sub-chapter of the first chapter.
type SectionNumber []int

// String renders the number the way mdBook prints it, e.g. "1.2.".
// An empty number renders as an empty string.
func (n SectionNumber) String() string {
	var sb strings.Builder
	for _, v := range n {
		sb.WriteString(strconv.Itoa(v))
		sb.WriteByte('.')
	}
	return sb.String()
}

// Chapter is a single page of the book together with its nested sub-chapters.
type Chapter struct {
	// Name is the chapter title as written in SUMMARY.md.
	Name string `json:"name"`

	// Content is the Markdown source of the chapter.
	Content string `json:"content"`

	// Number is the section number, nil for prefix and suffix chapters.
	Number SectionNumber `json:"number"`

	// SubItems are the nested items listed under this chapter.
	SubItems []BookItem `json:"sub_items"`

	// Path is the chapter location relative to the source directory.
	// A nil Path marks a draft chapter.
	Path *string `json:"path"`

	// SourcePath is the file the content was read from, relative to the
	// source directory. It differs from Path when a preprocessor renamed
	// the chapter (README.md to index.md).
	SourcePath *string `json:"source_path"`

	// ParentNames lists the names of all enclosing chapters, outermost first.
	ParentNames []string `json:"parent_names"`
}

// IsDraft reports whether the chapter has no backing file.
func (c *Chapter) IsDraft() bool {
	return c.Path == nil
}

// MarshalJSON keeps list fields as arrays; mdBook rejects null there.
func (c Chapter) MarshalJSON() ([]byte, error) {
	type plain Chapter
	p := plain(c)
	if p.SubItems == nil {
		p.SubItems = []BookItem{}
	}
	if p.ParentNames == nil {
		p.ParentNames = []string{}
	}
	return json.Marshal(p)
}

// ItemKind discriminates the variants of BookItem.
type ItemKind int

const (
	// KindChapter is an item holding a Chapter.
	KindChapter ItemKind = iota
	// KindSeparator is a horizontal rule between chapters.
	KindSeparator
	// KindPartTitle is a heading that groups the following chapters.
	KindPartTitle
)

// BookItem is one entry of the book outline.
type BookItem struct {
	Kind      ItemKind
	Chapter   *Chapter
	PartTitle string
}

// ChapterItem wraps ch in a BookItem.
func ChapterItem(ch *Chapter) BookItem {
	return BookItem{Kind: KindChapter, Chapter: ch}
}

// SeparatorItem returns a separator BookItem.
func SeparatorItem() BookItem {
	return BookItem{Kind: KindSeparator}
}

// PartTitleItem returns a part title BookItem.
func PartTitleItem(title string) BookItem {
	return BookItem{Kind: KindPartTitle, PartTitle: title}
}

// MarshalJSON encodes the item using mdBook's externally tagged layout.
func (it BookItem) MarshalJSON() ([]byte, error) {
	switch it.Kind {
	case KindChapter:
		if it.Chapter == nil {
			return nil, errors.New("book: chapter item without chapter")
		}
		return json.Marshal(map[string]*Chapter{"Chapter": it.Chapter})
	case KindSeparator:
		return []byte(`"Separator"`), nil
	case KindPartTitle:
		return json.Marshal(map[string]string{"PartTitle": it.PartTitle})
	default:
		return nil, errors.Errorf("book: unknown item kind %d", it.Kind)
	}
}

// UnmarshalJSON decodes an externally tagged mdBook item.
func (it *BookItem) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var tag string
		if err := json.Unmarshal(data, &tag); err != nil {
			return errors.Wrap(err, "book: decode item tag")
		}
		if tag != "Separator" {
			return errors.Errorf("book: unknown item %q", tag)
		}
		*it = SeparatorItem()
		return nil
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return errors.Wrap(err, "book: decode item")
	}
	if v, ok := raw["Chapter"]; ok {
		ch := new(Chapter)
		if err := json.Unmarshal(v, ch); err != nil {
			return errors.Wrap(err, "book: decode chapter")
		}
		*it = ChapterItem(ch)
		return nil
	}
	if v, ok := raw["PartTitle"]; ok {
		var title string
		if err := json.Unmarshal(v, &title); err != nil {
			return errors.Wrap(err, "book: decode part title")
		}
		*it = PartTitleItem(title)
		return nil
	}
	return errors.Errorf("book: unknown item %s", string(data))
}

// Book is the outline of an mdBook: its top-level items in reading order.
type Book struct {
	Sections []BookItem
}

type bookJSON struct {
	Sections      []BookItem      `json:"sections,omitempty"`
	Items         []BookItem      `json:"items,omitempty"`
	NonExhaustive json.RawMessage `json:"__non_exhaustive,omitempty"`
}

// MarshalJSON writes the book in the layout mdBook 0.4 expects.
func (b Book) MarshalJSON() ([]byte, error) {
	sections := b.Sections
	if sections == nil {
		sections = []BookItem{}
	}
	return json.Marshal(struct {
		Sections      []BookItem `json:"sections"`
		NonExhaustive *struct{}  `json:"__non_exhaustive"`
	}{Sections: sections})
}

// UnmarshalJSON accepts both the "sections" key of mdBook 0.4 and the
// "items" key of later releases.
func (b *Book) UnmarshalJSON(data []byte) error {
	var raw bookJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return errors.Wrap(err, "book: decode book")
	}
	b.Sections = raw.Sections
	if len(b.Sections) == 0 {
		b.Sections = raw.Items
	}
	return nil
}

// Iter yields every item of the book depth-first, parents before their
// sub-items.
func (b *Book) Iter() iter.Seq[*BookItem] {
	return func(yield func(*BookItem) bool) {
		walkItems(b.Sections, yield)
	}
}

func walkItems(items []BookItem, yield func(*BookItem) bool) bool {
	for i := range items {
		if !yield(&items[i]) {
			return false
		}
		if items[i].Kind == KindChapter && items[i].Chapter != nil {
			if !walkItems(items[i].Chapter.SubItems, yield) {
				return false
			}
		}
	}
	return true
}

// Chapters returns every chapter of the book depth-first, drafts included.
func (b *Book) Chapters() []*Chapter {
	var out []*Chapter
	for it := range b.Iter() {
		if it.Kind == KindChapter && it.Chapter != nil {
			out = append(out, it.Chapter)
		}
	}
	return out
}
