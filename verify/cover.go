package verify

import "strings"

// Cover returns the cover image declared by the package. It looks for,
// in order:
//  1. an EPUB 3 manifest item with the "cover-image" property
//  2. an EPUB 2 <meta name="cover"> naming an image item
//  3. a guide reference of type "cover" pointing at an image
//
// Returns ErrNoCover when none is present.
func (b *Book) Cover() (CoverImage, error) {
	item := b.coverFromProperties()
	if item == nil {
		item = b.coverFromMeta()
	}
	if item == nil {
		item = b.coverFromGuide()
	}
	if item == nil {
		return CoverImage{}, ErrNoCover
	}

	data, err := b.ReadFile(item.Path)
	if err != nil {
		return CoverImage{}, err
	}
	return CoverImage{Path: item.Path, MediaType: item.MediaType, Data: data}, nil
}

func (b *Book) coverFromProperties() *Item {
	for i := range b.manifest {
		if b.manifest[i].HasProperty("cover-image") {
			return &b.manifest[i]
		}
	}
	return nil
}

func (b *Book) coverFromMeta() *Item {
	for _, m := range b.opf.Metadata.Metas {
		if !strings.EqualFold(m.Name, "cover") || m.Content == "" {
			continue
		}
		if i, ok := b.manifestByID[m.Content]; ok && isImageMediaType(b.manifest[i].MediaType) {
			return &b.manifest[i]
		}
	}
	return nil
}

func (b *Book) coverFromGuide() *Item {
	for _, ref := range b.opf.Guide.References {
		if !strings.EqualFold(ref.Type, "cover") {
			continue
		}
		p := resolveRelativePath(b.opfPath, stripFragment(ref.Href))
		for i := range b.manifest {
			if b.manifest[i].Path == p && isImageMediaType(b.manifest[i].MediaType) {
				return &b.manifest[i]
			}
		}
	}
	return nil
}

func isImageMediaType(mediaType string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(mediaType)), "image/")
}
