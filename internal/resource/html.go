package resource

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ImageSources returns the src of every <img> and the href of every SVG
// <image> found in an HTML fragment, in document order.
func ImageSources(fragment []byte) []string {
	tokenizer := html.NewTokenizer(bytes.NewReader(fragment))

	var srcs []string
	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			return srcs

		case html.StartTagToken, html.SelfClosingTagToken:
			tn, hasAttr := tokenizer.TagName()
			if !hasAttr {
				continue
			}
			a := atom.Lookup(tn)
			if a != atom.Img && a != atom.Image {
				continue
			}
			for {
				key, val, more := tokenizer.TagAttr()
				if isImageAttr(a, string(key)) {
					if v := strings.TrimSpace(string(val)); v != "" {
						srcs = append(srcs, v)
					}
				}
				if !more {
					break
				}
			}
		}
	}
}

// isImageAttr reports whether key carries the image location for tag a.
// SVG <image> uses href or xlink:href.
func isImageAttr(a atom.Atom, key string) bool {
	if a == atom.Img {
		return key == "src"
	}
	return key == "href" || key == "xlink:href"
}
