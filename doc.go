// Package epub is an mdBook backend that renders a book as an EPUB 2 or
// EPUB 3 file.
//
// mdBook runs the backend once per build and pipes a [book.RenderContext]
// onto its standard input; [Generate] turns that context into
// {destination}/{title}.epub:
//
//	rc, err := book.ParseRenderContext(os.Stdin)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	path, err := epub.Generate(ctx, rc)
//
// # Configuration
//
// Options are read from the [output.epub] table of book.toml, see [Config]:
//
//	[output.epub]
//	epub-version = 3
//	cover-image = "cover.png"
//	additional-css = ["theme/epub.css"]
//	curly-quotes = true
//	footnote-backrefs = true
//
// # Chapters
//
// Every chapter is rendered from Markdown with tables, footnotes,
// strikethrough and task lists, then wrapped in an XHTML template. The
// built-in template can be replaced with index-template; it uses
// text/template syntax and receives a [TemplateData].
//
// # Images
//
// Images referenced from chapters, whether in Markdown or raw HTML, are
// packed into the book. Remote images are downloaded into the destination
// directory first and their links rewritten to the local copy.
package epub
