// Package verify reads EPUB archives back and checks their structure.
//
// It is used to confirm that a generated book is well-formed before it is
// handed to a reader application:
//
//	report, err := verify.Check("book/epub/My Book.epub")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, p := range report.Problems {
//	    fmt.Println(p)
//	}
//
// [Check] covers the container rules a broken build would violate: the
// mimetype entry, the package document, manifest and spine references,
// navigation documents and well-formed XHTML. For a full conformance check
// [Epubcheck] runs the external epubcheck tool when it is installed.
//
// [Open] and [NewReader] expose the parsed archive for inspection through
// [Book].
package verify
