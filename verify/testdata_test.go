package verify

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/zip"
)

// entry is one archive member; entries are written in slice order.
type entry struct {
	name   string
	body   string
	method uint16
}

func stored(name, body string) entry { return entry{name, body, zip.Store} }
func deflated(name, body string) entry { return entry{name, body, zip.Deflate} }

const testContainer = `<?xml version="1.0" encoding="UTF-8"?>
<container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <rootfiles>
    <rootfile full-path="OEBPS/content.opf" media-type="application/oebps-package+xml"/>
  </rootfiles>
</container>`

const testOPF = `<?xml version="1.0" encoding="UTF-8"?>
<package xmlns="http://www.idpf.org/2007/opf" version="3.0" unique-identifier="bookid">
  <metadata xmlns:dc="http://purl.org/dc/elements/1.1/" xmlns:opf="http://www.idpf.org/2007/opf">
    <dc:identifier id="bookid">urn:uuid:1234</dc:identifier>
    <dc:title>Test Book</dc:title>
    <dc:language>en</dc:language>
    <dc:creator id="c1">Ann</dc:creator>
    <dc:creator opf:role="edt">Bob</dc:creator>
    <dc:description>About &mdash; things</dc:description>
    <meta refines="#c1" property="role" scheme="marc:relators">aut</meta>
    <meta property="dcterms:modified">2024-05-17T10:30:00Z</meta>
    <meta name="generator" content="mdbook-epub"/>
  </metadata>
  <manifest>
    <item id="ncx" href="toc.ncx" media-type="application/x-dtbncx+xml"/>
    <item id="nav" href="nav.xhtml" media-type="application/xhtml+xml" properties="nav"/>
    <item id="ch1" href="text/ch1.xhtml" media-type="application/xhtml+xml"/>
    <item id="ch2" href="text/ch2.xhtml" media-type="application/xhtml+xml"/>
    <item id="cover" href="images/cover.svg" media-type="image/svg+xml" properties="cover-image"/>
  </manifest>
  <spine toc="ncx">
    <itemref idref="ch1"/>
    <itemref idref="ch2" linear="no"/>
  </spine>
  <guide>
    <reference type="text" title="One" href="text/ch1.xhtml"/>
  </guide>
</package>`

const testNCX = `<?xml version="1.0" encoding="UTF-8"?>
<ncx xmlns="http://www.daisy.org/z3986/2005/ncx/" version="2005-1">
  <head/>
  <docTitle><text>Test Book</text></docTitle>
  <navMap>
    <navPoint id="n1" playOrder="1">
      <navLabel><text>NCX One</text></navLabel>
      <content src="text/ch1.xhtml"/>
      <navPoint id="n2" playOrder="2">
        <navLabel><text>NCX One A</text></navLabel>
        <content src="text/ch1.xhtml#part"/>
      </navPoint>
    </navPoint>
    <navPoint id="n3" playOrder="3">
      <navLabel><text>NCX Two</text></navLabel>
      <content src="text/ch2.xhtml"/>
    </navPoint>
  </navMap>
</ncx>`

const testNav = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE html>
<html xmlns="http://www.w3.org/1999/xhtml" xmlns:epub="http://www.idpf.org/2007/ops">
<head><title>Contents</title></head>
<body>
<nav epub:type="toc" id="toc">
  <ol>
    <li><a href="text/ch1.xhtml">One</a>
      <ol><li><a href="text/ch1.xhtml#part">One A</a></li></ol>
    </li>
    <li><a href="text/ch2.xhtml">Two</a></li>
  </ol>
</nav>
<nav epub:type="landmarks">
  <ol><li><a epub:type="bodymatter" href="text/ch1.xhtml">Start</a></li></ol>
</nav>
</body>
</html>`

const testChapter = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE html>
<html xmlns="http://www.w3.org/1999/xhtml">
<head><title>%s</title></head>
<body><h1 id="part">%s</h1><p>Text &amp; more.</p></body>
</html>`

const testCover = `<svg xmlns="http://www.w3.org/2000/svg" width="10" height="10"><rect width="10" height="10"/></svg>`

func chapter(title string) string {
	return strings.ReplaceAll(testChapter, "%s", title)
}

// validEntries is a small EPUB 3 book without structural problems.
func validEntries() []entry {
	return []entry{
		stored("mimetype", "application/epub+zip"),
		deflated("META-INF/container.xml", testContainer),
		deflated("OEBPS/content.opf", testOPF),
		deflated("OEBPS/toc.ncx", testNCX),
		deflated("OEBPS/nav.xhtml", testNav),
		deflated("OEBPS/text/ch1.xhtml", chapter("One")),
		deflated("OEBPS/text/ch2.xhtml", chapter("Two")),
		deflated("OEBPS/images/cover.svg", testCover),
	}
}

// replaced returns a copy of entries with name's body passed through
// strings.Replace(from, to).
func replaced(entries []entry, name, from, to string) []entry {
	out := make([]entry, len(entries))
	for i, e := range entries {
		if e.name == name {
			e.body = strings.Replace(e.body, from, to, 1)
		}
		out[i] = e
	}
	return out
}

// without returns a copy of entries lacking name.
func without(entries []entry, name string) []entry {
	var out []entry
	for _, e := range entries {
		if e.name != name {
			out = append(out, e)
		}
	}
	return out
}

func buildArchive(t *testing.T, entries []entry) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range entries {
		fw, err := zw.CreateHeader(&zip.FileHeader{Name: e.name, Method: e.method})
		if err != nil {
			t.Fatalf("create %s: %v", e.name, err)
		}
		if _, err := io.WriteString(fw, e.body); err != nil {
			t.Fatalf("write %s: %v", e.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close archive: %v", err)
	}
	return buf.Bytes()
}

func writeArchive(t *testing.T, entries []entry) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "test.epub")
	if err := os.WriteFile(p, buildArchive(t, entries), 0o644); err != nil {
		t.Fatalf("write archive: %v", err)
	}
	return p
}

func openEntries(t *testing.T, entries []entry) *Book {
	t.Helper()
	data := buildArchive(t, entries)
	b, err := NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	return b
}
