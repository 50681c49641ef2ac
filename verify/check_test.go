package verify

import (
	"bytes"
	"strings"
	"testing"

	"github.com/klauspost/compress/zip"
)

func checkEntries(t *testing.T, entries []entry) *Report {
	t.Helper()
	data := buildArchive(t, entries)
	report, err := CheckReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("CheckReader: %v", err)
	}
	return report
}

func TestCheck_Valid(t *testing.T) {
	report, err := Check(writeArchive(t, validEntries()))
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if !report.OK() {
		t.Errorf("Check() errors = %v; want none", report.Errors())
	}
}

func TestCheck_NotZip(t *testing.T) {
	if _, err := CheckReader(strings.NewReader("plain text"), 10); err == nil {
		t.Error("CheckReader on non-zip data succeeded")
	}
}

func TestCheck_Problems(t *testing.T) {
	const opf = "OEBPS/content.opf"
	valid := validEntries()

	tests := []struct {
		name    string
		entries []entry
		want    string
	}{
		{
			name:    "mimetype not first",
			entries: append(valid[1:len(valid):len(valid)], valid[0]),
			want:    "mimetype must be the first entry",
		},
		{
			name:    "mimetype compressed",
			entries: append([]entry{deflated("mimetype", "application/epub+zip")}, valid[1:]...),
			want:    "stored uncompressed",
		},
		{
			name:    "wrong mimetype",
			entries: append([]entry{stored("mimetype", "application/zip")}, valid[1:]...),
			want:    `content is "application/zip"`,
		},
		{
			name:    "missing container",
			entries: without(valid, "META-INF/container.xml"),
			want:    "missing META-INF/container.xml",
		},
		{
			name:    "missing title",
			entries: replaced(valid, opf, "<dc:title>Test Book</dc:title>", ""),
			want:    "missing dc:title",
		},
		{
			name:    "missing language",
			entries: replaced(valid, opf, "<dc:language>en</dc:language>", ""),
			want:    "missing dc:language",
		},
		{
			name:    "unique identifier mismatch",
			entries: replaced(valid, opf, `unique-identifier="bookid"`, `unique-identifier="other"`),
			want:    `unique-identifier "other" does not match`,
		},
		{
			name:    "missing modified",
			entries: replaced(valid, opf, `<meta property="dcterms:modified">2024-05-17T10:30:00Z</meta>`, ""),
			want:    "missing dcterms:modified",
		},
		{
			name:    "manifest file missing",
			entries: without(valid, "OEBPS/text/ch2.xhtml"),
			want:    "references missing file OEBPS/text/ch2.xhtml",
		},
		{
			name:    "manifest href case mismatch",
			entries: replaced(valid, opf, `href="text/ch2.xhtml"`, `href="text/CH2.xhtml"`),
			want:    "references missing file OEBPS/text/CH2.xhtml",
		},
		{
			name:    "duplicate manifest id",
			entries: replaced(valid, opf, `id="ch2"`, `id="ch1"`),
			want:    "duplicate ids",
		},
		{
			name:    "unknown spine idref",
			entries: replaced(valid, opf, `idref="ch2"`, `idref="nope"`),
			want:    `spine itemref "nope" does not match`,
		},
		{
			name:    "unknown ncx",
			entries: replaced(valid, opf, `<spine toc="ncx">`, `<spine toc="toc">`),
			want:    `spine toc "toc" does not match`,
		},
		{
			name:    "no nav",
			entries: replaced(valid, opf, ` properties="nav"`, ""),
			want:    "no manifest item has the nav property",
		},
		{
			name:    "toc entry to missing file",
			entries: replaced(valid, "OEBPS/nav.xhtml", `href="text/ch2.xhtml"`, `href="text/ch3.xhtml"`),
			want:    "points to missing OEBPS/text/ch3.xhtml",
		},
		{
			name:    "malformed xhtml",
			entries: replaced(valid, "OEBPS/text/ch2.xhtml", "<p>Text &amp; more.</p>", "<p>Text & more.<br></p>"),
			want:    "OEBPS/text/ch2.xhtml: not well-formed",
		},
		{
			name:    "cover is not an image",
			entries: replaced(valid, opf, `media-type="image/svg+xml"`, `media-type="text/plain"`),
			want:    "cover-image has media type text/plain",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := checkEntries(t, tt.entries)
			var found bool
			for _, p := range report.Errors() {
				if strings.Contains(p.String(), tt.want) {
					found = true
					break
				}
			}
			if !found {
				t.Errorf("errors = %v; want one containing %q", report.Errors(), tt.want)
			}
		})
	}
}

func TestCheck_MimetypeExtraField(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	fw, err := zw.CreateHeader(&zip.FileHeader{Name: "mimetype", Method: zip.Store, Extra: []byte{0xfe, 0xca, 0, 0}})
	if err != nil {
		t.Fatalf("create mimetype: %v", err)
	}
	fw.Write([]byte("application/epub+zip"))
	for _, e := range validEntries()[1:] {
		fw, err := zw.CreateHeader(&zip.FileHeader{Name: e.name, Method: e.method})
		if err != nil {
			t.Fatalf("create %s: %v", e.name, err)
		}
		fw.Write([]byte(e.body))
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	report, err := CheckReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("CheckReader: %v", err)
	}
	if report.OK() || !strings.Contains(report.Errors()[0].Message, "extra field") {
		t.Errorf("errors = %v; want the mimetype extra field reported", report.Errors())
	}
}

func TestCheck_UndeclaredFileWarns(t *testing.T) {
	entries := append(validEntries(), deflated("OEBPS/notes.txt", "scratch"))
	report := checkEntries(t, entries)

	if !report.OK() {
		t.Fatalf("errors = %v; want none", report.Errors())
	}
	warnings := report.Warnings()
	if len(warnings) != 1 || warnings[0].Path != "OEBPS/notes.txt" {
		t.Errorf("Warnings() = %v; want one for OEBPS/notes.txt", warnings)
	}
}

func TestProblem_String(t *testing.T) {
	tests := []struct {
		p    Problem
		want string
	}{
		{Problem{SeverityError, "OEBPS/a.xhtml", "bad"}, "ERROR OEBPS/a.xhtml: bad"},
		{Problem{SeverityWarning, "", "odd"}, "WARNING: odd"},
	}
	for _, tt := range tests {
		if got := tt.p.String(); got != tt.want {
			t.Errorf("String() = %q; want %q", got, tt.want)
		}
	}
}
