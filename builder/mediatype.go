package builder

import (
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// coreMediaTypes maps file extensions to the EPUB core media types and a
// few common foreign resources. Extension lookup wins over sniffing so
// that, e.g., CSS is never reported as text/plain.
var coreMediaTypes = map[string]string{
	".css":   "text/css",
	".gif":   "image/gif",
	".htm":   "application/xhtml+xml",
	".html":  "application/xhtml+xml",
	".jpeg":  "image/jpeg",
	".jpg":   "image/jpeg",
	".js":    "application/javascript",
	".m4a":   "audio/mp4",
	".mp3":   "audio/mpeg",
	".mp4":   "video/mp4",
	".ncx":   "application/x-dtbncx+xml",
	".otf":   "font/otf",
	".png":   "image/png",
	".smil":  "application/smil+xml",
	".svg":   "image/svg+xml",
	".ttf":   "font/ttf",
	".webp":  "image/webp",
	".woff":  "font/woff",
	".woff2": "font/woff2",
	".xhtml": "application/xhtml+xml",
}

// MediaTypeByExtension returns the media type registered for the
// extension of name, or "" when unknown.
func MediaTypeByExtension(name string) string {
	return coreMediaTypes[strings.ToLower(path.Ext(name))]
}

// MediaType determines the media type of a resource, first by extension
// and then by sniffing data. Parameters such as charset are dropped.
func MediaType(name string, data []byte) string {
	if mt := MediaTypeByExtension(name); mt != "" {
		return mt
	}
	mt, _, _ := strings.Cut(mimetype.Detect(data).String(), ";")
	return strings.TrimSpace(mt)
}
