package verify

import (
	"encoding/xml"
	"strings"

	"github.com/Laisky/errors/v2"
	"github.com/klauspost/compress/zip"
)

const (
	containerPath    = "META-INF/container.xml"
	packageMediaType = "application/oebps-package+xml"
)

type containerXML struct {
	XMLName   xml.Name   `xml:"container"`
	RootFiles []rootFile `xml:"rootfiles>rootfile"`
}

type rootFile struct {
	FullPath  string `xml:"full-path,attr"`
	MediaType string `xml:"media-type,attr"`
}

// parseContainer returns the path of the package document named by
// META-INF/container.xml. The rootfile with the package media type wins,
// otherwise the first one with a path is used.
func parseContainer(zr *zip.Reader) (string, error) {
	f := findFileInsensitive(zr, containerPath)
	if f == nil {
		return "", errors.Wrapf(ErrInvalidEPub, "missing %s", containerPath)
	}
	data, err := readZipFile(f)
	if err != nil {
		return "", errors.Wrap(err, "verify: read container.xml")
	}

	var c containerXML
	if err := xml.Unmarshal(stripBOM(data), &c); err != nil {
		return "", errors.Wrap(err, "verify: parse container.xml")
	}
	if len(c.RootFiles) == 0 {
		return "", errors.Wrap(ErrInvalidEPub, "container.xml has no rootfile entries")
	}

	var fallback string
	for _, rf := range c.RootFiles {
		fullPath := strings.TrimSpace(rf.FullPath)
		if fullPath == "" {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(rf.MediaType), packageMediaType) {
			return fullPath, nil
		}
		if fallback == "" {
			fallback = fullPath
		}
	}
	if fallback == "" {
		return "", errors.Wrap(ErrInvalidEPub, "container.xml rootfile has empty full-path")
	}
	return fallback, nil
}
