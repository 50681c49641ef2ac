package builder

import "encoding/xml"

const (
	containerPath      = "META-INF/container.xml"
	containerNamespace = "urn:oasis:names:tc:opendocument:xmlns:container"
	packageMediaType   = "application/oebps-package+xml"

	// contentDir holds the package document and everything it lists.
	contentDir = "OEBPS"
	opfPath    = contentDir + "/content.opf"
)

// containerXML models META-INF/container.xml, which points reading
// systems at the package document.
type containerXML struct {
	XMLName   xml.Name   `xml:"container"`
	Version   string     `xml:"version,attr"`
	Xmlns     string     `xml:"xmlns,attr"`
	RootFiles []rootFile `xml:"rootfiles>rootfile"`
}

// rootFile is a single <rootfile> element inside container.xml.
type rootFile struct {
	FullPath  string `xml:"full-path,attr"`
	MediaType string `xml:"media-type,attr"`
}

func buildContainer() containerXML {
	return containerXML{
		Version: "1.0",
		Xmlns:   containerNamespace,
		RootFiles: []rootFile{
			{FullPath: opfPath, MediaType: packageMediaType},
		},
	}
}
