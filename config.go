package epub

import (
	_ "embed"
	"os"
	"path/filepath"
	"text/template"

	"github.com/Laisky/errors/v2"
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/simp-lee/mdbook-epub/book"
	"github.com/simp-lee/mdbook-epub/builder"
)

// ConfigKey is where the backend's options live in book.toml.
const ConfigKey = "output.epub"

//go:embed assets/index.xhtml
var defaultTemplate string

//go:embed assets/master.css
var defaultCSS []byte

// DefaultCSS returns the stylesheet included when use-default-css is set.
func DefaultCSS() []byte {
	return append([]byte(nil), defaultCSS...)
}

// Config holds the [output.epub] table of book.toml.
type Config struct {
	// AdditionalCSS lists stylesheets appended to the default one.
	AdditionalCSS []string `json:"additional-css"`

	// UseDefaultCSS includes the built-in stylesheet. Defaults to true.
	UseDefaultCSS bool `json:"use-default-css"`

	// IndexTemplate is a text/template file, relative to the book root,
	// used for every chapter instead of the built-in one.
	IndexTemplate string `json:"index-template,omitempty"`

	// CoverImage is the path of the cover, relative to the source
	// directory.
	CoverImage string `json:"cover-image,omitempty"`

	// AdditionalResources are files packed into the book that no chapter
	// references directly, e.g. fonts used by additional-css.
	AdditionalResources []string `json:"additional-resources"`

	// NoSectionLabel drops section numbers from table of contents titles.
	NoSectionLabel bool `json:"no-section-label"`

	// CurlyQuotes converts straight quotes to typographic ones.
	CurlyQuotes bool `json:"curly-quotes"`

	// EpubVersion is 2 or 3. Nil means EPUB 2.
	EpubVersion *int `json:"epub-version,omitempty"`

	// FootnoteBackrefs renders EPUB 3 footnotes with links back to their
	// references.
	FootnoteBackrefs bool `json:"footnote-backrefs"`
}

// DefaultConfig returns the options used when book.toml has no
// [output.epub] table.
func DefaultConfig() *Config {
	return &Config{
		AdditionalCSS:       []string{},
		UseDefaultCSS:       true,
		AdditionalResources: []string{},
	}
}

// ConfigFromRenderContext reads the [output.epub] table of the book being
// rendered, falling back to [DefaultConfig].
func ConfigFromRenderContext(rc *book.RenderContext) (*Config, error) {
	cfg := DefaultConfig()
	if rc == nil || rc.Config == nil {
		return cfg, nil
	}
	if _, err := rc.Config.Decode(ConfigKey, cfg); err != nil {
		return nil, errors.Wrapf(err, "epub: read [%s]", ConfigKey)
	}
	return cfg, nil
}

// Validate checks the options. An unknown epub-version yields an
// [*UnsupportedVersionError].
func (c *Config) Validate() error {
	if c.EpubVersion != nil && *c.EpubVersion != 2 && *c.EpubVersion != 3 {
		return &UnsupportedVersionError{Version: *c.EpubVersion}
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.AdditionalCSS, validation.Each(validation.Required)),
		validation.Field(&c.AdditionalResources, validation.Each(validation.Required)),
		validation.Field(&c.CoverImage, validation.By(notDirPath)),
		validation.Field(&c.IndexTemplate, validation.By(notDirPath)),
	); err != nil {
		return errors.Wrapf(err, "epub: invalid [%s]", ConfigKey)
	}
	return nil
}

func notDirPath(value any) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	if last := s[len(s)-1]; last == '/' || last == '\\' {
		return validation.NewError("validation_is_dir", "must name a file, not a directory")
	}
	return nil
}

// Version returns the EPUB version to produce.
func (c *Config) Version() builder.Version {
	if c.EpubVersion != nil && *c.EpubVersion == 3 {
		return builder.V3
	}
	return builder.V2
}

// IsEpub3 reports whether EPUB 3 output was requested.
func (c *Config) IsEpub3() bool {
	return c.Version() == builder.V3
}

// Template returns the chapter template: IndexTemplate resolved against
// root when set, the built-in one otherwise. Templates use text/template
// syntax and receive a [TemplateData].
func (c *Config) Template(root string) (*template.Template, error) {
	text := defaultTemplate
	name := "index.xhtml"
	if c.IndexTemplate != "" {
		p := c.IndexTemplate
		if !filepath.IsAbs(p) {
			p = filepath.Join(root, p)
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, errors.Wrapf(ErrOpenTemplate, "%s: %v", p, err)
		}
		text = string(data)
		name = filepath.Base(p)
	}

	tmpl, err := template.New(name).Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, errors.Wrapf(ErrTemplateParse, "%s: %v", name, err)
	}
	return tmpl, nil
}

// TemplateData is passed to the chapter template.
type TemplateData struct {
	// EpubVersion3 is set when producing EPUB 3.
	EpubVersion3 bool

	// Title is the chapter name.
	Title string

	// Body is the rendered chapter XHTML. It must not be escaped.
	Body string

	// Stylesheet is the relative path from the chapter to stylesheet.css.
	Stylesheet string
}
