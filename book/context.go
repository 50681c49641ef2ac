package book

import (
	"encoding/json"
	"io"

	"github.com/Laisky/errors/v2"
)

// ErrRenderContext is returned when the context piped in by mdBook cannot
// be decoded.
var ErrRenderContext = errors.New("book: unable to parse RenderContext")

// RenderContext is everything a backend needs to render a book. mdBook
// serialises it as JSON onto the backend's stdin.
type RenderContext struct {
	// Version is the version of mdBook that produced the context.
	Version string `json:"version"`

	// Root is the book's root directory, where book.toml lives.
	Root string `json:"root"`

	// Book is the preprocessed book outline.
	Book Book `json:"book"`

	// Config is the loaded book.toml.
	Config *Config `json:"config"`

	// Destination is the directory the backend writes into.
	Destination string `json:"destination"`
}

// NewRenderContext builds a context for rendering b into destination.
func NewRenderContext(root string, b Book, cfg *Config, destination string) *RenderContext {
	if cfg == nil {
		cfg = NewConfig()
	}
	return &RenderContext{
		Version:     MdbookVersion,
		Root:        root,
		Book:        b,
		Config:      cfg,
		Destination: destination,
	}
}

// ParseRenderContext decodes a RenderContext from r.
func ParseRenderContext(r io.Reader) (*RenderContext, error) {
	var rc RenderContext
	if err := json.NewDecoder(r).Decode(&rc); err != nil {
		return nil, errors.Wrapf(ErrRenderContext, "%v", err)
	}
	if rc.Config == nil {
		rc.Config = NewConfig()
	}
	return &rc, nil
}

// SourceDir is the absolute chapter source directory.
func (rc *RenderContext) SourceDir() string {
	return joinRoot(rc.Root, rc.Config.Book.Src)
}
