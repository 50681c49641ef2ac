package epub

import (
	"bytes"
	"context"
	"os"

	"github.com/Laisky/errors/v2"
	"github.com/Laisky/zap"

	"github.com/simp-lee/mdbook-epub/book"
)

// Generate renders the book in rc to {destination}/{title}.epub and
// returns the path of the file written.
//
// The archive is built in memory first, so a failed build leaves no
// partial file behind.
func Generate(ctx context.Context, rc *book.RenderContext, opts ...Option) (string, error) {
	if err := CheckVersion(rc.Version); err != nil {
		return "", err
	}

	g, err := New(rc, opts...)
	if err != nil {
		return "", err
	}

	filename, err := OutputFilename(rc.Destination, rc.Config)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(rc.Destination, 0o755); err != nil {
		return "", errors.Wrapf(err, "epub: create destination %s", rc.Destination)
	}

	var buf bytes.Buffer
	if err := g.Render(ctx, &buf); err != nil {
		return "", err
	}
	if err := os.WriteFile(filename, buf.Bytes(), 0o644); err != nil {
		return "", errors.Wrapf(err, "epub: write %s", filename)
	}

	g.log.Info("book written", zap.String("path", filename), zap.Int("bytes", buf.Len()))
	return filename, nil
}
