package resource

import (
	"context"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Laisky/errors/v2"
	"github.com/Laisky/zap"
	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/sync/errgroup"
)

// maxRemoteSize caps the body of a downloaded asset.
const maxRemoteSize = 64 << 20

// Retriever makes assets available as bytes.
type Retriever interface {
	// Retrieve fetches the body behind rawURL.
	Retrieve(ctx context.Context, rawURL string) (RetrievedContent, error)

	// Download fetches a remote asset into its LocationOnDisk, possibly
	// completing its Filename and MediaType. Local assets are left alone.
	Download(ctx context.Context, a *Asset) error

	// Read returns the content of an asset from disk.
	Read(a *Asset) ([]byte, error)
}

// RetrievedContent is a fetched remote body with its sniffed type.
type RetrievedContent struct {
	Data      []byte
	MediaType string
	Extension string
}

var _ Retriever = (*HTTPRetriever)(nil)

// HTTPRetriever downloads remote assets with an http.Client and caches them
// on disk. A cached file is reused without contacting the server.
type HTTPRetriever struct {
	client    *http.Client
	log       *zap.Logger
	userAgent string
}

// NewHTTPRetriever returns a retriever using client, or a client with a
// 30 second timeout when client is nil.
func NewHTTPRetriever(client *http.Client, log *zap.Logger) *HTTPRetriever {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &HTTPRetriever{client: client, log: log, userAgent: "mdbook-epub"}
}

// Retrieve performs a GET request for rawURL.
func (r *HTTPRetriever) Retrieve(ctx context.Context, rawURL string) (RetrievedContent, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return RetrievedContent{}, errors.Wrapf(ErrRemoteFetch, "%s: %v", rawURL, err)
	}
	req.Header.Set("User-Agent", r.userAgent)

	resp, err := r.client.Do(req)
	if err != nil {
		return RetrievedContent{}, errors.Wrapf(ErrRemoteFetch, "%s: %v", rawURL, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return RetrievedContent{}, errors.Wrapf(ErrAssetFileNotFound, "missing remote resource %s", rawURL)
	case resp.StatusCode != http.StatusOK:
		return RetrievedContent{}, errors.Wrapf(ErrRemoteFetch, "%s: status %d", rawURL, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxRemoteSize))
	if err != nil {
		return RetrievedContent{}, errors.Wrapf(ErrRemoteFetch, "%s: read body: %v", rawURL, err)
	}

	m := mimetype.Detect(data)
	mediaType, _, _ := strings.Cut(m.String(), ";")
	ext := m.Extension()
	if generic(mediaType) {
		if ct, _, err := mime.ParseMediaType(resp.Header.Get("Content-Type")); err == nil && ct != "" {
			mediaType = ct
			if exts, _ := mime.ExtensionsByType(ct); len(exts) > 0 {
				ext = exts[0]
			}
		}
	}
	return RetrievedContent{Data: data, MediaType: mediaType, Extension: ext}, nil
}

// generic reports whether sniffing found nothing more specific than text
// or arbitrary bytes.
func generic(mediaType string) bool {
	return mediaType == "application/octet-stream" || mediaType == "text/plain"
}

// Download implements Retriever. A remote asset whose URL had no
// extension gets the sniffed one appended to its Filename.
func (r *HTTPRetriever) Download(ctx context.Context, a *Asset) error {
	if a.Kind != Remote {
		return nil
	}

	if info, err := os.Stat(a.LocationOnDisk); err == nil && info.Mode().IsRegular() {
		r.log.Debug("remote asset cached",
			zap.String("url", a.URL.String()),
			zap.String("path", a.LocationOnDisk))
		if a.MediaType == "" {
			if m, err := mimetype.DetectFile(a.LocationOnDisk); err == nil {
				a.MediaType, _, _ = strings.Cut(m.String(), ";")
			}
		}
		return nil
	}

	content, err := r.Retrieve(ctx, a.URL.String())
	if err != nil {
		return err
	}

	if filepath.Ext(a.Filename) == "" && content.Extension != "" {
		a.Filename += content.Extension
		a.LocationOnDisk += content.Extension
	}
	if a.MediaType == "" {
		a.MediaType = content.MediaType
	}

	if err := os.MkdirAll(filepath.Dir(a.LocationOnDisk), 0o755); err != nil {
		return errors.Wrapf(ErrAssetOpen, "%s: %v", a.LocationOnDisk, err)
	}
	if err := os.WriteFile(a.LocationOnDisk, content.Data, 0o644); err != nil {
		return errors.Wrapf(ErrAssetOpen, "%s: %v", a.LocationOnDisk, err)
	}
	r.log.Debug("downloaded remote asset",
		zap.String("url", a.URL.String()),
		zap.String("path", a.LocationOnDisk),
		zap.Int("bytes", len(content.Data)))
	return nil
}

// Read implements Retriever.
func (r *HTTPRetriever) Read(a *Asset) ([]byte, error) {
	return ReadFile(a)
}

// ReadFile returns the asset content from its LocationOnDisk.
func ReadFile(a *Asset) ([]byte, error) {
	data, err := os.ReadFile(a.LocationOnDisk)
	if err != nil {
		return nil, errors.Wrapf(ErrAssetOpen, "%s: %v", a.LocationOnDisk, err)
	}
	return data, nil
}

// DownloadAll downloads every remote asset with at most limit concurrent
// requests. The first failure cancels the remaining downloads.
func DownloadAll(ctx context.Context, r Retriever, assets []*Asset, limit int) error {
	if limit <= 0 {
		limit = 4
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for _, a := range assets {
		if a.Kind != Remote {
			continue
		}
		g.Go(func() error {
			return r.Download(ctx, a)
		})
	}
	return g.Wait()
}
