package posterior

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/richard-senior/knockouts/internal/logger"
	"github.com/richard-senior/knockouts/pkg/transport"
)

// Source yields the samples of a fitted model. The fitting itself happens
// elsewhere; a Source only knows where its output lives.
type Source interface {
	// Name identifies the source, e.g. for use as a cache key
	Name() string
	Load(ctx context.Context) (*Samples, error)
}

// Versioned is implemented by sources that can report, without loading,
// whether their output has changed. Two equal versions mean the same
// document; an empty version means the source cannot tell.
type Versioned interface {
	Version(ctx context.Context) (string, error)
}

// FileSource reads a JSON posterior document from disk
type FileSource struct {
	Path string
}

func (f *FileSource) Name() string {
	return "file:" + f.Path
}

// Version is the file's modification time and size
func (f *FileSource) Version(ctx context.Context) (string, error) {
	info, err := os.Stat(f.Path)
	if err != nil {
		return "", fmt.Errorf("failed to stat posterior file: %w", err)
	}
	return fmt.Sprintf("%d-%d", info.ModTime().UnixNano(), info.Size()), nil
}

func (f *FileSource) Load(ctx context.Context) (*Samples, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	file, err := os.Open(f.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open posterior file: %w", err)
	}
	defer file.Close()

	samples, err := Decode(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.Path, err)
	}
	logger.Info("Loaded posterior samples from", f.Path, len(samples.Attack))
	return samples, nil
}

// HTTPSource fetches a JSON posterior document over HTTP(S).
// Compressed responses (gzip, deflate, br) are decoded.
type HTTPSource struct {
	URL string
}

func (h *HTTPSource) Name() string {
	return "http:" + h.URL
}

// Version is the ETag, or failing that the Last-Modified header, of the
// document. Servers sending neither give an empty version.
func (h *HTTPSource) Version(ctx context.Context) (string, error) {
	header, err := transport.Head(ctx, transport.GetCustomHTTPClient(), h.URL)
	if err != nil {
		return "", err
	}
	if etag := header.Get("ETag"); etag != "" {
		return etag, nil
	}
	return header.Get("Last-Modified"), nil
}

func (h *HTTPSource) Load(ctx context.Context) (*Samples, error) {
	data, err := transport.GetJSON(ctx, h.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch posterior samples: %w", err)
	}
	samples, err := Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", h.URL, err)
	}
	logger.Info("Fetched posterior samples from", h.URL, len(samples.Attack))
	return samples, nil
}

var (
	_ Versioned = (*FileSource)(nil)
	_ Versioned = (*HTTPSource)(nil)
)

// NewSource picks an HTTPSource for http(s) URLs and a FileSource otherwise
func NewSource(location string) Source {
	if transport.IsHTTPURL(location) {
		return &HTTPSource{URL: location}
	}
	return &FileSource{Path: location}
}
