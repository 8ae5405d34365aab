package openapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
)

// ErrHTTPDisabled is returned when loading a url without http support.
var ErrHTTPDisabled = errors.New("openapi: http sources are disabled")

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithFileSystem resolves SourceKindFS sources in files.
func WithFileSystem(files fs.FS) LoaderOption {
	return func(l *Loader) { l.fs = files }
}

// WithHTTPClient enables url sources through client.
func WithHTTPClient(client *http.Client) LoaderOption {
	return func(l *Loader) { l.http = client }
}

// WithHTTPTimeout enables url sources through a default client bounded by
// timeout.
func WithHTTPTimeout(timeout time.Duration) LoaderOption {
	return func(l *Loader) { l.http = &http.Client{Timeout: timeout} }
}

// Loader fetches and validates OpenAPI documents. Url sources are refused
// unless an http client is configured.
type Loader struct {
	fs   fs.FS
	http *http.Client
}

// NewLoader returns a loader reading files from disk.
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{}
	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}
	return l
}

// Load reads and validates the document of src. JSON and YAML are both
// accepted.
func (l *Loader) Load(ctx context.Context, src Source) (*openapi3.T, error) {
	if src == nil {
		return nil, errors.New("openapi: nil source")
	}
	raw, err := l.read(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("openapi: %s %s: %w", src.Kind(), src.Location(), err)
	}
	return Parse(ctx, raw)
}

// Parse loads and validates an in-memory document.
func Parse(ctx context.Context, raw []byte) (*openapi3.T, error) {
	loader := &openapi3.Loader{Context: ctx}
	doc, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("openapi: load document: %w", err)
	}
	if err := doc.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
		return nil, fmt.Errorf("openapi: validate: %w", err)
	}
	return doc, nil
}

func (l *Loader) read(ctx context.Context, src Source) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	switch src.Kind() {
	case SourceKindFile:
		return os.ReadFile(src.Location())
	case SourceKindFS:
		if l.fs == nil {
			return nil, errors.New("no file system configured")
		}
		return fs.ReadFile(l.fs, src.Location())
	case SourceKindURL:
		if l.http == nil {
			return nil, ErrHTTPDisabled
		}
		return l.fetch(ctx, src.Location())
	}
	return nil, fmt.Errorf("unsupported source kind %v", src.Kind())
}

func (l *Loader) fetch(ctx context.Context, location string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, err
	}
	resp, err := l.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	return io.ReadAll(resp.Body)
}
