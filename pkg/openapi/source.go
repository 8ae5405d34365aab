package openapi

import (
	"fmt"
	"net/url"
	"path/filepath"
)

// SourceKind tells the loader how to fetch a document.
type SourceKind int

const (
	SourceKindFile SourceKind = iota
	SourceKindFS
	SourceKindURL
)

func (k SourceKind) String() string {
	switch k {
	case SourceKindFile:
		return "file"
	case SourceKindFS:
		return "fs"
	case SourceKindURL:
		return "url"
	}
	return fmt.Sprintf("SourceKind(%d)", int(k))
}

// Source locates an OpenAPI document.
type Source interface {
	Location() string
	Kind() SourceKind
}

type source struct {
	location string
	kind     SourceKind
}

func (s source) Location() string { return s.location }
func (s source) Kind() SourceKind { return s.kind }

// SourceFromFile points to a file on disk.
func SourceFromFile(path string) Source {
	return source{location: filepath.Clean(path), kind: SourceKindFile}
}

// SourceFromFS points to a file of the loader file system.
func SourceFromFS(name string) Source {
	return source{location: name, kind: SourceKindFS}
}

// SourceFromURL points to an http(s) document.
func SourceFromURL(raw string) (Source, error) {
	u, err := url.ParseRequestURI(raw)
	if err != nil {
		return nil, fmt.Errorf("openapi: invalid url %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("openapi: unsupported scheme %q", u.Scheme)
	}
	return source{location: raw, kind: SourceKindURL}, nil
}
