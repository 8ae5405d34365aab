package client

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// StaticKind classifies a static file.
type StaticKind string

const (
	StaticJS    StaticKind = "js"
	StaticCSS   StaticKind = "css"
	StaticImage StaticKind = "image"
	StaticFont  StaticKind = "font"
)

// StaticFile is one entry of the static table. Files registered from disk
// carry their Path; built-in files are read from FS.
type StaticFile struct {
	Name string
	Kind StaticKind
	Path string
	FS   fs.FS
}

// Open opens the file content.
func (f StaticFile) Open() (fs.File, error) {
	if f.FS != nil {
		return f.FS.Open(f.Name)
	}
	return os.Open(f.Path)
}

type staticRegistry struct {
	mu    sync.RWMutex
	files map[string]StaticFile
	order []string
}

func newStaticRegistry() *staticRegistry {
	return &staticRegistry{files: make(map[string]StaticFile)}
}

func (r *staticRegistry) add(f StaticFile) error {
	if f.Name == "" || strings.ContainsAny(f.Name, `/\`) {
		return fmt.Errorf("client: %w: invalid static file name %q", ErrRegistration, f.Name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.files[f.Name]; !ok {
		r.order = append(r.order, f.Name)
	}
	r.files[f.Name] = f
	return nil
}

func (r *staticRegistry) get(name string) (StaticFile, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.files[name]
	return f, ok
}

func (r *staticRegistry) names(kind StaticKind) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []string
	for _, name := range r.order {
		if r.files[name].Kind == kind {
			out = append(out, name)
		}
	}
	return out
}

func (c *Client) registerStatic(kind StaticKind, name, path string) error {
	if name == "" {
		name = filepath.Base(path)
	}
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("client: %w: static file %s: %v", ErrRegistration, name, err)
	}
	return c.static.add(StaticFile{Name: name, Kind: kind, Path: path})
}

// RegisterJS serves the script at path as name and loads it in the
// document. An empty name is the base name of path.
func (c *Client) RegisterJS(name, path string) error {
	return c.registerStatic(StaticJS, name, path)
}

// RegisterCSS serves the stylesheet at path as name and links it from the
// document.
func (c *Client) RegisterCSS(name, path string) error {
	return c.registerStatic(StaticCSS, name, path)
}

// RegisterImage serves the image at path as name.
func (c *Client) RegisterImage(name, path string) error {
	return c.registerStatic(StaticImage, name, path)
}

// RegisterFont serves the font at path as name.
func (c *Client) RegisterFont(name, path string) error {
	return c.registerStatic(StaticFont, name, path)
}

// StaticFilePath returns the disk path of the static file name. Built-in
// files have no path; use StaticFile to read them.
func (c *Client) StaticFilePath(name string) (string, bool) {
	f, ok := c.static.get(name)
	if !ok || f.Path == "" {
		return "", false
	}
	return f.Path, true
}

// StaticFile returns the static file name.
func (c *Client) StaticFile(name string) (StaticFile, bool) {
	return c.static.get(name)
}

// StaticFiles lists the names of the static files, sorted.
func (c *Client) StaticFiles() []string {
	c.static.mu.RLock()
	defer c.static.mu.RUnlock()
	out := append([]string(nil), c.static.order...)
	sort.Strings(out)
	return out
}

func (c *Client) staticURL(name string) string {
	return c.cfg.baseURL + "/static/" + name
}

func (c *Client) registerBuiltinStatic() error {
	assets := builtinStatic()
	entries, err := fs.ReadDir(assets, ".")
	if err != nil {
		return fmt.Errorf("client: built-in static files: %w", err)
	}
	for _, e := range entries {
		kind := StaticImage
		switch filepath.Ext(e.Name()) {
		case ".css":
			kind = StaticCSS
		case ".js":
			kind = StaticJS
		}
		if err := c.static.add(StaticFile{Name: e.Name(), Kind: kind, FS: assets}); err != nil {
			return err
		}
	}
	return nil
}
