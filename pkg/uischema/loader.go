package uischema

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadFS walks the provided filesystem and parses JSON/YAML UI schema files.
// When fsys is nil or no schema files are present, the returned store is
// empty. A resource or menu defined by two files is an error.
func LoadFS(fsys fs.FS) (*Store, error) {
	store := &Store{
		resources: make(map[string]ResourceConfig),
		menus:     make(map[string]MenuConfig),
	}
	if fsys == nil {
		return store, nil
	}

	err := fs.WalkDir(fsys, ".", func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !isSchemaFile(path) {
			return nil
		}

		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("uischema: read %s: %w", path, err)
		}
		doc, err := parseDocument(data, path)
		if err != nil {
			return err
		}
		return store.add(doc, path)
	})
	if err != nil {
		return nil, err
	}
	return store, nil
}

type documentFile struct {
	Resources map[string]ResourceConfig `json:"resources" yaml:"resources"`
	Menus     map[string]MenuConfig     `json:"menus" yaml:"menus"`
}

func parseDocument(data []byte, source string) (documentFile, error) {
	var doc documentFile
	if len(strings.TrimSpace(string(data))) == 0 {
		return documentFile{}, fmt.Errorf("uischema: file %s is empty", source)
	}

	if err := json.Unmarshal(data, &doc); err == nil {
		return doc, nil
	}

	doc = documentFile{}
	if err := yaml.Unmarshal(data, &doc); err == nil {
		return doc, nil
	}

	return documentFile{}, fmt.Errorf("uischema: parse %s: invalid JSON or YAML", source)
}

func (s *Store) add(doc documentFile, source string) error {
	for code, cfg := range doc.Resources {
		code = strings.TrimSpace(code)
		if code == "" {
			return fmt.Errorf("uischema: file %s defines an empty resource code", source)
		}
		if prev, exists := s.resources[code]; exists {
			return fmt.Errorf("uischema: duplicate resource %q (files %s and %s)", code, prev.Source, source)
		}
		if err := checkResource(code, cfg); err != nil {
			return fmt.Errorf("uischema: file %s: %w", source, err)
		}
		cfg.Source = source
		s.resources[code] = cfg
	}
	for ctx, cfg := range doc.Menus {
		ctx = strings.TrimSpace(ctx)
		if ctx == "" {
			return fmt.Errorf("uischema: file %s defines an empty menu context", source)
		}
		if prev, exists := s.menus[ctx]; exists {
			return fmt.Errorf("uischema: duplicate menu %q (files %s and %s)", ctx, prev.Source, source)
		}
		cfg.Icon = sanitizeIcon(cfg.Icon)
		cfg.Source = source
		s.menus[ctx] = cfg
	}
	return nil
}

// checkResource parses every predicate up front so a bad file fails on
// load rather than on apply.
func checkResource(code string, cfg ResourceConfig) error {
	check := func(where string, set map[string]FieldConfig) error {
		for name, f := range set {
			if _, err := f.predicates(); err != nil {
				return fmt.Errorf("resource %q %sfield %q: %w", code, where, name, err)
			}
		}
		return nil
	}
	if err := check("", cfg.Fields); err != nil {
		return err
	}
	for view, v := range cfg.Views {
		if err := check("view "+view+" ", v.Fields); err != nil {
			return err
		}
	}
	return nil
}

// Resource returns the overlay of a resource.
func (s *Store) Resource(code string) (ResourceConfig, bool) {
	if s == nil {
		return ResourceConfig{}, false
	}
	cfg, ok := s.resources[code]
	return cfg, ok
}

// Menu returns the overlay of the menu with the given context.
func (s *Store) Menu(ctx string) (MenuConfig, bool) {
	if s == nil {
		return MenuConfig{}, false
	}
	cfg, ok := s.menus[ctx]
	return cfg, ok
}

// ResourceCodes lists the overlaid resources, sorted.
func (s *Store) ResourceCodes() []string {
	if s == nil {
		return nil
	}
	out := make([]string, 0, len(s.resources))
	for code := range s.resources {
		out = append(out, code)
	}
	sort.Strings(out)
	return out
}

// Empty reports whether the store holds any overlay.
func (s *Store) Empty() bool {
	return s == nil || (len(s.resources) == 0 && len(s.menus) == 0)
}

func isSchemaFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}
