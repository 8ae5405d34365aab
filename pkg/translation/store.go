package translation

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"
	"sync"

	"golang.org/x/text/language"
)

// DefaultLang is used when a caller passes an empty language.
const DefaultLang = "en"

// Option configures a Store.
type Option func(*Store)

// WithLogger attaches a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

type key struct {
	lang    string
	context string
	msgid   string
}

// Store maps (lang, context, msgid) to a translated message. It is safe for
// concurrent use; writers are expected at startup.
type Store struct {
	mu       sync.RWMutex
	messages map[key]string
	langs    map[string]struct{}
	logger   *slog.Logger
}

// NewStore returns an empty store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		messages: make(map[key]string),
		langs:    make(map[string]struct{}),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Normalize canonicalizes a language tag ("fr_FR" -> "fr-FR"). Unparseable
// values are returned trimmed and lowercased.
func Normalize(lang string) string {
	lang = strings.TrimSpace(strings.ReplaceAll(lang, "_", "-"))
	if lang == "" {
		return DefaultLang
	}
	tag, err := language.Parse(lang)
	if err != nil {
		return strings.ToLower(lang)
	}
	return tag.String()
}

func baseOf(lang string) string {
	tag, err := language.Parse(lang)
	if err != nil {
		return ""
	}
	base, conf := tag.Base()
	if conf == language.No {
		return ""
	}
	return base.String()
}

// Set stores a translation. An empty msgstr stores the msgid itself.
func (s *Store) Set(lang, context, msgid, msgstr string) {
	if msgstr == "" {
		msgstr = msgid
	}
	lang = Normalize(lang)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.langs[lang] = struct{}{}
	s.messages[key{lang: lang, context: context, msgid: msgid}] = msgstr
}

// Lookup returns the translation for the exact language, then for its base
// language ("fr" for "fr-CA").
func (s *Store) Lookup(lang, context, msgid string) (string, bool) {
	if s == nil {
		return "", false
	}
	lang = Normalize(lang)
	s.mu.RLock()
	defer s.mu.RUnlock()
	if msg, ok := s.messages[key{lang: lang, context: context, msgid: msgid}]; ok {
		return msg, true
	}
	if base := baseOf(lang); base != "" && base != lang {
		if msg, ok := s.messages[key{lang: base, context: context, msgid: msgid}]; ok {
			return msg, true
		}
	}
	return "", false
}

// Get returns the translation or msgid when none is known.
func (s *Store) Get(lang, context, msgid string) string {
	if msg, ok := s.Lookup(lang, context, msgid); ok {
		return msg
	}
	return msgid
}

// HasLang reports whether at least one message was loaded for lang.
func (s *Store) HasLang(lang string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.langs[Normalize(lang)]
	return ok
}

// Languages lists the loaded languages, sorted.
func (s *Store) Languages() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.langs))
	for l := range s.langs {
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}

// LoadCatalog copies every entry of c into the store under lang.
func (s *Store) LoadCatalog(lang string, c *Catalog) {
	if c == nil {
		return
	}
	for _, e := range c.Entries() {
		s.Set(lang, e.Context, e.MsgID, e.MsgStr)
	}
	s.logger.Debug("translation catalog loaded", "lang", Normalize(lang), "entries", c.Len())
}

// LoadFile reads a PO file and loads it under lang.
func (s *Store) LoadFile(path, lang string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("translation: open catalog: %w", err)
	}
	defer f.Close()
	c, err := ReadCatalog(f)
	if err != nil {
		return fmt.Errorf("translation: read %s: %w", path, err)
	}
	s.LoadCatalog(lang, c)
	return nil
}
