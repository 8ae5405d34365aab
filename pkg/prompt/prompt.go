// Package prompt translates gettext catalogs interactively: every entry
// without msgstr is shown with its context and the answer becomes its
// translation.
package prompt

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/goliatone/go-crudui/pkg/translation"
)

// Option configures a Translator.
type Option func(*Translator)

// WithDriver replaces the terminal driver.
func WithDriver(d Driver) Option {
	return func(t *Translator) {
		if d != nil {
			t.driver = d
		}
	}
}

// WithLogger attaches a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Translator) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// WithReference pre-fills answers from the translations of another
// language, e.g. to translate pt-BR from pt.
func WithReference(store *translation.Store, lang string) Option {
	return func(t *Translator) {
		t.reference = store
		t.refLang = lang
	}
}

// Translator runs the interactive translation of catalogs.
type Translator struct {
	driver    Driver
	logger    *slog.Logger
	reference *translation.Store
	refLang   string
}

// New returns a translator asking on the terminal.
func New(opts ...Option) *Translator {
	t := &Translator{
		driver: NewSurveyDriver(os.Stdout),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(t)
		}
	}
	return t
}

// Result counts the outcome of a translation session.
type Result struct {
	Translated int
	Skipped    int
	Remaining  int
}

// Translate asks a msgstr for every untranslated entry of cat. An empty
// answer skips the entry. Interrupting keeps the answers given so far and
// returns ErrAborted along with the partial result.
func (t *Translator) Translate(ctx context.Context, cat *translation.Catalog, lang string) (Result, error) {
	pending := cat.Untranslated()
	res := Result{Remaining: len(pending)}
	if len(pending) == 0 {
		return res, t.driver.Info(ctx, fmt.Sprintf("%s: nothing to translate", lang))
	}
	if err := t.driver.Info(ctx, fmt.Sprintf("%s: %d messages to translate, leave empty to skip", lang, len(pending))); err != nil {
		return res, err
	}
	for i, e := range pending {
		answer, err := t.driver.Input(ctx, InputConfig{
			Message: fmt.Sprintf("[%d/%d] %s", i+1, len(pending), e.MsgID),
			Default: t.suggest(e),
			Help:    e.Context,
		})
		if err != nil {
			if errors.Is(err, ErrAborted) {
				t.logger.Info("translation interrupted", "lang", lang, "translated", res.Translated)
			}
			return res, err
		}
		res.Remaining--
		answer = strings.TrimSpace(answer)
		if answer == "" {
			res.Skipped++
			continue
		}
		cat.SetMsgStr(e.Context, e.MsgID, answer)
		res.Translated++
		t.logger.Debug("message translated", "lang", lang, "context", e.Context, "msgid", e.MsgID)
	}
	return res, nil
}

func (t *Translator) suggest(e translation.Entry) string {
	if t.reference == nil {
		return ""
	}
	if msg, ok := t.reference.Lookup(t.refLang, e.Context, e.MsgID); ok {
		return msg
	}
	return ""
}

// ChooseLanguage asks which language to translate among langs. A single
// language is returned without asking.
func (t *Translator) ChooseLanguage(ctx context.Context, langs []string) (string, error) {
	switch len(langs) {
	case 0:
		return "", fmt.Errorf("prompt: no language to choose from")
	case 1:
		return langs[0], nil
	}
	lang, err := t.driver.Select(ctx, SelectConfig{Message: "Language to translate", Options: langs, Default: langs[0]})
	if err != nil {
		return "", err
	}
	return translation.Normalize(lang), nil
}

// Save asks for confirmation, then writes cat to path.
func (t *Translator) Save(ctx context.Context, cat *translation.Catalog, path string) (bool, error) {
	ok, err := t.driver.Confirm(ctx, fmt.Sprintf("Write %s?", path), true)
	if err != nil || !ok {
		return false, err
	}
	f, err := os.Create(path)
	if err != nil {
		return false, fmt.Errorf("prompt: %w", err)
	}
	if _, err := cat.WriteTo(f); err != nil {
		f.Close()
		return false, fmt.Errorf("prompt: write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return false, fmt.Errorf("prompt: close %s: %w", path, err)
	}
	return true, t.driver.Info(ctx, fmt.Sprintf("%s written", path))
}
