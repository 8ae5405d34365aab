package render

import (
	"errors"
	"strings"
)

// ErrMissingTranslator is passed to MissingTranslationHandler when no
// translator was configured.
var ErrMissingTranslator = errors.New("render: translator not configured")

// Translator resolves a message for a language and a translation context.
// An untranslated message is returned as is.
type Translator interface {
	Get(lang, context, msgid string) string
}

// TranslatorFunc adapts a function to Translator.
type TranslatorFunc func(lang, context, msgid string) string

// Get implements Translator.
func (f TranslatorFunc) Get(lang, context, msgid string) string {
	return f(lang, context, msgid)
}

// MissingTranslationHandler decides the text used when msgid has no
// translation.
type MissingTranslationHandler func(lang, context, msgid string, err error) string

func missingTranslationDefault(_, _, msgid string, _ error) string {
	return msgid
}

// Translate resolves msgid through t, falling back to onMissing (or msgid)
// when t is nil or returns an empty string.
func Translate(t Translator, onMissing MissingTranslationHandler, lang, context, msgid string) string {
	if onMissing == nil {
		onMissing = missingTranslationDefault
	}
	if strings.TrimSpace(msgid) == "" {
		return msgid
	}
	if t == nil {
		return onMissing(lang, context, msgid, ErrMissingTranslator)
	}
	if msg := t.Get(lang, context, msgid); strings.TrimSpace(msg) != "" {
		return msg
	}
	return onMissing(lang, context, msgid, nil)
}
