package render

import (
	"fmt"
	"reflect"
	"strings"
)

// TemplateI18nConfig names the template translation helpers.
type TemplateI18nConfig struct {
	// LocaleKey is the map key or struct field holding the language when
	// the helpers receive a value instead of a language. Default "lang".
	LocaleKey string
	// FuncName is the translation helper name. Default "translate".
	FuncName string
	// OnMissing formats messages without translation.
	OnMissing MissingTranslationHandler
}

// languager is implemented by sessions.
type languager interface {
	Language() string
}

// TemplateI18nFuncs returns the globals translate(src, context, msgid) and
// current_locale(src). src is a language, a session, or a map or struct
// carrying the language under cfg.LocaleKey.
func TemplateI18nFuncs(t Translator, cfg TemplateI18nConfig) map[string]any {
	key := cmpOr(strings.TrimSpace(cfg.LocaleKey), "lang")
	name := cmpOr(strings.TrimSpace(cfg.FuncName), "translate")
	return map[string]any{
		name: func(src any, context, msgid string) string {
			return Translate(t, cfg.OnMissing, localeOf(src, key), context, msgid)
		},
		"current_locale": func(src any) string {
			return localeOf(src, key)
		},
	}
}

func cmpOr(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func localeOf(src any, key string) string {
	switch v := src.(type) {
	case nil:
		return ""
	case string:
		return v
	case languager:
		return v.Language()
	case map[string]string:
		return v[key]
	case map[string]any:
		if l, ok := v[key]; ok && l != nil {
			return strings.TrimSpace(fmt.Sprint(l))
		}
		return ""
	}
	rv := reflect.ValueOf(src)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return ""
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return ""
	}
	f := rv.FieldByNameFunc(func(n string) bool { return strings.EqualFold(n, key) })
	if f.IsValid() && f.Kind() == reflect.String {
		return f.String()
	}
	return ""
}
