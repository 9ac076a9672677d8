// Package langmeta validates target language codes and resolves their
// display names (native and English) from CLDR data.
package langmeta

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Meta describes language display metadata.
type Meta struct {
	// Code is the canonical BCP 47 code (e.g. "pt-BR").
	Code string
	// Name is the native name (e.g. "русский").
	Name string
	// English is the English name (e.g. "Russian").
	English string
}

func canonicalize(lang string) string {
	normalized := strings.ReplaceAll(strings.TrimSpace(lang), "_", "-")
	if normalized == "" {
		return ""
	}
	parts := strings.Split(normalized, "-")
	parts[0] = strings.ToLower(parts[0])
	if len(parts) >= 2 {
		parts[1] = strings.ToUpper(parts[1])
	}
	return strings.Join(parts, "-")
}

// Parse validates a language code such as "ru", "pt_BR" or "zh-Hant".
func Parse(lang string) (language.Tag, error) {
	code := canonicalize(lang)
	if code == "" {
		return language.Und, fmt.Errorf("empty language code")
	}
	tag, err := language.Parse(code)
	if err != nil {
		return language.Und, fmt.Errorf("invalid language code %q: %w", lang, err)
	}
	return tag, nil
}

// Resolve returns best-effort metadata for a language code. Unknown or
// malformed codes resolve to themselves.
func Resolve(lang string) Meta {
	tag, err := Parse(lang)
	if err != nil {
		return Meta{Code: lang, Name: lang, English: lang}
	}

	m := Meta{Code: tag.String()}
	if name := display.Self.Name(tag); name != "" {
		m.Name = name
	} else {
		m.Name = lang
	}
	if name := display.English.Tags().Name(tag); name != "" {
		m.English = name
	} else {
		m.English = m.Name
	}
	return m
}
