// Package i18n localizes csvtrans's own log and status messages (never
// the translated data). Messages are looked up in gettext catalogues
// compiled into the binary under locales/<lang>/LC_MESSAGES/csvtrans.po;
// a message without a catalogue entry is printed in English.
//
// The UI language comes from CSVTRANS_LANG, so it can differ from the
// target language of a run and from the rest of the desktop, and falls
// back to the usual gettext variables:
//
//	CSVTRANS_LANG=ru csvtrans en de      # Russian messages, German output
package i18n

import (
	"embed"
	"os"
	"strings"

	"github.com/leonelquinteros/gotext"
)

// locales holds one catalogue per UI language.
//
//go:embed all:locales
var locales embed.FS

const domain = "csvtrans"

// LangEnv selects the UI language ahead of LANGUAGE, LC_ALL, LC_MESSAGES
// and LANG.
const LangEnv = "CSVTRANS_LANG"

// po is nil until Init; T and N then return their English arguments.
var po *gotext.Locale

// Init loads the catalogue for lang ("ru", "ru_RU"), or for the language
// detected from the environment when lang is empty. A region-specific
// code falls back to its base language catalogue. main calls it once,
// before the command tree runs.
func Init(lang string) {
	if lang == "" {
		lang = detectLanguage()
	}

	po = gotext.NewLocaleFSWithPath(lang, locales, "locales")
	po.AddDomain(domain)
	po.SetDomain(domain)
}

// T returns the catalogue text for msgid, or msgid itself.
func T(msgid string) string {
	if po == nil {
		return msgid
	}
	return po.Get(msgid)
}

// N picks the plural form for n. Without a catalogue it follows English
// rules; with one, the catalogue's Plural-Forms formula (three forms for
// Russian).
func N(singular, plural string, n int) string {
	if po == nil {
		if n == 1 {
			return singular
		}
		return plural
	}
	return po.GetN(singular, plural, n)
}

// localeEnv is searched in order; the first usable value wins.
var localeEnv = []string{LangEnv, "LANGUAGE", "LC_ALL", "LC_MESSAGES", "LANG"}

// detectLanguage returns the UI language from the environment, "en" if
// none is set. Values look like "ru_RU.UTF-8@euro" or, for LANGUAGE and
// CSVTRANS_LANG, a colon-separated preference list.
func detectLanguage() string {
	for _, env := range localeEnv {
		if lang := localeName(os.Getenv(env)); lang != "" {
			return lang
		}
	}
	return "en"
}

// localeName reduces a locale value to its language part, "" for the
// untranslated C/POSIX locales.
func localeName(val string) string {
	val, _, _ = strings.Cut(val, ":")
	val, _, _ = strings.Cut(val, "@")
	val, _, _ = strings.Cut(val, ".")
	val = strings.TrimSpace(val)
	if val == "C" || val == "POSIX" {
		return ""
	}
	return val
}
