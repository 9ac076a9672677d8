package i18n

import "testing"

func clearLocaleEnv(t *testing.T) {
	t.Helper()
	t.Setenv("LANGUAGE", "")
	t.Setenv("LC_ALL", "")
	t.Setenv("LC_MESSAGES", "")
	t.Setenv("LANG", "")
	t.Setenv(LangEnv, "")
}

func TestDetectLanguagePriorityAndNormalization(t *testing.T) {
	t.Run("LANGUAGE has highest priority", func(t *testing.T) {
		clearLocaleEnv(t)
		t.Setenv("LANGUAGE", "ru_RU.UTF-8:en_US")
		t.Setenv("LC_ALL", "de_DE.UTF-8")

		if got := detectLanguage(); got != "ru_RU" {
			t.Fatalf("detectLanguage() = %q, want %q", got, "ru_RU")
		}
	})

	t.Run("C and POSIX are skipped", func(t *testing.T) {
		clearLocaleEnv(t)
		t.Setenv("LANGUAGE", "C")
		t.Setenv("LC_ALL", "POSIX")
		t.Setenv("LC_MESSAGES", "fr_FR.UTF-8")

		if got := detectLanguage(); got != "fr_FR" {
			t.Fatalf("detectLanguage() = %q, want %q", got, "fr_FR")
		}
	})

	t.Run("falls back to en", func(t *testing.T) {
		clearLocaleEnv(t)
		if got := detectLanguage(); got != "en" {
			t.Fatalf("detectLanguage() = %q, want %q", got, "en")
		}
	})
}

func TestTAndNFallbackWhenUninitialized(t *testing.T) {
	old := po
	po = nil
	t.Cleanup(func() { po = old })

	if got := T("Hello"); got != "Hello" {
		t.Fatalf("T fallback = %q, want %q", got, "Hello")
	}

	if got := N("file", "files", 1); got != "file" {
		t.Fatalf("N singular fallback = %q, want %q", got, "file")
	}

	if got := N("file", "files", 2); got != "files" {
		t.Fatalf("N plural fallback = %q, want %q", got, "files")
	}
}

func TestDetectLanguageOverride(t *testing.T) {
	clearLocaleEnv(t)
	t.Setenv(LangEnv, "de_DE.UTF-8")
	t.Setenv("LANGUAGE", "ru_RU")

	if got := detectLanguage(); got != "de_DE" {
		t.Fatalf("detectLanguage() = %q, want %q", got, "de_DE")
	}
}

func TestInitLoadsEmbeddedCatalogue(t *testing.T) {
	old := po
	t.Cleanup(func() { po = old })

	Init("ru_RU")

	if got := T("Resume state cleared"); got != "Состояние возобновления очищено" {
		t.Fatalf("T() = %q", got)
	}
	if got := N("Found %d existing translation in %s", "Found %d existing translations in %s", 5); got != "Найдено %d существующих переводов в %s" {
		t.Fatalf("N(5) = %q", got)
	}
	if got := T("no such message"); got != "no such message" {
		t.Fatalf("T passthrough = %q", got)
	}
}

func TestLocaleName(t *testing.T) {
	tests := map[string]string{
		"ru_RU.UTF-8":      "ru_RU",
		"de_DE.UTF-8@euro": "de_DE",
		"uk:ru:en":         "uk",
		"C.UTF-8":          "",
		"POSIX":            "",
		"":                 "",
	}
	for in, want := range tests {
		if got := localeName(in); got != want {
			t.Errorf("localeName(%q) = %q, want %q", in, got, want)
		}
	}
}
