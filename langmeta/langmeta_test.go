package langmeta

import "testing"

func TestCanonicalize(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{in: "pt_br", want: "pt-BR"},
		{in: " EN-us ", want: "en-US"},
		{in: "ru", want: "ru"},
		{in: "", want: ""},
	}

	for _, tc := range cases {
		got := canonicalize(tc.in)
		if got != tc.want {
			t.Fatalf("canonicalize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestParse(t *testing.T) {
	for _, code := range []string{"ru", "de", "pt_BR", "zh-Hant"} {
		if _, err := Parse(code); err != nil {
			t.Errorf("Parse(%q) error: %v", code, err)
		}
	}
	for _, code := range []string{"", "  ", "not a language", "ru--RU"} {
		if _, err := Parse(code); err == nil {
			t.Errorf("Parse(%q) error = nil, want error", code)
		}
	}
}

func TestResolve(t *testing.T) {
	t.Run("known language", func(t *testing.T) {
		got := Resolve("ru")
		if got.Code != "ru" || got.English != "Russian" || got.Name != "русский" {
			t.Fatalf("unexpected result: %#v", got)
		}
	})

	t.Run("normalized code", func(t *testing.T) {
		got := Resolve("de_de")
		if got.Code != "de-DE" || got.Name == "" || got.English == "" {
			t.Fatalf("unexpected result: %#v", got)
		}
	})

	t.Run("invalid passthrough", func(t *testing.T) {
		got := Resolve("not a language")
		if got.Name != "not a language" || got.English != "not a language" {
			t.Fatalf("unexpected result: %#v", got)
		}
	})
}
