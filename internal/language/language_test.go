package language

import "testing"

func TestNormalizeCodes(t *testing.T) {
	cases := map[string]string{
		"":         "",
		"  ":       "",
		"en":       "en",
		"ENG":      "en",
		"eng":      "en",
		"English":  "en",
		"ENGLISH":  "en",
		"jpn":      "ja",
		"Japanese": "ja",
		"fre":      "fr",
		"fra":      "fr",
		"ger":      "de",
		"deu":      "de",
		"chi":      "zh",
		"zho":      "zh",
		" pt ":     "pt",
		"klingon":  "klingon", // unknown passes through
		"xx":       "xx",
	}
	for input, want := range cases {
		if got := Normalize(input); got != want {
			t.Errorf("Normalize(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{"", "en", "ENG", "English", "Portuguese", "xx", "  jpn  ", "not a language"}
	for _, input := range inputs {
		once := Normalize(input)
		if twice := Normalize(once); twice != once {
			t.Errorf("Normalize not idempotent for %q: %q -> %q", input, once, twice)
		}
	}
}

func TestEnglishName(t *testing.T) {
	if got := EnglishName("en"); got != "English" {
		t.Errorf("EnglishName(en) = %q", got)
	}
	if got := EnglishName("zz"); got != "" {
		t.Errorf("EnglishName(zz) = %q, want empty", got)
	}
}

func TestPatternMatchesFreeText(t *testing.T) {
	cases := []struct {
		code string
		name string
		want bool
	}{
		{"ja", "Japanese Dub", true},
		{"ja", "jpn 5.1", true},
		{"ja", "日本語", true},
		{"ja", "Java tutorial", false}, // \b keeps "ja" from matching inside words
		{"en", "English (CC)", true},
		{"en", "French Forced", false},
		{"es", "Director's Commentary - Spanish", true},
		{"es", "Español (Latinoamérica)", true},
		{"zh", "中文 (简体)", true},
		{"no", "Norwegian", true},
	}
	for _, tc := range cases {
		re := Pattern(tc.code)
		if re == nil {
			t.Fatalf("no pattern for %q", tc.code)
		}
		if got := re.MatchString(tc.name); got != tc.want {
			t.Errorf("Pattern(%q).MatchString(%q) = %v, want %v", tc.code, tc.name, got, tc.want)
		}
	}
}

func TestOptionsSortedAndComplete(t *testing.T) {
	opts := Options()
	if len(opts) != len(codeToName) {
		t.Fatalf("expected %d options, got %d", len(codeToName), len(opts))
	}
	for i := 1; i < len(opts); i++ {
		if opts[i-1].Name > opts[i].Name {
			t.Fatalf("options not sorted: %q before %q", opts[i-1].Name, opts[i].Name)
		}
	}
	for _, opt := range opts {
		if Normalize(opt.Code) != opt.Code {
			t.Errorf("option code %q is not canonical", opt.Code)
		}
	}
}
