// Package language normalizes the inconsistent language identifiers found in
// media track metadata (ISO 639-1, ISO 639-2, full names, free text) to
// canonical 2-letter codes.
package language

import (
	"regexp"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// iso3to2 maps ISO 639-2 codes to ISO 639-1. Both bibliographic and
// terminological variants are listed where they differ (fre/fra, ger/deu).
var iso3to2 = map[string]string{
	"eng": "en",
	"spa": "es",
	"fre": "fr", "fra": "fr",
	"ger": "de", "deu": "de",
	"ita": "it",
	"jpn": "ja",
	"kor": "ko",
	"chi": "zh", "zho": "zh",
	"rus": "ru",
	"por": "pt",
	"hin": "hi",
	"ara": "ar",
	"dut": "nl", "nld": "nl",
	"swe": "sv",
	"nor": "no", "nob": "no", "nno": "no",
	"fin": "fi",
	"dan": "da",
	"pol": "pl",
	"tur": "tr",
	"cze": "cs", "ces": "cs",
	"hun": "hu",
	"gre": "el", "ell": "el",
	"tha": "th",
	"vie": "vi",
	"ind": "id",
	"heb": "he",
	"ukr": "uk",
	"rum": "ro", "ron": "ro",
	"bul": "bg",
	"hrv": "hr",
	"srp": "sr",
}

// codeToName maps ISO 639-1 codes to English language names.
var codeToName = map[string]string{
	"en": "English",
	"es": "Spanish",
	"fr": "French",
	"de": "German",
	"it": "Italian",
	"ja": "Japanese",
	"ko": "Korean",
	"zh": "Chinese",
	"ru": "Russian",
	"pt": "Portuguese",
	"hi": "Hindi",
	"ar": "Arabic",
	"nl": "Dutch",
	"sv": "Swedish",
	"no": "Norwegian",
	"fi": "Finnish",
	"da": "Danish",
	"pl": "Polish",
	"tr": "Turkish",
	"cs": "Czech",
	"hu": "Hungarian",
	"el": "Greek",
	"th": "Thai",
	"vi": "Vietnamese",
	"id": "Indonesian",
	"he": "Hebrew",
	"uk": "Ukrainian",
	"ro": "Romanian",
	"bg": "Bulgarian",
	"hr": "Croatian",
	"sr": "Serbian",
}

// nameToCode is the lowercased reverse of codeToName, built at init.
var nameToCode = func() map[string]string {
	m := make(map[string]string, len(codeToName))
	for code, name := range codeToName {
		m[strings.ToLower(name)] = code
	}
	return m
}()

// patterns match a language mentioned inside free-text track names such as
// "English (CC)" or "Director's Commentary - Spanish". Word boundaries guard
// the short forms; native-script names sit outside \b because Go's \b is
// ASCII-only.
var patterns = map[string]*regexp.Regexp{
	"en": regexp.MustCompile(`(?i)\b(english|eng|en)\b`),
	"es": regexp.MustCompile(`(?i)\b(spanish|spa|es|espanol|castellano)\b|español`),
	"fr": regexp.MustCompile(`(?i)\b(french|fre|fra|fr|francais)\b|français`),
	"de": regexp.MustCompile(`(?i)\b(german|ger|deu|de|deutsch)\b`),
	"it": regexp.MustCompile(`(?i)\b(italian|ita|it|italiano)\b`),
	"ja": regexp.MustCompile(`(?i)\b(japanese|jpn|ja)\b|日本語`),
	"ko": regexp.MustCompile(`(?i)\b(korean|kor|ko)\b|한국어`),
	"zh": regexp.MustCompile(`(?i)\b(chinese|chi|zho|zh|mandarin|cantonese)\b|中文|汉语|漢語`),
	"ru": regexp.MustCompile(`(?i)\b(russian|rus|ru)\b|русский`),
	"pt": regexp.MustCompile(`(?i)\b(portuguese|por|pt|portugues|brazilian)\b|português`),
	"hi": regexp.MustCompile(`(?i)\b(hindi|hin|hi)\b|हिन्दी`),
	"ar": regexp.MustCompile(`(?i)\b(arabic|ara|ar)\b|العربية`),
	"nl": regexp.MustCompile(`(?i)\b(dutch|dut|nld|nl|nederlands)\b`),
	"sv": regexp.MustCompile(`(?i)\b(swedish|swe|sv|svenska)\b`),
	"no": regexp.MustCompile(`(?i)\b(norwegian|nor|no|norsk)\b`),
	"fi": regexp.MustCompile(`(?i)\b(finnish|fin|fi|suomi)\b`),
	"da": regexp.MustCompile(`(?i)\b(danish|dan|da|dansk)\b`),
	"pl": regexp.MustCompile(`(?i)\b(polish|pol|pl|polski)\b`),
	"tr": regexp.MustCompile(`(?i)\b(turkish|tur|tr|turkce)\b|türkçe`),
	"cs": regexp.MustCompile(`(?i)\b(czech|cze|ces|cs|cestina)\b|čeština`),
	"hu": regexp.MustCompile(`(?i)\b(hungarian|hun|hu|magyar)\b`),
	"el": regexp.MustCompile(`(?i)\b(greek|gre|ell|el)\b|ελληνικά`),
	"th": regexp.MustCompile(`(?i)\b(thai|tha|th)\b|ไทย`),
	"vi": regexp.MustCompile(`(?i)\b(vietnamese|vie|vi)\b|tiếng việt`),
	"id": regexp.MustCompile(`(?i)\b(indonesian|ind|id)\b`),
	"he": regexp.MustCompile(`(?i)\b(hebrew|heb|he)\b|עברית`),
	"uk": regexp.MustCompile(`(?i)\b(ukrainian|ukr|uk)\b|українська`),
	"ro": regexp.MustCompile(`(?i)\b(romanian|rum|ron|ro|romana)\b|română`),
	"bg": regexp.MustCompile(`(?i)\b(bulgarian|bul|bg)\b|български`),
	"hr": regexp.MustCompile(`(?i)\b(croatian|hrv|hr|hrvatski)\b`),
	"sr": regexp.MustCompile(`(?i)\b(serbian|srp|sr|srpski)\b|српски`),
}

// Normalize maps an arbitrary language identifier to a canonical 2-letter
// code. Unknown input degrades to the trimmed, lowercased value; the function
// is total and idempotent.
func Normalize(input string) string {
	v := strings.ToLower(strings.TrimSpace(input))
	if v == "" {
		return ""
	}
	if code, ok := iso3to2[v]; ok {
		return code
	}
	if code, ok := nameToCode[v]; ok {
		return code
	}
	return v
}

// EnglishName returns the English name for a canonical 2-letter code, or ""
// when the code is not in the table.
func EnglishName(code string) string {
	return codeToName[code]
}

// Pattern returns the free-text matching pattern for a canonical 2-letter
// code, or nil when no pattern exists.
func Pattern(code string) *regexp.Regexp {
	return patterns[code]
}

// Option is a selectable language exposed to settings UIs.
type Option struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Options returns the supported languages sorted by display name. Names come
// from the CLDR data behind x/text so regional spellings stay consistent with
// what players render.
func Options() []Option {
	opts := make([]Option, 0, len(codeToName))
	namer := display.English.Languages()
	for code, fallback := range codeToName {
		name := fallback
		if tag, err := language.Parse(code); err == nil {
			if n := namer.Name(tag); n != "" {
				name = n
			}
		}
		opts = append(opts, Option{Code: code, Name: name})
	}
	sort.Slice(opts, func(i, j int) bool { return opts[i].Name < opts[j].Name })
	return opts
}
