package tracks

import (
	"strings"

	"github.com/selectarr/selectarr/internal/language"
)

// Matches reports whether a track satisfies a language preference. Three
// layers are tried in order, each more permissive than the last: normalized
// code equality, canonical-name containment in the track name, and the
// per-language free-text pattern. The layers stay separate so the fallback
// order remains auditable.
func Matches(track Track, preferredLanguage string) bool {
	pref := language.Normalize(preferredLanguage)
	if pref == "" {
		// No preference never matches; callers must supply a concrete language.
		return false
	}
	if language.Normalize(track.Language) == pref {
		return true
	}
	if nameContainsLanguage(track.Name, pref) {
		return true
	}
	return patternMatchesName(track.Name, pref)
}

// nameContainsLanguage reports whether the track's free-text name contains
// the canonical English name of the language, e.g. "English (CC)" for "en".
func nameContainsLanguage(name, code string) bool {
	full := language.EnglishName(code)
	if full == "" {
		return false
	}
	return strings.Contains(strings.ToLower(name), strings.ToLower(full))
}

// patternMatchesName tests the per-language pattern (English name, ISO codes,
// native-script name) against the track name.
func patternMatchesName(name, code string) bool {
	re := language.Pattern(code)
	if re == nil {
		return false
	}
	return re.MatchString(name)
}

// matchesSubtitle reports whether an external subtitle satisfies the
// preference. External language fields are provider-curated, so a single-pass
// containment check replaces the full pattern table used for embedded tracks.
func matchesSubtitle(sub ExternalSubtitle, preferredLanguage string) bool {
	pref := language.Normalize(preferredLanguage)
	if pref == "" {
		return false
	}
	if language.Normalize(sub.Language) == pref {
		return true
	}
	lang := strings.ToLower(sub.Language)
	display := strings.ToLower(sub.Display)
	if strings.Contains(lang, pref) || strings.Contains(display, pref) {
		return true
	}
	if full := strings.ToLower(language.EnglishName(pref)); full != "" {
		return strings.Contains(lang, full) || strings.Contains(display, full)
	}
	return false
}
