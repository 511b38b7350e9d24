// Package sidecar indexes subtitle files sitting next to media on disk so
// they can compete with provider results during selection.
package sidecar

import (
	"path/filepath"
	"strings"

	"github.com/selectarr/selectarr/internal/language"
	"github.com/selectarr/selectarr/internal/tracks"
)

// subtitleExtensions are the sidecar file types we index.
var subtitleExtensions = map[string]bool{
	".srt": true,
	".ass": true,
	".ssa": true,
	".sub": true,
	".vtt": true,
}

// modifier tokens that may sit between the media name and the language code,
// e.g. "Movie.en.forced.srt".
var subtitleModifiers = map[string]bool{
	"forced": true,
	"sdh":    true,
	"cc":     true,
	"hi":     false, // ambiguous with Hindi, treat as a language
}

// IsSubtitleFile reports whether the path looks like a sidecar subtitle.
func IsSubtitleFile(path string) bool {
	return subtitleExtensions[strings.ToLower(filepath.Ext(path))]
}

// ParseFilename splits a sidecar filename into the media base name and the
// normalized language code. Files with no language tag get an empty code, e.g.
//
//	Movie.2024.en.srt        -> ("Movie.2024", "en")
//	Movie.2024.eng.forced.srt -> ("Movie.2024", "en")
//	Movie.2024.srt           -> ("Movie.2024", "")
func ParseFilename(path string) (base, code string) {
	name := filepath.Base(path)
	name = strings.TrimSuffix(name, filepath.Ext(name))

	parts := strings.Split(name, ".")
	// Strip trailing modifier tokens, then try the last token as a language.
	for len(parts) > 1 {
		last := strings.ToLower(parts[len(parts)-1])
		if subtitleModifiers[last] {
			parts = parts[:len(parts)-1]
			continue
		}
		if normalized := language.Normalize(last); len(normalized) == 2 && language.EnglishName(normalized) != "" {
			return strings.Join(parts[:len(parts)-1], "."), normalized
		}
		break
	}
	return strings.Join(parts, "."), ""
}

// entry is one indexed sidecar file.
type entry struct {
	path string
	base string
	code string
}

func (e entry) external() tracks.ExternalSubtitle {
	display := filepath.Base(e.path)
	lang := e.code
	if lang == "" {
		lang = "unknown"
	}
	return tracks.ExternalSubtitle{
		ID:       "sidecar:" + e.path,
		Language: lang,
		Display:  display,
	}
}
