// Package tracks implements audio and subtitle track auto-selection: deciding
// which embedded track to play and which subtitle candidate (embedded or
// externally fetched) to display for a user's language preference.
package tracks

// Track is an embedded media track (audio or subtitle) as reported by the
// player. ID is an opaque handle meaningful only to the player. Language is
// unreliable: it may be empty, a 2-letter code, a 3-letter code, or free text.
type Track struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Language string `json:"language,omitempty"`
}

// ExternalSubtitle is a subtitle candidate located outside the media
// container, either fetched from an online provider or indexed from a sidecar
// directory. Display is a human-readable label that may itself encode the
// language as free text.
type ExternalSubtitle struct {
	ID       string `json:"id"`
	Language string `json:"language"`
	Display  string `json:"display"`
}

// SourcePreference selects whether embedded tracks or fetched subtitles are
// tried first when both could satisfy the language preference.
type SourcePreference string

const (
	SourceInternal SourcePreference = "internal"
	SourceExternal SourcePreference = "external"
	SourceAny      SourcePreference = "any"
)

// Valid reports whether the value is one of the known source preferences.
func (p SourcePreference) Valid() bool {
	switch p {
	case SourceInternal, SourceExternal, SourceAny:
		return true
	}
	return false
}

// SelectionPolicy is the user's subtitle auto-selection policy.
type SelectionPolicy struct {
	PreferredLanguage string           `json:"preferredLanguage"`
	SubtitleSource    SourcePreference `json:"subtitleSource"`
	AutoSelect        bool             `json:"autoSelect"`
}

// DefaultLanguage is used when the user has expressed no preference.
const DefaultLanguage = "en"

// SelectionSource tags which list a subtitle selection came from.
type SelectionSource string

const (
	SelectionNone     SelectionSource = "none"
	SelectionInternal SelectionSource = "internal"
	SelectionExternal SelectionSource = "external"
)

// SelectionResult is the outcome of a subtitle selection. Exactly one of
// TrackID (Source == internal) or Subtitle (Source == external) is set.
type SelectionResult struct {
	Source   SelectionSource   `json:"source"`
	TrackID  int               `json:"trackId,omitempty"`
	Subtitle *ExternalSubtitle `json:"subtitle,omitempty"`
}

func noneResult() SelectionResult {
	return SelectionResult{Source: SelectionNone}
}

func internalResult(trackID int) SelectionResult {
	return SelectionResult{Source: SelectionInternal, TrackID: trackID}
}

func externalResult(sub ExternalSubtitle) SelectionResult {
	return SelectionResult{Source: SelectionExternal, Subtitle: &sub}
}
