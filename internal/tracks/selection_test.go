package tracks

import (
	"reflect"
	"testing"
)

func TestSelectAudioTrackEmpty(t *testing.T) {
	if id, ok := SelectAudioTrack(nil, "en"); ok {
		t.Fatalf("expected no selection for empty list, got %d", id)
	}
}

func TestSelectAudioTrackFirstMatchWins(t *testing.T) {
	tracks := []Track{
		{ID: 5, Name: "Spanish", Language: "es"},
		{ID: 6, Name: "English", Language: "en"},
		{ID: 7, Name: "English (Commentary)", Language: "en"},
	}
	id, ok := SelectAudioTrack(tracks, "en")
	if !ok || id != 6 {
		t.Fatalf("SelectAudioTrack = (%d, %v), want (6, true)", id, ok)
	}
}

func TestSelectAudioTrackNoMatch(t *testing.T) {
	tracks := []Track{{ID: 1, Name: "Spanish", Language: "es"}}
	if id, ok := SelectAudioTrack(tracks, "ja"); ok {
		t.Fatalf("expected no selection, got %d", id)
	}
}

func TestSelectSubtitleAutoSelectDisabled(t *testing.T) {
	internal := []Track{{ID: 1, Name: "English", Language: "en"}}
	external := []ExternalSubtitle{{ID: "x1", Language: "en", Display: "English"}}
	policy := SelectionPolicy{PreferredLanguage: "en", SubtitleSource: SourceInternal, AutoSelect: false}

	got := SelectSubtitle(internal, external, policy)
	if got.Source != SelectionNone {
		t.Fatalf("expected none with auto-select off, got %+v", got)
	}
}

func TestSelectSubtitleInternalMatchBeatsExternal(t *testing.T) {
	internal := []Track{
		{ID: 1, Name: "French", Language: "fr"},
		{ID: 2, Name: "English", Language: "en"},
	}
	external := []ExternalSubtitle{{ID: "x1", Language: "en", Display: "English (Full)"}}
	policy := SelectionPolicy{PreferredLanguage: "en", SubtitleSource: SourceInternal, AutoSelect: true}

	got := SelectSubtitle(internal, external, policy)
	want := SelectionResult{Source: SelectionInternal, TrackID: 2}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("SelectSubtitle = %+v, want %+v", got, want)
	}
}

func TestSelectSubtitleExternalMatchBeforeFirstInternal(t *testing.T) {
	// No internal match exists; the "internal" chain still checks the matching
	// external candidate before falling back to the first internal track.
	internal := []Track{{ID: 1, Name: "French", Language: "fr"}}
	external := []ExternalSubtitle{{ID: "x1", Language: "en", Display: "English (Full)"}}
	policy := SelectionPolicy{PreferredLanguage: "en", SubtitleSource: SourceInternal, AutoSelect: true}

	got := SelectSubtitle(internal, external, policy)
	if got.Source != SelectionExternal || got.Subtitle == nil || got.Subtitle.ID != "x1" {
		t.Fatalf("SelectSubtitle = %+v, want external x1", got)
	}
}

func TestSelectSubtitleExternalPreference(t *testing.T) {
	internal := []Track{{ID: 1, Name: "English", Language: "en"}}
	external := []ExternalSubtitle{{ID: "x1", Language: "en", Display: "English"}}
	policy := SelectionPolicy{PreferredLanguage: "en", SubtitleSource: SourceExternal, AutoSelect: true}

	got := SelectSubtitle(internal, external, policy)
	if got.Source != SelectionExternal || got.Subtitle == nil || got.Subtitle.ID != "x1" {
		t.Fatalf("SelectSubtitle = %+v, want external x1", got)
	}
}

func TestSelectSubtitleNoMatchesFallsBackToFirstInternal(t *testing.T) {
	internal := []Track{{ID: 9, Name: "Commentary"}, {ID: 10, Name: "Signs"}}
	external := []ExternalSubtitle{{ID: "x1", Language: "fr", Display: "French"}}
	policy := SelectionPolicy{PreferredLanguage: "ja", SubtitleSource: SourceInternal, AutoSelect: true}

	got := SelectSubtitle(internal, external, policy)
	want := SelectionResult{Source: SelectionInternal, TrackID: 9}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("SelectSubtitle = %+v, want %+v", got, want)
	}
}

func TestSelectSubtitleDefaultsToEnglish(t *testing.T) {
	internal := []Track{
		{ID: 1, Name: "French", Language: "fr"},
		{ID: 2, Name: "English", Language: "en"},
	}
	policy := SelectionPolicy{SubtitleSource: SourceAny, AutoSelect: true}

	got := SelectSubtitle(internal, nil, policy)
	if got.Source != SelectionInternal || got.TrackID != 2 {
		t.Fatalf("SelectSubtitle = %+v, want internal track 2", got)
	}
}

func TestSelectSubtitleBothListsEmpty(t *testing.T) {
	policy := SelectionPolicy{PreferredLanguage: "en", SubtitleSource: SourceAny, AutoSelect: true}
	if got := SelectSubtitle(nil, nil, policy); got.Source != SelectionNone {
		t.Fatalf("expected none for empty inputs, got %+v", got)
	}
}

func TestSelectSubtitleDoesNotMutateInputs(t *testing.T) {
	internal := []Track{{ID: 1, Name: "French", Language: "fr"}}
	external := []ExternalSubtitle{{ID: "x1", Language: "en", Display: "English"}}
	internalCopy := append([]Track(nil), internal...)
	externalCopy := append([]ExternalSubtitle(nil), external...)
	policy := SelectionPolicy{PreferredLanguage: "en", SubtitleSource: SourceAny, AutoSelect: true}

	first := SelectSubtitle(internal, external, policy)
	second := SelectSubtitle(internal, external, policy)

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("selection not deterministic: %+v vs %+v", first, second)
	}
	if !reflect.DeepEqual(internal, internalCopy) || !reflect.DeepEqual(external, externalCopy) {
		t.Fatal("inputs were mutated")
	}
}
