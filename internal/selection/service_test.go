package selection

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/selectarr/selectarr/internal/database"
	"github.com/selectarr/selectarr/internal/tracks"
)

type fakeProvider struct {
	subs   []tracks.ExternalSubtitle
	calls  int
	failed bool
}

func (f *fakeProvider) Enabled() bool { return true }

func (f *fakeProvider) Search(ctx context.Context, title, preferredLanguage string) ([]tracks.ExternalSubtitle, error) {
	f.calls++
	if f.failed {
		return nil, context.DeadlineExceeded
	}
	return f.subs, nil
}

type fakeSidecar struct {
	subs []tracks.ExternalSubtitle
}

func (f *fakeSidecar) Lookup(mediaTitle string) []tracks.ExternalSubtitle { return f.subs }

func openTestDB(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := db.Migrate(); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func TestSelectAudioRecordsHistory(t *testing.T) {
	db := openTestDB(t)
	svc := NewService(db, nil, nil, nil)

	if err := db.UpsertPolicy(&database.Policy{
		UserID:            "alice",
		PreferredLanguage: "ja",
		SubtitleSource:    tracks.SourceAny,
	}); err != nil {
		t.Fatalf("UpsertPolicy: %v", err)
	}

	trackList := []tracks.Track{
		{ID: 1, Name: "English", Language: "en"},
		{ID: 2, Name: "Japanese", Language: "jpn"},
	}
	id, ok, err := svc.SelectAudio(context.Background(), "alice", "Movie", trackList)
	if err != nil {
		t.Fatalf("SelectAudio: %v", err)
	}
	if !ok || id != 2 {
		t.Fatalf("SelectAudio = (%d, %v), want (2, true)", id, ok)
	}

	records, err := db.ListSelectionHistory("alice", 10, 0)
	if err != nil {
		t.Fatalf("ListSelectionHistory: %v", err)
	}
	if len(records) != 1 || records[0].Kind != database.SelectionKindAudio || records[0].Language != "ja" {
		t.Fatalf("unexpected history: %+v", records)
	}
}

func TestSelectAudioNoMatchLeavesNoHistory(t *testing.T) {
	db := openTestDB(t)
	svc := NewService(db, nil, nil, nil)

	_, ok, err := svc.SelectAudio(context.Background(), "alice", "Movie", []tracks.Track{
		{ID: 1, Name: "French", Language: "fr"},
	})
	if err != nil {
		t.Fatalf("SelectAudio: %v", err)
	}
	if ok {
		t.Fatal("expected no match for default English preference")
	}

	records, _ := db.ListSelectionHistory("alice", 10, 0)
	if len(records) != 0 {
		t.Fatalf("expected empty history, got %+v", records)
	}
}

func TestSelectSubtitleGathersExternalCandidates(t *testing.T) {
	db := openTestDB(t)
	provider := &fakeProvider{subs: []tracks.ExternalSubtitle{
		{ID: "p1", Language: "en", Display: "English (provider)"},
	}}
	local := &fakeSidecar{subs: []tracks.ExternalSubtitle{
		{ID: "sidecar:/subs/Movie.en.srt", Language: "en", Display: "Movie.en.srt"},
	}}
	svc := NewService(db, provider, local, nil)

	if err := db.UpsertPolicy(&database.Policy{
		UserID:            "alice",
		PreferredLanguage: "en",
		SubtitleSource:    tracks.SourceExternal,
		AutoSelect:        true,
	}); err != nil {
		t.Fatalf("UpsertPolicy: %v", err)
	}

	// No internal match, no player-sent externals: sidecar should win since
	// it is merged ahead of the provider.
	result, err := svc.SelectSubtitle(context.Background(), "alice", "Movie", []tracks.Track{
		{ID: 1, Name: "French", Language: "fr"},
	}, nil)
	if err != nil {
		t.Fatalf("SelectSubtitle: %v", err)
	}
	if result.Source != tracks.SelectionExternal || result.Subtitle == nil || result.Subtitle.ID != "sidecar:/subs/Movie.en.srt" {
		t.Fatalf("unexpected result: %+v", result)
	}
	if provider.calls != 1 {
		t.Fatalf("provider calls = %d, want 1", provider.calls)
	}
}

func TestSelectSubtitleProviderFailureDegrades(t *testing.T) {
	db := openTestDB(t)
	provider := &fakeProvider{failed: true}
	svc := NewService(db, provider, nil, nil)

	if err := db.UpsertPolicy(&database.Policy{
		UserID:            "alice",
		PreferredLanguage: "en",
		SubtitleSource:    tracks.SourceAny,
		AutoSelect:        true,
	}); err != nil {
		t.Fatalf("UpsertPolicy: %v", err)
	}

	result, err := svc.SelectSubtitle(context.Background(), "alice", "Movie", []tracks.Track{
		{ID: 7, Name: "English", Language: "en"},
	}, nil)
	if err != nil {
		t.Fatalf("SelectSubtitle should not fail on provider error: %v", err)
	}
	if result.Source != tracks.SelectionInternal || result.TrackID != 7 {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestSelectSubtitleAutoSelectOffSkipsGathering(t *testing.T) {
	db := openTestDB(t)
	provider := &fakeProvider{subs: []tracks.ExternalSubtitle{{ID: "p1", Language: "en", Display: "English"}}}
	svc := NewService(db, provider, nil, nil)

	result, err := svc.SelectSubtitle(context.Background(), "nobody", "Movie", []tracks.Track{
		{ID: 1, Name: "English", Language: "en"},
	}, nil)
	if err != nil {
		t.Fatalf("SelectSubtitle: %v", err)
	}
	if result.Source != tracks.SelectionNone {
		t.Fatalf("expected none with auto-select off, got %+v", result)
	}
	if provider.calls != 0 {
		t.Fatalf("provider should not be consulted when auto-select is off, calls = %d", provider.calls)
	}

	records, _ := db.ListSelectionHistory("nobody", 10, 0)
	if len(records) != 0 {
		t.Fatalf("none selections should not be recorded, got %+v", records)
	}
}

func TestPolicyForUnknownUserUsesDefaults(t *testing.T) {
	db := openTestDB(t)
	svc := NewService(db, nil, nil, nil)

	policy, err := svc.PolicyFor("stranger")
	if err != nil {
		t.Fatalf("PolicyFor: %v", err)
	}
	if policy.AutoSelect {
		t.Error("default policy must not auto-select subtitles")
	}
	if policy.SubtitleSource != tracks.SourceAny {
		t.Errorf("default source = %q, want any", policy.SubtitleSource)
	}
}
