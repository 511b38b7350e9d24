package database

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/selectarr/selectarr/internal/tracks"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")

	db, err := New(dbPath)
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.Migrate(); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func TestPolicyUpsertAndGet(t *testing.T) {
	db := openTestDB(t)

	if p, err := db.GetPolicy("alice"); err != nil || p != nil {
		t.Fatalf("expected no policy yet, got %+v err=%v", p, err)
	}

	policy := &Policy{
		UserID:            "alice",
		PreferredLanguage: "ja",
		SubtitleSource:    tracks.SourceExternal,
		AutoSelect:        true,
	}
	if err := db.UpsertPolicy(policy); err != nil {
		t.Fatalf("UpsertPolicy: %v", err)
	}

	got, err := db.GetPolicy("alice")
	if err != nil {
		t.Fatalf("GetPolicy: %v", err)
	}
	if got == nil || got.PreferredLanguage != "ja" || got.SubtitleSource != tracks.SourceExternal || !got.AutoSelect {
		t.Fatalf("unexpected policy: %+v", got)
	}

	// Upsert replaces in place
	policy.PreferredLanguage = "fr"
	policy.AutoSelect = false
	if err := db.UpsertPolicy(policy); err != nil {
		t.Fatalf("UpsertPolicy update: %v", err)
	}
	got, err = db.GetPolicy("alice")
	if err != nil {
		t.Fatalf("GetPolicy after update: %v", err)
	}
	if got.PreferredLanguage != "fr" || got.AutoSelect {
		t.Fatalf("update not applied: %+v", got)
	}
}

func TestPolicyRejectsInvalidSource(t *testing.T) {
	db := openTestDB(t)

	err := db.UpsertPolicy(&Policy{UserID: "bob", SubtitleSource: "sideways"})
	if err == nil {
		t.Fatal("expected error for invalid subtitle source")
	}
}

func TestSelectionHistoryRoundTrip(t *testing.T) {
	db := openTestDB(t)

	trackID := 4
	if err := db.CreateSelectionRecord(&SelectionRecord{
		UserID:     "alice",
		MediaTitle: "Movie",
		Kind:       SelectionKindAudio,
		Source:     "internal",
		TrackID:    &trackID,
		Language:   "en",
	}); err != nil {
		t.Fatalf("CreateSelectionRecord: %v", err)
	}

	subID := "x1"
	if err := db.CreateSelectionRecord(&SelectionRecord{
		UserID:     "bob",
		MediaTitle: "Show",
		Kind:       SelectionKindSubtitle,
		Source:     "external",
		SubtitleID: &subID,
		Language:   "ja",
	}); err != nil {
		t.Fatalf("CreateSelectionRecord: %v", err)
	}

	all, err := db.ListSelectionHistory("", 10, 0)
	if err != nil {
		t.Fatalf("ListSelectionHistory: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("got %d records, want 2", len(all))
	}

	alice, err := db.ListSelectionHistory("alice", 10, 0)
	if err != nil {
		t.Fatalf("ListSelectionHistory filtered: %v", err)
	}
	if len(alice) != 1 || alice[0].TrackID == nil || *alice[0].TrackID != 4 {
		t.Fatalf("unexpected filtered records: %+v", alice)
	}
}

func TestPruneSelectionHistory(t *testing.T) {
	db := openTestDB(t)

	if err := db.CreateSelectionRecord(&SelectionRecord{
		UserID: "alice", MediaTitle: "Old", Kind: SelectionKindAudio, Source: "internal", Language: "en",
	}); err != nil {
		t.Fatalf("CreateSelectionRecord: %v", err)
	}
	// Age the record beyond the retention window
	if _, err := db.Exec(`UPDATE selection_history SET created_at = ?`, time.Now().Add(-48*time.Hour)); err != nil {
		t.Fatalf("failed to age record: %v", err)
	}
	if err := db.CreateSelectionRecord(&SelectionRecord{
		UserID: "alice", MediaTitle: "New", Kind: SelectionKindAudio, Source: "internal", Language: "en",
	}); err != nil {
		t.Fatalf("CreateSelectionRecord: %v", err)
	}

	removed, err := db.PruneSelectionHistory(24 * time.Hour)
	if err != nil {
		t.Fatalf("PruneSelectionHistory: %v", err)
	}
	if removed != 1 {
		t.Fatalf("removed %d records, want 1", removed)
	}

	left, err := db.ListSelectionHistory("", 10, 0)
	if err != nil {
		t.Fatalf("ListSelectionHistory: %v", err)
	}
	if len(left) != 1 || left[0].MediaTitle != "New" {
		t.Fatalf("unexpected surviving records: %+v", left)
	}
}

func TestDeviceLifecycle(t *testing.T) {
	db := openTestDB(t)

	device := &Device{Name: "living-room-tv", APIKey: "abc123", Enabled: true}
	if err := db.CreateDevice(device); err != nil {
		t.Fatalf("CreateDevice: %v", err)
	}
	if device.ID == 0 {
		t.Fatal("expected device ID to be set")
	}

	got, err := db.GetDeviceByAPIKey("abc123")
	if err != nil {
		t.Fatalf("GetDeviceByAPIKey: %v", err)
	}
	if got == nil || got.Name != "living-room-tv" {
		t.Fatalf("unexpected device: %+v", got)
	}

	if got, err := db.GetDeviceByAPIKey("wrong"); err != nil || got != nil {
		t.Fatalf("expected nil for unknown key, got %+v err=%v", got, err)
	}

	if err := db.TouchDevice(device.ID); err != nil {
		t.Fatalf("TouchDevice: %v", err)
	}
	got, err = db.GetDeviceByAPIKey("abc123")
	if err != nil {
		t.Fatalf("GetDeviceByAPIKey after touch: %v", err)
	}
	if got.LastSeenAt == nil {
		t.Fatal("expected last seen to be set after touch")
	}

	if err := db.DeleteDevice(device.ID); err != nil {
		t.Fatalf("DeleteDevice: %v", err)
	}
	if count, err := db.CountDevices(); err != nil || count != 0 {
		t.Fatalf("count = %d err=%v, want 0", count, err)
	}
}

func TestSettingsDefaults(t *testing.T) {
	db := openTestDB(t)

	if err := db.InitializeDefaults(); err != nil {
		t.Fatalf("InitializeDefaults: %v", err)
	}

	val, err := db.GetSetting("history.retention_days")
	if err != nil {
		t.Fatalf("GetSetting: %v", err)
	}
	if val != "30" {
		t.Fatalf("history.retention_days = %q, want 30", val)
	}

	// Existing values survive re-initialization
	if err := db.SetSetting("history.retention_days", "7"); err != nil {
		t.Fatalf("SetSetting: %v", err)
	}
	if err := db.InitializeDefaults(); err != nil {
		t.Fatalf("InitializeDefaults again: %v", err)
	}
	val, _ = db.GetSetting("history.retention_days")
	if val != "7" {
		t.Fatalf("override lost, got %q", val)
	}
}
