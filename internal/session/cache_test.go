package session

import (
	"testing"
	"time"

	"github.com/selectarr/selectarr/internal/tracks"
)

func TestCacheSelectionRoundTrip(t *testing.T) {
	c := NewCache()

	if _, ok := c.GetSelection("u1", "Movie"); ok {
		t.Fatal("expected miss on empty cache")
	}

	c.SetSelection("u1", "Movie", 3, tracks.SelectionResult{Source: tracks.SelectionInternal, TrackID: 5})
	sel, ok := c.GetSelection("u1", "Movie")
	if !ok || sel.AudioTrackID != 3 || sel.Subtitle.TrackID != 5 {
		t.Fatalf("unexpected cached selection: %+v ok=%v", sel, ok)
	}
}

func TestCacheInvalidateUser(t *testing.T) {
	c := NewCache()
	c.SetSelection("u1", "Movie", 1, tracks.SelectionResult{})
	c.SetSelection("u1", "Show", 2, tracks.SelectionResult{})
	c.SetSelection("u2", "Movie", 3, tracks.SelectionResult{})

	c.InvalidateUser("u1")

	if _, ok := c.GetSelection("u1", "Movie"); ok {
		t.Error("u1 Movie should be invalidated")
	}
	if _, ok := c.GetSelection("u1", "Show"); ok {
		t.Error("u1 Show should be invalidated")
	}
	if _, ok := c.GetSelection("u2", "Movie"); !ok {
		t.Error("u2 Movie should survive")
	}
}

func TestCacheDebounce(t *testing.T) {
	c := NewCache()

	if !c.ShouldProcess("dev1", "Movie", time.Minute) {
		t.Fatal("first call should process")
	}
	if c.ShouldProcess("dev1", "Movie", time.Minute) {
		t.Fatal("second call within interval should be debounced")
	}
	if !c.ShouldProcess("dev2", "Movie", time.Minute) {
		t.Fatal("different device should process")
	}
	if !c.ShouldProcess("dev1", "Movie", 0) {
		t.Fatal("zero interval should always process")
	}
}

func TestCachePlaybackState(t *testing.T) {
	c := NewCache()

	c.SetPlaybackState("s1", "playing")
	if state, ok := c.GetPlaybackState("s1"); !ok || state != "playing" {
		t.Fatalf("state = %q ok=%v", state, ok)
	}

	c.SetPlaybackState("s1", "stopped")
	if _, ok := c.GetPlaybackState("s1"); ok {
		t.Fatal("stopped session should be removed")
	}
}

func TestCacheCleanupExpired(t *testing.T) {
	c := NewCache()
	c.SetSelection("u1", "Movie", 1, tracks.SelectionResult{})
	c.selections["u1:Movie"].CachedAt = time.Now().Add(-2 * time.Hour)
	c.SetSelection("u1", "Show", 2, tracks.SelectionResult{})

	c.CleanupExpired(time.Hour)

	if _, ok := c.GetSelection("u1", "Movie"); ok {
		t.Error("expired entry should be removed")
	}
	if _, ok := c.GetSelection("u1", "Show"); !ok {
		t.Error("fresh entry should survive")
	}
}
