package session

import (
	"sync"
	"time"

	"github.com/selectarr/selectarr/internal/tracks"
)

// CachedSelection is the remembered outcome for a user/media pair, used to
// avoid recomputing when a player resends the same inventory.
type CachedSelection struct {
	AudioTrackID int // 0 = none
	Subtitle     tracks.SelectionResult
	CachedAt     time.Time
}

// Cache holds in-memory per-session state for the manager.
type Cache struct {
	mu sync.RWMutex

	// selections caches computed selections. Key: userID:mediaTitle
	selections map[string]*CachedSelection

	// lastProcessed tracks when we last ran selection for a device/media
	// combo. Key: deviceID:mediaTitle
	lastProcessed map[string]time.Time

	// playbackStates tracks session state (playing/paused/stopped) by
	// session key
	playbackStates map[string]string
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{
		selections:     make(map[string]*CachedSelection),
		lastProcessed:  make(map[string]time.Time),
		playbackStates: make(map[string]string),
	}
}

// GetSelection returns the cached selection for a user/media pair.
func (c *Cache) GetSelection(userID, mediaTitle string) (*CachedSelection, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	sel, ok := c.selections[cacheKey(userID, mediaTitle)]
	return sel, ok
}

// SetSelection caches a computed selection.
func (c *Cache) SetSelection(userID, mediaTitle string, audioTrackID int, subtitle tracks.SelectionResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selections[cacheKey(userID, mediaTitle)] = &CachedSelection{
		AudioTrackID: audioTrackID,
		Subtitle:     subtitle,
		CachedAt:     time.Now(),
	}
}

// InvalidateUser drops cached selections for a user, e.g. after a policy
// change.
func (c *Cache) InvalidateUser(userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	prefix := userID + ":"
	for key := range c.selections {
		if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			delete(c.selections, key)
		}
	}
}

// ShouldProcess checks whether enough time has passed since the last run for
// this device/media combo (debounce). A positive answer claims the slot.
func (c *Cache) ShouldProcess(deviceKey, mediaTitle string, minInterval time.Duration) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := deviceKey + ":" + mediaTitle
	lastTime, exists := c.lastProcessed[key]
	if !exists || time.Since(lastTime) >= minInterval {
		c.lastProcessed[key] = time.Now()
		return true
	}
	return false
}

// GetPlaybackState returns the cached state for a session key.
func (c *Cache) GetPlaybackState(sessionKey string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	state, ok := c.playbackStates[sessionKey]
	return state, ok
}

// SetPlaybackState updates the cached state; "stopped" removes the entry.
func (c *Cache) SetPlaybackState(sessionKey, state string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if state == "stopped" {
		delete(c.playbackStates, sessionKey)
	} else {
		c.playbackStates[sessionKey] = state
	}
}

// CleanupExpired removes entries older than maxAge from all caches.
func (c *Cache) CleanupExpired(maxAge time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()

	for key, sel := range c.selections {
		if now.Sub(sel.CachedAt) > maxAge {
			delete(c.selections, key)
		}
	}
	for key, processedAt := range c.lastProcessed {
		if now.Sub(processedAt) > maxAge {
			delete(c.lastProcessed, key)
		}
	}
}

// Clear removes all entries.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selections = make(map[string]*CachedSelection)
	c.lastProcessed = make(map[string]time.Time)
	c.playbackStates = make(map[string]string)
}

func cacheKey(userID, mediaTitle string) string {
	return userID + ":" + mediaTitle
}
