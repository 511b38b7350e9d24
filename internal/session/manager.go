// Package session accepts websocket connections from paired player devices,
// runs track selection as playback events arrive, and pushes decisions back.
package session

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/selectarr/selectarr/internal/config"
	"github.com/selectarr/selectarr/internal/database"
	"github.com/selectarr/selectarr/internal/selection"
	"github.com/selectarr/selectarr/internal/tracks"
	"github.com/selectarr/selectarr/internal/web/sse"
)

// Message types on the session socket.
const (
	MsgPlaybackStarted = "playback_started"
	MsgPlaybackState   = "playback_state"
	MsgPolicyChanged   = "policy_changed"
	MsgApplySelection  = "apply_selection"
	MsgError           = "error"
)

// InboundMessage is what a player sends over the socket.
type InboundMessage struct {
	Type       string `json:"type"`
	SessionKey string `json:"sessionKey"`
	UserID     string `json:"userId"`
	MediaTitle string `json:"mediaTitle"`
	State      string `json:"state"`

	AudioTracks       []tracks.Track            `json:"audioTracks"`
	SubtitleTracks    []tracks.Track            `json:"subtitleTracks"`
	ExternalSubtitles []tracks.ExternalSubtitle `json:"externalSubtitles"`
}

// ApplySelection is pushed back to a player after a selection runs.
type ApplySelection struct {
	Type          string                 `json:"type"`
	SessionKey    string                 `json:"sessionKey"`
	AudioTrackID  int                    `json:"audioTrackId"`
	AudioSelected bool                   `json:"audioSelected"`
	Subtitle      tracks.SelectionResult `json:"subtitle"`
}

// ErrorMessage reports a per-message failure without dropping the socket.
type ErrorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// conn is one connected player.
type conn struct {
	ws     *websocket.Conn
	device *database.Device

	// writeMu serializes writes; gorilla allows one concurrent writer only.
	writeMu sync.Mutex
}

func (c *conn) writeJSON(v any) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.ws.WriteJSON(v)
}

func (c *conn) ping() error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second))
}

// Manager owns the websocket sessions and the per-session cache.
type Manager struct {
	selector *selection.Service
	loader   *config.Loader
	broker   *sse.Broker
	cache    *Cache
	upgrader websocket.Upgrader

	mu    sync.RWMutex
	conns map[*conn]struct{}

	running bool
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewManager creates a session manager.
func NewManager(selector *selection.Service, loader *config.Loader, broker *sse.Broker) *Manager {
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		selector: selector,
		loader:   loader,
		broker:   broker,
		cache:    NewCache(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Device auth happened in middleware; origin checks don't apply
			// to player integrations.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		conns:  make(map[*conn]struct{}),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start launches the cache cleanup loop.
func (m *Manager) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return
	}
	m.running = true

	m.wg.Add(1)
	go m.runCacheCleanup()
	log.Info().Msg("Session manager started")
}

// Stop closes all sessions and stops background work.
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	m.running = false
	for c := range m.conns {
		c.ws.Close()
	}
	m.conns = make(map[*conn]struct{})
	m.mu.Unlock()

	m.cancel()
	m.wg.Wait()
	log.Info().Msg("Session manager stopped")
}

// InvalidateUser drops cached selections for a user after a policy change.
func (m *Manager) InvalidateUser(userID string) {
	m.cache.InvalidateUser(userID)
}

// SessionCount returns the number of connected players.
func (m *Manager) SessionCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.conns)
}

// HandleSession upgrades an authenticated request to a websocket and serves
// it until the player disconnects. The caller supplies the device resolved by
// the auth middleware.
func (m *Manager) HandleSession(device *database.Device, w http.ResponseWriter, r *http.Request) {
	if device == nil {
		http.Error(w, "device authentication required", http.StatusUnauthorized)
		return
	}

	ws, err := m.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("Websocket upgrade failed")
		return
	}

	c := &conn{ws: ws, device: device}

	m.mu.Lock()
	m.conns[c] = struct{}{}
	m.mu.Unlock()

	if m.broker != nil {
		m.broker.Broadcast(sse.Event{Type: sse.EventSessionConnected, Data: map[string]any{
			"device": device.Name,
		}})
	}
	log.Info().Str("device", device.Name).Msg("Player session connected")

	m.wg.Add(1)
	go m.pingLoop(c)

	m.readLoop(c)

	m.mu.Lock()
	delete(m.conns, c)
	m.mu.Unlock()
	ws.Close()

	if m.broker != nil {
		m.broker.Broadcast(sse.Event{Type: sse.EventSessionDisconnected, Data: map[string]any{
			"device": device.Name,
		}})
	}
	log.Info().Str("device", device.Name).Msg("Player session disconnected")
}

func (m *Manager) readLoop(c *conn) {
	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Debug().Err(err).Str("device", c.device.Name).Msg("Session read error")
			}
			return
		}

		var msg InboundMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			c.writeJSON(ErrorMessage{Type: MsgError, Message: "invalid message"})
			continue
		}

		m.handleMessage(c, msg)
	}
}

func (m *Manager) handleMessage(c *conn, msg InboundMessage) {
	switch msg.Type {
	case MsgPlaybackStarted:
		m.handlePlaybackStarted(c, msg)

	case MsgPlaybackState:
		m.cache.SetPlaybackState(msg.SessionKey, msg.State)

	case MsgPolicyChanged:
		m.cache.InvalidateUser(msg.UserID)

	default:
		c.writeJSON(ErrorMessage{Type: MsgError, Message: "unknown message type"})
	}
}

// handlePlaybackStarted runs selection for a new playback, debounced per
// device/media so rapid repeat notifications don't hammer the provider.
func (m *Manager) handlePlaybackStarted(c *conn, msg InboundMessage) {
	if msg.UserID == "" || msg.MediaTitle == "" {
		c.writeJSON(ErrorMessage{Type: MsgError, Message: "userId and mediaTitle are required"})
		return
	}

	debounce := m.loader.DurationSeconds("session.debounce_seconds", 5)
	if !m.cache.ShouldProcess(c.device.APIKey, msg.MediaTitle, debounce) {
		log.Debug().
			Str("device", c.device.Name).
			Str("media", msg.MediaTitle).
			Msg("Skipping rapid playback notification (debounced)")
		return
	}

	m.cache.SetPlaybackState(msg.SessionKey, "playing")

	ctx, cancel := context.WithTimeout(m.ctx, config.GetTimeouts().Selection)
	defer cancel()

	audioID, audioOK, err := m.selector.SelectAudio(ctx, msg.UserID, msg.MediaTitle, msg.AudioTracks)
	if err != nil {
		log.Error().Err(err).Str("user", msg.UserID).Msg("Audio selection failed")
		c.writeJSON(ErrorMessage{Type: MsgError, Message: "audio selection failed"})
		return
	}

	subtitle, err := m.selector.SelectSubtitle(ctx, msg.UserID, msg.MediaTitle, msg.SubtitleTracks, msg.ExternalSubtitles)
	if err != nil {
		log.Error().Err(err).Str("user", msg.UserID).Msg("Subtitle selection failed")
		c.writeJSON(ErrorMessage{Type: MsgError, Message: "subtitle selection failed"})
		return
	}

	m.cache.SetSelection(msg.UserID, msg.MediaTitle, audioID, subtitle)

	c.writeJSON(ApplySelection{
		Type:          MsgApplySelection,
		SessionKey:    msg.SessionKey,
		AudioTrackID:  audioID,
		AudioSelected: audioOK,
		Subtitle:      subtitle,
	})
}

func (m *Manager) pingLoop(c *conn) {
	defer m.wg.Done()

	ticker := time.NewTicker(config.GetTimeouts().WebSocketPing)
	defer ticker.Stop()

	for {
		select {
		case <-m.ctx.Done():
			return
		case <-ticker.C:
			if err := c.ping(); err != nil {
				c.ws.Close()
				return
			}
		}
	}
}

func (m *Manager) runCacheCleanup() {
	defer m.wg.Done()

	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-m.ctx.Done():
			return
		case <-ticker.C:
			expiry := time.Duration(m.loader.Int("session.cache_expiry_minutes", 60)) * time.Minute
			m.cache.CleanupExpired(expiry)
		}
	}
}
