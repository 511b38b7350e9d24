// Package sse streams server events (selections, policy changes) to
// dashboard clients over Server-Sent Events.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// EventType identifies an event on the stream.
type EventType string

const (
	EventSelectionMade EventType = "selection_made"
	EventPolicyUpdated EventType = "policy_updated"

	EventSessionConnected    EventType = "session_connected"
	EventSessionDisconnected EventType = "session_disconnected"

	EventHeartbeat EventType = "heartbeat"
)

// Event is one message broadcast to all clients.
type Event struct {
	Type EventType `json:"type"`
	Data any       `json:"data"`
}

// Client is a connected SSE listener.
type Client struct {
	ID       string
	Messages chan []byte
}

// Broker manages SSE client connections and event broadcasting.
type Broker struct {
	clients    map[string]*Client
	register   chan *Client
	unregister chan *Client
	broadcast  chan Event
	done       chan struct{}
	mu         sync.RWMutex
}

// NewBroker creates a broker and starts its dispatch loop.
func NewBroker() *Broker {
	b := &Broker{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan Event, 100),
		done:       make(chan struct{}),
	}
	go b.run()
	return b
}

func (b *Broker) run() {
	heartbeatTicker := time.NewTicker(30 * time.Second)
	defer heartbeatTicker.Stop()

	for {
		select {
		case <-b.done:
			b.mu.Lock()
			for _, client := range b.clients {
				close(client.Messages)
			}
			b.clients = make(map[string]*Client)
			b.mu.Unlock()
			log.Debug().Msg("SSE broker stopped")
			return

		case client := <-b.register:
			b.mu.Lock()
			b.clients[client.ID] = client
			b.mu.Unlock()
			log.Debug().Str("client_id", client.ID).Msg("SSE client connected")

		case client := <-b.unregister:
			b.mu.Lock()
			if _, ok := b.clients[client.ID]; ok {
				delete(b.clients, client.ID)
				close(client.Messages)
			}
			b.mu.Unlock()
			log.Debug().Str("client_id", client.ID).Msg("SSE client disconnected")

		case event := <-b.broadcast:
			data, err := json.Marshal(event)
			if err != nil {
				log.Error().Err(err).Msg("Failed to marshal SSE event")
				continue
			}

			message := formatSSEMessage(string(event.Type), data)

			b.mu.RLock()
			for _, client := range b.clients {
				select {
				case client.Messages <- message:
				default:
					// Client buffer full, skip this message
					log.Warn().Str("client_id", client.ID).Msg("SSE client buffer full, dropping message")
				}
			}
			b.mu.RUnlock()

		case <-heartbeatTicker.C:
			b.Broadcast(Event{Type: EventHeartbeat, Data: map[string]any{"time": time.Now().Unix()}})
		}
	}
}

// Broadcast sends an event to all connected clients.
func (b *Broker) Broadcast(event Event) {
	select {
	case b.broadcast <- event:
	default:
		log.Warn().Str("event_type", string(event.Type)).Msg("SSE broadcast channel full, dropping event")
	}
}

// Stop gracefully shuts down the broker.
func (b *Broker) Stop() {
	close(b.done)
}

// ServeHTTP handles SSE connections.
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "SSE not supported", http.StatusInternalServerError)
		return
	}

	client := &Client{
		ID:       fmt.Sprintf("%p-%d", r, time.Now().UnixNano()),
		Messages: make(chan []byte, 32),
	}

	b.register <- client

	defer func() {
		select {
		case b.unregister <- client:
		case <-b.done:
			// Broker is shutting down, skip unregister
		}
	}()

	initialEvent := Event{
		Type: "connected",
		Data: map[string]any{
			"client_id": client.ID,
			"time":      time.Now().Unix(),
		},
	}
	data, _ := json.Marshal(initialEvent)
	fmt.Fprintf(w, "event: connected\ndata: %s\n\n", data)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case msg, ok := <-client.Messages:
			if !ok {
				return
			}
			_, _ = w.Write(msg)
			flusher.Flush()
		}
	}
}

// ClientCount returns the number of connected clients.
func (b *Broker) ClientCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.clients)
}

func formatSSEMessage(eventType string, data []byte) []byte {
	return fmt.Appendf(nil, "event: %s\ndata: %s\n\n", eventType, data)
}
