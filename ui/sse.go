package ui

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"

	"github.com/google/uuid"
)

// ViewEvent represents one view update pushed to the page: a chunk of card
// markup, a busy toggle, the empty indicator or the load-more affordance.
type ViewEvent struct {
	Type    string `json:"type"`
	HTML    string `json:"html,omitempty"`
	Busy    bool   `json:"busy,omitempty"`
	Visible bool   `json:"visible,omitempty"`
	Shown   int    `json:"shown,omitempty"`
	Total   int    `json:"total,omitempty"`
}

type sseClient struct {
	id      string
	channel chan ViewEvent
}

// Hub manages Server-Sent Events for live card rendering. The app serves a
// single local session, so every connected client sees every event.
type Hub struct {
	clients    map[chan ViewEvent]string
	clientsMu  sync.RWMutex
	register   chan sseClient
	unregister chan sseClient
	broadcast  chan ViewEvent
}

// NewHub creates an SSE hub and starts its dispatch loop.
func NewHub() *Hub {
	hub := &Hub{
		clients:    make(map[chan ViewEvent]string),
		register:   make(chan sseClient, 10),
		unregister: make(chan sseClient, 10),
		broadcast:  make(chan ViewEvent, 100),
	}

	go hub.run()
	return hub
}

// run processes hub operations
func (h *Hub) run() {
	for {
		select {
		case client := <-h.register:
			h.clientsMu.Lock()
			h.clients[client.channel] = client.id
			log.Printf("[SSE] Client %s registered (total clients: %d)", client.id, len(h.clients))
			h.clientsMu.Unlock()

		case client := <-h.unregister:
			h.clientsMu.Lock()
			if _, exists := h.clients[client.channel]; exists {
				delete(h.clients, client.channel)
				close(client.channel)
				log.Printf("[SSE] Client %s unregistered (remaining clients: %d)", client.id, len(h.clients))
			}
			h.clientsMu.Unlock()

		case event := <-h.broadcast:
			h.clientsMu.RLock()
			for clientChan, id := range h.clients {
				select {
				case clientChan <- event:
					// Event sent successfully
				default:
					// Client channel is full, skip
					log.Printf("[SSE] Client %s channel full, skipping event %s", id, event.Type)
				}
			}
			h.clientsMu.RUnlock()
		}
	}
}

// Broadcast sends an event to every connected client.
func (h *Hub) Broadcast(event ViewEvent) {
	select {
	case h.broadcast <- event:
	default:
		log.Printf("[SSE] Broadcast channel full, dropping event: %s", event.Type)
	}
}

// HandleSSE handles the Server-Sent Events endpoint.
func (h *Hub) HandleSSE(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	client := sseClient{
		id:      uuid.New().String()[:8],
		channel: make(chan ViewEvent, 32),
	}
	h.register <- client
	defer func() { h.unregister <- client }()

	flusher.Flush()

	for {
		select {
		case event, open := <-client.channel:
			if !open {
				return
			}
			payload, err := json.Marshal(event)
			if err != nil {
				log.Printf("[SSE] Failed to encode event %s: %v", event.Type, err)
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", payload)
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}
