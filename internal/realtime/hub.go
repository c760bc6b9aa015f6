// Package realtime pushes live events (assistant replies, proposal state,
// voice phases) to connected UI clients over WebSocket.
package realtime

import (
	"context"
	"encoding/json"

	"pookal/internal/logging"
)

// Event is one message pushed to every connected client.
type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

// Event types.
const (
	EventMessage          = "message.created"
	EventProposalCreated  = "proposal.created"
	EventProposalResolved = "proposal.resolved"
	EventVoiceStatus      = "voice.status"
)

// Hub fans events out to all connected clients.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
}

// NewHub creates a hub. Call Run to start it.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 64),
	}
}

// Run owns the client set. It exits when the context is cancelled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				c.close()
				delete(h.clients, c)
			}
			return

		case c := <-h.register:
			h.clients[c] = true
			logging.Debugf("realtime: client connected (%d total)", len(h.clients))

		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				c.close()
				logging.Debugf("realtime: client disconnected (%d total)", len(h.clients))
			}

		case msg := <-h.broadcast:
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					// Slow consumer; drop it rather than block the hub.
					delete(h.clients, c)
					c.close()
				}
			}
		}
	}
}

// Broadcast sends an event to all connected clients. It never blocks the
// caller; with no hub running the event is dropped.
func (h *Hub) Broadcast(evt Event) {
	data, err := json.Marshal(evt)
	if err != nil {
		logging.Errorf("realtime: marshal event: %v", err)
		return
	}
	select {
	case h.broadcast <- data:
	default:
		logging.Warnf("realtime: broadcast buffer full, dropping %s", evt.Type)
	}
}
