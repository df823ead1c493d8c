// Package websocket pushes live attendance events to gym dashboards.
// Each connection subscribes to a single gym's feed.
package websocket

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"
)

// Message is a real-time attendance event delivered to dashboard clients.
type Message struct {
	Type       string    `json:"type"` // attendance_check_in, attendance_check_out
	GymID      string    `json:"gym_id"`
	MemberID   string    `json:"member_id"`
	MemberName string    `json:"member_name,omitempty"`
	At         time.Time `json:"at"`
}

// CheckInMessage builds the event broadcast when a member scans in.
func CheckInMessage(gymID, memberID, memberName string, at time.Time) Message {
	return Message{Type: "attendance_check_in", GymID: gymID, MemberID: memberID, MemberName: memberName, At: at}
}

// CheckOutMessage builds the event broadcast when a member scans out.
func CheckOutMessage(gymID, memberID, memberName string, at time.Time) Message {
	return Message{Type: "attendance_check_out", GymID: gymID, MemberID: memberID, MemberName: memberName, At: at}
}

// Hub maintains the set of active clients grouped by gym.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	logger  *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
		logger:  logger,
	}
}

// Register adds a client to the hub.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

// Unregister removes a client from the hub and closes its send channel.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

// Broadcast delivers the message to every client watching its gym.
func (h *Hub) Broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("marshal broadcast", "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients {
		if c.gymID != msg.GymID {
			continue
		}
		select {
		case c.send <- data:
		default:
			// Client buffer full — drop message to avoid blocking
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
