// Package ws is the real-time channel: one Hub tracking every connected
// client, per-user fan-out, and callbacks into the services for client ops.
package ws

import (
	"encoding/json"
	"log"
	"sync"
	"sync/atomic"
)

// EventPublisher is what services need from the hub.
type EventPublisher interface {
	BroadcastToUser(userID string, event Event)
	BroadcastToUsers(userIDs []string, event Event)
	IsOnline(userID string) bool
}

// Hub keeps userID → set of clients; one user may have several devices.
// register/unregister go through channels so that Run owns membership
// changes, while broadcasts only take the read lock.
type Hub struct {
	clients map[string]map[*Client]bool
	mu      sync.RWMutex

	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	closeOnce  sync.Once

	seq atomic.Int64

	onUserFirstConnect      func(userID string)
	onUserFullyDisconnected func(userID string)
	onTyping                func(userID, conversationID string)
	onLocationUpdate        func(userID string, data LocationData)
}

// NewHub returns an empty hub. Connections register only while Run is going.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// OnUserFirstConnect runs when a user goes from zero to one connection.
func (h *Hub) OnUserFirstConnect(fn func(userID string)) { h.onUserFirstConnect = fn }

// OnUserFullyDisconnected runs when a user's last connection closes.
func (h *Hub) OnUserFullyDisconnected(fn func(userID string)) { h.onUserFullyDisconnected = fn }

// OnTyping runs for each typing op; the callback decides who may see it.
func (h *Hub) OnTyping(fn func(userID, conversationID string)) { h.onTyping = fn }

// OnLocationUpdate runs for each location_update op.
func (h *Hub) OnLocationUpdate(fn func(userID string, data LocationData)) { h.onLocationUpdate = fn }

// Run processes register/unregister until Shutdown.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case <-h.done:
			return
		}
	}
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	first := false
	if _, ok := h.clients[client.userID]; !ok {
		h.clients[client.userID] = make(map[*Client]bool)
		first = true
	}
	h.clients[client.userID][client] = true
	count := len(h.clients[client.userID])
	h.mu.Unlock()

	log.Printf("[ws] client connected: user=%s (connections: %d)", client.userID, count)

	if first && h.onUserFirstConnect != nil {
		go h.onUserFirstConnect(client.userID)
	}
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	last := false
	if clients, ok := h.clients[client.userID]; ok {
		if _, exists := clients[client]; exists {
			delete(clients, client)
			client.closed = true
			close(client.send)
			if len(clients) == 0 {
				delete(h.clients, client.userID)
				last = true
			}
		}
	}
	h.mu.Unlock()

	if last {
		log.Printf("[ws] user fully disconnected: %s", client.userID)
		if h.onUserFullyDisconnected != nil {
			go h.onUserFullyDisconnected(client.userID)
		}
	}
}

// BroadcastToUser sends event to every connection of userID.
func (h *Hub) BroadcastToUser(userID string, event Event) {
	h.BroadcastToUsers([]string{userID}, event)
}

// BroadcastToUsers sends one event (one seq) to every connection of each
// listed user. Clients whose buffer is full are dropped.
func (h *Hub) BroadcastToUsers(userIDs []string, event Event) {
	event.Seq = h.seq.Add(1)
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("[ws] failed to marshal %s event: %v", event.Op, err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	seen := make(map[string]bool, len(userIDs))
	for _, userID := range userIDs {
		if seen[userID] {
			continue
		}
		seen[userID] = true
		for client := range h.clients[userID] {
			h.deliver(client, data)
		}
	}
}

// deliver must be called with h.mu held.
func (h *Hub) deliver(client *Client, data []byte) {
	select {
	case client.send <- data:
	default:
		log.Printf("[ws] send buffer full for user %s, dropping connection", client.userID)
		go h.drop(client)
	}
}

func (h *Hub) drop(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

func (h *Hub) IsOnline(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID]) > 0
}

// OnlineUserIDs lists users with at least one connection.
func (h *Hub) OnlineUserIDs() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	ids := make([]string, 0, len(h.clients))
	for userID := range h.clients {
		ids = append(ids, userID)
	}
	return ids
}

// Shutdown closes every connection and stops Run.
func (h *Hub) Shutdown() {
	h.closeOnce.Do(func() {
		close(h.done)

		h.mu.Lock()
		defer h.mu.Unlock()
		for _, clients := range h.clients {
			for client := range clients {
				client.closed = true
				close(client.send)
			}
		}
		h.clients = make(map[string]map[*Client]bool)
		log.Println("[ws] hub shut down, all connections closed")
	})
}
