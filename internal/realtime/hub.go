// Package realtime carries the live channel between dashboards and in-store
// players: presence tracking, command routing to a store's player sockets and
// telemetry fan-out to the owning organization's dashboards.
package realtime

import (
	"encoding/json"
	"sync"

	"github.com/rs/zerolog/log"
)

// ClientType classifies a socket once, at handshake. The classification is
// immutable for the life of the connection.
type ClientType string

const (
	ClientPlayer    ClientType = "player"
	ClientDashboard ClientType = "dashboard"
)

// Events sent to dashboards.
const (
	EventStoreStatus       = "store:status"
	EventStoreTrackPlaying = "store:track-playing"
	EventStoreAnnouncement = "store:announcement-played"
	EventStoreOffline      = "store:offline"
	EventContentUpdated    = "content:updated"
)

// Message is the wire envelope of the realtime channel.
type Message struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// NewMessage marshals data into a Message envelope.
func NewMessage(event string, data any) (Message, error) {
	if data == nil {
		return Message{Event: event}, nil
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return Message{}, err
	}
	return Message{Event: event, Data: raw}, nil
}

// Hub owns the set of live connections and their room membership. Player
// sockets join a room keyed by store id, dashboard sockets one keyed by
// organization id. It is a plain injected struct, not package state, so the
// relay can be tested against a hub with fake clients.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]bool
	byStore map[int]map[*Client]bool
	byOrg   map[int]map[*Client]bool
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[*Client]bool),
		byStore: make(map[int]map[*Client]bool),
		byOrg:   make(map[int]map[*Client]bool),
	}
}

// Register adds a classified client to its room.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[c] = true
	switch c.Type {
	case ClientPlayer:
		if h.byStore[c.StoreID] == nil {
			h.byStore[c.StoreID] = make(map[*Client]bool)
		}
		h.byStore[c.StoreID][c] = true
	case ClientDashboard:
		if h.byOrg[c.OrgID] == nil {
			h.byOrg[c.OrgID] = make(map[*Client]bool)
		}
		h.byOrg[c.OrgID][c] = true
	}
	log.Info().
		Str("type", string(c.Type)).
		Int("store_id", c.StoreID).
		Int("organization_id", c.OrgID).
		Int("total_clients", len(h.clients)).
		Msg("realtime client connected")
}

// Unregister removes a client and closes its send channel. Safe to call more
// than once for the same client.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.clients[c] {
		return
	}
	delete(h.clients, c)
	if room := h.byStore[c.StoreID]; room != nil {
		delete(room, c)
		if len(room) == 0 {
			delete(h.byStore, c.StoreID)
		}
	}
	if room := h.byOrg[c.OrgID]; room != nil {
		delete(room, c)
		if len(room) == 0 {
			delete(h.byOrg, c.OrgID)
		}
	}
	close(c.send)
	log.Info().
		Str("type", string(c.Type)).
		Int("total_clients", len(h.clients)).
		Msg("realtime client disconnected")
}

// SendToStore delivers a message to every player socket of one store room.
// Nothing outside that room ever sees the message.
func (h *Hub) SendToStore(storeID int, msg Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.byStore[storeID] {
		c.trySend(msg)
	}
}

// SendToOrg delivers a message to every dashboard socket of one
// organization room. Telemetry never crosses tenants.
func (h *Hub) SendToOrg(orgID int, msg Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.byOrg[orgID] {
		c.trySend(msg)
	}
}

// StoreConnected reports whether at least one player socket is live for the
// store. Transport presence only; the durable is_online flag is separate.
func (h *Hub) StoreConnected(storeID int) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.byStore[storeID]) > 0
}

// PlayerCount returns the number of live player sockets for the store.
func (h *Hub) PlayerCount(storeID int) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.byStore[storeID])
}
