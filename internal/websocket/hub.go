// Waypoint - Travel Photo Map Services
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package websocket

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/waypoint/internal/logging"
	"github.com/tomtom215/waypoint/internal/metrics"
)

// Message types exchanged with clients.
const (
	MessageTypeViewport        = "viewport"
	MessageTypeView            = "view"
	MessageTypeError           = "error"
	MessageTypePing            = "ping"
	MessageTypePong            = "pong"
	MessageTypeDatasetReloaded = "dataset_reloaded"
)

// Message is an outgoing WebSocket message.
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// inbound is an incoming message whose payload is decoded by type.
type inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// ReloadNotice is broadcast after the dataset changes.
type ReloadNotice struct {
	Version   uint64    `json:"version"`
	Locations int       `json:"locations"`
	LoadedAt  time.Time `json:"loaded_at"`
}

// Hub maintains the set of active clients and broadcasts messages to them.
// Clients join and leave directly under the hub lock; only broadcasts go
// through Serve.
type Hub struct {
	clients   map[*Client]bool
	broadcast chan Message
	mu        sync.RWMutex
}

// NewHub creates a Hub. Call Serve to deliver broadcasts.
func NewHub() *Hub {
	return &Hub{
		clients:   make(map[*Client]bool),
		broadcast: make(chan Message, 64),
	}
}

// Serve delivers broadcasts until ctx is canceled, then closes every client.
func (h *Hub) Serve(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return ctx.Err()
		case msg := <-h.broadcast:
			h.broadcastToClients(msg)
		}
	}
}

// String implements fmt.Stringer for supervisor logs.
func (h *Hub) String() string {
	return "websocket-hub"
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// BroadcastReload tells every client the dataset changed.
func (h *Hub) BroadcastReload(notice ReloadNotice) {
	h.Broadcast(Message{Type: MessageTypeDatasetReloaded, Data: notice})
}

// Broadcast queues msg for all clients. Dropped when the queue is full.
func (h *Hub) Broadcast(msg Message) {
	select {
	case h.broadcast <- msg:
	default:
		metrics.WSErrors.WithLabelValues("broadcast_dropped").Inc()
		logging.Warn().Str("message_type", msg.Type).Msg("Broadcast channel full, dropping message")
	}
}

func (h *Hub) add(c *Client) {
	h.mu.Lock()
	h.clients[c] = true
	n := len(h.clients)
	h.mu.Unlock()
	metrics.WSConnections.Inc()
	logging.Debug().Uint64("client_id", c.id).Int("total_clients", n).Msg("WebSocket client connected")
}

func (h *Hub) remove(c *Client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	if ok {
		delete(h.clients, c)
		c.close()
	}
	n := len(h.clients)
	h.mu.Unlock()
	if ok {
		metrics.WSConnections.Dec()
		logging.Debug().Uint64("client_id", c.id).Int("total_clients", n).Msg("WebSocket client disconnected")
	}
}

// sortedClients returns clients in connection order. Callers hold h.mu.
func (h *Hub) sortedClients() []*Client {
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	sort.Slice(clients, func(i, j int) bool { return clients[i].id < clients[j].id })
	return clients
}

func (h *Hub) broadcastToClients(msg Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, c := range h.sortedClients() {
		if !c.enqueue(msg) {
			c.close()
			delete(h.clients, c)
			metrics.WSConnections.Dec()
			metrics.WSErrors.WithLabelValues("slow_consumer").Inc()
		}
	}
}

func (h *Hub) shutdown() {
	h.mu.Lock()
	clients := h.sortedClients()
	for _, c := range clients {
		c.close()
		delete(h.clients, c)
		metrics.WSConnections.Dec()
	}
	h.mu.Unlock()

	logging.Info().
		Str("component", "websocket-hub").
		Int("clients_closed", len(clients)).
		Msg("WebSocket hub stopped")
}
