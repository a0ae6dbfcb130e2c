// Waypoint - Travel Photo Map Services
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package websocket

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"

	"github.com/tomtom215/waypoint/internal/locations"
	"github.com/tomtom215/waypoint/internal/logging"
	"github.com/tomtom215/waypoint/internal/mapview"
	"github.com/tomtom215/waypoint/internal/metrics"
	"github.com/tomtom215/waypoint/internal/validation"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 16 * 1024
	sendBuffer     = 32
)

var clientIDCounter atomic.Uint64

// Viewer builds a map view for a viewport. Satisfied by *mapview.Service.
type Viewer interface {
	View(ctx context.Context, req mapview.Request) (mapview.Response, error)
}

// Client is one viewport session.
type Client struct {
	id     uint64
	hub    *Hub
	conn   *websocket.Conn
	viewer Viewer
	ctx    context.Context

	mu     sync.Mutex
	closed bool
	send   chan Message
}

// NewClient wraps an upgraded connection. ctx carries the request logger and
// must not be canceled when the HTTP handler returns.
func NewClient(ctx context.Context, hub *Hub, conn *websocket.Conn, viewer Viewer) *Client {
	return &Client{
		id:     clientIDCounter.Add(1),
		hub:    hub,
		conn:   conn,
		viewer: viewer,
		ctx:    ctx,
		send:   make(chan Message, sendBuffer),
	}
}

// ID returns the client's connection-ordered identifier.
func (c *Client) ID() uint64 {
	return c.id
}

// Start registers the client with the hub and starts both pumps.
func (c *Client) Start() {
	c.hub.add(c)
	go c.writePump()
	go c.readPump()
}

// enqueue queues msg unless the client is closed or its buffer is full.
func (c *Client) enqueue(msg Message) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

// close stops the write pump. Only the hub calls it.
func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

func (c *Client) readPump() {
	defer func() {
		c.hub.remove(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		logging.Ctx(c.ctx).Error().Err(err).Msg("Failed to set read deadline")
		return
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				metrics.WSErrors.WithLabelValues("read").Inc()
				logging.Ctx(c.ctx).Warn().Err(err).Msg("Unexpected WebSocket close")
			}
			return
		}
		metrics.WSMessagesReceived.Inc()

		if reply, ok := c.handle(data); ok && !c.enqueue(reply) {
			metrics.WSErrors.WithLabelValues("send_buffer_full").Inc()
		}
	}
}

// handle decodes one inbound message and returns the reply, if any.
func (c *Client) handle(data []byte) (Message, bool) {
	var msg inbound
	if err := json.Unmarshal(data, &msg); err != nil {
		metrics.WSErrors.WithLabelValues("decode").Inc()
		return errorMessage("BAD_REQUEST", "Malformed message"), true
	}

	switch msg.Type {
	case MessageTypePing:
		return Message{Type: MessageTypePong}, true
	case MessageTypeViewport:
		return c.view(msg.Data), true
	default:
		return errorMessage("BAD_REQUEST", "Unknown message type: "+msg.Type), true
	}
}

func (c *Client) view(data json.RawMessage) Message {
	var req mapview.Request
	if len(data) == 0 {
		return errorMessage("BAD_REQUEST", "Viewport message without data")
	}
	if err := json.Unmarshal(data, &req); err != nil {
		metrics.WSErrors.WithLabelValues("decode").Inc()
		return errorMessage("BAD_REQUEST", "Malformed viewport")
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		return Message{Type: MessageTypeError, Data: verr.ToAPIError()}
	}

	resp, err := c.viewer.View(c.ctx, req)
	switch {
	case errors.Is(err, locations.ErrNotLoaded):
		return errorMessage("SERVICE_UNAVAILABLE", "Dataset not loaded yet")
	case err != nil:
		logging.Ctx(c.ctx).Error().Err(err).Msg("Failed to build map view")
		return errorMessage("INTERNAL_ERROR", "Failed to build map view")
	}
	return Message{Type: MessageTypeView, Data: resp}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			data, err := json.Marshal(msg)
			if err != nil {
				metrics.WSErrors.WithLabelValues("encode").Inc()
				logging.Ctx(c.ctx).Error().Err(err).Str("message_type", msg.Type).Msg("Failed to encode message")
				continue
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				metrics.WSErrors.WithLabelValues("write").Inc()
				return
			}
			metrics.WSMessagesSent.Inc()

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func errorMessage(code, message string) Message {
	return Message{Type: MessageTypeError, Data: &validation.APIError{Code: code, Message: message}}
}
