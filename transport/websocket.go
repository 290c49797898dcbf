// Copyright 2026 The gomonaco Authors
// SPDX-License-Identifier: Apache-2.0

package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Compile-time interface check.
var _ Channel = (*WebSocketChannel)(nil)

// writeControlTimeout bounds the best-effort close handshake so that
// Close never hangs on a dead peer.
const writeControlTimeout = time.Second

// WebSocketChannel carries events as JSON text frames over a
// websocket connection. One frame per event: {"name": ..., "value": ...}
// with value holding the JSON-encoded payload.
type WebSocketChannel struct {
	conn   *websocket.Conn
	logger *slog.Logger

	// writeMu serializes writes; gorilla connections support one
	// concurrent writer.
	writeMu sync.Mutex

	mu      sync.Mutex
	handler Handler

	closeOnce sync.Once
	done      chan struct{}
}

// NewWebSocketChannel wraps an upgraded websocket connection. The
// caller must pump inbound traffic by calling ReadLoop (after Bind).
// A nil logger falls back to slog.Default().
func NewWebSocketChannel(conn *websocket.Conn, logger *slog.Logger) *WebSocketChannel {
	if logger == nil {
		logger = slog.Default()
	}
	return &WebSocketChannel{
		conn:   conn,
		logger: logger,
		done:   make(chan struct{}),
	}
}

// Send marshals the payload and writes one event frame. A context
// deadline, when present, bounds the write.
func (c *WebSocketChannel) Send(ctx context.Context, name string, payload any) error {
	value, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("transport: marshal %q payload: %w", name, err)
	}
	frame, err := json.Marshal(Event{Name: name, Value: string(value)})
	if err != nil {
		return fmt.Errorf("transport: marshal %q frame: %w", name, err)
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	deadline := time.Time{}
	if d, ok := ctx.Deadline(); ok {
		deadline = d
	}
	if err := c.conn.SetWriteDeadline(deadline); err != nil {
		return fmt.Errorf("transport: set write deadline: %w", err)
	}
	if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
		return fmt.Errorf("transport: send %q: %w", name, err)
	}
	return nil
}

// Bind registers the inbound handler.
func (c *WebSocketChannel) Bind(handler Handler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handler = handler
}

// Close sends a best-effort close frame and tears down the
// connection. Idempotent.
func (c *WebSocketChannel) Close() error {
	c.closeOnce.Do(func() {
		message := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		c.conn.WriteControl(websocket.CloseMessage, message, time.Now().Add(writeControlTimeout))
		c.conn.Close()
		close(c.done)
	})
	return nil
}

// Done is closed once the channel has been closed (locally or by the
// read loop observing a peer disconnect).
func (c *WebSocketChannel) Done() <-chan struct{} {
	return c.done
}

// ReadLoop reads frames and delivers them to the bound handler, one
// at a time, until the connection fails or is closed. It returns nil
// on a normal close and the read error otherwise. The channel is
// closed before returning either way.
func (c *WebSocketChannel) ReadLoop() error {
	defer c.Close()

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			select {
			case <-c.done:
				return nil
			default:
			}
			return fmt.Errorf("transport: read frame: %w", err)
		}

		var event Event
		if err := json.Unmarshal(data, &event); err != nil {
			c.logger.Warn("dropping malformed frame", "error", err)
			continue
		}

		c.mu.Lock()
		handler := c.handler
		c.mu.Unlock()
		if handler == nil {
			c.logger.Debug("dropping event with no handler bound", "name", event.Name)
			continue
		}
		handler(event.Name, event.Value)
	}
}

// WebSocketHandler upgrades HTTP requests into event channels. For
// each connection it invokes OnChannel (which should Bind a handler
// and kick off any host-side setup) and then pumps the read loop on
// the request goroutine until the page disconnects.
type WebSocketHandler struct {
	// OnChannel receives each newly upgraded channel. Required.
	OnChannel func(*WebSocketChannel)

	// Logger receives structured log output. If nil, slog.Default()
	// is used.
	Logger *slog.Logger

	upgrader websocket.Upgrader
}

func (h *WebSocketHandler) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

func (h *WebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error response.
		h.logger().Warn("websocket upgrade failed", "remote_addr", r.RemoteAddr, "error", err)
		return
	}

	channel := NewWebSocketChannel(conn, h.logger())
	h.logger().Debug("channel connected", "remote_addr", r.RemoteAddr)
	h.OnChannel(channel)

	if err := channel.ReadLoop(); err != nil {
		h.logger().Debug("channel read loop ended", "remote_addr", r.RemoteAddr, "error", err)
	}
}
