// Copyright 2026 The gomonaco Authors
// SPDX-License-Identifier: Apache-2.0

package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
)

// Compile-time interface check.
var _ Channel = (*MemoryChannel)(nil)

// MemoryChannel is an in-process Channel end. Two ends created by
// NewMemoryPair are cross-wired: a Send on one end invokes the
// handler bound on the other, synchronously, on the sender's
// goroutine. This matches the single-event-loop delivery model of
// the bridge protocol and makes tests deterministic without any
// real transport.
type MemoryChannel struct {
	// Logger receives structured log output. If nil, slog.Default()
	// is used.
	Logger *slog.Logger

	peer *MemoryChannel

	mu      sync.Mutex
	handler Handler
	closed  bool
}

// NewMemoryPair returns two connected channel ends. By convention the
// first end belongs to the native host and the second to the scripted
// editor, but the two are symmetric.
func NewMemoryPair() (host, script *MemoryChannel) {
	host = &MemoryChannel{}
	script = &MemoryChannel{}
	host.peer = script
	script.peer = host
	return host, script
}

func (c *MemoryChannel) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

// Send marshals the payload and delivers the event to the peer end's
// handler. The handler runs synchronously before Send returns. A nil
// payload is delivered as JSON null.
func (c *MemoryChannel) Send(_ context.Context, name string, payload any) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return fmt.Errorf("transport: send %q on closed channel", name)
	}
	peer := c.peer
	c.mu.Unlock()

	value, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("transport: marshal %q payload: %w", name, err)
	}

	peer.deliver(name, string(value))
	return nil
}

// Bind registers the inbound handler for this end.
func (c *MemoryChannel) Bind(handler Handler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handler = handler
}

// Close marks both ends closed. Subsequent Sends on either end fail.
// Close is idempotent.
func (c *MemoryChannel) Close() error {
	c.mu.Lock()
	c.closed = true
	peer := c.peer
	c.mu.Unlock()

	peer.mu.Lock()
	peer.closed = true
	peer.mu.Unlock()
	return nil
}

// deliver hands an inbound event to the bound handler. The handler is
// invoked outside the lock so that it may Send back through the same
// pair without deadlocking.
func (c *MemoryChannel) deliver(name, value string) {
	c.mu.Lock()
	handler := c.handler
	closed := c.closed
	c.mu.Unlock()

	if closed {
		return
	}
	if handler == nil {
		c.logger().Debug("dropping event with no handler bound", "name", name)
		return
	}
	handler(name, value)
}
