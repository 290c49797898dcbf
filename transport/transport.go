// Copyright 2026 The gomonaco Authors
// SPDX-License-Identifier: Apache-2.0

package transport

import "context"

// Event is one named message on the channel. Value holds the JSON
// encoding of the payload, so the wire format is self-describing and
// symmetric in both directions.
type Event struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Handler receives inbound events. The value is the raw JSON encoding
// of the payload; decoding (and recovery from malformed payloads) is
// the receiver's responsibility.
type Handler func(name, value string)

// Channel is a duplex message channel between the native host and a
// scripted environment.
//
// Send marshals the payload to JSON and delivers the named event to
// the remote side. It returns once the event has been handed off; it
// never waits for the remote side to apply it.
//
// Bind registers the single inbound handler. It must be called before
// inbound traffic is expected; events arriving with no handler bound
// are dropped. Events are delivered one at a time, in arrival order.
type Channel interface {
	Send(ctx context.Context, name string, payload any) error
	Bind(handler Handler)
	Close() error
}
