// Copyright 2026 The gomonaco Authors
// SPDX-License-Identifier: Apache-2.0

package transport

import (
	"context"
	"testing"
)

func TestMemoryPair_Delivery(t *testing.T) {
	host, script := NewMemoryPair()

	var received []Event
	script.Bind(func(name, value string) {
		received = append(received, Event{Name: name, Value: value})
	})

	if err := host.Send(context.Background(), "set_text", "hello"); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if err := host.Send(context.Background(), "minimap", true); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if err := host.Send(context.Background(), "remove_highlight", nil); err != nil {
		t.Fatalf("Send nil payload: %v", err)
	}

	want := []Event{
		{Name: "set_text", Value: `"hello"`},
		{Name: "minimap", Value: "true"},
		{Name: "remove_highlight", Value: "null"},
	}
	if len(received) != len(want) {
		t.Fatalf("received %d events, want %d", len(received), len(want))
	}
	for i, event := range want {
		if received[i] != event {
			t.Errorf("event %d = %+v, want %+v", i, received[i], event)
		}
	}
}

func TestMemoryPair_Symmetric(t *testing.T) {
	host, script := NewMemoryPair()

	var hostSaw []string
	host.Bind(func(name, _ string) {
		hostSaw = append(hostSaw, name)
	})

	if err := script.Send(context.Background(), "on_value_changed", "edited"); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if len(hostSaw) != 1 || hostSaw[0] != "on_value_changed" {
		t.Errorf("host saw %v, want one on_value_changed", hostSaw)
	}
}

func TestMemoryPair_ReentrantSend(t *testing.T) {
	host, script := NewMemoryPair()

	var echoed string
	host.Bind(func(_, value string) {
		echoed = value
	})
	// The script end answers every command by sending back through the
	// same pair. This must not deadlock.
	script.Bind(func(name, value string) {
		if err := script.Send(context.Background(), "echo:"+name, "ack"); err != nil {
			t.Errorf("reentrant Send: %v", err)
		}
	})

	if err := host.Send(context.Background(), "set_text", "x"); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if echoed != `"ack"` {
		t.Errorf("echoed = %q, want %q", echoed, `"ack"`)
	}
}

func TestMemoryPair_Close(t *testing.T) {
	host, script := NewMemoryPair()

	if err := host.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := host.Send(context.Background(), "set_text", "x"); err == nil {
		t.Error("Send on closed end succeeded, want error")
	}
	// Close marks both ends.
	if err := script.Send(context.Background(), "on_value_changed", "x"); err == nil {
		t.Error("Send on peer of closed end succeeded, want error")
	}
	// Idempotent.
	if err := host.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
}

func TestMemoryPair_NoHandlerDropsQuietly(t *testing.T) {
	host, _ := NewMemoryPair()
	if err := host.Send(context.Background(), "set_text", "x"); err != nil {
		t.Errorf("Send without bound peer handler: %v", err)
	}
}

func TestMemoryPair_UnmarshalablePayload(t *testing.T) {
	host, script := NewMemoryPair()
	script.Bind(func(string, string) {
		t.Error("unmarshalable payload must not be delivered")
	})
	if err := host.Send(context.Background(), "set_text", func() {}); err == nil {
		t.Error("Send of unmarshalable payload succeeded, want error")
	}
}
