// Copyright 2026 The gomonaco Authors
// SPDX-License-Identifier: Apache-2.0

package transport

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/bec-project/gomonaco/lib/testutil"
)

// dialTestServer starts an httptest server around a WebSocketHandler
// and dials it, returning the host-side channel and the raw client
// connection playing the editor page.
func dialTestServer(t *testing.T) (*WebSocketChannel, *websocket.Conn) {
	t.Helper()

	channels := make(chan *WebSocketChannel, 1)
	handler := &WebSocketHandler{
		OnChannel: func(c *WebSocketChannel) {
			channels <- c
		},
	}
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", wsURL, err)
	}
	t.Cleanup(func() { client.Close() })

	channel := testutil.RequireReceive(t, channels, 5*time.Second, "waiting for channel")
	t.Cleanup(func() { channel.Close() })
	return channel, client
}

func TestWebSocketChannel_SendFrames(t *testing.T) {
	channel, client := dialTestServer(t)

	if err := channel.Send(context.Background(), "set_text", "hello"); err != nil {
		t.Fatalf("Send: %v", err)
	}

	messageType, data, err := client.ReadMessage()
	if err != nil {
		t.Fatalf("client read: %v", err)
	}
	if messageType != websocket.TextMessage {
		t.Errorf("message type = %d, want text", messageType)
	}
	var event Event
	if err := json.Unmarshal(data, &event); err != nil {
		t.Fatalf("frame decode: %v", err)
	}
	if event.Name != "set_text" || event.Value != `"hello"` {
		t.Errorf("frame = %+v, want set_text %q", event, `"hello"`)
	}
}

func TestWebSocketChannel_InboundDelivery(t *testing.T) {
	channel, client := dialTestServer(t)

	received := make(chan Event, 4)
	channel.Bind(func(name, value string) {
		received <- Event{Name: name, Value: value}
	})

	frame, err := json.Marshal(Event{Name: "on_value_changed", Value: `"edited"`})
	if err != nil {
		t.Fatalf("marshal frame: %v", err)
	}
	if err := client.WriteMessage(websocket.TextMessage, frame); err != nil {
		t.Fatalf("client write: %v", err)
	}

	event := testutil.RequireReceive(t, received, 5*time.Second, "waiting for event")
	if event.Name != "on_value_changed" || event.Value != `"edited"` {
		t.Errorf("event = %+v", event)
	}
}

func TestWebSocketChannel_MalformedFramesAreSkipped(t *testing.T) {
	channel, client := dialTestServer(t)

	received := make(chan Event, 4)
	channel.Bind(func(name, value string) {
		received <- Event{Name: name, Value: value}
	})

	if err := client.WriteMessage(websocket.TextMessage, []byte("not a frame")); err != nil {
		t.Fatalf("client write: %v", err)
	}
	frame, _ := json.Marshal(Event{Name: "bridge_initialized", Value: "true"})
	if err := client.WriteMessage(websocket.TextMessage, frame); err != nil {
		t.Fatalf("client write: %v", err)
	}

	// The malformed frame is dropped; the valid one behind it arrives.
	event := testutil.RequireReceive(t, received, 5*time.Second, "waiting for event")
	if event.Name != "bridge_initialized" {
		t.Errorf("event = %+v, want bridge_initialized", event)
	}
}

func TestWebSocketChannel_PeerCloseEndsChannel(t *testing.T) {
	channel, client := dialTestServer(t)

	message := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	if err := client.WriteControl(websocket.CloseMessage, message, time.Now().Add(time.Second)); err != nil {
		t.Fatalf("client close: %v", err)
	}
	client.Close()

	testutil.RequireClosed(t, channel.Done(), 5*time.Second, "waiting for channel teardown")

	if err := channel.Send(context.Background(), "set_text", "x"); err == nil {
		t.Error("Send after teardown succeeded, want error")
	}
}

func TestWebSocketChannel_LocalClose(t *testing.T) {
	channel, _ := dialTestServer(t)

	if err := channel.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	testutil.RequireClosed(t, channel.Done(), 5*time.Second, "waiting for done")
	// Idempotent.
	if err := channel.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
}
