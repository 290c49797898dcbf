// Copyright 2026 The gomonaco Authors
// SPDX-License-Identifier: Apache-2.0

// Package transport provides the duplex message channel between the
// native host and the scripted editor environment.
//
// The package defines one interface: [Channel] carries named,
// JSON-serialized events in both directions. The host sends editor
// commands with Send and receives script-side events through the
// handler registered with Bind. Delivery is fire-and-forget in both
// directions: a Send returns once the event has been handed to the
// underlying medium, with no acknowledgement that the remote side has
// applied it.
//
// [MemoryChannel] is an in-process implementation: [NewMemoryPair]
// returns two connected ends, one for the host and one for a scripted
// editor (real or fake). Delivery is synchronous on the sender's
// goroutine, which mirrors the single cooperative event loop the
// bridge protocol assumes.
//
// [WebSocketChannel] carries events as JSON text frames over a
// gorilla/websocket connection. [WebSocketHandler] upgrades HTTP
// requests and hands each new channel to the host, then pumps the
// read loop on the request goroutine until the page disconnects.
package transport
