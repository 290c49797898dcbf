// Copyright 2026 The gomonaco Authors
// SPDX-License-Identifier: Apache-2.0

package langserver

import (
	"context"
	"fmt"
	"net"
	"os"

	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"
)

// ServerInfo is the result of a Handshake probe.
type ServerInfo struct {
	// Name and Version as reported by the server's initialize result.
	// Empty when the server does not identify itself.
	Name    string
	Version string

	// HasCompletion and HasHover report the headline capabilities the
	// editor page relies on.
	HasCompletion bool
	HasHover      bool
}

// Handshake dials addr and runs a full LSP initialize exchange:
// initialize, initialized, shutdown, exit. It returns what the server
// reported about itself. The probe is side-effect free for a
// conforming server and bounded by ctx.
func Handshake(ctx context.Context, addr string) (*ServerInfo, error) {
	var dialer net.Dialer
	netConn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("langserver: dial %s: %w", addr, err)
	}

	rpc := jsonrpc2.NewConn(jsonrpc2.NewStream(netConn))
	rpc.Go(ctx, jsonrpc2.MethodNotFoundHandler)
	defer func() {
		rpc.Close()
		<-rpc.Done()
	}()

	params := protocol.InitializeParams{
		ProcessID:    int32(os.Getpid()),
		Capabilities: protocol.ClientCapabilities{},
		ClientInfo: &protocol.ClientInfo{
			Name: "gomonaco",
		},
	}
	var result protocol.InitializeResult
	if _, err := rpc.Call(ctx, protocol.MethodInitialize, params, &result); err != nil {
		return nil, fmt.Errorf("langserver: initialize: %w", err)
	}
	if err := rpc.Notify(ctx, protocol.MethodInitialized, protocol.InitializedParams{}); err != nil {
		return nil, fmt.Errorf("langserver: initialized: %w", err)
	}

	info := &ServerInfo{
		HasCompletion: result.Capabilities.CompletionProvider != nil,
		HasHover:      capabilityEnabled(result.Capabilities.HoverProvider),
	}
	if result.ServerInfo != nil {
		info.Name = result.ServerInfo.Name
		info.Version = result.ServerInfo.Version
	}

	// Best-effort orderly teardown; the probe result stands even if
	// the server mishandles shutdown.
	if _, err := rpc.Call(ctx, protocol.MethodShutdown, nil, nil); err == nil {
		rpc.Notify(ctx, protocol.MethodExit, nil)
	}
	return info, nil
}

// capabilityEnabled interprets an LSP union capability field, which
// may be absent, a boolean, or an options object.
func capabilityEnabled(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	default:
		return true
	}
}
