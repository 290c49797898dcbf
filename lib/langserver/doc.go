// Copyright 2026 The gomonaco Authors
// SPDX-License-Identifier: Apache-2.0

// Package langserver manages the language-server collaborator the
// editor bridge announces to the script side.
//
// [Provider] is the contract the bridge consumes: IsRunning, an
// idempotent Start, and the resolved Port. [Server] is the
// production implementation: it spawns a configured command (with
// {port} placeholder substitution), waits for the TCP port to accept
// before Start returns, and tracks the subprocess so that repeated
// Starts are no-ops and Stop is safe to call twice. With no command
// configured, a Server in external mode merely probes an
// already-running server by dialing its port.
//
// [Handshake] is a health probe: it runs a real LSP initialize
// exchange (JSON-RPC over TCP) against an address and reports the
// server's identity and headline capabilities.
package langserver
