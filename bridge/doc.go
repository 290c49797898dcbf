// Copyright 2026 The gomonaco Authors
// SPDX-License-Identifier: Apache-2.0

// Package bridge implements the bidirectional protocol between a
// native host and an embedded Monaco editor.
//
// [Bridge] is the single entry point. The host constructs it over a
// transport channel, calls Load to materialize the editor document,
// and then drives the editor through the mutator methods (SetText,
// InsertText, SetCursor, ...). Each mutator validates its arguments,
// updates the local state mirror where the operation has a cached
// counterpart, and emits exactly one named command over the channel.
// Commands are fire-and-forget: the remote editor applies them
// asynchronously and there is no acknowledgement.
//
// Inbound events from the script side are resolved against an
// explicit handler registry built at construction: the vocabulary is
// closed and type-checked, never reflective. The script reports full
// document text (on_value_changed), cursor movement
// (on_cursor_changed), and initialization (bridge_initialized).
// Inbound failures (unknown names, malformed payloads) are logged
// and dropped; the remote side is not under the bridge's control and
// must not be able to crash the host.
//
// The bridge moves through three states: Constructed, Loading (after
// Load), and Ready (after the script signals initialization). Ready
// is terminal. Commands sent before Ready are not guaranteed to be
// observed, since the script may not yet be listening; callers wait
// on ReadyChan with their own timeout. On entering Ready the bridge
// announces the language-server address (lsp_url) exactly once,
// starting the configured [LanguageServer] lazily if needed.
package bridge
