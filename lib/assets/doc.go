// Copyright 2026 The gomonaco Authors
// SPDX-License-Identifier: Apache-2.0

// Package assets materializes the editor's initial document: the
// HTML page that boots Monaco and the script-side half of the bridge
// protocol.
//
// [PageLoader] renders the embedded page template with a Monaco
// distribution base URL (a CDN by default, or a local bundle) and the
// websocket endpoint of the host's channel. The rendered page defines
// window.gomonaco: it connects the channel, applies the outbound
// command vocabulary to the editor instance, and reports
// on_value_changed, on_cursor_changed, and bridge_initialized back to
// the native side.
//
// [ExtractBundle] supports fully offline hosts: it unpacks a
// .tar.zst Monaco distribution into a digest-addressed cache
// directory, once per distinct bundle, and returns the directory for
// the host to serve.
package assets
