// Copyright 2026 The gomonaco Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides configuration loading for gomonaco commands.
//
// Configuration is loaded from a single file specified by either the
// MONACO_CONFIG environment variable (via [Load]) or a --config flag
// (via [LoadFile]). There are no fallbacks, no ~/.config discovery,
// and no automatic file search. This ensures deterministic, auditable
// configuration with no hidden overrides.
//
// Two formats are supported, selected by extension: YAML (.yaml, .yml)
// and JSON with comments (.json, .jsonc). Both unmarshal into the same
// [Config] struct.
//
// Key exports:
//
//   - [Config] -- master struct with Listen, Editor, LSP, Assets
//   - [Default] -- returns a Config with usable defaults
//   - [Load] and [LoadFile] -- the two entry points for loading
//
// This package depends on no other gomonaco packages.
package config
