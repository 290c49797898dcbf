// Copyright 2026 The gomonaco Authors
// SPDX-License-Identifier: Apache-2.0

// Package language resolves language names and aliases to the
// identifiers the Monaco editor understands.
//
// Resolution is backed by the chroma lexer registry, so every alias
// chroma knows ("py", "golang", "c++", ...) maps to a canonical name,
// which is then translated to Monaco's identifier scheme. Names the
// registry does not know resolve to nothing; the bridge passes such
// values through to the editor unchanged.
package language

import (
	"path/filepath"
	"strings"

	"github.com/alecthomas/chroma/v2/lexers"
)

// monacoOverrides maps chroma canonical names to Monaco language IDs
// where plain lowercasing is not enough.
var monacoOverrides = map[string]string{
	"C++":             "cpp",
	"C#":              "csharp",
	"F#":              "fsharp",
	"Bash":            "shell",
	"Objective-C":     "objective-c",
	"Protocol Buffer": "proto",
	"Transact-SQL":    "sql",
	"plaintext":       "plaintext",
}

// Normalize resolves a language name or alias to a Monaco language
// identifier. Returns false when the name is unknown to the registry.
func Normalize(name string) (string, bool) {
	if strings.TrimSpace(name) == "" {
		return "", false
	}
	lexer := lexers.Get(name)
	if lexer == nil {
		return "", false
	}
	canonical := lexer.Config().Name
	if id, ok := monacoOverrides[canonical]; ok {
		return id, true
	}
	return strings.ToLower(canonical), true
}

// Known reports whether the name resolves to a language.
func Known(name string) bool {
	_, ok := Normalize(name)
	return ok
}

// FromFilename infers the language identifier from a file name, e.g.
// "main.py" → "python". Returns false when no lexer matches.
func FromFilename(path string) (string, bool) {
	lexer := lexers.Match(filepath.Base(path))
	if lexer == nil {
		return "", false
	}
	canonical := lexer.Config().Name
	if id, ok := monacoOverrides[canonical]; ok {
		return id, true
	}
	return strings.ToLower(canonical), true
}
