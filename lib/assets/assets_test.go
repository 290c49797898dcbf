// Copyright 2026 The gomonaco Authors
// SPDX-License-Identifier: Apache-2.0

package assets

import (
	"archive/tar"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/zstd"
)

func TestPageLoader_HTML(t *testing.T) {
	loader, err := NewPageLoader("https://assets.example.test/monaco/min/", "ws://127.0.0.1:8642/channel")
	if err != nil {
		t.Fatalf("NewPageLoader: %v", err)
	}

	page, err := loader.HTML()
	if err != nil {
		t.Fatalf("HTML: %v", err)
	}
	if !strings.Contains(page, "https://assets.example.test/monaco/min/vs/loader.js") {
		t.Error("page does not load the Monaco AMD loader from the base URL")
	}
	if !strings.Contains(page, "ws://127.0.0.1:8642/channel") {
		t.Error("page does not connect to the channel endpoint")
	}
	for _, event := range []string{"on_value_changed", "on_cursor_changed", "bridge_initialized"} {
		if !strings.Contains(page, event) {
			t.Errorf("page does not emit %s", event)
		}
	}
}

func TestPageLoader_Defaults(t *testing.T) {
	loader, err := NewPageLoader("", "ws://127.0.0.1:1/channel")
	if err != nil {
		t.Fatalf("NewPageLoader: %v", err)
	}
	if got := loader.BaseURL().String(); got != DefaultBaseURL {
		t.Errorf("BaseURL = %q, want DefaultBaseURL", got)
	}

	if _, err := NewPageLoader("", ""); err == nil {
		t.Error("NewPageLoader accepted empty channel URL")
	}
}

// writeBundle builds a small .tar.zst with the given entries.
func writeBundle(t *testing.T, path string, entries map[string]string) {
	t.Helper()

	file, err := os.Create(path)
	if err != nil {
		t.Fatalf("create bundle: %v", err)
	}
	defer file.Close()

	encoder, err := zstd.NewWriter(file)
	if err != nil {
		t.Fatalf("zstd writer: %v", err)
	}
	writer := tar.NewWriter(encoder)
	for name, content := range entries {
		header := &tar.Header{
			Name: name,
			Mode: 0o644,
			Size: int64(len(content)),
		}
		if err := writer.WriteHeader(header); err != nil {
			t.Fatalf("tar header %s: %v", name, err)
		}
		if _, err := writer.Write([]byte(content)); err != nil {
			t.Fatalf("tar body %s: %v", name, err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close tar: %v", err)
	}
	if err := encoder.Close(); err != nil {
		t.Fatalf("close zstd: %v", err)
	}
}

func TestExtractBundle(t *testing.T) {
	tmpDir := t.TempDir()
	bundlePath := filepath.Join(tmpDir, "monaco.tar.zst")
	writeBundle(t, bundlePath, map[string]string{
		"vs/loader.js":              "// loader",
		"vs/editor/editor.main.js":  "// editor",
		"vs/editor/editor.main.css": "/* styles */",
	})

	cacheRoot := filepath.Join(tmpDir, "cache")
	bundleDir, err := ExtractBundle(bundlePath, cacheRoot)
	if err != nil {
		t.Fatalf("ExtractBundle: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(bundleDir, "vs", "loader.js"))
	if err != nil {
		t.Fatalf("read extracted file: %v", err)
	}
	if string(data) != "// loader" {
		t.Errorf("extracted content = %q", data)
	}

	// A second extraction of the same bundle reuses the cache: a
	// marker file dropped into the extracted tree survives it.
	marker := filepath.Join(bundleDir, "marker")
	if err := os.WriteFile(marker, []byte("x"), 0o644); err != nil {
		t.Fatalf("write marker: %v", err)
	}
	again, err := ExtractBundle(bundlePath, cacheRoot)
	if err != nil {
		t.Fatalf("second ExtractBundle: %v", err)
	}
	if again != bundleDir {
		t.Errorf("second extraction dir = %q, want %q", again, bundleDir)
	}
	if _, err := os.Stat(marker); err != nil {
		t.Error("cache was re-extracted instead of reused")
	}
}

func TestExtractBundle_DistinctBundlesDistinctDirs(t *testing.T) {
	tmpDir := t.TempDir()
	cacheRoot := filepath.Join(tmpDir, "cache")

	first := filepath.Join(tmpDir, "a.tar.zst")
	second := filepath.Join(tmpDir, "b.tar.zst")
	writeBundle(t, first, map[string]string{"vs/loader.js": "// a"})
	writeBundle(t, second, map[string]string{"vs/loader.js": "// b"})

	firstDir, err := ExtractBundle(first, cacheRoot)
	if err != nil {
		t.Fatalf("ExtractBundle a: %v", err)
	}
	secondDir, err := ExtractBundle(second, cacheRoot)
	if err != nil {
		t.Fatalf("ExtractBundle b: %v", err)
	}
	if firstDir == secondDir {
		t.Error("distinct bundles share a cache directory")
	}
}

func TestExtractBundle_RejectsTraversal(t *testing.T) {
	tmpDir := t.TempDir()
	bundlePath := filepath.Join(tmpDir, "evil.tar.zst")
	writeBundle(t, bundlePath, map[string]string{
		"../escape.js": "// outside",
	})

	if _, err := ExtractBundle(bundlePath, filepath.Join(tmpDir, "cache")); err == nil {
		t.Fatal("ExtractBundle accepted a traversal entry")
	}
	if _, err := os.Stat(filepath.Join(tmpDir, "escape.js")); err == nil {
		t.Error("traversal entry was written outside the cache")
	}
}

func TestExtractBundle_MissingFile(t *testing.T) {
	if _, err := ExtractBundle(filepath.Join(t.TempDir(), "nope.tar.zst"), t.TempDir()); err == nil {
		t.Error("ExtractBundle of missing file succeeded")
	}
}
