// Copyright 2026 The gomonaco Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Listen != "127.0.0.1:0" {
		t.Errorf("expected listen=127.0.0.1:0, got %s", cfg.Listen)
	}

	if cfg.Editor.Theme != "vs-dark" {
		t.Errorf("expected theme=vs-dark, got %s", cfg.Editor.Theme)
	}

	if !cfg.Editor.Minimap {
		t.Error("expected minimap enabled by default")
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate, got %v", err)
	}
}

func TestLoad_RequiresMonacoConfig(t *testing.T) {
	// Save and restore MONACO_CONFIG.
	origConfig := os.Getenv("MONACO_CONFIG")
	defer os.Setenv("MONACO_CONFIG", origConfig)

	// Unset MONACO_CONFIG - Load() should fail.
	os.Unsetenv("MONACO_CONFIG")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error when MONACO_CONFIG not set, got nil")
	}

	expectedMsg := "MONACO_CONFIG environment variable not set"
	if !strings.HasPrefix(err.Error(), expectedMsg) {
		t.Errorf("expected error message to start with %q, got %q", expectedMsg, err.Error())
	}
}

func TestLoad_WithMonacoConfig(t *testing.T) {
	// Save and restore MONACO_CONFIG.
	origConfig := os.Getenv("MONACO_CONFIG")
	defer os.Setenv("MONACO_CONFIG", origConfig)

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "monaco.yaml")

	configContent := `
listen: 127.0.0.1:9123
editor:
  theme: vs
  vim_mode: true
lsp:
  command: ["gopls", "serve", "-listen", ":{port}"]
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	os.Setenv("MONACO_CONFIG", configPath)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Listen != "127.0.0.1:9123" {
		t.Errorf("expected listen=127.0.0.1:9123, got %s", cfg.Listen)
	}
	if cfg.Editor.Theme != "vs" {
		t.Errorf("expected theme=vs, got %s", cfg.Editor.Theme)
	}
	if !cfg.Editor.VimMode {
		t.Error("expected vim_mode=true")
	}
	if len(cfg.LSP.Command) != 4 || cfg.LSP.Command[0] != "gopls" {
		t.Errorf("unexpected lsp command: %v", cfg.LSP.Command)
	}
}

func TestLoadFile_YAMLOverridesDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "monaco.yml")

	configContent := `
editor:
  read_only: true
  lsp_header: "package main"
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := LoadFile(configPath)
	if err != nil {
		t.Fatalf("LoadFile() failed: %v", err)
	}

	if !cfg.Editor.ReadOnly {
		t.Error("expected read_only=true")
	}
	if cfg.Editor.LSPHeader != "package main" {
		t.Errorf("expected lsp_header=package main, got %q", cfg.Editor.LSPHeader)
	}
	// Unset fields keep their defaults.
	if cfg.Listen != "127.0.0.1:0" {
		t.Errorf("expected default listen, got %s", cfg.Listen)
	}
}

func TestLoadFile_JSONC(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "monaco.jsonc")

	configContent := `{
  // development settings
  "listen": "127.0.0.1:8080",
  "editor": {
    "theme": "hc-black",
    "minimap": false, // trailing comma below is fine too
  },
}`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := LoadFile(configPath)
	if err != nil {
		t.Fatalf("LoadFile() failed: %v", err)
	}

	if cfg.Listen != "127.0.0.1:8080" {
		t.Errorf("expected listen=127.0.0.1:8080, got %s", cfg.Listen)
	}
	if cfg.Editor.Theme != "hc-black" {
		t.Errorf("expected theme=hc-black, got %s", cfg.Editor.Theme)
	}
	if cfg.Editor.Minimap {
		t.Error("expected minimap=false")
	}
}

func TestLoadFile_UnsupportedExtension(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "monaco.toml")

	if err := os.WriteFile(configPath, []byte("listen = \"x\"\n"), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	if _, err := LoadFile(configPath); err == nil {
		t.Fatal("expected error for unsupported extension, got nil")
	}
}

func TestValidate_Errors(t *testing.T) {
	cfg := Default()
	cfg.Listen = ""
	cfg.LSP.Port = 70000

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation errors, got nil")
	}
	if !strings.Contains(err.Error(), "listen is required") {
		t.Errorf("expected listen error, got %v", err)
	}
	if !strings.Contains(err.Error(), "lsp.port") {
		t.Errorf("expected lsp.port error, got %v", err)
	}
}

func TestValidate_NegativePortWithSpawnCommand(t *testing.T) {
	cfg := Default()
	cfg.LSP.Command = []string{"gopls", "-listen", ":{port}"}
	cfg.LSP.Port = -1

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error, got nil")
	}
	if !strings.Contains(err.Error(), "lsp.port must not be negative") {
		t.Errorf("expected negative port error, got %v", err)
	}
}

func TestValidate_MissingBundle(t *testing.T) {
	cfg := Default()
	cfg.Assets.BundlePath = filepath.Join(t.TempDir(), "missing.tar.zst")

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing bundle, got nil")
	}
}
