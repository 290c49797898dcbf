// Copyright 2026 The gomonaco Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// Config is the master configuration for a gomonaco host.
type Config struct {
	// Listen is the host:port the embedded HTTP server binds to.
	// Port 0 selects a free port.
	Listen string `yaml:"listen" json:"listen"`

	// Editor configures the initial editor state applied once the
	// page reports readiness.
	Editor EditorConfig `yaml:"editor" json:"editor"`

	// LSP configures the language server collaborator.
	LSP LSPConfig `yaml:"lsp" json:"lsp"`

	// Assets configures where the Monaco distribution is served from.
	Assets AssetsConfig `yaml:"assets" json:"assets"`
}

// EditorConfig is the initial editor state.
type EditorConfig struct {
	// Theme is the Monaco theme name. Default: vs-dark.
	Theme string `yaml:"theme" json:"theme"`

	// Language is the initial language identifier. Empty means the
	// language is derived from the opened file, falling back to
	// plaintext.
	Language string `yaml:"language" json:"language"`

	// ReadOnly disables edits in the editor.
	ReadOnly bool `yaml:"read_only" json:"read_only"`

	// Minimap toggles the minimap column. Default: true.
	Minimap bool `yaml:"minimap" json:"minimap"`

	// VimMode enables vim keybindings.
	VimMode bool `yaml:"vim_mode" json:"vim_mode"`

	// LSPHeader is prepended to the document before it is sent to the
	// language server. It is normalized to end in exactly one newline.
	LSPHeader string `yaml:"lsp_header" json:"lsp_header"`
}

// LSPConfig configures the language server collaborator.
type LSPConfig struct {
	// Command is the language server command line. A "{port}" token
	// anywhere in the arguments is replaced with the chosen port.
	// Empty means an externally managed server is expected on Port.
	Command []string `yaml:"command" json:"command"`

	// Port pins the language server port. 0 picks a free port when
	// Command is set; external servers require an explicit port.
	Port int `yaml:"port" json:"port"`
}

// AssetsConfig configures where the Monaco distribution comes from.
type AssetsConfig struct {
	// BaseURL is the Monaco distribution root. Default is the
	// jsdelivr CDN pin used by lib/assets.
	BaseURL string `yaml:"base_url" json:"base_url"`

	// BundlePath is a local .tar.zst Monaco distribution. When set it
	// is extracted into the user cache and served instead of BaseURL.
	BundlePath string `yaml:"bundle_path" json:"bundle_path"`
}

// Default returns the default configuration. These defaults make the
// commands usable with no config file at all; a file, when given,
// overrides them.
func Default() *Config {
	return &Config{
		Listen: "127.0.0.1:0",
		Editor: EditorConfig{
			Theme:   "vs-dark",
			Minimap: true,
		},
	}
}

// Load loads configuration from the MONACO_CONFIG environment variable.
//
// Unlike LoadFile this fails when the variable is unset: callers that
// reach for Load have declared the file mandatory.
func Load() (*Config, error) {
	configPath := os.Getenv("MONACO_CONFIG")
	if configPath == "" {
		return nil, fmt.Errorf("MONACO_CONFIG environment variable not set; " +
			"set it to the path of your config file, or use --config flag")
	}

	return LoadFile(configPath)
}

// LoadFile loads configuration from a specific file path, merging it
// over Default. The config file is the single source of truth;
// environment variables do not override its values.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	case ".json", ".jsonc":
		err = json.Unmarshal(jsonc.ToJSON(data), cfg)
	default:
		return nil, fmt.Errorf("config: unsupported extension %q (want .yaml, .yml, .json, or .jsonc)", filepath.Ext(path))
	}
	if err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	return cfg, nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if c.Listen == "" {
		errs = append(errs, fmt.Errorf("listen is required"))
	}

	if c.LSP.Port < 0 {
		errs = append(errs, fmt.Errorf("lsp.port must not be negative"))
	}
	if c.LSP.Port > 65535 {
		errs = append(errs, fmt.Errorf("lsp.port must be at most 65535"))
	}

	if c.Assets.BundlePath != "" {
		if _, err := os.Stat(c.Assets.BundlePath); err != nil {
			errs = append(errs, fmt.Errorf("assets.bundle_path: %w", err))
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
