// Copyright 2026 The gomonaco Authors
// SPDX-License-Identifier: Apache-2.0

package assets

import (
	_ "embed"
	"fmt"
	"net/url"
	"strings"
	"text/template"
)

//go:embed editor.html
var editorPage string

// DefaultBaseURL is the Monaco distribution served when no local
// bundle is configured.
const DefaultBaseURL = "https://cdn.jsdelivr.net/npm/monaco-editor@0.52.2/min"

var pageTemplate = template.Must(template.New("editor").Parse(editorPage))

// PageLoader renders the editor document. It implements the bridge's
// DocumentLoader contract.
type PageLoader struct {
	baseURL    *url.URL
	channelURL string
}

// NewPageLoader builds a loader. base is the Monaco distribution root
// (the directory containing vs/); empty selects DefaultBaseURL.
// channelURL is the websocket endpoint of the host's channel, e.g.
// "ws://127.0.0.1:8642/channel".
func NewPageLoader(base, channelURL string) (*PageLoader, error) {
	if base == "" {
		base = DefaultBaseURL
	}
	parsed, err := url.Parse(strings.TrimRight(base, "/"))
	if err != nil {
		return nil, fmt.Errorf("assets: parse base url %q: %w", base, err)
	}
	if channelURL == "" {
		return nil, fmt.Errorf("assets: channel url is required")
	}
	return &PageLoader{baseURL: parsed, channelURL: channelURL}, nil
}

// BaseURL returns the Monaco distribution root.
func (l *PageLoader) BaseURL() *url.URL {
	copied := *l.baseURL
	return &copied
}

// HTML renders the editor page. The template values are
// host-generated URLs, never user input, so a text template is
// deliberate here.
func (l *PageLoader) HTML() (string, error) {
	var page strings.Builder
	data := struct {
		BaseURL    string
		ChannelURL string
	}{
		BaseURL:    l.baseURL.String(),
		ChannelURL: l.channelURL,
	}
	if err := pageTemplate.Execute(&page, data); err != nil {
		return "", fmt.Errorf("assets: render editor page: %w", err)
	}
	return page.String(), nil
}
