// Copyright 2026 The gomonaco Authors
// SPDX-License-Identifier: Apache-2.0

//go:build !cgo || windows

package main

import (
	"context"
	"fmt"
)

const webviewAvailable = false

// runWebview is unreachable without cgo: main falls back to the system
// browser when webviewAvailable is false.
func runWebview(ctx context.Context, url, title string) error {
	return fmt.Errorf("webview support not compiled in")
}
