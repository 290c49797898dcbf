// Copyright 2026 The gomonaco Authors
// SPDX-License-Identifier: Apache-2.0

//go:build cgo && !windows

package main

import (
	"context"

	webview "github.com/webview/webview_go"
)

const webviewAvailable = true

// runWebview shows url in a native window and blocks until the window
// closes or ctx is cancelled. Webview requires its event loop to stay
// on one OS thread; Terminate is marshalled onto it via Dispatch.
func runWebview(ctx context.Context, url, title string) error {
	w := webview.New(false)
	defer w.Destroy()

	w.SetTitle(title)
	w.SetSize(1280, 840, webview.HintNone)
	w.Navigate(url)

	stop := context.AfterFunc(ctx, func() {
		w.Dispatch(w.Terminate)
	})
	defer stop()

	w.Run()
	return nil
}
