// Copyright 2026 The gomonaco Authors
// SPDX-License-Identifier: Apache-2.0

// monaco-editor hosts a Monaco editor in a native window (or the
// system browser) and drives it over the gomonaco bridge protocol.
//
// The command starts a local HTTP server that serves the editor page
// and a WebSocket channel endpoint. Each page load connects back over
// the channel; the host mirrors the editor state, applies the initial
// configuration once the page reports readiness, and announces the
// language server when one is configured.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/bec-project/gomonaco/bridge"
	"github.com/bec-project/gomonaco/lib/assets"
	"github.com/bec-project/gomonaco/lib/config"
	"github.com/bec-project/gomonaco/lib/langserver"
	"github.com/bec-project/gomonaco/lib/language"
	"github.com/bec-project/gomonaco/lib/version"
	"github.com/bec-project/gomonaco/transport"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configPath string
		listenAddr string
		filePath   string
		languageID string
		theme      string
		readonly   bool
		vimMode    bool
		noMinimap  bool
		lspHeader  string
		browser    bool
		verbose    bool
	)

	flagSet := pflag.NewFlagSet("monaco-editor", pflag.ContinueOnError)
	flagSet.StringVar(&configPath, "config", "", "path to config file (default: MONACO_CONFIG)")
	flagSet.StringVar(&listenAddr, "listen", "", "host:port for the editor server (port 0 picks a free port)")
	flagSet.StringVar(&filePath, "file", "", "file to open in the editor")
	flagSet.StringVar(&languageID, "language", "", "language identifier (default: derived from --file)")
	flagSet.StringVar(&theme, "theme", "", "Monaco theme name")
	flagSet.BoolVar(&readonly, "readonly", false, "open the editor read-only")
	flagSet.BoolVar(&vimMode, "vim", false, "enable vim keybindings")
	flagSet.BoolVar(&noMinimap, "no-minimap", false, "hide the minimap column")
	flagSet.StringVar(&lspHeader, "lsp-header", "", "header prepended to the document for the language server")
	flagSet.BoolVar(&browser, "browser", false, "open in the system browser instead of a native window")
	flagSet.BoolP("help", "h", false, "show help")
	flagSet.BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	if len(os.Args) > 1 && os.Args[1] == "--version" {
		if len(os.Args) > 2 && (os.Args[2] == "--verbose" || os.Args[2] == "-v") {
			fmt.Printf("monaco-editor %s\n", version.Full())
		} else {
			fmt.Printf("monaco-editor %s\n", version.Info())
		}
		return nil
	}

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if help, _ := flagSet.GetBool("help"); help {
		flagSet.PrintDefaults()
		return nil
	}
	if args := flagSet.Args(); len(args) > 0 {
		return fmt.Errorf("unexpected argument: %s", args[0])
	}

	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	// Flags override the config file.
	if listenAddr != "" {
		cfg.Listen = listenAddr
	}
	if languageID != "" {
		cfg.Editor.Language = languageID
	}
	if theme != "" {
		cfg.Editor.Theme = theme
	}
	if readonly {
		cfg.Editor.ReadOnly = true
	}
	if vimMode {
		cfg.Editor.VimMode = true
	}
	if noMinimap {
		cfg.Editor.Minimap = false
	}
	if lspHeader != "" {
		cfg.Editor.LSPHeader = lspHeader
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	var initialText string
	if filePath != "" {
		data, err := os.ReadFile(filePath)
		if err != nil {
			return fmt.Errorf("open %s: %w", filePath, err)
		}
		initialText = string(data)
		if cfg.Editor.Language == "" {
			if languageID, ok := language.FromFilename(filePath); ok {
				cfg.Editor.Language = languageID
			}
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	app := &editorApp{
		config:      cfg,
		filePath:    filePath,
		initialText: initialText,
		logger:      logger,
	}

	if len(cfg.LSP.Command) > 0 || cfg.LSP.Port > 0 {
		app.languageServer = &langserver.Server{
			Command:   cfg.LSP.Command,
			FixedPort: cfg.LSP.Port,
			Logger:    logger,
		}
		defer app.languageServer.Stop()
	}

	listener, err := net.Listen("tcp", cfg.Listen)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", cfg.Listen, err)
	}
	pageURL := fmt.Sprintf("http://%s/", listener.Addr())

	mux := http.NewServeMux()
	if err := app.registerRoutes(mux, listener.Addr().String()); err != nil {
		return err
	}

	server := &http.Server{Handler: mux}
	serverErr := make(chan error, 1)
	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()
	logger.Info("editor server listening", "url", pageURL)

	// The window (or the browser hand-off) blocks until the user is
	// done; signals cancel ctx and tear it down.
	windowErr := make(chan error, 1)
	go func() {
		if browser || !webviewAvailable {
			if err := openBrowser(pageURL); err != nil {
				windowErr <- err
				return
			}
			logger.Info("opened in system browser; press Ctrl-C to exit")
			<-ctx.Done()
			windowErr <- nil
			return
		}
		windowErr <- runWebview(ctx, pageURL, windowTitle(filePath))
	}()

	var runErr error
	select {
	case runErr = <-serverErr:
	case runErr = <-windowErr:
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("server shutdown", "error", err)
	}
	return runErr
}

// loadConfig resolves the configuration: explicit --config path first,
// then MONACO_CONFIG, then built-in defaults. Only the explicit paths
// make a missing file an error.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	if os.Getenv("MONACO_CONFIG") != "" {
		return config.Load()
	}
	return config.Default(), nil
}

// editorApp carries the state shared by all editor connections.
type editorApp struct {
	config         *config.Config
	filePath       string
	initialText    string
	languageServer *langserver.Server
	logger         *slog.Logger

	// writeMu serializes write-backs of edited text to filePath.
	writeMu sync.Mutex
}

// registerRoutes wires the page, the channel endpoint, and (when a
// local bundle is configured) the extracted Monaco distribution.
func (a *editorApp) registerRoutes(mux *http.ServeMux, addr string) error {
	baseURL := a.config.Assets.BaseURL
	if a.config.Assets.BundlePath != "" {
		bundleDir, err := assets.ExtractBundle(a.config.Assets.BundlePath, "")
		if err != nil {
			return err
		}
		a.logger.Debug("serving local Monaco bundle", "dir", bundleDir)
		mux.Handle("/monaco/", http.StripPrefix("/monaco/", http.FileServer(http.Dir(bundleDir))))
		baseURL = "/monaco"
	}
	if baseURL == "" {
		baseURL = assets.DefaultBaseURL
	}

	loader, err := assets.NewPageLoader(baseURL, fmt.Sprintf("ws://%s/channel", addr))
	if err != nil {
		return err
	}

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		page, err := loader.HTML()
		if err != nil {
			a.logger.Error("render editor page", "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, page)
	})

	mux.Handle("/channel", &transport.WebSocketHandler{
		Logger: a.logger,
		OnChannel: func(channel *transport.WebSocketChannel) {
			if err := a.attachBridge(channel, loader); err != nil {
				a.logger.Error("attach bridge", "error", err)
				channel.Close()
			}
		},
	})
	return nil
}

// attachBridge builds a bridge for one editor connection and schedules
// the initial state for when the page reports readiness.
func (a *editorApp) attachBridge(channel *transport.WebSocketChannel, loader *assets.PageLoader) error {
	opts := bridge.Options{
		Channel:           channel,
		Loader:            loader,
		NormalizeLanguage: language.Normalize,
		Logger:            a.logger,
	}
	// A nil *Server must stay a nil interface.
	if a.languageServer != nil {
		opts.LanguageServer = a.languageServer
	}
	b, err := bridge.New(opts)
	if err != nil {
		return err
	}
	// The page itself was already served over HTTP; Load here only
	// advances the lifecycle so readiness arrives from Loading.
	if _, err := b.Load(); err != nil {
		return err
	}

	if a.filePath != "" {
		b.OnTextChanged(a.persistText)
	}

	go func() {
		select {
		case <-b.ReadyChan():
			a.applyInitialState(b)
		case <-channel.Done():
		}
	}()
	return nil
}

// applyInitialState pushes the configured editor state to a freshly
// ready page. Individual failures are logged and skipped so one bad
// setting does not strand the rest.
func (a *editorApp) applyInitialState(b *bridge.Bridge) {
	editor := a.config.Editor
	apply := func(name string, err error) {
		if err != nil {
			a.logger.Warn("apply initial state", "setting", name, "error", err)
		}
	}

	if a.initialText != "" {
		apply("text", b.SetText(a.initialText))
	}
	if editor.Language != "" {
		apply("language", b.SetLanguage(editor.Language))
	}
	if editor.Theme != "" {
		apply("theme", b.SetTheme(editor.Theme))
	}
	apply("minimap", b.SetMinimapEnabled(editor.Minimap))
	if editor.VimMode {
		apply("vim_mode", b.SetVimModeEnabled(true))
	}
	if editor.LSPHeader != "" {
		apply("lsp_header", b.SetLSPHeader(editor.LSPHeader))
	}
	// Readonly last: once set, further writes are rejected.
	if editor.ReadOnly {
		apply("readonly", b.SetReadonly(true))
	}
	a.logger.Info("editor ready", "language", b.Language(), "readonly", b.Readonly())
}

// persistText writes edited text back to the opened file.
func (a *editorApp) persistText(text string) {
	a.writeMu.Lock()
	defer a.writeMu.Unlock()
	if err := os.WriteFile(a.filePath, []byte(text), 0o644); err != nil {
		a.logger.Error("write file", "path", a.filePath, "error", err)
	}
}

func windowTitle(filePath string) string {
	if filePath == "" {
		return "monaco-editor"
	}
	return fmt.Sprintf("monaco-editor - %s", filePath)
}

// openBrowser opens url in the platform's default browser.
func openBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", url)
	default:
		return fmt.Errorf("no browser launcher for %s", runtime.GOOS)
	}
	return cmd.Start()
}
