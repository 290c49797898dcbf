// Copyright 2026 The gomonaco Authors
// SPDX-License-Identifier: Apache-2.0

// monaco-lspcheck probes a language server the way the editor would:
// it starts (or dials) the configured server, runs an LSP initialize
// handshake, and reports the server identity and the capabilities the
// editor cares about. Non-zero exit means the server is not usable.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/bec-project/gomonaco/lib/config"
	"github.com/bec-project/gomonaco/lib/langserver"
	"github.com/bec-project/gomonaco/lib/version"
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
		port       int
		timeout    time.Duration
		verbose    bool
	)

	flagSet := pflag.NewFlagSet("monaco-lspcheck", pflag.ContinueOnError)
	flagSet.StringVar(&configPath, "config", "", "path to config file (default: MONACO_CONFIG)")
	flagSet.IntVar(&port, "port", 0, "probe an already-running server on this port instead of starting one")
	flagSet.DurationVar(&timeout, "timeout", 15*time.Second, "overall deadline for startup and handshake")
	flagSet.BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	if len(os.Args) > 1 && os.Args[1] == "--version" {
		if len(os.Args) > 2 && (os.Args[2] == "--verbose" || os.Args[2] == "-v") {
			fmt.Printf("monaco-lspcheck %s\n", version.Full())
		} else {
			fmt.Printf("monaco-lspcheck %s\n", version.Info())
		}
		return nil
	}
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if args := flagSet.Args(); len(args) > 0 {
		// Bare arguments are the server command line, overriding config.
		return check(flagSet.Args(), port, timeout, verbose)
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if port == 0 {
		port = cfg.LSP.Port
	}
	if len(cfg.LSP.Command) == 0 && port == 0 {
		return fmt.Errorf("nothing to check: configure lsp.command or pass --port")
	}
	return check(cfg.LSP.Command, port, timeout, verbose)
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	if os.Getenv("MONACO_CONFIG") != "" {
		return config.Load()
	}
	return config.Default(), nil
}

func check(command []string, port int, timeout time.Duration, verbose bool) error {
	logLevel := slog.LevelWarn
	if verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	ctx, timeoutCancel := context.WithTimeout(ctx, timeout)
	defer timeoutCancel()

	server := &langserver.Server{
		Command:      command,
		FixedPort:    port,
		StartTimeout: timeout,
		Logger:       logger,
	}
	defer server.Stop()

	startedAt := time.Now()
	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("start language server: %w", err)
	}

	info, err := langserver.Handshake(ctx, langserver.Address(server))
	if err != nil {
		return fmt.Errorf("handshake with %s: %w", langserver.Address(server), err)
	}

	fmt.Printf("server:      %s\n", orUnknown(info.Name))
	fmt.Printf("version:     %s\n", orUnknown(info.Version))
	fmt.Printf("address:     %s\n", langserver.Address(server))
	fmt.Printf("completion:  %s\n", yesNo(info.HasCompletion))
	fmt.Printf("hover:       %s\n", yesNo(info.HasHover))
	fmt.Printf("checked in:  %s\n", time.Since(startedAt).Round(time.Millisecond))
	return nil
}

func orUnknown(s string) string {
	if s == "" {
		return "(not reported)"
	}
	return s
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
