// Copyright 2026 The gomonaco Authors
// SPDX-License-Identifier: Apache-2.0

package langserver

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Provider is the language-server collaborator contract. Start must
// be idempotent: a second call while the server is running is a
// no-op. Port is only meaningful once the provider is running.
type Provider interface {
	IsRunning() bool
	Start(ctx context.Context) error
	Port() int
}

// Address formats a provider's address the way the editor page
// expects it.
func Address(p Provider) string {
	return fmt.Sprintf("localhost:%d", p.Port())
}

// dialTimeout bounds the liveness probe of external servers and the
// per-attempt dial while waiting for a spawned server to come up.
const dialTimeout = 250 * time.Millisecond

// defaultStartTimeout bounds how long Start waits for a spawned
// server's port to accept connections.
const defaultStartTimeout = 10 * time.Second

// Compile-time interface check.
var _ Provider = (*Server)(nil)

// Server is the exec-backed Provider. The zero value is not usable;
// set either Command (spawn mode) or Port (external mode).
type Server struct {
	// Command is the server argv. Occurrences of "{port}" in any
	// argument are replaced with the resolved port number. Empty
	// Command selects external mode: Port must name a server managed
	// outside this process.
	Command []string

	// FixedPort is the TCP port the server listens on. Zero in spawn mode
	// means pick a free port at first Start.
	FixedPort int

	// StartTimeout bounds the wait for the spawned server's port.
	// Zero means a 10 second default.
	StartTimeout time.Duration

	// Logger receives structured log output. If nil, slog.Default()
	// is used.
	Logger *slog.Logger

	mu      sync.Mutex
	port    int
	cmd     *exec.Cmd
	running bool
}

func (s *Server) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

// IsRunning reports whether the server is up. In spawn mode this is
// the tracked subprocess state; in external mode it is a live dial
// probe.
func (s *Server) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.Command) == 0 {
		return portAccepting(s.externalPort())
	}
	return s.running
}

// Port returns the resolved port. Zero until the first successful
// Start in spawn mode with no fixed port.
func (s *Server) Port() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.port != 0 {
		return s.port
	}
	return s.FixedPort
}

// externalPort is the fixed port in external mode. Caller holds mu.
func (s *Server) externalPort() int {
	if s.port != 0 {
		return s.port
	}
	return s.FixedPort
}

// Start brings the server up. Idempotent: if the server is already
// running, Start returns nil immediately. In external mode Start only
// verifies reachability. In spawn mode it resolves the port, spawns
// the command, and waits for the port to accept (bounded by
// StartTimeout and ctx).
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.Command) == 0 {
		port := s.externalPort()
		if port == 0 {
			return fmt.Errorf("langserver: external mode requires a port")
		}
		if !portAccepting(port) {
			return fmt.Errorf("langserver: external server on port %d not reachable", port)
		}
		s.port = port
		return nil
	}

	if s.running {
		return nil
	}

	port := s.externalPort()
	if port == 0 {
		freePort, err := pickFreePort()
		if err != nil {
			return fmt.Errorf("langserver: pick port: %w", err)
		}
		port = freePort
	}

	argv := substitutePort(s.Command, port)
	cmd := exec.Command(argv[0], argv[1:]...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("langserver: start %q: %w", argv[0], err)
	}

	timeout := s.StartTimeout
	if timeout == 0 {
		timeout = defaultStartTimeout
	}
	if err := waitForPort(ctx, port, timeout); err != nil {
		cmd.Process.Kill()
		cmd.Wait()
		return fmt.Errorf("langserver: %q did not accept on port %d: %w", argv[0], port, err)
	}

	s.cmd = cmd
	s.port = port
	s.running = true
	s.logger().Info("language server started", "command", argv[0], "port", port)

	// Reap the process and flip the running flag when it exits, so a
	// crashed server can be restarted by the next Start.
	go func() {
		err := cmd.Wait()
		s.mu.Lock()
		wasRunning := s.running
		s.running = false
		s.cmd = nil
		s.mu.Unlock()
		if wasRunning {
			s.logger().Warn("language server exited", "error", err)
		}
	}()
	return nil
}

// Stop kills the spawned server, if any. Safe to call twice and in
// external mode (where it does nothing).
func (s *Server) Stop() error {
	s.mu.Lock()
	cmd := s.cmd
	s.running = false
	s.cmd = nil
	s.mu.Unlock()

	if cmd == nil {
		return nil
	}
	if err := cmd.Process.Kill(); err != nil {
		return fmt.Errorf("langserver: stop: %w", err)
	}
	return nil
}

// substitutePort replaces the {port} placeholder in every argument.
func substitutePort(argv []string, port int) []string {
	out := make([]string, len(argv))
	for i, arg := range argv {
		out[i] = strings.ReplaceAll(arg, "{port}", strconv.Itoa(port))
	}
	return out
}

// pickFreePort binds an ephemeral port and releases it. The port can
// be taken in the window between release and the server's own bind.
func pickFreePort() (int, error) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return 0, err
	}
	port := listener.Addr().(*net.TCPAddr).Port
	listener.Close()
	return port, nil
}

// portAccepting probes a local port with a short dial.
func portAccepting(port int) bool {
	if port == 0 {
		return false
	}
	conn, err := net.DialTimeout("tcp", fmt.Sprintf("127.0.0.1:%d", port), dialTimeout)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

// waitForPort polls until the port accepts, the timeout elapses, or
// ctx is cancelled.
func waitForPort(ctx context.Context, port int, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		if portAccepting(port) {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("timed out after %v", timeout)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(50 * time.Millisecond):
		}
	}
}
