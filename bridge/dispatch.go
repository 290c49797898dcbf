// Copyright 2026 The gomonaco Authors
// SPDX-License-Identifier: Apache-2.0

package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
)

// dispatch resolves an inbound event against the handler registry.
// It is the channel's bound handler, so it runs on the transport's
// delivery goroutine, one event at a time. Inbound failures never
// propagate: the remote side must not be able to crash the host, so
// unknown names and malformed payloads are logged and dropped.
func (b *Bridge) dispatch(name, value string) {
	handler, ok := b.handlers[name]
	if !ok {
		b.logger.Warn("no handler for inbound event",
			"name", name,
			"code", ErrCodeUnresolvedName,
		)
		return
	}
	if err := handler([]byte(value)); err != nil {
		b.logger.Warn("inbound event dropped",
			"name", name,
			"error", err,
		)
	}
}

// decodePayload unmarshals an inbound payload into the expected
// shape, classifying failures: JSON that does not parse at all is
// malformed_payload, JSON of the wrong type is type_mismatch.
func decodePayload(name string, value []byte, into any) error {
	err := json.Unmarshal(value, into)
	if err == nil {
		return nil
	}
	code := ErrCodeMalformedPayload
	var typeError *json.UnmarshalTypeError
	if errors.As(err, &typeError) {
		code = ErrCodeTypeMismatch
	}
	return &Error{Code: code, Op: name, Message: err.Error()}
}

// handleValueChanged mirrors a remote document edit. Echoes of local
// SetText calls arrive here too; the dedup against the mirror keeps
// them from re-notifying.
func (b *Bridge) handleValueChanged(value []byte) error {
	var text string
	if err := decodePayload(EventValueChanged, value, &text); err != nil {
		return err
	}

	b.mu.Lock()
	if b.text == text {
		b.mu.Unlock()
		return nil
	}
	b.text = text
	listeners := slices.Clone(b.textListeners)
	b.mu.Unlock()

	for _, listener := range listeners {
		listener(text)
	}
	return nil
}

// handleCursorChanged mirrors remote cursor movement. The remote
// editor is authoritative for cursor position; this is the only place
// the cursor mirror is written after construction.
func (b *Bridge) handleCursorChanged(value []byte) error {
	var position Position
	if err := decodePayload(EventCursorChanged, value, &position); err != nil {
		return err
	}
	if position.Line < 1 || position.Column < 1 {
		return &Error{
			Code:    ErrCodeMalformedPayload,
			Op:      EventCursorChanged,
			Message: fmt.Sprintf("position %d:%d out of range", position.Line, position.Column),
		}
	}

	b.mu.Lock()
	b.cursor = position
	b.mu.Unlock()
	return nil
}

// handleInitialized is the readiness setter. It is idempotent:
// repeated reports of the same value are no-ops, so the transition to
// Ready, and everything hanging off it, fires exactly once.
func (b *Bridge) handleInitialized(value []byte) error {
	var initialized bool
	if err := decodePayload(EventInitialized, value, &initialized); err != nil {
		return err
	}

	b.mu.Lock()
	alreadyReady := b.state == StateReady
	if initialized == alreadyReady {
		b.mu.Unlock()
		return nil
	}
	if !initialized {
		// Ready is terminal: a late "false" is remote confusion, not
		// a state we can return to.
		b.mu.Unlock()
		b.logger.Warn("ignoring de-initialization signal in ready state")
		return nil
	}
	preLoad := b.state == StateConstructed
	b.state = StateReady
	close(b.ready)
	listeners := slices.Clone(b.readyListeners)
	b.mu.Unlock()

	if preLoad {
		// Normally Load precedes the page reporting in. A transport
		// wired up out of band can deliver the signal first; readiness
		// still proceeds, but the skipped load is worth flagging.
		b.logger.Warn("initialization signal arrived before document load")
	}
	b.logger.Debug("bridge ready")
	for _, listener := range listeners {
		listener()
	}
	b.announceLanguageServer()
	return nil
}

// announceLanguageServer resolves the collaborator's address,
// starting it lazily if it is not running, and emits the single
// lsp_url command. A provider failure downgrades the editor (no
// language intelligence) but never fails the readiness transition.
func (b *Bridge) announceLanguageServer() {
	if b.languageServer == nil {
		b.logger.Debug("no language server configured")
		return
	}
	if !b.languageServer.IsRunning() {
		if err := b.languageServer.Start(context.Background()); err != nil {
			b.logger.Warn("language server failed to start", "error", err)
			return
		}
	}
	address := fmt.Sprintf("localhost:%d", b.languageServer.Port())
	if err := b.send(CommandLSPURL, address); err != nil {
		b.logger.Warn("failed to announce language server", "address", address, "error", err)
		return
	}
	b.logger.Debug("language server announced", "address", address)
}
