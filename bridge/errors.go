// Copyright 2026 The gomonaco Authors
// SPDX-License-Identifier: Apache-2.0

package bridge

import (
	"errors"
	"fmt"
)

// Error codes. The first three surface synchronously from mutator
// calls; the last two occur on the inbound path, where they are
// logged and recovered rather than returned.
const (
	// ErrCodeInvalidState marks a mutating operation attempted while
	// the editor is read-only, or a lifecycle call out of order.
	ErrCodeInvalidState = "invalid_state"

	// ErrCodeTypeMismatch marks a payload whose JSON type does not
	// match the expected shape for its event name.
	ErrCodeTypeMismatch = "type_mismatch"

	// ErrCodeInvalidArgument marks a malformed argument combination,
	// such as a column given without a line.
	ErrCodeInvalidArgument = "invalid_argument"

	// ErrCodeUnresolvedName marks an inbound event whose name is not
	// in the handler registry.
	ErrCodeUnresolvedName = "unresolved_name"

	// ErrCodeMalformedPayload marks an inbound payload that is not
	// valid JSON.
	ErrCodeMalformedPayload = "malformed_payload"
)

// Error is a structured bridge failure. Callers can use errors.As to
// extract the code:
//
//	var bridgeErr *bridge.Error
//	if errors.As(err, &bridgeErr) {
//	    if bridgeErr.Code == bridge.ErrCodeInvalidState { ... }
//	}
type Error struct {
	// Code is one of the ErrCode constants.
	Code string
	// Op is the operation that failed (e.g. "set_text").
	Op string
	// Message is the human-readable description.
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("bridge: %s: %s (%s)", e.Op, e.Message, e.Code)
}

// IsCode checks whether err is a *Error with the given error code.
func IsCode(err error, code string) bool {
	var bridgeErr *Error
	if errors.As(err, &bridgeErr) {
		return bridgeErr.Code == code
	}
	return false
}

// readonlyError builds the invalid_state failure shared by all
// mutators guarded by the read-only flag.
func readonlyError(op string) *Error {
	return &Error{Code: ErrCodeInvalidState, Op: op, Message: "editor is read-only"}
}
