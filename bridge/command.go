// Copyright 2026 The gomonaco Authors
// SPDX-License-Identifier: Apache-2.0

package bridge

// Outbound command names. Each mutator emits exactly one of these
// over the channel. The names and payload shapes are protocol
// constants shared with the script side; changing them breaks
// deployed editor pages.
const (
	// CommandSetText replaces the whole document. Payload: string.
	CommandSetText = "set_text"

	// CommandInsert inserts text at a position. Payload:
	// {text, line, column} with null line/column meaning "at the
	// current cursor".
	CommandInsert = "insert"

	// CommandDeleteLine clears one line's content, leaving the line
	// break in place. Payload: 1-based line number, or the string
	// "current" for the cursor line.
	CommandDeleteLine = "delete_line"

	// CommandLanguage switches the syntax language. Payload: string.
	CommandLanguage = "language"

	// CommandMinimap toggles the minimap. Payload: bool.
	CommandMinimap = "minimap"

	// CommandTheme switches the color theme. Payload: string.
	CommandTheme = "theme"

	// CommandReadonly toggles remote read-only mode. Payload: bool.
	CommandReadonly = "readonly"

	// CommandSetCursor moves the cursor. Payload:
	// {line, column, moveToPosition} with moveToPosition one of
	// null, "center", "top", "position".
	CommandSetCursor = "set_cursor"

	// CommandHighlightLines highlights an inclusive line range.
	// Payload: {start, end}.
	CommandHighlightLines = "highlight_lines"

	// CommandRemoveHighlight clears all highlights. Payload: {}.
	CommandRemoveHighlight = "remove_highlight"

	// CommandVimMode toggles vim keybindings. Payload: bool.
	CommandVimMode = "vim_mode"

	// CommandSetLSPHeader sets the hidden header prepended to the
	// document for language-server analysis. Payload: string.
	CommandSetLSPHeader = "set_lsp_header"

	// CommandLSPURL announces the language-server address. Payload:
	// string, "localhost:{port}". Sent once, on entering Ready.
	CommandLSPURL = "lsp_url"
)

// Inbound event names.
const (
	// EventValueChanged carries the full document text after a remote
	// edit. Payload: string.
	EventValueChanged = "on_value_changed"

	// EventCursorChanged carries the cursor position after the remote
	// editor moves it. Payload: {line, column}, 1-based.
	EventCursorChanged = "on_cursor_changed"

	// EventInitialized signals script-side readiness. Payload: bool.
	// The false→true transition is what moves the bridge to Ready.
	EventInitialized = "bridge_initialized"
)

// Position is a 1-based cursor position.
type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// MoveTo selects how the viewport follows a SetCursor command.
type MoveTo string

const (
	// MoveNone leaves the viewport alone.
	MoveNone MoveTo = ""
	// MoveCenter scrolls the cursor line to the vertical center.
	MoveCenter MoveTo = "center"
	// MoveTop scrolls the cursor line to the top of the viewport.
	MoveTop MoveTo = "top"
	// MovePosition scrolls just enough to reveal the cursor.
	MovePosition MoveTo = "position"
)

// insertPayload is the wire shape of CommandInsert. Nil line/column
// encode as JSON null, meaning "use the current cursor".
type insertPayload struct {
	Text   string `json:"text"`
	Line   *int   `json:"line"`
	Column *int   `json:"column"`
}

// cursorPayload is the wire shape of CommandSetCursor.
type cursorPayload struct {
	Line           int     `json:"line"`
	Column         int     `json:"column"`
	MoveToPosition *string `json:"moveToPosition"`
}

// highlightPayload is the wire shape of CommandHighlightLines.
type highlightPayload struct {
	Start int `json:"start"`
	End   int `json:"end"`
}
