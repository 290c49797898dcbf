// Copyright 2026 The gomonaco Authors
// SPDX-License-Identifier: Apache-2.0

package bridge

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"slices"
	"strings"
	"sync"

	"github.com/bec-project/gomonaco/transport"
)

// State is the bridge lifecycle state.
type State int

const (
	// StateConstructed: the bridge exists but the editor document has
	// not been handed to a rendering surface yet.
	StateConstructed State = iota
	// StateLoading: Load has produced the document; the script side
	// has not signaled initialization yet.
	StateLoading
	// StateReady: the script side is initialized. Terminal. Only in
	// this state are outbound commands guaranteed to be observed.
	StateReady
)

func (s State) String() string {
	switch s {
	case StateConstructed:
		return "constructed"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// LanguageServer is the external language-server collaborator. Its
// lifetime is owned by the application; the bridge only starts it
// lazily on first need and reads its port. Start must be idempotent.
type LanguageServer interface {
	IsRunning() bool
	Start(ctx context.Context) error
	Port() int
}

// DocumentLoader materializes the editor's initial document. It is
// consulted once, from Load.
type DocumentLoader interface {
	BaseURL() *url.URL
	HTML() (string, error)
}

// Options configures a Bridge.
type Options struct {
	// Channel is the duplex message channel to the script side.
	// Required.
	Channel transport.Channel

	// Loader materializes the editor document for Load. Optional;
	// without it Load fails and the host must source the document
	// elsewhere.
	Loader DocumentLoader

	// LanguageServer, when set, is announced to the script side with
	// a single lsp_url command on entering Ready, starting it first
	// if it is not running.
	LanguageServer LanguageServer

	// NormalizeLanguage, when set, maps language aliases to canonical
	// editor identifiers in SetLanguage. Unknown names pass through
	// unchanged.
	NormalizeLanguage func(name string) (string, bool)

	// Logger receives structured log output. If nil, slog.Default()
	// is used. Inbound-path recoveries are logged at Warn; dropped
	// events at Debug.
	Logger *slog.Logger
}

// Bridge is the native side of the editor protocol: the command
// encoder, the inbound dispatcher, and the state mirror, in one
// object. All methods are safe for concurrent use; the mirror is
// guarded by a mutex rather than relying on the host's event loop.
type Bridge struct {
	channel        transport.Channel
	loader         DocumentLoader
	languageServer LanguageServer
	normalize      func(string) (string, bool)
	logger         *slog.Logger

	handlers map[string]func(value []byte) error

	mu        sync.Mutex
	state     State
	text      string
	language  string
	theme     string
	readonly  bool
	cursor    Position
	lspHeader string
	ready     chan struct{}

	textListeners     []func(string)
	languageListeners []func(string)
	themeListeners    []func(string)
	readyListeners    []func()
}

// New constructs a Bridge over the given channel and binds the
// inbound dispatcher to it.
func New(opts Options) (*Bridge, error) {
	if opts.Channel == nil {
		return nil, fmt.Errorf("bridge: Channel is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	b := &Bridge{
		channel:        opts.Channel,
		loader:         opts.Loader,
		languageServer: opts.LanguageServer,
		normalize:      opts.NormalizeLanguage,
		logger:         logger,
		state:          StateConstructed,
		cursor:         Position{Line: 1, Column: 1},
		ready:          make(chan struct{}),
	}
	b.handlers = map[string]func(value []byte) error{
		EventValueChanged:  b.handleValueChanged,
		EventCursorChanged: b.handleCursorChanged,
		EventInitialized:   b.handleInitialized,
	}
	b.channel.Bind(b.dispatch)
	return b, nil
}

// Load materializes the editor document through the loader and moves
// the bridge to Loading. The returned HTML is what the host hands to
// its rendering surface. Load may be called once.
func (b *Bridge) Load() (string, error) {
	b.mu.Lock()
	if b.state != StateConstructed {
		state := b.state
		b.mu.Unlock()
		return "", &Error{Code: ErrCodeInvalidState, Op: "load", Message: fmt.Sprintf("already %s", state)}
	}
	if b.loader == nil {
		b.mu.Unlock()
		return "", &Error{Code: ErrCodeInvalidState, Op: "load", Message: "no document loader configured"}
	}
	b.state = StateLoading
	b.mu.Unlock()

	html, err := b.loader.HTML()
	if err != nil {
		return "", fmt.Errorf("bridge: load document: %w", err)
	}
	b.logger.Debug("editor document loaded", "base_url", b.loader.BaseURL())
	return html, nil
}

// Close releases the underlying channel.
func (b *Bridge) Close() error {
	return b.channel.Close()
}

// send emits one named command. Fire-and-forget: a returned error
// means the local handoff failed, never that the remote side rejected
// the command.
func (b *Bridge) send(name string, payload any) error {
	if err := b.channel.Send(context.Background(), name, payload); err != nil {
		return fmt.Errorf("bridge: %s: %w", name, err)
	}
	return nil
}

// SetText replaces the document text. Setting the text the mirror
// already holds is a no-op and emits nothing.
func (b *Bridge) SetText(value string) error {
	b.mu.Lock()
	if b.text == value {
		b.mu.Unlock()
		return nil
	}
	if b.readonly {
		b.mu.Unlock()
		return readonlyError("set_text")
	}
	b.text = value
	listeners := slices.Clone(b.textListeners)
	b.mu.Unlock()

	if err := b.send(CommandSetText, value); err != nil {
		return err
	}
	for _, listener := range listeners {
		listener(value)
	}
	return nil
}

// Text returns the mirrored document text. The mirror is only
// authoritative between round-trips: a remote edit diverges from it
// until the next on_value_changed event arrives.
func (b *Bridge) Text() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.text
}

// InsertOption positions an InsertText call. Without options the text
// is inserted at the current cursor.
type InsertOption func(*insertPayload)

// AtLine inserts at the given 1-based line. Without AtColumn the
// column defaults to 1.
func AtLine(line int) InsertOption {
	return func(p *insertPayload) { p.Line = &line }
}

// AtColumn sets the 1-based column. Only valid together with AtLine.
func AtColumn(column int) InsertOption {
	return func(p *insertPayload) { p.Column = &column }
}

// InsertText inserts text at the cursor, or at the position given by
// AtLine/AtColumn. The insertion happens remotely; the mirror learns
// the result from the editor's change notification.
func (b *Bridge) InsertText(text string, opts ...InsertOption) error {
	b.mu.Lock()
	readonly := b.readonly
	b.mu.Unlock()
	if readonly {
		return readonlyError("insert")
	}

	payload := insertPayload{Text: text}
	for _, opt := range opts {
		opt(&payload)
	}
	if payload.Column != nil && payload.Line == nil {
		return &Error{Code: ErrCodeInvalidArgument, Op: "insert", Message: "column given without line"}
	}
	if payload.Line != nil {
		if *payload.Line < 1 {
			return &Error{Code: ErrCodeInvalidArgument, Op: "insert", Message: fmt.Sprintf("line %d out of range", *payload.Line)}
		}
		if payload.Column == nil {
			column := 1
			payload.Column = &column
		} else if *payload.Column < 1 {
			return &Error{Code: ErrCodeInvalidArgument, Op: "insert", Message: fmt.Sprintf("column %d out of range", *payload.Column)}
		}
	}
	return b.send(CommandInsert, payload)
}

// DeleteLine clears the given 1-based line remotely. The editor's
// edit spans up to the line's max column, which excludes the line
// break, so an empty line remains. The mirror is not touched: line
// deletion is fire-and-forget and the remote editor's semantics are
// authoritative, so the mirror catches up on the next change
// notification.
func (b *Bridge) DeleteLine(line int) error {
	if line < 1 {
		return &Error{Code: ErrCodeInvalidArgument, Op: "delete_line", Message: fmt.Sprintf("line %d out of range", line)}
	}
	return b.deleteLine(line)
}

// DeleteCurrentLine deletes the line the cursor is on.
func (b *Bridge) DeleteCurrentLine() error {
	return b.deleteLine("current")
}

func (b *Bridge) deleteLine(which any) error {
	b.mu.Lock()
	readonly := b.readonly
	b.mu.Unlock()
	if readonly {
		return readonlyError("delete_line")
	}
	return b.send(CommandDeleteLine, which)
}

// SetLanguage switches the syntax language, normalizing known aliases
// when a normalizer is configured. The mirror updates unconditionally.
func (b *Bridge) SetLanguage(language string) error {
	if b.normalize != nil {
		if canonical, ok := b.normalize(language); ok {
			language = canonical
		}
	}

	b.mu.Lock()
	b.language = language
	listeners := slices.Clone(b.languageListeners)
	b.mu.Unlock()

	if err := b.send(CommandLanguage, language); err != nil {
		return err
	}
	for _, listener := range listeners {
		listener(language)
	}
	return nil
}

// Language returns the mirrored language.
func (b *Bridge) Language() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.language
}

// SetTheme switches the color theme. The mirror updates
// unconditionally.
func (b *Bridge) SetTheme(theme string) error {
	b.mu.Lock()
	b.theme = theme
	listeners := slices.Clone(b.themeListeners)
	b.mu.Unlock()

	if err := b.send(CommandTheme, theme); err != nil {
		return err
	}
	for _, listener := range listeners {
		listener(theme)
	}
	return nil
}

// Theme returns the mirrored theme.
func (b *Bridge) Theme() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.theme
}

// SetMinimapEnabled toggles the minimap. Stateless passthrough: the
// mirror has no minimap field.
func (b *Bridge) SetMinimapEnabled(enabled bool) error {
	return b.send(CommandMinimap, enabled)
}

// SetVimModeEnabled toggles vim keybindings. Stateless passthrough.
func (b *Bridge) SetVimModeEnabled(enabled bool) error {
	return b.send(CommandVimMode, enabled)
}

// SetReadonly toggles read-only mode. The command is sent before the
// mirror flag flips so that the send itself is not blocked by the
// guard it is installing.
func (b *Bridge) SetReadonly(readonly bool) error {
	if err := b.send(CommandReadonly, readonly); err != nil {
		return err
	}
	b.mu.Lock()
	b.readonly = readonly
	b.mu.Unlock()
	return nil
}

// Readonly returns the mirrored read-only flag.
func (b *Bridge) Readonly() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.readonly
}

// SetCursor moves the remote cursor. The cursor mirror is not updated
// here; the remote editor is authoritative for cursor position, and
// the mirror follows its on_cursor_changed events.
func (b *Bridge) SetCursor(line, column int, moveTo MoveTo) error {
	if line < 1 || column < 1 {
		return &Error{Code: ErrCodeInvalidArgument, Op: "set_cursor", Message: fmt.Sprintf("position %d:%d out of range", line, column)}
	}
	payload := cursorPayload{Line: line, Column: column}
	switch moveTo {
	case MoveNone:
		// moveToPosition stays null.
	case MoveCenter, MoveTop, MovePosition:
		value := string(moveTo)
		payload.MoveToPosition = &value
	default:
		return &Error{Code: ErrCodeInvalidArgument, Op: "set_cursor", Message: fmt.Sprintf("unknown move-to %q", moveTo)}
	}
	return b.send(CommandSetCursor, payload)
}

// CurrentCursor returns the mirrored cursor position, as last
// reported by the remote editor.
func (b *Bridge) CurrentCursor() Position {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.cursor
}

// SetHighlightedLines highlights the inclusive 1-based line range.
func (b *Bridge) SetHighlightedLines(start, end int) error {
	if start < 1 || end < start {
		return &Error{Code: ErrCodeInvalidArgument, Op: "highlight_lines", Message: fmt.Sprintf("range %d..%d out of order", start, end)}
	}
	return b.send(CommandHighlightLines, highlightPayload{Start: start, End: end})
}

// ClearHighlightedLines removes all line highlights.
func (b *Bridge) ClearHighlightedLines() error {
	return b.send(CommandRemoveHighlight, struct{}{})
}

// SetLSPHeader sets the hidden header prepended to the document for
// language-server analysis. The header is normalized to end with
// exactly one newline; the mirror holds the normalized form.
func (b *Bridge) SetLSPHeader(header string) error {
	header = strings.TrimSpace(header) + "\n"

	b.mu.Lock()
	b.lspHeader = header
	b.mu.Unlock()

	return b.send(CommandSetLSPHeader, header)
}

// LSPHeader returns the mirrored, normalized header.
func (b *Bridge) LSPHeader() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lspHeader
}

// CurrentState returns the lifecycle state.
func (b *Bridge) CurrentState() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// IsReady reports whether the script side has signaled
// initialization.
func (b *Bridge) IsReady() bool {
	return b.CurrentState() == StateReady
}

// ReadyChan is closed when the bridge enters Ready. The bridge
// enforces no timeout of its own; callers select on this with their
// own deadline.
func (b *Bridge) ReadyChan() <-chan struct{} {
	return b.ready
}

// OnTextChanged registers a listener for document text changes, both
// local (SetText) and remote (on_value_changed). Listeners run
// synchronously and live as long as the bridge.
func (b *Bridge) OnTextChanged(listener func(text string)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.textListeners = append(b.textListeners, listener)
}

// OnLanguageChanged registers a listener for language changes.
func (b *Bridge) OnLanguageChanged(listener func(language string)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.languageListeners = append(b.languageListeners, listener)
}

// OnThemeChanged registers a listener for theme changes.
func (b *Bridge) OnThemeChanged(listener func(theme string)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.themeListeners = append(b.themeListeners, listener)
}

// OnReady registers a listener for the (single) transition to Ready.
func (b *Bridge) OnReady(listener func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.readyListeners = append(b.readyListeners, listener)
}
