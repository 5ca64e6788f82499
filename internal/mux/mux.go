// Package mux is the boundary to the terminal multiplexer. Every other
// package talks to tmux through the Multiplexer interface; nothing else
// spawns tmux or a shell.
//
// Listing calls degrade to empty results on failure so interactive pickers
// stay usable. Window listing is the exception: a session that was named
// explicitly is expected to exist, so failure there is reported as
// ErrTargetNotFound. Mutations (send-keys, paste) always report failure.
package mux

import (
	"context"
	"errors"

	"github.com/timvw/pane-send/internal/model"
)

var (
	// ErrUnavailable means the multiplexer binary could not be found.
	ErrUnavailable = errors.New("terminal multiplexer not available")
	// ErrTargetNotFound means a session, window or pane does not exist.
	ErrTargetNotFound = errors.New("target not found")
	// ErrDispatch means a keystroke injection failed.
	ErrDispatch = errors.New("dispatch failed")
)

// Lister is the read side of a multiplexer, used to resolve targets.
type Lister interface {
	// ListSessions returns live sessions. Failure yields an empty result.
	ListSessions(ctx context.Context) []model.Session

	// ListWindows returns the windows of a session. Failure or an empty
	// listing returns an error wrapping ErrTargetNotFound.
	ListWindows(ctx context.Context, session string) ([]model.Window, error)

	// ListPanes returns the panes of session[:window]. Failure yields an
	// empty result.
	ListPanes(ctx context.Context, session, window string) []model.Pane
}

// Sender is the write side of a multiplexer.
type Sender interface {
	// SendLiteral types text into target without key-name interpretation.
	SendLiteral(ctx context.Context, target model.Target, text string) error

	// SendKey presses a named key (e.g. "Enter", "C-c") in target.
	SendKey(ctx context.Context, target model.Target, key string) error

	// PasteText pastes text into target as a single bracketed paste.
	PasteText(ctx context.Context, target model.Target, text string) error
}

// Multiplexer abstracts terminal multiplexer operations.
type Multiplexer interface {
	Lister
	Sender

	// Name returns the multiplexer name (e.g., "tmux").
	Name() string

	// Available reports whether the multiplexer binary is on PATH.
	Available() bool

	// Exists reports whether target currently resolves to a live pane.
	Exists(ctx context.Context, target model.Target) bool

	// CurrentSession returns the session of the calling client, or "".
	CurrentSession(ctx context.Context) string

	// CurrentWindow returns the active window index of session, or "".
	CurrentWindow(ctx context.Context, session string) string

	// CurrentPane returns the active pane index of session[:window], or "".
	CurrentPane(ctx context.Context, session, window string) string
}
