package model

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// ErrEmptySession is returned when a target string has no session component.
var ErrEmptySession = errors.New("empty session")

// ParseError describes a target string that could not be parsed.
type ParseError struct {
	Input string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid target %q: %v", e.Input, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Target addresses a tmux destination as session[:window[.pane]].
// An empty Window or Pane means "whatever is currently active".
type Target struct {
	// Session is the session name. Always set on a valid target.
	Session string `json:"session" yaml:"session"`
	// Window is the window index or name.
	Window string `json:"window,omitempty" yaml:"window,omitempty"`
	// Pane is the pane index within the window.
	Pane string `json:"pane,omitempty" yaml:"pane,omitempty"`
}

// ParseTarget parses "session", "session:window" or "session:window.pane".
// Empty trailing components collapse to absent, so "foo:" and "foo:." both
// parse to {Session: "foo"}.
func ParseTarget(s string) (Target, error) {
	s = strings.TrimSpace(s)

	session, rest, hasWindow := strings.Cut(s, ":")
	if session == "" {
		return Target{}, &ParseError{Input: s, Err: ErrEmptySession}
	}
	if !hasWindow {
		return Target{Session: session}, nil
	}

	window, pane, _ := strings.Cut(rest, ".")
	return Target{Session: session, Window: window, Pane: pane}, nil
}

// String formats the target in tmux target syntax. A pane without a window
// is written as "session:.pane", which tmux resolves against the session's
// current window.
func (t Target) String() string {
	var b strings.Builder
	b.WriteString(t.Session)
	if t.Window != "" || t.Pane != "" {
		b.WriteByte(':')
		b.WriteString(t.Window)
	}
	if t.Pane != "" {
		b.WriteByte('.')
		b.WriteString(t.Pane)
	}
	return b.String()
}

// IsZero reports whether the target has no session.
func (t Target) IsZero() bool {
	return t.Session == ""
}

// WithWindow returns a copy of t addressing the given window, dropping any pane.
func (t Target) WithWindow(window string) Target {
	return Target{Session: t.Session, Window: window}
}

// WithPane returns a copy of t addressing the given pane.
func (t Target) WithPane(pane string) Target {
	t.Pane = pane
	return t
}

// Validate checks that every component is an opaque tmux identifier that
// cannot change the meaning of the composed target string.
func (t Target) Validate() error {
	if t.Session == "" {
		return &ParseError{Input: t.String(), Err: ErrEmptySession}
	}
	for _, c := range []struct{ name, value string }{
		{"session", t.Session},
		{"window", t.Window},
		{"pane", t.Pane},
	} {
		if err := validateComponent(c.value); err != nil {
			return &ParseError{Input: t.String(), Err: fmt.Errorf("%s: %w", c.name, err)}
		}
	}
	return nil
}

func validateComponent(v string) error {
	if strings.HasPrefix(v, "-") {
		return fmt.Errorf("must not start with '-'")
	}
	for _, r := range v {
		switch {
		case r == ':' || r == '.':
			return fmt.Errorf("must not contain %q", r)
		case unicode.IsControl(r):
			return fmt.Errorf("must not contain control characters")
		}
	}
	return nil
}

// Session is a live tmux session.
type Session struct {
	Name string `json:"name"`
}

// Target returns the session-level target.
func (s Session) Target() Target {
	return Target{Session: s.Name}
}

// Window is a window inside one session. Index is what targets use,
// Name is only displayed.
type Window struct {
	Index string `json:"index"`
	Name  string `json:"name"`
}

// Target returns the window-level target inside session.
func (w Window) Target(session string) Target {
	return Target{Session: session, Window: w.Index}
}

// Pane is a pane inside one (session, window). Index is what targets use,
// ID is tmux's global pane id (e.g. "%3").
type Pane struct {
	Index string `json:"index"`
	ID    string `json:"id"`
}

// Target returns the pane-level target.
func (p Pane) Target(session, window string) Target {
	return Target{Session: session, Window: window, Pane: p.Index}
}
