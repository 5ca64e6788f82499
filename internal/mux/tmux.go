package mux

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"unicode"

	"github.com/timvw/pane-send/internal/model"
)

// Tmux implements the Multiplexer interface for tmux.
type Tmux struct {
	// Runner executes tmux. Defaults to ExecRunner.
	Runner Runner
	// Logger receives every tmux invocation at debug level.
	Logger *slog.Logger
	// LookPath locates the tmux binary. Defaults to exec.LookPath.
	LookPath func(file string) (string, error)
}

// NewTmux creates a new tmux multiplexer.
func NewTmux() *Tmux {
	return &Tmux{Runner: ExecRunner{}}
}

// Name returns "tmux".
func (t *Tmux) Name() string {
	return "tmux"
}

// Available reports whether tmux is on PATH.
func (t *Tmux) Available() bool {
	lookPath := t.LookPath
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	path, err := lookPath("tmux")
	return err == nil && path != ""
}

// ListSessions returns all tmux sessions.
func (t *Tmux) ListSessions(ctx context.Context) []model.Session {
	out, err := t.query(ctx, "list-sessions", "-F", "#{session_name}")
	if err != nil {
		t.logger().Debug("list sessions failed", "err", err)
		return nil
	}
	var sessions []model.Session
	for _, line := range splitLines(out) {
		sessions = append(sessions, model.Session{Name: line})
	}
	return sessions
}

// ListWindows returns the windows of session as index:name pairs.
func (t *Tmux) ListWindows(ctx context.Context, session string) ([]model.Window, error) {
	target := model.Target{Session: session}
	if err := target.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTargetNotFound, err)
	}

	out, err := t.query(ctx, "list-windows", "-t", target.String(), "-F", "#{window_index}:#{window_name}")
	if err != nil {
		return nil, fmt.Errorf("%w: list windows for session %q: %w", ErrTargetNotFound, session, err)
	}

	var windows []model.Window
	for _, line := range splitLines(out) {
		index, name, _ := strings.Cut(line, ":")
		if name == "" {
			name = index
		}
		windows = append(windows, model.Window{Index: index, Name: name})
	}
	if len(windows) == 0 {
		return nil, fmt.Errorf("%w: no windows found in session %q", ErrTargetNotFound, session)
	}
	return windows, nil
}

// ListPanes returns the panes of session[:window] as index:id pairs.
func (t *Tmux) ListPanes(ctx context.Context, session, window string) []model.Pane {
	target := model.Target{Session: session, Window: window}
	if err := target.Validate(); err != nil {
		t.logger().Debug("list panes: invalid target", "target", target.String(), "err", err)
		return nil
	}

	out, err := t.query(ctx, "list-panes", "-t", target.String(), "-F", "#{pane_index}:#{pane_id}")
	if err != nil {
		t.logger().Debug("list panes failed", "target", target.String(), "err", err)
		return nil
	}

	var panes []model.Pane
	for _, line := range splitLines(out) {
		index, id, _ := strings.Cut(line, ":")
		panes = append(panes, model.Pane{Index: index, ID: id})
	}
	return panes
}

// Exists reports whether target resolves to a live pane. has-session
// resolves every component of the target and exits non-zero on a missing
// window or pane. display-message is unsuitable here: it falls back to the
// current pane when the lookup fails.
func (t *Tmux) Exists(ctx context.Context, target model.Target) bool {
	if err := target.Validate(); err != nil {
		return false
	}
	_, err := t.query(ctx, "has-session", "-t", target.String())
	return err == nil
}

// SendLiteral types text into target with send-keys -l. The text is a
// single argv element after "--", so tmux neither splits it nor reads a
// leading '-' as a flag, and no shell is involved.
func (t *Tmux) SendLiteral(ctx context.Context, target model.Target, text string) error {
	if err := target.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrDispatch, err)
	}
	if text == "" {
		return nil
	}
	err := t.mutate(ctx, Command{
		Name: "tmux",
		Args: []string{"send-keys", "-t", target.String(), "-l", "--", escapeTrailingSemicolon(text)},
	})
	if err != nil {
		return fmt.Errorf("%w: send literal text to %s: %w", ErrDispatch, target, err)
	}
	return nil
}

// SendKey presses a named tmux key such as "Enter", "Space" or "C-c".
func (t *Tmux) SendKey(ctx context.Context, target model.Target, key string) error {
	if err := target.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrDispatch, err)
	}
	if !isKeyName(key) {
		return fmt.Errorf("%w: invalid key name %q", ErrDispatch, key)
	}
	err := t.mutate(ctx, Command{
		Name: "tmux",
		Args: []string{"send-keys", "-t", target.String(), "--", key},
	})
	if err != nil {
		return fmt.Errorf("%w: send key %s to %s: %w", ErrDispatch, key, target, err)
	}
	return nil
}

// PasteText loads text into a private tmux buffer from stdin and pastes it
// into target as one bracketed paste, deleting the buffer afterwards.
func (t *Tmux) PasteText(ctx context.Context, target model.Target, text string) error {
	if err := target.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrDispatch, err)
	}
	if text == "" {
		return nil
	}
	buffer := fmt.Sprintf("pane-send-%d", os.Getpid())
	err := t.mutate(ctx, Command{
		Name:  "tmux",
		Args:  []string{"load-buffer", "-b", buffer, "-"},
		Stdin: text,
	})
	if err != nil {
		return fmt.Errorf("%w: load buffer: %w", ErrDispatch, err)
	}
	err = t.mutate(ctx, Command{
		Name: "tmux",
		Args: []string{"paste-buffer", "-d", "-p", "-b", buffer, "-t", target.String()},
	})
	if err != nil {
		return fmt.Errorf("%w: paste buffer into %s: %w", ErrDispatch, target, err)
	}
	return nil
}

// CurrentSession returns the session of the client running this process.
func (t *Tmux) CurrentSession(ctx context.Context) string {
	return t.display(ctx, model.Target{}, "#{session_name}")
}

// CurrentWindow returns the active window index of session.
func (t *Tmux) CurrentWindow(ctx context.Context, session string) string {
	return t.display(ctx, model.Target{Session: session}, "#{window_index}")
}

// CurrentPane returns the active pane index of session[:window].
func (t *Tmux) CurrentPane(ctx context.Context, session, window string) string {
	return t.display(ctx, model.Target{Session: session, Window: window}, "#{pane_index}")
}

func (t *Tmux) display(ctx context.Context, target model.Target, format string) string {
	args := []string{"display-message", "-p"}
	if !target.IsZero() {
		if err := target.Validate(); err != nil {
			return ""
		}
		args = append(args, "-t", target.String())
	}
	args = append(args, format)
	out, err := t.query(ctx, args...)
	if err != nil {
		t.logger().Debug("display-message failed", "format", format, "err", err)
		return ""
	}
	return strings.TrimSpace(out)
}

// query runs a read-only tmux command and returns its stdout.
func (t *Tmux) query(ctx context.Context, args ...string) (string, error) {
	return t.run(ctx, Command{Name: "tmux", Args: args})
}

// mutate runs a tmux command that changes pane state.
func (t *Tmux) mutate(ctx context.Context, c Command) error {
	c.Mutates = true
	_, err := t.run(ctx, c)
	return err
}

func (t *Tmux) run(ctx context.Context, c Command) (string, error) {
	t.logger().Debug("tmux", "cmd", c.String())
	runner := t.Runner
	if runner == nil {
		runner = ExecRunner{}
	}
	return runner.Run(ctx, c)
}

func (t *Tmux) logger() *slog.Logger {
	if t.Logger != nil {
		return t.Logger
	}
	return slog.Default()
}

// splitLines splits line-oriented tmux output, dropping blank lines.
func splitLines(out string) []string {
	var lines []string
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

// escapeTrailingSemicolon protects a final ';'. tmux reads an argument
// ending in ';' as a command separator and strips it, even when the argument
// arrives through argv. A trailing `\;` is unescaped back to ";", and any
// backslash before it is kept.
func escapeTrailingSemicolon(text string) string {
	if !strings.HasSuffix(text, ";") {
		return text
	}
	return text[:len(text)-1] + "\\;"
}

// isKeyName reports whether key is usable as a single tmux key token.
func isKeyName(key string) bool {
	if key == "" {
		return false
	}
	for _, r := range key {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return false
		}
	}
	return true
}
