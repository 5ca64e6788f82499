// Package dispatch turns a text buffer into an ordered sequence of
// keystroke injections against one target pane.
//
// Calls are issued strictly one after another. tmux has no batching, so two
// overlapping sends to the same pane would interleave characters; callers
// serialize sends per target.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/timvw/pane-send/internal/model"
	"github.com/timvw/pane-send/internal/mux"
)

// ErrEmptyInput is returned when there is nothing to send.
var ErrEmptyInput = errors.New("nothing to send")

// EnterKey is the key pressed between lines.
const EnterKey = "Enter"

// SendMode selects how multi-line text is delivered.
type SendMode string

const (
	// ModeLineByLine types each line and presses Enter between lines, so
	// REPLs see one input event per line.
	ModeLineByLine SendMode = "line-by-line"
	// ModePaste delivers the whole buffer as one bracketed paste.
	ModePaste SendMode = "paste"
)

// ParseMode maps a configured mode name to a SendMode. "all-at-once" is
// kept as an alias of line-by-line for older configs.
func ParseMode(s string) (SendMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(ModeLineByLine), "all-at-once":
		return ModeLineByLine, nil
	case string(ModePaste):
		return ModePaste, nil
	default:
		return "", fmt.Errorf("unknown send mode %q (supported: line-by-line, paste)", s)
	}
}

// Report counts the injections that completed. After a failure it tells
// the caller how much of the buffer already reached the pane.
type Report struct {
	Lines      int // lines in the buffer
	LinesSent  int // lines fully typed
	KeysSent   int // named keys pressed, separators included
	FinalKeys  int // final keys requested
	Injections int // total tmux calls that succeeded
}

// Partial reports whether some but not all of the buffer was delivered.
func (r Report) Partial() bool {
	return r.Injections > 0 && r.LinesSent < r.Lines
}

// Dispatcher sends text through a multiplexer Sender.
type Dispatcher struct {
	Mux  mux.Sender
	Mode SendMode
}

// New creates a Dispatcher in line-by-line mode.
func New(s mux.Sender) *Dispatcher {
	return &Dispatcher{Mux: s, Mode: ModeLineByLine}
}

// Send types text into target exactly as given, then presses each key in
// finalKeys (comma separated, see ParseKeys). Leading and trailing
// whitespace of every line is preserved. A failure mid-sequence is not
// retried; the returned Report shows what was already delivered.
func (d *Dispatcher) Send(ctx context.Context, target model.Target, text, finalKeys string) (Report, error) {
	if strings.TrimSpace(text) == "" {
		return Report{}, ErrEmptyInput
	}

	keys := ParseKeys(finalKeys)
	var r Report
	r.FinalKeys = len(keys)

	var err error
	if d.Mode == ModePaste {
		err = d.sendPaste(ctx, target, text, &r)
	} else {
		err = d.sendLines(ctx, target, text, &r)
	}
	if err != nil {
		return r, err
	}

	for _, k := range keys {
		if err := d.Mux.SendKey(ctx, target, k); err != nil {
			return r, fmt.Errorf("final key %q: %w", k, wrapDispatch(err))
		}
		r.KeysSent++
		r.Injections++
	}
	return r, nil
}

func (d *Dispatcher) sendLines(ctx context.Context, target model.Target, text string, r *Report) error {
	lines := SplitLines(text)
	r.Lines = len(lines)
	for i, line := range lines {
		// An empty line is just its line break.
		if line != "" {
			if err := d.Mux.SendLiteral(ctx, target, line); err != nil {
				return fmt.Errorf("line %d of %d: %w", i+1, len(lines), wrapDispatch(err))
			}
			r.Injections++
		}
		if i < len(lines)-1 {
			if err := d.Mux.SendKey(ctx, target, EnterKey); err != nil {
				return fmt.Errorf("line break after line %d: %w", i+1, wrapDispatch(err))
			}
			r.KeysSent++
			r.Injections++
		}
		r.LinesSent++
	}
	return nil
}

func (d *Dispatcher) sendPaste(ctx context.Context, target model.Target, text string, r *Report) error {
	r.Lines = len(SplitLines(text))
	if err := d.Mux.PasteText(ctx, target, text); err != nil {
		return wrapDispatch(err)
	}
	r.LinesSent = r.Lines
	r.Injections++
	return nil
}

// SplitLines splits text on line separators ("\n" or "\r\n") without
// touching any other whitespace.
func SplitLines(text string) []string {
	return strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
}

// ParseKeys parses a comma-separated key list. Whitespace around each name
// is ignored and empty entries are dropped, so "Enter, Space ," yields
// ["Enter", "Space"].
func ParseKeys(spec string) []string {
	var keys []string
	for _, k := range strings.Split(spec, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}

func wrapDispatch(err error) error {
	if errors.Is(err, mux.ErrDispatch) {
		return err
	}
	return fmt.Errorf("%w: %w", mux.ErrDispatch, err)
}
