package sender

import (
	"fmt"

	"github.com/timvw/pane-send/internal/dispatch"
	"github.com/timvw/pane-send/internal/model"
)

// Kind classifies the outcome of a request.
type Kind int

const (
	OK Kind = iota
	Cancelled
	ToolUnavailable
	EmptyInput
	TargetNotFound
	DispatchFailed
)

func (k Kind) String() string {
	switch k {
	case OK:
		return "ok"
	case Cancelled:
		return "cancelled"
	case ToolUnavailable:
		return "tool_unavailable"
	case EmptyInput:
		return "empty_input"
	case TargetNotFound:
		return "target_not_found"
	case DispatchFailed:
		return "dispatch_failed"
	}
	return "unknown"
}

// Result is what a request produced.
type Result struct {
	Kind      Kind
	Target    model.Target
	Err       error
	Report    dispatch.Report
	RequestID string
	// Selected is set by HandleSelectRequest on success.
	Selected bool
}

// Failed reports whether the result should be shown as an error.
// Cancelling is not a failure.
func (r Result) Failed() bool {
	return r.Kind != OK && r.Kind != Cancelled
}

// Message renders the user-facing status line.
func (r Result) Message() string {
	switch r.Kind {
	case OK:
		if r.Selected {
			return "Target selected: " + r.Target.String()
		}
		return "Sent to tmux: " + r.Target.String()
	case Cancelled:
		return "Cancelled"
	case ToolUnavailable:
		return "Tmux is not installed or not in PATH"
	case EmptyInput:
		return "Nothing to send"
	case TargetNotFound:
		if !r.Target.IsZero() {
			return "Tmux target not found: " + r.Target.String()
		}
		return fmt.Sprintf("Target not resolved: %v", r.Err)
	case DispatchFailed:
		msg := fmt.Sprintf("Failed to send to tmux: %v", r.Err)
		if r.Report.Injections > 0 {
			msg += fmt.Sprintf(" (partially delivered: %d of %d lines)", r.Report.LinesSent, r.Report.Lines)
		}
		return msg
	}
	return r.Kind.String()
}
