package mux

import (
	"fmt"
	"os"
	"os/exec"
)

// Detect auto-detects the terminal multiplexer to talk to.
// It checks $TMUX first, then falls back to looking for the tmux binary,
// since sending does not require being inside tmux. Without tmux the error
// wraps ErrUnavailable.
func Detect() (Multiplexer, error) {
	if os.Getenv("TMUX") != "" {
		return NewTmux(), nil
	}
	if tmuxPath, err := exec.LookPath("tmux"); err == nil && tmuxPath != "" {
		return NewTmux(), nil
	}
	return nil, fmt.Errorf("%w: tmux not found in PATH", ErrUnavailable)
}

// FromName creates a Multiplexer by name.
func FromName(name string) (Multiplexer, error) {
	switch name {
	case "tmux":
		return NewTmux(), nil
	default:
		return nil, fmt.Errorf("unknown multiplexer: %q (supported: tmux)", name)
	}
}
