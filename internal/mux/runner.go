package mux

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
)

// Command is a single external process invocation.
type Command struct {
	Name  string
	Args  []string
	Stdin string
	// Mutates is true for commands that change what is on screen
	// (send-keys, paste-buffer). Queries leave it false.
	Mutates bool
}

// Argv returns the command name followed by its arguments.
func (c Command) Argv() []string {
	return append([]string{c.Name}, c.Args...)
}

// String renders the command as a copy-pasteable shell line.
func (c Command) String() string {
	s := ShellJoin(c.Argv())
	if c.Stdin != "" {
		s = "printf %s " + ShellQuote(c.Stdin) + " | " + s
	}
	return s
}

// Runner executes commands. Swapped out in tests and for --dry-run.
type Runner interface {
	Run(ctx context.Context, c Command) (string, error)
}

// ExecRunner runs commands with os/exec. Arguments are passed as argv, so
// no shell ever sees them.
type ExecRunner struct{}

// Run executes c and returns its stdout. Stderr is folded into the error.
func (ExecRunner) Run(ctx context.Context, c Command) (string, error) {
	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	if c.Stdin != "" {
		cmd.Stdin = strings.NewReader(c.Stdin)
	}
	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", fmt.Errorf("%w: %s", err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return "", err
	}
	return string(out), nil
}

// DryRunner executes queries through Next but only prints mutating
// commands to Out.
type DryRunner struct {
	Next Runner
	Out  io.Writer

	mu       sync.Mutex
	recorded []Command
}

// Run implements Runner.
func (d *DryRunner) Run(ctx context.Context, c Command) (string, error) {
	if !c.Mutates {
		return d.Next.Run(ctx, c)
	}
	d.mu.Lock()
	d.recorded = append(d.recorded, c)
	d.mu.Unlock()
	if d.Out != nil {
		fmt.Fprintln(d.Out, c.String())
	}
	return "", nil
}

// Recorded returns the mutating commands seen so far.
func (d *DryRunner) Recorded() []Command {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]Command, len(d.recorded))
	copy(out, d.recorded)
	return out
}
