package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"golang.org/x/term"

	"github.com/timvw/pane-send/internal/config"
	"github.com/timvw/pane-send/internal/dispatch"
	"github.com/timvw/pane-send/internal/history"
	"github.com/timvw/pane-send/internal/mux"
	telem "github.com/timvw/pane-send/internal/otel"
	"github.com/timvw/pane-send/internal/picker"
	"github.com/timvw/pane-send/internal/sender"
)

// app holds the services shared by all subcommands.
type app struct {
	cfg     *config.Config
	log     *slog.Logger
	mux     mux.Multiplexer
	history history.Store
	tel     *telem.Telemetry
}

// setup loads configuration and constructs the services. When dryRun is
// non-nil, mutating tmux commands are printed to it instead of executed.
func setup(ctx context.Context, dryRun io.Writer) (*app, error) {
	// Load configuration: defaults -> config file -> env vars.
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if flagLogLevel != "" {
		cfg.LogLevel = flagLogLevel
	}
	if flagTheme != "" {
		cfg.Theme = flagTheme
	}

	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(log)
	if cfg.ConfigFile != "" {
		log.Debug("config loaded", "path", cfg.ConfigFile)
	}

	// Wire build version into OTEL service metadata
	telem.Version = Version

	// Initialize OTEL (no-op if no endpoint configured)
	tel, err := telem.Init(ctx, telem.OTELConfig{
		Endpoint: cfg.OTELEndpoint,
		Headers:  cfg.OTELHeaders,
	})
	if err != nil {
		log.Warn("otel init failed", "error", err)
	}

	m, err := getMultiplexer()
	switch {
	case errors.Is(err, mux.ErrUnavailable):
		// Requests report the missing binary through Available().
		m = mux.NewTmux()
	case err != nil:
		return nil, err
	}
	if t, ok := m.(*mux.Tmux); ok {
		t.Logger = log
		if dryRun != nil {
			t.Runner = &mux.DryRunner{Next: t.Runner, Out: dryRun}
		}
	}

	return &app{
		cfg:     cfg,
		log:     log,
		mux:     m,
		history: openHistory(log),
		tel:     tel,
	}, nil
}

func openHistory(log *slog.Logger) history.Store {
	if flagNoHistory {
		return history.NewMemoryStore()
	}
	path, err := history.DefaultPath()
	if err != nil {
		log.Warn("history disabled", "error", err)
		return history.NewMemoryStore()
	}
	return history.NewFileStore(path)
}

// handler builds a request handler. The picker is only wired when a
// terminal is attached; with piped stdin it reads keys from the tty.
func (a *app) handler() *sender.Handler {
	target, _ := a.cfg.DefaultTarget()
	h := &sender.Handler{
		Mux:        a.mux,
		Dispatcher: &dispatch.Dispatcher{Mux: a.mux, Mode: a.cfg.Mode},
		History:    a.history,
		Settings: sender.Settings{
			DefaultTarget: target,
			FinalKeys:     a.cfg.FinalKeys(),
			Confirm:       a.cfg.ConfirmBeforeSend,
			Remember:      a.cfg.Remember(),
		},
		Logger: a.log,
	}
	if a.tel != nil {
		h.Metrics = a.tel.Metrics
	}
	stdinTTY := term.IsTerminal(int(os.Stdin.Fd()))
	if stdinTTY || term.IsTerminal(int(os.Stderr.Fd())) {
		h.Picker = &picker.Picker{
			Lister:  a.mux,
			Theme:   picker.ThemeByName(a.cfg.Theme),
			OpenTTY: !stdinTTY,
		}
	}
	return h
}

func (a *app) close(ctx context.Context) {
	a.tel.Shutdown(ctx)
}
