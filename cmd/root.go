package cmd

import (
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/timvw/pane-send/internal/mux"
)

var (
	// Global flags.
	flagMux       string
	flagLogLevel  string
	flagTheme     string
	flagNoHistory bool
)

var rootCmd = &cobra.Command{
	Use:   "pane-send",
	Short: "Type text into a tmux pane as if it were typed by hand",
	Long: `pane-send delivers text into a tmux pane addressed as session[:window[.pane]]
and then presses a configurable sequence of keys (Enter by default).

Multi-line text is typed line by line with Enter between lines, so REPLs
and shells see one input event per line. Text is passed to tmux as literal
keystrokes, never through a shell.

When no target is given, pane-send uses the configured default, then the
last used target, and otherwise opens an interactive picker.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagMux, "mux", envOrDefault("PANE_SEND_MUX", ""), "terminal multiplexer: tmux (default: auto-detect)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level: debug, info, warn, error (default: from config, warn)")
	rootCmd.PersistentFlags().StringVar(&flagTheme, "theme", "", "picker color theme: dark, light (default: from config, dark)")
	rootCmd.PersistentFlags().BoolVar(&flagNoHistory, "no-history", false, "do not read or write the recent targets history")
}

// getMultiplexer returns the configured or auto-detected multiplexer.
func getMultiplexer() (mux.Multiplexer, error) {
	if flagMux != "" {
		return mux.FromName(flagMux)
	}
	return mux.Detect()
}

func envOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

// status prints a colored one-line status message to stderr.
func status(c color.Attribute, format string, args ...any) {
	color.New(c).Fprintf(os.Stderr, format+"\n", args...)
}
