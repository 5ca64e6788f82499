package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/timvw/pane-send/internal/dispatch"
	"github.com/timvw/pane-send/internal/model"
	"github.com/timvw/pane-send/internal/sender"
)

var (
	flagTarget    string
	flagConfirm   bool
	flagStdin     bool
	flagFile      string
	flagClipboard bool
	flagFinalKey  string
	flagMode      string
	flagDryRun    bool
)

var sendCmd = &cobra.Command{
	Use:   "send [text...]",
	Short: "Send text to a tmux pane",
	Long: `Send text to a tmux pane as literal keystrokes, then press the final keys.

The text comes from the arguments (joined with spaces), --stdin, --file or
--clipboard. Without any of these and with stdin not being a terminal, the
text is read from stdin. One trailing newline of stdin or file input is
dropped so "echo ls | pane-send send" presses Enter once.

The target is --target, else the configured default, else the last used
target. The picker opens when none is known, or with --confirm.

Examples:
  pane-send send -t dev:1.0 'make test'
  git diff | pane-send send --mode paste --final-key none
  pane-send send --confirm --file snippet.py`,
	RunE: runSend,
}

func init() {
	sendCmd.Flags().StringVarP(&flagTarget, "target", "t", "", "target pane: session[:window[.pane]]")
	sendCmd.Flags().BoolVar(&flagConfirm, "confirm", false, "always pick the target interactively")
	sendCmd.Flags().BoolVar(&flagStdin, "stdin", false, "read the text from stdin")
	sendCmd.Flags().StringVar(&flagFile, "file", "", "read the text from a file")
	sendCmd.Flags().BoolVar(&flagClipboard, "clipboard", false, "send the clipboard contents")
	sendCmd.Flags().StringVar(&flagFinalKey, "final-key", "", `keys pressed after the text, comma separated ("none" for no key)`)
	sendCmd.Flags().StringVar(&flagMode, "mode", "", "send mode: line-by-line, paste (default: from config)")
	sendCmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "print the tmux commands instead of running them")
	sendCmd.MarkFlagsMutuallyExclusive("stdin", "file", "clipboard")
	rootCmd.AddCommand(sendCmd)
}

func runSend(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	text, err := readText(cmd, args)
	if err != nil {
		return err
	}

	var dryRun io.Writer
	if flagDryRun {
		dryRun = cmd.OutOrStdout()
	}
	a, err := setup(ctx, dryRun)
	if err != nil {
		return err
	}
	defer a.close(ctx)

	if cmd.Flags().Changed("final-key") {
		a.cfg.FinalKey = &flagFinalKey
	}
	if flagMode != "" {
		mode, err := dispatch.ParseMode(flagMode)
		if err != nil {
			return err
		}
		a.cfg.Mode = mode
	}

	req := sender.Request{Text: text, ForceConfirm: flagConfirm}
	if flagTarget != "" {
		t, err := model.ParseTarget(flagTarget)
		if err != nil {
			return err
		}
		req.Target = t
	}

	h := a.handler()
	if flagDryRun {
		h.Settings.Remember = false
	}
	return report(h.HandleSendRequest(ctx, req))
}

// report prints the outcome and turns failures into an error.
func report(res sender.Result) error {
	switch {
	case res.Kind == sender.OK:
		status(color.FgGreen, "%s", res.Message())
		return nil
	case res.Kind == sender.Cancelled:
		status(color.FgYellow, "%s", res.Message())
		return nil
	default:
		return errors.New(res.Message())
	}
}

// readText collects the text to send from exactly one source.
func readText(cmd *cobra.Command, args []string) (string, error) {
	sources := 0
	for _, set := range []bool{len(args) > 0, flagStdin, flagFile != "", flagClipboard} {
		if set {
			sources++
		}
	}
	if sources > 1 {
		return "", fmt.Errorf("text arguments cannot be combined with --stdin, --file or --clipboard")
	}

	switch {
	case len(args) > 0:
		return strings.Join(args, " "), nil
	case flagFile != "":
		data, err := os.ReadFile(flagFile)
		if err != nil {
			return "", fmt.Errorf("read %s: %w", flagFile, err)
		}
		return trimFinalNewline(string(data)), nil
	case flagClipboard:
		text, err := clipboard.ReadAll()
		if err != nil {
			return "", fmt.Errorf("read clipboard: %w", err)
		}
		return text, nil
	case flagStdin || !term.IsTerminal(int(os.Stdin.Fd())):
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return trimFinalNewline(string(data)), nil
	}
	return "", fmt.Errorf("no text given: pass text arguments, --stdin, --file or --clipboard")
}

// trimFinalNewline drops a single trailing "\n" or "\r\n".
func trimFinalNewline(s string) string {
	if strings.HasSuffix(s, "\r\n") {
		return s[:len(s)-2]
	}
	return strings.TrimSuffix(s, "\n")
}
