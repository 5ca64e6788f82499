package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/timvw/pane-send/internal/model"
	"github.com/timvw/pane-send/internal/mux"
)

var listCmd = &cobra.Command{
	Use:   "list [session[:window]]",
	Short: "List sessions, windows or panes",
	Long: `Without an argument, list all tmux sessions. With a session, list its
windows. With session:window, list the panes of that window.

Each line starts with a target that can be passed to "send --target".`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := setup(ctx, nil)
		if err != nil {
			return err
		}
		defer a.close(ctx)

		if !a.mux.Available() {
			return mux.ErrUnavailable
		}

		out := cmd.OutOrStdout()
		if len(args) == 0 {
			for _, s := range a.mux.ListSessions(ctx) {
				fmt.Fprintln(out, s.Name)
			}
			return nil
		}

		t, err := model.ParseTarget(args[0])
		if err != nil {
			return err
		}
		if err := t.Validate(); err != nil {
			return err
		}

		if t.Window == "" {
			windows, err := a.mux.ListWindows(ctx, t.Session)
			if err != nil {
				return err
			}
			for _, w := range windows {
				fmt.Fprintf(out, "%s\t%s\n", w.Target(t.Session), w.Name)
			}
			return nil
		}

		for _, p := range a.mux.ListPanes(ctx, t.Session, t.Window) {
			fmt.Fprintf(out, "%s\t%s\n", p.Target(t.Session, t.Window), p.ID)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
