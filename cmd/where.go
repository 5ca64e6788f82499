package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/timvw/pane-send/internal/model"
)

var whereCmd = &cobra.Command{
	Use:   "where",
	Short: "Print the target of the pane pane-send runs in",
	Long: `Print session:window.pane of the calling tmux client. Useful to find
the target to configure as a default.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := setup(ctx, nil)
		if err != nil {
			return err
		}
		defer a.close(ctx)

		session := a.mux.CurrentSession(ctx)
		if session == "" {
			return fmt.Errorf("not running inside %s", a.mux.Name())
		}
		window := a.mux.CurrentWindow(ctx, session)
		t := model.Target{
			Session: session,
			Window:  window,
			Pane:    a.mux.CurrentPane(ctx, session, window),
		}
		fmt.Fprintln(cmd.OutOrStdout(), t)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(whereCmd)
}
