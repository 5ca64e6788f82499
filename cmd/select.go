package cmd

import (
	"github.com/spf13/cobra"
)

var selectCmd = &cobra.Command{
	Use:   "select",
	Short: "Pick a target interactively and remember it",
	Long: `Open the target picker and store the chosen target as the most recent
one, so the next "pane-send send" without --target uses it.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := setup(ctx, nil)
		if err != nil {
			return err
		}
		defer a.close(ctx)

		return report(a.handler().HandleSelectRequest(ctx))
	},
}

func init() {
	rootCmd.AddCommand(selectCmd)
}
