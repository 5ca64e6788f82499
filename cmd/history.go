package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recently used targets, most recent first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := setup(ctx, nil)
		if err != nil {
			return err
		}
		defer a.close(ctx)

		for _, t := range a.history.Recent() {
			fmt.Fprintln(cmd.OutOrStdout(), t)
		}
		return nil
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Forget all recently used targets",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := setup(ctx, nil)
		if err != nil {
			return err
		}
		defer a.close(ctx)

		if err := a.handler().ClearHistory(); err != nil {
			return fmt.Errorf("failed to clear history: %w", err)
		}
		status(color.FgGreen, "Recent targets history cleared")
		return nil
	},
}

func init() {
	historyCmd.AddCommand(historyClearCmd)
	rootCmd.AddCommand(historyCmd)
}
