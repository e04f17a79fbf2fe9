package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"crosscheck/internal/runstore"
)

func newShowCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show one stored comparison run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *runstore.Store) error {
				rpt, err := store.GetRun(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if asJSON || !isTerminal(cmd) {
					return printReportJSON(cmd, rpt)
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderReport(rpt))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the full report as JSON")
	return cmd
}
