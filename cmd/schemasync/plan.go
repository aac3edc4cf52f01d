package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"schemasync/internal/output"
)

func planCmd() *cobra.Command {
	var targetPath, format string

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Preview the operations needed to converge on the target schema",
		Long: `Introspect the live database, diff it against the target schema file,
and print the validated change plan without executing anything. The preview
is deterministic: a later apply of the same pair runs exactly these
operations in exactly this order.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			db, _, err := connect(ctx)
			if err != nil {
				return err
			}
			defer db.Close()

			plan, err := buildPlan(ctx, db, targetPath)
			if err != nil {
				return err
			}

			formatter, err := output.NewFormatter(format)
			if err != nil {
				return err
			}
			rendered, err := formatter.FormatPlan(plan)
			if err != nil {
				return err
			}
			fmt.Print(rendered)

			if plan.IsEmpty() {
				color.Green("Database is in sync with the target.")
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "target", "t", "target.json", "path to the target schema file")
	cmd.Flags().StringVarP(&format, "format", "f", "human", "output format: human, sql, or json")
	return cmd
}
