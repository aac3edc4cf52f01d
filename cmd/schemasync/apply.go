package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"schemasync/internal/apply"
	"schemasync/internal/output"
)

func applyCmd() *cobra.Command {
	var (
		targetPath string
		format     string
		dryRun     bool
		unsafe     bool
		yes        bool
	)

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Apply the change plan to the live database",
		Long: `Introspect the live database, diff it against the target schema file,
validate the plan, and execute it operation by operation. Execution stops at
the first failing operation; everything applied before it stays applied, and
re-running recomputes a shorter plan from live state.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			db, cfg, err := connect(ctx)
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
				return nil
			}

			confirmed := yes
			if !confirmed && !dryRun {
				confirmed, err = confirm()
				if err != nil {
					return err
				}
				if !confirmed {
					color.Yellow("Aborted; no operations were executed.")
					return nil
				}
			}

			applier := apply.NewApplier(apply.Options{
				DSN:    cfg.DSN(),
				DryRun: dryRun,
				Unsafe: unsafe || confirmed,
				Out:    os.Stdout,
			})
			if err := applier.Connect(ctx); err != nil {
				return err
			}
			defer applier.Close()

			report, applyErr := applier.Apply(ctx, plan)
			if report != nil && len(report.Results) > 0 {
				reportOut, fmtErr := formatter.FormatReport(report)
				if fmtErr != nil {
					return fmtErr
				}
				fmt.Print(reportOut)
			}
			if applyErr != nil {
				color.Red("Apply stopped: %v", applyErr)
				return applyErr
			}
			if !dryRun {
				color.Green("Target structure applied.")
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "target", "t", "target.json", "path to the target schema file")
	cmd.Flags().StringVarP(&format, "format", "f", "human", "output format: human, sql, or json")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the statements without executing them")
	cmd.Flags().BoolVar(&unsafe, "unsafe", false, "allow destructive operations without confirmation")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the interactive confirmation")
	return cmd
}

// confirm asks the user to type "confirm" before anything irreversible
// runs. The core pipeline never prompts; this is the only interactive
// point of the tool.
func confirm() (bool, error) {
	fmt.Println("This will modify the database structure and cannot be undone automatically.")
	fmt.Print("Type 'confirm' to continue > ")

	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false, fmt.Errorf("failed to read confirmation: %w", err)
	}
	return strings.TrimSpace(line) == "confirm", nil
}
