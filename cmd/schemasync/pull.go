package main

import (
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"schemasync/internal/introspect"
	"schemasync/internal/target"
)

func pullCmd() *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "pull",
		Short: "Export the live database structure as a target schema file",
		Long: `Introspect the live database and write its structure in the target
schema format. The exported file uses the engine's own type spellings, so it
diffs clean against the database it came from and is the recommended
starting point for a new target file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			db, _, err := connect(ctx)
			if err != nil {
				return err
			}
			defer db.Close()

			schema, err := introspect.Introspect(ctx, db)
			if err != nil {
				return err
			}

			encoded, err := target.Encode(schema)
			if err != nil {
				return err
			}
			if err := os.WriteFile(outPath, encoded, 0o644); err != nil {
				return err
			}

			color.Green("Wrote %d tables to %s", len(schema.Tables), outPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outPath, "out", "o", "target.json", "path of the file to write")
	return cmd
}
