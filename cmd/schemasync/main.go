// Package main contains the cli implementation of the tool. It uses the
// cobra package and is a thin layer over the core pipeline: introspect,
// parse the target, diff, validate, and (for apply) execute.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	_ "github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"schemasync/internal/config"
	"schemasync/internal/core"
	"schemasync/internal/diff"
	"schemasync/internal/introspect"
	"schemasync/internal/target"
)

var configPath string

func main() {
	// Credentials may live in a .env next to the config file.
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "schemasync",
		Short: "Reconcile a live MySQL schema with a declared target structure",
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath, "path to the connection config file")

	rootCmd.AddCommand(planCmd())
	rootCmd.AddCommand(applyCmd())
	rootCmd.AddCommand(pullCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// connect loads the configuration and opens a verified connection.
func connect(ctx context.Context) (*sql.DB, *config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}

	db, err := sql.Open("mysql", cfg.DSN())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database connection: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, cfg, nil
}

// buildPlan runs the read-only half of the pipeline: introspect the live
// schema, parse the target file, diff, and validate the resulting plan.
func buildPlan(ctx context.Context, db *sql.DB, targetPath string) (*core.Plan, error) {
	current, err := introspect.Introspect(ctx, db)
	if err != nil {
		return nil, err
	}

	desired, err := target.NewParser().ParseFile(targetPath)
	if err != nil {
		return nil, err
	}

	plan := diff.Diff(current, desired)
	if err := diff.ValidatePlan(current, plan); err != nil {
		return nil, err
	}
	return plan, nil
}
