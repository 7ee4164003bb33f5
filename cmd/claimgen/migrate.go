package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/gyeh/claimgen/internal/db"
	"github.com/gyeh/claimgen/internal/exitcode"
	"github.com/gyeh/claimgen/internal/logging"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database schema migrations",
	RunE:  runMigrate,
}

func init() {
	addDSNFlag(migrateCmd)
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	log := logging.Setup(cfg.LogFormat)
	ctx := context.Background()

	if cfg.DSN == "" {
		log.Error().Msg("--dsn or DATABASE_URL is required")
		os.Exit(exitcode.UsageError)
	}

	pool, err := db.NewPool(ctx, cfg.DSN)
	if err != nil {
		log.Error().Err(err).Msg("database connection failed")
		os.Exit(exitcode.DBConnError)
	}
	defer pool.Close()

	n, err := db.ApplyMigrations(ctx, pool, log)
	if err != nil {
		log.Error().Err(err).Msg("migration failed")
		os.Exit(exitcode.ValidationError)
	}

	log.Info().Int("applied", n).Msg("schema is up to date")
	return nil
}

func addDSNFlag(cmd *cobra.Command) {
	cmd.Flags().StringVar(&cfg.DSN, "dsn", os.Getenv("DATABASE_URL"), "Postgres connection string (or set DATABASE_URL)")
}
