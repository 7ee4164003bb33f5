package db

import (
	"context"
	"fmt"
	"io/fs"
	"sort"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	embedsql "github.com/gyeh/claimgen/internal/sql"
)

const migrationsTable = `
CREATE SCHEMA IF NOT EXISTS claims;
CREATE TABLE IF NOT EXISTS claims.schema_migrations (
    name       text PRIMARY KEY,
    applied_at timestamptz NOT NULL DEFAULT now()
)`

// ApplyMigrations runs the embedded SQL migrations in filename order, each in
// its own transaction, and records them in claims.schema_migrations so a
// rerun only applies new files. It returns the number applied.
func ApplyMigrations(ctx context.Context, pool *pgxpool.Pool, log zerolog.Logger) (int, error) {
	entries, err := fs.ReadDir(embedsql.Migrations, "migrations")
	if err != nil {
		return 0, fmt.Errorf("read migrations dir: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	if _, err := pool.Exec(ctx, migrationsTable); err != nil {
		return 0, fmt.Errorf("create migrations table: %w", err)
	}

	applied := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()

		var done bool
		if err := pool.QueryRow(ctx,
			"SELECT EXISTS (SELECT 1 FROM claims.schema_migrations WHERE name = $1)", name,
		).Scan(&done); err != nil {
			return applied, fmt.Errorf("check migration %s: %w", name, err)
		}
		if done {
			log.Debug().Str("migration", name).Msg("already applied")
			continue
		}

		data, err := fs.ReadFile(embedsql.Migrations, "migrations/"+name)
		if err != nil {
			return applied, fmt.Errorf("read migration %s: %w", name, err)
		}

		log.Info().Str("migration", name).Msg("applying migration")
		err = pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
			if _, err := tx.Exec(ctx, string(data)); err != nil {
				return err
			}
			_, err := tx.Exec(ctx, "INSERT INTO claims.schema_migrations (name) VALUES ($1)", name)
			return err
		})
		if err != nil {
			return applied, fmt.Errorf("execute migration %s: %w", name, err)
		}
		applied++
	}

	log.Info().Int("applied", applied).Int("total", len(entries)).Msg("migrations up to date")
	return applied, nil
}
