package load

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	embedsql "github.com/gyeh/claimgen/internal/sql"
)

// Finalize refreshes planner statistics on the claims tables.
func Finalize(ctx context.Context, pool *pgxpool.Pool, log zerolog.Logger) (time.Duration, error) {
	start := time.Now()
	if _, err := pool.Exec(ctx, embedsql.AnalyzeClaims); err != nil {
		return 0, fmt.Errorf("analyze claims: %w", err)
	}
	dur := time.Since(start)
	log.Info().Dur("duration", dur).Msg("ANALYZE complete")
	return dur, nil
}
