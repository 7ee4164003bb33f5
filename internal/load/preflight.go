package load

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/gyeh/claimgen/internal/normalize"
	"github.com/gyeh/claimgen/internal/parquetread"
	embedsql "github.com/gyeh/claimgen/internal/sql"
)

// PreflightResult holds all context resolved during the preflight phase.
type PreflightResult struct {
	// Dir is the output directory holding the four Parquet tables.
	Dir string
	// Files lists the validated table files in load order.
	Files []parquetread.TableFile
	// DatasetSHA256 identifies the dataset: the SHA-256 of the four file
	// digests, in table order.
	DatasetSHA256 string
	// LoadBatchID tags every row copied by this run.
	LoadBatchID uuid.UUID
	// PreviousBatchID is set when the same dataset is already loaded.
	PreviousBatchID *uuid.UUID
	// AlreadyLoaded is true when the dataset is loaded and force is off.
	AlreadyLoaded bool
	Duration      time.Duration
}

// Preflight validates every table file in dir and checks whether the same
// dataset has already been loaded.
func Preflight(ctx context.Context, pool *pgxpool.Pool, log zerolog.Logger, dir string, force bool) (*PreflightResult, error) {
	start := time.Now()

	files, err := parquetread.Inspect(dir)
	if err != nil {
		return nil, fmt.Errorf("preflight validate: %w", err)
	}

	sha, err := DatasetHash(files)
	if err != nil {
		return nil, fmt.Errorf("preflight hash: %w", err)
	}

	pf := &PreflightResult{
		Dir:           dir,
		Files:         files,
		DatasetSHA256: sha,
		LoadBatchID:   uuid.New(),
	}

	var prev uuid.UUID
	err = pool.QueryRow(ctx, embedsql.LookupLoadedBatch, sha).Scan(&prev)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
	case err != nil:
		return nil, fmt.Errorf("preflight lookup batch: %w", err)
	default:
		pf.PreviousBatchID = &prev
		pf.AlreadyLoaded = !force
	}
	pf.Duration = time.Since(start)

	ev := log.Info().Str("dir", dir).Str("sha256", sha)
	for _, f := range files {
		ev = ev.Int64(f.Table, f.NumRows)
	}
	ev.Bool("already_loaded", pf.PreviousBatchID != nil).
		Dur("duration", pf.Duration).
		Msg("preflight complete")

	return pf, nil
}

// DatasetHash combines the per-file SHA-256 digests into one dataset digest.
func DatasetHash(files []parquetread.TableFile) (string, error) {
	h := sha256.New()
	for _, f := range files {
		sum, err := normalize.FileHash(f.Path)
		if err != nil {
			return "", fmt.Errorf("%s: %w", f.Table, err)
		}
		fmt.Fprintf(h, "%s %s\n", f.Table, sum)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
