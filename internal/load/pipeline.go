// Package load bulk-loads a generated Parquet dataset into Postgres.
package load

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/gyeh/claimgen/internal/model"
	"github.com/gyeh/claimgen/internal/progress"
	embedsql "github.com/gyeh/claimgen/internal/sql"
)

// Phase names reported by PipelineError.
const (
	PhasePreflight = "preflight"
	PhaseStage     = "stage"
	PhaseFinalize  = "finalize"
)

// PipelineError wraps an error with the phase where it occurred.
type PipelineError struct {
	Phase string
	Err   error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("%s: %s", e.Phase, e.Err)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

// Options controls a load run.
type Options struct {
	Dir string
	// Force reloads a dataset whose digest is already loaded, replacing the
	// previous batch.
	Force bool
}

// Run executes the load pipeline: preflight → stage → finalize. The stage
// phase runs in one transaction, so either all four tables commit or none.
func Run(ctx context.Context, pool *pgxpool.Pool, log zerolog.Logger, opts Options, tracker progress.Tracker) (*model.LoadSummary, error) {
	totalStart := time.Now()

	// Phase 1: Preflight
	log.Info().Str("dir", opts.Dir).Msg("starting preflight")
	pf, err := Preflight(ctx, pool, log, opts.Dir, opts.Force)
	if err != nil {
		return nil, &PipelineError{Phase: PhasePreflight, Err: err}
	}

	if pf.AlreadyLoaded {
		log.Info().
			Str("load_batch_id", pf.PreviousBatchID.String()).
			Str("sha256", pf.DatasetSHA256).
			Msg("dataset already loaded, skipping (use --force to reload)")
		return &model.LoadSummary{
			Dir:           opts.Dir,
			DatasetSHA256: pf.DatasetSHA256,
			LoadBatchID:   pf.PreviousBatchID.String(),
			AlreadyLoaded: true,
			DurationRead:  pf.Duration,
			DurationTotal: time.Since(totalStart),
		}, nil
	}

	// Phase 2: Stage, all tables in one transaction
	log.Info().Str("load_batch_id", pf.LoadBatchID.String()).Msg("starting copy")
	var stageResult *StageResult
	err = pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
		if pf.PreviousBatchID != nil {
			if _, err := tx.Exec(ctx, embedsql.DeleteBatch, *pf.PreviousBatchID); err != nil {
				return fmt.Errorf("delete previous batch: %w", err)
			}
			log.Info().Str("load_batch_id", pf.PreviousBatchID.String()).Msg("previous batch removed")
		}
		if _, err := tx.Exec(ctx, embedsql.RegisterBatch, pf.LoadBatchID, pf.Dir, pf.DatasetSHA256); err != nil {
			return fmt.Errorf("register batch: %w", err)
		}

		var err error
		stageResult, err = Stage(ctx, tx, log, pf, tracker)
		if err != nil {
			return err
		}

		var total int64
		for _, n := range stageResult.RowsCopied {
			total += n
		}
		if _, err := tx.Exec(ctx, embedsql.CompleteBatch, pf.LoadBatchID, total); err != nil {
			return fmt.Errorf("complete batch: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, &PipelineError{Phase: PhaseStage, Err: err}
	}

	// Phase 3: Finalize
	if _, err := Finalize(ctx, pool, log); err != nil {
		return nil, &PipelineError{Phase: PhaseFinalize, Err: err}
	}

	summary := &model.LoadSummary{
		Dir:           opts.Dir,
		DatasetSHA256: pf.DatasetSHA256,
		LoadBatchID:   pf.LoadBatchID.String(),
		RowsRead:      stageResult.RowsRead,
		RowsCopied:    stageResult.RowsCopied,
		DurationRead:  pf.Duration,
		DurationCopy:  stageResult.Duration,
		DurationTotal: time.Since(totalStart),
	}

	log.Info().
		Str("load_batch_id", summary.LoadBatchID).
		Int64("enrollment", summary.RowsCopied[model.TableEnrollment]).
		Int64("medical", summary.RowsCopied[model.TableMedicalClaims]).
		Int64("pharmacy", summary.RowsCopied[model.TablePharmacyClaims]).
		Int64("supplemental", summary.RowsCopied[model.TableSupplemental]).
		Str("total_duration", summary.DurationTotal.String()).
		Msg("load pipeline complete")

	return summary, nil
}

// CountBatch returns the rows stored per table for one load batch.
func CountBatch(ctx context.Context, pool *pgxpool.Pool, batchID string) (map[string]int64, error) {
	var enr, med, rx, sup int64
	if err := pool.QueryRow(ctx, embedsql.CountBatchRows, batchID).Scan(&enr, &med, &rx, &sup); err != nil {
		return nil, fmt.Errorf("count batch rows: %w", err)
	}
	return map[string]int64{
		model.TableEnrollment:     enr,
		model.TableMedicalClaims:  med,
		model.TablePharmacyClaims: rx,
		model.TableSupplemental:   sup,
	}, nil
}
