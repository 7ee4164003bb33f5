package load

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/gyeh/claimgen/internal/db"
	"github.com/gyeh/claimgen/internal/model"
	"github.com/gyeh/claimgen/internal/parquetread"
	"github.com/gyeh/claimgen/internal/progress"
)

const readBatchSize = 1024

// StageResult holds metrics from the staging phase.
type StageResult struct {
	RowsRead   map[string]int64
	RowsCopied map[string]int64
	Duration   time.Duration
}

// Stage COPY-loads the four tables into the claims schema inside tx, each
// row tagged with the preflight's load batch ID.
func Stage(ctx context.Context, tx pgx.Tx, log zerolog.Logger, pf *PreflightResult, tracker progress.Tracker) (*StageResult, error) {
	start := time.Now()
	if tracker == nil {
		tracker = progress.Discard
	}
	res := &StageResult{
		RowsRead:   make(map[string]int64),
		RowsCopied: make(map[string]int64),
	}

	for _, f := range pf.Files {
		tracker.SetStage(f.Table)
		var (
			read, copied int64
			err          error
		)
		switch f.Table {
		case model.TableEnrollment:
			read, copied, err = copyTable(ctx, tx, f, pf.LoadBatchID, model.EnrollmentCopyColumns(),
				(*model.EnrollmentParquet).Enrollment, (*model.EnrollmentSpan).CopyValues, tracker)
		case model.TableMedicalClaims:
			read, copied, err = copyTable(ctx, tx, f, pf.LoadBatchID, model.MedicalClaimCopyColumns(),
				(*model.MedicalClaimParquet).MedicalClaim, (*model.MedicalClaim).CopyValues, tracker)
		case model.TablePharmacyClaims:
			read, copied, err = copyTable(ctx, tx, f, pf.LoadBatchID, model.PharmacyClaimCopyColumns(),
				(*model.PharmacyClaimParquet).PharmacyClaim, (*model.PharmacyClaim).CopyValues, tracker)
		case model.TableSupplemental:
			read, copied, err = copyTable(ctx, tx, f, pf.LoadBatchID, model.SupplementalCopyColumns(),
				(*model.SupplementalParquet).Supplemental, (*model.SupplementalDiagnosis).CopyValues, tracker)
		default:
			err = fmt.Errorf("unknown table %q", f.Table)
		}
		if err != nil {
			return nil, fmt.Errorf("stage %s: %w", f.Table, err)
		}
		res.RowsRead[f.Table] = read
		res.RowsCopied[f.Table] = copied

		log.Info().
			Str("table", f.Table).
			Int64("rows_read", read).
			Int64("rows_copied", copied).
			Msg("table copied")
	}
	tracker.Done()

	res.Duration = time.Since(start)
	return res, nil
}

// copyTable streams one Parquet table through a producer goroutine into
// COPY. A row that fails conversion aborts the table.
func copyTable[P any, R any](
	ctx context.Context,
	tx pgx.Tx,
	f parquetread.TableFile,
	batchID uuid.UUID,
	columns []string,
	convert func(*P) (R, error),
	values func(*R, uuid.UUID) []any,
	tracker progress.Tracker,
) (int64, int64, error) {
	reader, err := parquetread.Open[P](f.Path)
	if err != nil {
		return 0, 0, err
	}
	defer reader.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	ch := make(chan []any, readBatchSize)
	errCh := make(chan error, 1)
	var rowsRead int64

	// Producer goroutine: read Parquet → convert → push to channel
	go func() {
		defer close(ch)
		buf := make([]P, readBatchSize)
		for {
			n, readErr := reader.Read(buf)
			for i := 0; i < n; i++ {
				rowsRead++
				row, convErr := convert(&buf[i])
				if convErr != nil {
					errCh <- fmt.Errorf("row %d: %w", rowsRead, convErr)
					return
				}
				select {
				case ch <- values(&row, batchID):
				case <-ctx.Done():
					errCh <- ctx.Err()
					return
				}
			}
			tracker.SetProgress(rowsRead, f.NumRows)
			if readErr == io.EOF {
				break
			}
			if readErr != nil {
				errCh <- fmt.Errorf("read parquet at row %d: %w", rowsRead, readErr)
				return
			}
		}
		errCh <- nil
	}()

	// Consumer: COPY from channel into the claims table
	source := db.NewChannelSource(ch)
	copied, copyErr := tx.CopyFrom(ctx, pgx.Identifier{"claims", f.Table}, columns, source)
	cancel()

	prodErr := <-errCh
	if copyErr != nil {
		return rowsRead, copied, fmt.Errorf("copy: %w", copyErr)
	}
	if prodErr != nil {
		return rowsRead, copied, fmt.Errorf("producer: %w", prodErr)
	}
	if copied != f.NumRows {
		return rowsRead, copied, fmt.Errorf("copied %d rows, file has %d", copied, f.NumRows)
	}
	return rowsRead, copied, nil
}
