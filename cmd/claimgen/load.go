package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gyeh/claimgen/internal/db"
	"github.com/gyeh/claimgen/internal/exitcode"
	"github.com/gyeh/claimgen/internal/load"
	"github.com/gyeh/claimgen/internal/logging"
	"github.com/gyeh/claimgen/internal/model"
)

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "COPY a Parquet dataset into Postgres",
	Long:  "Loads the four Parquet tables in --out into the claims schema in one transaction.",
	RunE:  runLoad,
}

func init() {
	addDSNFlag(loadCmd)
	loadCmd.Flags().BoolVar(&cfg.Force, "force", false, "Reload even if the dataset digest is already loaded")
	rootCmd.AddCommand(loadCmd)
}

func runLoad(cmd *cobra.Command, args []string) error {
	log := logging.Setup(cfg.LogFormat)
	ctx := context.Background()

	if err := cfg.ValidateWithDSN(); err != nil {
		log.Error().Err(err).Msg("config validation failed")
		os.Exit(exitcode.UsageError)
	}

	pool, err := db.NewPool(ctx, cfg.DSN)
	if err != nil {
		log.Error().Err(err).Msg("database connection failed")
		os.Exit(exitcode.DBConnError)
	}
	defer pool.Close()

	summary, err := load.Run(ctx, pool, log, load.Options{Dir: cfg.OutDir, Force: cfg.Force},
		newTracker(log, "load", 0))
	if err != nil {
		var pe *load.PipelineError
		if errors.As(err, &pe) {
			log.Error().Err(pe.Err).Str("phase", pe.Phase).Msg("load failed")
			switch pe.Phase {
			case load.PhasePreflight:
				os.Exit(exitcode.ValidationError)
			default:
				os.Exit(exitcode.CopyError)
			}
		}
		log.Error().Err(err).Msg("load failed")
		os.Exit(exitcode.CopyError)
	}

	if summary.AlreadyLoaded {
		fmt.Printf("Dataset already loaded as batch %s\n", summary.LoadBatchID)
		return nil
	}
	fmt.Printf("Load complete: batch %s, %d enrollment, %d medical, %d pharmacy, %d supplemental rows (%.1fs)\n",
		summary.LoadBatchID,
		summary.RowsCopied[model.TableEnrollment],
		summary.RowsCopied[model.TableMedicalClaims],
		summary.RowsCopied[model.TablePharmacyClaims],
		summary.RowsCopied[model.TableSupplemental],
		summary.DurationTotal.Seconds())
	return nil
}
