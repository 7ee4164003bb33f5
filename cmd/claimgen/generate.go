package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/gyeh/claimgen/internal/catalog"
	"github.com/gyeh/claimgen/internal/codemap"
	"github.com/gyeh/claimgen/internal/exitcode"
	"github.com/gyeh/claimgen/internal/logging"
	"github.com/gyeh/claimgen/internal/model"
	"github.com/gyeh/claimgen/internal/normalize"
	"github.com/gyeh/claimgen/internal/output"
	"github.com/gyeh/claimgen/internal/progress"
	"github.com/gyeh/claimgen/internal/synth"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate the four tables from the scenario catalog",
	RunE:  runGenerate,
}

func init() {
	addGenerationFlags(generateCmd)
	addS3Flags(generateCmd)
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	log := logging.Setup(cfg.LogFormat)
	totalStart := time.Now()

	if err := cfg.Validate(); err != nil {
		log.Error().Err(err).Msg("config validation failed")
		os.Exit(exitcode.UsageError)
	}
	format, _ := output.ParseFormat(cfg.Format)

	cat, catSHA, mapper := loadInputs(log)

	g, err := synth.New(cfg.SynthOptions(), cat, mapper, log)
	if err != nil {
		log.Error().Err(err).Msg("invalid generation options")
		os.Exit(exitcode.UsageError)
	}
	res, err := g.Run(newTracker(log, "generate", int64(cfg.Members)))
	if err != nil {
		log.Error().Err(err).Msg("generation failed")
		os.Exit(exitcode.ValidationError)
	}

	writeStart := time.Now()
	paths, err := output.WriteAll(cfg.OutDir, format, res.Dataset)
	if err != nil {
		log.Error().Err(err).Str("dir", cfg.OutDir).Msg("write failed")
		os.Exit(exitcode.WriteError)
	}
	for _, p := range paths {
		log.Info().Str("path", p).Msg("table written")
	}

	summary := model.GenerateSummary{
		Seed:                 cfg.Seed,
		Members:              cfg.Members,
		Years:                cfg.Years,
		Scenarios:            cat.Len(),
		CatalogSHA256:        catSHA,
		MemberYears:          res.MemberYears,
		MemberYearsWithClaim: res.MemberYearsWithClaim,
		RowsByTable:          res.Dataset.RowCounts(),
		DurationGenerate:     res.Duration,
		DurationWrite:        time.Since(writeStart),
	}

	if cfg.S3Bucket != "" {
		if err := publishFiles(context.Background(), log, paths); err != nil {
			log.Error().Err(err).Msg("publish failed")
			os.Exit(exitcode.PublishError)
		}
	}
	summary.DurationTotal = time.Since(totalStart)

	logGenerateSummary(log, summary)

	fmt.Printf("Generated %d enrollment spans, %d medical claims, %d rx claims, %d supplemental rows into %s (%.1fs)\n",
		summary.RowsByTable[model.TableEnrollment],
		summary.RowsByTable[model.TableMedicalClaims],
		summary.RowsByTable[model.TablePharmacyClaims],
		summary.RowsByTable[model.TableSupplemental],
		cfg.OutDir,
		summary.DurationTotal.Seconds())
	return nil
}

// logGenerateSummary emits the run summary as one structured event.
func logGenerateSummary(log zerolog.Logger, summary model.GenerateSummary) {
	log.Info().
		Int64("seed", summary.Seed).
		Int("members", summary.Members).
		Ints("years", summary.Years).
		Int("scenarios", summary.Scenarios).
		Str("catalog_sha256", summary.CatalogSHA256).
		Int64("member_years", summary.MemberYears).
		Int64("member_years_with_claims", summary.MemberYearsWithClaim).
		Int64(model.TableEnrollment, summary.RowsByTable[model.TableEnrollment]).
		Int64(model.TableMedicalClaims, summary.RowsByTable[model.TableMedicalClaims]).
		Int64(model.TablePharmacyClaims, summary.RowsByTable[model.TablePharmacyClaims]).
		Int64(model.TableSupplemental, summary.RowsByTable[model.TableSupplemental]).
		Dur("generate_duration", summary.DurationGenerate).
		Dur("write_duration", summary.DurationWrite).
		Dur("total_duration", summary.DurationTotal).
		Msg("generate complete")
}

// loadInputs reads the catalog and code map, exiting with CatalogError on
// failure.
func loadInputs(log zerolog.Logger) (*catalog.Catalog, string, *codemap.Mapper) {
	cat, err := catalog.Load(cfg.ScenariosPath)
	if err != nil {
		log.Error().Err(err).Str("path", cfg.ScenariosPath).Msg("failed to load scenario catalog")
		os.Exit(exitcode.CatalogError)
	}
	sha, err := normalize.FileHash(cfg.ScenariosPath)
	if err != nil {
		log.Error().Err(err).Msg("failed to hash scenario catalog")
		os.Exit(exitcode.CatalogError)
	}

	mapper := codemap.Default()
	if cfg.CodeMapPath != "" {
		if mapper, err = codemap.LoadFile(cfg.CodeMapPath); err != nil {
			log.Error().Err(err).Str("path", cfg.CodeMapPath).Msg("failed to load code map")
			os.Exit(exitcode.CatalogError)
		}
	}

	log.Info().
		Str("catalog", cfg.ScenariosPath).
		Str("sha256", sha).
		Int("scenarios", cat.Len()).
		Int("categories", len(cat.Categories)).
		Int("mapped_codes", mapper.Len()).
		Msg("inputs loaded")
	return cat, sha, mapper
}

func newTracker(log zerolog.Logger, name string, total int64) progress.Tracker {
	if cfg.Progress {
		return progress.NewBar(name, total)
	}
	return progress.NewLog(log, name)
}
