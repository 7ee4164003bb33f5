package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gyeh/claimgen/internal/exitcode"
	"github.com/gyeh/claimgen/internal/logging"
	"github.com/gyeh/claimgen/internal/riskmodel"
)

var renderModelCmd = &cobra.Command{
	Use:   "render-model",
	Short: "Render the risk-adjustment SQL batch with run_settings from --config",
	RunE:  runRenderModel,
}

func init() {
	f := renderModelCmd.Flags()
	f.StringVar(&cfg.SQLPath, "sql", "DIY-Model-Script/diy_model_script.sql", "Risk model SQL script")
	f.StringVar(&cfg.SQLOut, "sql-out", "", "Write the batch here instead of stdout")
	rootCmd.AddCommand(renderModelCmd)
}

func runRenderModel(cmd *cobra.Command, args []string) error {
	log := logging.Setup(cfg.LogFormat)

	if cfg.ConfigPath == "" {
		log.Error().Msg("--config is required")
		os.Exit(exitcode.UsageError)
	}
	params, err := riskmodel.LoadRunSettings(cfg.ConfigPath)
	if err != nil {
		log.Error().Err(err).Msg("invalid run_settings")
		os.Exit(exitcode.UsageError)
	}

	script, err := os.ReadFile(cfg.SQLPath)
	if err != nil {
		log.Error().Err(err).Msg("failed to read SQL script")
		os.Exit(exitcode.UsageError)
	}
	batch, err := riskmodel.BuildBatch(string(script), *params)
	if err != nil {
		log.Error().Err(err).Str("sql", cfg.SQLPath).Msg("failed to build batch")
		os.Exit(exitcode.ValidationError)
	}

	if dbs, err := riskmodel.LoadDBSettings(cfg.ConfigPath); err != nil {
		log.Warn().Err(err).Msg("database settings unavailable; batch rendered only")
	} else {
		log.Info().
			Str("server", dbs.Server).
			Str("database", dbs.Database).
			Str("connection", dbs.RedactedConnectionString()).
			Msg("target database")
	}

	if cfg.SQLOut == "" {
		fmt.Print(batch)
		return nil
	}
	if err := os.WriteFile(cfg.SQLOut, []byte(batch), 0o644); err != nil {
		log.Error().Err(err).Str("path", cfg.SQLOut).Msg("write failed")
		os.Exit(exitcode.WriteError)
	}
	log.Info().Str("path", cfg.SQLOut).Int("benefit_year", params.BenefitYear).Msg("batch written")
	return nil
}
