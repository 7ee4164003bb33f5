package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/gyeh/claimgen/internal/exitcode"
	"github.com/gyeh/claimgen/internal/logging"
	"github.com/gyeh/claimgen/internal/output"
	"github.com/gyeh/claimgen/internal/publish"
)

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Upload the --format tables in --out to S3",
	RunE:  runPublish,
}

func init() {
	addS3Flags(publishCmd)
	publishCmd.Flags().StringVar(&cfg.Format, "format", cfg.Format, "Format of the tables to upload: csv, csv.gz, parquet or xlsx")
	rootCmd.AddCommand(publishCmd)
}

func runPublish(cmd *cobra.Command, args []string) error {
	log := logging.Setup(cfg.LogFormat)

	if err := cfg.ValidatePublish(); err != nil {
		log.Error().Err(err).Msg("config validation failed")
		os.Exit(exitcode.UsageError)
	}
	format, _ := output.ParseFormat(cfg.Format)
	if err := publishFiles(context.Background(), log, output.TablePaths(cfg.OutDir, format)); err != nil {
		log.Error().Err(err).Msg("publish failed")
		os.Exit(exitcode.PublishError)
	}
	return nil
}

// publishFiles uploads the given table files under --s3-prefix.
func publishFiles(ctx context.Context, log zerolog.Logger, paths []string) error {
	u, err := publish.NewUploader(ctx, cfg.S3Bucket, cfg.S3Region, log)
	if err != nil {
		return err
	}
	keys, err := u.UploadFiles(ctx, paths, cfg.S3Prefix)
	if err != nil {
		return err
	}
	fmt.Printf("Published %d files to s3://%s/%s\n", len(keys), cfg.S3Bucket, publish.Key(cfg.S3Prefix, ""))
	return nil
}
