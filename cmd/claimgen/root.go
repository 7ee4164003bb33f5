package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/gyeh/claimgen/internal/config"
)

var cfg = config.Default()

var rootCmd = &cobra.Command{
	Use:   "claimgen",
	Short: "Synthetic health-insurance claims and enrollment generator",
	Long: "Generates a reproducible enrollment, medical, pharmacy and supplemental dataset " +
		"from a scenario catalog, and loads or publishes the result.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cfg.ConfigPath == "" {
			return nil
		}
		return cfg.LoadFromFile(cfg.ConfigPath, cmd.Flags().Changed)
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfg.ConfigPath, "config", "", "YAML config file (generation, publish, run_settings sections)")
	pf.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format: text or json")
	pf.StringVar(&cfg.OutDir, "out", cfg.OutDir, "Output directory for the four tables")
	pf.BoolVar(&cfg.Progress, "progress", false, "Show an interactive progress bar instead of log lines")
}

// addGenerationFlags registers the flags shared by generate and plan.
func addGenerationFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.IntVar(&cfg.Members, "members", cfg.Members, "Number of members to generate")
	f.IntSliceVar(&cfg.Years, "years", cfg.Years, "Benefit years, one full-year span each")
	f.Float64Var(&cfg.Probability, "probability", cfg.Probability, "Chance a member-year receives any scenario")
	f.Int64Var(&cfg.Seed, "seed", cfg.Seed, "Random seed; equal seeds give identical output")
	f.StringVar(&cfg.ScenariosPath, "scenarios", cfg.ScenariosPath, "Scenario catalog JSON")
	f.StringVar(&cfg.CodeMapPath, "code-map", "", "YAML file of extra ICD-11 to ICD-10-CM mappings")
	f.StringVar(&cfg.Format, "format", cfg.Format, "Output format: csv, csv.gz, parquet or xlsx")
	f.IntVar(&cfg.MinAge, "min-age", cfg.MinAge, "Minimum member age on January 1 of the first year")
	f.IntVar(&cfg.MaxAge, "max-age", cfg.MaxAge, "Maximum member age on January 1 of the first year")
	f.IntVar(&cfg.MaxScenarios, "max-scenarios", cfg.MaxScenarios, "Maximum scenarios per member-year")
	f.Float64Var(&cfg.RxCostMin, "rx-cost-min", cfg.RxCostMin, "Lowest pharmacy claim amount")
	f.Float64Var(&cfg.RxCostMax, "rx-cost-max", cfg.RxCostMax, "Highest pharmacy claim amount")
}

func addS3Flags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&cfg.S3Bucket, "s3-bucket", "", "S3 bucket to publish the tables to")
	f.StringVar(&cfg.S3Prefix, "s3-prefix", "", "Key prefix inside the bucket")
	f.StringVar(&cfg.S3Region, "s3-region", os.Getenv("AWS_REGION"), "AWS region (or set AWS_REGION)")
}
