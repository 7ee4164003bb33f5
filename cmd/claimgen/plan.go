package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gyeh/claimgen/internal/exitcode"
	"github.com/gyeh/claimgen/internal/logging"
	"github.com/gyeh/claimgen/internal/model"
	"github.com/gyeh/claimgen/internal/progress"
	"github.com/gyeh/claimgen/internal/synth"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Dry-run validation and stats (no writes)",
	RunE:  runPlan,
}

func init() {
	addGenerationFlags(planCmd)
	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, args []string) error {
	log := logging.Setup(cfg.LogFormat)

	if err := cfg.Validate(); err != nil {
		log.Error().Err(err).Msg("config validation failed")
		os.Exit(exitcode.UsageError)
	}

	cat, sha, mapper := loadInputs(log)
	st := cat.Stats()

	g, err := synth.New(cfg.SynthOptions(), cat, mapper, log)
	if err != nil {
		log.Error().Err(err).Msg("invalid generation options")
		os.Exit(exitcode.UsageError)
	}
	res, err := g.Run(progress.Discard)
	if err != nil {
		log.Error().Err(err).Msg("generation failed")
		os.Exit(exitcode.ValidationError)
	}

	var unmapped []string
	seen := make(map[string]bool)
	for _, s := range cat.Scenarios {
		for _, dx := range s.Diagnoses {
			if _, ok := mapper.Lookup(dx); !ok && !seen[dx] {
				seen[dx] = true
				unmapped = append(unmapped, dx)
			}
		}
	}

	// Print report
	fmt.Println("=== claimgen plan ===")
	fmt.Printf("Catalog:    %s\n", cfg.ScenariosPath)
	fmt.Printf("SHA-256:    %s\n", sha)
	fmt.Printf("Scenarios:  %d in %d categories\n", cat.Len(), len(cat.Categories))
	for _, c := range cat.Categories {
		fmt.Printf("  %-24s %d\n", c, st.ByCategory[c])
	}
	fmt.Printf("Diagnoses:  %d distinct, %d scenarios with more than one\n", st.DistinctDiagnoses, st.MultiDiagnosis)
	fmt.Printf("Drugs:      %d distinct, %d scenarios with drugs (mean %.2f)\n", st.DistinctDrugs, st.WithDrugs, st.MeanDrugs)
	fmt.Printf("Inpatient:  %d scenarios\n", st.InpatientScenarios)
	if len(unmapped) > 0 {
		fmt.Printf("Unmapped:   %v (will use %s)\n", unmapped, mapper.Fallback())
	}
	fmt.Println()
	fmt.Printf("Seed %d, %d members, years %v, probability %.2f\n", cfg.Seed, cfg.Members, cfg.Years, cfg.Probability)
	fmt.Printf("Member-years with claims: %d of %d\n", res.MemberYearsWithClaim, res.MemberYears)
	counts := res.Dataset.RowCounts()
	for _, name := range model.TableNames {
		fmt.Printf("  %-16s %d rows\n", name, counts[name])
	}
	fmt.Println("Dataset validation: OK")

	return nil
}
