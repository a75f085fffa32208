package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/gyeh/claimsadj/internal/accuracy"
	"github.com/gyeh/claimsadj/internal/exitcode"
	"github.com/gyeh/claimsadj/internal/pipeline"
)

var (
	accuracyDir string
	accuracyOut string
)

var accuracyCmd = &cobra.Command{
	Use:   "accuracy",
	Short: "Compare decisions against expected_decision / expected_fraud labels",
	RunE:  runAccuracy,
}

func init() {
	f := accuracyCmd.Flags()
	f.StringVar(&accuracyDir, "dir", "test_claims", "Directory of labelled *.json claims")
	f.StringVar(&accuracyOut, "out", "accuracy_report.json", "Where to write the JSON report (empty to skip)")
	f.IntVar(&cfg.Workers, "workers", cfg.Workers, "Claims processed concurrently")
	rootCmd.AddCommand(accuracyCmd)
}

func runAccuracy(cmd *cobra.Command, args []string) error {
	log := setup()
	ctx := context.Background()

	pool := connect(ctx, log)
	if pool != nil {
		defer pool.Close()
	}

	p, err := pipeline.Build(ctx, &cfg, pool, nil, log)
	if err != nil {
		log.Error().Err(err).Msg("pipeline setup failed")
		os.Exit(exitcode.ReferenceData)
	}

	rep, err := accuracy.Evaluate(ctx, p, accuracyDir, cfg.Workers, log)
	if err != nil {
		log.Error().Err(err).Msg("accuracy evaluation failed")
		os.Exit(exitcode.UsageError)
	}

	if accuracyOut != "" {
		f, err := os.Create(accuracyOut)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := writeJSON(f, rep); err != nil {
			return err
		}
		log.Info().Str("report", accuracyOut).Msg("report written")
	}
	return rep.WriteText(os.Stdout)
}
