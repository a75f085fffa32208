package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/gyeh/claimsadj/internal/exitcode"
	"github.com/gyeh/claimsadj/internal/metrics"
	"github.com/gyeh/claimsadj/internal/model"
	"github.com/gyeh/claimsadj/internal/pipeline"
	"github.com/gyeh/claimsadj/internal/summarize"
)

var processCmd = &cobra.Command{
	Use:   "process FILE...",
	Short: "Adjudicate one or more claim documents",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runProcess,
}

func init() {
	f := processCmd.Flags()
	f.IntVar(&cfg.Workers, "workers", cfg.Workers, "Claims processed concurrently")
	f.StringVar(&cfg.MetricsFile, "metrics-file", "", "Write Prometheus text-format metrics to this file")
	f.StringVar(&cfg.Output, "format", "json", "Output format: json or text")
	rootCmd.AddCommand(processCmd)
}

// processOutput is one entry of the JSON array printed for a batch.
type processOutput struct {
	File   string                 `json:"file"`
	Result *model.AggregateResult `json:"result,omitempty"`
	Error  string                 `json:"error,omitempty"`
}

func runProcess(cmd *cobra.Command, args []string) error {
	log := setup()
	ctx := context.Background()
	start := time.Now()

	inputs := make([]pipeline.Input, 0, len(args))
	for _, path := range args {
		in, err := pipeline.ReadInput(path)
		if err != nil {
			log.Error().Err(err).Str("file", path).Msg("cannot read claim")
			os.Exit(exitcode.UsageError)
		}
		inputs = append(inputs, in)
	}

	pool := connect(ctx, log)
	if pool != nil {
		defer pool.Close()
	}

	rec := metrics.New()
	p, err := pipeline.Build(ctx, &cfg, pool, rec, log)
	if err != nil {
		log.Error().Err(err).Msg("pipeline setup failed")
		os.Exit(exitcode.ReferenceData)
	}

	items := pipeline.RunBatch(ctx, p, inputs, cfg.Workers)

	if err := printResults(items); err != nil {
		return err
	}
	if cfg.MetricsFile != "" {
		if err := rec.WriteTextfile(cfg.MetricsFile); err != nil {
			log.Error().Err(err).Msg("metrics export failed")
		}
	}

	failed := pipeline.Failed(items)
	log.Info().
		Int("claims", len(items)).
		Int("failed", failed).
		Str("total_duration", time.Since(start).String()).
		Msg("processing complete")

	switch {
	case failed == 0:
		return nil
	case failed == len(items):
		os.Exit(exitcode.For(items[0].Err))
	default:
		os.Exit(exitcode.PartialSuccess)
	}
	return nil
}

func printResults(items []pipeline.BatchItem) error {
	if cfg.Output == "text" {
		for _, it := range items {
			fmt.Printf("=== %s ===\n", it.FileName)
			if it.Err != nil {
				fmt.Printf("ERROR: %v\n\n", it.Err)
				continue
			}
			if err := summarize.WriteText(os.Stdout, it.Result.Summary); err != nil {
				return err
			}
			fmt.Println()
		}
		return nil
	}

	if len(items) == 1 && items[0].Err == nil {
		return writeJSON(os.Stdout, items[0].Result)
	}
	out := make([]processOutput, len(items))
	for i, it := range items {
		out[i] = processOutput{File: it.FileName, Result: it.Result}
		if it.Err != nil {
			out[i].Error = it.Err.Error()
		}
	}
	return writeJSON(os.Stdout, out)
}
