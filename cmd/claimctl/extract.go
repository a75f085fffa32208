package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/gyeh/claimsadj/internal/advisory"
	"github.com/gyeh/claimsadj/internal/exitcode"
	"github.com/gyeh/claimsadj/internal/extract"
	"github.com/gyeh/claimsadj/internal/pipeline"
)

var extractCmd = &cobra.Command{
	Use:   "extract FILE",
	Short: "Extract the canonical claim record without adjudicating (no reference data needed)",
	Args:  cobra.ExactArgs(1),
	RunE:  runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	log := setup()
	ctx := context.Background()

	in, err := pipeline.ReadInput(args[0])
	if err != nil {
		log.Error().Err(err).Msg("cannot read claim")
		os.Exit(exitcode.UsageError)
	}

	var opts []extract.Option
	if cfg.Advisory.Enabled {
		opts = append(opts, extract.WithAdvisor(advisory.NewClient(cfg.Advisory.Endpoint, cfg.Advisory.Model), cfg.Advisory.Timeout))
	}
	rec, err := extract.New(log, opts...).Extract(ctx, in.Body, in.ContentType)
	if err != nil {
		log.Error().Err(err).Str("file", in.FileName).Msg("extraction failed")
		os.Exit(exitcode.For(err))
	}
	return writeJSON(os.Stdout, rec)
}
