package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gyeh/claimsadj/internal/db"
	"github.com/gyeh/claimsadj/internal/exitcode"
	"github.com/gyeh/claimsadj/internal/history"
	"github.com/gyeh/claimsadj/internal/normalize"
)

var historyFile string

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Manage the claims history used by fraud scoring",
}

var historyMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database schema migrations",
	RunE:  runHistoryMigrate,
}

var historyLoadCmd = &cobra.Command{
	Use:   "load",
	Short: "COPY a JSON, YAML or Parquet history file into Postgres",
	RunE:  runHistoryLoad,
}

var historyPlanCmd = &cobra.Command{
	Use:   "plan",
	Short: "Dry-run: read a history file and print stats (no writes)",
	RunE:  runHistoryPlan,
}

func init() {
	for _, c := range []*cobra.Command{historyLoadCmd, historyPlanCmd} {
		c.Flags().StringVar(&historyFile, "file", "", "Path to history file (required)")
		_ = c.MarkFlagRequired("file")
	}
	historyCmd.AddCommand(historyMigrateCmd, historyLoadCmd, historyPlanCmd)
	rootCmd.AddCommand(historyCmd)
}

func runHistoryMigrate(cmd *cobra.Command, args []string) error {
	log := setup()
	ctx := context.Background()

	if err := cfg.ValidateWithDSN(); err != nil {
		log.Error().Err(err).Msg("config validation failed")
		os.Exit(exitcode.UsageError)
	}
	pool := connect(ctx, log)
	defer pool.Close()

	n, err := db.ApplyMigrations(ctx, pool, log)
	if err != nil {
		log.Error().Err(err).Msg("migration failed")
		os.Exit(exitcode.StageFailure)
	}

	log.Info().Int("applied", n).Msg("all migrations applied successfully")
	return nil
}

func runHistoryLoad(cmd *cobra.Command, args []string) error {
	log := setup()
	ctx := context.Background()

	if err := cfg.ValidateWithDSN(); err != nil {
		log.Error().Err(err).Msg("config validation failed")
		os.Exit(exitcode.UsageError)
	}
	sha, err := normalize.FileHash(historyFile)
	if err != nil {
		log.Error().Err(err).Msg("failed to hash file")
		os.Exit(exitcode.ReferenceData)
	}

	pool := connect(ctx, log)
	defer pool.Close()

	res, err := history.CopyToPostgres(ctx, pool, log, history.SourceFor(historyFile), historyFile, sha)
	if err != nil {
		log.Error().Err(err).Str("file", historyFile).Msg("history load failed")
		os.Exit(exitcode.StageFailure)
	}

	fmt.Printf("History load complete: %d rows copied as batch %s (%.1fs)\n",
		res.RowsCopied, res.BatchID, res.Duration.Seconds())
	return nil
}

func runHistoryPlan(cmd *cobra.Command, args []string) error {
	log := setup()
	ctx := context.Background()

	sha, err := normalize.FileHash(historyFile)
	if err != nil {
		log.Error().Err(err).Msg("failed to hash file")
		os.Exit(exitcode.ReferenceData)
	}
	stat, err := os.Stat(historyFile)
	if err != nil {
		log.Error().Err(err).Msg("failed to stat file")
		os.Exit(exitcode.ReferenceData)
	}

	claims, err := history.SourceFor(historyFile).Load(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to read history file")
		os.Exit(exitcode.ReferenceData)
	}
	idx := history.NewIndex(claims)

	var first, last string
	var undated int
	for _, c := range claims {
		if c.ServiceDate == "" {
			undated++
			continue
		}
		if first == "" || c.ServiceDate < first {
			first = c.ServiceDate
		}
		if c.ServiceDate > last {
			last = c.ServiceDate
		}
	}

	fmt.Println("=== claimctl history plan ===")
	fmt.Printf("File:         %s\n", historyFile)
	fmt.Printf("SHA-256:      %s\n", sha)
	fmt.Printf("Size:         %d bytes\n", stat.Size())
	fmt.Printf("Claims:       %d\n", idx.Len())
	fmt.Printf("Members:      %d\n", idx.Members())
	fmt.Printf("Service span: %s .. %s (%d undated)\n", first, last, undated)
	return nil
}
