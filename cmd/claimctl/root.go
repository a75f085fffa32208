package main

import (
	"context"
	"encoding/json"
	"io"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/gyeh/claimsadj/internal/config"
	"github.com/gyeh/claimsadj/internal/db"
	"github.com/gyeh/claimsadj/internal/exitcode"
	"github.com/gyeh/claimsadj/internal/logging"
)

const appName = "claimctl"

var cfg = config.Default()

var rootCmd = &cobra.Command{
	Use:   appName,
	Short: "Insurance claim adjudication pipeline",
	Long: "Extracts claim documents (JSON, XML, PDF), validates eligibility, coverage, " +
		"authorization and business rules, scores fraud risk against claims history " +
		"and decides APPROVE, REJECT or MANUAL_REVIEW.",
	SilenceUsage: true,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfg.DSN, "dsn", os.Getenv("CLAIMS_DB_URL"), "Postgres connection string for claims history (or set CLAIMS_DB_URL)")
	pf.StringVar(&cfg.LogFormat, "log-format", "text", "Log format: text or json")
	pf.StringVar(&cfg.LogLevel, "log-level", "info", "Log level: debug, info, warn, error")
	pf.StringVar(&cfg.ConfigPath, "config", "", "Path to YAML settings file")
}

// setup builds the logger and merges the settings file, exiting on invalid
// configuration.
func setup() zerolog.Logger {
	log := logging.Setup(cfg.LogFormat, cfg.LogLevel)
	if cfg.ConfigPath != "" {
		if err := cfg.LoadFromFile(cfg.ConfigPath); err != nil {
			log.Error().Err(err).Str("config", cfg.ConfigPath).Msg("config load failed")
			os.Exit(exitcode.UsageError)
		}
	}
	if err := cfg.Validate(); err != nil {
		log.Error().Err(err).Msg("config validation failed")
		os.Exit(exitcode.UsageError)
	}
	return log
}

// connect opens the history database when a DSN is configured; it returns
// nil otherwise.
func connect(ctx context.Context, log zerolog.Logger) *pgxpool.Pool {
	if cfg.DSN == "" {
		return nil
	}
	pool, err := db.NewPool(ctx, cfg.DSN, appName)
	if err != nil {
		log.Error().Err(err).Msg("database connection failed")
		os.Exit(exitcode.ReferenceData)
	}
	return pool
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
