package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/gyeh/claimsadj/internal/advisory"
	"github.com/gyeh/claimsadj/internal/config"
	"github.com/gyeh/claimsadj/internal/extract"
	"github.com/gyeh/claimsadj/internal/fraud"
	"github.com/gyeh/claimsadj/internal/history"
	"github.com/gyeh/claimsadj/internal/metrics"
	"github.com/gyeh/claimsadj/internal/model"
	"github.com/gyeh/claimsadj/internal/refdata"
	"github.com/gyeh/claimsadj/internal/retrieve"
	"github.com/gyeh/claimsadj/internal/validate"
)

// Build loads reference data once and wires the production stages. History
// comes from Postgres when pool is non-nil, otherwise from
// cfg.Reference.History. Missing reference files are logged and replaced by
// permissive defaults; any other load failure is returned.
func Build(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool, rec *metrics.Recorder, log zerolog.Logger) (*Pipeline, error) {
	data, warnings, err := refdata.Load(refdata.Paths{
		Members:       cfg.Reference.Members,
		CoverageRules: cfg.Reference.CoverageRules,
		FraudRules:    cfg.Reference.FraudRules,
	})
	if err != nil {
		return nil, fmt.Errorf("load reference data: %w", err)
	}
	for _, w := range warnings {
		log.Warn().Err(w).Msg("reference data missing, using defaults")
	}

	claims, err := loadHistory(ctx, cfg, pool)
	if errors.Is(err, refdata.ErrReferenceDataMissing) {
		log.Warn().Err(err).Msg("no claims history, history-based fraud checks will pass")
	} else if err != nil {
		return nil, fmt.Errorf("load claims history: %w", err)
	}
	idx := history.NewIndex(claims)

	corpus, err := retrieve.LoadCorpus(cfg.Reference.Policies)
	if errors.Is(err, refdata.ErrReferenceDataMissing) {
		log.Warn().Err(err).Msg("no policy documents")
	} else if err != nil {
		return nil, fmt.Errorf("load policies: %w", err)
	}

	var (
		extractOpts []extract.Option
		fraudOpts   []fraud.Option
	)
	if cfg.Advisory.Enabled {
		client := advisory.NewClient(cfg.Advisory.Endpoint, cfg.Advisory.Model)
		extractOpts = append(extractOpts, extract.WithAdvisor(client, cfg.Advisory.Timeout))
		fraudOpts = append(fraudOpts, fraud.WithAdvisor(client, cfg.Advisory.Timeout, cfg.Advisory.TriggerScore))
		log.Info().Str("endpoint", cfg.Advisory.Endpoint).Str("model", cfg.Advisory.Model).Msg("advisory model enabled")
	}

	log.Info().
		Int("members", len(data.Members)).
		Int("plans", len(data.Coverage.Plans)).
		Int("history_claims", idx.Len()).
		Int("history_members", idx.Members()).
		Int("policies", corpus.Len()).
		Msg("reference data loaded")

	return New(Stages{
		Extractor: extract.New(log, extractOpts...),
		Retriever: retrieve.New(corpus, cfg.Retrieval.TopK, log),
		Validator: validate.New(data.Members, data.Coverage, log),
		Scorer:    fraud.New(data.Fraud, idx, log, fraudOpts...),
	}, rec, log), nil
}

func loadHistory(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool) ([]model.HistoricalClaim, error) {
	var src history.Source
	switch {
	case pool != nil:
		src = history.PGSource{Pool: pool}
	case cfg.Reference.History != "":
		src = history.SourceFor(cfg.Reference.History)
	default:
		return nil, fmt.Errorf("%w: no claims history configured", refdata.ErrReferenceDataMissing)
	}
	return src.Load(ctx)
}
