// Package pipeline sequences the adjudication stages for one claim and runs
// independent claims concurrently.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/gyeh/claimsadj/internal/decide"
	"github.com/gyeh/claimsadj/internal/metrics"
	"github.com/gyeh/claimsadj/internal/model"
	"github.com/gyeh/claimsadj/internal/normalize"
	"github.com/gyeh/claimsadj/internal/summarize"
)

// Stage names, used in StageError, logs and metric labels.
const (
	StageExtract   = "extract"
	StageRetrieve  = "retrieve"
	StageValidate  = "validate"
	StageFraud     = "fraud"
	StageDecide    = "decide"
	StageSummarize = "summarize"
)

// StageError wraps an error with the stage where it occurred.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %s", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

type Extractor interface {
	Extract(ctx context.Context, b []byte, contentType string) (model.ClaimRecord, error)
}

type Retriever interface {
	Retrieve(rec model.ClaimRecord) []model.PolicyExcerpt
}

type Validator interface {
	Validate(rec model.ClaimRecord) model.ValidationResult
}

type FraudScorer interface {
	Detect(ctx context.Context, rec model.ClaimRecord) model.FraudResult
}

// Stages are the per-claim collaborators. All of them must be safe for
// concurrent use; Build wires the production implementations.
type Stages struct {
	Extractor Extractor
	Retriever Retriever
	Validator Validator
	Scorer    FraudScorer
}

// State accumulates one claim's stage outputs. It belongs to a single
// Process call and is never shared.
type State struct {
	RunID        string
	FileName     string
	SourceSHA256 string

	Claim      model.ClaimRecord
	Policies   []model.PolicyExcerpt
	Validation model.ValidationResult
	Fraud      model.FraudResult
	Decision   model.FinalDecision
	Summary    model.Summary

	Timings model.RunTimings
}

// Result copies the state into the aggregate record returned to callers.
func (s *State) Result() *model.AggregateResult {
	return &model.AggregateResult{
		FileName:      s.FileName,
		RunID:         s.RunID,
		Extracted:     s.Claim,
		Policies:      s.Policies,
		Validation:    s.Validation,
		Fraud:         s.Fraud,
		FinalDecision: s.Decision,
		Summary:       s.Summary,
	}
}

// Pipeline runs claims through extract, retrieve, validate, fraud, decide and
// summarize, in that order.
type Pipeline struct {
	stages   Stages
	metrics  *metrics.Recorder
	log      zerolog.Logger
	newRunID func() string
}

// New creates a Pipeline. rec may be nil.
func New(s Stages, rec *metrics.Recorder, log zerolog.Logger) *Pipeline {
	return &Pipeline{
		stages:   s,
		metrics:  rec,
		log:      log,
		newRunID: func() string { return uuid.NewString() },
	}
}

// Process adjudicates one claim document. It returns either the complete
// aggregate result or a *StageError naming the stage that aborted the run.
func (p *Pipeline) Process(ctx context.Context, b []byte, contentType, fileName string) (*model.AggregateResult, error) {
	st, err := p.run(ctx, b, contentType, fileName)
	if err != nil {
		return nil, err
	}
	return st.Result(), nil
}

func (p *Pipeline) run(ctx context.Context, b []byte, contentType, fileName string) (*State, error) {
	totalStart := time.Now()
	st := &State{
		RunID:        p.newRunID(),
		FileName:     fileName,
		SourceSHA256: normalize.BytesHash(b),
	}
	log := p.log.With().Str("run_id", st.RunID).Str("file", fileName).Logger()
	log.Info().
		Str("content_type", contentType).
		Str("sha256", st.SourceSHA256).
		Int("bytes", len(b)).
		Msg("processing claim")

	var err error
	st.Timings.Extract, err = p.stage(log, StageExtract, func() error {
		rec, err := p.stages.Extractor.Extract(ctx, b, contentType)
		st.Claim = rec
		return err
	})
	if err != nil {
		return nil, err
	}
	log = log.With().Str("claim_id", st.Claim.ClaimID).Logger()

	st.Timings.Retrieve, _ = p.stage(log, StageRetrieve, func() error {
		st.Policies = p.stages.Retriever.Retrieve(st.Claim)
		return nil
	})
	st.Timings.Validate, _ = p.stage(log, StageValidate, func() error {
		st.Validation = p.stages.Validator.Validate(st.Claim)
		return nil
	})
	st.Timings.Fraud, _ = p.stage(log, StageFraud, func() error {
		st.Fraud = p.stages.Scorer.Detect(ctx, st.Claim)
		return nil
	})
	st.Timings.Decide, _ = p.stage(log, StageDecide, func() error {
		st.Decision = decide.Decide(st.Validation, st.Fraud)
		return nil
	})
	st.Timings.Summarize, _ = p.stage(log, StageSummarize, func() error {
		st.Summary = summarize.Summarize(summarize.Input{
			Claim:      st.Claim,
			Policies:   st.Policies,
			Validation: st.Validation,
			Fraud:      st.Fraud,
			Decision:   st.Decision,
		})
		return nil
	})
	st.Timings.Total = time.Since(totalStart)

	p.metrics.Processed(string(st.Decision.Decision))
	p.metrics.FraudLevel(string(st.Fraud.RiskLevel))
	p.metrics.ObserveTotal(st.Timings.Total)

	log.Info().
		Str("validation", string(st.Validation.Decision)).
		Str("risk_level", string(st.Fraud.RiskLevel)).
		Float64("risk_score", st.Fraud.RiskScore).
		Str("decision", string(st.Decision.Decision)).
		Str("reason", st.Decision.Reason).
		Int("policies", len(st.Policies)).
		Str("total_duration", st.Timings.Total.String()).
		Msg("claim processed")

	return st, nil
}

// stage times fn and records the outcome. A failing stage is wrapped in a
// *StageError.
func (p *Pipeline) stage(log zerolog.Logger, name string, fn func() error) (time.Duration, error) {
	start := time.Now()
	err := fn()
	d := time.Since(start)
	if err != nil {
		p.metrics.StageError(name)
		log.Error().Err(err).Str("stage", name).Dur("duration", d).Msg("stage failed")
		return d, &StageError{Stage: name, Err: err}
	}
	p.metrics.ObserveStage(name, d)
	log.Debug().Str("stage", name).Dur("duration", d).Msg("stage complete")
	return d, nil
}
