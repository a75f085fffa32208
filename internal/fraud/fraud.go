// Package fraud scores a claim's fraud risk with five independent weighted
// checks against historical claims and static rules.
//
// Checks fail open: a check whose required fields are missing is SKIPPED and
// contributes nothing.
package fraud

import (
	"context"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/gyeh/claimsadj/internal/advisory"
	"github.com/gyeh/claimsadj/internal/history"
	"github.com/gyeh/claimsadj/internal/model"
	"github.com/gyeh/claimsadj/internal/refdata"
)

// Contribution of each check when it is FLAGGED.
const (
	DuplicateWeight        = 0.4
	AmountDeviationWeight  = 0.3
	HighRiskProviderWeight = 0.5
	PatternWeight          = 0.2
	VolumeWeight           = 0.2
)

// AdvisoryFloor is the score an advisory "fraud likely" opinion raises a claim to.
const AdvisoryFloor = 0.8

// DefaultTriggerScore is the rule score at which the advisory model is consulted.
const DefaultTriggerScore = 0.3

var recommendations = map[model.RiskLevel]string{
	model.RiskMinimal: "Proceed with standard processing",
	model.RiskLow:     "Normal review",
	model.RiskMedium:  "Enhanced review recommended",
	model.RiskHigh:    "Immediate investigation required",
}

// Recommendation maps a risk level to its fixed action string.
func Recommendation(level model.RiskLevel) string {
	return recommendations[level]
}

// Scorer runs the fraud checks. It holds only immutable state and is safe for
// concurrent use.
type Scorer struct {
	rules   refdata.FraudRules
	history *history.Index

	advisor         advisory.Advisor
	advisoryTimeout time.Duration
	triggerScore    float64

	log zerolog.Logger
}

// Option configures a Scorer.
type Option func(*Scorer)

// WithAdvisor consults a for a second opinion whenever the rule score reaches
// trigger. The opinion can only raise the score.
func WithAdvisor(a advisory.Advisor, timeout time.Duration, trigger float64) Option {
	return func(s *Scorer) {
		s.advisor = a
		s.advisoryTimeout = timeout
		if trigger > 0 {
			s.triggerScore = trigger
		}
	}
}

// New creates a Scorer. A nil index behaves as an empty history and unset
// rule parameters take their defaults.
func New(rules refdata.FraudRules, idx *history.Index, log zerolog.Logger, opts ...Option) *Scorer {
	s := &Scorer{
		rules:        rules.WithDefaults(),
		history:      idx,
		triggerScore: DefaultTriggerScore,
		log:          log,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Detect scores rec. It never fails; an unreachable advisory model leaves the
// rule-based result untouched.
func (s *Scorer) Detect(ctx context.Context, rec model.ClaimRecord) model.FraudResult {
	start := time.Now()

	c := s.newClaimContext(rec)
	checks := []model.FraudCheck{
		s.duplicate(c),
		s.amountDeviation(c),
		s.highRiskProvider(c),
		s.pattern(c),
		s.volume(c),
	}

	res := model.FraudResult{Checks: checks, RedFlags: []string{}}
	var sum float64
	for _, chk := range checks {
		sum += chk.RiskContribution
		switch chk.Status {
		case model.StatusFlagged:
			res.RedFlags = append(res.RedFlags, chk.Reason)
		case model.StatusSkipped:
			s.log.Warn().Str("claim_id", rec.ClaimID).Str("check", chk.Name).Str("reason", chk.Reason).Msg("fraud check skipped")
		}
	}
	res.RiskScore = roundScore(math.Min(1, sum))

	if s.advisor != nil && res.RiskScore >= s.triggerScore {
		s.consultAdvisor(ctx, rec, &res)
	}

	res.RiskLevel = Level(res.RiskScore, s.rules.RiskThresholds)
	res.Recommendation = Recommendation(res.RiskLevel)

	s.log.Info().
		Str("claim_id", rec.ClaimID).
		Float64("risk_score", res.RiskScore).
		Str("risk_level", string(res.RiskLevel)).
		Int("red_flags", len(res.RedFlags)).
		Dur("duration", time.Since(start)).
		Msg("fraud scoring complete")
	return res
}

// Level buckets a score; thresholds are inclusive lower bounds.
func Level(score float64, t refdata.RiskThresholds) model.RiskLevel {
	switch {
	case score >= t.High:
		return model.RiskHigh
	case score >= t.Medium:
		return model.RiskMedium
	case score >= t.Low:
		return model.RiskLow
	}
	return model.RiskMinimal
}

// roundScore drops float noise so 0.4+0.5 compares equal to 0.9.
func roundScore(f float64) float64 {
	return math.Round(f*1e4) / 1e4
}
