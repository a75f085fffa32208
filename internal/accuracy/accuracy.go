// Package accuracy compares pipeline decisions against labelled claim files.
package accuracy

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/gyeh/claimsadj/internal/pipeline"
)

// labels are the expectations carried inside each test claim document.
type labels struct {
	ExpectedDecision string `json:"expected_decision"`
	ExpectedFraud    string `json:"expected_fraud"`
}

// Case is the outcome for one labelled claim.
type Case struct {
	File             string `json:"file"`
	ExpectedDecision string `json:"expected_decision"`
	ActualDecision   string `json:"actual_decision"`
	DecisionCorrect  bool   `json:"decision_correct"`
	ExpectedFraud    string `json:"expected_fraud"`
	ActualFraud      string `json:"actual_fraud"`
	FraudCorrect     bool   `json:"fraud_correct"`
	Error            string `json:"error,omitempty"`
}

// Report totals a run. Claims that failed to process are listed but do not
// count towards TotalTested or the percentages.
type Report struct {
	TotalTested      int     `json:"total_tested"`
	Failed           int     `json:"failed"`
	CorrectDecisions int     `json:"correct_decisions"`
	CorrectFraud     int     `json:"correct_fraud"`
	DecisionAccuracy float64 `json:"decision_accuracy"`
	FraudAccuracy    float64 `json:"fraud_accuracy"`
	Results          []Case  `json:"results"`
}

// Evaluate runs every *.json file in dir through p, in file-name order.
func Evaluate(ctx context.Context, p pipeline.Processor, dir string, workers int, log zerolog.Logger) (*Report, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("list test claims: %w", err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no *.json test claims in %s", dir)
	}
	sort.Strings(paths)

	inputs := make([]pipeline.Input, 0, len(paths))
	expected := make([]labels, 0, len(paths))
	for _, path := range paths {
		in, err := pipeline.ReadInput(path)
		if err != nil {
			return nil, err
		}
		var l labels
		if err := json.Unmarshal(in.Body, &l); err != nil {
			log.Warn().Err(err).Str("file", in.FileName).Msg("cannot read expectations")
		}
		inputs = append(inputs, in)
		expected = append(expected, l)
	}

	items := pipeline.RunBatch(ctx, p, inputs, workers)

	rep := &Report{Results: make([]Case, 0, len(items))}
	for i, it := range items {
		c := Case{
			File:             it.FileName,
			ExpectedDecision: strings.ToUpper(strings.TrimSpace(expected[i].ExpectedDecision)),
			ExpectedFraud:    strings.ToUpper(strings.TrimSpace(expected[i].ExpectedFraud)),
		}
		if it.Err != nil {
			c.Error = it.Err.Error()
			rep.Failed++
			rep.Results = append(rep.Results, c)
			log.Error().Err(it.Err).Str("file", c.File).Msg("test claim failed")
			continue
		}
		c.ActualDecision = string(it.Result.FinalDecision.Decision)
		c.ActualFraud = string(it.Result.Fraud.RiskLevel)
		c.DecisionCorrect = c.ActualDecision == c.ExpectedDecision
		c.FraudCorrect = c.ActualFraud == c.ExpectedFraud

		rep.TotalTested++
		if c.DecisionCorrect {
			rep.CorrectDecisions++
		}
		if c.FraudCorrect {
			rep.CorrectFraud++
		}
		rep.Results = append(rep.Results, c)

		log.Debug().
			Str("file", c.File).
			Str("expected_decision", c.ExpectedDecision).
			Str("actual_decision", c.ActualDecision).
			Str("expected_fraud", c.ExpectedFraud).
			Str("actual_fraud", c.ActualFraud).
			Msg("test claim evaluated")
	}
	if rep.TotalTested > 0 {
		rep.DecisionAccuracy = percent(rep.CorrectDecisions, rep.TotalTested)
		rep.FraudAccuracy = percent(rep.CorrectFraud, rep.TotalTested)
	}

	log.Info().
		Int("tested", rep.TotalTested).
		Int("failed", rep.Failed).
		Float64("decision_accuracy", rep.DecisionAccuracy).
		Float64("fraud_accuracy", rep.FraudAccuracy).
		Msg("accuracy evaluation complete")
	return rep, nil
}

func percent(n, total int) float64 {
	return math.Round(float64(n)/float64(total)*10000) / 100
}

func mark(ok bool) string {
	if ok {
		return "CORRECT"
	}
	return "WRONG"
}

// WriteText renders the report for a terminal.
func (r *Report) WriteText(w io.Writer) error {
	var b strings.Builder
	for _, c := range r.Results {
		fmt.Fprintf(&b, "%s\n", c.File)
		if c.Error != "" {
			fmt.Fprintf(&b, "  ERROR: %s\n\n", c.Error)
			continue
		}
		fmt.Fprintf(&b, "  Expected: Decision=%s, Fraud=%s\n", c.ExpectedDecision, c.ExpectedFraud)
		fmt.Fprintf(&b, "  Got:      Decision=%s, Fraud=%s\n", c.ActualDecision, c.ActualFraud)
		fmt.Fprintf(&b, "  Decision: %s\n", mark(c.DecisionCorrect))
		fmt.Fprintf(&b, "  Fraud:    %s\n\n", mark(c.FraudCorrect))
	}
	fmt.Fprintf(&b, "Total Claims Tested: %d (failed: %d)\n", r.TotalTested, r.Failed)
	fmt.Fprintf(&b, "Decision Accuracy: %.1f%% (%d/%d correct)\n", r.DecisionAccuracy, r.CorrectDecisions, r.TotalTested)
	fmt.Fprintf(&b, "Fraud Accuracy:    %.1f%% (%d/%d correct)\n", r.FraudAccuracy, r.CorrectFraud, r.TotalTested)
	_, err := io.WriteString(w, b.String())
	return err
}
