package accuracy

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gyeh/claimsadj/internal/config"
	"github.com/gyeh/claimsadj/internal/model"
	"github.com/gyeh/claimsadj/internal/pipeline"
)

// stubProcessor decides from the claim_id prefix and fails on "ERR".
type stubProcessor struct{}

func (stubProcessor) Process(_ context.Context, b []byte, _, name string) (*model.AggregateResult, error) {
	s := string(b)
	if strings.Contains(s, `"ERR"`) {
		return nil, errors.New("extract: malformed input")
	}
	res := &model.AggregateResult{FileName: name}
	res.FinalDecision.Decision = model.DecisionApprove
	res.Fraud.RiskLevel = model.RiskMinimal
	if strings.Contains(s, "REJECT-ME") {
		res.FinalDecision.Decision = model.DecisionReject
		res.Fraud.RiskLevel = model.RiskLow
	}
	return res, nil
}

func writeClaims(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
	return dir
}

func TestEvaluate(t *testing.T) {
	dir := writeClaims(t, map[string]string{
		"01_ok.json":     `{"claim_id": "A", "expected_decision": "approve", "expected_fraud": "MINIMAL"}`,
		"02_reject.json": `{"claim_id": "REJECT-ME", "expected_decision": "REJECT", "expected_fraud": "MEDIUM"}`,
		"03_wrong.json":  `{"claim_id": "C", "expected_decision": "MANUAL_REVIEW", "expected_fraud": "MINIMAL"}`,
		"04_err.json":    `{"claim_id": "ERR"}`,
		"notes.txt":      "ignored",
	})

	rep, err := Evaluate(context.Background(), stubProcessor{}, dir, 2, zerolog.Nop())
	require.NoError(t, err)

	assert.Equal(t, 3, rep.TotalTested)
	assert.Equal(t, 1, rep.Failed)
	assert.Equal(t, 2, rep.CorrectDecisions)
	assert.Equal(t, 2, rep.CorrectFraud)
	assert.Equal(t, 66.67, rep.DecisionAccuracy)
	assert.Equal(t, 66.67, rep.FraudAccuracy)

	require.Len(t, rep.Results, 4)
	assert.Equal(t, "01_ok.json", rep.Results[0].File)
	assert.Equal(t, "APPROVE", rep.Results[0].ExpectedDecision)
	assert.True(t, rep.Results[0].DecisionCorrect)
	assert.False(t, rep.Results[1].FraudCorrect)
	assert.False(t, rep.Results[2].DecisionCorrect)
	assert.NotEmpty(t, rep.Results[3].Error)

	var buf bytes.Buffer
	require.NoError(t, rep.WriteText(&buf))
	assert.Contains(t, buf.String(), "Decision Accuracy: 66.7% (2/3 correct)")
	assert.Contains(t, buf.String(), "ERROR: extract: malformed input")
}

func TestEvaluate_EmptyDir(t *testing.T) {
	_, err := Evaluate(context.Background(), stubProcessor{}, t.TempDir(), 1, zerolog.Nop())
	assert.Error(t, err)
}

// TestEvaluate_SampleClaims keeps the labelled claims under test_claims in
// agreement with the reference data under data.
func TestEvaluate_SampleClaims(t *testing.T) {
	root := filepath.Join("..", "..")
	cfg := config.Default()
	cfg.Reference = config.ReferenceConfig{
		Members:       filepath.Join(root, "data", "members.json"),
		CoverageRules: filepath.Join(root, "data", "coverage_rules.json"),
		FraudRules:    filepath.Join(root, "data", "fraud_rules.json"),
		History:       filepath.Join(root, "data", "claims_history.json"),
		Policies:      filepath.Join(root, "data", "policies"),
	}
	p, err := pipeline.Build(context.Background(), &cfg, nil, nil, zerolog.Nop())
	require.NoError(t, err)

	rep, err := Evaluate(context.Background(), p, filepath.Join(root, "test_claims"), 4, zerolog.Nop())
	require.NoError(t, err)
	for _, c := range rep.Results {
		assert.Empty(t, c.Error, c.File)
		assert.Equal(t, c.ExpectedDecision, c.ActualDecision, c.File)
		assert.Equal(t, c.ExpectedFraud, c.ActualFraud, c.File)
	}
	assert.Equal(t, 100.0, rep.DecisionAccuracy)
	assert.Equal(t, 100.0, rep.FraudAccuracy)
}
