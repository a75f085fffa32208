package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

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

const claimA = `{
  "claim_id": "CLM-A",
  "patient": {"name": "Jane Doe", "member_id": "M12345678"},
  "provider": {"name": "City Clinic", "id": "PRV-1"},
  "diagnosis_codes": ["J10.1"],
  "procedure_codes": ["99213"],
  "claim_amount": 150.00,
  "service_date": "2024-05-20"
}`

func testStages(t *testing.T) Stages {
	t.Helper()
	log := zerolog.Nop()

	members := refdata.Members{
		"M12345678": {Status: "active", Plan: "PREMIUM", Name: "Jane Doe"},
		"M55555555": {Status: "active", Plan: "PREMIUM", Name: "Sam Roe"},
	}
	coverage := refdata.DefaultCoverageRules()
	coverage.Plans = map[string]refdata.PlanRule{
		"PREMIUM": {CoveredProcedures: []string{"99213", "99214", "80050"}, Copay: 20},
	}
	rules := refdata.DefaultFraudRules()
	rules.HighRiskProviders = []string{"PRV-BAD"}
	idx := history.NewIndex([]model.HistoricalClaim{
		{ClaimID: "H-1", MemberID: "M55555555", ProcedureCodes: []string{"99213"}, AmountCents: 15000, ServiceDate: "2024-05-10"},
	})
	corpus := retrieve.NewCorpus(retrieve.Document{
		Name: "office_visits.txt",
		Text: "Office visit 99213 is covered for established patients with influenza J10.1.",
	})

	return Stages{
		Extractor: extract.New(log),
		Retriever: retrieve.New(corpus, 3, log),
		Validator: validate.New(members, coverage, log),
		Scorer:    fraud.New(rules, idx, log),
	}
}

func newTestPipeline(t *testing.T, rec *metrics.Recorder) *Pipeline {
	p := New(testStages(t), rec, zerolog.Nop())
	p.newRunID = func() string { return "run-1" }
	return p
}

func TestProcess_ScenarioA(t *testing.T) {
	res, err := newTestPipeline(t, nil).Process(context.Background(), []byte(claimA), "application/json", "a.json")
	require.NoError(t, err)

	assert.Equal(t, "a.json", res.FileName)
	assert.Equal(t, "run-1", res.RunID)
	assert.Equal(t, "CLM-A", res.Extracted.ClaimID)
	assert.Equal(t, model.ValidationApproved, res.Validation.Decision)
	assert.Contains(t, []model.RiskLevel{model.RiskMinimal, model.RiskLow}, res.Fraud.RiskLevel)
	assert.Equal(t, model.DecisionApprove, res.FinalDecision.Decision)
	assert.Equal(t, res.FinalDecision.Decision, res.Summary.Decision)
	require.NotEmpty(t, res.Policies)
	assert.Equal(t, "office_visits.txt", res.Policies[0].Source)
}

func TestProcess_ScenarioB_MissingMember(t *testing.T) {
	doc := `{"claim_id": "CLM-B", "patient": {"name": "No Id"}, "procedure_codes": ["99213"], "claim_amount": 80}`
	res, err := newTestPipeline(t, nil).Process(context.Background(), []byte(doc), "application/json", "b.json")
	require.NoError(t, err)

	assert.Equal(t, model.StatusFailed, res.Validation.Eligibility.Status)
	assert.Equal(t, validate.ReasonMissingMember, res.Validation.Eligibility.Reason)
	assert.Equal(t, model.ValidationDenied, res.Validation.Decision)
	assert.Equal(t, model.DecisionReject, res.FinalDecision.Decision)
}

func TestProcess_HighFraudGoesToManualReview(t *testing.T) {
	doc := `{
  "claim_id": "CLM-H",
  "patient": {"name": "Sam Roe", "member_id": "M55555555"},
  "provider": {"name": "Shady Labs", "id": "PRV-BAD"},
  "procedure_codes": ["99213"],
  "claim_amount": 150,
  "service_date": "2024-05-20"
}`
	res, err := newTestPipeline(t, nil).Process(context.Background(), []byte(doc), "application/json", "h.json")
	require.NoError(t, err)

	assert.Equal(t, model.ValidationApproved, res.Validation.Decision)
	assert.Equal(t, model.RiskHigh, res.Fraud.RiskLevel)
	assert.Equal(t, model.DecisionManualReview, res.FinalDecision.Decision)
}

func TestProcess_ExtractFailureAborts(t *testing.T) {
	cases := []struct {
		name        string
		body        string
		contentType string
		want        error
	}{
		{"unsupported", "GIF89a", "image/gif", extract.ErrUnsupportedFormat},
		{"malformed json", `{"claim_id": `, "application/json", extract.ErrMalformedInput},
		{"malformed xml", `<claim><id>`, "application/xml", extract.ErrMalformedInput},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := metrics.New()
			res, err := newTestPipeline(t, rec).Process(context.Background(), []byte(tc.body), tc.contentType, "bad")
			require.Error(t, err)
			assert.Nil(t, res)
			assert.ErrorIs(t, err, tc.want)

			var se *StageError
			require.True(t, errors.As(err, &se))
			assert.Equal(t, StageExtract, se.Stage)
			assert.Equal(t, 1.0, counter(t, rec, "claims_errors_total", "stage", StageExtract))
			assert.Equal(t, 0.0, counter(t, rec, "claims_processed_total", "decision", string(model.DecisionApprove)))
		})
	}
}

func TestProcess_RecordsMetrics(t *testing.T) {
	rec := metrics.New()
	p := newTestPipeline(t, rec)
	for range 2 {
		_, err := p.Process(context.Background(), []byte(claimA), "application/json", "a.json")
		require.NoError(t, err)
	}
	assert.Equal(t, 2.0, counter(t, rec, "claims_processed_total", "decision", string(model.DecisionApprove)))

	families, err := rec.Registry().Gather()
	require.NoError(t, err)
	stages := map[string]uint64{}
	for _, mf := range families {
		if mf.GetName() != "claims_stage_duration_seconds" {
			continue
		}
		for _, m := range mf.GetMetric() {
			stages[m.GetLabel()[0].GetValue()] = m.GetHistogram().GetSampleCount()
		}
	}
	for _, s := range []string{StageExtract, StageRetrieve, StageValidate, StageFraud, StageDecide, StageSummarize} {
		assert.Equal(t, uint64(2), stages[s], s)
	}
}

func TestProcess_Idempotent(t *testing.T) {
	p := newTestPipeline(t, nil)
	a, err := p.Process(context.Background(), []byte(claimA), "application/json", "a.json")
	require.NoError(t, err)
	b, err := p.Process(context.Background(), []byte(claimA), "application/json", "a.json")
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestStageError(t *testing.T) {
	inner := errors.New("boom")
	err := error(&StageError{Stage: StageFraud, Err: inner})
	assert.Equal(t, "fraud: boom", err.Error())
	assert.ErrorIs(t, err, inner)
}

func TestBuild_FromFiles(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
		return path
	}
	cfg := config.Default()
	cfg.Reference = config.ReferenceConfig{
		Members:       write("members.json", `{"M12345678": {"status": "active", "plan": "PREMIUM", "name": "Jane Doe"}}`),
		CoverageRules: write("coverage_rules.json", `{"plans": {"PREMIUM": {"covered_procedures": ["99213"], "copay": 20}}}`),
		FraudRules:    filepath.Join(dir, "missing_fraud_rules.json"),
		History:       write("claims_history.json", `[{"claim_id": "H-1", "member_id": "M12345678", "procedure_codes": ["99214"], "amount": 120, "service_date": "2024-01-02"}]`),
		Policies:      filepath.Dir(write("policies/visits.txt", "Procedure 99213 office visit coverage.")),
	}

	p, err := Build(context.Background(), &cfg, nil, nil, zerolog.Nop())
	require.NoError(t, err)

	res, err := p.Process(context.Background(), []byte(claimA), "application/json", "a.json")
	require.NoError(t, err)
	assert.Equal(t, model.DecisionApprove, res.FinalDecision.Decision)
	require.Len(t, res.Policies, 1)
	assert.Equal(t, "visits.txt", res.Policies[0].Source)
}

func TestBuild_MalformedReferenceFails(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "members.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"M1": [`), 0o644))

	cfg := config.Default()
	cfg.Reference = config.ReferenceConfig{Members: bad}
	_, err := Build(context.Background(), &cfg, nil, nil, zerolog.Nop())
	require.Error(t, err)
}

func counter(t *testing.T, rec *metrics.Recorder, name, label, value string) float64 {
	t.Helper()
	families, err := rec.Registry().Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if lp.GetName() == label && lp.GetValue() == value {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}
