package summarize

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gyeh/claimsadj/internal/model"
)

func approvedInput() Input {
	return Input{
		Claim: model.ClaimRecord{
			ClaimID:          "CLM-1",
			Patient:          model.Patient{Name: "Jane Doe", MemberID: "M12345678"},
			Provider:         model.Provider{Name: "City Clinic"},
			DiagnosisCodes:   []string{"J10.1", "J45.909", "I10"},
			ProcedureCodes:   []string{"99213", "80050"},
			ClaimAmount:      model.MoneyFromDollars(1234.5),
			ServiceDate:      "2024-05-20",
			PlanType:         "PREMIUM",
			ExtractionMethod: model.MethodStructured,
		},
		Policies: []model.PolicyExcerpt{{Source: "office.txt", Score: 0.5}},
		Validation: model.ValidationResult{
			Decision:      model.ValidationApproved,
			Eligibility:   model.CheckResult{Status: model.StatusPassed, Reason: "ok"},
			Coverage:      model.CheckResult{Status: model.StatusPassed, Reason: "ok"},
			Authorization: model.CheckResult{Status: model.StatusPassed, Reason: "ok"},
			BusinessRules: model.CheckResult{Status: model.StatusPassed, Reason: "ok"},
		},
		Fraud:    model.FraudResult{RiskLevel: model.RiskMinimal, RiskScore: 0, Recommendation: "Proceed with standard processing"},
		Decision: model.FinalDecision{Decision: model.DecisionApprove, Reason: "All checks passed"},
	}
}

func TestSummarize_Approved(t *testing.T) {
	s := Summarize(approvedInput())

	assert.Equal(t, model.DecisionApprove, s.Decision)
	assert.Contains(t, s.ExecutiveSummary, "CLAIM CLM-1 - APPROVED - $1,234.50 for Jane Doe")
	assert.Contains(t, s.ExecutiveSummary, "Fraud risk: MINIMAL (0.0%)")
	assert.Contains(t, s.ActionItems[1], "$1,234.50")

	b := s.Breakdown
	assert.Equal(t, "$1,234.50", b.Claim.TotalAmount)
	assert.Equal(t, []string{"office.txt (0.50)"}, b.Policies)
	require.Len(t, b.Validation, 4)
	assert.Equal(t, model.CheckBusinessRules, b.Validation[3].Name)
	require.Len(t, b.Clinical.Procedures, 2)
	assert.Equal(t, "Laboratory", b.Clinical.Procedures[1].Category)
	assert.Equal(t, "Diagnoses:\n"+
		"  - Respiratory: J10.1 (Influenza due to other identified influenza virus with other respiratory manifestations), J45.909 (Unspecified asthma)\n"+
		"  - Cardiovascular: I10 (Essential (primary) hypertension)\n"+
		"Procedures:\n"+
		"  - Evaluation & Management: 99213 (Office or other outpatient visit for the evaluation and management of an established patient, straightforward medical decision making)\n"+
		"  - Laboratory: 80050 (General health panel (includes comprehensive metabolic panel and complete blood count))",
		b.Clinical.Summary)
}

func TestSummarize_Rejected(t *testing.T) {
	in := approvedInput()
	in.Validation.Decision = model.ValidationDenied
	in.Validation.Eligibility = model.CheckResult{Status: model.StatusFailed, Reason: "Missing member ID"}
	in.Validation.Coverage = model.CheckResult{Status: model.StatusFailed, Reason: "Eligibility failed, cannot check coverage"}
	in.Fraud = model.FraudResult{RiskLevel: model.RiskHigh, RiskScore: 0.95}
	in.Decision = model.FinalDecision{Decision: model.DecisionReject, Reason: "Missing member ID"}

	s := Summarize(in)
	assert.Contains(t, s.ExecutiveSummary, "REJECTED")
	assert.Contains(t, s.ExecutiveSummary, "Validation failures: Eligibility, Coverage")
	assert.Equal(t, "Eligibility: Missing member ID", s.ActionItems[0])
	assert.Contains(t, s.ActionItems, "Fraud Alert: high risk detected (95.0%)")
}

func TestSummarize_ManualReviewHighFraud(t *testing.T) {
	in := approvedInput()
	in.Fraud = model.FraudResult{RiskLevel: model.RiskHigh, RiskScore: 0.9, RedFlags: []string{"dup"}}
	in.Decision = model.FinalDecision{Decision: model.DecisionManualReview, Reason: "High fraud risk detected"}

	s := Summarize(in)
	assert.Contains(t, s.ExecutiveSummary, "REQUIRES MANUAL REVIEW")
	assert.Contains(t, s.ExecutiveSummary, "High fraud risk detected: 90.0%")
	assert.Contains(t, s.ActionItems, "Note: under investigation for potential fraud indicators")
	assert.Equal(t, []string{"dup"}, s.Breakdown.Fraud.Flags)
}

func TestSummarize_EmptyClaimDefaults(t *testing.T) {
	s := Summarize(Input{Decision: model.FinalDecision{Decision: model.DecisionReject}})
	assert.Equal(t, "Unknown", s.Breakdown.Claim.PatientName)
	assert.Equal(t, "No clinical information available", s.Breakdown.Clinical.Summary)
	assert.Contains(t, s.ExecutiveSummary, "CLAIM N/A")
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, Summarize(approvedInput())))
	out := buf.String()
	assert.Contains(t, out, "Claim:     CLM-1")
	assert.Contains(t, out, "Policies:  office.txt (0.50)")
	assert.Contains(t, out, "Decision: APPROVE - All checks passed")
}
