package model

import "time"

// CodeDetail is a diagnosis or procedure code with its looked-up description.
// System is empty when the code matches no known code shape.
type CodeDetail struct {
	Code        string `json:"code"`
	System      string `json:"system,omitempty"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

// ClaimInformation is the identifying block of a summary breakdown.
type ClaimInformation struct {
	ClaimID          string `json:"claim_id"`
	PatientName      string `json:"patient_name"`
	MemberID         string `json:"member_id"`
	ServiceDate      string `json:"service_date"`
	Provider         string `json:"provider"`
	TotalAmount      string `json:"total_amount"`
	ExtractionMethod string `json:"extraction_method"`
	PlanType         string `json:"plan_type"`
}

// ClinicalInformation lists codes with descriptions plus a grouped summary.
type ClinicalInformation struct {
	Diagnoses  []CodeDetail `json:"diagnoses"`
	Procedures []CodeDetail `json:"procedures"`
	Summary    string       `json:"summary"`
}

// CheckLine is a rendered validation check.
type CheckLine struct {
	Name   string      `json:"name"`
	Status CheckStatus `json:"status"`
	Reason string      `json:"reason"`
}

// FraudAnalysis is the rendered fraud block.
type FraudAnalysis struct {
	RiskLevel      RiskLevel `json:"risk_level"`
	RiskScore      string    `json:"risk_score"`
	Recommendation string    `json:"recommendation"`
	Flags          []string  `json:"flags"`
}

// Breakdown is the detailed section of a summary.
type Breakdown struct {
	Claim         ClaimInformation    `json:"claim_information"`
	Clinical      ClinicalInformation `json:"clinical_information"`
	Validation    []CheckLine         `json:"validation_results"`
	Policies      []string            `json:"policies"`
	Fraud         FraudAnalysis       `json:"fraud_analysis"`
	FinalDecision FinalDecision       `json:"final_decision"`
}

// Summary is the human-readable rendering of one adjudication.
type Summary struct {
	ExecutiveSummary string    `json:"executive_summary"`
	Breakdown        Breakdown `json:"detailed_breakdown"`
	ActionItems      []string  `json:"action_required"`
	Decision         Decision  `json:"decision"`
	Reason           string    `json:"reason"`
}

// AggregateResult is everything one pipeline run produced.
type AggregateResult struct {
	FileName      string           `json:"file_name"`
	RunID         string           `json:"run_id"`
	Extracted     ClaimRecord      `json:"extracted"`
	Policies      []PolicyExcerpt  `json:"policies"`
	Validation    ValidationResult `json:"validation"`
	Fraud         FraudResult      `json:"fraud"`
	FinalDecision FinalDecision    `json:"final_decision"`
	Summary       Summary          `json:"summary"`
}

// RunTimings captures per-stage durations of a single pipeline run.
type RunTimings struct {
	Extract   time.Duration
	Retrieve  time.Duration
	Validate  time.Duration
	Fraud     time.Duration
	Decide    time.Duration
	Summarize time.Duration
	Total     time.Duration
}
