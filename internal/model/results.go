package model

// CheckStatus is the outcome of a single validation or fraud check.
type CheckStatus string

const (
	StatusPassed      CheckStatus = "PASSED"
	StatusFailed      CheckStatus = "FAILED"
	StatusNeedsReview CheckStatus = "NEEDS_REVIEW"
	StatusSkipped     CheckStatus = "SKIPPED"
	StatusFlagged     CheckStatus = "FLAGGED"
)

// Validation check names, in reporting order.
const (
	CheckEligibility   = "eligibility"
	CheckCoverage      = "coverage"
	CheckAuthorization = "authorization"
	CheckBusinessRules = "business_rules"
)

// ValidationDecision is the aggregate of the four validation checks.
type ValidationDecision string

const (
	ValidationApproved    ValidationDecision = "APPROVED"
	ValidationDenied      ValidationDecision = "DENIED"
	ValidationNeedsReview ValidationDecision = "NEEDS_REVIEW"
)

// CheckResult is one validation check. Detail fields are set only by the
// check they belong to.
type CheckResult struct {
	Status CheckStatus `json:"status"`
	Reason string      `json:"reason"`

	Plan               string   `json:"plan,omitempty"`                // eligibility
	Copay              *Money   `json:"copay,omitempty"`               // coverage
	UncoveredCodes     []string `json:"uncovered_codes,omitempty"`     // coverage
	AuthorizationCodes []string `json:"authorization_codes,omitempty"` // authorization
}

// NamedCheck pairs a check with its name for ordered iteration.
type NamedCheck struct {
	Name string
	CheckResult
}

// ValidationResult is the Validator's output.
type ValidationResult struct {
	Decision      ValidationDecision `json:"decision"`
	Reason        string             `json:"reason"`
	Eligibility   CheckResult        `json:"eligibility"`
	Coverage      CheckResult        `json:"coverage"`
	Authorization CheckResult        `json:"authorization"`
	BusinessRules CheckResult        `json:"business_rules"`
}

// Checks returns the four checks in reporting order.
func (v *ValidationResult) Checks() []NamedCheck {
	return []NamedCheck{
		{Name: CheckEligibility, CheckResult: v.Eligibility},
		{Name: CheckCoverage, CheckResult: v.Coverage},
		{Name: CheckAuthorization, CheckResult: v.Authorization},
		{Name: CheckBusinessRules, CheckResult: v.BusinessRules},
	}
}

// Fraud check names, in reporting order.
const (
	FraudDuplicate        = "duplicate"
	FraudAmountDeviation  = "amount_deviation"
	FraudHighRiskProvider = "high_risk_provider"
	FraudPattern          = "pattern"
	FraudVolume           = "volume"
)

// RiskLevel buckets a fraud risk score.
type RiskLevel string

const (
	RiskMinimal RiskLevel = "MINIMAL"
	RiskLow     RiskLevel = "LOW"
	RiskMedium  RiskLevel = "MEDIUM"
	RiskHigh    RiskLevel = "HIGH"
)

// FraudCheck is one weighted fraud check.
type FraudCheck struct {
	Name             string      `json:"name"`
	Status           CheckStatus `json:"status"`
	Reason           string      `json:"reason"`
	RiskContribution float64     `json:"risk_contribution"`
}

// AdvisoryOpinion records what the optional language model said about a claim.
type AdvisoryOpinion struct {
	FraudLikely bool    `json:"fraud_likely"`
	Confidence  float64 `json:"confidence"`
	Reasoning   string  `json:"reasoning,omitempty"`
}

// FraudResult is the Fraud Scorer's output.
type FraudResult struct {
	Checks         []FraudCheck     `json:"checks"`
	RiskScore      float64          `json:"risk_score"`
	RiskLevel      RiskLevel        `json:"risk_level"`
	RedFlags       []string         `json:"red_flags"`
	Recommendation string           `json:"recommendation"`
	Advisory       *AdvisoryOpinion `json:"advisory,omitempty"`
}

// Check returns the named check, or ok=false.
func (f *FraudResult) Check(name string) (FraudCheck, bool) {
	for _, c := range f.Checks {
		if c.Name == name {
			return c, true
		}
	}
	return FraudCheck{}, false
}

// Decision is the final adjudication outcome.
type Decision string

const (
	DecisionApprove      Decision = "APPROVE"
	DecisionReject       Decision = "REJECT"
	DecisionManualReview Decision = "MANUAL_REVIEW"
)

// FinalDecision is produced once per claim.
type FinalDecision struct {
	Decision Decision `json:"decision"`
	Reason   string   `json:"reason"`
}

// PolicyExcerpt is one retrieved policy document.
type PolicyExcerpt struct {
	Source  string  `json:"source"`
	Score   float64 `json:"score"`
	Excerpt string  `json:"excerpt"`
}
