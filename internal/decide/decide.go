// Package decide fuses the validation decision and fraud risk level into the
// final adjudication outcome.
package decide

import "github.com/gyeh/claimsadj/internal/model"

// Reasons for outcomes not carried over from validation.
const (
	ReasonHighFraud   = "High fraud risk detected"
	ReasonMediumFraud = "Elevated fraud risk requires review"
	ReasonAllPassed   = "All checks passed"
)

// Decide applies a fixed precedence: a denied validation rejects; HIGH fraud
// risk escalates to manual review but never rejects on its own; a validation
// review or MEDIUM fraud risk goes to manual review; everything else approves.
func Decide(v model.ValidationResult, f model.FraudResult) model.FinalDecision {
	switch {
	case v.Decision == model.ValidationDenied:
		return model.FinalDecision{Decision: model.DecisionReject, Reason: v.Reason}
	case f.RiskLevel == model.RiskHigh:
		return model.FinalDecision{Decision: model.DecisionManualReview, Reason: ReasonHighFraud}
	case v.Decision == model.ValidationNeedsReview:
		return model.FinalDecision{Decision: model.DecisionManualReview, Reason: v.Reason}
	case f.RiskLevel == model.RiskMedium:
		return model.FinalDecision{Decision: model.DecisionManualReview, Reason: mediumReason(f)}
	}
	return model.FinalDecision{Decision: model.DecisionApprove, Reason: ReasonAllPassed}
}

func mediumReason(f model.FraudResult) string {
	if len(f.RedFlags) > 0 {
		return ReasonMediumFraud + ": " + f.RedFlags[0]
	}
	return ReasonMediumFraud
}
