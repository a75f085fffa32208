// Package validate runs the four rule checks (eligibility, coverage,
// authorization, business rules) and reduces them to one decision.
package validate

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/gyeh/claimsadj/internal/model"
	"github.com/gyeh/claimsadj/internal/refdata"
)

// Reason strings used verbatim in aggregate messages.
const (
	ReasonMissingMember    = "Missing member ID"
	ReasonMemberNotFound   = "Member ID not found in system"
	ReasonEligibleNoData   = "Member validation bypassed (no member data)"
	ReasonCannotCheck      = "Eligibility failed, cannot check coverage"
	ReasonNoProcedures     = "No procedure codes provided"
	ReasonCoverageNoRules  = "Coverage validation bypassed (no coverage rules)"
	ReasonNoAuthRequired   = "No authorization required"
	ReasonBusinessRulesMet = "All business rules satisfied"
)

// Validator is a pure function of a claim and the immutable reference tables
// it was built with. Safe for concurrent use.
type Validator struct {
	members  refdata.Members
	coverage refdata.CoverageRules
	log      zerolog.Logger
}

// New creates a Validator. A nil members table means every member is treated
// as eligible; coverage rules without a plan catalog skip the covered-set test.
func New(members refdata.Members, coverage refdata.CoverageRules, log zerolog.Logger) *Validator {
	if coverage.AutoApprovalThreshold <= 0 {
		coverage.AutoApprovalThreshold = refdata.DefaultAutoApprovalThreshold
	}
	return &Validator{members: members, coverage: coverage, log: log}
}

// Validate runs all four checks. Only Coverage depends on another check, and
// only on Eligibility's resolved plan.
func (v *Validator) Validate(rec model.ClaimRecord) model.ValidationResult {
	start := time.Now()

	elig := v.eligibility(rec)
	res := model.ValidationResult{
		Eligibility:   elig,
		Coverage:      v.coverageCheck(rec, elig),
		Authorization: v.authorization(rec),
		BusinessRules: v.businessRules(rec),
	}
	res.Decision, res.Reason = Aggregate(res.Checks())

	v.log.Info().
		Str("claim_id", rec.ClaimID).
		Str("decision", string(res.Decision)).
		Str("eligibility", string(res.Eligibility.Status)).
		Str("coverage", string(res.Coverage.Status)).
		Str("authorization", string(res.Authorization.Status)).
		Str("business_rules", string(res.BusinessRules.Status)).
		Dur("duration", time.Since(start)).
		Msg("validation complete")
	return res
}

// Aggregate reduces checks by precedence: any FAILED gives DENIED, else any
// NEEDS_REVIEW gives NEEDS_REVIEW, else APPROVED. The reason joins every
// reason of the triggering class with "; ".
func Aggregate(checks []model.NamedCheck) (model.ValidationDecision, string) {
	var failed, review []string
	for _, c := range checks {
		switch c.Status {
		case model.StatusFailed:
			failed = append(failed, c.Reason)
		case model.StatusNeedsReview:
			review = append(review, c.Reason)
		}
	}
	switch {
	case len(failed) > 0:
		return model.ValidationDenied, strings.Join(failed, "; ")
	case len(review) > 0:
		return model.ValidationNeedsReview, strings.Join(review, "; ")
	}
	return model.ValidationApproved, "All validation checks passed"
}

func (v *Validator) eligibility(rec model.ClaimRecord) model.CheckResult {
	id := strings.TrimSpace(rec.Patient.MemberID)
	if id == "" {
		return model.CheckResult{Status: model.StatusFailed, Reason: ReasonMissingMember}
	}
	if len(v.members) == 0 {
		return model.CheckResult{Status: model.StatusPassed, Reason: ReasonEligibleNoData, Plan: rec.PlanType}
	}
	m, ok := v.members.Lookup(id)
	if !ok {
		return model.CheckResult{Status: model.StatusFailed, Reason: ReasonMemberNotFound}
	}
	if !m.Active() {
		return model.CheckResult{
			Status: model.StatusFailed,
			Reason: fmt.Sprintf("Member status: %s", strings.ToUpper(m.NormalizedStatus())),
		}
	}
	plan := m.Plan
	if plan == "" {
		plan = rec.PlanType
	}
	return model.CheckResult{Status: model.StatusPassed, Reason: "Member active and eligible", Plan: plan}
}

func (v *Validator) coverageCheck(rec model.ClaimRecord, elig model.CheckResult) model.CheckResult {
	if elig.Status != model.StatusPassed {
		return model.CheckResult{Status: model.StatusFailed, Reason: ReasonCannotCheck}
	}
	if len(rec.ProcedureCodes) == 0 {
		return model.CheckResult{Status: model.StatusFailed, Reason: ReasonNoProcedures}
	}
	if len(v.coverage.Plans) == 0 {
		return model.CheckResult{Status: model.StatusPassed, Reason: ReasonCoverageNoRules}
	}

	plan, ok := v.coverage.Plan(elig.Plan)
	if !ok {
		return model.CheckResult{
			Status: model.StatusFailed,
			Reason: fmt.Sprintf("Plan %s has no coverage rules", elig.Plan),
		}
	}
	var uncovered []string
	for _, code := range rec.ProcedureCodes {
		if !plan.Covers(code) {
			uncovered = append(uncovered, code)
		}
	}
	if len(uncovered) > 0 {
		return model.CheckResult{
			Status:         model.StatusFailed,
			Reason:         fmt.Sprintf("Uncovered procedures under plan %s: %s", elig.Plan, strings.Join(uncovered, ", ")),
			UncoveredCodes: uncovered,
		}
	}
	copay := plan.CopayAmount()
	return model.CheckResult{
		Status: model.StatusPassed,
		Reason: fmt.Sprintf("All procedures covered under plan %s (copay %s)", elig.Plan, copay),
		Copay:  &copay,
	}
}

func (v *Validator) authorization(rec model.ClaimRecord) model.CheckResult {
	var codes []string
	for _, code := range rec.ProcedureCodes {
		if v.coverage.RequiresAuthorization(code) {
			codes = append(codes, code)
		}
	}
	if len(codes) == 0 {
		return model.CheckResult{Status: model.StatusPassed, Reason: ReasonNoAuthRequired}
	}
	noun := "Procedure"
	verb := "requires"
	if len(codes) > 1 {
		noun, verb = "Procedures", "require"
	}
	return model.CheckResult{
		Status:             model.StatusNeedsReview,
		Reason:             fmt.Sprintf("%s %s %s prior authorization", noun, strings.Join(codes, ", "), verb),
		AuthorizationCodes: codes,
	}
}

func (v *Validator) businessRules(rec model.ClaimRecord) model.CheckResult {
	threshold := v.coverage.ThresholdAmount()
	if rec.ClaimAmount > threshold {
		return model.CheckResult{
			Status: model.StatusNeedsReview,
			Reason: fmt.Sprintf("High claim amount requires review: %s exceeds %s", rec.ClaimAmount, threshold),
		}
	}
	return model.CheckResult{Status: model.StatusPassed, Reason: ReasonBusinessRulesMet}
}
