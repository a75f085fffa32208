package refdata

import (
	"slices"
	"strings"

	"github.com/gyeh/claimsadj/internal/model"
)

// DefaultAutoApprovalThreshold is the claim amount, in dollars, above which
// business rules send a claim to review.
const DefaultAutoApprovalThreshold = 1000.0

// DefaultAuthorizationRequired lists procedures that need prior authorization
// when the rules file names none.
var DefaultAuthorizationRequired = []string{"80050", "99285", "99291"}

// PlanRule is the coverage of one plan.
type PlanRule struct {
	CoveredProcedures []string `yaml:"covered_procedures"`
	Copay             float64  `yaml:"copay"`
}

// Covers reports whether code is in the plan's covered set.
func (p PlanRule) Covers(code string) bool {
	return slices.Contains(p.CoveredProcedures, code)
}

// CopayAmount returns the copay as Money.
func (p PlanRule) CopayAmount() model.Money {
	return model.MoneyFromDollars(p.Copay)
}

// CoverageRules is the plan catalog plus global validation thresholds.
// A nil Plans means no catalog was loaded and coverage is not checked.
type CoverageRules struct {
	Plans                 map[string]PlanRule `yaml:"plans"`
	AutoApprovalThreshold float64             `yaml:"auto_approval_threshold"`
	AuthorizationRequired []string            `yaml:"authorization_required"`
}

// DefaultCoverageRules returns rules with no plan catalog and default thresholds.
func DefaultCoverageRules() CoverageRules {
	return CoverageRules{
		AutoApprovalThreshold: DefaultAutoApprovalThreshold,
		AuthorizationRequired: slices.Clone(DefaultAuthorizationRequired),
	}
}

// Plan looks up a plan case-insensitively.
func (r CoverageRules) Plan(name string) (PlanRule, bool) {
	if p, ok := r.Plans[name]; ok {
		return p, true
	}
	for k, p := range r.Plans {
		if strings.EqualFold(k, name) {
			return p, true
		}
	}
	return PlanRule{}, false
}

// RequiresAuthorization reports whether code is on the prior-authorization list.
func (r CoverageRules) RequiresAuthorization(code string) bool {
	return slices.Contains(r.AuthorizationRequired, code)
}

// ThresholdAmount returns the auto-approval threshold as Money.
func (r CoverageRules) ThresholdAmount() model.Money {
	return model.MoneyFromDollars(r.AutoApprovalThreshold)
}

func (r *CoverageRules) applyDefaults() {
	d := DefaultCoverageRules()
	if r.AutoApprovalThreshold <= 0 {
		r.AutoApprovalThreshold = d.AutoApprovalThreshold
	}
	if r.AuthorizationRequired == nil {
		r.AuthorizationRequired = d.AuthorizationRequired
	}
	if r.Plans == nil {
		r.Plans = map[string]PlanRule{}
	}
}

// LoadCoverageRules reads the plan catalog. Omitted thresholds take defaults.
func LoadCoverageRules(path string) (CoverageRules, error) {
	var r CoverageRules
	if err := readYAML(path, "coverage rules", &r); err != nil {
		return DefaultCoverageRules(), err
	}
	r.applyDefaults()
	return r, nil
}
