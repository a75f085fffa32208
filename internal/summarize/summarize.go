// Package summarize renders a finished adjudication as human-readable text.
// It only reads prior stage outputs and makes no decisions.
package summarize

import (
	"fmt"
	"io"
	"strings"

	"github.com/gyeh/claimsadj/internal/codes"
	"github.com/gyeh/claimsadj/internal/model"
)

// Input is everything the summarizer reads.
type Input struct {
	Claim      model.ClaimRecord
	Policies   []model.PolicyExcerpt
	Validation model.ValidationResult
	Fraud      model.FraudResult
	Decision   model.FinalDecision
}

// Summarize builds the executive summary, detailed breakdown and action items.
func Summarize(in Input) model.Summary {
	return model.Summary{
		ExecutiveSummary: executiveSummary(in),
		Breakdown:        breakdown(in),
		ActionItems:      actionItems(in),
		Decision:         in.Decision.Decision,
		Reason:           in.Decision.Reason,
	}
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

func percent(score float64) string {
	return fmt.Sprintf("%.1f%%", score*100)
}

// checkTitle turns "business_rules" into "Business Rules".
func checkTitle(name string) string {
	words := strings.Split(name, "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

func failedChecks(v model.ValidationResult) []model.NamedCheck {
	var out []model.NamedCheck
	for _, c := range v.Checks() {
		if c.Status == model.StatusFailed {
			out = append(out, c)
		}
	}
	return out
}

func executiveSummary(in Input) string {
	c := in.Claim
	f := in.Fraud
	head := fmt.Sprintf("CLAIM %s", orDefault(c.ClaimID, "N/A"))
	who := fmt.Sprintf("%s for %s", c.ClaimAmount, orDefault(c.Patient.Name, "Valued Member"))
	failed := failedChecks(in.Validation)

	var lines []string
	switch in.Decision.Decision {
	case model.DecisionApprove:
		lines = []string{
			fmt.Sprintf("%s - APPROVED - %s", head, who),
			"Standard approval process",
			fmt.Sprintf("Fraud risk: %s (%s)", f.RiskLevel, percent(f.RiskScore)),
			"Ready for payment processing",
		}
	case model.DecisionReject:
		names := make([]string, len(failed))
		for i, c := range failed {
			names[i] = checkTitle(c.Name)
		}
		lines = []string{
			fmt.Sprintf("%s - REJECTED - %s", head, who),
			"Validation failures: " + orDefault(strings.Join(names, ", "), in.Decision.Reason),
			fmt.Sprintf("Fraud risk: %s (%s)", f.RiskLevel, percent(f.RiskScore)),
		}
	default:
		lines = []string{fmt.Sprintf("%s - REQUIRES MANUAL REVIEW - %s", head, who)}
		if f.RiskLevel == model.RiskHigh {
			lines = append(lines,
				fmt.Sprintf("High fraud risk detected: %s", percent(f.RiskScore)),
				"Escalated to claims investigation team")
		} else {
			lines = append(lines,
				"Reason: "+in.Decision.Reason,
				"Expected resolution: 10-14 business days")
		}
	}
	return lines[0] + "\n  - " + strings.Join(lines[1:], "\n  - ")
}

func breakdown(in Input) model.Breakdown {
	c := in.Claim
	diag := details(c.DiagnosisCodes, false)
	proc := details(c.ProcedureCodes, true)

	checks := in.Validation.Checks()
	lines := make([]model.CheckLine, len(checks))
	for i, chk := range checks {
		lines[i] = model.CheckLine{Name: chk.Name, Status: chk.Status, Reason: chk.Reason}
	}

	return model.Breakdown{
		Claim: model.ClaimInformation{
			ClaimID:          orDefault(c.ClaimID, "Not provided"),
			PatientName:      orDefault(c.Patient.Name, "Unknown"),
			MemberID:         orDefault(c.Patient.MemberID, "Unknown"),
			ServiceDate:      orDefault(c.ServiceDate, "Unknown"),
			Provider:         orDefault(c.Provider.Name, "Unknown"),
			TotalAmount:      c.ClaimAmount.String(),
			ExtractionMethod: orDefault(c.ExtractionMethod, model.MethodHybrid),
			PlanType:         orDefault(c.PlanType, model.DefaultPlanType),
		},
		Clinical: model.ClinicalInformation{
			Diagnoses:  diag,
			Procedures: proc,
			Summary:    clinicalSummary(diag, proc),
		},
		Validation: lines,
		Policies:   policyLines(in.Policies),
		Fraud: model.FraudAnalysis{
			RiskLevel:      in.Fraud.RiskLevel,
			RiskScore:      percent(in.Fraud.RiskScore),
			Recommendation: in.Fraud.Recommendation,
			Flags:          append([]string{}, in.Fraud.RedFlags...),
		},
		FinalDecision: in.Decision,
	}
}

// policyLines lists retrieved policies as "source (score)".
func policyLines(policies []model.PolicyExcerpt) []string {
	out := []string{}
	for _, p := range policies {
		if p.Score <= 0 {
			continue
		}
		out = append(out, fmt.Sprintf("%s (%.2f)", p.Source, p.Score))
	}
	return out
}

func details(list []string, isProcedure bool) []model.CodeDetail {
	out := make([]model.CodeDetail, len(list))
	for i, code := range list {
		out[i] = model.CodeDetail{
			Code:        code,
			Description: codes.Describe(code, isProcedure),
			Category:    codes.Category(code, isProcedure),
		}
		if ct, ok := codes.System(code); ok {
			out[i].System = ct.Name
		}
	}
	return out
}

// clinicalSummary groups codes by category in first-seen order.
func clinicalSummary(diag, proc []model.CodeDetail) string {
	if len(diag) == 0 && len(proc) == 0 {
		return "No clinical information available"
	}
	var parts []string
	for _, sec := range []struct {
		title string
		list  []model.CodeDetail
		cut   string
	}{
		{"Diagnoses:", diag, ","},
		{"Procedures:", proc, "."},
	} {
		if len(sec.list) == 0 {
			continue
		}
		var order []string
		groups := map[string][]string{}
		for _, d := range sec.list {
			if _, ok := groups[d.Category]; !ok {
				order = append(order, d.Category)
			}
			short, _, _ := strings.Cut(d.Description, sec.cut)
			groups[d.Category] = append(groups[d.Category], fmt.Sprintf("%s (%s)", d.Code, short))
		}
		parts = append(parts, sec.title)
		for _, cat := range order {
			parts = append(parts, fmt.Sprintf("  - %s: %s", cat, strings.Join(groups[cat], ", ")))
		}
	}
	return strings.Join(parts, "\n")
}

func actionItems(in Input) []string {
	high := in.Fraud.RiskLevel == model.RiskHigh
	switch in.Decision.Decision {
	case model.DecisionApprove:
		return []string{
			"Payment Processing: claim approved for payment",
			fmt.Sprintf("Amount: payment of %s will be issued", in.Claim.ClaimAmount),
			"Timeline: payment within 7-10 business days",
			"Next: Explanation of Benefits will be mailed to the address on file",
		}
	case model.DecisionReject:
		var items []string
		for _, c := range failedChecks(in.Validation) {
			items = append(items, fmt.Sprintf("%s: %s", checkTitle(c.Name), c.Reason))
		}
		if high {
			items = append(items, fmt.Sprintf("Fraud Alert: high risk detected (%s)", percent(in.Fraud.RiskScore)))
		}
		return append(items,
			"Appeal Rights: the member may appeal within 180 days",
			"Contact: Appeals Department")
	}
	items := []string{
		"Status: claim requires manual review",
		"Timeline: 10-14 business days for resolution",
		"Assignee: senior claims adjuster",
	}
	if high {
		items = append(items, "Note: under investigation for potential fraud indicators")
	}
	return items
}

// WriteText renders a summary for a terminal.
func WriteText(w io.Writer, s model.Summary) error {
	var b strings.Builder
	b.WriteString(s.ExecutiveSummary)
	b.WriteString("\n\n")

	ci := s.Breakdown.Claim
	fmt.Fprintf(&b, "Claim:     %s\n", ci.ClaimID)
	fmt.Fprintf(&b, "Patient:   %s (%s)\n", ci.PatientName, ci.MemberID)
	fmt.Fprintf(&b, "Provider:  %s\n", ci.Provider)
	fmt.Fprintf(&b, "Service:   %s\n", ci.ServiceDate)
	fmt.Fprintf(&b, "Amount:    %s\n", ci.TotalAmount)
	fmt.Fprintf(&b, "Plan:      %s\n\n", ci.PlanType)

	b.WriteString(s.Breakdown.Clinical.Summary)
	b.WriteString("\n\nValidation:\n")
	for _, l := range s.Breakdown.Validation {
		fmt.Fprintf(&b, "  %-15s %-12s %s\n", l.Name, l.Status, l.Reason)
	}

	if len(s.Breakdown.Policies) > 0 {
		fmt.Fprintf(&b, "Policies:  %s\n", strings.Join(s.Breakdown.Policies, ", "))
	}

	fa := s.Breakdown.Fraud
	fmt.Fprintf(&b, "\nFraud: %s (%s) - %s\n", fa.RiskLevel, fa.RiskScore, fa.Recommendation)
	for _, f := range fa.Flags {
		fmt.Fprintf(&b, "  ! %s\n", f)
	}

	fmt.Fprintf(&b, "\nDecision: %s - %s\n", s.Decision, s.Reason)
	for _, a := range s.ActionItems {
		fmt.Fprintf(&b, "  * %s\n", a)
	}
	_, err := io.WriteString(w, b.String())
	return err
}
