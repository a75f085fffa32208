package fraud

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/gyeh/claimsadj/internal/model"
)

// claimContext is the per-claim view every check reads.
type claimContext struct {
	rec      model.ClaimRecord
	memberID string
	date     time.Time
	hasDate  bool
	codeKey  string
	// prior excludes any history entry carrying the claim's own id.
	prior []model.HistoricalClaim
}

func (s *Scorer) newClaimContext(rec model.ClaimRecord) claimContext {
	c := claimContext{rec: rec, memberID: strings.TrimSpace(rec.Patient.MemberID)}
	c.date, c.hasDate = rec.ServiceTime()
	c.codeKey = codeSetKey(rec.ProcedureCodes)
	if c.memberID != "" {
		for _, h := range s.history.ForMember(c.memberID) {
			if rec.ClaimID != "" && h.ClaimID == rec.ClaimID {
				continue
			}
			c.prior = append(c.prior, h)
		}
	}
	return c
}

// codeSetKey identifies a procedure-code set irrespective of order.
func codeSetKey(codes []string) string {
	set := slices.Clone(codes)
	slices.Sort(set)
	return strings.Join(slices.Compact(set), ",")
}

func skipped(name, reason string) model.FraudCheck {
	return model.FraudCheck{Name: name, Status: model.StatusSkipped, Reason: reason}
}

func passed(name, reason string) model.FraudCheck {
	return model.FraudCheck{Name: name, Status: model.StatusPassed, Reason: reason}
}

func flagged(name, reason string, weight float64) model.FraudCheck {
	return model.FraudCheck{Name: name, Status: model.StatusFlagged, Reason: reason, RiskContribution: weight}
}

// missingDate explains why a date-dependent check was skipped.
func (c claimContext) missingDate() (string, bool) {
	switch {
	case c.memberID == "":
		return "member ID missing", true
	case c.rec.ServiceDate == "":
		return "service date missing", true
	case !c.hasDate:
		return fmt.Sprintf("service date %q not parseable", c.rec.ServiceDate), true
	}
	return "", false
}

func daysBetween(a, b time.Time) int {
	d := a.Sub(b).Hours() / 24
	if d < 0 {
		d = -d
	}
	return int(d + 0.5)
}

func (s *Scorer) duplicate(c claimContext) model.FraudCheck {
	const name = model.FraudDuplicate
	if why, skip := c.missingDate(); skip {
		return skipped(name, why)
	}
	if c.codeKey == "" {
		return passed(name, "No procedure codes to compare")
	}
	window := s.rules.DuplicateWindowDays
	for _, h := range c.prior {
		t, ok := h.ServiceTime()
		if !ok || daysBetween(c.date, t) > window {
			continue
		}
		if codeSetKey(h.ProcedureCodes) == c.codeKey {
			return flagged(name,
				fmt.Sprintf("Possible duplicate of claim %s (%s): same procedures within %d days",
					h.ClaimID, h.ServiceDate, window),
				DuplicateWeight)
		}
	}
	return passed(name, fmt.Sprintf("No matching claim within %d days", window))
}

func (s *Scorer) amountDeviation(c claimContext) model.FraudCheck {
	const name = model.FraudAmountDeviation
	if c.memberID == "" {
		return skipped(name, "member ID missing")
	}
	var total int64
	var n int
	for _, h := range c.prior {
		if h.AmountCents > 0 {
			total += h.AmountCents
			n++
		}
	}
	if n == 0 {
		return passed(name, "No prior claim amounts for member")
	}
	avg := float64(total) / float64(n)
	limit := avg * s.rules.AmountDeviationMultiple
	if float64(c.rec.ClaimAmount) > limit {
		return flagged(name,
			fmt.Sprintf("Amount %s exceeds %.1fx member average %s",
				c.rec.ClaimAmount, s.rules.AmountDeviationMultiple, model.Money(avg)),
			AmountDeviationWeight)
	}
	return passed(name, fmt.Sprintf("Amount within %.1fx member average", s.rules.AmountDeviationMultiple))
}

func (s *Scorer) highRiskProvider(c claimContext) model.FraudCheck {
	const name = model.FraudHighRiskProvider
	id := strings.TrimSpace(c.rec.Provider.ID)
	if id == "" {
		return skipped(name, "provider ID missing")
	}
	if s.rules.IsHighRiskProvider(id) {
		return flagged(name, fmt.Sprintf("Provider %s is on the high-risk list", id), HighRiskProviderWeight)
	}
	return passed(name, "Provider not on high-risk list")
}

func (s *Scorer) pattern(c claimContext) model.FraudCheck {
	const name = model.FraudPattern
	codes := c.rec.ProcedureCodes
	var reasons []string
	if len(codes) > s.rules.MaxProcedures {
		reasons = append(reasons,
			fmt.Sprintf("%d procedures exceeds maximum of %d", len(codes), s.rules.MaxProcedures))
	}
	for _, combo := range s.rules.SuspiciousCombinations {
		if len(combo) == 0 {
			continue
		}
		all := true
		for _, code := range combo {
			if !slices.Contains(codes, code) {
				all = false
				break
			}
		}
		if all {
			reasons = append(reasons, "Suspicious procedure combination: "+strings.Join(combo, " + "))
		}
	}
	if len(reasons) > 0 {
		return flagged(name, strings.Join(reasons, "; "), PatternWeight)
	}
	return passed(name, "No suspicious procedure pattern")
}

func (s *Scorer) volume(c claimContext) model.FraudCheck {
	const name = model.FraudVolume
	if why, skip := c.missingDate(); skip {
		return skipped(name, why)
	}
	from := c.date.AddDate(0, 0, -s.rules.VolumeWindowDays)
	count := 0
	for _, h := range c.prior {
		t, ok := h.ServiceTime()
		if ok && !t.Before(from) && !t.After(c.date) {
			count++
		}
	}
	if count > s.rules.VolumeMaxClaims {
		return flagged(name,
			fmt.Sprintf("%d claims in the %d days before service date (max %d)",
				count, s.rules.VolumeWindowDays, s.rules.VolumeMaxClaims),
			VolumeWeight)
	}
	return passed(name, fmt.Sprintf("%d claims in the trailing %d days", count, s.rules.VolumeWindowDays))
}
