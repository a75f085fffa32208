package fraud

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/gyeh/claimsadj/internal/advisory"
	"github.com/gyeh/claimsadj/internal/model"
)

const advisorySystemPrompt = `You are a medical claims fraud expert. Analyze the claim and return ONLY a JSON object: ` +
	`{"fraud_likely": true/false, "confidence": 0.0-1.0, "reasoning": "brief explanation"}`

// consultAdvisor asks the advisory model for an opinion and raises res when it
// says fraud is likely. Any failure is an abstention.
func (s *Scorer) consultAdvisor(ctx context.Context, rec model.ClaimRecord, res *model.FraudResult) {
	msgs := []advisory.Message{
		{Role: "system", Content: advisorySystemPrompt},
		{Role: "user", Content: advisoryPrompt(rec, res)},
	}
	reply, err := advisory.Consult(ctx, s.advisor, s.advisoryTimeout, msgs)
	if err != nil {
		s.log.Warn().Err(err).Str("claim_id", rec.ClaimID).Msg("advisory fraud opinion skipped")
		return
	}
	var op model.AdvisoryOpinion
	if err := advisory.DecodeJSON(reply, &op); err != nil {
		s.log.Warn().Err(err).Str("claim_id", rec.ClaimID).Msg("advisory fraud reply unusable")
		return
	}
	res.Advisory = &op
	if !op.FraudLikely {
		return
	}
	res.RiskScore = roundScore(math.Max(res.RiskScore, AdvisoryFloor))
	flag := "Advisory model detected suspicious patterns"
	if r := strings.TrimSpace(op.Reasoning); r != "" {
		flag += ": " + r
	}
	res.RedFlags = append(res.RedFlags, flag)
}

func advisoryPrompt(rec model.ClaimRecord, res *model.FraudResult) string {
	var b strings.Builder
	b.WriteString("Analyze this claim for fraud:\n")
	fmt.Fprintf(&b, "Amount: %s\n", rec.ClaimAmount)
	fmt.Fprintf(&b, "Provider: %s (%s)\n", rec.Provider.Name, rec.Provider.ID)
	fmt.Fprintf(&b, "Diagnosis Codes: %s\n", strings.Join(rec.DiagnosisCodes, ", "))
	fmt.Fprintf(&b, "Procedure Codes: %s\n", strings.Join(rec.ProcedureCodes, ", "))
	fmt.Fprintf(&b, "Service Date: %s\n\n", rec.ServiceDate)
	fmt.Fprintf(&b, "Current risk flags: %s\n", strings.Join(res.RedFlags, "; "))
	fmt.Fprintf(&b, "Current risk score: %.2f\n\n", res.RiskScore)
	b.WriteString("Is this claim likely fraudulent?")
	return b.String()
}
