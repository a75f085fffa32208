package model

import "time"

// DefaultPlanType is used when a claim document names no plan.
const DefaultPlanType = "STANDARD"

// ISODate is the layout of ClaimRecord.ServiceDate.
const ISODate = "2006-01-02"

// Extraction methods recorded on ClaimRecord.
const (
	MethodStructured = "structured"
	MethodHeuristic  = "heuristic"
	MethodHybrid     = "hybrid"
)

// Patient identifies the member the claim was filed for.
type Patient struct {
	Name     string `json:"name"`
	MemberID string `json:"member_id"`
}

// Provider identifies the billing provider.
type Provider struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}

// ClaimRecord is the canonical claim produced by extraction and read by every
// later stage. Missing fields are zero values; ClaimID is never empty once
// extraction has finished.
type ClaimRecord struct {
	ClaimID          string   `json:"claim_id"`
	Patient          Patient  `json:"patient"`
	Provider         Provider `json:"provider"`
	DiagnosisCodes   []string `json:"diagnosis_codes"`
	ProcedureCodes   []string `json:"procedure_codes"`
	ClaimAmount      Money    `json:"claim_amount"`
	ServiceDate      string   `json:"service_date"`
	PlanType         string   `json:"plan_type"`
	RawTextPreview   string   `json:"raw_text_preview"`
	ExtractionMethod string   `json:"extraction_method,omitempty"`
}

// ServiceTime parses ServiceDate. ok is false when the date is absent or not ISO-8601.
func (c *ClaimRecord) ServiceTime() (t time.Time, ok bool) {
	if c.ServiceDate == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(ISODate, c.ServiceDate)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// RawFields is the loosely typed mapping a format parser produces before it is
// coalesced into a ClaimRecord. Values are strings, numbers, []any or nested RawFields.
type RawFields map[string]any
