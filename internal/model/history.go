package model

import (
	"time"

	"github.com/google/uuid"
)

// HistoricalClaim is a previously adjudicated claim used as fraud reference data.
// The struct doubles as the Parquet schema of history snapshots.
type HistoricalClaim struct {
	ClaimID        string   `parquet:"claim_id" json:"claim_id" yaml:"claim_id"`
	MemberID       string   `parquet:"member_id" json:"member_id" yaml:"member_id"`
	ProviderID     string   `parquet:"provider_id" json:"provider_id" yaml:"provider_id"`
	ProcedureCodes []string `parquet:"procedure_codes" json:"procedure_codes" yaml:"procedure_codes"`
	AmountCents    int64    `parquet:"amount_cents" json:"amount_cents" yaml:"amount_cents"`
	ServiceDate    string   `parquet:"service_date" json:"service_date" yaml:"service_date"`
}

// HistoryColumns returns the ordered column names for COPY into claims.history.
func HistoryColumns() []string {
	return []string{
		"load_batch_id",
		"claim_id",
		"member_id",
		"provider_id",
		"procedure_codes",
		"amount_cents",
		"service_date",
	}
}

// HistoryRow is a HistoricalClaim tagged with the batch that loaded it.
type HistoryRow struct {
	BatchID uuid.UUID
	Claim   HistoricalClaim
}

// CopyValues returns the row values in the same order as HistoryColumns(),
// suitable for pgx CopyFromSource.
func (r *HistoryRow) CopyValues() []any {
	var date *time.Time
	if t, err := time.Parse(ISODate, r.Claim.ServiceDate); err == nil {
		date = &t
	}
	return []any{
		r.BatchID,
		r.Claim.ClaimID,
		r.Claim.MemberID,
		r.Claim.ProviderID,
		r.Claim.ProcedureCodes,
		r.Claim.AmountCents,
		date,
	}
}

// ServiceTime parses ServiceDate; ok is false when it is absent or not ISO-8601.
func (c *HistoricalClaim) ServiceTime() (t time.Time, ok bool) {
	t, err := time.Parse(ISODate, c.ServiceDate)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Amount returns the claim amount as Money.
func (c *HistoricalClaim) Amount() Money {
	return Money(c.AmountCents)
}
