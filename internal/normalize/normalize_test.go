package normalize

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gyeh/claimsadj/internal/model"
)

func decode(t *testing.T, s string) model.RawFields {
	t.Helper()
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()
	var f model.RawFields
	require.NoError(t, dec.Decode(&f))
	return f
}

func TestToClaimRecord_CamelAndSnake(t *testing.T) {
	snake := decode(t, `{"claim_id":"C-1","patient_name":"Jane Doe","member_id":"M1","provider_name":"Dr. Who",
		"provider_id":"P9","diagnosis_codes":["j10.1"],"procedure_codes":["99213"],"claim_amount":"$1,250.50",
		"service_date":"03/15/2024"}`)
	camel := decode(t, `{"claimId":"C-1","patientName":"Jane Doe","memberId":"M1","providerName":"Dr. Who",
		"providerId":"P9","diagnosisCodes":["J10.1"],"procedureCodes":["99213"],"claimAmount":1250.5,
		"serviceDate":"2024-03-15"}`)

	a := ToClaimRecord(snake)
	b := ToClaimRecord(camel)
	assert.Equal(t, a, b)
	assert.Equal(t, "C-1", a.ClaimID)
	assert.Equal(t, "Jane Doe", a.Patient.Name)
	assert.Equal(t, "M1", a.Patient.MemberID)
	assert.Equal(t, "P9", a.Provider.ID)
	assert.Equal(t, []string{"J10.1"}, a.DiagnosisCodes)
	assert.Equal(t, model.Money(125050), a.ClaimAmount)
	assert.Equal(t, "2024-03-15", a.ServiceDate)
	assert.Equal(t, model.DefaultPlanType, a.PlanType)
}

func TestToClaimRecord_NestedCodesAndDedup(t *testing.T) {
	f := model.RawFields{
		"procedure_codes": model.RawFields{"code": []any{"99213", "80050", "99213"}},
		"diagnosis_codes": "J10.1, E11.9;J10.1",
		"amount":          json.Number("-5"),
	}
	rec := ToClaimRecord(f)
	assert.Equal(t, []string{"99213", "80050"}, rec.ProcedureCodes)
	assert.Equal(t, []string{"J10.1", "E11.9"}, rec.DiagnosisCodes)
	assert.Equal(t, model.Money(0), rec.ClaimAmount)
}

func TestHasClaimFields(t *testing.T) {
	assert.True(t, HasClaimFields(model.RawFields{"memberId": "M1"}))
	assert.False(t, HasClaimFields(model.RawFields{"foo": "bar"}))
}

func TestParseDollars(t *testing.T) {
	got := ParseDollars("$12,000.75")
	require.NotNil(t, got)
	assert.InDelta(t, 12000.75, *got, 1e-9)
	assert.Nil(t, ParseDollars("n/a"))
	assert.Nil(t, ParseDollars(""))
}

func TestISODate(t *testing.T) {
	assert.Equal(t, "2024-01-05", ISODate("Jan 5, 2024"))
	assert.Equal(t, "someday", ISODate(" someday "))
}

func TestContentDigest_Stable(t *testing.T) {
	a := ContentDigest(6, "Jane", "M1", "2024-01-01")
	b := ContentDigest(6, " Jane ", "M1", "2024-01-01")
	assert.Len(t, a, 6)
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, ContentDigest(6, "Jane", "M2", "2024-01-01"))
}
