package refdata

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gyeh/claimsadj/internal/model"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadMembers_JSON(t *testing.T) {
	path := writeFile(t, "members.json", `{
  "M12345678": {"status": "ACTIVE", "plan": "PREMIUM", "name": "Jane Doe"},
  "M00000002": {"status": "terminated", "plan": "BASIC", "name": "Old Member"}
}`)
	m, err := LoadMembers(path)
	require.NoError(t, err)
	require.Len(t, m, 2)

	mem, ok := m.Lookup(" M12345678 ")
	require.True(t, ok)
	assert.True(t, mem.Active())
	assert.Equal(t, "PREMIUM", mem.Plan)

	mem, _ = m.Lookup("M00000002")
	assert.False(t, mem.Active())
	assert.Equal(t, StatusTerminated, mem.NormalizedStatus())
	assert.Equal(t, StatusUnknown, Member{Status: "suspended"}.NormalizedStatus())
}

func TestLoadMembers_Missing(t *testing.T) {
	m, err := LoadMembers(filepath.Join(t.TempDir(), "nope.json"))
	assert.ErrorIs(t, err, ErrReferenceDataMissing)
	assert.Nil(t, m)

	_, err = LoadMembers("")
	assert.ErrorIs(t, err, ErrReferenceDataMissing)
}

func TestLoadMembers_EmptyRegistryIsNil(t *testing.T) {
	for _, body := range []string{`{}`, ``} {
		m, err := LoadMembers(writeFile(t, "members.json", body))
		require.NoError(t, err, body)
		assert.Nil(t, m, body)
	}
}

func TestLoadMembers_Malformed(t *testing.T) {
	path := writeFile(t, "members.json", `{"M1": [unclosed`)
	_, err := LoadMembers(path)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrReferenceDataMissing)
}

func TestLoadCoverageRules_Defaults(t *testing.T) {
	path := writeFile(t, "coverage.yaml", `
plans:
  PREMIUM:
    covered_procedures: ["99213", "99214", "80050"]
    copay: 20
`)
	r, err := LoadCoverageRules(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultAutoApprovalThreshold, r.AutoApprovalThreshold)
	assert.Equal(t, DefaultAuthorizationRequired, r.AuthorizationRequired)
	assert.Equal(t, model.Money(100000), r.ThresholdAmount())

	p, ok := r.Plan("premium")
	require.True(t, ok)
	assert.True(t, p.Covers("99213"))
	assert.False(t, p.Covers("12001"))
	assert.Equal(t, model.Money(2000), p.CopayAmount())
	assert.True(t, r.RequiresAuthorization("80050"))
}

func TestLoadCoverageRules_MissingReturnsDefaults(t *testing.T) {
	r, err := LoadCoverageRules("")
	assert.ErrorIs(t, err, ErrReferenceDataMissing)
	assert.Nil(t, r.Plans)
	assert.Equal(t, DefaultAutoApprovalThreshold, r.AutoApprovalThreshold)
	assert.True(t, r.RequiresAuthorization("99291"))
}

func TestLoadFraudRules(t *testing.T) {
	path := writeFile(t, "fraud.json", `{
  "duplicate_window_days": 14,
  "high_risk_providers": ["PRV-666"],
  "suspicious_combinations": [["99285", "99291"]]
}`)
	r, err := LoadFraudRules(path)
	require.NoError(t, err)
	assert.Equal(t, 14, r.DuplicateWindowDays)
	assert.Equal(t, 3.0, r.AmountDeviationMultiple)
	assert.Equal(t, RiskThresholds{High: 0.9, Medium: 0.7, Low: 0.3}, r.RiskThresholds)
	assert.True(t, r.IsHighRiskProvider("PRV-666"))
	assert.Equal(t, [][]string{{"99285", "99291"}}, r.SuspiciousCombinations)
}

func TestLoadFraudRules_RejectsUnorderedThresholds(t *testing.T) {
	path := writeFile(t, "fraud.yaml", "risk_thresholds: {high: 0.5, medium: 0.7, low: 0.3}\n")
	_, err := LoadFraudRules(path)
	assert.ErrorContains(t, err, "high > medium > low")
}

func TestLoad_CollectsWarnings(t *testing.T) {
	members := writeFile(t, "members.json", `{"M1": {"status": "active", "plan": "BASIC"}}`)
	d, warnings, err := Load(Paths{Members: members})
	require.NoError(t, err)
	assert.Len(t, warnings, 2)
	for _, w := range warnings {
		assert.ErrorIs(t, w, ErrReferenceDataMissing)
	}
	assert.Len(t, d.Members, 1)
	assert.Equal(t, DefaultFraudRules(), d.Fraud)
}
