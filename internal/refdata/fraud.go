package refdata

import (
	"fmt"
	"slices"
)

// RiskThresholds are the lower bounds of each risk level.
type RiskThresholds struct {
	High   float64 `yaml:"high"`
	Medium float64 `yaml:"medium"`
	Low    float64 `yaml:"low"`
}

// FraudRules parameterizes the fraud scorer.
type FraudRules struct {
	RiskThresholds          RiskThresholds `yaml:"risk_thresholds"`
	DuplicateWindowDays     int            `yaml:"duplicate_window_days"`
	AmountDeviationMultiple float64        `yaml:"amount_deviation_multiple"`
	MaxProcedures           int            `yaml:"max_procedures"`
	VolumeWindowDays        int            `yaml:"volume_window_days"`
	VolumeMaxClaims         int            `yaml:"volume_max_claims"`
	HighRiskProviders       []string       `yaml:"high_risk_providers"`
	SuspiciousCombinations  [][]string     `yaml:"suspicious_combinations"`
}

// DefaultFraudRules returns the built-in rule parameters.
func DefaultFraudRules() FraudRules {
	return FraudRules{
		RiskThresholds:          RiskThresholds{High: 0.9, Medium: 0.7, Low: 0.3},
		DuplicateWindowDays:     30,
		AmountDeviationMultiple: 3.0,
		MaxProcedures:           10,
		VolumeWindowDays:        30,
		VolumeMaxClaims:         5,
	}
}

// IsHighRiskProvider reports whether id is on the denylist.
func (r FraudRules) IsHighRiskProvider(id string) bool {
	return slices.Contains(r.HighRiskProviders, id)
}

// Validate checks that thresholds are ordered high > medium > low > 0.
func (r FraudRules) Validate() error {
	t := r.RiskThresholds
	if !(t.High > t.Medium && t.Medium > t.Low && t.Low > 0) {
		return fmt.Errorf("risk thresholds must satisfy high > medium > low > 0, got %.2f/%.2f/%.2f",
			t.High, t.Medium, t.Low)
	}
	if t.High > 1 {
		return fmt.Errorf("high risk threshold %.2f exceeds 1.0", t.High)
	}
	return nil
}

// WithDefaults returns r with every zero or non-positive parameter replaced
// by its DefaultFraudRules value.
func (r FraudRules) WithDefaults() FraudRules {
	r.applyDefaults()
	return r
}

func (r *FraudRules) applyDefaults() {
	d := DefaultFraudRules()
	if r.RiskThresholds == (RiskThresholds{}) {
		r.RiskThresholds = d.RiskThresholds
	}
	if r.DuplicateWindowDays <= 0 {
		r.DuplicateWindowDays = d.DuplicateWindowDays
	}
	if r.AmountDeviationMultiple <= 0 {
		r.AmountDeviationMultiple = d.AmountDeviationMultiple
	}
	if r.MaxProcedures <= 0 {
		r.MaxProcedures = d.MaxProcedures
	}
	if r.VolumeWindowDays <= 0 {
		r.VolumeWindowDays = d.VolumeWindowDays
	}
	if r.VolumeMaxClaims <= 0 {
		r.VolumeMaxClaims = d.VolumeMaxClaims
	}
}

// LoadFraudRules reads fraud rule parameters. Omitted values take defaults.
func LoadFraudRules(path string) (FraudRules, error) {
	var r FraudRules
	if err := readYAML(path, "fraud rules", &r); err != nil {
		return DefaultFraudRules(), err
	}
	r.applyDefaults()
	if err := r.Validate(); err != nil {
		return FraudRules{}, fmt.Errorf("fraud rules %s: %w", path, err)
	}
	return r, nil
}
