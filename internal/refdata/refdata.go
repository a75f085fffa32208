// Package refdata loads the read-only reference tables the validator and fraud
// scorer consult: the member registry, plan coverage rules and fraud rules.
//
// Every loader returns usable permissive defaults when its file is absent,
// together with an error wrapping ErrReferenceDataMissing so callers can log it
// and carry on. A file that exists but cannot be parsed is a hard error.
package refdata

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrReferenceDataMissing marks a reference file that was not configured or not found.
var ErrReferenceDataMissing = errors.New("reference data missing")

// readYAML decodes path into v. JSON files are accepted as YAML.
func readYAML(path, what string, v any) error {
	if path == "" {
		return fmt.Errorf("%w: no %s file configured", ErrReferenceDataMissing, what)
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: %s file %s not found", ErrReferenceDataMissing, what, path)
	}
	if err != nil {
		return fmt.Errorf("read %s file: %w", what, err)
	}
	if err := yaml.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse %s file %s: %w", what, path, err)
	}
	return nil
}

// Paths names the reference files to load.
type Paths struct {
	Members       string
	CoverageRules string
	FraudRules    string
}

// Data bundles the loaded tables. It is immutable after Load returns.
type Data struct {
	Members  Members
	Coverage CoverageRules
	Fraud    FraudRules
}

// Load reads all three tables. Missing files are collected in warnings;
// the first hard error aborts.
func Load(p Paths) (*Data, []error, error) {
	var (
		d        Data
		warnings []error
		err      error
	)
	collect := func(e error) error {
		if e == nil {
			return nil
		}
		if errors.Is(e, ErrReferenceDataMissing) {
			warnings = append(warnings, e)
			return nil
		}
		return e
	}

	d.Members, err = LoadMembers(p.Members)
	if err = collect(err); err != nil {
		return nil, warnings, err
	}
	d.Coverage, err = LoadCoverageRules(p.CoverageRules)
	if err = collect(err); err != nil {
		return nil, warnings, err
	}
	d.Fraud, err = LoadFraudRules(p.FraudRules)
	if err = collect(err); err != nil {
		return nil, warnings, err
	}
	return &d, warnings, nil
}
