package model

import "regexp"

// CodeType describes one of the code systems a claim carries.
type CodeType struct {
	Name    string         // e.g. "CPT"
	Field   string         // ClaimRecord JSON field, e.g. "procedure_codes"
	Pattern *regexp.Regexp // anchored shape of a valid code
}

var (
	ICD10 = CodeType{Name: "ICD-10", Field: "diagnosis_codes", Pattern: regexp.MustCompile(`^[A-Z]\d{2,3}(\.\d+)?$`)}
	CPT   = CodeType{Name: "CPT", Field: "procedure_codes", Pattern: regexp.MustCompile(`^\d{5}$`)}
)

// AllCodeTypes lists the supported code systems in canonical order.
var AllCodeTypes = []CodeType{ICD10, CPT}

// Valid reports whether code has this type's shape.
func (ct CodeType) Valid(code string) bool {
	return ct.Pattern.MatchString(code)
}
