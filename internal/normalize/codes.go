package normalize

import (
	"regexp"
	"strings"
)

var nonAlphanumeric = regexp.MustCompile(`[^A-Za-z0-9]`)

var nonDiagnosis = regexp.MustCompile(`[^A-Z0-9.]`)

// NormalizeCode trims whitespace, uppercases, and strips non-alphanumeric characters.
// Returns nil if the input is nil or the result is empty.
func NormalizeCode(v *string) *string {
	if v == nil {
		return nil
	}
	s := strings.TrimSpace(*v)
	if s == "" {
		return nil
	}
	s = strings.ToUpper(s)
	s = nonAlphanumeric.ReplaceAllString(s, "")
	if s == "" {
		return nil
	}
	return &s
}

// DiagnosisCode uppercases an ICD-10 code and drops everything but letters,
// digits and the decimal point, so "j10.1 " becomes "J10.1".
func DiagnosisCode(s string) string {
	return nonDiagnosis.ReplaceAllString(strings.ToUpper(strings.TrimSpace(s)), "")
}

// ProcedureCode normalizes a CPT code the same way NormalizeCode does.
func ProcedureCode(s string) string {
	if p := NormalizeCode(&s); p != nil {
		return *p
	}
	return ""
}

// DedupCodes drops empty and repeated codes, keeping first-seen order.
func DedupCodes(codes []string) []string {
	seen := make(map[string]struct{}, len(codes))
	out := make([]string, 0, len(codes))
	for _, c := range codes {
		if c == "" {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}
