package extract

import (
	"regexp"
	"strings"

	"github.com/gyeh/claimsadj/internal/model"
	"github.com/gyeh/claimsadj/internal/normalize"
)

// labelWindow is how far past a label the value may extend.
const labelWindow = 120

// Label keywords searched case-insensitively, in priority order.
var fieldLabels = []struct {
	field    string
	keywords []string
}{
	{"claim_id", []string{"claim id", "claim #", "claimid", "claim no", "claim number"}},
	{"patient_name", []string{"patient name", "patient:", "name:"}},
	{"member_id", []string{"member id", "member #", "memberid", "subscriber id"}},
	{"service_date", []string{"service date", "date of service", "dos:"}},
	{"provider_name", []string{"provider name", "provider", "physician", "doctor"}},
	{"provider_id", []string{"provider id", "npi"}},
	{"plan_type", []string{"plan type", "plan:"}},
}

var (
	valueStop     = regexp.MustCompile(`\n|\||\$|\s{2,}`)
	dollarAmount  = regexp.MustCompile(`\$\s?[\d,]+(?:\.\d+)?`)
	diagnosisCode = regexp.MustCompile(`\b[A-Z]\d{2,3}(?:\.\d+)?\b`)
	procedureCode = regexp.MustCompile(`\b\d{5}\b`)
	labelPunct    = regexp.MustCompile(`^[ \t:#.\-]+`)
)

// DiscoverFields runs rule-based field discovery over free text. The result
// uses canonical snake_case keys and feeds normalize.ToClaimRecord.
func DiscoverFields(text string) model.RawFields {
	fields := model.RawFields{}
	lower := asciiLower(text)

	for _, fl := range fieldLabels {
		if v := findLabeled(text, lower, fl.keywords); v != "" {
			fields[fl.field] = v
		}
	}

	if amt, ok := maxDollarAmount(text); ok {
		fields["claim_amount"] = amt
	}
	if codes := diagnosisCode.FindAllString(text, -1); len(codes) > 0 {
		fields["diagnosis_codes"] = toAny(normalize.DedupCodes(codes))
	}
	if codes := findProcedureCodes(text); len(codes) > 0 {
		fields["procedure_codes"] = toAny(normalize.DedupCodes(codes))
	}
	return fields
}

// findLabeled returns the value after the first keyword that appears, cut at the
// first newline, pipe, dollar sign or run of two or more spaces. lower must be
// asciiLower(text) so byte offsets line up.
func findLabeled(text, lower string, keywords []string) string {
	for _, kw := range keywords {
		i := strings.Index(lower, kw)
		if i < 0 {
			continue
		}
		start := i + len(kw)
		end := start + labelWindow
		if end > len(text) {
			end = len(text)
		}
		snippet := labelPunct.ReplaceAllString(text[start:end], "")
		if loc := valueStop.FindStringIndex(snippet); loc != nil {
			snippet = snippet[:loc[0]]
		}
		return strings.TrimSpace(snippet)
	}
	return ""
}

// asciiLower lowercases A-Z only, preserving byte length.
func asciiLower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if 'A' <= c && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

// findProcedureCodes returns five-digit tokens that are not part of a dollar
// figure such as "$15000.00" or "12,50000".
func findProcedureCodes(text string) []string {
	var out []string
	for _, loc := range procedureCode.FindAllStringIndex(text, -1) {
		if loc[0] > 0 {
			switch text[loc[0]-1] {
			case '$', ',', '.':
				continue
			}
		}
		if loc[1] < len(text) && (text[loc[1]] == '.' || text[loc[1]] == ',') &&
			loc[1]+1 < len(text) && '0' <= text[loc[1]+1] && text[loc[1]+1] <= '9' {
			continue
		}
		out = append(out, text[loc[0]:loc[1]])
	}
	return out
}

// maxDollarAmount keeps the largest $-prefixed figure; claim totals dominate line items.
func maxDollarAmount(text string) (float64, bool) {
	var (
		best  float64
		found bool
	)
	for _, m := range dollarAmount.FindAllString(text, -1) {
		d := normalize.ParseDollars(m)
		if d == nil {
			continue
		}
		if !found || *d > best {
			best, found = *d, true
		}
	}
	return best, found
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
