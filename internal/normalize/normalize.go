package normalize

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/gyeh/claimsadj/internal/model"
)

// Source-key aliases for each canonical field, compared after foldKey so that
// snake_case, camelCase and PascalCase spellings all match.
var (
	claimIDKeys     = []string{"claimid", "claimnumber", "claimno"}
	patientKeys     = []string{"patient", "member", "subscriber"}
	patientNameKeys = []string{"patientname", "membername", "name"}
	memberIDKeys    = []string{"memberid", "subscriberid", "patientid"}
	providerKeys    = []string{"provider", "renderingprovider", "billingprovider"}
	providerNameKey = []string{"providername", "physician", "doctor", "name"}
	providerIDKeys  = []string{"providerid", "npi", "id"}
	diagnosisKeys   = []string{"diagnosiscodes", "diagnoses", "diagnosis", "icdcodes", "icd10codes"}
	procedureKeys   = []string{"procedurecodes", "procedures", "procedure", "cptcodes"}
	amountKeys      = []string{"claimamount", "amount", "totalamount", "totalcharge", "billedamount"}
	serviceDateKeys = []string{"servicedate", "dateofservice", "dos"}
	planKeys        = []string{"plantype", "plan"}
	previewKeys     = []string{"rawtextpreview"}
)

func foldKey(k string) string {
	k = strings.ToLower(k)
	return strings.NewReplacer("_", "", "-", "", " ", "").Replace(k)
}

// folded indexes fields by folded key. The first spelling wins on collision.
func folded(fields model.RawFields) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		fk := foldKey(k)
		if _, ok := out[fk]; !ok {
			out[fk] = v
		}
	}
	return out
}

// HasClaimFields reports whether fields carry at least one recognizable claim field.
func HasClaimFields(fields model.RawFields) bool {
	f := folded(fields)
	for _, group := range [][]string{claimIDKeys, patientKeys, patientNameKeys[:2], memberIDKeys,
		providerKeys, []string{"providername", "providerid", "npi"}, diagnosisKeys, procedureKeys,
		amountKeys, serviceDateKeys} {
		for _, k := range group {
			if _, ok := f[k]; ok {
				return true
			}
		}
	}
	return false
}

// ToClaimRecord coalesces loosely keyed fields into the canonical claim schema.
// Missing fields become zero values; ClaimID is left empty when absent.
func ToClaimRecord(fields model.RawFields) model.ClaimRecord {
	f := folded(fields)

	rec := model.ClaimRecord{
		ClaimID:        firstString(f, claimIDKeys...),
		DiagnosisCodes: codeList(first(f, diagnosisKeys...), DiagnosisCode),
		ProcedureCodes: codeList(first(f, procedureKeys...), ProcedureCode),
		ServiceDate:    ISODate(firstString(f, serviceDateKeys...)),
		PlanType:       firstString(f, planKeys...),
		RawTextPreview: firstString(f, previewKeys...),
	}

	// Patient: nested object first, then flat keys.
	if p, ok := asFields(first(f, patientKeys...)); ok {
		pf := folded(p)
		rec.Patient.Name = firstString(pf, patientNameKeys...)
		rec.Patient.MemberID = firstString(pf, "memberid", "subscriberid", "id")
	} else if s, ok := first(f, "patient").(string); ok {
		rec.Patient.Name = CollapseSpace(s)
	}
	if rec.Patient.Name == "" {
		rec.Patient.Name = firstString(f, patientNameKeys[:2]...)
	}
	if rec.Patient.MemberID == "" {
		rec.Patient.MemberID = firstString(f, memberIDKeys...)
	}

	if p, ok := asFields(first(f, providerKeys...)); ok {
		pf := folded(p)
		rec.Provider.Name = firstString(pf, providerNameKey...)
		rec.Provider.ID = firstString(pf, providerIDKeys...)
	} else if s, ok := first(f, "provider").(string); ok {
		rec.Provider.Name = CollapseSpace(s)
	}
	if rec.Provider.Name == "" {
		rec.Provider.Name = firstString(f, providerNameKey[:3]...)
	}
	if rec.Provider.ID == "" {
		rec.Provider.ID = firstString(f, providerIDKeys[:2]...)
	}

	rec.ClaimAmount = amount(first(f, amountKeys...))
	if rec.PlanType == "" {
		rec.PlanType = model.DefaultPlanType
	}
	return rec
}

func first(f map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := f[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

func firstString(f map[string]any, keys ...string) string {
	for _, k := range keys {
		if s := scalarString(f[k]); s != "" {
			return s
		}
	}
	return ""
}

func asFields(v any) (model.RawFields, bool) {
	switch t := v.(type) {
	case model.RawFields:
		return t, true
	case map[string]any:
		return model.RawFields(t), true
	}
	return nil, false
}

// scalarString renders strings and numbers; structured values yield "".
func scalarString(v any) string {
	switch t := v.(type) {
	case string:
		return CollapseSpace(t)
	case json.Number:
		return t.String()
	case float64:
		return fmt.Sprintf("%v", t)
	case int:
		return fmt.Sprintf("%d", t)
	case int64:
		return fmt.Sprintf("%d", t)
	}
	return ""
}

// codeList flattens strings, lists and nested XML-style objects into codes.
// Comma or semicolon separated strings are split.
func codeList(v any, norm func(string) string) []string {
	var raw []string
	var walk func(any)
	walk = func(v any) {
		switch t := v.(type) {
		case string:
			for _, part := range strings.FieldsFunc(t, func(r rune) bool { return r == ',' || r == ';' }) {
				raw = append(raw, part)
			}
		case json.Number:
			raw = append(raw, t.String())
		case float64:
			raw = append(raw, fmt.Sprintf("%.0f", t))
		case []any:
			for _, e := range t {
				walk(e)
			}
		case []string:
			raw = append(raw, t...)
		case model.RawFields:
			walkFields(t, walk)
		case map[string]any:
			walkFields(t, walk)
		}
	}
	walk(v)

	out := make([]string, 0, len(raw))
	for _, c := range raw {
		out = append(out, norm(c))
	}
	return DedupCodes(out)
}

// walkFields visits a code object's "code" entry when present, otherwise all values.
func walkFields(m map[string]any, walk func(any)) {
	f := folded(m)
	if c, ok := f["code"]; ok {
		walk(c)
		return
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		walk(m[k])
	}
}

func amount(v any) model.Money {
	switch t := v.(type) {
	case json.Number:
		if d, err := t.Float64(); err == nil && d > 0 {
			return model.MoneyFromDollars(d)
		}
	case float64:
		if t > 0 {
			return model.MoneyFromDollars(t)
		}
	case int:
		if t > 0 {
			return model.MoneyFromDollars(float64(t))
		}
	case string:
		if d := ParseDollars(t); d != nil && *d > 0 {
			return model.Money(*DollarsToCents(d))
		}
	}
	return 0
}
