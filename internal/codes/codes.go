// Package codes describes ICD-10 diagnosis and CPT procedure codes for
// human-readable summaries.
package codes

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/gyeh/claimsadj/internal/model"
)

var icd10 = map[string]string{
	"J45.909":  "Unspecified asthma, uncomplicated",
	"J45.901":  "Unspecified asthma, with status asthmaticus",
	"J44.9":    "Chronic obstructive pulmonary disease, unspecified",
	"J06.9":    "Acute upper respiratory infection, unspecified",
	"J10.1":    "Influenza due to other identified influenza virus with other respiratory manifestations",
	"Z79.899":  "Other long term (current) drug therapy",
	"E11.9":    "Type 2 diabetes mellitus without complications",
	"E78.5":    "Hyperlipidemia, unspecified",
	"M54.5":    "Low back pain",
	"M25.561":  "Pain in right knee",
	"M25.562":  "Pain in left knee",
	"I10":      "Essential (primary) hypertension",
	"I25.10":   "Atherosclerotic heart disease of native coronary artery without angina pectoris",
	"F41.9":    "Anxiety disorder, unspecified",
	"F32.9":    "Major depressive disorder, single episode, unspecified",
	"Z00.00":   "Encounter for general adult medical examination without abnormal findings",
	"Z00.01":   "Encounter for general adult medical examination with abnormal findings",
	"Z23":      "Encounter for immunization",
	"R05":      "Cough",
	"R07.9":    "Chest pain, unspecified",
	"R51":      "Headache",
	"S06.0X0A": "Concussion without loss of consciousness, initial encounter",
	"S63.401A": "Sprain of unspecified site of right wrist, initial encounter",
}

var cpt = map[string]string{
	"99203": "Office or other outpatient visit for the evaluation and management of a new patient, low level of medical decision making",
	"99213": "Office or other outpatient visit for the evaluation and management of an established patient, straightforward medical decision making",
	"99214": "Office or other outpatient visit for the evaluation and management of an established patient, moderate level of medical decision making",
	"99215": "Office or other outpatient visit for the evaluation and management of an established patient, high level of medical decision making",
	"99285": "Emergency department visit, high medical decision making",
	"99291": "Critical care, evaluation and management, first 30-74 minutes",
	"94640": "Inhalation treatment for acute airway obstruction with administration of an aerosolized medication",
	"94010": "Spirometry, including graphic record, total and timed vital capacity, expiratory flow rate measurement",
	"94060": "Bronchodilation responsiveness, spirometry as in 94010, pre- and post-bronchodilator administration",
	"80050": "General health panel (includes comprehensive metabolic panel and complete blood count)",
	"85025": "Blood count; complete (CBC), automated and automated differential WBC count",
	"81000": "Urinalysis, by dip stick or tablet reagent; non-automated, with microscopy",
	"81001": "Urinalysis, by dip stick or tablet reagent; automated, with microscopy",
	"71045": "Radiologic examination, chest; single view",
	"71046": "Radiologic examination, chest; 2 views",
	"72040": "Radiologic examination, spine, cervical; 2 or 3 views",
	"96372": "Therapeutic, prophylactic, or diagnostic injection; subcutaneous or intramuscular",
	"96374": "Therapeutic, prophylactic, or diagnostic injection; intravenous push, single or initial substance/drug",
	"97110": "Therapeutic procedure, 1 or more areas, each 15 minutes; therapeutic exercises",
	"97140": "Manual therapy techniques, 1 or more regions, each 15 minutes",
	"12001": "Simple repair of superficial wounds; 2.5 cm or less",
	"12002": "Simple repair of superficial wounds; 2.6 cm to 7.5 cm",
	"99999": "Unlisted procedure or service",
	"00000": "Invalid procedure code",
}

// cptRange is an inclusive numeric range of CPT codes.
type cptRange struct {
	lo, hi int
	desc   string
}

// Evaluated in order; E&M sits inside the medicine range and must win.
var cptRanges = []cptRange{
	{99201, 99499, "Evaluation and Management service"},
	{100, 1999, "Anesthesia service"},
	{10021, 69990, "Surgical procedure"},
	{70010, 79999, "Radiology service"},
	{80047, 89398, "Pathology/Laboratory service"},
	{90281, 99607, "Medicine service"},
}

const (
	icdUnknown = "ICD-10 code description not available"
	cptUnknown = "CPT code description not available"
)

// Describe returns a description for a procedure (CPT) or diagnosis (ICD-10) code.
func Describe(code string, isProcedure bool) string {
	code = strings.TrimSpace(code)
	if code == "" {
		return "No code provided"
	}
	if isProcedure {
		return describeCPT(code)
	}
	switch {
	case unicode.IsLetter(rune(code[0])):
		return describeICD(code)
	case model.CPT.Valid(code):
		return describeCPT(code)
	}
	return fmt.Sprintf("Unknown code format: %s", code)
}

var icdKeys = func() []string {
	keys := make([]string, 0, len(icd10))
	for k := range icd10 {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}()

func describeICD(code string) string {
	code = strings.ToUpper(code)
	if d, ok := icd10[code]; ok {
		return d
	}
	base, _, _ := strings.Cut(code, ".")
	if d, ok := icd10[base]; ok {
		return d
	}
	for _, k := range icdKeys {
		if strings.HasPrefix(k, base) {
			return icd10[k] + " (category match)"
		}
	}
	return icdUnknown
}

func describeCPT(code string) string {
	if d, ok := cpt[code]; ok {
		return d
	}
	if model.CPT.Valid(code) {
		n, _ := strconv.Atoi(code)
		for _, r := range cptRanges {
			if n >= r.lo && n <= r.hi {
				return r.desc
			}
		}
	}
	return cptUnknown
}

// System returns the code system whose shape code has.
func System(code string) (model.CodeType, bool) {
	code = strings.ToUpper(strings.TrimSpace(code))
	for _, ct := range model.AllCodeTypes {
		if ct.Valid(code) {
			return ct, true
		}
	}
	return model.CodeType{}, false
}

// Category keywords, checked in order against the lowercased description.
// Imaging precedes E&M because radiology descriptions say "examination".
var categories = []struct {
	name     string
	keywords []string
}{
	{"Respiratory", []string{"asthma", "respiratory", "pulmonary", "influenza", "cough"}},
	{"Endocrine/Metabolic", []string{"diabetes", "hyperlipidemia"}},
	{"Cardiovascular", []string{"hypertension", "heart"}},
	{"Musculoskeletal", []string{"pain", "musculoskeletal", "sprain"}},
	{"Mental Health", []string{"depress", "anxiety"}},
	{"Pulmonary", []string{"inhalation", "spirometry"}},
	{"Medication Administration", []string{"injection"}},
	{"Imaging", []string{"radiolog", "x-ray"}},
	{"Laboratory", []string{"laboratory", "blood", "urinalysis", "panel"}},
	{"Evaluation & Management", []string{"examination", "visit", "evaluation and management", "critical care"}},
	{"Surgery", []string{"surgical", "repair"}},
}

// Category groups a code into a broad clinical area by its description.
func Category(code string, isProcedure bool) string {
	desc := strings.ToLower(Describe(code, isProcedure))
	for _, c := range categories {
		for _, kw := range c.keywords {
			if strings.Contains(desc, kw) {
				return c.name
			}
		}
	}
	return "General"
}
