// Package extract turns a claim document of JSON, XML, PDF or plain-text
// layout into a canonical model.ClaimRecord.
package extract

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/gyeh/claimsadj/internal/advisory"
	"github.com/gyeh/claimsadj/internal/model"
	"github.com/gyeh/claimsadj/internal/normalize"
)

const (
	previewLen       = 500
	advisoryTextLen  = 7000
	claimIDTimestamp = "20060102150405"
)

// Extractor normalizes raw claim bytes into a ClaimRecord.
type Extractor struct {
	parsers         map[Format]Parser
	advisor         advisory.Advisor
	advisoryTimeout time.Duration
	now             func() time.Time
	log             zerolog.Logger
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithAdvisor lets the extractor ask a language model to fill fields the text
// heuristics could not find.
func WithAdvisor(a advisory.Advisor, timeout time.Duration) Option {
	return func(e *Extractor) {
		e.advisor = a
		e.advisoryTimeout = timeout
	}
}

// WithTextExtractor replaces the PDF text extractor.
func WithTextExtractor(te TextExtractor) Option {
	return func(e *Extractor) {
		e.parsers[FormatPDF] = PDFParser{Text: te}
	}
}

// WithClock overrides the clock used for synthetic claim ids.
func WithClock(now func() time.Time) Option {
	return func(e *Extractor) { e.now = now }
}

// New creates an Extractor with one parser per supported format.
func New(log zerolog.Logger, opts ...Option) *Extractor {
	e := &Extractor{
		parsers: map[Format]Parser{
			FormatJSON: JSONParser{},
			FormatXML:  XMLParser{},
			FormatPDF:  PDFParser{},
			FormatText: TextParser{},
		},
		now: time.Now,
		log: log,
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Extract decodes b according to contentType and builds a ClaimRecord. Only an
// unsupported content type or an undecodable document is an error; missing
// fields degrade to zero values.
func (e *Extractor) Extract(ctx context.Context, b []byte, contentType string) (model.ClaimRecord, error) {
	start := time.Now()

	format, err := ParseFormat(contentType)
	if err != nil {
		return model.ClaimRecord{}, err
	}
	parsed, err := e.parsers[format].Parse(ctx, b)
	if err != nil {
		return model.ClaimRecord{}, fmt.Errorf("parse %s: %w", format, err)
	}

	var rec model.ClaimRecord
	if parsed.Fields != nil && normalize.HasClaimFields(parsed.Fields) {
		rec = normalize.ToClaimRecord(parsed.Fields)
		rec.ExtractionMethod = model.MethodStructured
	} else {
		rec = normalize.ToClaimRecord(DiscoverFields(parsed.Text))
		rec.ExtractionMethod = model.MethodHeuristic
		if e.advisor != nil && (rec.Patient.Name == "" || rec.ClaimAmount == 0) {
			if e.fillFromAdvisor(ctx, &rec, parsed.Text) {
				rec.ExtractionMethod = model.MethodHybrid
			}
		}
	}

	if rec.RawTextPreview == "" {
		rec.RawTextPreview = preview(parsed.Text, previewLen)
	}
	if rec.ClaimID == "" {
		rec.ClaimID = e.syntheticID(&rec)
	}

	e.log.Info().
		Str("format", format.String()).
		Str("claim_id", rec.ClaimID).
		Str("method", rec.ExtractionMethod).
		Int("diagnosis_codes", len(rec.DiagnosisCodes)).
		Int("procedure_codes", len(rec.ProcedureCodes)).
		Dur("duration", time.Since(start)).
		Msg("extraction complete")

	return rec, nil
}

// syntheticID builds AUTO-<timestamp>-<6 hex> from patient name, member id and
// service date, or AUTO-<timestamp> when all three are empty.
func (e *Extractor) syntheticID(rec *model.ClaimRecord) string {
	ts := e.now().UTC().Format(claimIDTimestamp)
	if rec.Patient.Name == "" && rec.Patient.MemberID == "" && rec.ServiceDate == "" {
		return "AUTO-" + ts
	}
	return fmt.Sprintf("AUTO-%s-%s", ts,
		normalize.ContentDigest(6, rec.Patient.Name, rec.Patient.MemberID, rec.ServiceDate))
}

// fillFromAdvisor asks the advisory model for claim fields and copies only those
// still empty on rec. It reports whether anything was filled.
func (e *Extractor) fillFromAdvisor(ctx context.Context, rec *model.ClaimRecord, text string) bool {
	msgs := []advisory.Message{
		{Role: "system", Content: "You are an expert medical claims extractor. Return ONLY valid JSON."},
		{Role: "user", Content: "Extract as JSON: patient_name, member_id, claim_amount (number), service_date, " +
			"diagnosis_codes (list), procedure_codes (list), provider_name.\n\nText:\n" + preview(text, advisoryTextLen)},
	}
	reply, err := advisory.Consult(ctx, e.advisor, e.advisoryTimeout, msgs)
	if err != nil {
		e.log.Warn().Err(err).Msg("advisory extraction skipped")
		return false
	}
	var fields model.RawFields
	if err := advisory.DecodeJSON(reply, &fields); err != nil {
		e.log.Warn().Err(err).Msg("advisory extraction reply unusable")
		return false
	}
	return mergeMissing(rec, normalize.ToClaimRecord(fields))
}

func mergeMissing(dst *model.ClaimRecord, src model.ClaimRecord) bool {
	filled := false
	set := func(d *string, s string) {
		if *d == "" && s != "" {
			*d = s
			filled = true
		}
	}
	set(&dst.ClaimID, src.ClaimID)
	set(&dst.Patient.Name, src.Patient.Name)
	set(&dst.Patient.MemberID, src.Patient.MemberID)
	set(&dst.Provider.Name, src.Provider.Name)
	set(&dst.Provider.ID, src.Provider.ID)
	set(&dst.ServiceDate, src.ServiceDate)
	if dst.ClaimAmount == 0 && src.ClaimAmount > 0 {
		dst.ClaimAmount = src.ClaimAmount
		filled = true
	}
	if len(dst.DiagnosisCodes) == 0 && len(src.DiagnosisCodes) > 0 {
		dst.DiagnosisCodes = src.DiagnosisCodes
		filled = true
	}
	if len(dst.ProcedureCodes) == 0 && len(src.ProcedureCodes) > 0 {
		dst.ProcedureCodes = src.ProcedureCodes
		filled = true
	}
	return filled
}

// preview truncates s to at most n runes.
func preview(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n])
}
