// Package retrieve ranks a small in-memory corpus of policy documents against
// a claim by keyword overlap.
package retrieve

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/gyeh/claimsadj/internal/model"
	"github.com/gyeh/claimsadj/internal/refdata"
)

const (
	// DefaultTopK is how many excerpts Retrieve returns when not configured.
	DefaultTopK = 3
	// ExcerptLen bounds each returned excerpt, in runes.
	ExcerptLen = 800
)

// NoPolicies is the single entry returned when the corpus is empty.
var NoPolicies = model.PolicyExcerpt{Source: "none", Score: 0, Excerpt: "No policies available"}

// Document is one policy file.
type Document struct {
	Name string
	Text string

	lower string
}

// Corpus is an ordered, read-only set of documents.
type Corpus struct {
	docs []Document
}

// NewCorpus builds a corpus preserving the given order.
func NewCorpus(docs ...Document) *Corpus {
	c := &Corpus{docs: make([]Document, len(docs))}
	for i, d := range docs {
		d.lower = strings.ToLower(d.Text)
		c.docs[i] = d
	}
	return c
}

// Len returns the number of documents.
func (c *Corpus) Len() int {
	if c == nil {
		return 0
	}
	return len(c.docs)
}

// LoadCorpus reads every *.txt file in dir, ordered by file name. A missing
// directory yields an empty corpus and an error wrapping
// refdata.ErrReferenceDataMissing.
func LoadCorpus(dir string) (*Corpus, error) {
	if dir == "" {
		return NewCorpus(), fmt.Errorf("%w: no policies directory configured", refdata.ErrReferenceDataMissing)
	}
	paths, err := filepath.Glob(filepath.Join(dir, "*.txt"))
	if err != nil {
		return nil, fmt.Errorf("list policies: %w", err)
	}
	if _, statErr := os.Stat(dir); errors.Is(statErr, os.ErrNotExist) {
		return NewCorpus(), fmt.Errorf("%w: policies directory %s not found", refdata.ErrReferenceDataMissing, dir)
	}
	sort.Strings(paths)

	docs := make([]Document, 0, len(paths))
	for _, p := range paths {
		b, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("read policy %s: %w", p, err)
		}
		docs = append(docs, Document{Name: filepath.Base(p), Text: strings.ToValidUTF8(string(b), "")})
	}
	return NewCorpus(docs...), nil
}

// Retriever scores the corpus against claims. Safe for concurrent use.
type Retriever struct {
	corpus *Corpus
	topK   int
	log    zerolog.Logger
}

// New creates a Retriever. topK <= 0 means DefaultTopK.
func New(corpus *Corpus, topK int, log zerolog.Logger) *Retriever {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &Retriever{corpus: corpus, topK: topK, log: log}
}

// Retrieve returns up to topK excerpts ordered by descending score, ties kept
// in corpus order. Documents matching no keyword are left out.
func (r *Retriever) Retrieve(rec model.ClaimRecord) []model.PolicyExcerpt {
	if r.corpus.Len() == 0 {
		return []model.PolicyExcerpt{NoPolicies}
	}

	keywords := Keywords(rec)
	out := make([]model.PolicyExcerpt, 0, r.topK)
	for _, d := range r.corpus.docs {
		found := 0
		for _, kw := range keywords {
			if strings.Contains(d.lower, kw) {
				found++
			}
		}
		if found == 0 {
			continue
		}
		out = append(out, model.PolicyExcerpt{
			Source:  d.Name,
			Score:   float64(found) / float64(max(1, len(keywords))),
			Excerpt: excerpt(d.Text, ExcerptLen),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if len(out) > r.topK {
		out = out[:r.topK]
	}

	r.log.Debug().
		Str("claim_id", rec.ClaimID).
		Int("keywords", len(keywords)).
		Int("matches", len(out)).
		Msg("policies retrieved")
	return out
}

// Keywords returns the lowercased, deduplicated diagnosis codes, procedure
// codes and member id of rec.
func Keywords(rec model.ClaimRecord) []string {
	var out []string
	seen := map[string]bool{}
	add := func(s string) {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" || seen[s] {
			return
		}
		seen[s] = true
		out = append(out, s)
	}
	for _, c := range rec.DiagnosisCodes {
		add(c)
	}
	for _, c := range rec.ProcedureCodes {
		add(c)
	}
	add(rec.Patient.MemberID)
	return out
}

func excerpt(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
