package retrieve

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gyeh/claimsadj/internal/model"
	"github.com/gyeh/claimsadj/internal/refdata"
)

func claim() model.ClaimRecord {
	return model.ClaimRecord{
		ClaimID:        "C1",
		Patient:        model.Patient{MemberID: "M12345678"},
		DiagnosisCodes: []string{"J10.1"},
		ProcedureCodes: []string{"99213", "80050"},
	}
}

func TestRetrieve_RanksByNormalizedScore(t *testing.T) {
	corpus := NewCorpus(
		Document{Name: "a_lab.txt", Text: "Lab panel 80050 requires prior authorization."},
		Document{Name: "b_office.txt", Text: "Office visits (99213) for influenza j10.1 are covered. Panel 80050 as well."},
		Document{Name: "c_none.txt", Text: "Dental cleaning policy."},
		Document{Name: "d_lab2.txt", Text: "Another 80050 note."},
	)
	got := New(corpus, 5, zerolog.Nop()).Retrieve(claim())

	require.Len(t, got, 3)
	assert.Equal(t, "b_office.txt", got[0].Source)
	assert.InDelta(t, 0.75, got[0].Score, 1e-9)
	assert.Equal(t, "a_lab.txt", got[1].Source, "ties keep corpus order")
	assert.Equal(t, "d_lab2.txt", got[2].Source)
	assert.InDelta(t, 0.25, got[1].Score, 1e-9)
}

func TestRetrieve_TopKAndExcerptBound(t *testing.T) {
	long := strings.Repeat("é", 2000) + " 99213"
	corpus := NewCorpus(
		Document{Name: "1.txt", Text: long},
		Document{Name: "2.txt", Text: "99213"},
	)
	got := New(corpus, 1, zerolog.Nop()).Retrieve(claim())
	require.Len(t, got, 1)
	assert.Equal(t, "1.txt", got[0].Source)
	assert.Equal(t, ExcerptLen, len([]rune(got[0].Excerpt)))
}

func TestRetrieve_EmptyCorpusSentinel(t *testing.T) {
	got := New(NewCorpus(), 3, zerolog.Nop()).Retrieve(claim())
	assert.Equal(t, []model.PolicyExcerpt{NoPolicies}, got)

	got = New(nil, 3, zerolog.Nop()).Retrieve(claim())
	assert.Equal(t, []model.PolicyExcerpt{NoPolicies}, got)
}

func TestRetrieve_NoMatchIsEmpty(t *testing.T) {
	corpus := NewCorpus(Document{Name: "x.txt", Text: "nothing relevant"})
	got := New(corpus, 3, zerolog.Nop()).Retrieve(model.ClaimRecord{})
	assert.Empty(t, got)
	assert.NotNil(t, got)
}

func TestRetrieve_Idempotent(t *testing.T) {
	corpus := NewCorpus(Document{Name: "x.txt", Text: "99213 M12345678"})
	r := New(corpus, 3, zerolog.Nop())
	assert.Equal(t, r.Retrieve(claim()), r.Retrieve(claim()))
}

func TestLoadCorpus(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.txt"), []byte("second"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("first"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "skip.md"), []byte("ignored"), 0o644))

	c, err := LoadCorpus(dir)
	require.NoError(t, err)
	require.Equal(t, 2, c.Len())
	assert.Equal(t, "a.txt", c.docs[0].Name)

	c, err = LoadCorpus(filepath.Join(dir, "missing"))
	assert.ErrorIs(t, err, refdata.ErrReferenceDataMissing)
	assert.Equal(t, 0, c.Len())
}
