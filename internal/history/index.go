package history

import (
	"sort"
	"strings"

	"github.com/gyeh/claimsadj/internal/model"
)

// Index groups historical claims by member id, each group ordered by service
// date. It is read-only after NewIndex and safe for concurrent use.
type Index struct {
	byMember map[string][]model.HistoricalClaim
	total    int
}

// NewIndex builds an Index. Claims without a member id are dropped.
func NewIndex(claims []model.HistoricalClaim) *Index {
	ix := &Index{byMember: make(map[string][]model.HistoricalClaim)}
	for _, c := range claims {
		id := strings.TrimSpace(c.MemberID)
		if id == "" {
			continue
		}
		ix.byMember[id] = append(ix.byMember[id], c)
		ix.total++
	}
	for _, group := range ix.byMember {
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].ServiceDate < group[j].ServiceDate
		})
	}
	return ix
}

// Len returns the number of indexed claims.
func (ix *Index) Len() int {
	if ix == nil {
		return 0
	}
	return ix.total
}

// Members returns the number of distinct members.
func (ix *Index) Members() int {
	if ix == nil {
		return 0
	}
	return len(ix.byMember)
}

// ForMember returns the member's claims. The slice must not be modified.
func (ix *Index) ForMember(memberID string) []model.HistoricalClaim {
	if ix == nil {
		return nil
	}
	return ix.byMember[strings.TrimSpace(memberID)]
}
