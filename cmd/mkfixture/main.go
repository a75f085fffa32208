// mkfixture writes a historical-claims Parquet fixture for fraud scoring.
// With --in it selects a small representative subset of an existing history
// file (JSON, YAML or Parquet); otherwise it generates synthetic claims,
// planting duplicates, a high-volume member and amount outliers.
// Usage: go run ./cmd/mkfixture --out data/claims_history.parquet --rows 200 --seed 7
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand/v2"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/gyeh/claimsadj/internal/history"
	"github.com/gyeh/claimsadj/internal/model"
)

var (
	fixtureProcedures = [][]string{
		{"99213"}, {"99214"}, {"99215"}, {"99213", "85025"}, {"80050"},
		{"71046"}, {"93000"}, {"99214", "36415"}, {"97110"}, {"90471", "90686"},
	}
	fixtureProviders = []string{"PRV-1001", "PRV-1002", "PRV-1003", "PRV-2001", "PRV-9999"}
	fixtureStart     = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
)

func main() {
	in := flag.String("in", "", "input history file to sample (default: generate synthetic claims)")
	out := flag.String("out", "testdata/claims_history.parquet", "output parquet")
	maxRows := flag.Int("rows", 200, "max rows to output")
	members := flag.Int("members", 40, "synthetic members")
	seed := flag.Uint64("seed", 1, "random seed for synthetic claims")
	checkOnly := flag.Bool("check", false, "only print stats, don't write")
	flag.Parse()

	var claims []model.HistoricalClaim
	if *in != "" {
		all, err := history.SourceFor(*in).Load(context.Background())
		if err != nil {
			fmt.Fprintf(os.Stderr, "read input: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Scanned %d claims\n", len(all))
		claims = sample(all, *maxRows)
	} else {
		claims = synthesize(*members, *maxRows, rand.New(rand.NewPCG(*seed, *seed^0x9e3779b97f4a7c15)))
	}

	if *checkOnly {
		printStats(claims)
		return
	}

	outFile, err := os.Create(*out)
	if err != nil {
		fmt.Fprintf(os.Stderr, "create output: %v\n", err)
		os.Exit(1)
	}
	defer outFile.Close()

	if err := history.WriteParquet(outFile, claims); err != nil {
		fmt.Fprintf(os.Stderr, "write: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %d claims to %s\n", len(claims), *out)
	printStats(claims)
}

// sample keeps the rows that exercise fraud checks first: repeated procedure
// sets per member, then the largest amounts, then everything else in order.
func sample(all []model.HistoricalClaim, maxRows int) []model.HistoricalClaim {
	type bucket struct {
		name string
		rows []model.HistoricalClaim
		want int
	}
	buckets := []*bucket{
		{name: "repeat", want: maxRows / 3},
		{name: "high_amount", want: maxRows / 5},
		{name: "general", want: maxRows},
	}

	seen := make(map[string]int)
	for _, c := range all {
		seen[c.MemberID+"|"+strings.Join(c.ProcedureCodes, ",")]++
	}
	amounts := make([]int64, 0, len(all))
	for _, c := range all {
		amounts = append(amounts, c.AmountCents)
	}
	slices.Sort(amounts)
	var cutoff int64
	if len(amounts) > 0 {
		cutoff = amounts[len(amounts)*9/10]
	}

	for _, c := range all {
		switch {
		case seen[c.MemberID+"|"+strings.Join(c.ProcedureCodes, ",")] > 1 && len(buckets[0].rows) < buckets[0].want:
			buckets[0].rows = append(buckets[0].rows, c)
		case c.AmountCents >= cutoff && len(buckets[1].rows) < buckets[1].want:
			buckets[1].rows = append(buckets[1].rows, c)
		case len(buckets[2].rows) < buckets[2].want:
			buckets[2].rows = append(buckets[2].rows, c)
		}
	}

	var selected []model.HistoricalClaim
	for _, b := range buckets {
		for _, row := range b.rows {
			if len(selected) >= maxRows {
				return selected
			}
			selected = append(selected, row)
		}
	}
	return selected
}

func synthesize(members, rows int, r *rand.Rand) []model.HistoricalClaim {
	if members < 2 {
		members = 2
	}
	claims := make([]model.HistoricalClaim, 0, rows)
	add := func(member int, provider string, codes []string, cents int64, day int) {
		claims = append(claims, model.HistoricalClaim{
			ClaimID:        fmt.Sprintf("HIST-%05d", len(claims)+1),
			MemberID:       fmt.Sprintf("M%08d", 10000000+member),
			ProviderID:     provider,
			ProcedureCodes: slices.Clone(codes),
			AmountCents:    cents,
			ServiceDate:    fixtureStart.AddDate(0, 0, day).Format(model.ISODate),
		})
	}

	// Member 0: same procedures twice within a week.
	add(0, fixtureProviders[0], fixtureProcedures[0], 15000, 10)
	add(0, fixtureProviders[0], fixtureProcedures[0], 15000, 16)
	// Member 1: six claims inside thirty days.
	for i := range 6 {
		add(1, fixtureProviders[1], fixtureProcedures[i%len(fixtureProcedures)], 12000+int64(i)*500, 40+i*4)
	}

	for len(claims) < rows {
		m := 2 + r.IntN(members-2)
		cents := int64(5000 + r.IntN(45000))
		if r.IntN(20) == 0 {
			cents *= 8
		}
		add(m,
			fixtureProviders[r.IntN(len(fixtureProviders))],
			fixtureProcedures[r.IntN(len(fixtureProcedures))],
			cents,
			r.IntN(365))
	}
	return claims[:min(rows, len(claims))]
}

func printStats(claims []model.HistoricalClaim) {
	idx := history.NewIndex(claims)
	var total, maxCents int64
	for _, c := range claims {
		total += c.AmountCents
		maxCents = max(maxCents, c.AmountCents)
	}
	fmt.Printf("Claims:   %d\n", idx.Len())
	fmt.Printf("Members:  %d\n", idx.Members())
	if len(claims) > 0 {
		fmt.Printf("Average:  %s\n", model.Money(total/int64(len(claims))))
		fmt.Printf("Largest:  %s\n", model.Money(maxCents))
	}
}
