package normalize

import (
	"math"
	"strconv"
	"strings"

	"github.com/gyeh/claimsadj/internal/model"
)

// DollarsToCents converts a nullable float64 dollar amount to nullable int64 cents.
// Rounds to the nearest cent; out-of-range amounts saturate.
func DollarsToCents(v *float64) *int64 {
	if v == nil {
		return nil
	}
	c := int64(model.MoneyFromDollars(*v))
	return &c
}

var dollarStripper = strings.NewReplacer("$", "", ",", "", " ", "")

// ParseDollars parses "$1,234.50", "1234.5" and similar into dollars.
// Returns nil if nothing numeric remains.
func ParseDollars(s string) *float64 {
	s = dollarStripper.Replace(strings.TrimSpace(s))
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}
