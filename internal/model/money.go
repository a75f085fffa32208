package model

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Money is a non-negative amount held as integer cents. It marshals to JSON as a
// dollar number with two decimals so extracted claims read like the source document.
type Money int64

// MaxMoney is the largest representable amount.
const MaxMoney = Money(math.MaxInt64)

// MoneyFromDollars rounds a dollar amount to cents. Amounts beyond the int64
// range saturate instead of wrapping; NaN becomes zero.
func MoneyFromDollars(d float64) Money {
	c := math.Round(d * 100)
	switch {
	case math.IsNaN(c):
		return 0
	case c >= math.MaxInt64:
		return MaxMoney
	case c <= math.MinInt64:
		return -MaxMoney
	}
	return Money(c)
}

// Dollars returns the amount as float dollars.
func (m Money) Dollars() float64 {
	return float64(m) / 100
}

// String renders the amount as "$1,234.50".
func (m Money) String() string {
	neg := m < 0
	c := int64(m)
	if neg {
		c = -c
	}
	whole := strconv.FormatInt(c/100, 10)
	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	s := fmt.Sprintf("$%s.%02d", b.String(), c%100)
	if neg {
		return "-" + s
	}
	return s
}

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatFloat(m.Dollars(), 'f', 2, 64)), nil
}

// UnmarshalJSON accepts a JSON number or a string such as "$1,234.50".
func (m *Money) UnmarshalJSON(data []byte) error {
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		f, err := n.Float64()
		if err != nil {
			return fmt.Errorf("parse amount %s: %w", data, err)
		}
		*m = MoneyFromDollars(f)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("amount must be a number or string: %w", err)
	}
	s = strings.NewReplacer("$", "", ",", "", " ", "").Replace(s)
	if s == "" {
		*m = 0
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("parse amount %q: %w", s, err)
	}
	*m = MoneyFromDollars(f)
	return nil
}
