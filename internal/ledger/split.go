package ledger

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Ratio is one named share of a money split
type Ratio struct {
	Bucket     string          `json:"bucket"`
	Percentage decimal.Decimal `json:"percentage"`
}

// Allocation is the amount a bucket receives from a split, in minor units
type Allocation struct {
	Bucket     string          `json:"bucket"`
	Percentage decimal.Decimal `json:"percentage"`
	Amount     int64           `json:"amount"`
}

// DefaultRatios is the process-wide bucket table used when nothing is configured
func DefaultRatios() []Ratio {
	return []Ratio{
		{Bucket: "partner_a", Percentage: decimal.NewFromInt(35)},
		{Bucket: "partner_b", Percentage: decimal.NewFromInt(35)},
		{Bucket: "operations", Percentage: decimal.NewFromInt(15)},
		{Bucket: "reserve", Percentage: decimal.NewFromInt(10)},
		{Bucket: "marketing", Percentage: decimal.NewFromInt(5)},
	}
}

// Splitter divides amounts across buckets. The zero value has no default ratios.
type Splitter struct {
	defaults []Ratio
}

// NewSplitter creates a splitter whose fallback table is ratios.
// Passing nil uses DefaultRatios.
func NewSplitter(ratios []Ratio) *Splitter {
	if ratios == nil {
		ratios = DefaultRatios()
	}
	defaults := make([]Ratio, len(ratios))
	copy(defaults, ratios)
	return &Splitter{defaults: defaults}
}

// Defaults returns a copy of the fallback table
func (s *Splitter) Defaults() []Ratio {
	out := make([]Ratio, len(s.defaults))
	copy(out, s.defaults)
	return out
}

// maxMinor bounds every allocation so it still fits an int64
var maxMinor = decimal.NewFromInt(math.MaxInt64)

// Split allocates total across ratios, falling back to the configured table
// when ratios is empty. Every bucket but the last gets floor(|total|*pct/100)
// carrying the sign of total; the last bucket takes the remainder, so the
// allocations always sum to total. A zero total yields no allocations.
// Negative percentages and amounts that would not fit in int64 are rejected.
func (s *Splitter) Split(total int64, ratios []Ratio) ([]Allocation, error) {
	if len(ratios) == 0 {
		ratios = s.defaults
	}
	if total == 0 || len(ratios) == 0 {
		return nil, nil
	}
	if total == math.MinInt64 {
		return nil, Validation("amount %d is out of range", total)
	}
	for _, r := range ratios {
		if r.Percentage.IsNegative() {
			return nil, Validation("bucket %q has a negative percentage", r.Bucket)
		}
	}

	sign := decimal.NewFromInt(1)
	if total < 0 {
		sign = decimal.NewFromInt(-1)
	}
	totalDec := decimal.NewFromInt(total)
	absDec := totalDec.Abs()

	out := make([]Allocation, 0, len(ratios))
	assigned := decimal.Zero
	for i, r := range ratios {
		var amount decimal.Decimal
		if i == len(ratios)-1 {
			amount = totalDec.Sub(assigned)
		} else {
			amount = absDec.Mul(r.Percentage).Shift(-2).Floor().Mul(sign)
			assigned = assigned.Add(amount)
		}
		if amount.Abs().GreaterThan(maxMinor) {
			return nil, Validation("allocation for bucket %q overflows: %s", r.Bucket, amount.String())
		}
		out = append(out, Allocation{Bucket: r.Bucket, Percentage: r.Percentage, Amount: amount.IntPart()})
	}
	return out, nil
}

// SplitMajor splits a major-unit amount (e.g. 1500.25) by first rounding it
// to the nearest minor unit
func (s *Splitter) SplitMajor(total decimal.Decimal, ratios []Ratio) ([]Allocation, error) {
	minor, err := MajorToMinor(total)
	if err != nil {
		return nil, err
	}
	return s.Split(minor, ratios)
}

// ParseRatios parses "bucket:pct,bucket:pct" as used in configuration
func ParseRatios(raw string) ([]Ratio, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	var ratios []Ratio
	for _, part := range strings.Split(raw, ",") {
		bucket, pct, ok := strings.Cut(strings.TrimSpace(part), ":")
		bucket = strings.TrimSpace(bucket)
		if !ok || bucket == "" {
			return nil, Validation("invalid ratio %q, want bucket:percentage", part)
		}
		d, err := decimal.NewFromString(strings.TrimSpace(pct))
		if err != nil {
			return nil, fmt.Errorf("ratio %q: %w", part, err)
		}
		if d.IsNegative() {
			return nil, Validation("ratio %q has a negative percentage", part)
		}
		ratios = append(ratios, Ratio{Bucket: bucket, Percentage: d})
	}
	return ratios, nil
}
