package ledger

import "github.com/shopspring/decimal"

// minorExponent is the number of minor-unit digits in a major unit
const minorExponent = 2

// ToMinor converts a major-unit amount to minor units, rounding half away from zero
func ToMinor(major decimal.Decimal) int64 {
	return major.Shift(minorExponent).Round(0).IntPart()
}

// MajorToMinor is ToMinor for untrusted input: amounts outside the int64
// minor-unit range are a validation error instead of wrapping
func MajorToMinor(major decimal.Decimal) (int64, error) {
	minor := major.Shift(minorExponent).Round(0)
	if minor.Abs().GreaterThan(maxMinor) {
		return 0, Validation("amount %s is out of range", major.String())
	}
	return minor.IntPart(), nil
}

// ToMajor converts minor units to a major-unit decimal for display
func ToMajor(minor int64) decimal.Decimal {
	return decimal.New(minor, -minorExponent)
}

// Display formats minor units as a fixed two-decimal string
func Display(minor int64) string {
	return ToMajor(minor).StringFixed(minorExponent)
}
