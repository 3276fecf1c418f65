package ledger

import "time"

// MonthKeyLayout is the layout of a billing period key, e.g. "2025-06"
const MonthKeyLayout = "2006-01"

// ParseMonthKey validates a YYYY-MM key and returns its year and month
func ParseMonthKey(key string) (int, time.Month, error) {
	t, err := time.Parse(MonthKeyLayout, key)
	if err != nil || t.Format(MonthKeyLayout) != key {
		return 0, 0, Validation("invalid month %q, want YYYY-MM", key)
	}
	return t.Year(), t.Month(), nil
}

// MonthKey returns the billing period key of t in loc
func MonthKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(MonthKeyLayout)
}

// DaysIn returns the number of days in the given month
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// DueDate returns the due time of a billing day within a month, clamping the
// day to the month's last day
func DueDate(monthKey string, billingDay, hour int, loc *time.Location) (time.Time, error) {
	year, month, err := ParseMonthKey(monthKey)
	if err != nil {
		return time.Time{}, err
	}
	if billingDay < 1 {
		return time.Time{}, Validation("billing day %d out of range", billingDay)
	}
	if last := DaysIn(year, month); billingDay > last {
		billingDay = last
	}
	return time.Date(year, month, billingDay, hour, 0, 0, 0, loc), nil
}

// AddMonth moves t forward by exactly one calendar month, keeping the time of
// day and clamping the day to the end of the target month (Jan 31 -> Feb 28)
func AddMonth(t time.Time) time.Time {
	year, month, day := t.Date()
	target := month + 1
	if last := DaysIn(year, target); day > last {
		day = last
	}
	return time.Date(year, target, day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

// CalendarUTC keeps t's wall-clock date and time but pins them to UTC.
// Scheduled dates are stored this way so reading them back through any
// zone yields the same calendar day for AddMonth.
func CalendarUTC(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}

// ValidateBillingDay enforces the 1-28 range accepted at plan creation
func ValidateBillingDay(day int) error {
	if day < 1 || day > 28 {
		return Validation("billing day must be between 1 and 28, got %d", day)
	}
	return nil
}
