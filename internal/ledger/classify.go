package ledger

import "time"

// DueSignal is the urgency of an obligation relative to now
type DueSignal string

const (
	SignalPaid          DueSignal = "paid"
	SignalOverdue       DueSignal = "overdue"
	SignalPaymentWindow DueSignal = "paymentWindow"
	SignalUpcoming      DueSignal = "upcoming"
	SignalNormal        DueSignal = "normal"
)

// StatusPaid is the obligation status that short-circuits classification
const StatusPaid = "paid"

// Classify maps a due time to a signal using whole-day distance in loc.
// Both instants are reduced to their civil date first, so the result is
// stable for the whole calendar day.
func Classify(due, now time.Time, status string, loc *time.Location) DueSignal {
	if status == StatusPaid {
		return SignalPaid
	}

	d := DayDiff(due, now, loc)
	switch {
	case d < -1:
		return SignalOverdue
	case d <= 1:
		return SignalPaymentWindow
	case d <= 3:
		return SignalUpcoming
	default:
		return SignalNormal
	}
}

// DayDiff returns days(a) - days(b) between the civil dates of a and b in loc
func DayDiff(a, b time.Time, loc *time.Location) int {
	if loc == nil {
		loc = time.UTC
	}
	return int(civilDate(a, loc).Sub(civilDate(b, loc)).Hours() / 24)
}

// civilDate returns midnight UTC of t's calendar date in loc; UTC has no DST
// so subtracting two of these is always a whole number of days
func civilDate(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
