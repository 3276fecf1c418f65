package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dates(ts []time.Time) []string {
	out := make([]string, 0, len(ts))
	for _, t := range ts {
		out = append(out, t.Format("2006-01-02"))
	}
	return out
}

func TestPlanSchedule(t *testing.T) {
	plan := PaymentPlan{BillingDay: 20}
	from := time.Date(2025, 11, 10, 9, 0, 0, 0, time.UTC)

	got, err := plan.Schedule(from, 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"2025-11-20", "2025-12-20", "2026-01-20"}, dates(got))

	// a billing day already passed this month starts next month
	plan.BillingDay = 5
	got, err = plan.Schedule(from, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"2025-12-05"}, dates(got))

	got, err = plan.Schedule(from, 0)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSubscriptionDueAmount(t *testing.T) {
	s := Subscription{Amount: 100000}
	assert.Equal(t, int64(100000), s.DueAmount())

	s.PartialRemainingAmount = 60000
	assert.Equal(t, int64(60000), s.DueAmount())
}

func TestTransactionSignedAmount(t *testing.T) {
	assert.Equal(t, int64(250), Transaction{Kind: TransactionKindIncome, Amount: 250}.SignedAmount())
	assert.Equal(t, int64(-250), Transaction{Kind: TransactionKindExpense, Amount: 250}.SignedAmount())

	now := time.Now()
	assert.True(t, Transaction{ArchivedAt: &now}.IsArchived())
	assert.False(t, Transaction{}.IsArchived())
}
