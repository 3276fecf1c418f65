package services

import (
	"context"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledger_app_echo/internal/ledger"
	"ledger_app_echo/internal/models"
)

var defaultBuckets = []string{"partner_a", "partner_b", "operations", "reserve", "marketing"}

func newLedger(t *testing.T, clock *fixedClock, owners map[string]uint) *LedgerService {
	t.Helper()
	return NewLedgerService(newTestDB(t), nil, owners, testConfig(clock))
}

func TestPostTransactionUpdatesBalances(t *testing.T) {
	ctx := context.Background()
	clock := newClock(time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC))
	ls := newLedger(t, clock, map[string]uint{"partner_a": 7})

	txn, err := ls.PostTransaction(ctx, PostInput{Kind: models.TransactionKindIncome, Amount: 10000})
	require.NoError(t, err)
	assert.NotEmpty(t, txn.Reference)
	assert.True(t, txn.OccurredAt.Equal(clock.Now()))
	require.Len(t, txn.Splits, 5)
	assert.Equal(t, uint(7), txn.Splits[0].OwnerUserID)
	assert.Equal(t, "35", txn.Splits[0].Percentage)

	balances, err := ls.ListBalances(ctx)
	require.NoError(t, err)
	got := map[string]int64{}
	for _, b := range balances {
		got[b.Bucket] = b.Amount
	}
	assert.Equal(t, map[string]int64{
		"partner_a":  3500,
		"partner_b":  3500,
		"operations": 1500,
		"reserve":    1000,
		"marketing":  500,
	}, got)

	// a second posting accumulates on the same rows
	_, err = ls.PostTransaction(ctx, PostInput{Kind: models.TransactionKindExpense, Amount: 1001})
	require.NoError(t, err)
	balances, err = ls.ListBalances(ctx)
	require.NoError(t, err)
	assert.Len(t, balances, 5)

	var total int64
	for _, b := range balances {
		total += b.Amount
	}
	assert.Equal(t, int64(10000-1001), total)
}

func TestPostTransactionCustomRatios(t *testing.T) {
	ctx := context.Background()
	clock := newClock(time.Now())
	ls := newLedger(t, clock, nil)

	ratios, err := ledger.ParseRatios("ops:33.33,tax:66.67")
	require.NoError(t, err)
	txn, err := ls.PostTransaction(ctx, PostInput{Kind: models.TransactionKindIncome, Amount: 100, Ratios: ratios})
	require.NoError(t, err)
	require.Len(t, txn.Splits, 2)
	assert.Equal(t, int64(33), txn.Splits[0].Amount)
	assert.Equal(t, int64(67), txn.Splits[1].Amount)
}

func TestPostTransactionValidation(t *testing.T) {
	ctx := context.Background()
	ls := newLedger(t, newClock(time.Now()), nil)

	_, err := ls.PostTransaction(ctx, PostInput{Kind: models.TransactionKindIncome, Amount: 0})
	requireCode(t, err, ledger.CodeValidation)

	_, err = ls.PostTransaction(ctx, PostInput{Kind: "refund", Amount: 100})
	requireCode(t, err, ledger.CodeValidation)

	// a split that cannot be represented rolls back the whole posting
	_, err = ls.PostTransaction(ctx, PostInput{
		Kind:   models.TransactionKindIncome,
		Amount: math.MaxInt64 / 2,
		Ratios: []ledger.Ratio{
			{Bucket: "a", Percentage: decimal.NewFromInt(1000)},
			{Bucket: "b", Percentage: decimal.Zero},
		},
	})
	requireCode(t, err, ledger.CodeValidation)

	txns, err := ls.ListTransactions(ctx, TransactionFilter{})
	require.NoError(t, err)
	assert.Empty(t, txns)
}

func TestArchiveTransactionRestoresBalances(t *testing.T) {
	ctx := context.Background()
	clock := newClock(time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC))
	ls := newLedger(t, clock, nil)

	txn, err := ls.PostTransaction(ctx, PostInput{Kind: models.TransactionKindIncome, Amount: 10000})
	require.NoError(t, err)

	clock.Set(clock.Now().Add(time.Hour))
	res, err := ls.ArchiveTransaction(ctx, txn.ID, "alice")
	require.NoError(t, err)
	assert.Equal(t, 5, res.Reversed)
	assert.Empty(t, res.SkippedBuckets)
	assert.True(t, res.ArchivedAt.Equal(clock.Now()))

	for _, bucket := range defaultBuckets {
		assert.Zero(t, balanceOf(t, ls.db, bucket), bucket)
	}

	var stored models.Transaction
	require.NoError(t, ls.db.First(&stored, txn.ID).Error)
	assert.True(t, stored.IsArchived())
	assert.Equal(t, "alice", stored.ArchivedBy)

	active, err := ls.ListTransactions(ctx, TransactionFilter{})
	require.NoError(t, err)
	assert.Empty(t, active)

	all, err := ls.ListTransactions(ctx, TransactionFilter{IncludeArchived: true})
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestArchiveTransactionOnlyOnce(t *testing.T) {
	ctx := context.Background()
	ls := newLedger(t, newClock(time.Now()), nil)

	txn, err := ls.PostTransaction(ctx, PostInput{Kind: models.TransactionKindIncome, Amount: 10000})
	require.NoError(t, err)

	_, err = ls.ArchiveTransaction(ctx, txn.ID, "alice")
	require.NoError(t, err)

	_, err = ls.ArchiveTransaction(ctx, txn.ID, "bob")
	requireCode(t, err, ledger.CodeValidation)

	for _, bucket := range defaultBuckets {
		assert.Zero(t, balanceOf(t, ls.db, bucket), bucket)
	}

	var audits int64
	require.NoError(t, ls.db.Model(&models.AuditEvent{}).
		Where("event_type = ?", models.AuditTransactionArchived).
		Count(&audits).Error)
	assert.Equal(t, int64(1), audits)
}

func TestArchiveTransactionConcurrentCallers(t *testing.T) {
	ctx := context.Background()
	ls := newLedger(t, newClock(time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)), nil)

	txn, err := ls.PostTransaction(ctx, PostInput{Kind: models.TransactionKindIncome, Amount: 10000})
	require.NoError(t, err)

	errs := runConcurrently(8, func(i int) error {
		_, err := ls.ArchiveTransaction(ctx, txn.ID, fmt.Sprintf("worker-%d", i))
		return err
	})

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		requireCode(t, err, ledger.CodeValidation)
	}
	assert.Equal(t, 1, succeeded)

	// the reversal was applied exactly once
	for _, bucket := range defaultBuckets {
		assert.Zero(t, balanceOf(t, ls.db, bucket), bucket)
	}
	var audits int64
	require.NoError(t, ls.db.Model(&models.AuditEvent{}).
		Where("event_type = ?", models.AuditTransactionArchived).
		Count(&audits).Error)
	assert.Equal(t, int64(1), audits)
}

func TestArchiveTransactionErrors(t *testing.T) {
	ctx := context.Background()
	ls := newLedger(t, newClock(time.Now()), nil)

	_, err := ls.ArchiveTransaction(ctx, 99, "alice")
	requireCode(t, err, ledger.CodeNotFound)

	txn, err := ls.PostTransaction(ctx, PostInput{Kind: models.TransactionKindIncome, Amount: 500})
	require.NoError(t, err)
	_, err = ls.ArchiveTransaction(ctx, txn.ID, "")
	requireCode(t, err, ledger.CodeValidation)
}

func TestArchiveTransactionSkipsMissingBalance(t *testing.T) {
	ctx := context.Background()
	ls := newLedger(t, newClock(time.Now()), nil)

	txn, err := ls.PostTransaction(ctx, PostInput{Kind: models.TransactionKindIncome, Amount: 10000})
	require.NoError(t, err)
	require.NoError(t, ls.db.Where("bucket = ?", "marketing").Delete(&models.Balance{}).Error)

	res, err := ls.ArchiveTransaction(ctx, txn.ID, "alice")
	require.NoError(t, err)
	assert.Equal(t, 4, res.Reversed)
	assert.Equal(t, []string{"marketing"}, res.SkippedBuckets)
	assert.Zero(t, balanceOf(t, ls.db, "partner_a"))

	var count int64
	require.NoError(t, ls.db.Model(&models.Balance{}).Where("bucket = ?", "marketing").Count(&count).Error)
	assert.Zero(t, count, "reversal must not recreate a missing balance")
}

func TestArchiveExpenseReversesNegativeSplits(t *testing.T) {
	ctx := context.Background()
	ls := newLedger(t, newClock(time.Now()), nil)

	_, err := ls.PostTransaction(ctx, PostInput{Kind: models.TransactionKindIncome, Amount: 10000})
	require.NoError(t, err)
	expense, err := ls.PostTransaction(ctx, PostInput{Kind: models.TransactionKindExpense, Amount: 2000})
	require.NoError(t, err)
	assert.Equal(t, int64(3500-700), balanceOf(t, ls.db, "partner_a"))

	_, err = ls.ArchiveTransaction(ctx, expense.ID, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(3500), balanceOf(t, ls.db, "partner_a"))
	assert.Equal(t, int64(500), balanceOf(t, ls.db, "marketing"))
}

func TestListTransactionsFilters(t *testing.T) {
	ctx := context.Background()
	clock := newClock(time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC))
	ls := newLedger(t, clock, nil)
	customer := createCustomer(t, ls.db, "Acme")

	_, err := ls.PostTransaction(ctx, PostInput{Kind: models.TransactionKindIncome, Amount: 100, CustomerID: &customer.ID})
	require.NoError(t, err)
	clock.Set(clock.Now().Add(time.Minute))
	_, err = ls.PostTransaction(ctx, PostInput{Kind: models.TransactionKindExpense, Amount: 40})
	require.NoError(t, err)

	all, err := ls.ListTransactions(ctx, TransactionFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, models.TransactionKindExpense, all[0].Kind, "newest first")

	byCustomer, err := ls.ListTransactions(ctx, TransactionFilter{CustomerID: &customer.ID})
	require.NoError(t, err)
	require.Len(t, byCustomer, 1)
	assert.Equal(t, int64(100), byCustomer[0].Amount)

	expenses, err := ls.ListTransactions(ctx, TransactionFilter{Kind: models.TransactionKindExpense})
	require.NoError(t, err)
	require.Len(t, expenses, 1)
	assert.Equal(t, int64(-40), expenses[0].SignedAmount())
}
