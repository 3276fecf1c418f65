package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledger_app_echo/internal/ledger"
	"ledger_app_echo/internal/models"
)

func TestPlanLifecycle(t *testing.T) {
	ctx := context.Background()
	clock := newClock(time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC))
	plans := NewPlanService(newTestDB(t), testConfig(clock))

	customer, err := plans.CreateCustomer(ctx, "  Acme  ", "ops@acme.test", "")
	require.NoError(t, err)
	assert.Equal(t, "Acme", customer.Name)

	plan, err := plans.CreatePlan(ctx, PlanInput{CustomerID: customer.ID, Title: "Retainer", Amount: 150000, BillingDay: 15})
	require.NoError(t, err)
	assert.Equal(t, models.PlanStatusActive, plan.Status)

	updated, err := plans.UpdatePlanAmount(ctx, plan.ID, 175000, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(175000), updated.Amount)

	require.NoError(t, plans.ArchivePlan(ctx, plan.ID, "alice"))

	var stored models.PaymentPlan
	require.NoError(t, plans.db.First(&stored, plan.ID).Error)
	assert.Equal(t, models.PlanStatusArchived, stored.Status)
	require.NotNil(t, stored.ArchivedAt)

	err = plans.ArchivePlan(ctx, plan.ID, "alice")
	requireCode(t, err, ledger.CodeValidation)

	_, err = plans.UpdatePlanAmount(ctx, plan.ID, 1, "alice")
	requireCode(t, err, ledger.CodeValidation)

	var audits int64
	require.NoError(t, plans.db.Model(&models.AuditEvent{}).Where("entity_type = ?", "payment_plan").Count(&audits).Error)
	assert.Equal(t, int64(2), audits)
}

func TestCreatePlanValidation(t *testing.T) {
	ctx := context.Background()
	plans := NewPlanService(newTestDB(t), testConfig(newClock(time.Now())))
	customer, err := plans.CreateCustomer(ctx, "Acme", "", "")
	require.NoError(t, err)

	cases := []struct {
		name string
		in   PlanInput
		code ledger.Code
	}{
		{"blank title", PlanInput{CustomerID: customer.ID, Title: " ", Amount: 1, BillingDay: 1}, ledger.CodeValidation},
		{"negative amount", PlanInput{CustomerID: customer.ID, Title: "x", Amount: -5, BillingDay: 1}, ledger.CodeValidation},
		{"billing day 0", PlanInput{CustomerID: customer.ID, Title: "x", Amount: 1, BillingDay: 0}, ledger.CodeValidation},
		{"billing day 29", PlanInput{CustomerID: customer.ID, Title: "x", Amount: 1, BillingDay: 29}, ledger.CodeValidation},
		{"unknown customer", PlanInput{CustomerID: 77, Title: "x", Amount: 1, BillingDay: 1}, ledger.CodeNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := plans.CreatePlan(ctx, tc.in)
			requireCode(t, err, tc.code)
		})
	}

	_, err = plans.CreateCustomer(ctx, "", "", "")
	requireCode(t, err, ledger.CodeValidation)
}

func TestPlanMissing(t *testing.T) {
	ctx := context.Background()
	plans := NewPlanService(newTestDB(t), testConfig(newClock(time.Now())))

	requireCode(t, plans.ArchivePlan(ctx, 9, "alice"), ledger.CodeNotFound)

	_, err := plans.UpdatePlanAmount(ctx, 9, 10, "alice")
	requireCode(t, err, ledger.CodeNotFound)

	_, err = plans.PlanSchedule(ctx, 9, 3)
	requireCode(t, err, ledger.CodeNotFound)
}

func TestPlanSchedule(t *testing.T) {
	ctx := context.Background()
	clock := newClock(time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC))
	plans := NewPlanService(newTestDB(t), testConfig(clock))
	customer, err := plans.CreateCustomer(ctx, "Acme", "", "")
	require.NoError(t, err)

	later, err := plans.CreatePlan(ctx, PlanInput{CustomerID: customer.ID, Title: "A", Amount: 1, BillingDay: 15})
	require.NoError(t, err)
	passed, err := plans.CreatePlan(ctx, PlanInput{CustomerID: customer.ID, Title: "B", Amount: 1, BillingDay: 5})
	require.NoError(t, err)

	dates, err := plans.PlanSchedule(ctx, later.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"2025-06-15", "2025-07-15", "2025-08-15"}, formatDates(dates))

	dates, err = plans.PlanSchedule(ctx, passed.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"2025-07-05", "2025-08-05"}, formatDates(dates))

	_, err = plans.PlanSchedule(ctx, later.ID, 0)
	requireCode(t, err, ledger.CodeValidation)

	require.NoError(t, plans.ArchivePlan(ctx, later.ID, "alice"))
	dates, err = plans.PlanSchedule(ctx, later.ID, 3)
	require.NoError(t, err)
	assert.Empty(t, dates)
}

func formatDates(dates []time.Time) []string {
	out := make([]string, 0, len(dates))
	for _, d := range dates {
		out = append(out, d.Format("2006-01-02"))
	}
	return out
}
