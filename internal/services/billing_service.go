package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"ledger_app_echo/internal/ledger"
	"ledger_app_echo/internal/models"
)

// BillingService generates monthly obligations from payment plans, classifies
// them and collects them into the ledger
type BillingService struct {
	db     *gorm.DB
	ledger *LedgerService
	cache  Cache
	cfg    EngineConfig
}

// NewBillingService creates a billing service. cache may be nil.
func NewBillingService(db *gorm.DB, ledgerService *LedgerService, cache Cache, cfg EngineConfig) *BillingService {
	return &BillingService{db: db, ledger: ledgerService, cache: cache, cfg: cfg.withDefaults()}
}

// CurrentMonth is the month key of the engine clock in the reference zone
func (s *BillingService) CurrentMonth() string {
	return ledger.MonthKey(s.cfg.ClockFunc(), s.cfg.Location)
}

// EnsureResult summarizes one generation run
type EnsureResult struct {
	Month    string `json:"month"`
	Created  int    `json:"created"`
	Existing int    `json:"existing"`
	Failed   int    `json:"failed"`
}

// EnsureInstances makes sure every active plan has exactly one instance for
// month. Existing instances are left untouched, so the call is safe to repeat
// and to run concurrently; the (plan_id, month_key) unique index absorbs
// duplicate inserts. A failing plan does not undo the others.
func (s *BillingService) EnsureInstances(ctx context.Context, month string) (*EnsureResult, error) {
	if _, _, err := ledger.ParseMonthKey(month); err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	var plans []models.PaymentPlan
	if err := db.Where("status = ? AND archived_at IS NULL", models.PlanStatusActive).Order("id ASC").Find(&plans).Error; err != nil {
		return nil, ledger.FromStore(err, "list plans")
	}

	result := &EnsureResult{Month: month}
	var errs []error
	for _, plan := range plans {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}

		dueAt, err := ledger.DueDate(month, plan.BillingDay, s.cfg.DueHour, s.cfg.Location)
		if err != nil {
			slog.Error("Invalid billing day on plan", "plan_id", plan.ID, "billing_day", plan.BillingDay, "error", err)
			result.Failed++
			errs = append(errs, fmt.Errorf("plan %d: %w", plan.ID, err))
			continue
		}

		instance := models.PaymentInstance{
			UUID:       uuid.NewString(),
			PlanID:     plan.ID,
			CustomerID: plan.CustomerID,
			MonthKey:   month,
			DueAt:      dueAt,
			Amount:     plan.Amount,
			Status:     models.InstanceStatusDue,
		}
		res := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "plan_id"}, {Name: "month_key"}},
			DoNothing: true,
		}).Create(&instance)
		if res.Error != nil {
			slog.Error("Failed to create payment instance", "plan_id", plan.ID, "month", month, "error", res.Error)
			result.Failed++
			errs = append(errs, fmt.Errorf("plan %d: %w", plan.ID, res.Error))
			continue
		}
		if res.RowsAffected > 0 {
			result.Created++
		} else {
			result.Existing++
		}
	}

	if result.Created > 0 {
		s.invalidateAlerts(ctx, month)
	}
	slog.Info("Ensured payment instances", "month", month, "created", result.Created, "existing", result.Existing, "failed", result.Failed)

	if len(errs) > 0 {
		return result, ledger.FromStore(errors.Join(errs...), "ensure instances")
	}
	return result, nil
}

// ListInstances returns a month's instances ordered by due date.
// status is optional.
func (s *BillingService) ListInstances(ctx context.Context, month string, status models.InstanceStatus) ([]models.PaymentInstance, error) {
	if _, _, err := ledger.ParseMonthKey(month); err != nil {
		return nil, err
	}
	if status != "" && status != models.InstanceStatusDue && status != models.InstanceStatusPaid {
		return nil, ledger.Validation("unknown instance status %q", status)
	}

	query := s.db.WithContext(ctx).Where("month_key = ?", month)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var instances []models.PaymentInstance
	if err := query.Order("due_at ASC, id ASC").Find(&instances).Error; err != nil {
		return nil, ledger.FromStore(err, "list instances")
	}
	return instances, nil
}

// InstanceByUUID looks up an instance by its public reference
func (s *BillingService) InstanceByUUID(ctx context.Context, ref string) (*models.PaymentInstance, error) {
	if _, err := uuid.Parse(ref); err != nil {
		return nil, ledger.Validation("invalid instance reference %q", ref)
	}
	var instance models.PaymentInstance
	if err := s.db.WithContext(ctx).Preload("Plan").Where("uuid = ?", ref).First(&instance).Error; err != nil {
		return nil, ledger.FromStore(err, "payment instance")
	}
	return &instance, nil
}

// Alerts groups a month's unpaid instances by urgency
type Alerts struct {
	Upcoming      []models.PaymentInstance `json:"upcoming"`
	PaymentWindow []models.PaymentInstance `json:"paymentWindow"`
	Overdue       []models.PaymentInstance `json:"overdue"`
}

// ClassifyAlerts buckets the month's instances with the due-signal classifier.
// Paid and normal instances are left out.
func (s *BillingService) ClassifyAlerts(ctx context.Context, month string) (*Alerts, error) {
	if _, _, err := ledger.ParseMonthKey(month); err != nil {
		return nil, err
	}
	now := s.cfg.ClockFunc()

	build := func() (*Alerts, error) {
		instances, err := s.ListInstances(ctx, month, "")
		if err != nil {
			return nil, err
		}
		alerts := &Alerts{
			Upcoming:      []models.PaymentInstance{},
			PaymentWindow: []models.PaymentInstance{},
			Overdue:       []models.PaymentInstance{},
		}
		for _, inst := range instances {
			switch ledger.Classify(inst.DueAt, now, string(inst.Status), s.cfg.Location) {
			case ledger.SignalUpcoming:
				alerts.Upcoming = append(alerts.Upcoming, inst)
			case ledger.SignalPaymentWindow:
				alerts.PaymentWindow = append(alerts.PaymentWindow, inst)
			case ledger.SignalOverdue:
				alerts.Overdue = append(alerts.Overdue, inst)
			}
		}
		return alerts, nil
	}

	if s.cache == nil {
		return build()
	}
	return GetOrSet(s.cache, ctx, s.alertsKey(month, now), s.cfg.AlertsCacheTTL, build)
}

// alertsKey includes the civil date because classification moves with the day
func (s *BillingService) alertsKey(month string, now time.Time) string {
	return fmt.Sprintf("alerts:%s:%s", month, now.In(s.cfg.Location).Format("2006-01-02"))
}

func (s *BillingService) invalidateAlerts(ctx context.Context, month string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, s.alertsKey(month, s.cfg.ClockFunc())); err != nil {
		slog.Warn("Failed to invalidate alerts cache", "month", month, "error", err)
	}
}

// CollectResult is returned by a successful collection
type CollectResult struct {
	Status        models.InstanceStatus `json:"status"`
	PaidAt        time.Time             `json:"paid_at"`
	TransactionID uint                  `json:"transaction_id"`
}

// Collect marks an instance paid and posts the matching income transaction.
// The due->paid transition is a conditional update, and both writes share one
// database transaction, so a repeated or concurrent call fails with
// VALIDATION instead of posting twice.
func (s *BillingService) Collect(ctx context.Context, instanceID uint, actor string) (*CollectResult, error) {
	now := s.cfg.ClockFunc()
	var instance models.PaymentInstance
	var txn *models.Transaction

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.PaymentInstance{}).
			Where("id = ? AND status = ?", instanceID, models.InstanceStatusDue).
			Updates(map[string]interface{}{"status": models.InstanceStatusPaid, "paid_at": now})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			if err := tx.First(&instance, instanceID).Error; err != nil {
				return ledger.FromStore(err, "payment instance")
			}
			return ledger.Validation("payment instance %d is already paid", instanceID)
		}

		if err := tx.First(&instance, instanceID).Error; err != nil {
			return err
		}

		customerID := instance.CustomerID
		var err error
		txn, err = s.ledger.post(tx, PostInput{
			Kind:       models.TransactionKindIncome,
			Amount:     instance.Amount,
			OccurredAt: now,
			CustomerID: &customerID,
			Note:       fmt.Sprintf("Payment for plan %d, period %s", instance.PlanID, instance.MonthKey),
		}, s.cfg.CollectSplits)
		if err != nil {
			return err
		}

		if err := tx.Model(&instance).Update("transaction_id", txn.ID).Error; err != nil {
			return err
		}

		return recordAudit(tx, models.AuditInstanceCollected, "payment_instance", instance.ID, actor, now, map[string]interface{}{
			"transaction_id": txn.ID,
			"amount":         instance.Amount,
			"month":          instance.MonthKey,
		})
	})
	if err != nil {
		return nil, ledger.FromStore(err, "collect instance")
	}

	s.invalidateAlerts(ctx, instance.MonthKey)
	return &CollectResult{Status: models.InstanceStatusPaid, PaidAt: now, TransactionID: txn.ID}, nil
}
