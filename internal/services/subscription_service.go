package services

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"ledger_app_echo/internal/ledger"
	"ledger_app_echo/internal/models"
)

// SubscriptionService rolls recurring subscriptions forward after payment
type SubscriptionService struct {
	db  *gorm.DB
	cfg EngineConfig
}

func NewSubscriptionService(db *gorm.DB, cfg EngineConfig) *SubscriptionService {
	return &SubscriptionService{db: db, cfg: cfg.withDefaults()}
}

// SubscriptionInput holds the fields needed to start a subscription
type SubscriptionInput struct {
	CustomerID      uint      `json:"customer_id"`
	Title           string    `json:"title"`
	Amount          int64     `json:"amount"`
	NextPaymentDate time.Time `json:"next_payment_date"`
}

// CreateSubscription starts an active subscription
func (s *SubscriptionService) CreateSubscription(ctx context.Context, in SubscriptionInput) (*models.Subscription, error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return nil, ledger.Validation("title is required")
	}
	if in.Amount <= 0 {
		return nil, ledger.Validation("amount must be positive, got %d", in.Amount)
	}
	if in.NextPaymentDate.IsZero() {
		return nil, ledger.Validation("next payment date is required")
	}

	db := s.db.WithContext(ctx)
	var customer models.Customer
	if err := db.First(&customer, in.CustomerID).Error; err != nil {
		return nil, ledger.FromStore(err, "customer")
	}

	sub := models.Subscription{
		CustomerID:      in.CustomerID,
		Title:           in.Title,
		Amount:          in.Amount,
		Status:          models.SubscriptionStatusActive,
		NextPaymentDate: ledger.CalendarUTC(in.NextPaymentDate),
	}
	if err := db.Create(&sub).Error; err != nil {
		return nil, ledger.FromStore(err, "create subscription")
	}
	return &sub, nil
}

// RolloverResult describes a collected subscription period
type RolloverResult struct {
	SubscriptionID  uint      `json:"subscription_id"`
	AmountCollected int64     `json:"amount_collected"`
	PreviousDueDate time.Time `json:"previous_due_date"`
	NextPaymentDate time.Time `json:"next_payment_date"`
}

// CollectSubscription records payment of the current due amount and moves the
// next payment date one calendar month past its previous value, so late
// collection does not shift the cycle. Partial-balance markers are cleared.
func (s *SubscriptionService) CollectSubscription(ctx context.Context, id uint, actor string) (*RolloverResult, error) {
	now := s.cfg.ClockFunc()
	var result RolloverResult

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sub, err := s.activeSubscription(tx, id)
		if err != nil {
			return err
		}

		// stored dates are calendar values pinned to UTC, see CalendarUTC
		previous := sub.NextPaymentDate.UTC()
		next := ledger.AddMonth(previous)
		amount := sub.DueAmount()

		res := tx.Model(&models.Subscription{}).
			Where("id = ? AND version = ?", sub.ID, sub.Version).
			Updates(map[string]interface{}{
				"next_payment_date":        next,
				"partial_remaining_amount": 0,
				"partial_due_date":         nil,
				"version":                  sub.Version + 1,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ledger.Validation("subscription %d changed concurrently, retry", id)
		}

		result = RolloverResult{
			SubscriptionID:  sub.ID,
			AmountCollected: amount,
			PreviousDueDate: previous,
			NextPaymentDate: next,
		}
		return recordAudit(tx, models.AuditSubscriptionCollected, "subscription", sub.ID, actor, now, map[string]interface{}{
			"amount":            amount,
			"partial":           sub.PartialRemainingAmount != 0,
			"previous_due_date": previous.Format(time.RFC3339),
			"next_payment_date": next.Format(time.RFC3339),
		})
	})
	if err != nil {
		return nil, ledger.FromStore(err, "collect subscription")
	}
	return &result, nil
}

// RecordPartialPayment registers that the customer paid less than what is due.
// The shortfall becomes the partial remaining amount, due on remainingDue.
func (s *SubscriptionService) RecordPartialPayment(ctx context.Context, id uint, paid int64, remainingDue time.Time, actor string) (*models.Subscription, error) {
	if paid <= 0 {
		return nil, ledger.Validation("paid amount must be positive, got %d", paid)
	}
	if remainingDue.IsZero() {
		return nil, ledger.Validation("remaining due date is required")
	}
	remainingDue = ledger.CalendarUTC(remainingDue)
	now := s.cfg.ClockFunc()

	var sub *models.Subscription
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		sub, err = s.activeSubscription(tx, id)
		if err != nil {
			return err
		}

		due := sub.DueAmount()
		if paid >= due {
			return ledger.Validation("paid amount %d covers the full due amount %d, collect instead", paid, due)
		}
		remaining := due - paid

		res := tx.Model(&models.Subscription{}).
			Where("id = ? AND version = ?", sub.ID, sub.Version).
			Updates(map[string]interface{}{
				"partial_remaining_amount": remaining,
				"partial_due_date":         remainingDue,
				"version":                  sub.Version + 1,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ledger.Validation("subscription %d changed concurrently, retry", id)
		}
		sub.PartialRemainingAmount = remaining
		sub.PartialDueDate = &remainingDue
		sub.Version++

		return recordAudit(tx, models.AuditSubscriptionPartial, "subscription", sub.ID, actor, now, map[string]interface{}{
			"paid":      paid,
			"remaining": remaining,
		})
	})
	if err != nil {
		return nil, ledger.FromStore(err, "partial payment")
	}
	return sub, nil
}

// activeSubscription loads a subscription that can be collected; anything
// else is reported as not found
func (s *SubscriptionService) activeSubscription(tx *gorm.DB, id uint) (*models.Subscription, error) {
	var sub models.Subscription
	err := tx.Where("id = ? AND status = ?", id, models.SubscriptionStatusActive).First(&sub).Error
	if err != nil {
		return nil, ledger.FromStore(err, "active subscription")
	}
	return &sub, nil
}
