package services

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"ledger_app_echo/internal/ledger"
	"ledger_app_echo/internal/models"
)

// PlanService manages the lifecycle of payment plans
type PlanService struct {
	db  *gorm.DB
	cfg EngineConfig
}

func NewPlanService(db *gorm.DB, cfg EngineConfig) *PlanService {
	return &PlanService{db: db, cfg: cfg.withDefaults()}
}

// PlanInput holds the fields needed to open a plan
type PlanInput struct {
	CustomerID uint   `json:"customer_id"`
	Title      string `json:"title"`
	Amount     int64  `json:"amount"`
	BillingDay int    `json:"billing_day"`
}

// CreatePlan opens an active plan for an existing customer
func (s *PlanService) CreatePlan(ctx context.Context, in PlanInput) (*models.PaymentPlan, error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return nil, ledger.Validation("title is required")
	}
	if in.Amount <= 0 {
		return nil, ledger.Validation("amount must be positive, got %d", in.Amount)
	}
	if err := ledger.ValidateBillingDay(in.BillingDay); err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	var customer models.Customer
	if err := db.First(&customer, in.CustomerID).Error; err != nil {
		return nil, ledger.FromStore(err, "customer")
	}

	plan := models.PaymentPlan{
		CustomerID: in.CustomerID,
		Title:      in.Title,
		Amount:     in.Amount,
		BillingDay: in.BillingDay,
		Status:     models.PlanStatusActive,
	}
	if err := db.Create(&plan).Error; err != nil {
		return nil, ledger.FromStore(err, "create plan")
	}
	return &plan, nil
}

// UpdatePlanAmount changes the amount copied into instances generated from now on.
// Instances that already exist keep their amount.
func (s *PlanService) UpdatePlanAmount(ctx context.Context, id uint, amount int64, actor string) (*models.PaymentPlan, error) {
	if amount <= 0 {
		return nil, ledger.Validation("amount must be positive, got %d", amount)
	}
	now := s.cfg.ClockFunc()

	var plan models.PaymentPlan
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&plan, id).Error; err != nil {
			return ledger.FromStore(err, "plan")
		}
		previous := plan.Amount

		res := tx.Model(&models.PaymentPlan{}).
			Where("id = ? AND status = ?", id, models.PlanStatusActive).
			Update("amount", amount)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ledger.Validation("plan %d is archived", id)
		}
		plan.Amount = amount

		return recordAudit(tx, models.AuditPlanAmountChanged, "payment_plan", id, actor, now, map[string]interface{}{
			"previous": previous,
			"amount":   amount,
		})
	})
	if err != nil {
		return nil, ledger.FromStore(err, "update plan")
	}
	return &plan, nil
}

// ArchivePlan soft-deletes a plan; the generator skips it from then on
func (s *PlanService) ArchivePlan(ctx context.Context, id uint, actor string) error {
	now := s.cfg.ClockFunc()
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.PaymentPlan{}).
			Where("id = ? AND status = ?", id, models.PlanStatusActive).
			Updates(map[string]interface{}{"status": models.PlanStatusArchived, "archived_at": now})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			var plan models.PaymentPlan
			if err := tx.First(&plan, id).Error; err != nil {
				return ledger.FromStore(err, "plan")
			}
			return ledger.Validation("plan %d is already archived", id)
		}
		return recordAudit(tx, models.AuditPlanArchived, "payment_plan", id, actor, now, nil)
	})
	return ledger.FromStore(err, "archive plan")
}

// PlanSchedule lists the next count due dates of a plan starting today
func (s *PlanService) PlanSchedule(ctx context.Context, id uint, count int) ([]time.Time, error) {
	if count <= 0 || count > 36 {
		return nil, ledger.Validation("count must be between 1 and 36, got %d", count)
	}
	var plan models.PaymentPlan
	if err := s.db.WithContext(ctx).First(&plan, id).Error; err != nil {
		return nil, ledger.FromStore(err, "plan")
	}
	if plan.Status != models.PlanStatusActive {
		return []time.Time{}, nil
	}

	now := s.cfg.ClockFunc().In(s.cfg.Location)
	from := time.Date(now.Year(), now.Month(), now.Day(), s.cfg.DueHour, 0, 0, 0, s.cfg.Location)
	return plan.Schedule(from, count)
}

// CreateCustomer registers a customer that plans and subscriptions can reference
func (s *PlanService) CreateCustomer(ctx context.Context, name, email, phone string) (*models.Customer, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ledger.Validation("customer name is required")
	}
	customer := models.Customer{Name: name, Email: strings.TrimSpace(email), Phone: strings.TrimSpace(phone)}
	if err := s.db.WithContext(ctx).Create(&customer).Error; err != nil {
		return nil, ledger.FromStore(err, "create customer")
	}
	return &customer, nil
}

// ListCustomers returns customers ordered by name
func (s *PlanService) ListCustomers(ctx context.Context) ([]models.Customer, error) {
	var customers []models.Customer
	if err := s.db.WithContext(ctx).Order("name asc, id asc").Find(&customers).Error; err != nil {
		return nil, ledger.FromStore(err, "list customers")
	}
	return customers, nil
}

// CustomerPlans returns a customer with its plans
func (s *PlanService) CustomerPlans(ctx context.Context, id uint) (*models.Customer, []models.PaymentPlan, error) {
	db := s.db.WithContext(ctx)
	var customer models.Customer
	if err := db.First(&customer, id).Error; err != nil {
		return nil, nil, ledger.FromStore(err, "customer")
	}
	var plans []models.PaymentPlan
	if err := db.Where("customer_id = ?", id).Order("id asc").Find(&plans).Error; err != nil {
		return nil, nil, ledger.FromStore(err, "list plans")
	}
	return &customer, plans, nil
}
