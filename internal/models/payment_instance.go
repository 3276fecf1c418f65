package models

import (
	"time"
)

// InstanceStatus is the state of a generated obligation
type InstanceStatus string

const (
	InstanceStatusDue  InstanceStatus = "due"
	InstanceStatusPaid InstanceStatus = "paid"
)

// PaymentInstance is one plan's obligation for one calendar month.
// (plan_id, month_key) is unique; rows are never soft deleted so the index
// keeps generation idempotent.
type PaymentInstance struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	UUID          string         `gorm:"type:varchar(36);uniqueIndex" json:"uuid"`
	PlanID        uint           `gorm:"not null;uniqueIndex:idx_instance_plan_month,priority:1" json:"plan_id"`
	CustomerID    uint           `gorm:"index" json:"customer_id"`
	MonthKey      string         `gorm:"type:varchar(7);not null;uniqueIndex:idx_instance_plan_month,priority:2;index" json:"month_key"` // e.g. "2025-06"
	DueAt         time.Time      `json:"due_at"`
	Amount        int64          `gorm:"not null" json:"amount"` // minor units, copied from the plan
	Status        InstanceStatus `gorm:"type:varchar(20);default:'due'" json:"status"`
	PaidAt        *time.Time     `json:"paid_at"`
	TransactionID *uint          `json:"transaction_id"`

	// Relationships
	Plan *PaymentPlan `gorm:"foreignKey:PlanID" json:"plan,omitempty"`
}
