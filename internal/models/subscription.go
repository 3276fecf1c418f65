package models

import (
	"time"

	"gorm.io/gorm"
)

// SubscriptionStatus is the lifecycle state of a subscription
type SubscriptionStatus string

const (
	SubscriptionStatusActive   SubscriptionStatus = "active"
	SubscriptionStatusPaused   SubscriptionStatus = "paused"
	SubscriptionStatusCanceled SubscriptionStatus = "canceled"
)

// Subscription is a recurring customer agreement rolled forward one month per collection
type Subscription struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	CustomerID      uint               `gorm:"index" json:"customer_id"`
	Title           string             `gorm:"type:varchar(255)" json:"title"`
	Amount          int64              `gorm:"not null" json:"amount"` // minor units
	Status          SubscriptionStatus `gorm:"type:varchar(20);default:'active';index" json:"status"`
	NextPaymentDate time.Time          `json:"next_payment_date"`
	Version         int                `gorm:"not null;default:0" json:"version"` // bumped on every state change

	// Set when the customer paid less than the full amount
	PartialRemainingAmount int64      `gorm:"not null;default:0" json:"partial_remaining_amount"`
	PartialDueDate         *time.Time `json:"partial_due_date"`
}

// DueAmount is the remaining partial amount when one is set, otherwise the full amount
func (s Subscription) DueAmount() int64 {
	if s.PartialRemainingAmount != 0 {
		return s.PartialRemainingAmount
	}
	return s.Amount
}
