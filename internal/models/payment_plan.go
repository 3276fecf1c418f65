package models

import (
	"fmt"
	"time"

	"github.com/teambition/rrule-go"
)

// PlanStatus is the lifecycle state of a payment plan
type PlanStatus string

const (
	PlanStatusActive   PlanStatus = "active"
	PlanStatusArchived PlanStatus = "archived"
)

// PaymentPlan is a standing recurring billing agreement with a customer
type PaymentPlan struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	CustomerID uint       `gorm:"index" json:"customer_id"`
	Title      string     `gorm:"type:varchar(255)" json:"title"`
	Amount     int64      `gorm:"not null" json:"amount"` // minor units
	BillingDay int        `gorm:"not null" json:"billing_day"`
	Status     PlanStatus `gorm:"type:varchar(20);default:'active';index" json:"status"`
	ArchivedAt *time.Time `json:"archived_at"`

	// Relationships
	Customer  Customer          `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Instances []PaymentInstance `gorm:"foreignKey:PlanID" json:"instances,omitempty"`
}

// Rule returns the monthly recurrence of the plan's billing day starting at dtstart
func (p PaymentPlan) Rule(dtstart time.Time) (*rrule.RRule, error) {
	rule, err := rrule.StrToRRule(fmt.Sprintf("FREQ=MONTHLY;BYMONTHDAY=%d", p.BillingDay))
	if err != nil {
		return nil, err
	}
	rule.DTStart(dtstart)
	return rule, nil
}

// Schedule lists the next count billing dates on or after from.
// from carries the time of day and location used for every occurrence.
func (p PaymentPlan) Schedule(from time.Time, count int) ([]time.Time, error) {
	if count <= 0 {
		return nil, nil
	}
	// start at the first day of from's month so this month's billing day is
	// still produced when it has not passed yet
	start := time.Date(from.Year(), from.Month(), 1, from.Hour(), from.Minute(), 0, 0, from.Location())
	rule, err := p.Rule(start)
	if err != nil {
		return nil, err
	}

	var dates []time.Time
	iter := rule.Iterator()
	for len(dates) < count {
		next, ok := iter()
		if !ok {
			break
		}
		if next.Before(from) {
			continue
		}
		dates = append(dates, next)
	}
	return dates, nil
}
