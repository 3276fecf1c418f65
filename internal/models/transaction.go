package models

import (
	"time"
)

// TransactionKind is the direction of a ledger entry
type TransactionKind string

const (
	TransactionKindIncome  TransactionKind = "income"
	TransactionKindExpense TransactionKind = "expense"
)

// Transaction is a ledger entry of money received or spent.
// Archived transactions stay queryable; archival only corrects balances.
type Transaction struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Reference  string          `gorm:"type:varchar(36);uniqueIndex" json:"reference"`
	Kind       TransactionKind `gorm:"type:varchar(20);not null" json:"kind"`
	Amount     int64           `gorm:"not null" json:"amount"` // minor units, always positive
	OccurredAt time.Time       `gorm:"index" json:"occurred_at"`
	CustomerID *uint           `gorm:"index" json:"customer_id"`
	Note       string          `gorm:"type:text" json:"note"`
	ArchivedAt *time.Time      `gorm:"index" json:"archived_at"`
	ArchivedBy string          `gorm:"type:varchar(128)" json:"archived_by,omitempty"`

	// Relationships
	Splits []TransactionSplit `gorm:"foreignKey:TransactionID" json:"splits,omitempty"`
}

// SignedAmount is +Amount for income and -Amount for expense
func (t Transaction) SignedAmount() int64 {
	if t.Kind == TransactionKindExpense {
		return -t.Amount
	}
	return t.Amount
}

// IsArchived reports whether the transaction has been voided
func (t Transaction) IsArchived() bool {
	return t.ArchivedAt != nil
}
