package models

import (
	"time"
)

// TransactionSplit records the share of one transaction applied to one bucket
type TransactionSplit struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	TransactionID uint   `gorm:"index;not null" json:"transaction_id"`
	Bucket        string `gorm:"type:varchar(64);not null" json:"bucket"`
	Percentage    string `gorm:"type:varchar(16)" json:"percentage"` // informational
	Amount        int64  `gorm:"not null" json:"amount"`             // signed minor units
	OwnerUserID   uint   `gorm:"not null;default:0" json:"owner_user_id"`
}

// Balance is the running total of a bucket, optionally owned by a user.
// OwnerUserID 0 means the bucket has no owner.
type Balance struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Bucket      string `gorm:"type:varchar(64);not null;uniqueIndex:idx_balance_bucket_owner,priority:1" json:"bucket"`
	OwnerUserID uint   `gorm:"not null;default:0;uniqueIndex:idx_balance_bucket_owner,priority:2" json:"owner_user_id"`
	Amount      int64  `gorm:"not null;default:0" json:"amount"`
}
