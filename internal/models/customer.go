package models

import (
	"time"

	"gorm.io/gorm"
)

// Customer is the party a plan, subscription or transaction belongs to
type Customer struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	Name  string `gorm:"type:varchar(255)" json:"name"`
	Phone string `gorm:"type:varchar(50)" json:"phone"`
	Email string `gorm:"type:varchar(255)" json:"email"`
}
