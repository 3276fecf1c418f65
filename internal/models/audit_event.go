package models

import (
	"time"

	"gorm.io/datatypes"
)

// Audit event types written by the engine
const (
	AuditSubscriptionCollected = "subscription.collected"
	AuditSubscriptionPartial   = "subscription.partial_payment"
	AuditInstanceCollected     = "instance.collected"
	AuditTransactionArchived   = "transaction.archived"
	AuditPlanArchived          = "plan.archived"
	AuditPlanAmountChanged     = "plan.amount_changed"
)

// AuditEvent tracks a state change made by an actor
type AuditEvent struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	EventType  string            `gorm:"type:varchar(64);index" json:"event_type"`
	EntityType string            `gorm:"type:varchar(64);index:idx_audit_entity,priority:1" json:"entity_type"`
	EntityID   uint              `gorm:"index:idx_audit_entity,priority:2" json:"entity_id"`
	Actor      string            `gorm:"type:varchar(128)" json:"actor"`
	OccurredAt time.Time         `json:"occurred_at"`
	Metadata   datatypes.JSONMap `gorm:"type:jsonb" json:"metadata"`
}
