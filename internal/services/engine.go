package services

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"ledger_app_echo/internal/models"
)

// EngineConfig configures the billing and ledger services
type EngineConfig struct {
	// Location is the reference zone for due dates and day-granularity comparisons
	Location *time.Location
	// DueHour is the time of day generated instances fall due
	DueHour int
	// CollectSplits routes collected instances through split and balance posting
	CollectSplits bool
	// AlertsCacheTTL bounds how long classified alerts stay cached
	AlertsCacheTTL time.Duration
	// ClockFunc returns the current time; defaults to time.Now
	ClockFunc func() time.Time
}

func (c EngineConfig) withDefaults() EngineConfig {
	if c.Location == nil {
		c.Location = time.UTC
	}
	if c.ClockFunc == nil {
		c.ClockFunc = time.Now
	}
	if c.AlertsCacheTTL <= 0 {
		c.AlertsCacheTTL = 5 * time.Minute
	}
	return c
}

// recordAudit appends an audit event inside the caller's transaction
func recordAudit(tx *gorm.DB, eventType, entityType string, entityID uint, actor string, at time.Time, meta map[string]interface{}) error {
	event := models.AuditEvent{
		EventType:  eventType,
		EntityType: entityType,
		EntityID:   entityID,
		Actor:      actor,
		OccurredAt: at,
		Metadata:   datatypes.JSONMap(meta),
	}
	return tx.Create(&event).Error
}
