package entity

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// AuditLog is one row of the optional SQL audit trail of hunting cycles
type AuditLog struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    string    `gorm:"type:varchar(255);not null;index" json:"user_id"`
	Action    string    `gorm:"type:varchar(100);not null;index" json:"action"`
	SlotID    string    `gorm:"type:varchar(255);index" json:"slot_id,omitempty"`
	Metadata  JSON      `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}

// JSON type for GORM JSONB support
type JSON map[string]interface{}

// Value returns json value, implement driver.Valuer interface
func (j JSON) Value() (driver.Value, error) {
	if len(j) == 0 {
		return nil, nil
	}
	return json.Marshal(j)
}

// Scan scan value into Jsonb, implements sql.Scanner interface
func (j *JSON) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New(fmt.Sprint("Failed to unmarshal JSONB value:", value))
	}

	result := map[string]interface{}{}
	err := json.Unmarshal(bytes, &result)
	*j = JSON(result)
	return err
}

// Hunt audit actions
const (
	AuditActionHuntBooked         = "hunt.booked"
	AuditActionHuntConflict       = "hunt.conflict"
	AuditActionHuntNoAvailability = "hunt.no_availability"
	AuditActionHuntFailed         = "hunt.failed"
	AuditActionCriteriaReplaced   = "criteria.replaced"
)

// AuditActionFor picks the audit action describing a cycle result
func AuditActionFor(result *HuntCycleResult) string {
	switch {
	case result.Booked():
		return AuditActionHuntBooked
	case result.Error == ErrorKindBookingConflict:
		return AuditActionHuntConflict
	case result.Error != ErrorKindNone:
		return AuditActionHuntFailed
	default:
		return AuditActionHuntNoAvailability
	}
}
