package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// AuditLog is an immutable record of a mutating engine operation. Before and
// after snapshots live inside Metadata as structured JSON; they are for
// display, not replay.
type AuditLog struct {
	ID         snowflake.ID      `gorm:"primaryKey" json:"id"`
	UserID     *snowflake.ID     `gorm:"index" json:"user_id,omitempty"`
	Action     string            `gorm:"type:text;not null;index" json:"action"`
	EntityName string            `gorm:"column:table_name;type:text;not null" json:"table_name"`
	RecordID   *string           `gorm:"type:text" json:"record_id,omitempty"`
	Metadata   datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"metadata"`
	IPAddress  *string           `gorm:"type:text" json:"ip_address,omitempty"`
	UserAgent  *string           `gorm:"type:text" json:"user_agent,omitempty"`
	CreatedAt  time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (AuditLog) TableName() string { return "audit_logs" }
