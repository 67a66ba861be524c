package models

import (
	"database/sql"
	"time"
)

// Notification represents an event addressed to an account
type Notification struct {
	ID        int64          `gorm:"primaryKey;autoIncrement;column:id"`
	Type      string         `gorm:"type:varchar(16);not null;index;column:type"`
	SenderID  int64          `gorm:"not null;index;column:sender_id"`
	TargetID  int64          `gorm:"not null;index;column:target_id"`
	Payload   sql.NullString `gorm:"type:jsonb;column:payload"`
	Read      bool           `gorm:"not null;default:false;column:read"`
	CreatedAt time.Time      `gorm:"not null;autoCreateTime;column:created_at"`
}

// TableName specifies the table name for Notification
func (Notification) TableName() string {
	return "notifications"
}

// Notification type constants
const (
	NotifyTypePostLike     = "post_like"
	NotifyTypeReply        = "reply"
	NotifyTypeComment      = "comment"
	NotifyTypeSubscription = "subscription"
)
