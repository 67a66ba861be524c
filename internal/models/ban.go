package models

import (
	"database/sql"
	"time"
)

// Ban represents a temporary block on an account
type Ban struct {
	ID        int64          `gorm:"primaryKey;autoIncrement;column:id"`
	AccountID int64          `gorm:"not null;index;column:account_id"`
	ExpiresAt time.Time      `gorm:"not null;column:expires_at"`
	Message   sql.NullString `gorm:"type:varchar(1024);column:message"`
	CreatedAt time.Time      `gorm:"not null;autoCreateTime;column:created_at"`
}

// TableName specifies the table name for Ban
func (Ban) TableName() string {
	return "bans"
}

// ActiveAt reports whether the ban is in force at the given instant.
// A ban is active strictly while now < expires_at.
func (b *Ban) ActiveAt(now time.Time) bool {
	return now.Before(b.ExpiresAt)
}
