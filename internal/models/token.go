package models

import "time"

// SessionToken is a persisted refresh token. An account may hold several
// (one per device); each is removed on logout or rotated on refresh.
type SessionToken struct {
	ID           int64     `gorm:"primaryKey;autoIncrement;column:id"`
	AccountID    int64     `gorm:"not null;index;column:account_id"`
	RefreshToken string    `gorm:"type:text;not null;index;column:refresh_token"`
	CreatedAt    time.Time `gorm:"not null;autoCreateTime;column:created_at"`
}

// TableName specifies the table name for SessionToken
func (SessionToken) TableName() string {
	return "session_tokens"
}

// RecoveryToken is a one-time password recovery token sent by mail
type RecoveryToken struct {
	UUID      string    `gorm:"type:uuid;primaryKey;column:uuid"`
	AccountID int64     `gorm:"not null;index;column:account_id"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime;column:created_at"`
}

// TableName specifies the table name for RecoveryToken
func (RecoveryToken) TableName() string {
	return "recovery_tokens"
}

// EmailChange is a pending email update awaiting confirmation
type EmailChange struct {
	UUID      string    `gorm:"type:uuid;primaryKey;column:uuid"`
	AccountID int64     `gorm:"not null;index;column:account_id"`
	Candidate string    `gorm:"type:varchar(255);not null;column:candidate"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime;column:created_at"`
}

// TableName specifies the table name for EmailChange
func (EmailChange) TableName() string {
	return "email_changes"
}
