package models

import (
	"database/sql"
	"time"
)

// Account represents a registered user
type Account struct {
	ID           int64          `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	Nickname     string         `gorm:"type:varchar(32);not null;uniqueIndex:accounts_nickname_ux;column:nickname" json:"nickname"`
	Email        string         `gorm:"type:varchar(255);not null;uniqueIndex:accounts_email_ux;column:email" json:"email"`
	PasswordHash string         `gorm:"type:varchar(72);not null;column:password_hash" json:"-"`
	Name         string         `gorm:"type:varchar(32);not null;column:name" json:"name"`
	Surname      string         `gorm:"type:varchar(32);not null;column:surname" json:"surname"`
	AvatarURL    sql.NullString `gorm:"type:varchar(1024);column:avatar_url" json:"avatar_url"`
	Sex          sql.NullInt16  `gorm:"type:smallint;column:sex" json:"sex"`
	Country      sql.NullString `gorm:"type:varchar(255);column:country" json:"country"`
	About        sql.NullString `gorm:"type:varchar(1024);column:about" json:"about"`
	Role         string         `gorm:"type:varchar(16);not null;default:'user';column:role" json:"role"`
	CreatedAt    time.Time      `gorm:"not null;autoCreateTime;column:created_at" json:"created_at"`
}

// TableName specifies the table name for Account
func (Account) TableName() string {
	return "accounts"
}

// PublicProfile is the externally visible subset of an account.
type PublicProfile struct {
	ID        int64          `json:"id"`
	Nickname  string         `json:"nickname"`
	Email     string         `json:"email"`
	Name      string         `json:"name"`
	Surname   string         `json:"surname"`
	AvatarURL sql.NullString `json:"avatar_url"`
	Sex       sql.NullInt16  `json:"sex"`
	Country   sql.NullString `json:"country"`
	About     sql.NullString `json:"about"`
}

// Public strips credential and moderation fields from an account.
func (a *Account) Public() PublicProfile {
	return PublicProfile{
		ID:        a.ID,
		Nickname:  a.Nickname,
		Email:     a.Email,
		Name:      a.Name,
		Surname:   a.Surname,
		AvatarURL: a.AvatarURL,
		Sex:       a.Sex,
		Country:   a.Country,
		About:     a.About,
	}
}
