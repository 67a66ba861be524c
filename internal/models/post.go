package models

import (
	"encoding/json"
	"time"
)

// ContentBlock is one typed block of post content. Blocks are stored in
// order as a JSONB array.
type ContentBlock struct {
	Type    string          `json:"type"`
	Content json.RawMessage `json:"content"`
}

// Post represents a published post
type Post struct {
	ID        int64     `gorm:"primaryKey;autoIncrement;column:id"`
	AccountID int64     `gorm:"not null;index;column:account_id"`
	Title     string    `gorm:"type:varchar(255);not null;column:title"`
	Preview   string    `gorm:"type:varchar(1024);not null;column:preview"`
	Content   string    `gorm:"type:jsonb;not null;column:content"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime;column:created_at"`
}

// TableName specifies the table name for Post
func (Post) TableName() string {
	return "posts"
}

// PostTag represents a post-to-tag mapping
type PostTag struct {
	PostID int64  `gorm:"primaryKey;column:post_id"`
	Tag    string `gorm:"type:varchar(64);primaryKey;column:tag"`
}

// TableName specifies the table name for PostTag
func (PostTag) TableName() string {
	return "post_tags"
}

// Comment represents a comment on a post, optionally replying to
// another comment
type Comment struct {
	ID        int64         `gorm:"primaryKey;autoIncrement;column:id"`
	PostID    int64         `gorm:"not null;index;column:post_id"`
	AccountID int64         `gorm:"not null;index;column:account_id"`
	Body      string        `gorm:"type:text;not null;column:body"`
	AnswerTo  *int64        `gorm:"column:answer_to"`
	CreatedAt time.Time     `gorm:"not null;autoCreateTime;column:created_at"`
}

// TableName specifies the table name for Comment
func (Comment) TableName() string {
	return "comments"
}
