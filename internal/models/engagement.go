package models

import "time"

// Engagement edges are (subject, object) pairs whose existence means
// "active". Composite primary keys make concurrent double-inserts collide at
// the storage layer instead of silently duplicating the edge.

// PostLike marks that an account liked a post
type PostLike struct {
	AccountID int64     `gorm:"primaryKey;column:account_id"`
	PostID    int64     `gorm:"primaryKey;column:post_id"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime;column:created_at"`
}

// TableName specifies the table name for PostLike
func (PostLike) TableName() string {
	return "post_likes"
}

// CommentLike marks that an account liked a comment
type CommentLike struct {
	AccountID int64     `gorm:"primaryKey;column:account_id"`
	CommentID int64     `gorm:"primaryKey;column:comment_id"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime;column:created_at"`
}

// TableName specifies the table name for CommentLike
func (CommentLike) TableName() string {
	return "comment_likes"
}

// Bookmark marks that an account saved a post
type Bookmark struct {
	AccountID int64     `gorm:"primaryKey;column:account_id"`
	PostID    int64     `gorm:"primaryKey;column:post_id"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime;column:created_at"`
}

// TableName specifies the table name for Bookmark
func (Bookmark) TableName() string {
	return "bookmarks"
}

// Subscription marks that the subject account follows the object account
type Subscription struct {
	SubjectID int64     `gorm:"primaryKey;column:subject_id"`
	ObjectID  int64     `gorm:"primaryKey;column:object_id"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime;column:created_at"`
}

// TableName specifies the table name for Subscription
func (Subscription) TableName() string {
	return "subscriptions"
}
