package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/falco-social/falco/internal/models"
)

// CommentRow is one annotated row of a comment listing
type CommentRow struct {
	ID              int64          `json:"id"`
	PostID          int64          `json:"post_id"`
	AccountID       int64          `json:"user_id"`
	Body            string         `json:"body"`
	AnswerTo        *int64         `json:"answer_to"`
	CreatedAt       time.Time      `json:"created_at"`
	AuthorNickname  string         `json:"user_nickname"`
	AuthorAvatarURL sql.NullString `json:"user_avatar_url"`
	LikesCount      int64          `json:"likes_count"`
	UserLike        bool           `json:"user_like"`
}

// CommentRepository provides comment-related database operations
type CommentRepository struct {
	*Repository
}

// NewCommentRepository creates a new comment repository
func NewCommentRepository(repo *Repository) *CommentRepository {
	return &CommentRepository{Repository: repo}
}

func (r *CommentRepository) annotated(ctx context.Context, viewerID int64) *gorm.DB {
	cols := `comments.*,
		accounts.nickname AS author_nickname,
		accounts.avatar_url AS author_avatar_url,
		(SELECT COUNT(*) FROM comment_likes WHERE comment_likes.comment_id = comments.id) AS likes_count`
	args := []interface{}{}
	if viewerID != 0 {
		cols += `,
		EXISTS(SELECT 1 FROM comment_likes WHERE comment_likes.account_id = ? AND comment_likes.comment_id = comments.id) AS user_like`
		args = append(args, viewerID)
	}
	return r.db.WithContext(ctx).Table("comments").
		Select(cols, args...).
		Joins("JOIN accounts ON accounts.id = comments.account_id")
}

// GetRow returns a single annotated comment, or nil if absent
func (r *CommentRepository) GetRow(ctx context.Context, id, viewerID int64) (*CommentRow, error) {
	var rows []CommentRow
	if err := r.annotated(ctx, viewerID).Where("comments.id = ?", id).Scan(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// ListByPost returns the annotated comments of a post, oldest first
func (r *CommentRepository) ListByPost(ctx context.Context, postID, viewerID int64) ([]CommentRow, error) {
	var rows []CommentRow
	err := r.annotated(ctx, viewerID).
		Where("comments.post_id = ?", postID).
		Order("comments.created_at ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// GetByID retrieves a bare comment row by ID
func (r *CommentRepository) GetByID(ctx context.Context, id int64) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).First(&comment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &comment, nil
}

// Create inserts a comment
func (r *CommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

// Delete removes a comment owned by the given account
func (r *CommentRepository) Delete(ctx context.Context, id, accountID int64) error {
	return r.db.WithContext(ctx).
		Where("id = ? AND account_id = ?", id, accountID).
		Delete(&models.Comment{}).Error
}
