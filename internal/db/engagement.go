package db

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/falco-social/falco/internal/models"
)

// ErrEdgeExists is returned when an engagement-edge insert collides with an
// existing edge. The composite primary keys turn a concurrent double-toggle
// into this error instead of a duplicate row.
var ErrEdgeExists = errors.New("engagement edge already exists")

// EngagementRepository manages like/bookmark/subscription edges
type EngagementRepository struct {
	*Repository
}

// NewEngagementRepository creates a new engagement repository
func NewEngagementRepository(repo *Repository) *EngagementRepository {
	return &EngagementRepository{Repository: repo}
}

func (r *EngagementRepository) insert(ctx context.Context, edge interface{}) error {
	if err := r.db.WithContext(ctx).Create(edge).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrEdgeExists
		}
		return err
	}
	return nil
}

// PostLikeExists reports whether the account has liked the post
func (r *EngagementRepository) PostLikeExists(ctx context.Context, accountID, postID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.PostLike{}).
		Where("account_id = ? AND post_id = ?", accountID, postID).Count(&count).Error
	return count > 0, err
}

// InsertPostLike creates a post-like edge
func (r *EngagementRepository) InsertPostLike(ctx context.Context, accountID, postID int64) error {
	return r.insert(ctx, &models.PostLike{AccountID: accountID, PostID: postID})
}

// DeletePostLike removes a post-like edge
func (r *EngagementRepository) DeletePostLike(ctx context.Context, accountID, postID int64) error {
	return r.db.WithContext(ctx).
		Where("account_id = ? AND post_id = ?", accountID, postID).
		Delete(&models.PostLike{}).Error
}

// CommentLikeExists reports whether the account has liked the comment
func (r *EngagementRepository) CommentLikeExists(ctx context.Context, accountID, commentID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.CommentLike{}).
		Where("account_id = ? AND comment_id = ?", accountID, commentID).Count(&count).Error
	return count > 0, err
}

// InsertCommentLike creates a comment-like edge
func (r *EngagementRepository) InsertCommentLike(ctx context.Context, accountID, commentID int64) error {
	return r.insert(ctx, &models.CommentLike{AccountID: accountID, CommentID: commentID})
}

// DeleteCommentLike removes a comment-like edge
func (r *EngagementRepository) DeleteCommentLike(ctx context.Context, accountID, commentID int64) error {
	return r.db.WithContext(ctx).
		Where("account_id = ? AND comment_id = ?", accountID, commentID).
		Delete(&models.CommentLike{}).Error
}

// BookmarkExists reports whether the account has saved the post
func (r *EngagementRepository) BookmarkExists(ctx context.Context, accountID, postID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Bookmark{}).
		Where("account_id = ? AND post_id = ?", accountID, postID).Count(&count).Error
	return count > 0, err
}

// InsertBookmark creates a bookmark edge
func (r *EngagementRepository) InsertBookmark(ctx context.Context, accountID, postID int64) error {
	return r.insert(ctx, &models.Bookmark{AccountID: accountID, PostID: postID})
}

// DeleteBookmark removes a bookmark edge
func (r *EngagementRepository) DeleteBookmark(ctx context.Context, accountID, postID int64) error {
	return r.db.WithContext(ctx).
		Where("account_id = ? AND post_id = ?", accountID, postID).
		Delete(&models.Bookmark{}).Error
}

// SubscriptionExists reports whether subject subscribes to object
func (r *EngagementRepository) SubscriptionExists(ctx context.Context, subjectID, objectID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Subscription{}).
		Where("subject_id = ? AND object_id = ?", subjectID, objectID).Count(&count).Error
	return count > 0, err
}

// InsertSubscription creates a subscription edge
func (r *EngagementRepository) InsertSubscription(ctx context.Context, subjectID, objectID int64) error {
	return r.insert(ctx, &models.Subscription{SubjectID: subjectID, ObjectID: objectID})
}

// DeleteSubscription removes a subscription edge
func (r *EngagementRepository) DeleteSubscription(ctx context.Context, subjectID, objectID int64) error {
	return r.db.WithContext(ctx).
		Where("subject_id = ? AND object_id = ?", subjectID, objectID).
		Delete(&models.Subscription{}).Error
}
