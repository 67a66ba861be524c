package db

import (
	"context"
	"strconv"
	"time"

	"github.com/falco-social/falco/internal/models"
)

// NotificationsPerPage is the fixed page size for notification listings.
const NotificationsPerPage = 10

// NotificationRepository provides notification persistence
type NotificationRepository struct {
	*Repository
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(repo *Repository) *NotificationRepository {
	return &NotificationRepository{Repository: repo}
}

// Create inserts a notification row
func (r *NotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	return r.db.WithContext(ctx).Create(n).Error
}

// List returns a page of the account's notifications, newest first, with
// the pre-pagination total. The timestamp cursor keeps rows created strictly
// before the given instant.
func (r *NotificationRepository) List(ctx context.Context, accountID int64, page int, before time.Time) ([]models.Notification, int64, error) {
	query := r.db.WithContext(ctx).Table("notifications").
		Select("notifications.*, COUNT(*) OVER() AS total_count").
		Where("target_id = ?", accountID).
		Order("created_at DESC")
	if !before.IsZero() {
		query = query.Where("created_at < ?", before)
	}
	if page > 0 {
		query = query.Offset(PageOffset(page, NotificationsPerPage)).Limit(NotificationsPerPage)
	}

	var rows []struct {
		models.Notification
		TotalCount int64
	}
	if err := query.Scan(&rows).Error; err != nil {
		return nil, 0, err
	}
	out := make([]models.Notification, 0, len(rows))
	var total int64
	for i, row := range rows {
		if i == 0 {
			total = row.TotalCount
		}
		out = append(out, row.Notification)
	}
	return out, total, nil
}

// MarkAllRead flags every notification targeting the account as read
func (r *NotificationRepository) MarkAllRead(ctx context.Context, accountID int64) error {
	return r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("target_id = ?", accountID).
		Update("read", true).Error
}

// CountUnread counts unread notifications targeting the account
func (r *NotificationRepository) CountUnread(ctx context.Context, accountID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("target_id = ? AND read = false", accountID).
		Count(&count).Error
	return count, err
}

// DeleteLike removes the like notification matching the sender and the post
// referenced by the payload. Notification existence mirrors the engagement
// edge.
func (r *NotificationRepository) DeleteLike(ctx context.Context, senderID, postID int64) error {
	return r.db.WithContext(ctx).
		Where("sender_id = ? AND type = ?", senderID, models.NotifyTypePostLike).
		Where("payload->>'post_id' = ?", strconv.FormatInt(postID, 10)).
		Delete(&models.Notification{}).Error
}

// DeleteSubscription removes the subscription notification for the
// sender/target pair
func (r *NotificationRepository) DeleteSubscription(ctx context.Context, senderID, targetID int64) error {
	return r.db.WithContext(ctx).
		Where("sender_id = ? AND target_id = ? AND type = ?", senderID, targetID, models.NotifyTypeSubscription).
		Delete(&models.Notification{}).Error
}
