package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/falco-social/falco/internal/db"
	"github.com/falco-social/falco/internal/models"
	"github.com/falco-social/falco/pkg/logging"
)

// NotificationService emits and lists notifications. Creation always skips
// self-targeted events; like and subscription notifications are deleted when
// the underlying engagement is retracted.
type NotificationService struct {
	notifications *db.NotificationRepository
	posts         *db.PostRepository
	comments      *db.CommentRepository
	logger        *zap.Logger
}

// NewNotificationService creates a new notification service
func NewNotificationService(repo *db.Repository) *NotificationService {
	return &NotificationService{
		notifications: db.NewNotificationRepository(repo),
		posts:         db.NewPostRepository(repo),
		comments:      db.NewCommentRepository(repo),
		logger:        logging.WithComponent("notification-service"),
	}
}

// Notification is the rendered listing row
type Notification struct {
	ID        int64           `json:"id"`
	Type      string          `json:"type"`
	SenderID  int64           `json:"sender_id"`
	TargetID  int64           `json:"target_id"`
	Payload   json.RawMessage `json:"payload"`
	Read      bool            `json:"read"`
	CreatedAt time.Time       `json:"created_at"`
}

// NotificationSet is a page of notifications plus the page count of the
// whole matching set
type NotificationSet struct {
	PagesCount int64          `json:"pages_count"`
	Contents   []Notification `json:"contents"`
}

// GetAll returns a page of the account's notifications and, as a side
// effect, marks all of the account's notifications read
func (s *NotificationService) GetAll(ctx context.Context, accountID int64, page int, before time.Time) (*NotificationSet, error) {
	rows, total, err := s.notifications.List(ctx, accountID, page, before)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}

	set := &NotificationSet{
		PagesCount: db.PagesCount(total, db.NotificationsPerPage),
		Contents:   make([]Notification, 0, len(rows)),
	}
	for i := range rows {
		set.Contents = append(set.Contents, renderNotification(&rows[i]))
	}

	if err := s.notifications.MarkAllRead(ctx, accountID); err != nil {
		return nil, fmt.Errorf("mark read: %w", err)
	}
	return set, nil
}

// UnreadCount counts the account's unread notifications
func (s *NotificationService) UnreadCount(ctx context.Context, accountID int64) (int64, error) {
	return s.notifications.CountUnread(ctx, accountID)
}

// SendLike emits a like notification to the post owner, or removes it when
// the like was retracted
func (s *NotificationService) SendLike(ctx context.Context, senderID, postID int64, active bool) error {
	if postID == 0 {
		return BadRequest("post required")
	}
	if !active {
		return s.notifications.DeleteLike(ctx, senderID, postID)
	}

	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return fmt.Errorf("post lookup: %w", err)
	}
	if post == nil {
		return BadRequest("post not found")
	}
	if senderID == post.AccountID {
		return nil
	}
	return s.create(ctx, models.NotifyTypePostLike, senderID, post.AccountID, map[string]interface{}{
		"post_id":    postID,
		"post_title": post.Title,
	})
}

// SendComment emits a comment notification to the post owner
func (s *NotificationService) SendComment(ctx context.Context, senderID, commentID, postID int64) error {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return fmt.Errorf("post lookup: %w", err)
	}
	if post == nil {
		return BadRequest("post not found")
	}
	if senderID == post.AccountID {
		return nil
	}
	return s.create(ctx, models.NotifyTypeComment, senderID, post.AccountID, map[string]interface{}{
		"post_id":    postID,
		"post_title": post.Title,
		"comment_id": commentID,
	})
}

// SendReply emits a reply notification to the parent comment's owner
func (s *NotificationService) SendReply(ctx context.Context, senderID, commentID, answerTo int64) error {
	parent, err := s.comments.GetByID(ctx, answerTo)
	if err != nil {
		return fmt.Errorf("comment lookup: %w", err)
	}
	if parent == nil {
		return BadRequest("comment not found")
	}
	if senderID == parent.AccountID {
		return nil
	}
	return s.create(ctx, models.NotifyTypeReply, senderID, parent.AccountID, map[string]interface{}{
		"post_id":    parent.PostID,
		"answer_to":  answerTo,
		"comment_id": commentID,
	})
}

// SendSubscribe emits a subscription notification to the target account, or
// removes it when the subscription was retracted
func (s *NotificationService) SendSubscribe(ctx context.Context, senderID, targetID int64, active bool) error {
	if targetID == 0 {
		return BadRequest("target required")
	}
	if !active {
		return s.notifications.DeleteSubscription(ctx, senderID, targetID)
	}
	if senderID == targetID {
		return nil
	}
	return s.create(ctx, models.NotifyTypeSubscription, senderID, targetID, nil)
}

func (s *NotificationService) create(ctx context.Context, typ string, senderID, targetID int64, payload map[string]interface{}) error {
	n := &models.Notification{
		Type:     typ,
		SenderID: senderID,
		TargetID: targetID,
	}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode payload: %w", err)
		}
		n.Payload = sql.NullString{String: string(raw), Valid: true}
	}
	if err := s.notifications.Create(ctx, n); err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	s.logger.Debug("Notification created",
		zap.String("type", typ),
		zap.Int64("sender_id", senderID),
		zap.Int64("target_id", targetID))
	return nil
}

func renderNotification(n *models.Notification) Notification {
	out := Notification{
		ID:        n.ID,
		Type:      n.Type,
		SenderID:  n.SenderID,
		TargetID:  n.TargetID,
		Read:      n.Read,
		CreatedAt: n.CreatedAt,
	}
	if n.Payload.Valid {
		out.Payload = json.RawMessage(n.Payload.String)
	}
	return out
}
