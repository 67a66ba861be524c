package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/falco-social/falco/internal/db"
	"github.com/falco-social/falco/internal/models"
	"github.com/falco-social/falco/pkg/logging"
)

// CommentService implements comment creation, listing, deletion and likes
type CommentService struct {
	comments   *db.CommentRepository
	posts      *db.PostRepository
	engagement *db.EngagementRepository
	logger     *zap.Logger
}

// NewCommentService creates a new comment service
func NewCommentService(repo *db.Repository) *CommentService {
	return &CommentService{
		comments:   db.NewCommentRepository(repo),
		posts:      db.NewPostRepository(repo),
		engagement: db.NewEngagementRepository(repo),
		logger:     logging.WithComponent("comment-service"),
	}
}

// CreateCommentInput is the data required to post a comment
type CreateCommentInput struct {
	Body     string `json:"body" binding:"required"`
	AnswerTo *int64 `json:"answer_to"`
}

// Create persists a comment on an existing post. Notification dispatch is
// the caller's responsibility.
func (s *CommentService) Create(ctx context.Context, in CreateCommentInput, postID, accountID int64) (*models.Comment, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("post lookup: %w", err)
	}
	if post == nil {
		return nil, NotFound("post not found")
	}

	comment := &models.Comment{
		PostID:    postID,
		AccountID: accountID,
		Body:      in.Body,
		AnswerTo:  in.AnswerTo,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	return comment, nil
}

// GetByID returns a single annotated comment
func (s *CommentService) GetByID(ctx context.Context, commentID, viewerID int64) (*db.CommentRow, error) {
	row, err := s.comments.GetRow(ctx, commentID, viewerID)
	if err != nil {
		return nil, fmt.Errorf("comment lookup: %w", err)
	}
	if row == nil {
		return nil, NotFound("comment not found")
	}
	return row, nil
}

// ListByPost returns the annotated comments of a post
func (s *CommentService) ListByPost(ctx context.Context, postID, viewerID int64) ([]db.CommentRow, error) {
	rows, err := s.comments.ListByPost(ctx, postID, viewerID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return rows, nil
}

// ToggleLike flips the like edge for (sender, comment)
func (s *CommentService) ToggleLike(ctx context.Context, commentID, senderID int64) error {
	if senderID == 0 {
		return Unauthorized("authentication required")
	}
	liked, err := s.engagement.CommentLikeExists(ctx, senderID, commentID)
	if err != nil {
		return fmt.Errorf("like lookup: %w", err)
	}
	if liked {
		if err := s.engagement.DeleteCommentLike(ctx, senderID, commentID); err != nil {
			return fmt.Errorf("delete like: %w", err)
		}
		return nil
	}
	if err := s.engagement.InsertCommentLike(ctx, senderID, commentID); err != nil {
		if errors.Is(err, db.ErrEdgeExists) {
			return nil
		}
		return fmt.Errorf("insert like: %w", err)
	}
	return nil
}

// Delete removes a comment. Only the owner may delete it.
func (s *CommentService) Delete(ctx context.Context, commentID, accountID int64) error {
	comment, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		return fmt.Errorf("comment lookup: %w", err)
	}
	if comment == nil {
		return NotFound("comment not found")
	}
	if comment.AccountID != accountID {
		return Forbidden("only the owner can delete a comment")
	}
	if err := s.comments.Delete(ctx, commentID, accountID); err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	return nil
}
