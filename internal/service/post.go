package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/falco-social/falco/internal/cache"
	"github.com/falco-social/falco/internal/db"
	"github.com/falco-social/falco/internal/models"
	"github.com/falco-social/falco/pkg/logging"
)

// PostService implements post listing, creation, deletion and the
// like/bookmark toggles
type PostService struct {
	posts         *db.PostRepository
	accounts      *db.AccountRepository
	engagement    *db.EngagementRepository
	notifications *NotificationService
	cache         *cache.Cache
	logger        *zap.Logger
}

// NewPostService creates a new post service
func NewPostService(repo *db.Repository, notifications *NotificationService, listingCache *cache.Cache) *PostService {
	return &PostService{
		posts:         db.NewPostRepository(repo),
		accounts:      db.NewAccountRepository(repo),
		engagement:    db.NewEngagementRepository(repo),
		notifications: notifications,
		cache:         listingCache,
		logger:        logging.WithComponent("post-service"),
	}
}

// Post is the rendered listing row
type Post struct {
	ID            int64                 `json:"id"`
	Title         string                `json:"title"`
	Preview       string                `json:"preview"`
	Content       []models.ContentBlock `json:"content"`
	CreatedAt     time.Time             `json:"created_at"`
	UserID        int64                 `json:"user_id"`
	UserNickname  string                `json:"user_nickname"`
	UserAvatarURL string                `json:"user_avatar_url,omitempty"`
	Tags          []string              `json:"tags"`
	LikesCount    int64                 `json:"likes_count"`
	CommentsCount int64                 `json:"comments_count"`
	UserLike      bool                  `json:"user_like"`
	UserSaved     bool                  `json:"user_saved"`
}

// PostSet is a page of posts plus the page count of the whole matching set
type PostSet struct {
	PagesCount int64  `json:"pages_count"`
	Contents   []Post `json:"contents"`
}

// CreatePostInput is the data required to publish a post
type CreatePostInput struct {
	Title   string                `json:"title" binding:"required"`
	Preview string                `json:"preview" binding:"required,url"`
	Content []models.ContentBlock `json:"content" binding:"required"`
	Tags    []string              `json:"tags"`
}

// ListOptions mirrors the query parameters of the listing endpoints
type ListOptions struct {
	Tags     []string
	Sort     string
	AuthorID int64
	Page     int
	Before   time.Time
	Search   string
}

// List returns the filtered, sorted, paginated listing annotated for the
// viewer. Anonymous listings are served from cache when possible.
func (s *PostService) List(ctx context.Context, opts ListOptions, viewerID int64) (*PostSet, error) {
	var key string
	if viewerID == 0 {
		key = cache.ListingKey(opts.Tags, opts.Sort, opts.AuthorID, opts.Page, opts.Before, opts.Search)
		if cached, err := s.cache.Get(key); err == nil {
			var set PostSet
			if err := json.Unmarshal([]byte(cached), &set); err == nil {
				return &set, nil
			}
		}
	}

	set, err := s.list(ctx, db.PostQuery{
		Tags:     opts.Tags,
		Sort:     opts.Sort,
		AuthorID: opts.AuthorID,
		Page:     opts.Page,
		Before:   opts.Before,
		Search:   opts.Search,
		ViewerID: viewerID,
	})
	if err != nil {
		return nil, err
	}

	if key != "" {
		if raw, err := json.Marshal(set); err == nil {
			// Cache failures only cost the next request a query
			if err := s.cache.Set(key, raw, cache.ListingTTL); err != nil && !errors.Is(err, cache.ErrCacheDisabled) {
				s.logger.Warn("Listing cache write failed", zap.Error(err))
			}
		}
	}
	return set, nil
}

// GetByID returns a single annotated post
func (s *PostService) GetByID(ctx context.Context, postID, viewerID int64) (*Post, error) {
	row, err := s.posts.GetRow(ctx, postID, viewerID)
	if err != nil {
		return nil, fmt.Errorf("post lookup: %w", err)
	}
	if row == nil {
		return nil, NotFound("post not found")
	}
	post := renderPost(row)
	return &post, nil
}

// Feed returns posts authored by accounts the viewer subscribes to
func (s *PostService) Feed(ctx context.Context, viewerID int64, page int, before time.Time) (*PostSet, error) {
	account, err := s.accounts.GetByID(ctx, viewerID)
	if err != nil {
		return nil, fmt.Errorf("account lookup: %w", err)
	}
	if account == nil {
		return nil, NotFound("user not found")
	}
	return s.list(ctx, db.PostQuery{
		Page:     page,
		Before:   before,
		ViewerID: viewerID,
		FeedOf:   viewerID,
	})
}

// Saved returns the viewer's bookmarked posts
func (s *PostService) Saved(ctx context.Context, viewerID int64) (*PostSet, error) {
	return s.list(ctx, db.PostQuery{
		ViewerID: viewerID,
		SavedBy:  viewerID,
	})
}

// Create publishes a post with its tag set and returns the annotated row
func (s *PostService) Create(ctx context.Context, in CreatePostInput, accountID int64) (*Post, error) {
	content, err := json.Marshal(in.Content)
	if err != nil {
		return nil, BadRequest("invalid content")
	}
	post := &models.Post{
		AccountID: accountID,
		Title:     strings.TrimSpace(in.Title),
		Preview:   in.Preview,
		Content:   string(content),
	}
	if err := s.posts.Create(ctx, post, in.Tags); err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	s.logger.Info("Post created", zap.Int64("post_id", post.ID), zap.Int64("account_id", accountID))
	return s.GetByID(ctx, post.ID, 0)
}

// Delete removes a post. Only the owner may delete it.
func (s *PostService) Delete(ctx context.Context, postID, senderID int64) error {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return fmt.Errorf("post lookup: %w", err)
	}
	if post == nil {
		return NotFound("post not found")
	}
	if post.AccountID != senderID {
		return Forbidden("only the owner can delete a post")
	}
	if err := s.posts.Delete(ctx, postID); err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	return nil
}

// ToggleLike flips the like edge for (sender, post) and mirrors the change
// in notifications
func (s *PostService) ToggleLike(ctx context.Context, postID, senderID int64) error {
	if senderID == 0 {
		return Unauthorized("authentication required")
	}
	liked, err := s.engagement.PostLikeExists(ctx, senderID, postID)
	if err != nil {
		return fmt.Errorf("like lookup: %w", err)
	}
	if liked {
		if err := s.engagement.DeletePostLike(ctx, senderID, postID); err != nil {
			return fmt.Errorf("delete like: %w", err)
		}
		return s.notifications.SendLike(ctx, senderID, postID, false)
	}
	if err := s.engagement.InsertPostLike(ctx, senderID, postID); err != nil {
		// A concurrent toggle already created the edge
		if errors.Is(err, db.ErrEdgeExists) {
			return nil
		}
		return fmt.Errorf("insert like: %w", err)
	}
	return s.notifications.SendLike(ctx, senderID, postID, true)
}

// ToggleSave flips the bookmark edge for (sender, post)
func (s *PostService) ToggleSave(ctx context.Context, postID, senderID int64) error {
	if senderID == 0 {
		return Unauthorized("authentication required")
	}
	saved, err := s.engagement.BookmarkExists(ctx, senderID, postID)
	if err != nil {
		return fmt.Errorf("bookmark lookup: %w", err)
	}
	if saved {
		if err := s.engagement.DeleteBookmark(ctx, senderID, postID); err != nil {
			return fmt.Errorf("delete bookmark: %w", err)
		}
		return nil
	}
	if err := s.engagement.InsertBookmark(ctx, senderID, postID); err != nil {
		if errors.Is(err, db.ErrEdgeExists) {
			return nil
		}
		return fmt.Errorf("insert bookmark: %w", err)
	}
	return nil
}

func (s *PostService) list(ctx context.Context, q db.PostQuery) (*PostSet, error) {
	rows, total, err := s.posts.List(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	set := &PostSet{
		PagesCount: db.PagesCount(total, db.PostsPerPage),
		Contents:   make([]Post, 0, len(rows)),
	}
	for i := range rows {
		set.Contents = append(set.Contents, renderPost(&rows[i]))
	}
	return set, nil
}

// renderPost decodes the stored content blocks and tag aggregate of a
// listing row
func renderPost(row *db.PostRow) Post {
	post := Post{
		ID:            row.ID,
		Title:         row.Title,
		Preview:       row.Preview,
		CreatedAt:     row.CreatedAt,
		UserID:        row.AccountID,
		UserNickname:  row.AuthorNickname,
		LikesCount:    row.LikesCount,
		CommentsCount: row.CommentsCount,
		UserLike:      row.UserLike,
		UserSaved:     row.UserSaved,
		Tags:          []string{},
		Content:       []models.ContentBlock{},
	}
	if row.AuthorAvatarURL.Valid {
		post.UserAvatarURL = row.AuthorAvatarURL.String
	}
	if row.Tags != "" {
		post.Tags = strings.Split(row.Tags, ",")
	}
	if row.Content != "" {
		// Stored as JSONB; a decode failure leaves the content empty
		_ = json.Unmarshal([]byte(row.Content), &post.Content)
	}
	return post
}
