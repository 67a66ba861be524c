package db

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/falco-social/falco/internal/models"
)

// PostsPerPage is the fixed page size for post listings.
const PostsPerPage = 10

// PostQuery is the orthogonal set of optional filters for a post listing.
// Zero values mean "not requested". All filters are AND-combined.
type PostQuery struct {
	// ID restricts the listing to a single post.
	ID int64
	// Tags keeps only posts carrying every requested tag (extra tags on
	// the post are allowed). Matching is case-insensitive.
	Tags []string
	// Sort is "new" for created_at descending (also the default); any
	// other non-empty value sorts by like count, created_at breaking ties.
	Sort string
	// AuthorID restricts to posts by a specific author.
	AuthorID int64
	// Page selects an offset window of PostsPerPage rows. Zero or
	// negative disables pagination.
	Page int
	// Before keeps rows created strictly before the given instant. It
	// combines with Page: the offset applies to the already-restricted set.
	Before time.Time
	// Search is a free-text match against the title or any text content
	// block.
	Search string
	// ViewerID adds the user_like / user_saved annotation columns.
	ViewerID int64
	// FeedOf restricts to posts authored by accounts this account
	// subscribes to.
	FeedOf int64
	// SavedBy restricts to posts bookmarked by this account.
	SavedBy int64
}

// PostRow is one annotated row of a post listing. TotalCount is the window
// total of matching rows before pagination.
type PostRow struct {
	ID              int64          `json:"id"`
	AccountID       int64          `json:"user_id"`
	Title           string         `json:"title"`
	Preview         string         `json:"preview"`
	Content         string         `json:"-"`
	CreatedAt       time.Time      `json:"created_at"`
	AuthorNickname  string         `json:"user_nickname"`
	AuthorAvatarURL sql.NullString `json:"user_avatar_url"`
	Tags            string         `json:"-"`
	LikesCount      int64          `json:"likes_count"`
	CommentsCount   int64          `json:"comments_count"`
	UserLike        bool           `json:"user_like"`
	UserSaved       bool           `json:"user_saved"`
	TotalCount      int64          `json:"-"`
}

// PostRepository provides post-related database operations
type PostRepository struct {
	*Repository
}

// NewPostRepository creates a new post repository
func NewPostRepository(repo *Repository) *PostRepository {
	return &PostRepository{Repository: repo}
}

// List runs the composed listing query and returns the annotated rows plus
// the pre-pagination total.
func (r *PostRepository) List(ctx context.Context, q PostQuery) ([]PostRow, int64, error) {
	var rows []PostRow
	if err := r.compose(ctx, q).Scan(&rows).Error; err != nil {
		return nil, 0, err
	}
	var total int64
	if len(rows) > 0 {
		total = rows[0].TotalCount
	}
	return rows, total, nil
}

// GetRow returns a single annotated post row, or nil if absent
func (r *PostRepository) GetRow(ctx context.Context, id, viewerID int64) (*PostRow, error) {
	rows, _, err := r.List(ctx, PostQuery{ID: id, ViewerID: viewerID})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// compose builds the listing query from independently applied predicate
// builders, one per filter field.
func (r *PostRepository) compose(ctx context.Context, q PostQuery) *gorm.DB {
	query := r.db.WithContext(ctx).Table("posts").
		Select(selectColumns(q.ViewerID), selectArgs(q.ViewerID)...).
		Joins("JOIN accounts ON accounts.id = posts.account_id")

	query = byID(query, q.ID)
	query = byTags(query, q.Tags)
	query = byAuthor(query, q.AuthorID)
	query = bySearch(query, q.Search)
	query = olderThan(query, q.Before)
	query = feedOf(query, q.FeedOf)
	query = savedBy(query, q.SavedBy)
	query = ordered(query, q.Sort)
	query = paged(query, q.Page, PostsPerPage)
	return query
}

func selectColumns(viewerID int64) string {
	cols := `posts.*,
		accounts.nickname AS author_nickname,
		accounts.avatar_url AS author_avatar_url,
		(SELECT COALESCE(STRING_AGG(post_tags.tag, ','), '') FROM post_tags WHERE post_tags.post_id = posts.id) AS tags,
		(SELECT COUNT(*) FROM post_likes WHERE post_likes.post_id = posts.id) AS likes_count,
		(SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id) AS comments_count,
		COUNT(*) OVER() AS total_count`
	if viewerID != 0 {
		cols += `,
		EXISTS(SELECT 1 FROM post_likes WHERE post_likes.account_id = ? AND post_likes.post_id = posts.id) AS user_like,
		EXISTS(SELECT 1 FROM bookmarks WHERE bookmarks.account_id = ? AND bookmarks.post_id = posts.id) AS user_saved`
	}
	return cols
}

func selectArgs(viewerID int64) []interface{} {
	if viewerID == 0 {
		return nil
	}
	return []interface{}{viewerID, viewerID}
}

func byID(query *gorm.DB, id int64) *gorm.DB {
	if id == 0 {
		return query
	}
	return query.Where("posts.id = ?", id)
}

// byTags keeps posts whose tag set contains every requested tag: the count
// of the post's tags intersecting the requested set must equal the size of
// the requested set.
func byTags(query *gorm.DB, tags []string) *gorm.DB {
	normalized := NormalizeTags(tags)
	if len(normalized) == 0 {
		return query
	}
	return query.Where(
		"(SELECT COUNT(*) FROM post_tags WHERE post_tags.post_id = posts.id AND post_tags.tag IN ?) = ?",
		normalized, len(normalized),
	)
}

func byAuthor(query *gorm.DB, authorID int64) *gorm.DB {
	if authorID == 0 {
		return query
	}
	return query.Where("posts.account_id = ?", authorID)
}

// bySearch matches the title or any text-typed content block against the
// combined search pattern.
func bySearch(query *gorm.DB, search string) *gorm.DB {
	pattern := SearchPattern(search)
	if pattern == "" {
		return query
	}
	return query.Where(
		`(EXISTS(SELECT 1 FROM jsonb_array_elements(posts.content) AS el
			WHERE el->>'type' = 'text' AND el->>'content' ILIKE ?)
		OR posts.title ILIKE ?)`,
		pattern, pattern,
	)
}

func olderThan(query *gorm.DB, before time.Time) *gorm.DB {
	if before.IsZero() {
		return query
	}
	return query.Where("posts.created_at < ?", before)
}

func feedOf(query *gorm.DB, viewerID int64) *gorm.DB {
	if viewerID == 0 {
		return query
	}
	return query.
		Joins("JOIN subscriptions ON subscriptions.object_id = posts.account_id").
		Where("subscriptions.subject_id = ?", viewerID)
}

func savedBy(query *gorm.DB, accountID int64) *gorm.DB {
	if accountID == 0 {
		return query
	}
	return query.
		Joins("JOIN bookmarks AS saved ON saved.post_id = posts.id").
		Where("saved.account_id = ?", accountID)
}

func ordered(query *gorm.DB, sort string) *gorm.DB {
	for _, clause := range OrderClauses(sort) {
		query = query.Order(clause)
	}
	return query
}

func paged(query *gorm.DB, page, perPage int) *gorm.DB {
	if page <= 0 {
		return query
	}
	return query.Offset(PageOffset(page, perPage)).Limit(perPage)
}

// Create inserts a post with its tag set
func (r *PostRepository) Create(ctx context.Context, post *models.Post, tags []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(post).Error; err != nil {
			return err
		}
		normalized := NormalizeTags(tags)
		if len(normalized) == 0 {
			return nil
		}
		rows := make([]models.PostTag, 0, len(normalized))
		for _, tag := range normalized {
			rows = append(rows, models.PostTag{PostID: post.ID, Tag: tag})
		}
		return tx.Create(&rows).Error
	})
}

// GetByID retrieves a bare post row by ID
func (r *PostRepository) GetByID(ctx context.Context, id int64) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &post, nil
}

// Delete removes a post row
func (r *PostRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&models.Post{}, id).Error
}

// NormalizeTags lower-cases, trims and de-blanks a tag set
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag != "" {
			out = append(out, tag)
		}
	}
	return out
}

// SearchPattern builds the SQL pattern for a free-text search. The query is
// split on whitespace and joined into a single phrase-with-wildcards
// pattern; tokens do not match independently.
func SearchPattern(search string) string {
	fields := strings.Fields(search)
	if len(fields) == 0 {
		return ""
	}
	return "%" + strings.Join(fields, "%") + "%"
}

// OrderClauses returns the ORDER BY clauses for a sort value
func OrderClauses(sort string) []string {
	if sort == "" || sort == "new" {
		return []string{"posts.created_at DESC"}
	}
	return []string{"likes_count DESC", "posts.created_at DESC"}
}

// PageOffset computes the row offset of a 1-based page
func PageOffset(page, perPage int) int {
	return perPage * (page - 1)
}

// PagesCount computes ceil(total / perPage)
func PagesCount(total int64, perPage int) int64 {
	if total <= 0 {
		return 0
	}
	return (total + int64(perPage) - 1) / int64(perPage)
}
