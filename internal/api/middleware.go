package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/falco-social/falco/internal/auth"
	"github.com/falco-social/falco/internal/db"
	"github.com/falco-social/falco/pkg/logging"
)

const (
	ctxAccountID = "account_id"
	ctxNickname  = "nickname"
	ctxRole      = "role"
)

// Middleware holds the request-pipeline validators: token verification, ban
// gate and role gate, applied in that order before handlers run.
type Middleware struct {
	tm       *auth.TokenManager
	accounts *db.AccountRepository
	bans     *db.BanRepository
	logger   *zap.Logger
}

// NewMiddleware creates the middleware set
func NewMiddleware(tm *auth.TokenManager, repo *db.Repository) *Middleware {
	return &Middleware{
		tm:       tm,
		accounts: db.NewAccountRepository(repo),
		bans:     db.NewBanRepository(repo),
		logger:   logging.WithComponent("api-auth"),
	}
}

// RequireAuth rejects requests without a valid bearer token (401) and
// requests by banned accounts (403), then stores the identity in the
// request context
func (m *Middleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := m.parseBearer(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "unauthorized"})
			return
		}
		ban, err := m.bans.Active(c.Request.Context(), claims.ID)
		if err != nil {
			respondError(c, err)
			return
		}
		if ban != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "user banned"})
			return
		}
		c.Set(ctxAccountID, claims.ID)
		c.Set(ctxNickname, claims.Nickname)
		c.Next()
	}
}

// OptionalAuth stores the identity when a valid bearer token is present;
// any failure, including an active ban, leaves the request anonymous
func (m *Middleware) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := m.parseBearer(c)
		if err != nil {
			c.Next()
			return
		}
		if ban, err := m.bans.Active(c.Request.Context(), claims.ID); err != nil || ban != nil {
			c.Next()
			return
		}
		c.Set(ctxAccountID, claims.ID)
		c.Set(ctxNickname, claims.Nickname)
		c.Next()
	}
}

// RequireRole loads the authenticated account's role and rejects the
// request unless the role is one of those listed. Runs after RequireAuth.
func (m *Middleware) RequireRole(allowed ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		account, err := m.accounts.GetByID(c.Request.Context(), viewerID(c))
		if err != nil {
			respondError(c, err)
			return
		}
		if account == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "unauthorized"})
			return
		}
		for _, role := range allowed {
			if account.Role == role {
				c.Set(ctxRole, account.Role)
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "insufficient permissions"})
	}
}

func (m *Middleware) parseBearer(c *gin.Context) (*auth.Claims, error) {
	header := c.GetHeader("Authorization")
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found || token == "" {
		return nil, auth.ErrInvalidToken
	}
	return m.tm.Parse(token)
}

// viewerID returns the authenticated account ID, or zero for anonymous
// requests
func viewerID(c *gin.Context) int64 {
	if id, ok := c.Get(ctxAccountID); ok {
		return id.(int64)
	}
	return 0
}

// senderRole returns the role loaded by RequireRole
func senderRole(c *gin.Context) string {
	if role, ok := c.Get(ctxRole); ok {
		return role.(string)
	}
	return ""
}

// paramID parses the :id path parameter
func paramID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "invalid id"})
		return 0, false
	}
	return id, true
}

// queryPage parses the page query parameter. A missing or malformed value
// selects the first page; listings are always paginated.
func queryPage(c *gin.Context) int {
	if page, err := strconv.Atoi(c.Query("page")); err == nil && page > 0 {
		return page
	}
	return 1
}

// queryTimestamp parses the t query parameter, accepting unix milliseconds
// or RFC 3339. A missing or malformed value means "no cursor".
func queryTimestamp(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}
	if ms, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return time.UnixMilli(ms)
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t
	}
	return time.Time{}
}
