package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/falco-social/falco/internal/auth"
	"github.com/falco-social/falco/internal/cache"
	"github.com/falco-social/falco/internal/db"
	"github.com/falco-social/falco/internal/mail"
	"github.com/falco-social/falco/internal/service"
	"github.com/falco-social/falco/pkg/logging"
)

// Router wires the services and registers the REST routes
type Router struct {
	auth     *AuthHandler
	posts    *PostHandler
	comments *CommentHandler
	users    *UserHandler
	db       *db.DB
	logger   *zap.Logger
}

// NewRouter creates a new API router
func NewRouter(database *db.DB, redisCache *cache.Cache, tm *auth.TokenManager, hasher *auth.Hasher, mailer mail.Mailer) *Router {
	repo := db.NewRepository(database.DB)
	mw := NewMiddleware(tm, repo)

	notifications := service.NewNotificationService(repo)
	authService := service.NewAuthService(repo, tm, hasher, mailer)
	postService := service.NewPostService(repo, notifications, redisCache)
	commentService := service.NewCommentService(repo)
	userService := service.NewUserService(repo, notifications, hasher, mailer)

	return &Router{
		auth:     NewAuthHandler(authService),
		posts:    NewPostHandler(postService, mw),
		comments: NewCommentHandler(commentService, notifications, mw),
		users:    NewUserHandler(userService, notifications, repo, mw),
		db:       database,
		logger:   logging.WithComponent("api-router"),
	}
}

// SetupRoutes sets up all API routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	engine.GET("/health", r.healthHandler)

	api := engine.Group("/api")
	r.auth.Register(api.Group("/auth"))
	r.posts.Register(api.Group("/post"))
	r.comments.Register(api.Group("/comment"))
	r.users.Register(api.Group("/user"))
}

// healthHandler handles health check requests
func (r *Router) healthHandler(c *gin.Context) {
	if err := r.db.Health(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "DOWN",
			"service": "falco-api",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "OK",
		"service": "falco-api",
	})
}
