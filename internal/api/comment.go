package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/falco-social/falco/internal/service"
	"github.com/falco-social/falco/pkg/logging"
)

// CommentHandler exposes the comment routes. Comment and reply notifications
// are dispatched here, after the comment is stored.
type CommentHandler struct {
	comments      *service.CommentService
	notifications *service.NotificationService
	mw            *Middleware
	logger        *zap.Logger
}

// NewCommentHandler creates a new comment handler
func NewCommentHandler(comments *service.CommentService, notifications *service.NotificationService, mw *Middleware) *CommentHandler {
	return &CommentHandler{
		comments:      comments,
		notifications: notifications,
		mw:            mw,
		logger:        logging.WithComponent("comment-handler"),
	}
}

// Register registers the handler's routes on the given group
func (h *CommentHandler) Register(group *gin.RouterGroup) {
	group.POST("/post/:id", h.mw.RequireAuth(), h.create)
	group.GET("/post/:id", h.mw.OptionalAuth(), h.listByPost)
	group.GET("/id/:id", h.mw.OptionalAuth(), h.get)
	group.PUT("/like/:id", h.mw.RequireAuth(), h.toggleLike)
	group.DELETE("/id/:id", h.mw.RequireAuth(), h.delete)
}

func (h *CommentHandler) create(c *gin.Context) {
	postID, ok := paramID(c)
	if !ok {
		return
	}
	var in service.CreateCommentInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondBinding(c, err)
		return
	}
	sender := viewerID(c)
	comment, err := h.comments.Create(c.Request.Context(), in, postID, sender)
	if err != nil {
		respondError(c, err)
		return
	}

	// A failed notification does not fail the already-stored comment
	ctx := c.Request.Context()
	if err := h.notifications.SendComment(ctx, sender, comment.ID, postID); err != nil {
		h.logger.Warn("Comment notification failed", zap.Error(err))
	}
	if comment.AnswerTo != nil {
		if err := h.notifications.SendReply(ctx, sender, comment.ID, *comment.AnswerTo); err != nil {
			h.logger.Warn("Reply notification failed", zap.Error(err))
		}
	}

	row, err := h.comments.GetByID(ctx, comment.ID, sender)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, row)
}

func (h *CommentHandler) listByPost(c *gin.Context) {
	postID, ok := paramID(c)
	if !ok {
		return
	}
	rows, err := h.comments.ListByPost(c.Request.Context(), postID, viewerID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

func (h *CommentHandler) get(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	row, err := h.comments.GetByID(c.Request.Context(), id, viewerID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, row)
}

func (h *CommentHandler) toggleLike(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	if err := h.comments.ToggleLike(c.Request.Context(), id, viewerID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "ok"})
}

func (h *CommentHandler) delete(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	if err := h.comments.Delete(c.Request.Context(), id, viewerID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "ok"})
}
