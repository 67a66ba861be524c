package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/falco-social/falco/internal/db"
	"github.com/falco-social/falco/internal/roles"
	"github.com/falco-social/falco/internal/service"
)

// UserHandler exposes profile, subscription, notification and moderation
// routes
type UserHandler struct {
	users         *service.UserService
	notifications *service.NotificationService
	accounts      *db.AccountRepository
	mw            *Middleware
}

// NewUserHandler creates a new user handler
func NewUserHandler(users *service.UserService, notifications *service.NotificationService, repo *db.Repository, mw *Middleware) *UserHandler {
	return &UserHandler{
		users:         users,
		notifications: notifications,
		accounts:      db.NewAccountRepository(repo),
		mw:            mw,
	}
}

// Register registers the handler's routes on the given group
func (h *UserHandler) Register(group *gin.RouterGroup) {
	group.GET("/id/:id", h.mw.OptionalAuth(), h.get)
	group.GET("/subscriptions/:id", h.mw.OptionalAuth(), h.subscriptions)
	group.GET("/subscribers/:id", h.mw.OptionalAuth(), h.subscribers)
	group.PUT("/profile/:id", h.mw.RequireAuth(), h.updateProfile)
	group.PUT("/password", h.mw.RequireAuth(), h.updatePassword)
	group.PUT("/email", h.mw.RequireAuth(), h.updateEmail)
	group.GET("/email_confirm", h.confirmEmail)
	group.DELETE("/delete/:id", h.mw.RequireAuth(), h.delete)
	group.PUT("/subscribe/:id", h.mw.RequireAuth(), h.toggleSubscribe)
	group.POST("/ban/:id", h.mw.RequireAuth(), h.mw.RequireRole(roles.Moderator, roles.Admin), h.ban)
	group.GET("/ban/:id", h.banStatus)
	group.GET("/notifications", h.mw.RequireAuth(), h.listNotifications)
	group.GET("/notifications_count", h.mw.RequireAuth(), h.countNotifications)
}

// canActOn authorizes an action on a target account: the owner always may,
// anyone else needs a role granting the permission
func (h *UserHandler) canActOn(c *gin.Context, targetID int64, permission string) (bool, error) {
	sender := viewerID(c)
	if sender == targetID {
		return true, nil
	}
	account, err := h.accounts.GetByID(c.Request.Context(), sender)
	if err != nil {
		return false, err
	}
	if account == nil {
		return false, nil
	}
	return roles.HasPermission(account.Role, permission), nil
}

func (h *UserHandler) get(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	profile, err := h.users.GetByID(c.Request.Context(), id, viewerID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (h *UserHandler) subscriptions(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	rows, err := h.users.Subscriptions(c.Request.Context(), id, viewerID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

func (h *UserHandler) subscribers(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	rows, err := h.users.Subscribers(c.Request.Context(), id, viewerID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

func (h *UserHandler) updateProfile(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	allowed, err := h.canActOn(c, id, "user:update:user")
	if err != nil {
		respondError(c, err)
		return
	}
	if !allowed {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "insufficient permissions"})
		return
	}
	var in service.UpdateProfileInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondBinding(c, err)
		return
	}
	profile, err := h.users.UpdateProfile(c.Request.Context(), id, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

type passwordInput struct {
	OldPassword string `json:"oldPassword" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required,min=8,max=64"`
}

func (h *UserHandler) updatePassword(c *gin.Context) {
	var in passwordInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondBinding(c, err)
		return
	}
	if err := h.users.UpdatePassword(c.Request.Context(), viewerID(c), in.OldPassword, in.NewPassword); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "password changed"})
}

type emailInput struct {
	Email string `json:"email" binding:"required,email"`
}

func (h *UserHandler) updateEmail(c *gin.Context) {
	var in emailInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondBinding(c, err)
		return
	}
	if err := h.users.RequestEmailUpdate(c.Request.Context(), viewerID(c), in.Email); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "confirmation mail sent"})
}

func (h *UserHandler) confirmEmail(c *gin.Context) {
	token := c.Query("uuid")
	if token == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "uuid required"})
		return
	}
	if err := h.users.ConfirmEmailUpdate(c.Request.Context(), token); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "email changed"})
}

func (h *UserHandler) delete(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	allowed, err := h.canActOn(c, id, "user:delete:user")
	if err != nil {
		respondError(c, err)
		return
	}
	if !allowed {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "insufficient permissions"})
		return
	}
	if err := h.users.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "ok"})
}

func (h *UserHandler) toggleSubscribe(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	if err := h.users.ToggleSubscribe(c.Request.Context(), viewerID(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "ok"})
}

func (h *UserHandler) ban(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var in service.BanInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondBinding(c, err)
		return
	}
	if err := h.users.Ban(c.Request.Context(), senderRole(c), id, in); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "ok"})
}

func (h *UserHandler) banStatus(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	state, err := h.users.BanStatus(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

func (h *UserHandler) listNotifications(c *gin.Context) {
	set, err := h.notifications.GetAll(c.Request.Context(), viewerID(c), queryPage(c), queryTimestamp(c.Query("t")))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, set)
}

func (h *UserHandler) countNotifications(c *gin.Context) {
	count, err := h.notifications.UnreadCount(c.Request.Context(), viewerID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": count})
}
