package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/falco-social/falco/internal/service"
)

// AuthHandler exposes registration, session and password recovery routes
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// Register registers the handler's routes on the given group
func (h *AuthHandler) Register(group *gin.RouterGroup) {
	group.POST("/register", h.register)
	group.POST("/login", h.login)
	group.POST("/logout", h.logout)
	group.POST("/refresh", h.refresh)
	group.POST("/password_recover", h.passwordRecover)
	group.POST("/password_confirm", h.passwordConfirm)
}

func (h *AuthHandler) register(c *gin.Context) {
	var in service.RegisterInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondBinding(c, err)
		return
	}
	result, err := h.auth.Register(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

type loginInput struct {
	Login        string `json:"login" binding:"required"`
	Password     string `json:"password" binding:"required"`
	RefreshToken string `json:"refreshToken"`
}

func (h *AuthHandler) login(c *gin.Context) {
	var in loginInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondBinding(c, err)
		return
	}
	result, err := h.auth.Login(c.Request.Context(), in.Login, in.Password, in.RefreshToken)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type tokenInput struct {
	RefreshToken string `json:"refreshToken"`
}

func (h *AuthHandler) logout(c *gin.Context) {
	var in tokenInput
	_ = c.ShouldBindJSON(&in)
	if err := h.auth.Logout(c.Request.Context(), in.RefreshToken); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "ok"})
}

func (h *AuthHandler) refresh(c *gin.Context) {
	var in tokenInput
	_ = c.ShouldBindJSON(&in)
	result, err := h.auth.Refresh(c.Request.Context(), in.RefreshToken)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type recoverInput struct {
	Login string `json:"login" binding:"required"`
}

func (h *AuthHandler) passwordRecover(c *gin.Context) {
	var in recoverInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondBinding(c, err)
		return
	}
	if err := h.auth.RequestPasswordRecover(c.Request.Context(), in.Login); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "recovery mail sent"})
}

type confirmInput struct {
	Password string `json:"password" binding:"required,min=8,max=64"`
}

func (h *AuthHandler) passwordConfirm(c *gin.Context) {
	var in confirmInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondBinding(c, err)
		return
	}
	token := c.Query("uuid")
	if token == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "uuid required"})
		return
	}
	if err := h.auth.ConfirmPasswordRecover(c.Request.Context(), token, in.Password); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "password changed"})
}
