package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/falco-social/falco/internal/service"
	"github.com/falco-social/falco/pkg/logging"
)

// respondError maps a business error to its HTTP status; anything else is a
// 500 with the detail kept out of the response
func respondError(c *gin.Context, err error) {
	if e, ok := service.AsError(err); ok {
		c.AbortWithStatusJSON(e.Status, gin.H{"message": e.Message})
		return
	}
	logging.GetLogger().Error("Request failed",
		zap.String("path", c.FullPath()),
		zap.Error(err))
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "internal server error"})
}

// respondBinding reports a DTO validation failure
func respondBinding(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": err.Error()})
}
