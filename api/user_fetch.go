package api

import (
	"net/http"

	"drivebox/file-api/identity"
	"drivebox/file-api/model"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// UserFetch returns the current principal and their usage stats. This is
// what the dashboard loads first.
func (a *API) UserFetch(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	principal := c.MustGet("principal").(identity.Principal)

	var stats model.Stats
	err := a.DB.
		Where("user_id = ?", principal.ID).
		First(&stats).
		Error
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to fetch user stats", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":  principal,
		"stats": stats,
	})
}
