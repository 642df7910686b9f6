package api

import (
	"net/http"

	"drivebox/file-api/identity"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func (a *API) FolderFetch(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	principal := c.MustGet("principal").(identity.Principal)

	folders, err := a.Catalog.ListFolders(principal)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to lookup user folders", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, folders)
}
