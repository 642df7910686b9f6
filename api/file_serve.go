package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"drivebox/file-api/apperr"
	"drivebox/file-api/identity"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// FileServe streams a file back to its owner under its original name.
func (a *API) FileServe(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	principal := c.MustGet("principal").(identity.Principal)

	fileID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid file ID",
			"requestID": requestID,
		})
		return
	}

	file, rc, err := a.Catalog.OpenFile(c.Request.Context(), principal, uint(fileID))
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
				"error":     "File not found. It either doesn't exist or you don't own it",
				"requestID": requestID,
			})
			return
		}

		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to open file content", zap.Error(err), zap.String("requestID", requestID))
		return
	}
	defer rc.Close()

	c.DataFromReader(http.StatusOK, file.Size, file.ContentType, rc, map[string]string{
		"Content-Disposition": fmt.Sprintf("attachment; filename=%q", file.OriginalName),
	})
}
