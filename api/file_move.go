package api

import (
	"errors"
	"net/http"
	"strconv"

	"drivebox/file-api/apperr"
	"drivebox/file-api/identity"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type moveBody struct {
	// Null (or absent) moves the file out of its folder
	FolderID *uint `json:"folder_id"`
}

func (a *API) FileMove(c *gin.Context) {
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

	var data moveBody
	if err := c.ShouldBind(&data); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid request body",
			"requestID": requestID,
		})

		zap.L().Debug("Can't bind request body", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	file, err := a.Catalog.MoveFile(principal, uint(fileID), data.FolderID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
				"error":     "File or folder not found. It either doesn't exist or you don't own it",
				"requestID": requestID,
			})
			return
		}

		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to move file", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, file)
}
