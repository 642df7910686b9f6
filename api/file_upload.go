package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"drivebox/file-api/apperr"
	"drivebox/file-api/identity"
	"drivebox/file-api/validators"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func (a *API) FileUpload(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	principal := c.MustGet("principal").(identity.Principal)

	if !strings.HasPrefix(c.Request.Header.Get("Content-Type"), "multipart/form-data") {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid request",
			"requestID": requestID,
		})
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "No file provided",
			"requestID": requestID,
		})
		return
	}

	if code, err := validators.UploadValidator(fh); err != nil {
		c.AbortWithStatusJSON(code, gin.H{
			"error":     err.Error(),
			"requestID": requestID,
		})
		return
	}

	f, err := fh.Open()
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to open multipart file", zap.Error(err), zap.String("requestID", requestID))
		return
	}
	defer f.Close()

	// Content first, record second. A placement failure leaves nothing
	// behind; a record failure is compensated right below.
	placement, err := a.Store.Place(c.Request.Context(), f, fh.Filename)
	if err != nil {
		switch {
		case errors.Is(err, apperr.ErrRejectedType), errors.Is(err, apperr.ErrTooLarge):
			c.AbortWithStatusJSON(apperr.Status(err), gin.H{
				"error":     err.Error(),
				"requestID": requestID,
			})
		default:
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error":     "Internal server error",
				"requestID": requestID,
			})

			zap.L().Error("Failed to place file content", zap.Error(err), zap.String("requestID", requestID))
		}
		return
	}

	file, err := a.Catalog.CreateFile(principal, fh.Filename, placement)
	if err != nil {
		// The content is already durable, take it back out so nothing
		// orphaned survives the failed upload
		if rmErr := a.Store.Remove(context.Background(), placement.Key); rmErr != nil {
			zap.L().Error("Failed to cleanup content after failed record",
				zap.String("key", placement.Key),
				zap.Error(rmErr),
			)
		}

		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to save file record to db", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, file)
}
