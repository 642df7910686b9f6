package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"drivebox/file-api/apperr"
	"drivebox/file-api/identity"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// NewAuthMiddleware resolves the auth_token cookie into a principal and
// stores it on the context. Everything behind it can assume "principal" is
// set; everything that can't be resolved ends as a 401 here. Handlers pass
// the principal into the catalog explicitly instead of reaching back into
// the request context.
func NewAuthMiddleware(ids *identity.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.MustGet("requestID").(string)

		tokenStr, err := c.Cookie("auth_token")
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":     apperr.ErrUnauthenticated.Error(),
				"requestID": requestID,
			})
			return
		}

		token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (any, error) {
			if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
				return nil, fmt.Errorf("unexpected signing method: %s", t.Method.Alg())
			}

			return []byte(viper.GetString("jwt.secret")), nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":     apperr.ErrUnauthenticated.Error(),
				"requestID": requestID,
			})

			zap.L().Debug("Rejected auth token", zap.Error(err), zap.String("requestID", requestID))
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":     apperr.ErrUnauthenticated.Error(),
				"requestID": requestID,
			})
			return
		}

		userID, ok := claims["user_id"].(string)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":     apperr.ErrUnauthenticated.Error(),
				"requestID": requestID,
			})
			return
		}

		exp, ok := claims["exp"].(float64)
		if !ok || time.Now().Unix() >= int64(exp) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":     apperr.ErrUnauthenticated.Error(),
				"requestID": requestID,
			})
			return
		}

		// A valid token can outlive its account, so the user row is the
		// source of truth
		user, err := ids.LoadByID(userID)
		if err != nil {
			if errors.Is(err, apperr.ErrNotFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
					"error":     apperr.ErrUnauthenticated.Error(),
					"requestID": requestID,
				})
				return
			}

			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error":     "Internal server error",
				"requestID": requestID,
			})

			zap.L().Error("Failed to load user for session", zap.Error(err), zap.String("requestID", requestID))
			return
		}

		c.Set("principal", identity.PrincipalOf(user))
		c.Set("userID", user.ID)
		c.Next()
	}
}
