package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/drivelane/fi-decision-api/internal/models"
	appErrors "github.com/drivelane/fi-decision-api/pkg/errors"
	"github.com/drivelane/fi-decision-api/pkg/response"
)

// RequireReviewer gates the review transitions to finance managers and
// admins. Sellers can create and submit but never decide.
func RequireReviewer() gin.HandlerFunc {
	return func(c *gin.Context) {
		value, ok := c.Get(ContextUserKey)
		if !ok {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		claims, ok := value.(*models.JWTClaims)
		if !ok || !claims.CanReview() {
			response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "reviewer role required"))
			c.Abort()
			return
		}
		c.Next()
	}
}
