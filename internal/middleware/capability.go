package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/uni-adm/assignment-api/internal/models"
	"github.com/uni-adm/assignment-api/internal/service"
	appErrors "github.com/uni-adm/assignment-api/pkg/errors"
	"github.com/uni-adm/assignment-api/pkg/response"
)

// RequireCapability gates a route on the principal's resolved capabilities.
// Handlers never inspect roles; granting flows through capabilities only.
func RequireCapability(capabilities *service.CapabilityService, required models.Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		claimsValue, exists := c.Get(ContextUserKey)
		if !exists {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		claims, ok := claimsValue.(*models.JWTClaims)
		if !ok {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		if !capabilities.Has(claims.Role, required) {
			response.Error(c, appErrors.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}
