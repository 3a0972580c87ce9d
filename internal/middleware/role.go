package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/freestay/backend/internal/models"
	"github.com/freestay/backend/pkg/response"
)

// RequireRole allows only callers whose role is listed. Run after JWT.
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	allowed := make(map[models.Role]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		roleVal, ok := c.Get(ContextUserRole)
		if !ok {
			response.Unauthorized(c, "missing user context")
			c.Abort()
			return
		}
		role, _ := roleVal.(models.Role)
		if _, ok := allowed[role]; !ok {
			response.Forbidden(c, "access denied")
			c.Abort()
			return
		}
		c.Next()
	}
}
