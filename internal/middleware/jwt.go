package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/freestay/backend/internal/auth"
	"github.com/freestay/backend/pkg/response"
)

const (
	// ContextUserID is the key for the caller's uuid.UUID in gin context.
	ContextUserID = auth.ContextUserID
	// ContextUserRole is the key for the caller's models.Role in gin context.
	ContextUserRole = "user_role"
	// ContextUserEmail is the key for the caller's email in gin context.
	ContextUserEmail = "user_email"
)

// JWT validates the bearer token and stores the caller identity in context.
func JWT(jwtService *auth.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Unauthorized(c, "no token, authorization denied")
			c.Abort()
			return
		}
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			response.Unauthorized(c, "invalid authorization header")
			c.Abort()
			return
		}
		claims, err := jwtService.Validate(strings.TrimSpace(token))
		if err != nil {
			response.Unauthorized(c, "token is not valid")
			c.Abort()
			return
		}
		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextUserRole, claims.Role)
		c.Set(ContextUserEmail, claims.Email)
		c.Next()
	}
}
