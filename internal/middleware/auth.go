package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/omkarr10/Vagabond/internal/response"
	"github.com/omkarr10/Vagabond/internal/telemetry"
	"github.com/omkarr10/Vagabond/internal/token"
)

const (
	// UserIDKey is the context key for the authenticated user's ID
	UserIDKey = "user_id"
	// UserRoleKey is the context key for the authenticated user's role
	UserRoleKey = "user_role"
)

// Auth verifies the bearer token on every protected request and stores the
// subject's claims in the gin context. It is the single choke point for
// request authentication; handlers never touch raw tokens.
func Auth(tokens *token.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := telemetry.StartSpan(c.Request.Context(), "middleware.auth")
		defer span.End()
		c.Request = c.Request.WithContext(ctx)

		header := c.GetHeader("Authorization")
		if header == "" {
			span.SetStatus(codes.Error, "missing authorization header")
			response.Unauthorized(c, "Authorization header required")
			c.Abort()
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			span.SetStatus(codes.Error, "malformed authorization header")
			response.Unauthorized(c, "Invalid authorization header")
			c.Abort()
			return
		}

		claims, err := tokens.Verify(parts[1])
		if err != nil {
			span.SetStatus(codes.Error, "invalid token")
			response.Unauthorized(c, "Invalid or expired token")
			c.Abort()
			return
		}

		span.SetAttributes(attribute.String("user_id", claims.UserID))
		span.SetStatus(codes.Ok, "")

		c.Set(UserIDKey, claims.UserID)
		c.Set(UserRoleKey, string(claims.Role))
		c.Next()
	}
}

// GetUserID returns the authenticated user's ID from context
func GetUserID(c *gin.Context) string {
	if id, exists := c.Get(UserIDKey); exists {
		if userID, ok := id.(string); ok {
			return userID
		}
	}
	return ""
}

// GetUserRole returns the authenticated user's role from context
func GetUserRole(c *gin.Context) string {
	if role, exists := c.Get(UserRoleKey); exists {
		if r, ok := role.(string); ok {
			return r
		}
	}
	return ""
}
