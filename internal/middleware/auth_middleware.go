package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yigit/campusrecords/internal/app/models"
	"github.com/yigit/campusrecords/internal/app/models/dto"
	"github.com/yigit/campusrecords/internal/pkg/apperrors"
	"github.com/yigit/campusrecords/internal/pkg/auth"
)

// Context keys set by JWTAuth.
const (
	ContextAccountID = "accountID"
	ContextUsername  = "username"
	ContextRole      = "role"
	ContextSuperuser = "isSuperuser"
)

// AuthMiddleware for authentication and authorization
type AuthMiddleware struct {
	jwtService *auth.JWTService
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(jwtService *auth.JWTService) *AuthMiddleware {
	return &AuthMiddleware{jwtService: jwtService}
}

func abortUnauthorized(c *gin.Context, code dto.ErrorCode, details string) {
	errorDetail := dto.NewErrorDetail(code, "Authentication required").
		WithKind(string(apperrors.KindAuthentication)).
		WithDetails(details)
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
}

func abortForbidden(c *gin.Context, details string) {
	errorDetail := dto.NewErrorDetail(dto.ErrorCodeForbidden, "Access denied").
		WithKind(string(apperrors.KindPermission)).
		WithDetails(details)
	c.AbortWithStatusJSON(http.StatusForbidden, dto.NewErrorResponse(errorDetail))
}

// JWTAuth validates the bearer access token and stores its claims in the context
func (m *AuthMiddleware) JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c, dto.ErrorCodeUnauthorized, "Authorization header missing")
			return
		}

		// Swagger UI sometimes wraps the value in quotes
		tokenString, err := auth.ExtractBearerToken(strings.Trim(authHeader, "\"'"))
		if err != nil {
			abortUnauthorized(c, dto.ErrorCodeUnauthorized, "Invalid token format")
			return
		}

		claims, err := m.jwtService.ValidateToken(tokenString)
		if err != nil {
			if errors.Is(err, auth.ErrExpiredToken) {
				abortUnauthorized(c, dto.ErrorCodeExpiredToken, "Token has expired")
				return
			}
			abortUnauthorized(c, dto.ErrorCodeInvalidToken, "Invalid token")
			return
		}

		c.Set(ContextAccountID, claims.AccountID)
		c.Set(ContextUsername, claims.Username)
		c.Set(ContextRole, models.Role(claims.Role))
		c.Set(ContextSuperuser, claims.IsSuperuser)
		c.Next()
	}
}

// RoleRequired lets the request through when the token carries one of roles.
// Superusers always pass.
func (m *AuthMiddleware) RoleRequired(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		if IsSuperuser(c) {
			c.Next()
			return
		}
		role, ok := RoleFrom(c)
		if !ok {
			abortUnauthorized(c, dto.ErrorCodeUnauthorized, "User role not found")
			return
		}
		for _, r := range roles {
			if r == role {
				c.Next()
				return
			}
		}
		abortForbidden(c, "You don't have sufficient permissions for this operation")
	}
}

// SuperuserRequired only admits superuser tokens
func (m *AuthMiddleware) SuperuserRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !IsSuperuser(c) {
			abortForbidden(c, "This operation requires a superuser")
			return
		}
		c.Next()
	}
}

// AccountID returns the authenticated account id.
func AccountID(c *gin.Context) (int64, bool) {
	v, exists := c.Get(ContextAccountID)
	if !exists {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}

// RoleFrom returns the role claim of the authenticated account.
func RoleFrom(c *gin.Context) (models.Role, bool) {
	v, exists := c.Get(ContextRole)
	if !exists {
		return "", false
	}
	role, ok := v.(models.Role)
	return role, ok
}

// IsSuperuser reports whether the token carries the superuser flag.
func IsSuperuser(c *gin.Context) bool {
	return c.GetBool(ContextSuperuser)
}
