package middleware

import (
	"context"
	"strings"

	"edujobs_backend/internal/auth"
	"edujobs_backend/internal/logger"
	"edujobs_backend/internal/models"
	"edujobs_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

const (
	TokenCookie        = "token"
	RefreshTokenCookie = "refreshToken"

	currentUserKey = "currentUser"
)

// AccountResolver turns a session token into a live account.
// services.AuthService satisfies it.
type AccountResolver interface {
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

// extractToken prefers the session cookie over the Authorization header.
func extractToken(c *gin.Context) string {
	if token, err := c.Cookie(TokenCookie); err == nil && token != "" {
		return token
	}
	header := c.GetHeader("Authorization")
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}

func bindUser(c *gin.Context, user *models.User) {
	c.Set(currentUserKey, user)
	ctx := logger.WithUserID(c.Request.Context(), user.ID)
	c.Request = c.Request.WithContext(ctx)
}

// Authenticate - обязательная аутентификация
// Rejects the request unless the token resolves to an active account.
func Authenticate(resolver AccountResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			apperrors.HandleError(c, apperrors.ErrNoToken)
			return
		}

		user, err := resolver.Authenticate(c.Request.Context(), token)
		if err != nil {
			apperrors.HandleError(c, err)
			return
		}

		bindUser(c, user)
		c.Next()
	}
}

// OptionalAuth binds the account when a valid token is present and never rejects.
func OptionalAuth(resolver AccountResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := extractToken(c); token != "" {
			user, err := resolver.Authenticate(c.Request.Context(), token)
			if err == nil {
				bindUser(c, user)
			} else {
				logger.CtxInfo(c.Request.Context(), "optional auth ignored token", logger.Err(err))
			}
		}
		c.Next()
	}
}

// Resolve returns the account bound to the request, if any.
func Resolve(c *gin.Context) (*models.User, bool) {
	v, ok := c.Get(currentUserKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*models.User)
	return user, ok && user != nil
}

// RequireRoles - middleware для проверки нескольких возможных ролей
func RequireRoles(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(c *gin.Context) {
		user, ok := Resolve(c)
		if !ok {
			apperrors.HandleError(c, apperrors.ErrNoToken)
			return
		}
		if _, ok := allowed[user.Role]; !ok {
			apperrors.HandleError(c, apperrors.ErrInsufficientPermissions)
			return
		}
		c.Next()
	}
}

// RequirePermission checks the caller's role against the permission table.
func RequirePermission(table *auth.PermissionTable, permission string) gin.HandlerFunc {
	return RequireAnyPermission(table, permission)
}

// RequireAnyPermission passes when the role holds at least one of permissions.
func RequireAnyPermission(table *auth.PermissionTable, permissions ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := Resolve(c)
		if !ok {
			apperrors.HandleError(c, apperrors.ErrNoToken)
			return
		}
		for _, p := range permissions {
			if table.Has(user.Role, p) {
				c.Next()
				return
			}
		}
		apperrors.HandleError(c, apperrors.ErrInsufficientPermissions)
	}
}
