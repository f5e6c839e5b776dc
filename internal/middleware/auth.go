package middleware

import (
	"strings"

	"github.com/dimitrije/worktrack-api/internal/models"
	"github.com/dimitrije/worktrack-api/internal/services"
	"github.com/dimitrije/worktrack-api/pkg/access"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
)

const (
	UserIDKey    = "user_id"
	UserEmailKey = "user_email"
	UsernameKey  = "username"
	UserRoleKey  = "usertype"
)

// TokenValidator is the part of JWTService the middleware needs.
type TokenValidator interface {
	ValidateAccessToken(token string) (*services.Claims, error)
}

func Auth(tokens TokenValidator) drift.HandlerFunc {
	return func(c *drift.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Unauthorized("missing authorization header")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || parts[1] == "" {
			c.Unauthorized("invalid authorization header format")
			return
		}

		claims, err := tokens.ValidateAccessToken(parts[1])
		if err != nil {
			c.Unauthorized("invalid or expired token")
			return
		}

		c.Set(UserIDKey, claims.UserID)
		c.Set(UserEmailKey, claims.Email)
		c.Set(UsernameKey, claims.Username)
		c.Set(UserRoleKey, claims.Role)

		c.Next()
	}
}

// RequireRole rejects callers whose role is not listed. It must run after Auth.
func RequireRole(roles ...access.Role) drift.HandlerFunc {
	return func(c *drift.Context) {
		role := GetUserRole(c)
		for _, r := range roles {
			if r == role {
				c.Next()
				return
			}
		}
		c.Forbidden(access.ErrForbidden.Error())
	}
}

func GetUserID(c *drift.Context) uuid.UUID {
	if id, ok := c.Get(UserIDKey); ok {
		if uid, ok := id.(uuid.UUID); ok {
			return uid
		}
	}
	return uuid.Nil
}

func GetUserEmail(c *drift.Context) string {
	if email, ok := c.Get(UserEmailKey); ok {
		if e, ok := email.(string); ok {
			return e
		}
	}
	return ""
}

func GetUserRole(c *drift.Context) access.Role {
	if v, ok := c.Get(UserRoleKey); ok {
		if r, ok := v.(access.Role); ok {
			return r
		}
	}
	return ""
}

// GetActor returns the authenticated caller. ok is false outside Auth.
func GetActor(c *drift.Context) (models.Actor, bool) {
	id := GetUserID(c)
	role := GetUserRole(c)
	if id == uuid.Nil || !role.Valid() {
		return models.Actor{}, false
	}
	var username string
	if v, ok := c.Get(UsernameKey); ok {
		username, _ = v.(string)
	}
	return models.Actor{Kind: role, ID: id, Username: username}, true
}
