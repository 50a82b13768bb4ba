package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	repo "github.com/shopit-dev/shopit-backend/internal/domain/repository"
	"github.com/shopit-dev/shopit-backend/pkg/helpers"
	"github.com/shopit-dev/shopit-backend/pkg/response"
)

const (
	CtxUserIDKey   = "userID"
	CtxUserRoleKey = "userRole"
)

// Auth validates the session cookie and loads the user behind it, setting
// userID and userRole in the Gin context.
func Auth(jwt *helpers.JWTManager, users repo.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(helpers.SessionCookie)
		if err != nil || token == "" {
			response.AbortError(c, http.StatusUnauthorized, "login first to access this resource")
			return
		}
		claims, err := jwt.Parse(token)
		if err != nil {
			response.AbortError(c, http.StatusUnauthorized, "invalid session token")
			return
		}
		u, err := users.GetByID(c.Request.Context(), claims.UserID)
		if err != nil {
			response.AbortError(c, http.StatusUnauthorized, "invalid session token")
			return
		}
		c.Set(CtxUserIDKey, u.ID.Hex())
		c.Set(CtxUserRoleKey, u.Role)
		c.Next()
	}
}

// RequireRole gates a route group to the given roles. Must run after Auth.
func RequireRole(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		role := c.GetString(CtxUserRoleKey)
		if _, ok := allowed[role]; !ok {
			response.AbortError(c, http.StatusForbidden, "role ("+role+") is not allowed to access this resource")
			return
		}
		c.Next()
	}
}
