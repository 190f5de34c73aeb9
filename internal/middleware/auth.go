package middleware

import (
	"net/http"
	"strings"

	"todos-app/backend/internal/models"
	"todos-app/backend/internal/repositories"
	"todos-app/backend/internal/services"

	"github.com/gin-gonic/gin"
)

const (
	// TokenCookieName is the cookie carrying the session token for
	// browser clients.
	TokenCookieName = "token"
	// ContextUserKey is where the guard stores the resolved user.
	ContextUserKey = "user"
)

// Auth is the access guard on every protected route: it extracts the
// token from the cookie or the Authorization header, verifies it, and
// resolves the subject to a live user record. Any failure aborts the
// request with 401 before handler code runs.
func Auth(tokens *services.TokenService, users repositories.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractToken(c)
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Unauthorized: no token provided, please login.",
			})
			return
		}

		userID, err := tokens.Parse(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Unauthorized: invalid or expired token.",
			})
			return
		}

		user, err := users.FindByID(c.Request.Context(), userID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Unauthorized: user not found.",
			})
			return
		}

		c.Set(ContextUserKey, user)
		c.Next()
	}
}

// CurrentUser returns the user attached by Auth. The bool is false
// only if the guard did not run, which is a routing bug.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	value, exists := c.Get(ContextUserKey)
	if !exists {
		return nil, false
	}
	user, ok := value.(*models.User)
	return user, ok
}

func extractToken(c *gin.Context) string {
	if cookie, err := c.Cookie(TokenCookieName); err == nil && cookie != "" {
		return cookie
	}

	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return ""
}
