package middleware

import (
	"net/http"
	"strconv"

	"agora/internal/models"
	"agora/internal/services"

	"github.com/gin-gonic/gin"
)

const CheckUserKey = "user"

// UserHeader carries the acting user's id. Authentication happens upstream.
const UserHeader = "X-User-ID"

// LoadUser resolves the acting user from the request header and stores it in the context.
func LoadUser(users services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(UserHeader)
		if raw == "" {
			c.Next()
			return
		}
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || id == 0 {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid " + UserHeader})
			return
		}
		if user, err := users.Get(c.Request.Context(), uint(id)); err == nil {
			c.Set(CheckUserKey, user)
		}
		c.Next()
	}
}

// AuthRequired ensures a user was loaded
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := CurrentUser(c); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "login required"})
			return
		}
		c.Next()
	}
}

// RoleRequired lets the request through when the user holds any of roles.
func RoleRequired(roles ...models.WellKnown) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "login required"})
			return
		}
		for _, r := range roles {
			if user.HasRole(r) {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"success": false, "error": "permission denied"})
	}
}

func CurrentUser(c *gin.Context) (*models.User, bool) {
	v, exists := c.Get(CheckUserKey)
	if !exists {
		return nil, false
	}
	user, ok := v.(*models.User)
	return user, ok && user != nil
}
