package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/userstore/internal/domain/user"
)

const userKey = "userstore.user"

// RemoteUser reads the authenticated username that the fronting web server
// places in header and stores it on the context. Usernames that cannot name
// a storage directory are rejected.
func RemoteUser(header string) gin.HandlerFunc {
	return func(c *gin.Context) {
		u := user.New(c.GetHeader(header))
		if !u.Anonymous() {
			if err := u.Validate(); err != nil {
				c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
					"error": "invalid username",
				})
				return
			}
			c.Set(userKey, u)
		}
		c.Next()
	}
}

// RequireUser rejects requests that carry no authenticated user.
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := CurrentUser(c); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "authentication required",
			})
			return
		}
		c.Next()
	}
}

// CurrentUser returns the user set by RemoteUser.
func CurrentUser(c *gin.Context) (user.User, bool) {
	v, ok := c.Get(userKey)
	if !ok {
		return user.User{}, false
	}
	u, ok := v.(user.User)
	return u, ok
}
