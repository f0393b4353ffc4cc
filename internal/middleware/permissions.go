package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// IsSafeMethod reports whether the method only reads.
func IsSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

// AdminOrReadOnly lets anyone read. Writes need an admin, staff or superuser account.
func AdminOrReadOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if IsSafeMethod(c.Request.Method) {
			c.Next()
			return
		}

		user, ok := CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication credentials were not provided"})
			c.Abort()
			return
		}
		if !user.CanManageCatalog() {
			c.JSON(http.StatusForbidden, gin.H{"error": "you do not have permission to perform this action"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// AuthenticatedOrReadOnly lets anyone read and requires a user for writes.
// Ownership is checked further down, where the resource is loaded.
func AuthenticatedOrReadOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if IsSafeMethod(c.Request.Method) {
			c.Next()
			return
		}
		if _, ok := CurrentUser(c); !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication credentials were not provided"})
			c.Abort()
			return
		}
		c.Next()
	}
}
