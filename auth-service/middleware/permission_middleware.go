package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ultrabms-backend/shared/database/models"
	"ultrabms-backend/shared/utils/permission"
)

// roleFromContext reads the role the session guard resolved. Missing role
// means the guard did not run; that is never authenticated.
func roleFromContext(c *gin.Context) (models.Role, bool) {
	value, exists := c.Get("userRole")
	if !exists {
		return "", false
	}
	role, ok := value.(models.Role)
	return role, ok
}

// RequirePermission rejects with 403 unless the caller's role holds the
// permission. Runs after the session guard; a missing identity is a 401.
func RequirePermission(resolver *permission.Resolver, perm string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := roleFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
			c.Abort()
			return
		}

		if !resolver.Has(role, perm) {
			forbid(c, gin.H{"required_permission": perm})
			return
		}

		c.Next()
	}
}

// RequireAnyPermission rejects with 403 unless the role holds at least one
// of the permissions
func RequireAnyPermission(resolver *permission.Resolver, perms ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := roleFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
			c.Abort()
			return
		}

		if !resolver.HasAny(role, perms...) {
			forbid(c, gin.H{"required_any_of": perms})
			return
		}

		c.Next()
	}
}

// RequireResourceType rejects with 403 unless the role may touch the given
// resource type at all
func RequireResourceType(resolver *permission.Resolver, resourceType string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := roleFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
			c.Abort()
			return
		}

		if !resolver.CanAccessResourceType(role, resourceType) {
			forbid(c, gin.H{"required_resource": resourceType})
			return
		}

		c.Next()
	}
}

func forbid(c *gin.Context, details gin.H) {
	c.JSON(http.StatusForbidden, gin.H{
		"error":   "Insufficient permissions",
		"code":    "FORBIDDEN",
		"details": details,
	})
	c.Abort()
}
