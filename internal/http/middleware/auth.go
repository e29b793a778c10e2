package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/creditedge/backend/internal/auth"
)

// RequireAuth validates the access cookie and stashes the caller's identity
// on the request context. Tenant scoping downstream reads tenant_id from
// here, never from the request body.
func RequireAuth(jwt *auth.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		cookie, err := c.Request.Cookie(auth.AccessCookieName)
		if err != nil || cookie.Value == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "unauthorized"})
			return
		}

		claims, err := jwt.Parse(cookie.Value)
		if err != nil || claims.Type != "access" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "unauthorized"})
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("tenant_id", claims.TenantID)
		c.Set("user_role", claims.Role)
		c.Next()
	}
}

// TenantID returns the tenant the request is scoped to. A platform admin may
// act on another tenant through the X-Tenant-ID header; everyone else is
// pinned to the tenant on their token.
func TenantID(c *gin.Context) string {
	role, _ := c.Get("user_role")
	if role == auth.RolePlatformAdmin {
		if override := c.GetHeader("X-Tenant-ID"); override != "" {
			return override
		}
	}
	v, _ := c.Get("tenant_id")
	tenantID, _ := v.(string)
	return tenantID
}
