package middlewares

import (
	"github.com/SteveKibs/cake-backend-app/utils"
	"github.com/gin-gonic/gin"
)

// RequireRoles lets the request through only when the authenticated role is
// one of roles. It must run after AuthMiddleware.
func RequireRoles(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(CtxRole)
		if role == "" {
			utils.RespondAppError(c, utils.Unauthorized("unauthorized"))
			return
		}
		if !hasRole(role, roles) {
			utils.RespondAppError(c, utils.Forbidden("insufficient permissions"))
			return
		}
		c.Next()
	}
}

func hasRole(role string, allowed []string) bool {
	for _, r := range allowed {
		if r == role {
			return true
		}
	}
	return false
}
