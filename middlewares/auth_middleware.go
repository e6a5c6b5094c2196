package middlewares

import (
	"net/http"
	"strings"

	"github.com/SteveKibs/cake-backend-app/utils"
	"github.com/gin-gonic/gin"
)

// Context keys set by AuthMiddleware.
const (
	CtxUserID   = "user_id"
	CtxUsername = "username"
	CtxRole     = "role"
	CtxToken    = "token"
	CtxClaims   = "claims"
)

// AuthMiddleware requires a valid, non-revoked Bearer token.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			utils.RespondAppError(c, utils.Unauthorized("authorization header missing"))
			return
		}
		if !strings.HasPrefix(header, "Bearer ") {
			utils.RespondAppError(c, utils.Unauthorized("authorization header must use the Bearer scheme"))
			return
		}

		tokenString := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
		claims, err := utils.ValidateToken(tokenString)
		if err != nil {
			utils.RespondAppError(c, utils.Unauthorized(err.Error()))
			return
		}
		if claims.UserID == 0 {
			utils.RespondAppError(c, utils.Unauthorized("invalid user id in token"))
			return
		}

		setIdentity(c, tokenString, claims)
		c.Next()
	}
}

// WebSocketAuthMiddleware authenticates websocket upgrades, which cannot carry
// headers from browsers, using the token query parameter.
func WebSocketAuthMiddleware(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		claims, err := utils.ValidateToken(token)
		if err != nil {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		if len(roles) > 0 && !hasRole(claims.Role, roles) {
			c.AbortWithStatus(http.StatusForbidden)
			return
		}

		setIdentity(c, token, claims)
		c.Next()
	}
}

func setIdentity(c *gin.Context, token string, claims *utils.CustomClaims) {
	c.Set(CtxUserID, claims.UserID)
	c.Set(CtxUsername, claims.Username)
	c.Set(CtxRole, claims.Role)
	c.Set(CtxToken, token)
	c.Set(CtxClaims, claims)
}
