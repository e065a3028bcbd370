package middleware

import (
	"net/http"
	"strings"

	"paisaback/config"
	"paisaback/internal/auth"

	"github.com/gin-gonic/gin"
)

// AuthRequired validates the JWT and sets UserID, Email, Role in context.
func AuthRequired(cfg *config.JWTConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := claimsFromHeader(cfg, c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or missing token"})
			return
		}
		setClaims(c, claims)
		c.Next()
	}
}

// AuthOptional attributes the request to a user when a valid token is
// present; anonymous requests pass through untouched. Click issuance uses
// this so logged-out shoppers still get session-attributed tokens.
func AuthOptional(cfg *config.JWTConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") != "" {
			if claims, err := claimsFromHeader(cfg, c); err == nil {
				setClaims(c, claims)
			}
		}
		c.Next()
	}
}

func claimsFromHeader(cfg *config.JWTConfig, c *gin.Context) (*auth.Claims, error) {
	header := c.GetHeader("Authorization")
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, auth.ErrInvalidToken
	}
	return auth.ParseToken(cfg, parts[1])
}

func setClaims(c *gin.Context, claims *auth.Claims) {
	c.Set("user_id", claims.UserID)
	c.Set("email", claims.Email)
	c.Set("role", claims.Role)
}

// GetUserID returns the authenticated user ID from context, 0 when anonymous.
func GetUserID(c *gin.Context) uint {
	v, _ := c.Get("user_id")
	if v == nil {
		return 0
	}
	return v.(uint)
}
