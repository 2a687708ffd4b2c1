package middleware

import (
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/ursretail/ursbackend/models"
	"github.com/ursretail/ursbackend/utils"
)

func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			utils.AbortFail(c, http.StatusUnauthorized, "missing token")
			return
		}

		tokenStr := strings.TrimPrefix(header, "Bearer ")
		claims, err := utils.ValidateToken(tokenStr, os.Getenv("JWT_SECRET"))
		if err != nil {
			utils.AbortFail(c, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		c.Set("userID", claims.UserID)
		c.Set("mobile", claims.Mobile)
		c.Set("role", claims.Role)
		c.Next()
	}
}

// RequireAdmin must run after AuthMiddleware on /admin routes.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		roleVal, ok := c.Get("role")
		if !ok || roleVal.(string) != string(models.RoleAdmin) {
			utils.AbortFail(c, http.StatusForbidden, "Access denied. Admins only.")
			return
		}
		c.Next()
	}
}
