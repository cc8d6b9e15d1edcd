package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"alignment_rooms/internal/utils"
)

// AuthMiddleware 連接守門員：驗證請求攜帶的 JWT token
// 缺少或無效的憑證在任何房間操作發生前就拒絕，預設拒絕
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required"})
			c.Abort()
			return
		}

		claims, err := utils.ParseToken(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}

		// 將用戶信息設置到上下文中
		c.Set("userID", claims.UserID)
		c.Next()
	}
}

// extractToken 先看 Authorization 頭，WebSocket 握手無法帶自訂頭時退回 token 查詢參數
func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && parts[0] == "Bearer" {
			return parts[1]
		}
		return ""
	}
	return c.Query("token")
}
