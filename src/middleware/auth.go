package middleware

import (
	"net/http"
	"strings"

	"crm-app/src/logger"
	"crm-app/src/service"

	"github.com/gin-gonic/gin"
)

// PeerAuthMiddleware ピアトークン認証用のmiddleware。
// 共有シークレットが設定されている場合のみルートに適用される
func PeerAuthMiddleware(jwtService service.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			logger.WithField("client_ip", c.ClientIP()).Warn("認証失敗: Authorizationヘッダーがありません")
			c.JSON(http.StatusUnauthorized, gin.H{"detail": "Authorization header required"})
			c.Abort()
			return
		}

		if !strings.HasPrefix(authHeader, "Bearer ") {
			logger.WithField("client_ip", c.ClientIP()).Warn("認証失敗: Bearer tokenの形式が正しくありません")
			c.JSON(http.StatusUnauthorized, gin.H{"detail": "Invalid authorization format"})
			c.Abort()
			return
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		if _, err := jwtService.ValidatePeerToken(token); err != nil {
			logger.WithField("client_ip", c.ClientIP()).WithError(err).Warn("認証失敗: 無効なピアトークン")
			c.JSON(http.StatusUnauthorized, gin.H{"detail": "Invalid token"})
			c.Abort()
			return
		}

		c.Next()
	}
}
