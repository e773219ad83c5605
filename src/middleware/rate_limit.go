package middleware

import (
	"crm-app/src/logger"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// RateLimitMiddleware レート制限用のmiddleware
func RateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// TODO: Redisまたはメモリベースのレート制限を実装する

		logger.WithFields(logrus.Fields{
			"client_ip": c.ClientIP(),
			"method":    c.Request.Method,
			"uri":       c.Request.RequestURI,
		}).Debug("レート制限チェック中")

		c.Next()
	}
}
