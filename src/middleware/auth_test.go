package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"crm-app/src/config"
	"crm-app/src/middleware"
	"crm-app/src/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupAuthRouter(svc service.JWTService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.PeerAuthMiddleware(svc))
	r.GET("/contacts", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return r
}

func TestPeerAuthMiddleware(t *testing.T) {
	cfg := &config.Config{
		Auth: config.AuthConfig{PeerSecret: "test-secret", TokenTTL: 5 * time.Minute},
	}
	svc := service.NewJWTService(cfg)
	r := setupAuthRouter(svc)

	t.Run("有効なピアトークンで通過する", func(t *testing.T) {
		token, err := svc.GeneratePeerToken()
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/contacts", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("ヘッダーなしは401", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/contacts", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Bearer形式でないヘッダーは401", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/contacts", nil)
		req.Header.Set("Authorization", "Basic abc")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("異なるシークレットのトークンは401", func(t *testing.T) {
		other := service.NewJWTService(&config.Config{
			Auth: config.AuthConfig{PeerSecret: "other", TokenTTL: 5 * time.Minute},
		})
		token, err := other.GeneratePeerToken()
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/contacts", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
