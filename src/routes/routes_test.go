package routes_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"crm-app/src/routes"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	routes.SetupRoutes(r, routes.Handlers{
		Health: func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "OK"})
		},
	}, nil)
	return r
}

func TestAPIIndex(t *testing.T) {
	r := setupRouter()

	t.Run("ルートはエンドポイント一覧を返す", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		r.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var body struct {
			Message   string            `json:"message"`
			Version   string            `json:"version"`
			Endpoints map[string]string `json:"endpoints"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "CRM API", body.Message)
		assert.Equal(t, "0.1.0", body.Version)
		assert.Equal(t, "/contacts", body.Endpoints["contacts"])
		assert.Equal(t, "/organizations", body.Endpoints["organizations"])
		assert.Equal(t, "/tasks", body.Endpoints["tasks"])
		assert.Equal(t, "/notes", body.Endpoints["notes"])
		assert.Equal(t, "/health", body.Endpoints["health"])
	})

	t.Run("ヘルスチェックは認証なしで到達できる", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}
