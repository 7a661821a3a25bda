package demo

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setupRouter(m *Middleware) *gin.Engine {
	router := gin.New()
	router.Use(m.Handler())
	ok := func(c *gin.Context) { c.String(http.StatusOK, "OK") }
	router.GET("/api/articles", ok)
	router.POST("/api/articles", ok)
	router.DELETE("/api/articles/:slug/favorite", ok)
	router.POST("/api/users", ok)
	router.POST("/api/users/login", ok)
	router.POST("/api/users/logout", ok)
	return router
}

func serve(router *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func TestNewMiddleware(t *testing.T) {
	assert.True(t, NewMiddleware(true).IsEnabled())
	assert.False(t, NewMiddleware(false).IsEnabled())

	var m *Middleware
	assert.False(t, m.IsEnabled())
}

func TestMiddleware_AllowsReads(t *testing.T) {
	router := setupRouter(NewMiddleware(true))

	w := serve(router, http.MethodGet, "/api/articles")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", w.Body.String())
}

func TestMiddleware_BlocksWrites(t *testing.T) {
	router := setupRouter(NewMiddleware(true))

	for _, tc := range []struct{ method, path string }{
		{http.MethodPost, "/api/articles"},
		{http.MethodDelete, "/api/articles/some-slug/favorite"},
		{http.MethodPost, "/api/users"},
	} {
		w := serve(router, tc.method, tc.path)
		require.Equal(t, http.StatusForbidden, w.Code, tc.path)

		var body map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, blockedMessage, body["error"])
		assert.Equal(t, true, body["demo_mode"])
	}
}

func TestMiddleware_AllowsLoginAndLogout(t *testing.T) {
	router := setupRouter(NewMiddleware(true))

	assert.Equal(t, http.StatusOK, serve(router, http.MethodPost, "/api/users/login").Code)
	assert.Equal(t, http.StatusOK, serve(router, http.MethodPost, "/api/users/logout").Code)
}

func TestMiddleware_Disabled(t *testing.T) {
	router := setupRouter(NewMiddleware(false))

	assert.Equal(t, http.StatusOK, serve(router, http.MethodPost, "/api/articles").Code)
}
