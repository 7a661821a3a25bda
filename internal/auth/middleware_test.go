package auth

import (
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
	router.Use(m.Authenticate())
	router.GET("/optional", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": GetUserID(c), "auth_type": GetAuthType(c), "username": GetUsername(c)})
	})
	router.GET("/required", m.RequireAuth(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": GetUserID(c)})
	})
	return router
}

func TestMiddleware_TokenSchemes(t *testing.T) {
	svc := setupTestService(t)
	view := register(t, svc, "jake")
	router := setupRouter(NewMiddleware(svc, nil))

	for _, scheme := range []string{"Token", "Bearer", "bearer"} {
		t.Run(scheme, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/required", nil)
			req.Header.Set("Authorization", scheme+" "+view.Token)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusOK, w.Code)
		})
	}
}

func TestMiddleware_OptionalAnonymous(t *testing.T) {
	svc := setupTestService(t)
	router := setupRouter(NewMiddleware(svc, nil))

	for _, header := range []string{"", "Token not-a-jwt", "Basic abc", "Token"} {
		t.Run(header, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/optional", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			require.Equal(t, http.StatusOK, w.Code)
			assert.JSONEq(t, `{"user_id":0,"auth_type":"none","username":""}`, w.Body.String())
		})
	}
}

func TestMiddleware_RequireAuthRejects(t *testing.T) {
	svc := setupTestService(t)
	router := setupRouter(NewMiddleware(svc, nil))

	req := httptest.NewRequest(http.MethodGet, "/required", nil)
	req.Header.Set("Authorization", "Token invalid")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error":"authentication required"}`, w.Body.String())
}

func TestMiddleware_SetsContext(t *testing.T) {
	svc := setupTestService(t)
	view := register(t, svc, "jake")
	router := setupRouter(NewMiddleware(svc, nil))

	req := httptest.NewRequest(http.MethodGet, "/optional", nil)
	req.Header.Set("Authorization", "Token "+view.Token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"auth_type":"token"`)
	assert.Contains(t, w.Body.String(), `"username":"jake"`)
}

func TestTokenFromHeader(t *testing.T) {
	tests := []struct {
		header string
		token  string
		ok     bool
	}{
		{"Token abc", "abc", true},
		{"Bearer abc", "abc", true},
		{"  token   abc  ", "abc", true},
		{"Basic abc", "", false},
		{"Token", "", false},
		{"Token   ", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			token, ok := TokenFromHeader(tt.header)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.token, token)
		})
	}
}

func TestGetters_Defaults(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	assert.Equal(t, AnonymousUserID, GetUserID(c))
	assert.Empty(t, GetUsername(c))
	assert.Equal(t, AuthTypeNone, GetAuthType(c))
}
