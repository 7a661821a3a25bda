package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mrlokans/conduit/internal/articles"
	"github.com/mrlokans/conduit/internal/audit"
	"github.com/mrlokans/conduit/internal/auth"
	"github.com/mrlokans/conduit/internal/cache"
	"github.com/mrlokans/conduit/internal/config"
	"github.com/mrlokans/conduit/internal/database"
	articlesRepo "github.com/mrlokans/conduit/internal/database/articles"
	auditRepo "github.com/mrlokans/conduit/internal/database/audit"
	"github.com/mrlokans/conduit/internal/database/tags"
	"github.com/mrlokans/conduit/internal/database/users"
	"github.com/mrlokans/conduit/internal/logging"
	"github.com/mrlokans/conduit/internal/profiles"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	router   *gin.Engine
	db       *database.Database
	accounts *auth.Service
	articles *articles.Service
	audit    *audit.Service
	config   RouterConfig
}

func testAuthConfig() config.Auth {
	return config.Auth{
		JWTSecret:        "test-secret",
		TokenExpiry:      time.Hour,
		BcryptCost:       bcrypt.MinCost,
		SessionLifetime:  time.Hour,
		MaxLoginAttempts: 3,
		RateLimitWindow:  time.Minute,
		LockoutDuration:  time.Minute,
	}
}

// newTestServer wires the real services over a temporary sqlite database.
// mutate may adjust the router configuration before the router is built.
func newTestServer(t *testing.T, mutate ...func(*RouterConfig)) *testServer {
	t.Helper()
	log := logging.Nop()

	db, err := database.NewDatabase(config.Database{
		Driver: config.DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "conduit.db"),
	}, log)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	usersRepo := users.NewRepository(db.DB)
	articleStore := articlesRepo.NewRepository(db.DB)
	auditSvc := audit.NewService(auditRepo.NewRepository(db.DB), log)
	t.Cleanup(auditSvc.Wait)

	tagsCache := cache.NewTagsCache(tags.NewRepository(db.DB), nil, 0, log)
	accounts := auth.NewService(usersRepo, testAuthConfig())
	articleSvc := articles.NewService(articleStore, usersRepo, tagsCache, auditSvc)

	limiter := auth.NewRateLimiter(testAuthConfig())
	t.Cleanup(limiter.Stop)

	cfg := RouterConfig{
		Log:             log,
		Articles:        articleSvc,
		Accounts:        accounts,
		Profiles:        profiles.NewService(usersRepo, auditSvc),
		Tags:            tagsCache,
		AuthMiddleware:  auth.NewMiddleware(accounts, nil),
		RateLimiter:     limiter,
		Auditor:         auditSvc,
		AuditLog:        auditSvc,
		ReconcileDirect: articleSvc,
		Database:        db,
		Version:         "test",
	}
	for _, m := range mutate {
		m(&cfg)
	}

	return &testServer{
		router:   NewRouter(cfg),
		db:       db,
		accounts: accounts,
		articles: articleSvc,
		audit:    auditSvc,
		config:   cfg,
	}
}

// do sends a JSON request; token may be empty for anonymous calls.
func (s *testServer) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Token "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

// register creates a user through the API and returns its token.
func (s *testServer) register(t *testing.T, username string) string {
	t.Helper()
	w := s.do(t, http.MethodPost, "/api/users", gin.H{"user": gin.H{
		"username": username,
		"email":    username + "@example.com",
		"password": "password123",
	}}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		User auth.UserView `json:"user"`
	}
	decode(t, w, &resp)
	return resp.User.Token
}

// createArticle posts an article and returns its slug.
func (s *testServer) createArticle(t *testing.T, token, title string, tagList ...string) string {
	t.Helper()
	if tagList == nil {
		tagList = []string{}
	}
	w := s.do(t, http.MethodPost, "/api/articles", gin.H{"article": gin.H{
		"title":       title,
		"description": "about " + title,
		"body":        "body of " + title,
		"tagList":     tagList,
	}}, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp articleResponse
	decode(t, w, &resp)
	return resp.Article.Slug
}

type articleResponse struct {
	Article articles.ArticleView `json:"article"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder, dst any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), dst), w.Body.String())
}
