package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubChecker struct {
	err error
}

func (s stubChecker) Ping(context.Context) error {
	return s.err
}

type stubSchedule struct {
	next time.Time
}

func (s stubSchedule) NextRun() time.Time {
	return s.next
}

func healthStatus(t *testing.T, h *HealthController) (int, HealthResponse) {
	t.Helper()
	router := gin.New()
	router.GET("/health", h.Status)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w.Code, resp
}

func TestHealthController_Status(t *testing.T) {
	t.Run("healthy with real database", func(t *testing.T) {
		s := newTestServer(t)
		w := s.do(t, http.MethodGet, "/health", nil, "")
		require.Equal(t, http.StatusOK, w.Code)

		var resp HealthResponse
		decode(t, w, &resp)
		assert.Equal(t, "healthy", resp.Status)
		assert.Equal(t, "ok", resp.Checks["database"])
		assert.Equal(t, "test", resp.Version)
		assert.NotContains(t, resp.Checks, "cache")
	})

	t.Run("database failure is unhealthy", func(t *testing.T) {
		code, resp := healthStatus(t, NewHealthController(stubChecker{err: errors.New("closed")}, nil, ""))
		assert.Equal(t, http.StatusServiceUnavailable, code)
		assert.Equal(t, "unhealthy", resp.Status)
		assert.Equal(t, "error: closed", resp.Checks["database"])
	})

	t.Run("cache failure only degrades", func(t *testing.T) {
		code, resp := healthStatus(t, NewHealthController(stubChecker{}, stubChecker{err: errors.New("refused")}, ""))
		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, "degraded: refused", resp.Checks["cache"])
	})

	t.Run("reports next scheduled reconciliation", func(t *testing.T) {
		next := time.Date(2026, 10, 19, 12, 30, 0, 0, time.UTC)
		s := newTestServer(t, func(cfg *RouterConfig) {
			cfg.Schedule = stubSchedule{next: next}
		})
		w := s.do(t, http.MethodGet, "/health", nil, "")
		require.Equal(t, http.StatusOK, w.Code)

		var resp HealthResponse
		decode(t, w, &resp)
		assert.Equal(t, "2026-10-19T12:30:00Z", resp.NextReconcile)
	})

	t.Run("stopped scheduler is omitted", func(t *testing.T) {
		_, resp := healthStatus(t, NewHealthController(stubChecker{}, nil, "").WithSchedule(stubSchedule{}))
		assert.Empty(t, resp.NextReconcile)
	})

	t.Run("no database configured", func(t *testing.T) {
		_, resp := healthStatus(t, NewHealthController(nil, nil, ""))
		assert.Equal(t, "not configured", resp.Checks["database"])
	})
}

func TestHealthController_Ping(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodGet, "/ping", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"pong"}`, w.Body.String())
}
