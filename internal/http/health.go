package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type HealthResponse struct {
	Status  string            `json:"status"`
	Time    string            `json:"time"`
	Version string            `json:"version,omitempty"`
	Checks  map[string]string `json:"checks"`

	// NextReconcile is set while the reconcile scheduler is running.
	NextReconcile string `json:"next_reconcile,omitempty"`
}

type HealthController struct {
	db      HealthChecker
	cache   HealthChecker
	version string
	sched   ScheduleReporter
}

func NewHealthController(db, cache HealthChecker, version string) *HealthController {
	return &HealthController{
		db:      db,
		cache:   cache,
		version: version,
	}
}

// WithSchedule reports the next scheduled reconciliation in the status body.
func (h *HealthController) WithSchedule(sched ScheduleReporter) *HealthController {
	h.sched = sched
	return h
}

// Status reports database and cache connectivity. Only the database decides
// health; the cache is degraded, not down, when redis is unreachable.
func (h *HealthController) Status(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	checks := make(map[string]string)
	status := "healthy"

	if h.db != nil {
		if err := h.db.Ping(ctx); err != nil {
			checks["database"] = "error: " + err.Error()
			status = "unhealthy"
		} else {
			checks["database"] = "ok"
		}
	} else {
		checks["database"] = "not configured"
	}

	if h.cache != nil {
		if err := h.cache.Ping(ctx); err != nil {
			checks["cache"] = "degraded: " + err.Error()
		} else {
			checks["cache"] = "ok"
		}
	}

	health := HealthResponse{
		Status:  status,
		Time:    time.Now().Format(time.RFC3339),
		Version: h.version,
		Checks:  checks,
	}
	if h.sched != nil {
		if next := h.sched.NextRun(); !next.IsZero() {
			health.NextReconcile = next.Format(time.RFC3339)
		}
	}

	statusCode := http.StatusOK
	if status != "healthy" {
		statusCode = http.StatusServiceUnavailable
	}

	c.IndentedJSON(statusCode, health)
}

// Ping is a liveness check.
func (h *HealthController) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "pong"})
}
