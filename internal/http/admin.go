package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/conduit/internal/auth"
	"github.com/mrlokans/conduit/internal/entities"
)

var auditEventTypes = map[entities.AuditEventType]struct{}{
	entities.AuditEventArticle:   {},
	entities.AuditEventFavorite:  {},
	entities.AuditEventFollow:    {},
	entities.AuditEventAuth:      {},
	entities.AuditEventReconcile: {},
}

type AdminController struct {
	queue  ReconcileEnqueuer
	direct FavoriteReconciler
	events AuditLog
}

type AuditEventsResponse struct {
	Events []entities.AuditEvent `json:"events"`
	Total  int64                 `json:"total"`
}

// NewAdminController takes the task queue, the inline reconciler, or both.
// events may be nil, in which case the audit listing is not implemented.
func NewAdminController(queue ReconcileEnqueuer, direct FavoriteReconciler, events AuditLog) *AdminController {
	return &AdminController{queue: queue, direct: direct, events: events}
}

// Events lists the caller's own audit trail, newest first, optionally
// filtered by ?type=.
// GET /api/admin/audit
func (ac *AdminController) Events(c *gin.Context) {
	if ac.events == nil {
		respondNotImplemented(c)
		return
	}

	eventType := entities.AuditEventType(c.Query("type"))
	if eventType != "" {
		if _, ok := auditEventTypes[eventType]; !ok {
			respondBadRequest(c, "unknown event type")
			return
		}
	}
	offset, limit := parsePagination(c)

	events, total, err := ac.events.GetEvents(c.Request.Context(), auth.GetUserID(c), eventType, limit, offset)
	if err != nil {
		respondErr(c, err)
		return
	}
	if events == nil {
		events = []entities.AuditEvent{}
	}
	c.JSON(http.StatusOK, AuditEventsResponse{Events: events, Total: total})
}

// Reconcile recomputes favorites counters, on the task queue when available
// POST /api/admin/reconcile
func (ac *AdminController) Reconcile(c *gin.Context) {
	if ac.queue != nil {
		taskID, err := ac.queue.EnqueueReconcile(c.Request.Context(), "api")
		if err != nil {
			respondErr(c, err)
			return
		}
		respondAccepted(c, "reconciliation enqueued", gin.H{"task_id": taskID})
		return
	}

	if ac.direct == nil {
		respondNotImplemented(c)
		return
	}
	corrected, err := ac.direct.ReconcileFavoriteCounts(c.Request.Context())
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{
		Message: "favorite counts reconciled",
		Data:    gin.H{"corrected": corrected},
	})
}
