package http

import (
	"go.uber.org/zap"

	"github.com/mrlokans/conduit/internal/auth"
	"github.com/mrlokans/conduit/internal/config"
	"github.com/mrlokans/conduit/internal/demo"
	"github.com/mrlokans/conduit/internal/metrics"
)

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router.
type RouterConfig struct {
	Log *zap.SugaredLogger

	// Core services
	Articles ArticleService
	Accounts AccountService
	Profiles ProfileService
	Tags     TagLister

	// Authentication
	AuthMiddleware *auth.Middleware
	RateLimiter    *auth.RateLimiter    // optional
	Sessions       *auth.SessionManager // nil unless cookie sessions are enabled
	CSRFSecret     []byte
	SecureCookies  bool
	Auditor        AuthAuditor // optional
	AuditLog       AuditLog    // optional; backs GET /api/admin/audit

	// Favorite-count reconciliation; Queue wins when both are set.
	ReconcileQueue  ReconcileEnqueuer
	ReconcileDirect FavoriteReconciler
	Schedule        ScheduleReporter // optional

	// Health checks
	Database HealthChecker
	Cache    HealthChecker // optional

	Metrics *metrics.Metrics // optional
	Demo    *demo.Middleware // optional; blocks writes when enabled
	CORS    config.CORS
	Version string
}
