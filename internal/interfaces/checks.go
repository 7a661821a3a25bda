package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/mrlokans/conduit/internal/articles"
	"github.com/mrlokans/conduit/internal/audit"
	"github.com/mrlokans/conduit/internal/auth"
	"github.com/mrlokans/conduit/internal/cache"
	"github.com/mrlokans/conduit/internal/database"
	articlesRepo "github.com/mrlokans/conduit/internal/database/articles"
	"github.com/mrlokans/conduit/internal/database/tags"
	"github.com/mrlokans/conduit/internal/database/users"
	"github.com/mrlokans/conduit/internal/http"
	"github.com/mrlokans/conduit/internal/metrics"
	"github.com/mrlokans/conduit/internal/profiles"
	"github.com/mrlokans/conduit/internal/scheduler"
	"github.com/mrlokans/conduit/internal/tasks"
)

// =============================================================================
// Data Access Layer
// =============================================================================

var _ articles.Store = (*articlesRepo.Repository)(nil)
var _ articles.UserStore = (*users.Repository)(nil)
var _ profiles.UserStore = (*users.Repository)(nil)
var _ auth.UserStore = (*users.Repository)(nil)
var _ cache.TagsLoader = (*tags.Repository)(nil)

// =============================================================================
// HTTP Controllers
// =============================================================================

var _ http.ArticleService = (*articles.Service)(nil)
var _ http.AccountService = (*auth.Service)(nil)
var _ http.ProfileService = (*profiles.Service)(nil)
var _ http.TagLister = (*cache.TagsCache)(nil)
var _ http.AuthAuditor = (*audit.Service)(nil)
var _ http.AuditLog = (*audit.Service)(nil)
var _ http.ReconcileEnqueuer = (*tasks.Client)(nil)
var _ http.FavoriteReconciler = (*articles.Service)(nil)
var _ http.HealthChecker = (*database.Database)(nil)
var _ http.HealthChecker = (*cache.TagsCache)(nil)

// =============================================================================
// Audit Trail and Caching
// =============================================================================

var _ articles.Auditor = (*audit.Service)(nil)
var _ articles.TagsInvalidator = (*cache.TagsCache)(nil)
var _ profiles.FollowAuditor = (*audit.Service)(nil)

// =============================================================================
// Background Work
// =============================================================================

var _ tasks.FavoriteReconciler = (*articles.Service)(nil)
var _ tasks.FavoriteReconciler = (*articlesRepo.Repository)(nil)
var _ tasks.ReconcileAuditor = (*audit.Service)(nil)
var _ tasks.ReconcileRecorder = (*metrics.Metrics)(nil)
var _ tasks.AuditEventCleaner = (*audit.Service)(nil)
var _ scheduler.Enqueuer = (*tasks.Client)(nil)
var _ http.ScheduleReporter = (*scheduler.ReconcileScheduler)(nil)
