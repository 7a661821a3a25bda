package http

import (
	"context"
	"time"

	"github.com/mrlokans/conduit/internal/articles"
	"github.com/mrlokans/conduit/internal/auth"
	"github.com/mrlokans/conduit/internal/entities"
	"github.com/mrlokans/conduit/internal/profiles"
)

// ArticleService defines the article use cases the controllers call.
type ArticleService interface {
	List(ctx context.Context, params articles.ListParams, viewerID uint) (articles.ArticleList, error)
	Feed(ctx context.Context, viewerID uint, offset, limit int) (articles.ArticleList, error)
	Get(ctx context.Context, slug string, viewerID uint) (articles.ArticleView, error)
	Create(ctx context.Context, authorID uint, input articles.CreateInput) (articles.ArticleView, error)
	Favorite(ctx context.Context, slug string, userID uint) (articles.ArticleView, error)
	Unfavorite(ctx context.Context, slug string, userID uint) (articles.ArticleView, error)
}

// AccountService defines registration and login.
type AccountService interface {
	Register(ctx context.Context, input auth.RegisterInput) (auth.UserView, error)
	Login(ctx context.Context, email, password string) (*entities.User, auth.UserView, error)
	Current(ctx context.Context, userID uint) (auth.UserView, error)
}

// ProfileService defines profile lookups and the follow graph.
type ProfileService interface {
	Get(ctx context.Context, username string, viewerID uint) (profiles.ProfileView, error)
	Follow(ctx context.Context, username string, followerID uint) (profiles.ProfileView, error)
	Unfollow(ctx context.Context, username string, followerID uint) (profiles.ProfileView, error)
}

// TagLister returns tag names ordered by usage.
type TagLister interface {
	PopularTags(ctx context.Context) ([]string, error)
}

// AuthAuditor records login attempts.
type AuthAuditor interface {
	LogAuth(userID uint, action string, ipAddr, userAgent string, success bool)
}

// AuditLog pages through recorded audit events.
type AuditLog interface {
	GetEvents(ctx context.Context, userID uint, eventType entities.AuditEventType, limit, offset int) ([]entities.AuditEvent, int64, error)
}

// ReconcileEnqueuer schedules a favorite-count reconciliation on the task queue.
type ReconcileEnqueuer interface {
	EnqueueReconcile(ctx context.Context, source string) (string, error)
}

// FavoriteReconciler runs reconciliation inline when no task queue is configured.
type FavoriteReconciler interface {
	ReconcileFavoriteCounts(ctx context.Context) (int64, error)
}

// HealthChecker is anything whose connectivity can be checked.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// ScheduleReporter exposes when the next scheduled reconciliation fires.
type ScheduleReporter interface {
	NextRun() time.Time
}
