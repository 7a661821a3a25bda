// Package interfaces documents the core abstractions used throughout the application.
//
// Consumers declare the narrow interfaces they need next to their own code;
// this package only asserts that the concrete types wired in
// internal/entrypoint satisfy them.
//
// # Interface Categories
//
// ## Data Access Interfaces
//
//   - articles.Store: article persistence and favorites (internal/articles/service.go)
//   - articles.UserStore, profiles.UserStore, auth.UserStore: slices of the
//     users repository (internal/database/users)
//   - cache.TagsLoader: popular tags query behind the redis cache (internal/cache/tags.go)
//
// ## HTTP Interfaces
//
// Controllers depend on service interfaces declared in internal/http/stores.go
// (ArticleService, AccountService, ProfileService, TagLister) so tests can
// swap in fakes. HealthChecker is implemented by the database and the tags cache.
//
// ## Background Work
//
//   - tasks.FavoriteReconciler: recomputes favorite counts
//   - tasks.AuditEventCleaner: prunes old audit events
//   - scheduler.Enqueuer: the task client as seen by the cron scheduler
//
// # Adding a New Implementation
//
// Add a `var _ Interface = (*Type)(nil)` line to checks.go so a missing
// method fails the build instead of a runtime type assertion.
package interfaces
