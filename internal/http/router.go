package http

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mrlokans/conduit/internal/auth"
	"github.com/mrlokans/conduit/internal/config"
)

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	log := cfg.Log
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	router := gin.New()
	router.Use(RequestLogger(log))
	router.Use(Recovery())
	if cfg.Metrics != nil {
		router.Use(cfg.Metrics.Middleware())
	}
	router.Use(cors.New(corsConfig(cfg.CORS)))
	router.Use(auth.SecurityHeadersMiddleware(cfg.SecureCookies))
	if cfg.Demo.IsEnabled() {
		router.Use(cfg.Demo.Handler())
	}

	// Sessions load before CSRF so the CSRF check sees the session cookie
	// and the rewritten request keeps the session context.
	if cfg.Sessions != nil {
		router.Use(cfg.Sessions.LoadAndSave())
		if len(cfg.CSRFSecret) > 0 {
			router.Use(auth.CSRFMiddleware(cfg.CSRFSecret, cfg.SecureCookies, cfg.Sessions))
		}
	}
	router.Use(cfg.AuthMiddleware.Authenticate())
	required := cfg.AuthMiddleware.RequireAuth()

	health := NewHealthController(cfg.Database, cfg.Cache, cfg.Version)
	if cfg.Schedule != nil {
		health.WithSchedule(cfg.Schedule)
	}
	router.GET("/health", health.Status)
	router.GET("/ping", health.Ping)

	api := router.Group("/api")

	articles := NewArticlesController(cfg.Articles)
	api.GET("/articles", articles.List)
	api.GET("/articles/feed", required, articles.Feed)
	api.GET("/articles/:slug", articles.Get)
	api.POST("/articles", required, articles.Create)
	api.PUT("/articles/:slug", required, respondNotImplemented)
	api.DELETE("/articles/:slug", required, respondNotImplemented)
	api.POST("/articles/:slug/favorite", required, articles.Favorite)
	api.DELETE("/articles/:slug/favorite", required, articles.Unfavorite)
	api.GET("/articles/:slug/comments", respondNotImplemented)
	api.POST("/articles/:slug/comments", respondNotImplemented)
	api.DELETE("/articles/:slug/comments/:id", respondNotImplemented)

	users := NewUsersController(cfg.Accounts, cfg.RateLimiter, cfg.Sessions, cfg.Auditor)
	api.POST("/users", users.Register)
	api.POST("/users/login", users.Login)
	api.GET("/user", required, users.Current)
	if cfg.Sessions != nil {
		api.POST("/users/logout", users.Logout)
	}

	profiles := NewProfilesController(cfg.Profiles)
	api.GET("/profiles/:username", profiles.Get)
	api.POST("/profiles/:username/follow", required, profiles.Follow)
	api.DELETE("/profiles/:username/follow", required, profiles.Unfollow)

	tags := NewTagsController(cfg.Tags)
	api.GET("/tags", tags.List)

	admin := NewAdminController(cfg.ReconcileQueue, cfg.ReconcileDirect, cfg.AuditLog)
	api.POST("/admin/reconcile", required, admin.Reconcile)
	api.GET("/admin/audit", required, admin.Events)

	router.NoRoute(func(c *gin.Context) {
		c.JSON(404, ErrorResponse{Error: "route not found"})
	})

	return router
}

func corsConfig(cfg config.CORS) cors.Config {
	cc := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", auth.CSRFTokenHeader, RequestIDHeader},
		ExposeHeaders: []string{auth.CSRFTokenHeader, RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}

	allowAll := len(cfg.AllowedOrigins) == 0
	for _, origin := range cfg.AllowedOrigins {
		if origin == "*" {
			allowAll = true
		}
	}
	if allowAll {
		cc.AllowAllOrigins = true
	} else {
		cc.AllowOrigins = cfg.AllowedOrigins
		cc.AllowCredentials = true
	}
	return cc
}
