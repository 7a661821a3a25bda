package entrypoint

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mrlokans/conduit/internal/articles"
	"github.com/mrlokans/conduit/internal/audit"
	"github.com/mrlokans/conduit/internal/auth"
	"github.com/mrlokans/conduit/internal/cache"
	"github.com/mrlokans/conduit/internal/config"
	"github.com/mrlokans/conduit/internal/database"
	"github.com/mrlokans/conduit/internal/demo"
	articlesRepo "github.com/mrlokans/conduit/internal/database/articles"
	auditRepo "github.com/mrlokans/conduit/internal/database/audit"
	"github.com/mrlokans/conduit/internal/database/tags"
	"github.com/mrlokans/conduit/internal/database/users"
	http_controllers "github.com/mrlokans/conduit/internal/http"
	"github.com/mrlokans/conduit/internal/logging"
	"github.com/mrlokans/conduit/internal/metrics"
	"github.com/mrlokans/conduit/internal/profiles"
	"github.com/mrlokans/conduit/internal/scheduler"
	"github.com/mrlokans/conduit/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

// App holds every long-lived component built from the configuration.
type App struct {
	Router *gin.Engine

	log         *zap.SugaredLogger
	db          *database.Database
	tagsCache   *cache.TagsCache
	auditor     *audit.Service
	limiter     *auth.RateLimiter
	metrics     *metrics.Metrics
	diagnostics *http.Server
	taskClient  *tasks.Client
	taskCancel  context.CancelFunc
	scheduler   *scheduler.ReconcileScheduler
}

func Serve(router *gin.Engine, cfg *config.Config, log *zap.SugaredLogger, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Infow("Starting server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("listen failed", "error", err)
		}
	}()

	// SIGKILL cannot be caught, so only SIGINT and SIGTERM are handled.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Infow("Shutting down server", "timeout", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("Server shutdown failed", "error", err)
	}

	// Stop background work after the server stops accepting requests.
	if onShutdown != nil {
		onShutdown(ctx)
	}

	log.Info("Server exiting")
}

// Build wires the database, services, background workers and router.
// Background workers are started; call Shutdown to release everything.
func Build(cfg *config.Config, log *zap.SugaredLogger, version string) (*App, error) {
	app := &App{log: log}

	db, err := database.NewDatabase(cfg.Database, log)
	if err != nil {
		return nil, err
	}
	app.db = db

	if err := ensureSecrets(&cfg.Auth, log); err != nil {
		app.Shutdown(context.Background())
		return nil, err
	}

	usersRepository := users.NewRepository(db.DB)
	articleStore := articlesRepo.NewRepository(db.DB)

	app.auditor = audit.NewService(auditRepo.NewRepository(db.DB), log)

	redisClient := cache.NewRedisClient(cfg.Cache)
	if redisClient == nil {
		log.Info("Redis address not set, tags cache disabled")
	}
	app.tagsCache = cache.NewTagsCache(tags.NewRepository(db.DB), redisClient, cfg.Cache.TagsTTL, log)

	accounts := auth.NewService(usersRepository, cfg.Auth)
	articleService := articles.NewService(articleStore, usersRepository, app.tagsCache, app.auditor)
	profileService := profiles.NewService(usersRepository, app.auditor)

	var sessions *auth.SessionManager
	if cfg.Auth.SessionsEnabled {
		sessions, err = newSessionManager(db, cfg.Auth)
		if err != nil {
			app.Shutdown(context.Background())
			return nil, err
		}
		log.Info("Cookie sessions enabled")
	}

	csrfSecret, err := hex.DecodeString(cfg.Auth.SessionSecret)
	if err != nil {
		// Not hex, use as raw bytes
		csrfSecret = []byte(cfg.Auth.SessionSecret)
	}

	app.limiter = auth.NewRateLimiter(cfg.Auth)

	if cfg.Metrics.Enabled {
		app.metrics, err = metrics.New()
		if err != nil {
			app.Shutdown(context.Background())
			return nil, err
		}
		app.diagnostics = metrics.NewDiagnosticsServer(cfg.Metrics.Addr, app.metrics)
		go func() {
			log.Infow("Starting diagnostics server", "addr", cfg.Metrics.Addr)
			if err := app.diagnostics.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Errorw("Diagnostics server failed", "error", err)
			}
		}()
	}

	routerCfg := http_controllers.RouterConfig{
		Log:             log,
		Articles:        articleService,
		Accounts:        accounts,
		Profiles:        profileService,
		Tags:            app.tagsCache,
		AuthMiddleware:  auth.NewMiddleware(accounts, sessions),
		RateLimiter:     app.limiter,
		Sessions:        sessions,
		CSRFSecret:      csrfSecret,
		SecureCookies:   cfg.Auth.SecureCookies,
		Auditor:         app.auditor,
		AuditLog:        app.auditor,
		ReconcileDirect: articleService,
		Database:        db,
		Metrics:         app.metrics,
		CORS:            cfg.CORS,
		Demo:            demo.NewMiddleware(cfg.Demo.Enabled),
		Version:         version,
	}
	if cfg.Demo.Enabled {
		log.Info("Demo mode enabled, write operations will be blocked")
	}
	if redisClient != nil {
		routerCfg.Cache = app.tagsCache
	}

	if cfg.Tasks.Enabled {
		if err := app.startTasks(cfg, articleService); err != nil {
			app.Shutdown(context.Background())
			return nil, err
		}
		routerCfg.ReconcileQueue = app.taskClient
	} else {
		log.Info("Task queue disabled, reconciliation runs inline")
	}

	if app.taskClient != nil && cfg.Reconcile.Enabled {
		app.scheduler = scheduler.NewReconcileScheduler(app.taskClient, cfg.Reconcile, log)
		if err := app.scheduler.Start(context.Background()); err != nil {
			app.Shutdown(context.Background())
			return nil, fmt.Errorf("failed to start reconcile scheduler: %w", err)
		}
		routerCfg.Schedule = app.scheduler
	}

	app.Router = http_controllers.NewRouter(routerCfg)
	return app, nil
}

func (a *App) startTasks(cfg *config.Config, reconciler tasks.FavoriteReconciler) error {
	dbPath := tasks.DBPath(cfg.Tasks, cfg.Database.Path)
	client, err := tasks.NewClient(dbPath, cfg.Tasks, a.log)
	if err != nil {
		return fmt.Errorf("failed to initialize task client: %w", err)
	}

	deps := tasks.ReconcileDeps{
		Reconciler: reconciler,
		Auditor:    a.auditor,
		Log:        a.log,
	}
	if a.metrics != nil {
		deps.Metrics = a.metrics
	}
	client.Register(
		tasks.NewReconcileFavoriteCountsQueue(deps),
		tasks.NewCleanupAuditEventsQueue(a.auditor, a.log),
	)

	ctx, cancel := context.WithCancel(context.Background())
	client.Start(ctx)

	a.taskClient = client
	a.taskCancel = cancel
	a.log.Infow("Task queue started", "path", dbPath, "workers", cfg.Tasks.Workers)
	return nil
}

// Shutdown stops background work and closes connections. It is safe to call
// on a partially built App.
func (a *App) Shutdown(ctx context.Context) {
	if a.scheduler != nil {
		a.scheduler.Stop()
	}
	if a.taskClient != nil {
		a.taskClient.Stop(ctx)
		a.taskCancel()
		if err := a.taskClient.Close(); err != nil {
			a.log.Warnw("Failed to close task database", "error", err)
		}
	}
	if a.diagnostics != nil {
		if err := a.diagnostics.Shutdown(ctx); err != nil {
			a.log.Warnw("Diagnostics server shutdown failed", "error", err)
		}
	}
	if a.limiter != nil {
		a.limiter.Stop()
	}
	if a.auditor != nil {
		a.auditor.Wait()
	}
	if a.tagsCache != nil {
		if err := a.tagsCache.Close(); err != nil {
			a.log.Warnw("Failed to close redis client", "error", err)
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.log.Warnw("Failed to close database", "error", err)
		}
	}
}

func Run(cfg *config.Config, version string) {
	log, err := logging.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync() //nolint:errcheck

	log.Infow("Starting Conduit", "version", version)

	if !cfg.Log.Development {
		gin.SetMode(gin.ReleaseMode)
	}

	app, err := Build(cfg, log, version)
	if err != nil {
		log.Fatalw("Failed to start", "error", err)
	}

	Serve(app.Router, cfg, log, app.Shutdown)
}

// ensureSecrets fills in the JWT and session secrets when they are not
// configured. Generated secrets do not survive a restart.
func ensureSecrets(cfg *config.Auth, log *zap.SugaredLogger) error {
	if cfg.JWTSecret == "" {
		secret, err := auth.GenerateSecret()
		if err != nil {
			return fmt.Errorf("failed to generate JWT secret: %w", err)
		}
		cfg.JWTSecret = secret
		log.Warn("Generated JWT secret (set AUTH_JWT_SECRET to keep tokens valid across restarts)")
	}
	if cfg.SessionsEnabled && cfg.SessionSecret == "" {
		secret, err := auth.GenerateSecret()
		if err != nil {
			return fmt.Errorf("failed to generate session secret: %w", err)
		}
		cfg.SessionSecret = secret
		log.Info("Generated session secret (set AUTH_SESSION_SECRET to persist)")
	}
	return nil
}

func newSessionManager(db *database.Database, cfg config.Auth) (*auth.SessionManager, error) {
	if db.Driver != config.DriverSQLite {
		return auth.NewSessionManager(auth.NewMemorySessionStore(), cfg), nil
	}

	sqlDB, err := db.DB.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get SQL DB for sessions: %w", err)
	}
	store, err := auth.NewSQLiteSessionStore(sqlDB)
	if err != nil {
		return nil, err
	}
	return auth.NewSessionManager(store, cfg), nil
}
