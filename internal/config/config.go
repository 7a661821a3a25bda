package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type (
	Config struct {
		HTTP
		Global
		Database
		Auth
		Tasks
		Reconcile
		Cache
		CORS
		Metrics
		Log
		Demo
	}

	HTTP struct {
		Port int32
		Host string
	}

	Global struct {
		ShutdownTimeoutInSeconds int
	}

	Database struct {
		Driver string // "sqlite" or "mysql"
		Path   string // sqlite file path
		DSN    string // mysql DSN, e.g. user:pass@tcp(127.0.0.1:3306)/conduit?parseTime=true
		Debug  bool   // log every SQL statement
	}

	Auth struct {
		JWTSecret   string
		TokenExpiry time.Duration
		BcryptCost  int

		// Cookie sessions are opt-in; API clients use the Authorization header.
		SessionsEnabled bool
		SessionSecret   string // CSRF key for cookie sessions; auto-generated if empty
		SessionLifetime time.Duration
		SecureCookies   bool

		MaxLoginAttempts int           // Max failed attempts before lockout (default: 5)
		RateLimitWindow  time.Duration // Window for counting attempts (default: 15m)
		LockoutDuration  time.Duration // How long to lock out (default: 30m)
	}

	Tasks struct {
		Enabled         bool
		DBPath          string // separate sqlite file for the queue; derived from Database.Path if empty
		Workers         int
		ReleaseAfter    time.Duration
		CleanupInterval time.Duration
	}

	Reconcile struct {
		Enabled  bool
		Schedule string // Cron format: "*/30 * * * *" = every 30 minutes
	}

	Cache struct {
		RedisAddr     string // empty disables the cache
		RedisPassword string
		RedisDB       int
		TagsTTL       time.Duration
	}

	CORS struct {
		AllowedOrigins []string
	}

	Metrics struct {
		Enabled bool
		Addr    string // diagnostics listener serving /metrics
	}

	Log struct {
		Development bool
		Level       string
	}

	// Demo mode serves a seeded database read-only.
	Demo struct {
		Enabled bool
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8080)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 5)

	v.SetDefault("database_driver", DriverSQLite)
	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("database_dsn", "")
	v.SetDefault("database_debug", false)

	// Auth defaults
	v.SetDefault("auth_jwt_secret", "")          // Auto-generated if empty
	v.SetDefault("auth_token_expiry", "720h")    // 30 days
	v.SetDefault("auth_bcrypt_cost", 12)         // bcrypt cost factor
	v.SetDefault("auth_sessions_enabled", false) // Cookie sessions off by default
	v.SetDefault("auth_session_secret", "")
	v.SetDefault("auth_session_lifetime", "24h")
	v.SetDefault("auth_secure_cookies", true)
	v.SetDefault("auth_max_login_attempts", 5)
	v.SetDefault("auth_rate_limit_window", "15m")
	v.SetDefault("auth_lockout_duration", "30m")

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("tasks_db_path", "")
	v.SetDefault("task_workers", 1)
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")

	v.SetDefault("reconcile_enabled", true)
	v.SetDefault("reconcile_schedule", "*/30 * * * *")

	v.SetDefault("redis_addr", "")
	v.SetDefault("redis_password", "")
	v.SetDefault("redis_db", 0)
	v.SetDefault("cache_tags_ttl", "5m")

	v.SetDefault("cors_allowed_origins", "*")

	v.SetDefault("metrics_enabled", true)
	v.SetDefault("metrics_addr", ":9999")

	v.SetDefault("log_development", false)
	v.SetDefault("log_level", "info")

	v.SetDefault("demo_mode", false)

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Database: Database{
			Driver: v.GetString("DATABASE_DRIVER"),
			Path:   v.GetString("DATABASE_PATH"),
			DSN:    v.GetString("DATABASE_DSN"),
			Debug:  v.GetBool("DATABASE_DEBUG"),
		},
		Auth: Auth{
			JWTSecret:        v.GetString("AUTH_JWT_SECRET"),
			TokenExpiry:      v.GetDuration("AUTH_TOKEN_EXPIRY"),
			BcryptCost:       v.GetInt("AUTH_BCRYPT_COST"),
			SessionsEnabled:  v.GetBool("AUTH_SESSIONS_ENABLED"),
			SessionSecret:    v.GetString("AUTH_SESSION_SECRET"),
			SessionLifetime:  v.GetDuration("AUTH_SESSION_LIFETIME"),
			SecureCookies:    v.GetBool("AUTH_SECURE_COOKIES"),
			MaxLoginAttempts: v.GetInt("AUTH_MAX_LOGIN_ATTEMPTS"),
			RateLimitWindow:  v.GetDuration("AUTH_RATE_LIMIT_WINDOW"),
			LockoutDuration:  v.GetDuration("AUTH_LOCKOUT_DURATION"),
		},
		Tasks: Tasks{
			Enabled:         v.GetBool("TASKS_ENABLED"),
			DBPath:          v.GetString("TASKS_DB_PATH"),
			Workers:         v.GetInt("TASK_WORKERS"),
			ReleaseAfter:    v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval: v.GetDuration("TASK_CLEANUP_INTERVAL"),
		},
		Reconcile: Reconcile{
			Enabled:  v.GetBool("RECONCILE_ENABLED"),
			Schedule: v.GetString("RECONCILE_SCHEDULE"),
		},
		Cache: Cache{
			RedisAddr:     v.GetString("REDIS_ADDR"),
			RedisPassword: v.GetString("REDIS_PASSWORD"),
			RedisDB:       v.GetInt("REDIS_DB"),
			TagsTTL:       v.GetDuration("CACHE_TAGS_TTL"),
		},
		CORS: CORS{
			AllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		},
		Metrics: Metrics{
			Enabled: v.GetBool("METRICS_ENABLED"),
			Addr:    v.GetString("METRICS_ADDR"),
		},
		Log: Log{
			Development: v.GetBool("LOG_DEVELOPMENT"),
			Level:       v.GetString("LOG_LEVEL"),
		},
		Demo: Demo{
			Enabled: v.GetBool("DEMO_MODE"),
		},
	}
}

// splitList turns a comma-separated env value into a trimmed slice.
func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
