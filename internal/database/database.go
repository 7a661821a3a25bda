package database

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/mrlokans/conduit/internal/config"
	"github.com/mrlokans/conduit/internal/entities"
	"github.com/mrlokans/conduit/internal/logging"
)

// sqliteOptions are appended to file paths that carry no query string of their own.
const sqliteOptions = "?_journal=WAL&_timeout=5000&_busy_timeout=5000&_foreign_keys=on"

type Database struct {
	DB     *gorm.DB
	Driver string
}

// Models lists every entity managed by AutoMigrate.
func Models() []interface{} {
	return []interface{}{
		&entities.User{},
		&entities.Follow{},
		&entities.Tag{},
		&entities.Article{},
		&entities.Favorite{},
		&entities.AuditEvent{},
	}
}

func NewDatabase(cfg config.Database, log *zap.SugaredLogger) (*Database, error) {
	dialector, err := dialectorFor(cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logging.NewGormLogger(log, cfg.Debug),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(Models()...); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	log.Infow("Database initialized", "driver", cfg.Driver, "target", describeTarget(cfg))

	return &Database{DB: db, Driver: cfg.Driver}, nil
}

func dialectorFor(cfg config.Database) (gorm.Dialector, error) {
	switch cfg.Driver {
	case config.DriverSQLite, "":
		path := cfg.Path
		if path == "" {
			path = config.DefaultDatabasePath
		}
		if path != ":memory:" && !strings.Contains(path, "?") {
			path += sqliteOptions
		}
		return sqlite.Open(path), nil
	case config.DriverMySQL:
		if cfg.DSN == "" {
			return nil, fmt.Errorf("DATABASE_DSN is required for the mysql driver")
		}
		return mysql.Open(cfg.DSN), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

func describeTarget(cfg config.Database) string {
	if cfg.Driver == config.DriverMySQL {
		// Never log credentials.
		if at := strings.LastIndex(cfg.DSN, "@"); at >= 0 {
			return cfg.DSN[at+1:]
		}
		return "mysql"
	}
	return cfg.Path
}

// Ping checks that the underlying connection is alive.
func (d *Database) Ping(ctx context.Context) error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
