package cli

import (
	"flag"

	"github.com/mrlokans/conduit/internal/config"
	"github.com/mrlokans/conduit/internal/database"
	"github.com/mrlokans/conduit/internal/logging"
)

// databaseFlags binds the connection flags shared by every command. Defaults
// come from the environment so commands target the same database as the server.
type databaseFlags struct {
	Driver string
	Path   string
	DSN    string
}

func newDatabaseFlags(cfg config.Database) databaseFlags {
	return databaseFlags{Driver: cfg.Driver, Path: cfg.Path, DSN: cfg.DSN}
}

// register binds the flags, keeping the current values as defaults.
func (d *databaseFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&d.Driver, "driver", d.Driver, "Database driver: sqlite or mysql")
	fs.StringVar(&d.Path, "db", d.Path, "Path to the sqlite database file")
	fs.StringVar(&d.DSN, "dsn", d.DSN, "MySQL DSN (mysql driver only)")
}

func (d *databaseFlags) open() (*database.Database, error) {
	return database.NewDatabase(config.Database{
		Driver: d.Driver,
		Path:   d.Path,
		DSN:    d.DSN,
	}, logging.Nop())
}
