package config

// Database drivers understood by database.NewDatabase.
const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
)

const (
	// DefaultDatabasePath is the default path for the sqlite database
	DefaultDatabasePath = "./conduit.db"

	// DefaultPageLimit is used when a list request has no usable limit.
	DefaultPageLimit = 20

	// MaxPageLimit caps the limit query parameter.
	MaxPageLimit = 100
)
