package recordrepo

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
)

//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var migrationsFS embed.FS

// Backend names a record store flavour.
type Backend string

const (
	BackendMemory   Backend = "memory"
	BackendPostgres Backend = "postgres"
	BackendSQLite   Backend = "sqlite"
)

// Migrate moves the record schema of the given backend.
// targetVersion < 0 migrates to latest, 0 rolls everything back, and > 0
// migrates to that exact version. It returns the resulting version.
func Migrate(backend Backend, dsn string, targetVersion int, logger *slog.Logger) (uint, error) {
	var driverName string
	switch backend {
	case BackendPostgres:
		driverName = "pgx"
	case BackendSQLite:
		driverName = SQLiteDriver
	default:
		return 0, fmt.Errorf("migrations are not supported for backend %q", backend)
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return 0, fmt.Errorf("failed to open %s database: %w", backend, err)
	}
	defer func() { _ = db.Close() }()
	if err := db.Ping(); err != nil {
		return 0, fmt.Errorf("failed to ping %s database: %w", backend, err)
	}

	var driver database.Driver
	switch backend {
	case BackendPostgres:
		driver, err = postgres.WithInstance(db, &postgres.Config{})
	case BackendSQLite:
		driver, err = sqlite.WithInstance(db, &sqlite.Config{})
	}
	if err != nil {
		return 0, fmt.Errorf("failed to create %s migrate driver: %w", backend, err)
	}

	sub, err := fs.Sub(migrationsFS, "migrations/"+string(backend))
	if err != nil {
		return 0, fmt.Errorf("failed to access migrations directory: %w", err)
	}
	source, err := iofs.New(sub, ".")
	if err != nil {
		return 0, fmt.Errorf("failed to create migration source: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", source, string(backend), driver)
	if err != nil {
		return 0, fmt.Errorf("failed to create migrate instance: %w", err)
	}

	current, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return 0, fmt.Errorf("failed to get current migration version: %w", err)
	}
	if dirty {
		return current, fmt.Errorf("database is in a dirty state at version %d", current)
	}

	switch {
	case targetVersion < 0:
		err = m.Up()
	case targetVersion == 0:
		err = m.Down()
	default:
		err = m.Migrate(uint(targetVersion))
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return current, fmt.Errorf("failed to migrate %s: %w", backend, err)
	}

	version, _, verr := m.Version()
	if verr != nil && !errors.Is(verr, migrate.ErrNilVersion) {
		return current, fmt.Errorf("failed to read migration version: %w", verr)
	}
	logger.Info("record schema migrated", "backend", backend, "from", current, "to", version, "changed", !errors.Is(err, migrate.ErrNoChange))
	return version, nil
}
