package migration

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"go.uber.org/zap"
)

// Migrator drives schema migrations for the service database. It is a thin
// wrapper over golang-migrate that adds logging and no-change handling.
type Migrator struct {
	migrate *migrate.Migrate
	logger  *zap.Logger
}

// New builds a Migrator reading SQL files from migrationsPath and applying
// them over the given postgres connection.
func New(db *sql.DB, migrationsPath string, logger *zap.Logger) (*Migrator, error) {
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return nil, fmt.Errorf("create postgres driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+migrationsPath, "postgres", driver)
	if err != nil {
		return nil, fmt.Errorf("create migrate instance: %w", err)
	}

	return &Migrator{migrate: m, logger: logger}, nil
}

// Up applies every pending migration.
func (m *Migrator) Up() error {
	err := m.migrate.Up()
	switch {
	case errors.Is(err, migrate.ErrNoChange):
		m.logger.Info("Schema already up to date")
		return nil
	case err != nil:
		return fmt.Errorf("migrate up: %w", err)
	}
	m.logVersion("Migrations applied")
	return nil
}

// Down rolls back every applied migration.
func (m *Migrator) Down() error {
	err := m.migrate.Down()
	switch {
	case errors.Is(err, migrate.ErrNoChange):
		m.logger.Info("Nothing to roll back")
		return nil
	case err != nil:
		return fmt.Errorf("migrate down: %w", err)
	}
	m.logger.Info("All migrations rolled back")
	return nil
}

// Steps applies n migrations; negative n rolls back.
func (m *Migrator) Steps(n int) error {
	err := m.migrate.Steps(n)
	switch {
	case errors.Is(err, migrate.ErrNoChange):
		m.logger.Info("Schema already up to date")
		return nil
	case err != nil:
		return fmt.Errorf("migrate steps(%d): %w", n, err)
	}
	m.logVersion("Migration steps applied")
	return nil
}

// GoTo migrates up or down to the given version.
func (m *Migrator) GoTo(version uint) error {
	err := m.migrate.Migrate(version)
	switch {
	case errors.Is(err, migrate.ErrNoChange):
		m.logger.Info("Already at target version", zap.Uint("version", version))
		return nil
	case err != nil:
		return fmt.Errorf("migrate to version %d: %w", version, err)
	}
	m.logVersion("Migrated to target version")
	return nil
}

// Version reports the current schema version. A fresh database reports
// version 0 without error.
func (m *Migrator) Version() (uint, bool, error) {
	version, dirty, err := m.migrate.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("read migration version: %w", err)
	}
	return version, dirty, nil
}

// Force overwrites the recorded version without running any SQL. Only for
// recovering a dirty schema after a failed migration.
func (m *Migrator) Force(version int) error {
	if err := m.migrate.Force(version); err != nil {
		return fmt.Errorf("force version %d: %w", version, err)
	}
	m.logger.Warn("Migration version forced", zap.Int("version", version))
	return nil
}

// Drop destroys every object in the database.
func (m *Migrator) Drop() error {
	if err := m.migrate.Drop(); err != nil {
		return fmt.Errorf("drop database: %w", err)
	}
	m.logger.Warn("Database dropped")
	return nil
}

// Close releases the source and database handles.
func (m *Migrator) Close() error {
	sourceErr, dbErr := m.migrate.Close()
	if sourceErr != nil {
		return fmt.Errorf("close migration source: %w", sourceErr)
	}
	if dbErr != nil {
		return fmt.Errorf("close migration database: %w", dbErr)
	}
	return nil
}

func (m *Migrator) logVersion(msg string) {
	version, dirty, err := m.migrate.Version()
	if err != nil {
		m.logger.Info(msg)
		return
	}
	m.logger.Info(msg, zap.Uint("version", version), zap.Bool("dirty", dirty))
}
