package postgres

import (
	"context"
	"database/sql"
	"embed"
	stderrors "errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/turtacn/chemsafe/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/chemsafe/pkg/errors"
)

// migrationsTable is the golang-migrate bookkeeping table.
const migrationsTable = "chemsafe_schema_migrations"

//go:embed migrations/*.sql
var migrationFS embed.FS

// migrationSource returns the embedded migration files as a golang-migrate
// source driver.
func migrationSource() (source.Driver, error) {
	return iofs.New(migrationFS, "migrations")
}

// Migrator applies the embedded schema migrations.
type Migrator struct {
	m      *migrate.Migrate
	logger logging.Logger
}

// NewMigrator binds the embedded migrations to one dedicated connection
// taken from db. Close returns that connection and leaves the pool open.
func NewMigrator(ctx context.Context, db *sql.DB, log logging.Logger) (*Migrator, error) {
	src, err := migrationSource()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to open migration source")
	}
	conn, err := db.Conn(ctx)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to acquire migration connection")
	}
	driver, err := migratepg.WithConnection(ctx, conn, &migratepg.Config{MigrationsTable: migrationsTable})
	if err != nil {
		conn.Close()
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to create migration driver")
	}
	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to create migrate instance")
	}
	return &Migrator{m: m, logger: logging.OrNop(log)}, nil
}

// Up applies all pending migrations. No pending migrations is not an error.
func (g *Migrator) Up() error {
	if err := g.m.Up(); err != nil {
		if stderrors.Is(err, migrate.ErrNoChange) {
			g.logger.Info("Database schema is up to date")
			return nil
		}
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to run migrations")
	}
	g.logVersion("Applied database migrations")
	return nil
}

// Down rolls back steps migrations.
func (g *Migrator) Down(steps int) error {
	if steps <= 0 {
		return errors.InvalidParam(fmt.Sprintf("steps must be greater than 0, got %d", steps))
	}
	if err := g.m.Steps(-steps); err != nil {
		if stderrors.Is(err, migrate.ErrNoChange) {
			return errors.New(errors.ErrCodeDatabaseError, "no migrations to roll back")
		}
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to roll back migrations")
	}
	g.logVersion("Rolled back database migrations")
	return nil
}

// Version reports the applied schema version. A database without any applied
// migration reports version 0.
func (g *Migrator) Version() (version uint, dirty bool, err error) {
	version, dirty, err = g.m.Version()
	if err != nil {
		if stderrors.Is(err, migrate.ErrNilVersion) {
			return 0, false, nil
		}
		return 0, false, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to read migration version")
	}
	return version, dirty, nil
}

// Force sets the schema version without running migrations. Used to recover
// from a dirty state after a failed migration was fixed by hand.
func (g *Migrator) Force(version int) error {
	if err := g.m.Force(version); err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to force migration version")
	}
	g.logger.Warn("Forced database migration version", logging.Int("version", version))
	return nil
}

// Close releases the migration source and connection.
func (g *Migrator) Close() error {
	srcErr, dbErr := g.m.Close()
	if srcErr != nil {
		return srcErr
	}
	return dbErr
}

func (g *Migrator) logVersion(msg string) {
	v, dirty, err := g.Version()
	if err != nil {
		g.logger.Warn(msg, logging.Err(err))
		return
	}
	g.logger.Info(msg, logging.Int("version", int(v)), logging.Bool("dirty", dirty))
}

// RunMigrations applies all pending migrations on the connection's pool.
func (c *Connection) RunMigrations(ctx context.Context) error {
	m, err := NewMigrator(ctx, c.db, c.logger)
	if err != nil {
		return err
	}
	defer m.Close()
	return m.Up()
}
