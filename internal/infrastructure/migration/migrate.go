package migration

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/feedlot/backend/migrations"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
)

// Migrator applies the SQL migrations of one source to a postgres database
type Migrator struct {
	migrate *migrate.Migrate
	source  source.Driver
	logger  *zap.Logger
}

// Status describes how far the database is behind the available migrations
type Status struct {
	Current uint
	Latest  uint
	Pending int
	Dirty   bool
}

// SourceFS returns the migration files to use: the directory at path if
// given, otherwise the migrations embedded in the binary
func SourceFS(path string) fs.FS {
	if path == "" {
		return migrations.FS
	}
	return os.DirFS(path)
}

// New creates a Migrator applying the migrations in fsys to a postgres db.
// Closing the Migrator closes db.
func New(db *sql.DB, fsys fs.FS, logger *zap.Logger) (*Migrator, error) {
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return nil, fmt.Errorf("postgres migration driver: %w", err)
	}
	src, err := iofs.New(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("open migration source: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		return nil, fmt.Errorf("create migrator: %w", err)
	}

	logger = logger.Named("migrate")
	m.Log = migrateLogger{logger.Sugar()}
	return &Migrator{migrate: m, source: src, logger: logger}, nil
}

// migrateLogger routes golang-migrate's own progress lines to zap at debug
type migrateLogger struct {
	s *zap.SugaredLogger
}

func (l migrateLogger) Printf(format string, v ...interface{}) {
	l.s.Debugf(strings.TrimRight(format, "\n"), v...)
}

func (l migrateLogger) Verbose() bool { return l.s.Desugar().Core().Enabled(zap.DebugLevel) }

// apply runs one migrate operation. ErrNoChange is not an error; otherwise
// the resulting version is logged.
func (m *Migrator) apply(op string, fn func() error, fields ...zap.Field) error {
	m.logger.Info("Migrating", append([]zap.Field{zap.String("op", op)}, fields...)...)
	err := fn()
	if errors.Is(err, migrate.ErrNoChange) {
		m.logger.Info("Schema already current", zap.String("op", op))
		return nil
	}
	if err != nil {
		return fmt.Errorf("migrate %s: %w", op, err)
	}
	version, dirty, err := m.Version()
	if err != nil {
		return err
	}
	m.logger.Info("Migration finished", zap.String("op", op), zap.Uint("version", version), zap.Bool("dirty", dirty))
	return nil
}

// Up runs all pending migrations
func (m *Migrator) Up() error {
	return m.apply("up", m.migrate.Up)
}

// Down rolls back all migrations
func (m *Migrator) Down() error {
	return m.apply("down", m.migrate.Down)
}

// Steps applies n migrations; a negative n rolls back
func (m *Migrator) Steps(n int) error {
	return m.apply("steps", func() error { return m.migrate.Steps(n) }, zap.Int("steps", n))
}

// GoTo migrates up or down to version
func (m *Migrator) GoTo(version uint) error {
	return m.apply("goto", func() error { return m.migrate.Migrate(version) }, zap.Uint("target_version", version))
}

// Version returns the current migration version, 0 when none is applied
func (m *Migrator) Version() (uint, bool, error) {
	version, dirty, err := m.migrate.Version()
	if err != nil {
		if errors.Is(err, migrate.ErrNilVersion) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("read migration version: %w", err)
	}
	return version, dirty, nil
}

// Status compares the applied version with the newest available migration
func (m *Migrator) Status() (*Status, error) {
	current, dirty, err := m.Version()
	if err != nil {
		return nil, err
	}
	versions, err := sourceVersions(m.source)
	if err != nil {
		return nil, err
	}
	st := &Status{Current: current, Dirty: dirty}
	for _, v := range versions {
		if v > current {
			st.Pending++
		}
		st.Latest = v
	}
	return st, nil
}

// sourceVersions lists every migration version of src in ascending order
func sourceVersions(src source.Driver) ([]uint, error) {
	v, err := src.First()
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read first migration: %w", err)
	}
	versions := []uint{v}
	for {
		next, err := src.Next(v)
		if errors.Is(err, fs.ErrNotExist) {
			return versions, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read migration after %d: %w", v, err)
		}
		versions = append(versions, next)
		v = next
	}
}

// Force records version as applied and clears the dirty flag without
// running any SQL
func (m *Migrator) Force(version int) error {
	if err := m.migrate.Force(version); err != nil {
		return fmt.Errorf("force version %d: %w", version, err)
	}
	m.logger.Warn("Migration version forced", zap.Int("version", version))
	return nil
}

// Drop removes every object in the database, migration history included
func (m *Migrator) Drop() error {
	m.logger.Warn("Dropping database objects")
	if err := m.migrate.Drop(); err != nil {
		return fmt.Errorf("drop database: %w", err)
	}
	return nil
}

// Close releases the source and the database
func (m *Migrator) Close() error {
	sourceErr, dbErr := m.migrate.Close()
	return errors.Join(sourceErr, dbErr)
}
