package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/feedlot/backend/internal/infrastructure/config"
	"github.com/feedlot/backend/internal/infrastructure/persistence/models"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Database is the relational store behind the gorm repositories
type Database struct {
	DB     *gorm.DB
	driver string
}

// NewDatabase connects without statement logging
func NewDatabase(cfg *config.DatabaseConfig) (*Database, error) {
	return NewDatabaseWithLogger(cfg, logger.Default.LogMode(logger.Silent))
}

// NewDatabaseWithLogger connects, sizes the pool and pings once.
// Driver errors are translated so unique violations surface as gorm.ErrDuplicatedKey.
func NewDatabaseWithLogger(cfg *config.DatabaseConfig, gormLogger logger.Interface) (*Database, error) {
	dialector, err := dialectorFor(cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:                 gormLogger,
		SkipDefaultTransaction: true,
		PrepareStmt:            true,
		TranslateError:         true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	d := &Database{DB: db, driver: dialector.Name()}
	sqlDB, err := d.SQL()
	if err != nil {
		return nil, err
	}
	configurePool(sqlDB, cfg, d.driver)

	if err := d.Ping(context.Background()); err != nil {
		return nil, err
	}
	return d, nil
}

func dialectorFor(cfg *config.DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case "postgres", "":
		return postgres.Open(cfg.DSN()), nil
	case "sqlite":
		return sqlite.Open(cfg.DSN()), nil
	}
	return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
}

// sqlite admits one writer, so its pool holds a single connection and
// concurrent postings queue on it instead of failing with SQLITE_BUSY
func configurePool(sqlDB *sql.DB, cfg *config.DatabaseConfig, driver string) {
	if driver == "sqlite" {
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Minute)
	sqlDB.SetConnMaxIdleTime(time.Duration(cfg.ConnMaxIdleTime) * time.Minute)
}

// Driver returns the dialect name, "postgres" or "sqlite"
func (d *Database) Driver() string {
	return d.driver
}

// SQL returns the pooled connection, for the migrator
func (d *Database) SQL() (*sql.DB, error) {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB, nil
}

// AutoMigrate creates or alters every engine table from the models.
// Postgres deployments use the SQL migrations instead.
func (d *Database) AutoMigrate() error {
	return d.DB.AutoMigrate(models.All()...)
}

// Ping reports whether the database answers; it serves the readiness check
func (d *Database) Ping(ctx context.Context) error {
	sqlDB, err := d.SQL()
	if err != nil {
		return err
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}
	return nil
}

// Close releases the pool
func (d *Database) Close() error {
	sqlDB, err := d.SQL()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
