package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"
	"slices"
	"strconv"

	"github.com/feedlot/backend/internal/infrastructure/config"
	"github.com/feedlot/backend/internal/infrastructure/logger"
	"github.com/feedlot/backend/internal/infrastructure/migration"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

// command is one migrate subcommand. Commands with a nil db run against the
// migration files only.
type command struct {
	usage string
	args  int
	db    func(m *migration.Migrator, args []string, log *zap.Logger) error
	files func(path string, args []string, log *zap.Logger) error
}

var commands = map[string]command{
	"up": {usage: "up", db: func(m *migration.Migrator, _ []string, _ *zap.Logger) error {
		return m.Up()
	}},
	"down": {usage: "down", db: func(m *migration.Migrator, _ []string, _ *zap.Logger) error {
		return m.Down()
	}},
	"step": {usage: "step <n>", args: 1, db: func(m *migration.Migrator, args []string, _ *zap.Logger) error {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid step count %q", args[0])
		}
		return m.Steps(n)
	}},
	"goto": {usage: "goto <version>", args: 1, db: func(m *migration.Migrator, args []string, _ *zap.Logger) error {
		v, err := strconv.ParseUint(args[0], 10, 32)
		if err != nil {
			return fmt.Errorf("invalid version %q", args[0])
		}
		return m.GoTo(uint(v))
	}},
	"status": {usage: "status", db: status},
	"force": {usage: "force <version>", args: 1, db: func(m *migration.Migrator, args []string, log *zap.Logger) error {
		v, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid version %q", args[0])
		}
		log.Warn("Forcing migration version; the schema is not touched", zap.Int("version", v))
		return m.Force(v)
	}},
	"drop": {usage: "drop -confirm", db: func(m *migration.Migrator, args []string, _ *zap.Logger) error {
		if !slices.Contains(args, "-confirm") && !slices.Contains(args, "--confirm") {
			return errors.New("drop needs -confirm")
		}
		return m.Drop()
	}},
	"create": {usage: "create <name> [description]", args: 1, files: create},
	"list":   {usage: "list", files: list},
}

func status(m *migration.Migrator, _ []string, log *zap.Logger) error {
	st, err := m.Status()
	if err != nil {
		return err
	}
	log.Info("Migration status",
		zap.Uint("version", st.Current),
		zap.Uint("latest", st.Latest),
		zap.Int("pending", st.Pending),
		zap.Bool("dirty", st.Dirty))
	return nil
}

func create(path string, args []string, log *zap.Logger) error {
	if path == "" {
		return errors.New("create writes files; pass -path with the migrations directory")
	}
	description := ""
	if len(args) > 1 {
		description = args[1]
	}
	mf, err := migration.CreateMigration(path, args[0], description)
	if err != nil {
		return err
	}
	log.Info("Migration created",
		zap.String("version", mf.Version),
		zap.String("up_file", mf.UpPath),
		zap.String("down_file", mf.DownPath))
	return nil
}

func list(path string, _ []string, log *zap.Logger) error {
	fsys := migration.SourceFS(path)
	if err := migration.Validate(fsys); err != nil {
		return err
	}
	names, err := migration.ListMigrations(fsys)
	if err != nil {
		return err
	}
	log.Info("Available migrations", zap.Int("count", len(names)))
	for _, n := range names {
		fmt.Println("  -", n)
	}
	return nil
}

func main() {
	path := flag.String("path", "", "Migrations directory (default: migrations embedded in the binary)")
	level := flag.String("log-level", "info", "Log level: debug, info, warn, error")
	flag.Usage = printUsage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(2)
	}
	name := args[0]
	if name == "version" {
		name = "status"
	}
	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", args[0])
		printUsage()
		os.Exit(2)
	}
	if len(args)-1 < cmd.args {
		fmt.Fprintf(os.Stderr, "usage: migrate %s\n", cmd.usage)
		os.Exit(2)
	}

	log, err := logger.New(&logger.Config{
		Level:      *level,
		Format:     "console",
		Output:     "stdout",
		TimeFormat: "2006-01-02 15:04:05",
		Service:    "migrate",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = log.Sync()
	}()
	log = log.With(zap.String("command", name))

	if err := run(cmd, *path, args[1:], log); err != nil {
		log.Fatal("Migration command failed", zap.Error(err))
	}
}

func run(cmd command, path string, args []string, log *zap.Logger) error {
	if cmd.files != nil {
		return cmd.files(path, args, log)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	if cfg.Database.Driver == "sqlite" {
		return errors.New("SQL migrations target postgres; sqlite schemas are auto-migrated at server startup")
	}

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}

	m, err := migration.New(db, migration.SourceFS(path), log)
	if err != nil {
		return err
	}
	defer m.Close()
	return cmd.db(m, args, log)
}

func printUsage() {
	fmt.Fprint(os.Stderr, `Feedlot database migrations

Usage:
  migrate [-path dir] [-log-level level] <command> [arguments]

Commands:
  up                           Apply all pending migrations
  down                         Roll back every migration
  step <n>                     Apply n migrations; negative n rolls back
  goto <version>               Migrate up or down to a version
  status                       Show current version, latest and pending count
  force <version>              Set the recorded version without running SQL
  drop -confirm                Drop every object in the database
  create <name> [description]  Write a new up/down pair under -path
  list                         List migrations after checking they pair up

The connection comes from FEEDLOT_DATABASE_HOST, _PORT, _USER, _PASSWORD,
_DBNAME and _SSLMODE.
`)
}
