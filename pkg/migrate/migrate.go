package migrate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/pressly/goose/v3"

	"github.com/angelmondragon/gridstock/pkg/config"
	"github.com/angelmondragon/gridstock/pkg/db"
)

const DefaultDir = "pkg/migrate/migrations"

// ErrSQLiteUnsupported is returned when versioned migrations are requested
// against sqlite, whose schema comes from AutoMigrate instead.
var ErrSQLiteUnsupported = errors.New("goose migrations target postgres; use automigrate for sqlite")

// Runner applies the versioned inventory schema to a Postgres database.
type Runner struct {
	db  *sql.DB
	dir string
}

func NewRunner(client *db.Client, dir string) (*Runner, error) {
	if client == nil {
		return nil, fmt.Errorf("db client is required")
	}
	if client.Driver() == config.DriverSQLite {
		return nil, ErrSQLiteUnsupported
	}
	if dir == "" {
		dir = DefaultDir
	}
	sqlDB, err := client.DB().DB()
	if err != nil {
		return nil, fmt.Errorf("extracting sql.DB: %w", err)
	}
	if err := goose.SetDialect("postgres"); err != nil {
		return nil, fmt.Errorf("set goose dialect: %w", err)
	}
	return &Runner{db: sqlDB, dir: dir}, nil
}

func (r *Runner) Up(ctx context.Context) error     { return r.run(ctx, "up") }
func (r *Runner) Down(ctx context.Context) error   { return r.run(ctx, "down") }
func (r *Runner) Status(ctx context.Context) error { return r.run(ctx, "status") }

func (r *Runner) run(ctx context.Context, command string) error {
	// goose prints status output to stdout
	if err := goose.RunContext(ctx, command, r.db, r.dir); err != nil {
		return fmt.Errorf("goose %s: %w", command, err)
	}
	return nil
}

// To moves the schema up or down until it sits at target.
func (r *Runner) To(ctx context.Context, target int64) error {
	current, err := goose.GetDBVersionContext(ctx, r.db)
	if err != nil {
		return fmt.Errorf("get db version: %w", err)
	}

	switch {
	case current == target:
		return nil
	case current < target:
		if err := goose.UpToContext(ctx, r.db, r.dir, target); err != nil {
			return fmt.Errorf("goose up-to %d: %w", target, err)
		}
	default:
		if err := goose.DownToContext(ctx, r.db, r.dir, target); err != nil {
			return fmt.Errorf("goose down-to %d: %w", target, err)
		}
	}
	return nil
}

// ParseVersion reads a YYYYMMDDHHMMSS migration version.
func ParseVersion(raw string) (int64, error) {
	if len(raw) != versionLen {
		return 0, fmt.Errorf("invalid version %q (expected YYYYMMDDHHMMSS)", raw)
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid version %q (expected YYYYMMDDHHMMSS): %w", raw, err)
	}
	return v, nil
}
