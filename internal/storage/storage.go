// Package storage opens the SQL backends and applies the embedded schema.
package storage

import (
	"context"
	"database/sql"
	"embed"
	stderrors "errors"
	"fmt"
	"io/fs"
	"net"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/victornm/tutormate/internal/errors"

	// Pure Go SQLite driver.
	_ "modernc.org/sqlite"
)

// Driver names accepted in configuration.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// DefaultTimeout bounds a single storage call.
const DefaultTimeout = 30 * time.Second

//go:embed migrations
var migrations embed.FS

type Config struct {
	Driver  string
	Timeout time.Duration

	Postgres struct {
		Addr string
		User string
		Pass string
		Name string
	}

	SQLite struct {
		Path string
	}
}

// OpenPostgres connects a pool and verifies it with a ping.
func OpenPostgres(ctx context.Context, addr, user, pass, name string) (*pgxpool.Pool, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	cc, err := pgxpool.ParseConfig(fmt.Sprintf("postgres://%s:%s@%s/%s", user, pass, addr, name))
	if err != nil {
		return nil, err
	}

	db, err := pgxpool.NewWithConfig(ctx, cc)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// OpenSQLite opens the database file at path. The handle is limited to a
// single connection so writers serialize instead of failing with SQLITE_BUSY.
func OpenSQLite(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 30000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("%s: %w", p, err)
		}
	}

	return db, nil
}

// Migrate applies every pending migration of the given driver's schema.
func Migrate(ctx context.Context, driver string, db *sql.DB) error {
	var dialect goose.Dialect
	switch driver {
	case DriverPostgres:
		dialect = goose.DialectPostgres
	case DriverSQLite:
		dialect = goose.DialectSQLite3
	default:
		return fmt.Errorf("storage: unknown driver %q", driver)
	}

	dir, err := fs.Sub(migrations, "migrations/"+driver)
	if err != nil {
		return fmt.Errorf("storage: migrations: %w", err)
	}

	p, err := goose.NewProvider(dialect, db, dir)
	if err != nil {
		return fmt.Errorf("storage: goose provider: %w", err)
	}

	results, err := p.Up(ctx)
	if err != nil {
		return fmt.Errorf("storage: migrate up: %w", err)
	}

	for _, r := range results {
		if r.Error != nil {
			return fmt.Errorf("storage: migration %s: %w", r.Source.Path, r.Error)
		}
	}

	return nil
}

// MigratePostgres runs Migrate over a database/sql view of the pool.
func MigratePostgres(ctx context.Context, pool *pgxpool.Pool) error {
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	return Migrate(ctx, DriverPostgres, db)
}

// Classify maps deadline and connection failures to errors.CodeUnavailable.
// Any other error is returned unchanged.
func Classify(err error) error {
	if err == nil {
		return nil
	}

	var (
		netErr  net.Error
		connErr *pgconn.ConnectError
	)
	switch {
	case stderrors.Is(err, context.DeadlineExceeded),
		stderrors.Is(err, context.Canceled),
		stderrors.Is(err, sql.ErrConnDone),
		stderrors.As(err, &connErr),
		stderrors.As(err, &netErr),
		pgconn.Timeout(err):
		return errors.Unavailable(err)
	}

	return err
}

// TimeLayout is a fixed-width UTC layout; its strings sort in time order.
const TimeLayout = "2006-01-02T15:04:05.000000000Z"

func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

func ParseTime(s string) (time.Time, error) {
	return time.Parse(TimeLayout, s)
}
