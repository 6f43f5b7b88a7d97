// Package database opens the SQL databases backing the sqlx repositories and migrates them.
package database

import (
	"context"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/Armandk18/taskmanager/core"
	"github.com/Armandk18/taskmanager/storage/database/migrations"
)

const (
	EngineSQLite   = "sqlite"
	EnginePostgres = "postgres"

	// MemoryPath opens a private in-memory SQLite database.
	MemoryPath = ":memory:"
)

// Dialect returns the goose dialect of the sqlx driver name.
func Dialect(driverName string) string {
	if driverName == EngineSQLite {
		return "sqlite3"
	}
	return driverName
}

func sqliteDSN(path string) string {
	dsn := "file:" + path + "?_pragma=foreign_keys(on)&_pragma=busy_timeout(5000)"
	if path != MemoryPath {
		dsn += "&_pragma=journal_mode(wal)"
	}
	return dsn
}

func postgresDSN(conf core.DatabaseConfig) string {
	sslMode := "require"
	if conf.DisableTLS {
		sslMode = "disable"
	}
	q := make(url.Values)
	q.Set("sslmode", sslMode)
	q.Set("timezone", "utc")

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(conf.User, conf.Password),
		Host:     conf.Address(),
		Path:     conf.Name,
		RawQuery: q.Encode(),
	}
	return u.String()
}

// Open opens the database selected by conf.Engine and waits for it to be ready.
func Open(conf core.DatabaseConfig) (*sqlx.DB, error) {
	switch conf.Engine {
	case EngineSQLite:
		return OpenSQLite(conf.Path)
	case EnginePostgres:
		db, err := sqlx.Open(EnginePostgres, postgresDSN(conf))
		if err != nil {
			return nil, errors.Wrap(err, "opening database")
		}
		if err = ping(db); err != nil {
			_ = db.Close()
			return nil, err
		}
		return db, nil
	}
	return nil, errors.Errorf("unsupported SQL engine %q", conf.Engine)
}

// OpenSQLite opens the SQLite database file at `path` (or MemoryPath), creating its directory.
// SQLite allows a single writer so the pool is limited to one connection.
func OpenSQLite(path string) (*sqlx.DB, error) {
	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, errors.Wrap(err, "creating database directory")
		}
	}
	db, err := sqlx.Open(EngineSQLite, sqliteDSN(path))
	if err != nil {
		return nil, errors.Wrap(err, "opening database")
	}
	db.SetMaxOpenConns(1)
	if err = ping(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// ping waits for the database to be ready. Waits 100ms longer between each attempt.
func ping(db *sqlx.DB) error {
	var err error
	maxAttempts := 30
	for attempts := 1; attempts <= maxAttempts; attempts++ {
		err = db.Ping()
		if err == nil {
			break
		}
		time.Sleep(time.Duration(attempts) * 100 * time.Millisecond)
	}

	if err != nil {
		return errors.Wrap(err, "DB ping timeout")
	}
	return nil
}

// Migrate applies every pending migration.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	return errors.Wrap(Run(ctx, "up", db), "migrating database")
}

// Run runs a goose command against the embedded migrations.
func Run(ctx context.Context, command string, db *sqlx.DB, args ...string) error {
	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect(Dialect(db.DriverName())); err != nil {
		return errors.Wrap(err, "setting goose dialect")
	}
	return goose.RunContext(ctx, command, db.DB, ".", args...)
}
