// Package orm implements the repositories on gorm. Postgres is the
// production dialect; SQLite backs tests and local runs.
package orm

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-sqlite3"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	"gorm.io/plugin/dbresolver"
	"gorm.io/plugin/opentelemetry/tracing"

	"github.com/strogmv/blogadmin/internal/pkg/logger"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Options struct {
	Driver          string
	DSN             string
	ReplicaDSNs     []string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	Attempts        int
	Tracing         bool
	LogLevel        gormlogger.LogLevel
}

func (o Options) withDefaults() Options {
	if o.Driver == "" {
		o.Driver = DriverPostgres
	}
	if o.MaxOpenConns == 0 {
		o.MaxOpenConns = 40
	}
	if o.MaxIdleConns == 0 {
		o.MaxIdleConns = 10
	}
	if o.ConnMaxLifetime == 0 {
		o.ConnMaxLifetime = 30 * time.Minute
	}
	if o.Attempts < 1 {
		o.Attempts = 8
	}
	if o.LogLevel == 0 {
		o.LogLevel = gormlogger.Warn
	}
	if o.Driver == DriverSQLite {
		// One connection so a transaction never waits on the database lock
		// held by another connection of the same pool.
		o.MaxOpenConns = 1
		o.MaxIdleConns = 1
		o.ConnMaxLifetime = 0
		o.Attempts = 1
	}
	return o
}

func dialector(driver, dsn string) (gorm.Dialector, error) {
	switch driver {
	case DriverPostgres:
		return postgres.Open(dsn), nil
	case DriverSQLite:
		return sqliteDialector(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

// sqliteDriverName is mattn/go-sqlite3 with unicodeLower registered on
// every connection. SQLite's own LOWER folds ASCII only.
const (
	sqliteDriverName = "sqlite3_blogadmin"
	unicodeLower     = "unicode_lower"
)

var registerSQLite sync.Once

func sqliteDialector(dsn string) gorm.Dialector {
	registerSQLite.Do(func() {
		sql.Register(sqliteDriverName, &sqlite3.SQLiteDriver{
			ConnectHook: func(conn *sqlite3.SQLiteConn) error {
				return conn.RegisterFunc(unicodeLower, strings.ToLower, true)
			},
		})
	})
	return sqlite.New(sqlite.Config{DriverName: sqliteDriverName, DSN: dsn})
}

// lowerFunc names the SQL function that lower-cases text the way
// strings.ToLower does on db's dialect.
func lowerFunc(db *gorm.DB) string {
	if db.Dialector.Name() == DriverSQLite {
		return unicodeLower
	}
	return "LOWER"
}

// Open connects with exponential backoff, applies pool limits and
// registers read replicas and tracing when configured.
func Open(ctx context.Context, opts Options) (*gorm.DB, error) {
	opts = opts.withDefaults()
	dial, err := dialector(opts.Driver, opts.DSN)
	if err != nil {
		return nil, err
	}

	db, err := openWithRetry(ctx, dial, opts)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("db handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
	sqlDB.SetMaxIdleConns(opts.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(opts.ConnMaxLifetime)

	if len(opts.ReplicaDSNs) > 0 {
		if opts.Driver != DriverPostgres {
			return nil, fmt.Errorf("read replicas require the %s driver", DriverPostgres)
		}
		replicas := make([]gorm.Dialector, 0, len(opts.ReplicaDSNs))
		for _, dsn := range opts.ReplicaDSNs {
			replicas = append(replicas, postgres.Open(dsn))
		}
		resolver := dbresolver.Register(dbresolver.Config{
			Replicas: replicas,
			Policy:   dbresolver.RandomPolicy{},
		}).
			SetMaxOpenConns(opts.MaxOpenConns).
			SetMaxIdleConns(opts.MaxIdleConns).
			SetConnMaxLifetime(opts.ConnMaxLifetime)
		if err := db.Use(resolver); err != nil {
			return nil, fmt.Errorf("dbresolver: %w", err)
		}
	}

	if opts.Tracing {
		if err := db.Use(tracing.NewPlugin()); err != nil {
			return nil, fmt.Errorf("gorm tracing: %w", err)
		}
	}
	return db, nil
}

func openWithRetry(ctx context.Context, dial gorm.Dialector, opts Options) (*gorm.DB, error) {
	var last error
	sleep := time.Second
	for i := 1; i <= opts.Attempts; i++ {
		db, err := gorm.Open(dial, &gorm.Config{
			Logger: gormlogger.Default.LogMode(opts.LogLevel),
		})
		if err == nil {
			if last = ping(ctx, db, 2*time.Second); last == nil {
				return db, nil
			}
		} else {
			last = err
		}
		if i == opts.Attempts {
			break
		}
		logger.From(ctx).Warn("database not ready, retrying",
			slog.Int("attempt", i), slog.Duration("backoff", sleep), slog.Any("error", last))
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(sleep):
		}
		if sleep < 8*time.Second {
			sleep *= 2
		}
	}
	return nil, fmt.Errorf("db open after %d attempts: %w", opts.Attempts, last)
}

func ping(ctx context.Context, db *gorm.DB, timeout time.Duration) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return sqlDB.PingContext(ctx)
}

// Ping reports whether the primary answers within timeout. Used by /healthz.
func Ping(ctx context.Context, db *gorm.DB) error {
	return ping(ctx, db, time.Second)
}

// Close releases the underlying pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
