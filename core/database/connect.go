package database

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/jeanzhou31/slackattack/core/logger"
)

const (
	connectTimeout = 5 * time.Second
	readyTimeout   = 30 * time.Second
	readyInterval  = 2 * time.Second
)

func init() {
	// sqlx does not know modernc's driver name
	sqlx.BindDriver(DriverSQLite, sqlx.QUESTION)
}

// Connect opens the database connection, configures the pool, and verifies connectivity.
func Connect(cfg Config) (*sqlx.DB, error) {
	driver := cfg.DriverName()
	attrs := connAttrs(cfg)

	var dsn string
	switch driver {
	case DriverPostgres:
		dsn = cfg.PostgresDSN()
		if err := WaitForPostgres(dsn, readyTimeout); err != nil {
			logger.LogEvent(context.Background(), logger.DB, slog.LevelError, "db.connect",
				append(attrs, slog.String("status", "fail"), slog.String("err", err.Error()))...)
			return nil, err
		}
	default:
		path := cfg.sqlitePath()
		if path != ":memory:" {
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return nil, fmt.Errorf("db connect: create directory: %w", err)
			}
		}
		dsn = cfg.SQLiteDSN()
	}

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	start := time.Now()
	db, err := sqlx.ConnectContext(ctx, driver, dsn)
	took := logger.Took(start)
	if err != nil {
		logger.LogEvent(ctx, logger.DB, slog.LevelError, "db.connect",
			append(attrs,
				slog.String("status", "fail"),
				slog.Duration("duration", took),
				slog.String("err", err.Error()),
			)...)
		return nil, fmt.Errorf("db connect: %w", err)
	}

	pool := cfg.MaxConnections
	if driver == DriverSQLite {
		// one writer; also keeps ":memory:" on a single database
		pool = 1
	}
	if pool > 0 {
		db.SetMaxOpenConns(pool)
		db.SetMaxIdleConns(pool)
	}

	logger.LogEvent(ctx, logger.DB, slog.LevelInfo, "db.connect",
		append(attrs,
			slog.String("status", "ok"),
			slog.Int("pool_open", pool),
			slog.Duration("duration", took),
		)...)
	return db, nil
}

func connAttrs(cfg Config) []slog.Attr {
	if cfg.DriverName() == DriverSQLite {
		return []slog.Attr{
			slog.String("driver", DriverSQLite),
			slog.String("db", cfg.sqlitePath()),
		}
	}
	return []slog.Attr{
		slog.String("driver", DriverPostgres),
		slog.String("host", cfg.Host),
		slog.String("port", cfg.port()),
		slog.String("db", cfg.Name),
	}
}

// WaitForPostgres tries to connect to the DB until it is ready or timeout is reached.
func WaitForPostgres(dsn string, timeout time.Duration) error {
	start := time.Now()
	for {
		db, err := sqlx.Open(DriverPostgres, dsn)
		if err == nil {
			ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
			err = db.PingContext(ctx)
			cancel()
			_ = db.Close()
			if err == nil {
				return nil
			}
		}
		if time.Since(start) > timeout {
			return fmt.Errorf("timeout reached waiting for database: %w", err)
		}
		time.Sleep(readyInterval)
	}
}
