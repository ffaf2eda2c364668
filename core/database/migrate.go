package database

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"

	"github.com/jeanzhou31/slackattack/core/logger"
)

//go:embed migrations/postgres/*.sql
var postgresMigrations embed.FS

const postgresMigrationsDir = "migrations/postgres"

// sqliteSchema mirrors the postgres migrations for the embedded driver.
const sqliteSchema = `
PRAGMA busy_timeout = 5000;
CREATE TABLE IF NOT EXISTS conversations (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id  TEXT    NOT NULL UNIQUE,
	chat_id     INTEGER NOT NULL,
	user_id     INTEGER NOT NULL,
	intent      TEXT    NOT NULL,
	outcome     TEXT    NOT NULL,
	slots       TEXT    NOT NULL DEFAULT '{}',
	notes       TEXT    NOT NULL DEFAULT '{}',
	steps       INTEGER NOT NULL DEFAULT 0,
	retries     INTEGER NOT NULL DEFAULT 0,
	started_at  INTEGER NOT NULL,
	ended_at    INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_conversations_user ON conversations (chat_id, user_id);
CREATE INDEX IF NOT EXISTS idx_conversations_ended ON conversations (ended_at);
`

// RunMigrations brings the schema up to date. Postgres goes through
// golang-migrate with the embedded files; SQLite applies its schema on db.
func RunMigrations(db *sqlx.DB, cfg Config) error {
	if cfg.DriverName() == DriverSQLite {
		return initSQLiteSchema(db)
	}
	return migratePostgres(cfg)
}

func initSQLiteSchema(db *sqlx.DB) error {
	if db == nil {
		return fmt.Errorf("migrate: nil database")
	}
	start := time.Now()
	if _, err := db.Exec(sqliteSchema); err != nil {
		logger.LogEvent(context.Background(), logger.MIG, slog.LevelError, "apply",
			slog.String("status", "fail"),
			slog.String("driver", DriverSQLite),
			slog.String("err", err.Error()),
		)
		return fmt.Errorf("create schema: %w", err)
	}
	logger.LogEvent(context.Background(), logger.MIG, slog.LevelInfo, "summary",
		slog.String("status", "ok"),
		slog.String("driver", DriverSQLite),
		slog.Duration("duration", logger.Took(start)),
	)
	return nil
}

func migratePostgres(cfg Config) error {
	ctx := context.Background()
	files := listMigrationFiles(postgresMigrations, postgresMigrationsDir)
	preview, truncated := logger.SummarizeStrings(files, 6)
	attrs := []slog.Attr{
		slog.String("status", "ok"),
		slog.Int("files_total", len(files)),
	}
	if preview != "" {
		attrs = append(attrs, slog.String("files_preview", preview))
	}
	if truncated {
		attrs = append(attrs, slog.Bool("files_truncated", true))
	}
	logger.LogEvent(ctx, logger.MIG, slog.LevelDebug, "resolve", attrs...)

	src, err := iofs.New(postgresMigrations, postgresMigrationsDir)
	if err != nil {
		return fmt.Errorf("open embedded migrations: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, cfg.MigrateURL())
	if err != nil {
		logger.LogEvent(ctx, logger.MIG, slog.LevelError, "init",
			slog.String("status", "fail"),
			slog.String("err", err.Error()),
		)
		return fmt.Errorf("failed to initialize migrations: %w", err)
	}
	defer func() {
		_, _ = m.Close()
	}()

	fromVer, _, _ := m.Version()

	start := time.Now()
	upErr := m.Up()
	took := logger.Took(start)

	switch {
	case upErr == nil:
	case errors.Is(upErr, migrate.ErrNoChange):
		logger.LogEvent(ctx, logger.MIG, slog.LevelInfo, "summary",
			slog.String("status", "skip"),
			slog.Uint64("from_ver", uint64(fromVer)),
			slog.Uint64("to_ver", uint64(fromVer)),
			slog.Int("files", 0),
			slog.Duration("duration", took),
		)
		return nil
	default:
		logger.LogEvent(ctx, logger.MIG, slog.LevelError, "apply",
			slog.String("status", "fail"),
			slog.String("err", upErr.Error()),
			slog.Duration("duration", took),
		)
		return fmt.Errorf("migration execution failed: %w", upErr)
	}

	toVer, _, _ := m.Version()
	applied := selectApplied(files, uint64(fromVer), uint64(toVer))
	if len(applied) > 0 {
		previewApplied, _ := logger.SummarizeStrings(applied, 6)
		logger.LogEvent(ctx, logger.MIG, slog.LevelDebug, "apply",
			slog.String("status", "ok"),
			slog.Int("files_total", len(applied)),
			slog.String("files_preview", previewApplied),
		)
	}

	logger.LogEvent(ctx, logger.MIG, slog.LevelInfo, "summary",
		slog.String("status", "ok"),
		slog.Uint64("from_ver", uint64(fromVer)),
		slog.Uint64("to_ver", uint64(toVer)),
		slog.Int("files", len(applied)),
		slog.Duration("duration", took),
	)
	return nil
}

func listMigrationFiles(fsys fs.FS, dir string) []string {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".up.sql") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names
}

func parseVersion(name string) uint64 {
	prefix, _, _ := strings.Cut(name, "_")
	v, _ := strconv.ParseUint(prefix, 10, 64)
	return v
}

func selectApplied(files []string, from, to uint64) []string {
	var out []string
	for _, f := range files {
		if v := parseVersion(f); v > from && v <= to {
			out = append(out, f)
		}
	}
	return out
}
