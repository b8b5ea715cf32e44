// Package sqlitestore persists users and games in an embedded SQLite database. It is
// the single-binary alternative to the mongo repositories.
package sqlitestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

const (
	queryTimeout = 2 * time.Second

	schema = `
CREATE TABLE IF NOT EXISTS users (
	id            TEXT PRIMARY KEY,
	username      TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	wins          INTEGER NOT NULL DEFAULT 0,
	losses        INTEGER NOT NULL DEFAULT 0,
	updated_at    INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS games (
	id          TEXT PRIMARY KEY,
	user_id     TEXT NOT NULL,
	board_rows  INTEGER NOT NULL,
	board_cols  INTEGER NOT NULL,
	mines       INTEGER NOT NULL,
	status      TEXT NOT NULL,
	cells       TEXT,
	moves       INTEGER NOT NULL DEFAULT 0,
	created_at  INTEGER NOT NULL,
	started_at  INTEGER NOT NULL DEFAULT 0,
	finished_at INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS games_user_created ON games (user_id, created_at DESC);
`
)

// ErrNoPath is returned when Open gets an empty path.
var ErrNoPath = errors.New("storage path is required")

// Store owns the SQLite handle shared by the user and game stores.
type Store struct {
	sqlDB *sql.DB
}

// Open opens the database at path, ":memory:" included, and creates the schema.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, ErrNoPath
	}

	sqlDB, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// One connection keeps an in-memory database alive and serialises writers.
	sqlDB.SetMaxOpenConns(1)

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Users returns the user repository backed by s.
func (s *Store) Users() *UserStore {
	return &UserStore{sqlDB: s.sqlDB}
}

// Games returns the game repository backed by s.
func (s *Store) Games() *GameStore {
	return &GameStore{sqlDB: s.sqlDB}
}

func toMillis(value time.Time) int64 {
	if value.IsZero() {
		return 0
	}
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	if value == 0 {
		return time.Time{}
	}
	return time.UnixMilli(value).UTC()
}

func isUniqueViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}

func withTimeout() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), queryTimeout)
}
