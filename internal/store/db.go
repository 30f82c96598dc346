package store

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// DefaultPath is the attempt database used when no override is given.
const DefaultPath = "wifi_log.db"

// DB wraps the SQLite connection holding the login attempt log.
type DB struct {
	*sql.DB
}

// Open creates a SQLite connection with WAL mode and a busy timeout so
// the CLI and a running dashboard can share the file.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	return &DB{db}, nil
}
