package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"
)

// NewDatabase opens a database/sql handle for the given driver and verifies
// the connection. Both the "sqlite" and "mysql" drivers are registered. For
// sqlite the DSN is a local file path, so its directory is created first and
// the pool is pinned to one connection.
func NewDatabase(driver, dsn string) (*sql.DB, error) {
	if driver == "sqlite" {
		if err := os.MkdirAll(filepath.Dir(filepath.Clean(dsn)), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if driver == "sqlite" {
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return db, nil
}
