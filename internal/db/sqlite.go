package db

import (
	"context"
	"database/sql"

	_ "github.com/mattn/go-sqlite3"

	"github.com/tordrt/schemameta/internal/errs"
)

// SQLiteClient manages the connection to a SQLite database file
type SQLiteClient struct {
	db *sql.DB
}

// NewSQLiteClient opens the database at path and pings it
func NewSQLiteClient(ctx context.Context, path string) (*SQLiteClient, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errs.Wrap(errs.KindConnection, "failed to open SQLite database", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errs.Wrap(errs.KindConnection, "failed to ping SQLite database", err)
	}

	return &SQLiteClient{db: db}, nil
}

// Close closes the database connection
func (c *SQLiteClient) Close() error {
	return c.db.Close()
}

// GetDB returns the underlying database handle
func (c *SQLiteClient) GetDB() *sql.DB {
	return c.db
}
