package db

import (
	"context"
	"database/sql"

	_ "github.com/microsoft/go-mssqldb"

	"github.com/tordrt/schemameta/internal/errs"
)

// SQLServerClient manages the connection to Microsoft SQL Server
type SQLServerClient struct {
	db *sql.DB
}

// NewSQLServerClient opens a sqlserver:// URL and pings the server
func NewSQLServerClient(ctx context.Context, connString string) (*SQLServerClient, error) {
	db, err := sql.Open("sqlserver", connString)
	if err != nil {
		return nil, errs.Wrap(errs.KindConnection, "failed to open SQL Server database", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errs.Wrap(errs.KindConnection, "failed to ping SQL Server database", err)
	}

	return &SQLServerClient{db: db}, nil
}

// Close closes the database connection
func (c *SQLServerClient) Close() error {
	return c.db.Close()
}

// GetDB returns the underlying database handle
func (c *SQLServerClient) GetDB() *sql.DB {
	return c.db
}
