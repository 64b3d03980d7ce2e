package db

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/tordrt/schemameta/internal/errs"
)

// PostgresClient wraps a single pgx connection
type PostgresClient struct {
	conn *pgx.Conn
}

// NewPostgresClient connects to connString and pings the server
func NewPostgresClient(ctx context.Context, connString string) (*PostgresClient, error) {
	conn, err := pgx.Connect(ctx, connString)
	if err != nil {
		return nil, errs.Wrap(errs.KindConnection, "failed to connect to PostgreSQL", err)
	}

	if err := conn.Ping(ctx); err != nil {
		_ = conn.Close(ctx)
		return nil, errs.Wrap(errs.KindConnection, "failed to ping PostgreSQL", err)
	}

	return &PostgresClient{conn: conn}, nil
}

// Close closes the connection
func (c *PostgresClient) Close(ctx context.Context) error {
	return c.conn.Close(ctx)
}

// GetConnection returns the underlying connection
func (c *PostgresClient) GetConnection() *pgx.Conn {
	return c.conn
}
