package schemameta

import (
	"context"
	"fmt"
	"strings"

	"github.com/tordrt/schemameta/internal/db"
	"github.com/tordrt/schemameta/internal/errs"
	"github.com/tordrt/schemameta/internal/logger"
	"github.com/tordrt/schemameta/internal/schema"
)

const (
	dbPostgres  = "postgres"
	dbMySQL     = "mysql"
	dbSQLite    = "sqlite"
	dbSQLServer = "sqlserver"
)

// ExtractOptions configures database extraction.
//
// All fields are optional. If not specified:
//   - Tables: nil extracts every base table, ordered by name
//   - ExcludeTables: empty list excludes no tables
//   - SchemaName: "public" for PostgreSQL, the DSN database for MySQL,
//     "dbo" for SQL Server; ignored for SQLite
//
// When both Tables and ExcludeTables are given, exclusions apply to the
// explicit list.
type ExtractOptions struct {
	Tables        []string
	ExcludeTables []string
	SchemaName    string
}

// ExtractDocument reads table definitions from a live database into a
// schema document.
func ExtractDocument(ctx context.Context, databaseURL string, opts *ExtractOptions) (*schema.Document, error) {
	if opts == nil {
		opts = &ExtractOptions{}
	}

	dbType, connStr, err := parseDatabaseURL(databaseURL)
	if err != nil {
		return nil, err
	}
	log := logger.FromContext(ctx).With("database", dbType)

	var doc *schema.Document
	switch dbType {
	case dbPostgres:
		doc, err = extractPostgres(ctx, connStr, opts)
	case dbMySQL:
		doc, err = extractMySQL(ctx, connStr, opts)
	case dbSQLite:
		doc, err = extractSQLite(ctx, connStr, opts)
	case dbSQLServer:
		doc, err = extractSQLServer(ctx, connStr, opts)
	default:
		return nil, errs.Newf(errs.KindInvalidInput, "unsupported database type: %s", dbType)
	}
	if err != nil {
		return nil, err
	}

	filterExcludedTables(doc, opts.ExcludeTables)
	log.Infof("extracted %d tables", len(doc.TableList()))

	return doc, nil
}

// parseDatabaseURL detects the database type and returns the connection
// string its driver expects
func parseDatabaseURL(url string) (dbType, connectionStr string, err error) {
	switch {
	case url == "":
		return "", "", errs.New(errs.KindInvalidInput, "database URL is required")

	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		return dbPostgres, url, nil

	case strings.HasPrefix(url, "mysql://"):
		// The Go MySQL driver takes a bare DSN
		return dbMySQL, strings.TrimPrefix(url, "mysql://"), nil

	case strings.HasPrefix(url, "sqlite://"):
		return dbSQLite, strings.TrimPrefix(url, "sqlite://"), nil

	case strings.HasPrefix(url, "sqlserver://"):
		return dbSQLServer, url, nil
	}

	return "", "", errs.New(errs.KindInvalidInput,
		"invalid database URL scheme (must start with postgres://, mysql://, sqlite:// or sqlserver://)")
}

func extractPostgres(ctx context.Context, connStr string, opts *ExtractOptions) (*schema.Document, error) {
	client, err := db.NewPostgresClient(ctx, connStr)
	if err != nil {
		return nil, err
	}
	defer closeClient(ctx, "PostgreSQL", func() error { return client.Close(ctx) })

	schemaName := opts.SchemaName
	if schemaName == "" {
		schemaName = "public"
	}

	return run(ctx, db.NewPostgresExtractor(client, schemaName), opts)
}

func extractMySQL(ctx context.Context, connStr string, opts *ExtractOptions) (*schema.Document, error) {
	schemaName := opts.SchemaName
	if schemaName == "" {
		var err error
		schemaName, err = db.ParseDatabaseName(connStr)
		if err != nil {
			return nil, errs.Wrap(errs.KindInvalidInput, "failed to determine database name (set a schema name explicitly)", err)
		}
	}

	client, err := db.NewMySQLClient(ctx, connStr)
	if err != nil {
		return nil, err
	}
	defer closeClient(ctx, "MySQL", client.Close)

	return run(ctx, db.NewMySQLExtractor(client, schemaName), opts)
}

func extractSQLite(ctx context.Context, path string, opts *ExtractOptions) (*schema.Document, error) {
	client, err := db.NewSQLiteClient(ctx, path)
	if err != nil {
		return nil, err
	}
	defer closeClient(ctx, "SQLite", client.Close)

	return run(ctx, db.NewSQLiteExtractor(client), opts)
}

func extractSQLServer(ctx context.Context, connStr string, opts *ExtractOptions) (*schema.Document, error) {
	client, err := db.NewSQLServerClient(ctx, connStr)
	if err != nil {
		return nil, err
	}
	defer closeClient(ctx, "SQL Server", client.Close)

	return run(ctx, db.NewSQLServerExtractor(client, opts.SchemaName), opts)
}

func run(ctx context.Context, e db.Extractor, opts *ExtractOptions) (*schema.Document, error) {
	doc, err := e.ExtractSchema(ctx, opts.Tables)
	if err != nil {
		return nil, fmt.Errorf("failed to extract schema: %w", err)
	}
	return doc, nil
}

// closeClient only warns: by the time a connection closes the document has
// been read
func closeClient(ctx context.Context, name string, closeFn func() error) {
	if err := closeFn(); err != nil {
		logger.FromContext(ctx).Warnf("failed to close %s connection: %v", name, err)
	}
}

func filterExcludedTables(doc *schema.Document, excludeList []string) {
	if len(excludeList) == 0 || !doc.Tables.IsSet() {
		return
	}

	excludeSet := make(map[string]bool, len(excludeList))
	for _, tableName := range excludeList {
		excludeSet[tableName] = true
	}

	tables := doc.TableList()
	filtered := make([]schema.Table, 0, len(tables))
	for _, table := range tables {
		if !excludeSet[table.Name] {
			filtered = append(filtered, table)
		}
	}
	doc.Tables = schema.Some(filtered)
}
