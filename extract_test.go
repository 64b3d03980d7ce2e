package schemameta

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tordrt/schemameta/internal/errs"
	"github.com/tordrt/schemameta/internal/schema"
)

func TestParseDatabaseURL(t *testing.T) {
	tests := []struct {
		url      string
		wantType string
		wantConn string
		wantErr  bool
	}{
		{url: "postgres://u:p@localhost:5432/db", wantType: dbPostgres, wantConn: "postgres://u:p@localhost:5432/db"},
		{url: "postgresql://localhost/db", wantType: dbPostgres, wantConn: "postgresql://localhost/db"},
		{url: "mysql://root:pw@tcp(localhost:3306)/shop", wantType: dbMySQL, wantConn: "root:pw@tcp(localhost:3306)/shop"},
		{url: "sqlite://data/app.db", wantType: dbSQLite, wantConn: "data/app.db"},
		{url: "sqlserver://sa:pw@localhost:1433?database=shop", wantType: dbSQLServer, wantConn: "sqlserver://sa:pw@localhost:1433?database=shop"},
		{url: "", wantErr: true},
		{url: "oracle://localhost", wantErr: true},
		{url: "data/app.db", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			dbType, conn, err := parseDatabaseURL(tt.url)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errs.IsInvalidInput(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantType, dbType)
			assert.Equal(t, tt.wantConn, conn)
		})
	}
}

func TestFilterExcludedTables(t *testing.T) {
	doc := &schema.Document{Tables: schema.Some([]schema.Table{
		{Name: "users"}, {Name: "schema_migrations"}, {Name: "orders"}, {Name: "audit_log"},
	})}

	filterExcludedTables(doc, []string{"schema_migrations", "audit_log", "not_there"})

	var names []string
	for _, table := range doc.TableList() {
		names = append(names, table.Name)
	}
	assert.Equal(t, []string{"users", "orders"}, names)

	all := &schema.Document{Tables: schema.Some([]schema.Table{{Name: "a"}})}
	filterExcludedTables(all, []string{"a"})
	assert.True(t, all.Tables.IsSet(), "excluding everything keeps an empty tables key")
	assert.Empty(t, all.TableList())

	none := &schema.Document{}
	filterExcludedTables(none, []string{"a"})
	assert.False(t, none.Tables.IsSet())
}

func TestExtractDocumentRejectsBadURLs(t *testing.T) {
	_, err := ExtractDocument(context.Background(), "", nil)
	assert.True(t, errs.IsInvalidInput(err))

	_, err = ExtractDocument(context.Background(), "redis://localhost", nil)
	assert.True(t, errs.IsInvalidInput(err))

	_, err = ExtractDocument(context.Background(), "mysql://root@tcp(localhost:3306)/", nil)
	assert.True(t, errs.IsInvalidInput(err), "a MySQL URL without a database needs an explicit schema")
}
