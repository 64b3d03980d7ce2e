package db

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tordrt/schemameta/internal/schema"
)

func execAll(t *testing.T, db *sql.DB, stmts ...string) {
	t.Helper()
	for _, stmt := range stmts {
		_, err := db.Exec(stmt)
		require.NoError(t, err, stmt)
	}
}

func findTable(doc *schema.Document, name string) *schema.Table {
	tables := doc.TableList()
	for i := range tables {
		if tables[i].Name == name {
			return &tables[i]
		}
	}
	return nil
}

func findColumn(table *schema.Table, name string) *schema.Column {
	for i := range table.Columns {
		if table.Columns[i].Name == name {
			return &table.Columns[i]
		}
	}
	return nil
}

func tableNames(doc *schema.Document) []string {
	var names []string
	for _, table := range doc.TableList() {
		names = append(names, table.Name)
	}
	return names
}

// verifyShopSchema checks the users/orders/order_items fixture every
// backend seeds.
func verifyShopSchema(t *testing.T, doc *schema.Document) {
	t.Helper()

	users := findTable(doc, "users")
	require.NotNil(t, users)
	assert.Equal(t, schema.Some("id"), users.PrimaryKey)

	id := findColumn(users, "id")
	require.NotNil(t, id)
	assert.Equal(t, schema.Flag(false), id.Nullable)
	assert.Equal(t, schema.Flag(true), id.AutoUpdated)

	email := findColumn(users, "email")
	require.NotNil(t, email)
	size, ok := email.Size.Get()
	require.True(t, ok)
	assert.Equal(t, "120", size.String())

	orders := findTable(doc, "orders")
	require.NotNil(t, orders)
	require.Len(t, orders.ForeignKeys, 1)
	fk := orders.ForeignKeys[0]
	assert.Equal(t, "user_id", fk.Column)
	assert.Equal(t, "users", fk.ReferencesTable)
	assert.Equal(t, "id", fk.ReferencesColumn)
	assert.Equal(t, schema.Some("CASCADE"), fk.DeleteRule)

	var created *schema.Index
	for i := range orders.Indexes {
		if orders.Indexes[i].Name == "idx_orders_created" {
			created = &orders.Indexes[i]
		}
	}
	require.NotNil(t, created)
	assert.Equal(t, schema.Flag(false), created.Unique)
	require.Len(t, created.Columns, 1)
	asc, isBool := created.Columns[0].Ascending.Bool()
	assert.True(t, isBool)
	assert.False(t, asc)

	items := findTable(doc, "order_items")
	require.NotNil(t, items)
	assert.False(t, items.PrimaryKey.IsSet())
	assert.Equal(t, schema.Flag(true), findColumn(items, "order_id").PrimaryKey)
	assert.Equal(t, schema.Flag(true), findColumn(items, "line_no").PrimaryKey)
}

func TestSQLiteExtraction(t *testing.T) {
	ctx := context.Background()

	client, err := NewSQLiteClient(ctx, filepath.Join(t.TempDir(), "shop.db"))
	require.NoError(t, err)
	defer client.Close()

	execAll(t, client.GetDB(),
		`CREATE TABLE users (
			id INTEGER PRIMARY KEY,
			email VARCHAR(120) NOT NULL,
			status TEXT DEFAULT 'active'
		)`,
		`CREATE UNIQUE INDEX idx_users_email ON users (email)`,
		`CREATE TABLE orders (
			id INTEGER PRIMARY KEY,
			user_id INTEGER NOT NULL REFERENCES users (id) ON DELETE CASCADE,
			created_at TEXT
		)`,
		`CREATE INDEX idx_orders_created ON orders (created_at DESC)`,
		`CREATE TABLE order_items (
			order_id INTEGER NOT NULL REFERENCES orders,
			line_no INTEGER NOT NULL,
			PRIMARY KEY (order_id, line_no)
		)`,
	)

	doc, err := NewSQLiteExtractor(client).ExtractSchema(ctx, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"order_items", "orders", "users"}, tableNames(doc))
	verifyShopSchema(t, doc)

	users := findTable(doc, "users")
	status := findColumn(users, "status")
	def, ok := status.DefaultValue.Get()
	require.True(t, ok)
	assert.Equal(t, "'active'", def.String())
	require.Len(t, users.Indexes, 1)
	assert.Equal(t, schema.Flag(true), users.Indexes[0].Unique)

	items := findTable(doc, "order_items")
	require.Len(t, items.ForeignKeys, 1)
	assert.Equal(t, "id", items.ForeignKeys[0].ReferencesColumn, "implicit target resolves to the primary key")
}

func TestSQLiteSpecificTables(t *testing.T) {
	ctx := context.Background()

	client, err := NewSQLiteClient(ctx, filepath.Join(t.TempDir(), "specific.db"))
	require.NoError(t, err)
	defer client.Close()

	execAll(t, client.GetDB(),
		`CREATE TABLE a (id INTEGER PRIMARY KEY)`,
		`CREATE TABLE b (id INTEGER PRIMARY KEY)`,
		`CREATE TABLE c (id INTEGER PRIMARY KEY)`,
	)

	doc, err := NewSQLiteExtractor(client).ExtractSchema(ctx, []string{"c", "a"})
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "a"}, tableNames(doc))
}
