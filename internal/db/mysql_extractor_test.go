package db

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tordrt/schemameta/internal/errs"
	"github.com/tordrt/schemameta/internal/schema"
)

func newMockMySQLExtractor(t *testing.T) (*MySQLExtractor, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return NewMySQLExtractor(&MySQLClient{db: sqlDB}, "shop"), mock
}

func TestMySQLExtractSchema(t *testing.T) {
	e, mock := newMockMySQLExtractor(t)

	mock.ExpectQuery(`COALESCE\(table_comment, ''\)`).
		WithArgs("shop", "orders").
		WillReturnRows(sqlmock.NewRows([]string{"table_comment"}).AddRow("Customer orders"))
	mock.ExpectQuery(`FROM information_schema.columns`).
		WithArgs("shop", "orders").
		WillReturnRows(sqlmock.NewRows([]string{
			"column_name", "data_type", "column_type", "character_maximum_length",
			"numeric_precision", "is_nullable", "column_default", "extra", "column_comment",
		}).
			AddRow("id", "int", "int", nil, int64(10), "NO", nil, "auto_increment", "").
			AddRow("status", "enum", "enum('new','paid')", int64(4), nil, "NO", "new", "", "Order state").
			AddRow("total", "decimal", "decimal(10,2)", nil, int64(10), "YES", nil, "", "").
			AddRow("user_id", "int", "int", nil, int64(10), "NO", nil, "", ""))
	mock.ExpectQuery(`constraint_name = 'PRIMARY'`).
		WithArgs("shop", "orders").
		WillReturnRows(sqlmock.NewRows([]string{"column_name"}).AddRow("id"))
	mock.ExpectQuery(`FROM information_schema.statistics`).
		WithArgs("shop", "orders").
		WillReturnRows(sqlmock.NewRows([]string{"index_name", "non_unique", "column_name", "collation"}).
			AddRow("idx_status_total", int64(1), "status", "A").
			AddRow("idx_status_total", int64(1), "total", "D"))
	mock.ExpectQuery(`FROM information_schema.key_column_usage kcu`).
		WithArgs("shop", "orders").
		WillReturnRows(sqlmock.NewRows([]string{
			"constraint_name", "column_name", "referenced_table_name",
			"referenced_column_name", "delete_rule", "update_rule",
		}).AddRow("fk_orders_user", "user_id", "users", "id", "CASCADE", "NO ACTION"))

	doc, err := e.ExtractSchema(context.Background(), []string{"orders"})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())

	tables := doc.TableList()
	require.Len(t, tables, 1)
	orders := tables[0]

	assert.Equal(t, "orders", orders.Name)
	assert.Equal(t, schema.Some("Customer orders"), orders.Comments)
	assert.Equal(t, schema.Some("id"), orders.PrimaryKey)

	require.Len(t, orders.Columns, 4)
	assert.Equal(t, schema.Flag(true), orders.Columns[0].AutoUpdated)
	assert.Equal(t, schema.Flag(false), orders.Columns[0].Nullable)
	assert.False(t, orders.Columns[0].Size.IsSet(), "integers carry no size")

	status := orders.Columns[1]
	assert.Equal(t, schema.Some("enum('new','paid')"), status.Type)
	assert.Equal(t, schema.Some("Order state"), status.Comments)
	def, ok := status.DefaultValue.Get()
	require.True(t, ok)
	assert.Equal(t, "new", def.String())

	total := orders.Columns[2]
	assert.Equal(t, schema.Some("decimal"), total.Type)
	size, ok := total.Size.Get()
	require.True(t, ok)
	assert.Equal(t, "10", size.String())
	assert.Equal(t, schema.Flag(true), total.Nullable)

	require.Len(t, orders.Indexes, 1)
	idx := orders.Indexes[0]
	assert.Equal(t, "idx_status_total", idx.Name)
	assert.Equal(t, schema.Flag(false), idx.Unique)
	require.Len(t, idx.Columns, 2)
	assert.Equal(t, schema.IndexColumn{Name: "status"}, idx.Columns[0])
	assert.Equal(t, schema.IndexColumn{Name: "total", Ascending: schema.BoolScalar(false)}, idx.Columns[1])

	require.Len(t, orders.ForeignKeys, 1)
	fk := orders.ForeignKeys[0]
	assert.Equal(t, schema.Some("fk_orders_user"), fk.Name)
	assert.Equal(t, "user_id", fk.Column)
	assert.Equal(t, "users", fk.ReferencesTable)
	assert.Equal(t, "id", fk.ReferencesColumn)
	assert.Equal(t, schema.Some("CASCADE"), fk.DeleteRule)
	assert.Equal(t, schema.Some("NO ACTION"), fk.UpdateRule)
}

func TestMySQLExtractSchemaListsTables(t *testing.T) {
	e, mock := newMockMySQLExtractor(t)

	mock.ExpectQuery(`table_type = 'BASE TABLE'`).
		WithArgs("shop").
		WillReturnRows(sqlmock.NewRows([]string{"table_name"}))

	doc, err := e.ExtractSchema(context.Background(), nil)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())

	tables, ok := doc.Tables.Get()
	assert.True(t, ok, "an empty database still yields the tables key")
	assert.Empty(t, tables)
}

func TestMySQLExtractTableCommentMissingRow(t *testing.T) {
	e, mock := newMockMySQLExtractor(t)

	mock.ExpectQuery(`COALESCE\(table_comment, ''\)`).
		WithArgs("shop", "ghost").
		WillReturnRows(sqlmock.NewRows([]string{"table_comment"}))

	comment, err := e.extractTableComment(context.Background(), "ghost")
	require.NoError(t, err)
	assert.Empty(t, comment)
}

func TestMySQLExtractSchemaQueryError(t *testing.T) {
	e, mock := newMockMySQLExtractor(t)

	mock.ExpectQuery(`COALESCE\(table_comment, ''\)`).
		WithArgs("shop", "orders").
		WillReturnRows(sqlmock.NewRows([]string{"table_comment"}).AddRow(""))
	mock.ExpectQuery(`FROM information_schema.columns`).
		WithArgs("shop", "orders").
		WillReturnError(errors.New("connection reset"))

	_, err := e.ExtractSchema(context.Background(), []string{"orders"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to extract table orders")
	assert.Contains(t, err.Error(), "failed to extract columns")
	assert.Contains(t, err.Error(), "connection reset")
	assert.True(t, errs.IsQueryFailed(err))
}
