package db

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/tordrt/schemameta/internal/errs"
	"github.com/tordrt/schemameta/internal/schema"
)

// MySQLExtractor reads tables from one MySQL database
type MySQLExtractor struct {
	client     *MySQLClient
	schemaName string
}

// NewMySQLExtractor creates an extractor for the database schemaName
func NewMySQLExtractor(client *MySQLClient, schemaName string) *MySQLExtractor {
	return &MySQLExtractor{
		client:     client,
		schemaName: schemaName,
	}
}

// ExtractSchema extracts the requested tables, or every base table ordered
// by name when tables is empty
func (e *MySQLExtractor) ExtractSchema(ctx context.Context, tables []string) (*schema.Document, error) {
	tableNames, err := e.getTableNames(ctx, tables)
	if err != nil {
		return nil, errs.Wrap(errs.KindQuery, "failed to get table names", err)
	}

	return extractAll(ctx, tableNames, e.extractTable)
}

func (e *MySQLExtractor) getTableNames(ctx context.Context, requestedTables []string) ([]string, error) {
	if len(requestedTables) > 0 {
		return requestedTables, nil
	}

	query := `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = ? AND table_type = 'BASE TABLE'
		ORDER BY table_name
	`

	rows, err := e.client.GetDB().QueryContext(ctx, query, e.schemaName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var tableName string
		if err := rows.Scan(&tableName); err != nil {
			return nil, err
		}
		tables = append(tables, tableName)
	}

	return tables, rows.Err()
}

func (e *MySQLExtractor) extractTable(ctx context.Context, tableName string) (*tableParts, error) {
	parts := &tableParts{name: tableName}
	var err error

	if parts.comment, err = e.extractTableComment(ctx, tableName); err != nil {
		return nil, errs.Wrap(errs.KindQuery, "failed to extract table comment", err)
	}
	if parts.columns, err = e.extractColumns(ctx, tableName); err != nil {
		return nil, errs.Wrap(errs.KindQuery, "failed to extract columns", err)
	}
	if parts.primaryKey, err = e.extractPrimaryKey(ctx, tableName); err != nil {
		return nil, errs.Wrap(errs.KindQuery, "failed to extract primary key", err)
	}
	if parts.indexes, err = e.extractIndexes(ctx, tableName); err != nil {
		return nil, errs.Wrap(errs.KindQuery, "failed to extract indexes", err)
	}
	if parts.foreignKeys, err = e.extractForeignKeys(ctx, tableName); err != nil {
		return nil, errs.Wrap(errs.KindQuery, "failed to extract foreign keys", err)
	}

	return parts, nil
}

func (e *MySQLExtractor) extractTableComment(ctx context.Context, tableName string) (string, error) {
	query := `
		SELECT COALESCE(table_comment, '')
		FROM information_schema.tables
		WHERE table_schema = ? AND table_name = ?
	`

	var comment string
	err := e.client.GetDB().QueryRowContext(ctx, query, e.schemaName, tableName).Scan(&comment)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return comment, err
}

// mysqlColumnType keeps the full column_type for enum and set columns so the
// allowed values survive; everything else uses the bare data_type.
func mysqlColumnType(dataType, columnType string) string {
	switch dataType {
	case "enum", "set":
		return columnType
	default:
		return dataType
	}
}

func (e *MySQLExtractor) extractColumns(ctx context.Context, tableName string) ([]columnInfo, error) {
	query := `
		SELECT
			c.column_name,
			c.data_type,
			c.column_type,
			c.character_maximum_length,
			c.numeric_precision,
			c.is_nullable,
			c.column_default,
			c.extra,
			COALESCE(c.column_comment, '')
		FROM information_schema.columns c
		WHERE c.table_schema = ? AND c.table_name = ?
		ORDER BY c.ordinal_position
	`

	rows, err := e.client.GetDB().QueryContext(ctx, query, e.schemaName, tableName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []columnInfo
	for rows.Next() {
		var (
			col              columnInfo
			dataType         string
			columnType       string
			charMaxLength    sql.NullInt64
			numericPrecision sql.NullInt64
			nullable         string
			defaultVal       sql.NullString
			extra            string
		)

		if err := rows.Scan(&col.name, &dataType, &columnType, &charMaxLength, &numericPrecision,
			&nullable, &defaultVal, &extra, &col.comment); err != nil {
			return nil, err
		}

		col.dataType = mysqlColumnType(dataType, columnType)
		col.nullable = nullable == "YES"
		col.autoUpdated = strings.Contains(strings.ToLower(extra), "auto_increment")
		if defaultVal.Valid {
			col.defaultValue = &defaultVal.String
		}
		switch {
		case charMaxLength.Valid:
			col.size = int64Ptr(charMaxLength.Int64)
		case (dataType == "decimal" || dataType == "numeric") && numericPrecision.Valid:
			col.size = int64Ptr(numericPrecision.Int64)
		}

		columns = append(columns, col)
	}

	return columns, rows.Err()
}

func (e *MySQLExtractor) extractPrimaryKey(ctx context.Context, tableName string) ([]string, error) {
	query := `
		SELECT column_name
		FROM information_schema.key_column_usage
		WHERE table_schema = ?
			AND table_name = ?
			AND constraint_name = 'PRIMARY'
		ORDER BY ordinal_position
	`

	rows, err := e.client.GetDB().QueryContext(ctx, query, e.schemaName, tableName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pk []string
	for rows.Next() {
		var colName string
		if err := rows.Scan(&colName); err != nil {
			return nil, err
		}
		pk = append(pk, colName)
	}

	return pk, rows.Err()
}

// extractIndexes reads index columns from information_schema.statistics.
// collation is 'D' for descending and 'A' (or NULL) otherwise.
func (e *MySQLExtractor) extractIndexes(ctx context.Context, tableName string) ([]indexInfo, error) {
	query := `
		SELECT
			s.index_name,
			s.non_unique,
			s.column_name,
			COALESCE(s.collation, 'A')
		FROM information_schema.statistics s
		WHERE s.table_schema = ?
			AND s.table_name = ?
			AND s.index_name <> 'PRIMARY'
			AND s.column_name IS NOT NULL
		ORDER BY s.index_name, s.seq_in_index
	`

	rows, err := e.client.GetDB().QueryContext(ctx, query, e.schemaName, tableName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var indexRows []indexRow
	for rows.Next() {
		var (
			r         indexRow
			nonUnique int
			collation string
		)
		if err := rows.Scan(&r.index, &nonUnique, &r.column, &collation); err != nil {
			return nil, err
		}
		r.unique = nonUnique == 0
		r.ascending = collation != "D"
		indexRows = append(indexRows, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return groupIndexRows(indexRows), nil
}

func (e *MySQLExtractor) extractForeignKeys(ctx context.Context, tableName string) ([]foreignKeyInfo, error) {
	query := `
		SELECT
			kcu.constraint_name,
			kcu.column_name,
			kcu.referenced_table_name,
			kcu.referenced_column_name,
			rc.delete_rule,
			rc.update_rule
		FROM information_schema.key_column_usage kcu
		JOIN information_schema.referential_constraints rc
			ON rc.constraint_schema = kcu.table_schema
			AND rc.table_name = kcu.table_name
			AND rc.constraint_name = kcu.constraint_name
		WHERE kcu.table_schema = ?
			AND kcu.table_name = ?
			AND kcu.referenced_table_name IS NOT NULL
		ORDER BY kcu.constraint_name, kcu.ordinal_position
	`

	rows, err := e.client.GetDB().QueryContext(ctx, query, e.schemaName, tableName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var fks []foreignKeyInfo
	for rows.Next() {
		var fk foreignKeyInfo
		if err := rows.Scan(&fk.name, &fk.column, &fk.referencesTable, &fk.referencesColumn,
			&fk.deleteRule, &fk.updateRule); err != nil {
			return nil, err
		}
		fks = append(fks, fk)
	}

	return fks, rows.Err()
}
