package db

import (
	"context"
	"database/sql"
	"strings"

	"github.com/tordrt/schemameta/internal/errs"
	"github.com/tordrt/schemameta/internal/schema"
)

// DefaultSQLServerSchema is used when no schema is given
const DefaultSQLServerSchema = "dbo"

// SQLServerExtractor reads tables from one SQL Server schema. Comments come
// from MS_Description extended properties.
type SQLServerExtractor struct {
	client     *SQLServerClient
	schemaName string
}

// NewSQLServerExtractor creates an extractor for schemaName
func NewSQLServerExtractor(client *SQLServerClient, schemaName string) *SQLServerExtractor {
	if schemaName == "" {
		schemaName = DefaultSQLServerSchema
	}
	return &SQLServerExtractor{
		client:     client,
		schemaName: schemaName,
	}
}

// ExtractSchema extracts the requested tables, or every base table ordered
// by name when tables is empty
func (e *SQLServerExtractor) ExtractSchema(ctx context.Context, tables []string) (*schema.Document, error) {
	tableNames, err := e.getTableNames(ctx, tables)
	if err != nil {
		return nil, errs.Wrap(errs.KindQuery, "failed to get table names", err)
	}

	return extractAll(ctx, tableNames, e.extractTable)
}

func (e *SQLServerExtractor) getTableNames(ctx context.Context, requestedTables []string) ([]string, error) {
	if len(requestedTables) > 0 {
		return requestedTables, nil
	}

	query := `
		SELECT TABLE_NAME
		FROM INFORMATION_SCHEMA.TABLES
		WHERE TABLE_SCHEMA = @p1 AND TABLE_TYPE = 'BASE TABLE'
		ORDER BY TABLE_NAME
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

func (e *SQLServerExtractor) extractTable(ctx context.Context, tableName string) (*tableParts, error) {
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

func (e *SQLServerExtractor) qualified(tableName string) string {
	return e.schemaName + "." + tableName
}

func (e *SQLServerExtractor) extractTableComment(ctx context.Context, tableName string) (string, error) {
	query := `
		SELECT COALESCE(CAST(MAX(ep.value) AS NVARCHAR(4000)), '')
		FROM sys.extended_properties ep
		WHERE ep.class = 1
			AND ep.major_id = OBJECT_ID(@p1)
			AND ep.minor_id = 0
			AND ep.name = 'MS_Description'
	`

	var comment string
	if err := e.client.GetDB().QueryRowContext(ctx, query, e.qualified(tableName)).Scan(&comment); err != nil {
		return "", err
	}
	return comment, nil
}

// sqlServerColumnSize ignores the -1 that (n)varchar(max) reports
func sqlServerColumnSize(dataType string, charMaxLength, numericPrecision sql.NullInt64) *int64 {
	switch {
	case charMaxLength.Valid && charMaxLength.Int64 > 0:
		return int64Ptr(charMaxLength.Int64)
	case (dataType == "decimal" || dataType == "numeric") && numericPrecision.Valid:
		return int64Ptr(numericPrecision.Int64)
	default:
		return nil
	}
}

func (e *SQLServerExtractor) extractColumns(ctx context.Context, tableName string) ([]columnInfo, error) {
	query := `
		SELECT
			c.COLUMN_NAME,
			c.DATA_TYPE,
			CAST(c.CHARACTER_MAXIMUM_LENGTH AS BIGINT),
			CAST(c.NUMERIC_PRECISION AS BIGINT),
			c.IS_NULLABLE,
			c.COLUMN_DEFAULT,
			CAST(COALESCE(sc.is_identity, 0) AS BIT),
			COALESCE(CAST(ep.value AS NVARCHAR(4000)), '')
		FROM INFORMATION_SCHEMA.COLUMNS c
		LEFT JOIN sys.columns sc
			ON sc.object_id = OBJECT_ID(@p1)
			AND sc.name = c.COLUMN_NAME
		LEFT JOIN sys.extended_properties ep
			ON ep.class = 1
			AND ep.major_id = sc.object_id
			AND ep.minor_id = sc.column_id
			AND ep.name = 'MS_Description'
		WHERE c.TABLE_SCHEMA = @p2 AND c.TABLE_NAME = @p3
		ORDER BY c.ORDINAL_POSITION
	`

	rows, err := e.client.GetDB().QueryContext(ctx, query, e.qualified(tableName), e.schemaName, tableName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []columnInfo
	for rows.Next() {
		var (
			col              columnInfo
			dataType         string
			charMaxLength    sql.NullInt64
			numericPrecision sql.NullInt64
			nullable         string
			defaultVal       sql.NullString
			identity         bool
		)

		if err := rows.Scan(&col.name, &dataType, &charMaxLength, &numericPrecision,
			&nullable, &defaultVal, &identity, &col.comment); err != nil {
			return nil, err
		}

		col.dataType = dataType
		col.size = sqlServerColumnSize(dataType, charMaxLength, numericPrecision)
		col.nullable = nullable == "YES"
		col.autoUpdated = identity
		if defaultVal.Valid {
			col.defaultValue = &defaultVal.String
		}

		columns = append(columns, col)
	}

	return columns, rows.Err()
}

func (e *SQLServerExtractor) extractPrimaryKey(ctx context.Context, tableName string) ([]string, error) {
	query := `
		SELECT kcu.COLUMN_NAME
		FROM INFORMATION_SCHEMA.TABLE_CONSTRAINTS tc
		JOIN INFORMATION_SCHEMA.KEY_COLUMN_USAGE kcu
			ON kcu.CONSTRAINT_NAME = tc.CONSTRAINT_NAME
			AND kcu.TABLE_SCHEMA = tc.TABLE_SCHEMA
			AND kcu.TABLE_NAME = tc.TABLE_NAME
		WHERE tc.TABLE_SCHEMA = @p1
			AND tc.TABLE_NAME = @p2
			AND tc.CONSTRAINT_TYPE = 'PRIMARY KEY'
		ORDER BY kcu.ORDINAL_POSITION
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

func (e *SQLServerExtractor) extractIndexes(ctx context.Context, tableName string) ([]indexInfo, error) {
	query := `
		SELECT i.name, i.is_unique, c.name, ic.is_descending_key
		FROM sys.indexes i
		JOIN sys.index_columns ic
			ON ic.object_id = i.object_id AND ic.index_id = i.index_id
		JOIN sys.columns c
			ON c.object_id = ic.object_id AND c.column_id = ic.column_id
		WHERE i.object_id = OBJECT_ID(@p1)
			AND i.is_primary_key = 0
			AND i.type > 0
			AND ic.is_included_column = 0
		ORDER BY i.name, ic.key_ordinal
	`

	rows, err := e.client.GetDB().QueryContext(ctx, query, e.qualified(tableName))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var indexRows []indexRow
	for rows.Next() {
		var (
			r          indexRow
			descending bool
		)
		if err := rows.Scan(&r.index, &r.unique, &r.column, &descending); err != nil {
			return nil, err
		}
		r.ascending = !descending
		indexRows = append(indexRows, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return groupIndexRows(indexRows), nil
}

// sqlServerRule turns catalog action names such as SET_NULL into the
// spelling other databases report (SET NULL)
func sqlServerRule(action string) string {
	return strings.ReplaceAll(action, "_", " ")
}

func (e *SQLServerExtractor) extractForeignKeys(ctx context.Context, tableName string) ([]foreignKeyInfo, error) {
	query := `
		SELECT
			fk.name,
			pc.name,
			OBJECT_NAME(fk.referenced_object_id),
			rc.name,
			fk.delete_referential_action_desc,
			fk.update_referential_action_desc
		FROM sys.foreign_keys fk
		JOIN sys.foreign_key_columns fkc
			ON fkc.constraint_object_id = fk.object_id
		JOIN sys.columns pc
			ON pc.object_id = fkc.parent_object_id AND pc.column_id = fkc.parent_column_id
		JOIN sys.columns rc
			ON rc.object_id = fkc.referenced_object_id AND rc.column_id = fkc.referenced_column_id
		WHERE fk.parent_object_id = OBJECT_ID(@p1)
		ORDER BY fk.name, fkc.constraint_column_id
	`

	rows, err := e.client.GetDB().QueryContext(ctx, query, e.qualified(tableName))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var fks []foreignKeyInfo
	for rows.Next() {
		var (
			fk           foreignKeyInfo
			deleteAction string
			updateAction string
		)
		if err := rows.Scan(&fk.name, &fk.column, &fk.referencesTable, &fk.referencesColumn,
			&deleteAction, &updateAction); err != nil {
			return nil, err
		}
		fk.deleteRule = sqlServerRule(deleteAction)
		fk.updateRule = sqlServerRule(updateAction)
		fks = append(fks, fk)
	}

	return fks, rows.Err()
}
