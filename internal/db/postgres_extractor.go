package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/tordrt/schemameta/internal/errs"
	"github.com/tordrt/schemameta/internal/schema"
)

const varcharType = "varchar"

// PostgresExtractor reads tables from one PostgreSQL schema
type PostgresExtractor struct {
	client *PostgresClient
	schema string
}

// NewPostgresExtractor creates an extractor for schemaName (usually "public")
func NewPostgresExtractor(client *PostgresClient, schemaName string) *PostgresExtractor {
	return &PostgresExtractor{
		client: client,
		schema: schemaName,
	}
}

// ExtractSchema extracts the requested tables, or every base table in the
// schema ordered by name when tables is empty
func (e *PostgresExtractor) ExtractSchema(ctx context.Context, tables []string) (*schema.Document, error) {
	tableNames, err := e.getTableNames(ctx, tables)
	if err != nil {
		return nil, errs.Wrap(errs.KindQuery, "failed to get table names", err)
	}

	return extractAll(ctx, tableNames, e.extractTable)
}

func (e *PostgresExtractor) getTableNames(ctx context.Context, requestedTables []string) ([]string, error) {
	if len(requestedTables) > 0 {
		return requestedTables, nil
	}

	query := `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = $1 AND table_type = 'BASE TABLE'
		ORDER BY table_name
	`

	rows, err := e.client.GetConnection().Query(ctx, query, e.schema)
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

func (e *PostgresExtractor) extractTable(ctx context.Context, tableName string) (*tableParts, error) {
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

func (e *PostgresExtractor) extractTableComment(ctx context.Context, tableName string) (string, error) {
	query := `
		SELECT COALESCE(obj_description(c.oid, 'pg_class'), '')
		FROM pg_class c
		JOIN pg_namespace n ON n.oid = c.relnamespace
		WHERE n.nspname = $1 AND c.relname = $2
	`

	var comment string
	if err := e.client.GetConnection().QueryRow(ctx, query, e.schema, tableName).Scan(&comment); err != nil {
		return "", err
	}
	return comment, nil
}

// normalizePostgresType maps verbose SQL type names to their common
// PostgreSQL spelling. Lengths are reported separately as the column size.
func normalizePostgresType(dataType, udtName string) string {
	switch dataType {
	case "timestamp with time zone":
		return "timestamptz"
	case "timestamp without time zone":
		return "timestamp"
	case "time with time zone":
		return "timetz"
	case "time without time zone":
		return "time"
	case "character varying":
		return varcharType
	case "character":
		return "char"
	case "ARRAY":
		// udt_name carries an underscore prefix for arrays, e.g. "_int4" for integer[]
		if strings.HasPrefix(udtName, "_") {
			return normalizeUdtName(udtName[1:]) + "[]"
		}
		return "array"
	case "USER-DEFINED":
		return udtName
	default:
		return dataType
	}
}

func normalizeUdtName(udtName string) string {
	switch udtName {
	case "int4":
		return "integer"
	case "int8":
		return "bigint"
	case "int2":
		return "smallint"
	case "float4":
		return "real"
	case "float8":
		return "double precision"
	case "bool":
		return "boolean"
	default:
		return udtName
	}
}

// postgresColumnSize is the character length, or the precision of an
// exact numeric column
func postgresColumnSize(dataType string, charMaxLength, numericPrecision *int64) *int64 {
	if charMaxLength != nil {
		return charMaxLength
	}
	if dataType == "numeric" && numericPrecision != nil {
		return numericPrecision
	}
	return nil
}

// isPostgresAutoUpdated reports identity and serial columns
func isPostgresAutoUpdated(isIdentity string, defaultValue *string) bool {
	if isIdentity == "YES" {
		return true
	}
	return defaultValue != nil && strings.HasPrefix(*defaultValue, "nextval(")
}

func (e *PostgresExtractor) extractColumns(ctx context.Context, tableName string) ([]columnInfo, error) {
	query := `
		SELECT
			c.column_name,
			c.data_type,
			c.udt_name,
			c.character_maximum_length,
			c.numeric_precision,
			c.is_nullable,
			c.column_default,
			c.is_identity,
			COALESCE(col_description(a.attrelid, a.attnum), '')
		FROM information_schema.columns c
		JOIN pg_namespace n ON n.nspname = c.table_schema
		JOIN pg_class t ON t.relnamespace = n.oid AND t.relname = c.table_name
		JOIN pg_attribute a ON a.attrelid = t.oid AND a.attname = c.column_name
		WHERE c.table_schema = $1 AND c.table_name = $2
		ORDER BY c.ordinal_position
	`

	rows, err := e.client.GetConnection().Query(ctx, query, e.schema, tableName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []columnInfo
	for rows.Next() {
		var (
			col              columnInfo
			dataType         string
			udtName          string
			charMaxLength    *int64
			numericPrecision *int64
			nullable         string
			isIdentity       string
		)

		if err := rows.Scan(&col.name, &dataType, &udtName, &charMaxLength, &numericPrecision,
			&nullable, &col.defaultValue, &isIdentity, &col.comment); err != nil {
			return nil, err
		}

		col.dataType = normalizePostgresType(dataType, udtName)
		col.size = postgresColumnSize(dataType, charMaxLength, numericPrecision)
		col.nullable = nullable == "YES"
		col.autoUpdated = isPostgresAutoUpdated(isIdentity, col.defaultValue)

		columns = append(columns, col)
	}

	return columns, rows.Err()
}

func (e *PostgresExtractor) extractPrimaryKey(ctx context.Context, tableName string) ([]string, error) {
	query := `
		SELECT kcu.column_name
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
			ON kcu.constraint_name = tc.constraint_name
			AND kcu.table_schema = tc.table_schema
			AND kcu.table_name = tc.table_name
		WHERE tc.table_schema = $1
			AND tc.table_name = $2
			AND tc.constraint_type = 'PRIMARY KEY'
		ORDER BY kcu.ordinal_position
	`

	rows, err := e.client.GetConnection().Query(ctx, query, e.schema, tableName)
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

// extractIndexes reads non-primary indexes one row per key column. Bit 0 of
// pg_index.indoption marks a descending column; expression columns
// (attnum 0) have no pg_attribute row and are skipped.
func (e *PostgresExtractor) extractIndexes(ctx context.Context, tableName string) ([]indexInfo, error) {
	query := `
		SELECT
			i.relname,
			ix.indisunique,
			a.attname,
			(ix.indoption[(k.ord - 1)::int] & 1) = 0
		FROM pg_class t
		JOIN pg_namespace n ON n.oid = t.relnamespace
		JOIN pg_index ix ON ix.indrelid = t.oid
		JOIN pg_class i ON i.oid = ix.indexrelid
		CROSS JOIN LATERAL unnest(ix.indkey::int2[]) WITH ORDINALITY AS k(attnum, ord)
		JOIN pg_attribute a ON a.attrelid = t.oid AND a.attnum = k.attnum
		WHERE t.relkind = 'r'
			AND n.nspname = $1
			AND t.relname = $2
			AND NOT ix.indisprimary
			AND k.ord <= ix.indnkeyatts
		ORDER BY i.relname, k.ord
	`

	rows, err := e.client.GetConnection().Query(ctx, query, e.schema, tableName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var indexRows []indexRow
	for rows.Next() {
		var r indexRow
		if err := rows.Scan(&r.index, &r.unique, &r.column, &r.ascending); err != nil {
			return nil, err
		}
		indexRows = append(indexRows, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return groupIndexRows(indexRows), nil
}

// extractForeignKeys pairs each referencing column with the referenced
// column at the same position of the unique constraint, so composite keys
// line up.
func (e *PostgresExtractor) extractForeignKeys(ctx context.Context, tableName string) ([]foreignKeyInfo, error) {
	query := `
		SELECT
			tc.constraint_name,
			kcu.column_name,
			ref.table_name,
			ref.column_name,
			rc.delete_rule,
			rc.update_rule
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
			ON kcu.constraint_name = tc.constraint_name
			AND kcu.table_schema = tc.table_schema
		JOIN information_schema.referential_constraints rc
			ON rc.constraint_name = tc.constraint_name
			AND rc.constraint_schema = tc.table_schema
		JOIN information_schema.key_column_usage ref
			ON ref.constraint_name = rc.unique_constraint_name
			AND ref.constraint_schema = rc.unique_constraint_schema
			AND ref.ordinal_position = kcu.position_in_unique_constraint
		WHERE tc.constraint_type = 'FOREIGN KEY'
			AND tc.table_schema = $1
			AND tc.table_name = $2
		ORDER BY tc.constraint_name, kcu.ordinal_position
	`

	rows, err := e.client.GetConnection().Query(ctx, query, e.schema, tableName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var fks []foreignKeyInfo
	for rows.Next() {
		var fk foreignKeyInfo
		if err := rows.Scan(&fk.name, &fk.column, &fk.referencesTable, &fk.referencesColumn,
			&fk.deleteRule, &fk.updateRule); err != nil {
			return nil, fmt.Errorf("failed to scan foreign key: %w", err)
		}
		fks = append(fks, fk)
	}

	return fks, rows.Err()
}
