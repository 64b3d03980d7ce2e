package db

import (
	"context"
	"database/sql"
	"strconv"
	"strings"

	"github.com/tordrt/schemameta/internal/errs"
	"github.com/tordrt/schemameta/internal/schema"
)

// SQLiteExtractor reads tables from a SQLite database. SQLite has no table
// or column comments, so none are emitted.
type SQLiteExtractor struct {
	client *SQLiteClient
}

// NewSQLiteExtractor creates a new SQLite schema extractor
func NewSQLiteExtractor(client *SQLiteClient) *SQLiteExtractor {
	return &SQLiteExtractor{
		client: client,
	}
}

// ExtractSchema extracts the requested tables, or every user table ordered
// by name when tables is empty
func (e *SQLiteExtractor) ExtractSchema(ctx context.Context, tables []string) (*schema.Document, error) {
	tableNames, err := e.getTableNames(ctx, tables)
	if err != nil {
		return nil, errs.Wrap(errs.KindQuery, "failed to get table names", err)
	}

	return extractAll(ctx, tableNames, e.extractTable)
}

func (e *SQLiteExtractor) getTableNames(ctx context.Context, requestedTables []string) ([]string, error) {
	if len(requestedTables) > 0 {
		return requestedTables, nil
	}

	query := `
		SELECT name
		FROM sqlite_master
		WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
		ORDER BY name
	`

	return e.queryStrings(ctx, query)
}

func (e *SQLiteExtractor) queryStrings(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := e.client.GetDB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}

	return out, rows.Err()
}

func (e *SQLiteExtractor) extractTable(ctx context.Context, tableName string) (*tableParts, error) {
	parts := &tableParts{name: tableName}
	var err error

	if parts.columns, parts.primaryKey, err = e.extractColumns(ctx, tableName); err != nil {
		return nil, errs.Wrap(errs.KindQuery, "failed to extract columns", err)
	}
	if parts.indexes, err = e.extractIndexes(ctx, tableName); err != nil {
		return nil, errs.Wrap(errs.KindQuery, "failed to extract indexes", err)
	}
	if parts.foreignKeys, err = e.extractForeignKeys(ctx, tableName); err != nil {
		return nil, errs.Wrap(errs.KindQuery, "failed to extract foreign keys", err)
	}

	return parts, nil
}

// parseSQLiteType splits a declared type such as "VARCHAR(100)" or
// "DECIMAL(10, 2)" into its name and leading size.
func parseSQLiteType(decl string) (string, *int64) {
	decl = strings.TrimSpace(decl)
	open := strings.Index(decl, "(")
	if open < 0 {
		return decl, nil
	}

	name := strings.TrimSpace(decl[:open])
	args := decl[open+1:]
	if end := strings.Index(args, ")"); end >= 0 {
		args = args[:end]
	}
	first, _, _ := strings.Cut(args, ",")
	size, err := strconv.ParseInt(strings.TrimSpace(first), 10, 64)
	if err != nil {
		return name, nil
	}
	return name, &size
}

// extractColumns also returns the primary key, ordered by key position.
// A lone INTEGER primary key aliases the rowid: it is auto-assigned and can
// never be NULL, whatever table_info reports.
func (e *SQLiteExtractor) extractColumns(ctx context.Context, tableName string) ([]columnInfo, []string, error) {
	query := `
		SELECT name, type, "notnull", dflt_value, pk
		FROM pragma_table_info(?)
		ORDER BY cid
	`

	rows, err := e.client.GetDB().QueryContext(ctx, query, tableName)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	var (
		columns []columnInfo
		pkByPos = make(map[int]string)
	)
	for rows.Next() {
		var (
			col          columnInfo
			declType     string
			notNull, pk  int
			defaultValue sql.NullString
		)

		if err := rows.Scan(&col.name, &declType, &notNull, &defaultValue, &pk); err != nil {
			return nil, nil, err
		}

		col.dataType, col.size = parseSQLiteType(declType)
		col.nullable = notNull == 0
		if defaultValue.Valid {
			col.defaultValue = &defaultValue.String
		}
		if pk > 0 {
			pkByPos[pk] = col.name
		}

		columns = append(columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	pk := make([]string, 0, len(pkByPos))
	for i := 1; i <= len(pkByPos); i++ {
		pk = append(pk, pkByPos[i])
	}

	if len(pk) == 1 {
		for i := range columns {
			if columns[i].name == pk[0] && strings.EqualFold(columns[i].dataType, "INTEGER") {
				columns[i].autoUpdated = true
				columns[i].nullable = false
			}
		}
	}

	return columns, pk, nil
}

// extractIndexes lists explicit and unique-constraint indexes; the implicit
// primary key index (origin "pk") is skipped.
func (e *SQLiteExtractor) extractIndexes(ctx context.Context, tableName string) ([]indexInfo, error) {
	query := `
		SELECT name, "unique"
		FROM pragma_index_list(?)
		WHERE origin <> 'pk'
		ORDER BY name
	`

	rows, err := e.client.GetDB().QueryContext(ctx, query, tableName)
	if err != nil {
		return nil, err
	}

	var indexes []indexInfo
	for rows.Next() {
		var (
			idx    indexInfo
			unique int
		)
		if err := rows.Scan(&idx.name, &unique); err != nil {
			_ = rows.Close()
			return nil, err
		}
		idx.unique = unique == 1
		indexes = append(indexes, idx)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, err
	}
	_ = rows.Close()

	// Index columns are read once the list cursor is closed so in-memory
	// databases keep working on a single connection.
	result := indexes[:0]
	for _, idx := range indexes {
		columns, err := e.extractIndexColumns(ctx, idx.name)
		if err != nil {
			return nil, err
		}
		if len(columns) == 0 {
			continue
		}
		idx.columns = columns
		result = append(result, idx)
	}

	return result, nil
}

// extractIndexColumns returns the key columns of an index; expression
// columns (cid -2) are skipped.
func (e *SQLiteExtractor) extractIndexColumns(ctx context.Context, indexName string) ([]indexColumnInfo, error) {
	query := `
		SELECT name, "desc"
		FROM pragma_index_xinfo(?)
		WHERE key = 1 AND cid >= 0
		ORDER BY seqno
	`

	rows, err := e.client.GetDB().QueryContext(ctx, query, indexName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []indexColumnInfo
	for rows.Next() {
		var (
			name string
			desc int
		)
		if err := rows.Scan(&name, &desc); err != nil {
			return nil, err
		}
		columns = append(columns, indexColumnInfo{name: name, ascending: desc == 0})
	}

	return columns, rows.Err()
}

// extractForeignKeys reads foreign keys column pair by column pair. SQLite
// constraints are unnamed. A missing target column means the reference
// points at the target table's primary key.
func (e *SQLiteExtractor) extractForeignKeys(ctx context.Context, tableName string) ([]foreignKeyInfo, error) {
	query := `
		SELECT seq, "table", "from", "to", on_update, on_delete
		FROM pragma_foreign_key_list(?)
		ORDER BY id, seq
	`

	rows, err := e.client.GetDB().QueryContext(ctx, query, tableName)
	if err != nil {
		return nil, err
	}

	type pending struct {
		fk  foreignKeyInfo
		seq int
	}
	var list []pending
	for rows.Next() {
		var (
			p  pending
			to sql.NullString
		)
		if err := rows.Scan(&p.seq, &p.fk.referencesTable, &p.fk.column, &to,
			&p.fk.updateRule, &p.fk.deleteRule); err != nil {
			_ = rows.Close()
			return nil, err
		}
		p.fk.referencesColumn = to.String
		list = append(list, p)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, err
	}
	_ = rows.Close()

	fks := make([]foreignKeyInfo, 0, len(list))
	targetKeys := make(map[string][]string)
	for _, p := range list {
		if p.fk.referencesColumn == "" {
			pk, ok := targetKeys[p.fk.referencesTable]
			if !ok {
				_, pk, err = e.extractColumns(ctx, p.fk.referencesTable)
				if err != nil {
					return nil, err
				}
				targetKeys[p.fk.referencesTable] = pk
			}
			if p.seq < len(pk) {
				p.fk.referencesColumn = pk[p.seq]
			}
		}
		fks = append(fks, p.fk)
	}

	return fks, nil
}
