package db

import (
	"context"
	"fmt"

	"github.com/tordrt/schemameta/internal/schema"
)

// Extractor reads table definitions from a live database
type Extractor interface {
	// ExtractSchema extracts the given tables, or every base table when
	// tables is empty
	ExtractSchema(ctx context.Context, tables []string) (*schema.Document, error)
}

var (
	_ Extractor = (*PostgresExtractor)(nil)
	_ Extractor = (*MySQLExtractor)(nil)
	_ Extractor = (*SQLiteExtractor)(nil)
	_ Extractor = (*SQLServerExtractor)(nil)
)

// columnInfo is a column as read from the catalog
type columnInfo struct {
	name         string
	dataType     string
	size         *int64
	nullable     bool
	defaultValue *string
	autoUpdated  bool
	comment      string
}

type indexColumnInfo struct {
	name      string
	ascending bool
}

type indexInfo struct {
	name    string
	unique  bool
	columns []indexColumnInfo
}

// indexRow is one (index, column) pair as most catalogs report it
type indexRow struct {
	index     string
	unique    bool
	column    string
	ascending bool
}

// foreignKeyInfo is one column pair of a foreign key constraint
type foreignKeyInfo struct {
	name             string
	column           string
	referencesTable  string
	referencesColumn string
	deleteRule       string
	updateRule       string
}

// tableParts collects everything read for one table
type tableParts struct {
	name        string
	comment     string
	columns     []columnInfo
	primaryKey  []string
	indexes     []indexInfo
	foreignKeys []foreignKeyInfo
}

// extractAll runs extract for every name in order and wraps the result in a
// document. The tables key is always present, even for an empty database.
func extractAll(ctx context.Context, names []string, extract func(context.Context, string) (*tableParts, error)) (*schema.Document, error) {
	tables := make([]schema.Table, 0, len(names))
	for _, name := range names {
		parts, err := extract(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("failed to extract table %s: %w", name, err)
		}
		tables = append(tables, parts.build())
	}

	return &schema.Document{Tables: schema.Some(tables)}, nil
}

// build folds the catalog data into a schema.Table. A single-column primary
// key becomes the table's primaryKey; a composite one is flagged on each
// member column instead.
func (p *tableParts) build() schema.Table {
	table := schema.Table{Name: p.name}
	if p.comment != "" {
		table.Comments = schema.Some(p.comment)
	}

	composite := make(map[string]bool)
	switch len(p.primaryKey) {
	case 0:
	case 1:
		table.PrimaryKey = schema.Some(p.primaryKey[0])
	default:
		for _, name := range p.primaryKey {
			composite[name] = true
		}
	}

	for _, c := range p.columns {
		col := schema.Column{
			Name:     c.name,
			Nullable: schema.Flag(c.nullable),
		}
		if c.dataType != "" {
			col.Type = schema.Some(c.dataType)
		}
		if c.size != nil && *c.size > 0 {
			col.Size = schema.Some(schema.IntScalar(*c.size))
		}
		if c.autoUpdated {
			col.AutoUpdated = schema.Flag(true)
		}
		if c.defaultValue != nil {
			col.DefaultValue = schema.Some(schema.StringScalar(*c.defaultValue))
		}
		if composite[c.name] {
			col.PrimaryKey = schema.Flag(true)
		}
		if c.comment != "" {
			col.Comments = schema.Some(c.comment)
		}
		table.Columns = append(table.Columns, col)
	}

	for _, idx := range p.indexes {
		index := schema.Index{Name: idx.name, Unique: schema.Flag(idx.unique)}
		for _, c := range idx.columns {
			ic := schema.IndexColumn{Name: c.name}
			if !c.ascending {
				ic.Ascending = schema.BoolScalar(false)
			}
			index.Columns = append(index.Columns, ic)
		}
		table.Indexes = append(table.Indexes, index)
	}

	for _, fk := range p.foreignKeys {
		foreignKey := schema.ForeignKey{
			Column:           fk.column,
			ReferencesTable:  fk.referencesTable,
			ReferencesColumn: fk.referencesColumn,
		}
		if fk.name != "" {
			foreignKey.Name = schema.Some(fk.name)
		}
		if fk.deleteRule != "" {
			foreignKey.DeleteRule = schema.Some(fk.deleteRule)
		}
		if fk.updateRule != "" {
			foreignKey.UpdateRule = schema.Some(fk.updateRule)
		}
		table.ForeignKeys = append(table.ForeignKeys, foreignKey)
	}

	return table
}

// groupIndexRows merges consecutive rows of the same index. Rows must be
// ordered by index, then by position within the index.
func groupIndexRows(rows []indexRow) []indexInfo {
	var indexes []indexInfo
	for _, r := range rows {
		if n := len(indexes); n == 0 || indexes[n-1].name != r.index {
			indexes = append(indexes, indexInfo{name: r.index, unique: r.unique})
		}
		last := &indexes[len(indexes)-1]
		last.columns = append(last.columns, indexColumnInfo{name: r.column, ascending: r.ascending})
	}
	return indexes
}

func int64Ptr(v int64) *int64 {
	return &v
}
