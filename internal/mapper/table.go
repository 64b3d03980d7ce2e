package mapper

import (
	"fmt"

	"github.com/tordrt/schemameta/internal/errs"
	"github.com/tordrt/schemameta/internal/schema"
	"github.com/tordrt/schemameta/internal/xmltree"
)

// mapTable builds a <table> element. Children are written columns first,
// then the declared primary key, indexes and foreign keys.
func mapTable(table schema.Table, path string) (*xmltree.Element, error) {
	if table.Name == "" {
		return nil, errs.MissingField(path + ".name")
	}

	el := xmltree.New("table").Set("name", table.Name)

	if comments, ok := table.Comments.Get(); ok {
		el.Set("comments", commentText(comments))
	}
	if catalog, ok := table.RemoteCatalog.Get(); ok {
		el.Set("remoteCatalog", catalog)
	}
	if remoteSchema, ok := table.RemoteSchema.Get(); ok {
		el.Set("remoteSchema", remoteSchema)
	}

	for i, column := range table.Columns {
		child, err := mapColumn(column, fmt.Sprintf("%s.columns[%d]", path, i))
		if err != nil {
			return nil, err
		}
		el.Append(child)
	}

	// Independent of any column-level primaryKey flag.
	if pk, ok := table.PrimaryKey.Get(); ok {
		if pk == "" {
			return nil, errs.MissingField(path + ".primaryKey")
		}
		el.Append(xmltree.New("primaryKey").Set("column", pk))
	}

	for i, index := range table.Indexes {
		child, err := mapIndex(index, fmt.Sprintf("%s.indexes[%d]", path, i))
		if err != nil {
			return nil, err
		}
		el.Append(child)
	}

	for i, fk := range table.ForeignKeys {
		child, err := mapForeignKey(fk, fmt.Sprintf("%s.foreignKeys[%d]", path, i))
		if err != nil {
			return nil, err
		}
		el.Append(child)
	}

	return el, nil
}
