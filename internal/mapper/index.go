package mapper

import (
	"fmt"
	"strconv"

	"github.com/tordrt/schemameta/internal/errs"
	"github.com/tordrt/schemameta/internal/schema"
	"github.com/tordrt/schemameta/internal/xmltree"
)

// mapIndex builds an <index> element. unique is always written: a falsy or
// missing value becomes false, anything else is written as given.
func mapIndex(index schema.Index, path string) (*xmltree.Element, error) {
	if index.Name == "" {
		return nil, errs.MissingField(path + ".name")
	}

	unique := "false"
	if u, ok := index.Unique.Get(); ok && u.Truthy() {
		unique = u.String()
	}
	el := xmltree.New("index").
		Set("name", index.Name).
		Set("unique", unique)

	for i, col := range index.Columns {
		if col.Name == "" {
			return nil, errs.MissingField(fmt.Sprintf("%s.columns[%d].name", path, i))
		}
		el.Append(xmltree.New("column").
			Set("name", col.Name).
			Set("ascending", strconv.FormatBool(isAscending(col))))
	}

	return el, nil
}

// isAscending is false only for an explicit boolean false; a bare name, a
// missing key or any other value means ascending.
func isAscending(col schema.IndexColumn) bool {
	asc, isBool := col.Ascending.Bool()
	return !isBool || asc
}
