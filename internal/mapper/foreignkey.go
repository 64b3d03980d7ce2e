package mapper

import (
	"github.com/tordrt/schemameta/internal/errs"
	"github.com/tordrt/schemameta/internal/schema"
	"github.com/tordrt/schemameta/internal/xmltree"
)

const (
	DefaultForeignKeyType = "fk"
	DefaultRule           = "no action"
)

// mapForeignKey builds a table-level <foreignKey>. Type and rules fall back
// to the dialect defaults when absent.
func mapForeignKey(fk schema.ForeignKey, path string) (*xmltree.Element, error) {
	switch {
	case fk.Column == "":
		return nil, errs.MissingField(path + ".column")
	case fk.ReferencesTable == "":
		return nil, errs.MissingField(path + ".referencesTable")
	case fk.ReferencesColumn == "":
		return nil, errs.MissingField(path + ".referencesColumn")
	}

	el := xmltree.New("foreignKey")
	if name, ok := fk.Name.Get(); ok {
		el.Set("name", name)
	}
	el.Set("type", valueOr(fk.Type, DefaultForeignKeyType)).
		Set("deleteRule", valueOr(fk.DeleteRule, DefaultRule)).
		Set("updateRule", valueOr(fk.UpdateRule, DefaultRule))

	el.Append(
		xmltree.New("column").Set("name", fk.Column),
		xmltree.New("references").
			Set("table", fk.ReferencesTable).
			Set("column", fk.ReferencesColumn),
	)

	return el, nil
}

// mapColumnForeignKey builds the <foreignKey> nested in a column. Unlike the
// table-level variant nothing is defaulted.
func mapColumnForeignKey(fk schema.ColumnForeignKey, path string) (*xmltree.Element, error) {
	switch {
	case fk.Table == "":
		return nil, errs.MissingField(path + ".table")
	case fk.Column == "":
		return nil, errs.MissingField(path + ".column")
	}

	el := xmltree.New("foreignKey").
		Set("table", fk.Table).
		Set("column", fk.Column)

	if typ, ok := fk.Type.Get(); ok {
		el.Set("type", typ)
	}
	if rule, ok := fk.DeleteRule.Get(); ok {
		el.Set("deleteRule", rule)
	}
	if rule, ok := fk.UpdateRule.Get(); ok {
		el.Set("updateRule", rule)
	}

	return el, nil
}

func valueOr(o schema.Opt[string], def string) string {
	if v, ok := o.Get(); ok {
		return v
	}
	return def
}
