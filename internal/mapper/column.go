package mapper

import (
	"github.com/tordrt/schemameta/internal/errs"
	"github.com/tordrt/schemameta/internal/schema"
	"github.com/tordrt/schemameta/internal/xmltree"
)

// mapColumn builds a <column> element.
//
// Every optional attribute is written when the key was present, falsy values
// included (nullable: false, size: 0). The two relationship controls are the
// exception: they are written only when truthy.
func mapColumn(column schema.Column, path string) (*xmltree.Element, error) {
	if column.Name == "" {
		return nil, errs.MissingField(path + ".name")
	}

	el := xmltree.New("column").Set("name", column.Name)

	if comments, ok := column.Comments.Get(); ok {
		el.Set("comments", commentText(comments))
	}
	if typ, ok := column.Type.Get(); ok {
		el.Set("type", typ)
	}
	if size, ok := column.Size.Get(); ok {
		el.Set("size", size.String())
	}
	if nullable, ok := column.Nullable.Get(); ok {
		el.Set("nullable", nullable.String())
	}
	if autoUpdated, ok := column.AutoUpdated.Get(); ok {
		el.Set("autoUpdated", autoUpdated.String())
	}
	if def, ok := column.DefaultValue.Get(); ok {
		el.Set("defaultValue", def.String())
	}
	if pk, ok := column.PrimaryKey.Get(); ok {
		el.Set("primaryKey", pk.String())
	}

	if column.DisableImpliedKeys.Truthy() {
		el.Set("disableImpliedKeys", column.DisableImpliedKeys.String())
	}
	if column.DisableDiagramAssociations.Truthy() {
		el.Set("disableDiagramAssociations", column.DisableDiagramAssociations.String())
	}

	if column.ForeignKey != nil {
		fk, err := mapColumnForeignKey(*column.ForeignKey, path+".foreignKey")
		if err != nil {
			return nil, err
		}
		el.Append(fk)
	}

	return el, nil
}
