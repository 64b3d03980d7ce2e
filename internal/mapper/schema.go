// Package mapper projects a schema.Document onto the SchemaSpy schemameta
// element tree.
//
// Mapping is a pure function of its input: no I/O, no shared state, and the
// output order of tables, columns, indexes and foreign keys always matches
// the input order. A missing required name or reference fails the whole
// conversion with an errs.KindMissingField error carrying the document path.
package mapper

import (
	"fmt"
	"strings"

	"github.com/tordrt/schemameta/internal/errs"
	"github.com/tordrt/schemameta/internal/schema"
	"github.com/tordrt/schemameta/internal/xmltree"
)

const (
	RootElement    = "schemaMeta"
	XSINamespace   = "http://www.w3.org/2001/XMLSchema-instance"
	SchemaLocation = "http://schemaspy.org/xsd/6/schemameta.xsd"

	// LineBreak replaces every newline in comment text.
	LineBreak = "<br>"
)

// MapSchema maps a whole document to the schemaMeta root element.
func MapSchema(doc *schema.Document) (*xmltree.Element, error) {
	if doc == nil {
		return nil, errs.New(errs.KindInvalidInput, "nil schema document")
	}

	root := xmltree.New(RootElement).
		Set("xmlns:xsi", XSINamespace).
		Set("xsi:noNamespaceSchemaLocation", SchemaLocation)

	if comments, ok := doc.Comments.Get(); ok {
		root.Append(xmltree.New("comments").SetText(commentText(comments)))
	}

	tables, ok := doc.Tables.Get()
	if !ok {
		return root, nil
	}

	wrapper := xmltree.New("tables")
	for i, table := range tables {
		el, err := mapTable(table, fmt.Sprintf("tables[%d]", i))
		if err != nil {
			return nil, err
		}
		wrapper.Append(el)
	}
	root.Append(wrapper)

	return root, nil
}

// commentText converts line breaks to the dialect's <br> marker; the
// serializer escapes the marker.
func commentText(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\n", LineBreak)
}
