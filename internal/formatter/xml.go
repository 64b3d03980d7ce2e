package formatter

import (
	"io"

	"github.com/tordrt/schemameta/internal/mapper"
	"github.com/tordrt/schemameta/internal/schema"
	"github.com/tordrt/schemameta/internal/xmltree"
)

// XMLFormatter writes a document as SchemaSpy schemameta XML
type XMLFormatter struct {
	writer io.Writer
	indent string
}

// NewXMLFormatter creates a new XML formatter
func NewXMLFormatter(w io.Writer) *XMLFormatter {
	return &XMLFormatter{writer: w, indent: "  "}
}

// Format maps doc and writes the resulting XML. Nothing is written when the
// mapping fails.
func (f *XMLFormatter) Format(doc *schema.Document) error {
	root, err := mapper.MapSchema(doc)
	if err != nil {
		return err
	}

	enc := xmltree.NewEncoder(f.writer)
	enc.Indent(f.indent)
	return enc.Encode(root)
}
