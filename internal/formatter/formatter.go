// Package formatter writes a schema document in one of the supported output
// formats.
package formatter

import (
	"fmt"
	"io"
	"strings"

	"github.com/tordrt/schemameta/internal/schema"
)

const (
	FormatXML  = "xml"
	FormatYAML = "yaml"
)

// Formatter writes a document to its underlying writer
type Formatter interface {
	Format(doc *schema.Document) error
}

// New returns the formatter for the named format ("xml" or "yaml", case-insensitive)
func New(format string, w io.Writer) (Formatter, error) {
	switch strings.ToLower(format) {
	case FormatXML:
		return NewXMLFormatter(w), nil
	case FormatYAML, "yml":
		return NewYAMLFormatter(w), nil
	default:
		return nil, fmt.Errorf("unsupported format %q (expected %s or %s)", format, FormatXML, FormatYAML)
	}
}
