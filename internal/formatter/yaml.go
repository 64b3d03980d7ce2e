package formatter

import (
	"io"

	"github.com/tordrt/schemameta/internal/schema"
)

// YAMLFormatter writes a document back out as schema YAML
type YAMLFormatter struct {
	writer io.Writer
}

// NewYAMLFormatter creates a new YAML formatter
func NewYAMLFormatter(w io.Writer) *YAMLFormatter {
	return &YAMLFormatter{writer: w}
}

// Format writes doc as YAML that Parse reads back
func (f *YAMLFormatter) Format(doc *schema.Document) error {
	data, err := schema.Marshal(doc)
	if err != nil {
		return err
	}
	_, err = f.writer.Write(data)
	return err
}
