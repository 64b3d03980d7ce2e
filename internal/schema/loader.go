package schema

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/tordrt/schemameta/internal/errs"
)

// Options configures document loading
type Options struct {
	// Strict rejects keys the dialect does not know about.
	Strict bool
}

// Parse parses YAML data into a Document.
//
// Syntax errors and shape mismatches (e.g. columns given as a mapping) are
// reported as KindMalformedInput; an empty or null document as
// KindInvalidInput.
func Parse(data []byte, opts Options) (*Document, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, errs.Wrap(errs.KindMalformedInput, "Failed to parse YAML file", err)
	}

	body := documentBody(&root)
	if body == nil || body.ShortTag() == tagNull {
		return nil, errs.New(errs.KindInvalidInput, "YAML file is empty or invalid")
	}
	if body.Kind != yaml.MappingNode {
		return nil, errs.Malformed("", fmt.Sprintf("document root must be a mapping, got %s", kindName(body.Kind)))
	}

	if opts.Strict {
		if err := checkKnownFields(body, "", rootFields); err != nil {
			return nil, err
		}
	}

	var doc Document
	if err := body.Decode(&doc); err != nil {
		return nil, errs.Wrap(errs.KindMalformedInput, "invalid schema document", err)
	}

	return &doc, nil
}

// Marshal serializes a Document to YAML with two-space indentation.
func Marshal(doc *Document) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("failed to marshal schema document: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to marshal schema document: %w", err)
	}
	return buf.Bytes(), nil
}

func documentBody(root *yaml.Node) *yaml.Node {
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return nil
	}
	return root.Content[0]
}
