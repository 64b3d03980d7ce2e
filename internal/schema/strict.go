package schema

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/tordrt/schemameta/internal/errs"
)

// fieldSet lists the keys allowed in one mapping. A nil child marks a leaf;
// a non-nil child describes the mapping (or sequence of mappings) under it.
type fieldSet map[string]*child

type child struct {
	fields fieldSet
	seq    bool
}

var (
	columnForeignKeyFields = fieldSet{
		"table": nil, "column": nil, "type": nil, "deleteRule": nil, "updateRule": nil,
	}

	columnFields = fieldSet{
		"name": nil, "comments": nil, "type": nil, "size": nil, "nullable": nil,
		"autoUpdated": nil, "defaultValue": nil, "primaryKey": nil,
		"disableImpliedKeys": nil, "disableDiagramAssociations": nil,
		"foreignKey": {fields: columnForeignKeyFields},
	}

	indexColumnFields = fieldSet{"name": nil, "ascending": nil}

	indexFields = fieldSet{
		"name": nil, "unique": nil,
		"columns": {fields: indexColumnFields, seq: true},
	}

	foreignKeyFields = fieldSet{
		"name": nil, "column": nil, "type": nil, "deleteRule": nil, "updateRule": nil,
		"referencesTable": nil, "referencesColumn": nil,
	}

	tableFields = fieldSet{
		"name": nil, "comments": nil, "remoteCatalog": nil, "remoteSchema": nil,
		"primaryKey": nil,
		"columns":     {fields: columnFields, seq: true},
		"indexes":     {fields: indexFields, seq: true},
		"foreignKeys": {fields: foreignKeyFields, seq: true},
	}

	rootFields = fieldSet{
		"comments": nil,
		"tables":   {fields: tableFields, seq: true},
	}
)

// checkKnownFields walks a mapping node and rejects keys not in allowed.
// Shape errors are left to the decoder.
func checkKnownFields(node *yaml.Node, path string, allowed fieldSet) error {
	if node.Kind != yaml.MappingNode {
		return nil
	}

	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i].Value
		value := node.Content[i+1]
		keyPath := joinPath(path, key)

		sub, ok := allowed[key]
		if !ok {
			return errs.Malformed(keyPath, fmt.Sprintf("unknown field %q (line %d)", key, node.Content[i].Line))
		}
		if sub == nil {
			continue
		}

		if !sub.seq {
			if err := checkKnownFields(value, keyPath, sub.fields); err != nil {
				return err
			}
			continue
		}

		if value.Kind != yaml.SequenceNode {
			continue
		}
		for j, item := range value.Content {
			if err := checkKnownFields(item, fmt.Sprintf("%s[%d]", keyPath, j), sub.fields); err != nil {
				return err
			}
		}
	}

	return nil
}

func joinPath(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}
