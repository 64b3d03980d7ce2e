package schema

import (
	"fmt"
	"math"
	"strconv"

	"gopkg.in/yaml.v3"
)

const (
	tagNull  = "!!null"
	tagBool  = "!!bool"
	tagStr   = "!!str"
	tagInt   = "!!int"
	tagFloat = "!!float"
)

// Opt holds a value that may be absent from the input document.
// A key set to an explicit null is treated as absent.
type Opt[T any] struct {
	value T
	set   bool
}

// Some returns a present Opt holding v
func Some[T any](v T) Opt[T] {
	return Opt[T]{value: v, set: true}
}

// Get returns the value and whether it was present
func (o Opt[T]) Get() (T, bool) {
	return o.value, o.set
}

// IsSet reports whether the key was present in the input
func (o Opt[T]) IsSet() bool {
	return o.set
}

// IsZero lets yaml omitempty drop absent values
func (o Opt[T]) IsZero() bool {
	return !o.set
}

// UnmarshalYAML implements yaml.Unmarshaler. It is only invoked for keys
// present with a non-null value.
func (o *Opt[T]) UnmarshalYAML(node *yaml.Node) error {
	var v T
	if err := node.Decode(&v); err != nil {
		return err
	}
	o.value = v
	o.set = true
	return nil
}

// MarshalYAML implements yaml.Marshaler
func (o Opt[T]) MarshalYAML() (any, error) {
	if !o.set {
		return nil, nil
	}
	return o.value, nil
}

// Scalar keeps a YAML scalar as written: its resolved tag and literal text.
// It backs the fields that accept "any scalar" (size, defaultValue), the
// boolean flags, which pass non-boolean values through as written, and the
// bool-or-enum relationship controls.
type Scalar struct {
	tag   string
	value string
}

// StringScalar returns a string-tagged scalar
func StringScalar(s string) Scalar {
	return Scalar{tag: tagStr, value: s}
}

// IntScalar returns an int-tagged scalar
func IntScalar(n int64) Scalar {
	return Scalar{tag: tagInt, value: strconv.FormatInt(n, 10)}
}

// BoolScalar returns a bool-tagged scalar
func BoolScalar(b bool) Scalar {
	return Scalar{tag: tagBool, value: strconv.FormatBool(b)}
}

// Flag returns a present boolean scalar
func Flag(b bool) Opt[Scalar] {
	return Some(BoolScalar(b))
}

// IsSet reports whether a scalar was supplied
func (s Scalar) IsSet() bool {
	return s.tag != ""
}

// IsZero lets yaml omitempty drop unset scalars
func (s Scalar) IsZero() bool {
	return !s.IsSet()
}

// Bool returns the boolean value and whether the scalar is a boolean
func (s Scalar) Bool() (bool, bool) {
	if s.tag != tagBool {
		return false, false
	}
	b, err := strconv.ParseBool(s.value)
	if err != nil {
		return false, false
	}
	return b, true
}

// String renders booleans as "true"/"false" and everything else as written
func (s Scalar) String() string {
	if b, ok := s.Bool(); ok {
		return strconv.FormatBool(b)
	}
	return s.value
}

// Truthy reports whether the scalar counts as set for truthiness checks:
// unset, null, false, the empty string and numeric zero are all falsy.
func (s Scalar) Truthy() bool {
	switch s.tag {
	case "", tagNull:
		return false
	case tagBool:
		b, _ := s.Bool()
		return b
	case tagStr:
		return s.value != ""
	case tagInt:
		n, err := strconv.ParseInt(s.value, 0, 64)
		return err != nil || n != 0
	case tagFloat:
		f, err := strconv.ParseFloat(s.value, 64)
		return err != nil || (f != 0 && !math.IsNaN(f))
	default:
		return true
	}
}

// UnmarshalYAML implements yaml.Unmarshaler
func (s *Scalar) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: expected a scalar value, got %s", node.Line, kindName(node.Kind))
	}
	s.tag = node.ShortTag()
	s.value = canonicalValue(node, s.tag)
	return nil
}

// canonicalValue writes numbers in their plain decimal form (0x10 becomes
// 16, 1.50 becomes 1.5). Other scalars keep their text.
func canonicalValue(node *yaml.Node, tag string) string {
	switch tag {
	case tagInt:
		var n int64
		if err := node.Decode(&n); err == nil {
			return strconv.FormatInt(n, 10)
		}
		var u uint64
		if err := node.Decode(&u); err == nil {
			return strconv.FormatUint(u, 10)
		}
	case tagFloat:
		var f float64
		if err := node.Decode(&f); err == nil {
			return formatFloat(f)
		}
	}
	return node.Value
}

func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case math.Abs(f) >= 1e21:
		return strconv.FormatFloat(f, 'g', -1, 64)
	default:
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
}

// MarshalYAML implements yaml.Marshaler
func (s Scalar) MarshalYAML() (any, error) {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: s.tag, Value: s.value}, nil
}

// UnmarshalYAML accepts either a bare column name or a {name, ascending} mapping.
func (c *IndexColumn) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		c.Name = node.Value
		return nil

	case yaml.MappingNode:
		var aux struct {
			Name      string `yaml:"name"`
			Ascending Scalar `yaml:"ascending"`
		}
		if err := node.Decode(&aux); err != nil {
			return err
		}
		c.Name = aux.Name
		c.Ascending = aux.Ascending
		return nil

	default:
		return fmt.Errorf("line %d: index column must be a name or a {name, ascending} mapping, got %s", node.Line, kindName(node.Kind))
	}
}

// MarshalYAML writes the bare-name shorthand when no ordering was given.
func (c IndexColumn) MarshalYAML() (any, error) {
	if !c.Ascending.IsSet() {
		return c.Name, nil
	}
	return struct {
		Name      string `yaml:"name"`
		Ascending Scalar `yaml:"ascending"`
	}{c.Name, c.Ascending}, nil
}

func kindName(k yaml.Kind) string {
	switch k {
	case yaml.DocumentNode:
		return "document"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.MappingNode:
		return "mapping"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	default:
		return "nothing"
	}
}
