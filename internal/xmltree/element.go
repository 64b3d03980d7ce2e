// Package xmltree holds the element tree produced by the mapper and writes it
// out as indented XML.
//
// The tree is a plain value: an element name, an ordered attribute list, an
// optional text body and an ordered child list. Nothing in it depends on the
// serializer, so the mapper can be tested by comparing trees.
package xmltree

// Attr is a single attribute. Order within Element.Attrs is preserved on output.
type Attr struct {
	Name  string
	Value string
}

// Element is one node of the tree
type Element struct {
	Name     string
	Attrs    []Attr
	Text     string
	Children []*Element
}

// New creates an element with no attributes or children
func New(name string) *Element {
	return &Element{Name: name}
}

// Set appends an attribute and returns e for chaining
func (e *Element) Set(name, value string) *Element {
	e.Attrs = append(e.Attrs, Attr{Name: name, Value: value})
	return e
}

// SetText sets the text body and returns e for chaining
func (e *Element) SetText(text string) *Element {
	e.Text = text
	return e
}

// Append adds children in order and returns e for chaining
func (e *Element) Append(children ...*Element) *Element {
	e.Children = append(e.Children, children...)
	return e
}

// Attr returns the value of the named attribute and whether it exists
func (e *Element) Attr(name string) (string, bool) {
	for _, a := range e.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// ChildrenNamed returns the direct children with the given name, in order
func (e *Element) ChildrenNamed(name string) []*Element {
	var out []*Element
	for _, c := range e.Children {
		if c.Name == name {
			out = append(out, c)
		}
	}
	return out
}

// Child returns the first direct child with the given name, or nil
func (e *Element) Child(name string) *Element {
	for _, c := range e.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}
