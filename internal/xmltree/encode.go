package xmltree

import (
	"bytes"
	"fmt"
	"io"
	"strings"
)

// Header is the XML declaration written before the root element
const Header = `<?xml version="1.0" encoding="UTF-8"?>`

// Encoder writes an element tree as pretty-printed XML
type Encoder struct {
	w      io.Writer
	indent string
}

// NewEncoder returns an encoder writing to w with two-space indentation
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w, indent: "  "}
}

// Indent sets the per-level indentation string
func (enc *Encoder) Indent(indent string) {
	enc.indent = indent
}

// Encode writes the declaration, the tree rooted at root and a trailing newline.
// Elements without text or children are written self-closed.
func (enc *Encoder) Encode(root *Element) error {
	if root == nil {
		return fmt.Errorf("xmltree: nil root element")
	}

	var buf bytes.Buffer
	buf.WriteString(Header)
	buf.WriteByte('\n')
	if err := enc.writeElement(&buf, root, 0); err != nil {
		return err
	}

	_, err := enc.w.Write(buf.Bytes())
	return err
}

// Marshal returns the encoded form of root using two-space indentation
func Marshal(root *Element) ([]byte, error) {
	var buf bytes.Buffer
	if err := NewEncoder(&buf).Encode(root); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (enc *Encoder) writeElement(buf *bytes.Buffer, e *Element, depth int) error {
	if e.Name == "" {
		return fmt.Errorf("xmltree: element without a name at depth %d", depth)
	}

	pad := strings.Repeat(enc.indent, depth)
	buf.WriteString(pad)
	buf.WriteByte('<')
	buf.WriteString(e.Name)
	for _, a := range e.Attrs {
		if a.Name == "" {
			return fmt.Errorf("xmltree: attribute without a name on <%s>", e.Name)
		}
		buf.WriteByte(' ')
		buf.WriteString(a.Name)
		buf.WriteString(`="`)
		escapeAttr(buf, a.Value)
		buf.WriteByte('"')
	}

	switch {
	case len(e.Children) == 0 && e.Text == "":
		buf.WriteString("/>\n")
		return nil

	case len(e.Children) == 0:
		buf.WriteByte('>')
		escapeText(buf, e.Text)
		writeEnd(buf, e.Name)
		return nil
	}

	buf.WriteString(">\n")
	if e.Text != "" {
		buf.WriteString(pad)
		buf.WriteString(enc.indent)
		escapeText(buf, e.Text)
		buf.WriteByte('\n')
	}
	for _, c := range e.Children {
		if err := enc.writeElement(buf, c, depth+1); err != nil {
			return err
		}
	}
	buf.WriteString(pad)
	writeEnd(buf, e.Name)
	return nil
}

func writeEnd(buf *bytes.Buffer, name string) {
	buf.WriteString("</")
	buf.WriteString(name)
	buf.WriteString(">\n")
}

// escapeText writes character data. Quotes stay literal; only markup
// characters and carriage returns are escaped.
func escapeText(buf *bytes.Buffer, s string) {
	escapeString(buf, s, false)
}

// escapeAttr writes a double-quoted attribute value. Quotes and whitespace
// control characters are escaped so the value survives attribute
// normalization.
func escapeAttr(buf *bytes.Buffer, s string) {
	escapeString(buf, s, true)
}

// Characters outside the XML character range become U+FFFD.
func escapeString(buf *bytes.Buffer, s string, attr bool) {
	for _, r := range s {
		switch {
		case r == '&':
			buf.WriteString("&amp;")
		case r == '<':
			buf.WriteString("&lt;")
		case r == '>':
			buf.WriteString("&gt;")
		case r == '\r':
			buf.WriteString("&#xD;")
		case attr && r == '"':
			buf.WriteString("&quot;")
		case attr && r == '\n':
			buf.WriteString("&#xA;")
		case attr && r == '\t':
			buf.WriteString("&#x9;")
		case !isInCharacterRange(r):
			buf.WriteRune('\uFFFD')
		default:
			buf.WriteRune(r)
		}
	}
}

func isInCharacterRange(r rune) bool {
	return r == 0x09 ||
		r == 0x0A ||
		r == 0x0D ||
		r >= 0x20 && r <= 0xD7FF ||
		r >= 0xE000 && r <= 0xFFFD ||
		r >= 0x10000 && r <= 0x10FFFF
}
