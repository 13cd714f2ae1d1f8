package soap

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// XSINamespace is the XML Schema instance namespace used for xsi:type and xsi:nil.
const XSINamespace = "http://www.w3.org/2001/XMLSchema-instance"

const xmlNamespace = "http://www.w3.org/XML/1998/namespace"

// Element is a namespace-aware XML element with ordered attributes and children.
// Lookup methods are safe to call on a nil *Element and return empty results.
type Element struct {
	Name     xml.Name
	Attrs    []xml.Attr
	Children []*Element
	Text     string
}

// NewElement creates an element with the given name and children
func NewElement(name xml.Name, children ...*Element) *Element {
	e := &Element{Name: name}
	return e.AddChild(children...)
}

// NewTextElement creates an element holding only character data
func NewTextElement(name xml.Name, text string) *Element {
	return &Element{Name: name, Text: text}
}

// AddChild appends children in order, skipping nil entries
func (e *Element) AddChild(children ...*Element) *Element {
	for _, child := range children {
		if child != nil {
			e.Children = append(e.Children, child)
		}
	}
	return e
}

// SetAttr sets an unqualified attribute, replacing an existing value
func (e *Element) SetAttr(local, value string) *Element {
	return e.SetAttrNS("", local, value)
}

// SetAttrNS sets a namespace-qualified attribute, replacing an existing value
func (e *Element) SetAttrNS(space, local, value string) *Element {
	for i := range e.Attrs {
		if e.Attrs[i].Name.Space == space && e.Attrs[i].Name.Local == local {
			e.Attrs[i].Value = value
			return e
		}
	}
	e.Attrs = append(e.Attrs, xml.Attr{Name: xml.Name{Space: space, Local: local}, Value: value})
	return e
}

// Attr returns the value of an unqualified attribute
func (e *Element) Attr(local string) (string, bool) {
	return e.AttrNS("", local)
}

// AttrNS returns the value of a namespace-qualified attribute
func (e *Element) AttrNS(space, local string) (string, bool) {
	if e == nil {
		return "", false
	}
	for _, attr := range e.Attrs {
		if attr.Name.Space == space && attr.Name.Local == local {
			return attr.Value, true
		}
	}
	return "", false
}

// Child returns the first direct child with the given name, or nil
func (e *Element) Child(name xml.Name) *Element {
	if e == nil {
		return nil
	}
	for _, child := range e.Children {
		if child.Name == name {
			return child
		}
	}
	return nil
}

// ChildrenNamed returns the direct children with the given name in document order
func (e *Element) ChildrenNamed(name xml.Name) []*Element {
	if e == nil {
		return nil
	}
	var out []*Element
	for _, child := range e.Children {
		if child.Name == name {
			out = append(out, child)
		}
	}
	return out
}

// Descendants returns every element below e with the given name, depth-first in document order
func (e *Element) Descendants(name xml.Name) []*Element {
	if e == nil {
		return nil
	}
	var out []*Element
	for _, child := range e.Children {
		if child.Name == name {
			out = append(out, child)
		}
		out = append(out, child.Descendants(name)...)
	}
	return out
}

// Find follows a path of child names and returns all elements matching the last step
func (e *Element) Find(path ...xml.Name) []*Element {
	if e == nil {
		return nil
	}
	current := []*Element{e}
	for _, step := range path {
		var next []*Element
		for _, el := range current {
			next = append(next, el.ChildrenNamed(step)...)
		}
		current = next
	}
	return current
}

// ChildText returns the trimmed text of the first child with the given name
func (e *Element) ChildText(name xml.Name) string {
	return strings.TrimSpace(e.Child(name).text())
}

func (e *Element) text() string {
	if e == nil {
		return ""
	}
	return e.Text
}

// ParseElement reads a document and returns its root element
func ParseElement(r io.Reader) (*Element, error) {
	decoder := xml.NewDecoder(r)

	var stack []*Element
	var root *Element

	for {
		token, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse XML: %w", err)
		}

		switch t := token.(type) {
		case xml.StartElement:
			el := &Element{Name: t.Name}
			for _, attr := range t.Attr {
				if isNamespaceDecl(attr) {
					continue
				}
				el.Attrs = append(el.Attrs, attr)
			}
			if len(stack) > 0 {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, el)
			} else if root == nil {
				root = el
			}
			stack = append(stack, el)
		case xml.EndElement:
			el := stack[len(stack)-1]
			if len(el.Children) > 0 {
				el.Text = strings.TrimSpace(el.Text)
			}
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].Text += string(t)
			}
		}
	}

	if root == nil {
		return nil, errors.New("failed to parse XML: document has no root element")
	}

	return root, nil
}

// ParseElementBytes is ParseElement over a byte slice
func ParseElementBytes(data []byte) (*Element, error) {
	return ParseElement(bytes.NewReader(data))
}

func isNamespaceDecl(attr xml.Attr) bool {
	return attr.Name.Space == "xmlns" || (attr.Name.Space == "" && attr.Name.Local == "xmlns")
}

// Encode writes e to w. Default namespaces are declared only where they differ from the
// enclosing element, so an unnamespaced child of a namespaced element gets xmlns="".
func (e *Element) Encode(w io.Writer) error {
	var buf bytes.Buffer
	e.write(&buf, "")
	_, err := w.Write(buf.Bytes())
	return err
}

// Bytes returns the serialized form of e
func (e *Element) Bytes() []byte {
	var buf bytes.Buffer
	e.write(&buf, "")
	return buf.Bytes()
}

// String implements fmt.Stringer
func (e *Element) String() string {
	if e == nil {
		return ""
	}
	return string(e.Bytes())
}

func (e *Element) write(buf *bytes.Buffer, parentSpace string) {
	buf.WriteByte('<')
	buf.WriteString(e.Name.Local)

	if e.Name.Space != parentSpace {
		writeAttr(buf, "xmlns", e.Name.Space)
	}

	prefixes := map[string]string{}
	for _, attr := range e.Attrs {
		name := attr.Name.Local
		if attr.Name.Space == xmlNamespace {
			name = "xml:" + name
		} else if attr.Name.Space != "" {
			prefix, ok := prefixes[attr.Name.Space]
			if !ok {
				prefix = attrPrefix(attr.Name.Space, len(prefixes))
				prefixes[attr.Name.Space] = prefix
				writeAttr(buf, "xmlns:"+prefix, attr.Name.Space)
			}
			name = prefix + ":" + name
		}
		writeAttr(buf, name, attr.Value)
	}

	if e.Text == "" && len(e.Children) == 0 {
		buf.WriteString("/>")
		return
	}

	buf.WriteByte('>')
	if e.Text != "" {
		_ = xml.EscapeText(buf, []byte(e.Text))
	}
	for _, child := range e.Children {
		child.write(buf, e.Name.Space)
	}
	buf.WriteString("</")
	buf.WriteString(e.Name.Local)
	buf.WriteByte('>')
}

func attrPrefix(space string, n int) string {
	if space == XSINamespace {
		return "xsi"
	}
	return fmt.Sprintf("ns%d", n)
}

func writeAttr(buf *bytes.Buffer, name, value string) {
	buf.WriteByte(' ')
	buf.WriteString(name)
	buf.WriteString(`="`)
	_ = xml.EscapeText(buf, []byte(value))
	buf.WriteByte('"')
}
