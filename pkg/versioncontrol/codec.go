package versioncontrol

import (
	"encoding/base64"
	"encoding/xml"
	"strconv"
	"strings"
	"time"

	"github.com/flowbaker/tfvc/pkg/soap"
)

const dateLayout = time.RFC3339Nano

// Some servers omit the zone designator; such values are read as UTC.
const localDateLayout = "2006-01-02T15:04:05.999999999"

// decoder reads attributes and children of one element. The first failure sticks and
// every later read returns a zero value, so codecs check err once at the end.
type decoder struct {
	el  *soap.Element
	err error
}

func newDecoder(el *soap.Element) *decoder {
	return &decoder{el: el}
}

func (d *decoder) fail(format string, args ...any) {
	if d.err != nil {
		return
	}
	element := "element"
	if d.el != nil {
		element = d.el.Name.Local
	}
	d.err = soap.Malformed(element, format, args...)
}

func (d *decoder) required(name string) string {
	value, ok := d.el.Attr(name)
	if !ok {
		d.fail("missing required attribute %q", name)
	}
	return value
}

func (d *decoder) str(name string) string {
	value, _ := d.el.Attr(name)
	return value
}

func (d *decoder) requiredInt(name string) int {
	return d.parseInt(name, d.required(name))
}

func (d *decoder) int(name string) int {
	return d.parseInt(name, d.str(name))
}

func (d *decoder) parseInt(name, value string) int {
	if value == "" || d.err != nil {
		return 0
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		d.fail("attribute %q: invalid integer %q", name, value)
		return 0
	}
	return n
}

func (d *decoder) int64(name string) int64 {
	value := d.str(name)
	if value == "" || d.err != nil {
		return 0
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		d.fail("attribute %q: invalid integer %q", name, value)
		return 0
	}
	return n
}

func (d *decoder) bool(name string) bool {
	value := d.str(name)
	if value == "" || d.err != nil {
		return false
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		d.fail("attribute %q: invalid boolean %q", name, value)
		return false
	}
	return b
}

func (d *decoder) time(name string) time.Time {
	value := d.str(name)
	if value == "" || d.err != nil {
		return time.Time{}
	}
	t, err := parseDate(value)
	if err != nil {
		d.fail("attribute %q: invalid date %q", name, value)
		return time.Time{}
	}
	return t
}

func (d *decoder) changeType(name string) ChangeType {
	value := d.str(name)
	if d.err != nil {
		return ChangeNone
	}
	c, err := ParseChangeType(value)
	if err != nil {
		d.fail("attribute %q: %v", name, err)
	}
	return c
}

// childText returns the untrimmed text of a child; comments and messages keep their whitespace
func (d *decoder) childText(local string) string {
	child := d.el.Child(d.child(local))
	if child == nil {
		return ""
	}
	return child.Text
}

// child qualifies a child name with the namespace of the element being decoded
func (d *decoder) child(local string) xml.Name {
	return xml.Name{Space: d.el.Name.Space, Local: local}
}

func (d *decoder) hash() []byte {
	text := strings.TrimSpace(d.childText("HashValue"))
	if text == "" || d.err != nil {
		return nil
	}
	hash, err := base64.StdEncoding.DecodeString(text)
	if err != nil {
		d.fail("HashValue: invalid base64")
		return nil
	}
	return hash
}

func enumAttr[T ~string](d *decoder, name string, allowed []T) T {
	value := d.str(name)
	if value == "" || d.err != nil {
		return ""
	}
	parsed, err := parseToken(value, allowed)
	if err != nil {
		d.fail("attribute %q: %v", name, err)
	}
	return parsed
}

func parseDate(value string) (time.Time, error) {
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		t, err = time.Parse(localDateLayout, value)
		if err != nil {
			return time.Time{}, err
		}
	}
	return t.UTC(), nil
}

func formatDate(t time.Time) string {
	return t.UTC().Format(dateLayout)
}

// encoder accumulates attributes and children of one element. Optional values are
// skipped when empty, zero or false.
type encoder struct {
	el *soap.Element
}

func newEncoder(name xml.Name) *encoder {
	return &encoder{el: soap.NewElement(name)}
}

func (e *encoder) attr(name, value string) *encoder {
	e.el.SetAttr(name, value)
	return e
}

func (e *encoder) requiredInt(name string, value int) *encoder {
	e.el.SetAttr(name, strconv.Itoa(value))
	return e
}

func (e *encoder) str(name, value string) *encoder {
	if value != "" {
		e.el.SetAttr(name, value)
	}
	return e
}

func (e *encoder) int(name string, value int) *encoder {
	if value != 0 {
		e.el.SetAttr(name, strconv.Itoa(value))
	}
	return e
}

func (e *encoder) int64(name string, value int64) *encoder {
	if value != 0 {
		e.el.SetAttr(name, strconv.FormatInt(value, 10))
	}
	return e
}

func (e *encoder) bool(name string, value bool) *encoder {
	if value {
		e.el.SetAttr(name, formatBool(value))
	}
	return e
}

func (e *encoder) time(name string, value time.Time) *encoder {
	if !value.IsZero() {
		e.el.SetAttr(name, formatDate(value))
	}
	return e
}

func (e *encoder) changeType(name string, value ChangeType) *encoder {
	return e.str(name, value.Token())
}

func (e *encoder) childText(local, text string) *encoder {
	if text != "" {
		e.el.AddChild(soap.NewTextElement(e.child(local), text))
	}
	return e
}

func (e *encoder) hash(value []byte) *encoder {
	if len(value) > 0 {
		e.childText("HashValue", base64.StdEncoding.EncodeToString(value))
	}
	return e
}

func (e *encoder) add(children ...*soap.Element) *encoder {
	e.el.AddChild(children...)
	return e
}

func (e *encoder) child(local string) xml.Name {
	return xml.Name{Space: e.el.Name.Space, Local: local}
}

func (e *encoder) element() *soap.Element {
	return e.el
}

func formatBool(b bool) string {
	return strconv.FormatBool(b)
}
