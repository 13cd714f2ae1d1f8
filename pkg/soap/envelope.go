package soap

import (
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/clbanning/mxj/v2"
)

const (
	SOAP12Namespace = "http://www.w3.org/2003/05/soap-envelope"
	SOAP11Namespace = "http://schemas.xmlsoap.org/soap/envelope/"
)

// NewEnvelope wraps a message in a SOAP 1.2 envelope
func NewEnvelope(message *Element) *Element {
	body := NewElement(xml.Name{Space: SOAP12Namespace, Local: "Body"}, message)
	return NewElement(xml.Name{Space: SOAP12Namespace, Local: "Envelope"}, body)
}

// EnvelopeMessage returns the first element inside the envelope body.
// A Fault in the body is returned as a *Fault error.
func EnvelopeMessage(envelope *Element) (*Element, error) {
	if envelope == nil || envelope.Name.Local != "Envelope" {
		return nil, Malformed("Envelope", "missing SOAP envelope")
	}

	space := envelope.Name.Space
	if space != SOAP12Namespace && space != SOAP11Namespace {
		return nil, Malformed("Envelope", "unknown envelope namespace %q", space)
	}

	body := envelope.Child(xml.Name{Space: space, Local: "Body"})
	if body == nil {
		return nil, Malformed("Envelope", "missing Body")
	}
	if len(body.Children) == 0 {
		return nil, Malformed("Body", "empty body")
	}

	message := body.Children[0]
	if message.Name.Space == space && message.Name.Local == "Fault" {
		return nil, parseFault(message)
	}

	return message, nil
}

// NewFaultEnvelope builds a SOAP 1.2 fault envelope, as the server would send it.
// exceptionName is reported through the TFS detail element when non-empty.
func NewFaultEnvelope(soapCode, exceptionName, message string) *Element {
	name := func(local string) xml.Name { return xml.Name{Space: SOAP12Namespace, Local: local} }

	fault := NewElement(name("Fault"),
		NewElement(name("Code"), NewTextElement(name("Value"), "soap:"+soapCode)),
		NewElement(name("Reason"), NewTextElement(name("Text"), message).SetAttrNS(xmlNamespace, "lang", "en")),
	)
	if exceptionName != "" {
		detail := NewElement(name("Detail"))
		detail.SetAttr("ExceptionMessage", message)
		detail.SetAttr("BaseExceptionName", exceptionName)
		fault.AddChild(detail)
	}

	return NewElement(name("Envelope"), NewElement(name("Body"), fault))
}

// parseFault flattens the fault subtree and reads both the SOAP 1.1 and 1.2 shapes
func parseFault(el *Element) *Fault {
	fault := &Fault{}

	mv, err := mxj.NewMapXml(el.Bytes())
	if err != nil {
		fault.Code = "Unknown"
		fault.Message = strings.TrimSpace(el.Text)
		return fault
	}

	fault.SOAPCode = stripPrefix(firstString(mv, "Fault.faultcode", "Fault.Code.Value"))
	subcode := stripPrefix(firstString(mv, "Fault.Code.Subcode.Value"))
	fault.Message = firstString(mv, "Fault.faultstring", "Fault.Reason.Text")

	for _, path := range []string{"Fault.detail", "Fault.Detail"} {
		if v, err := mv.ValueForPath(path); err == nil {
			if detail, ok := v.(map[string]interface{}); ok {
				fault.Detail = detail
				break
			}
		}
	}

	exception := ""
	if fault.Detail != nil {
		exception = exceptionCode(detailAttr(fault.Detail, "BaseExceptionName"))
		if fault.Message == "" {
			fault.Message = detailAttr(fault.Detail, "ExceptionMessage")
		}
	}

	switch {
	case exception != "":
		fault.Code = exception
	case subcode != "":
		fault.Code = subcode
	case fault.SOAPCode != "":
		fault.Code = fault.SOAPCode
	default:
		fault.Code = "Unknown"
	}

	return fault
}

func firstString(mv mxj.Map, paths ...string) string {
	for _, path := range paths {
		v, err := mv.ValueForPath(path)
		if err != nil {
			continue
		}
		if s := stringValue(v); s != "" {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

func stringValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case map[string]interface{}:
		if text, ok := t["#text"].(string); ok {
			return text
		}
	case []interface{}:
		if len(t) > 0 {
			return stringValue(t[0])
		}
	case nil:
		return ""
	default:
		return fmt.Sprint(t)
	}
	return ""
}

// detailAttr finds an attribute of the detail element regardless of the prefix mxj gives it
func detailAttr(detail map[string]any, name string) string {
	for key, value := range detail {
		if key == name || strings.HasSuffix(key, "-"+name) || strings.HasSuffix(key, ":"+name) {
			return stringValue(value)
		}
	}
	return ""
}

func stripPrefix(s string) string {
	if i := strings.LastIndex(s, ":"); i >= 0 {
		return s[i+1:]
	}
	return s
}

// exceptionCode shortens a .NET exception type name:
// Microsoft.TeamFoundation.VersionControl.Server.WorkspaceNotFoundException -> WorkspaceNotFound
func exceptionCode(name string) string {
	if name == "" {
		return ""
	}
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	return strings.TrimSuffix(name, "Exception")
}
