package versioncontrol

import (
	"encoding/xml"
	"fmt"

	"github.com/flowbaker/tfvc/pkg/soap"
)

// Failure is a per-item error the server reports next to otherwise successful results.
// Failures are data: callers decide how to treat a mixed batch.
type Failure struct {
	Code       string       `yaml:"code"`
	Severity   SeverityType `yaml:"severity"`
	Message    string       `yaml:"message"`
	ServerItem string       `yaml:"server_item,omitempty"`
	LocalItem  string       `yaml:"local_item,omitempty"`
}

func (f Failure) String() string {
	item := f.ServerItem
	if item == "" {
		item = f.LocalItem
	}
	if item == "" {
		return fmt.Sprintf("%s: %s", f.Code, f.Message)
	}
	return fmt.Sprintf("%s: %s (%s)", f.Code, f.Message, item)
}

// ToXML renders the failure under name
func (f Failure) ToXML(name xml.Name) *soap.Element {
	return newEncoder(name).
		str("code", f.Code).
		str("sev", string(f.Severity)).
		str("item", f.ServerItem).
		str("local", f.LocalItem).
		childText("Message", f.Message).
		element()
}

// FailureFromXML decodes a failure
func FailureFromXML(el *soap.Element) (Failure, error) {
	d := newDecoder(el)
	f := Failure{
		Code:       d.str("code"),
		Severity:   enumAttr(d, "sev", severityTypes),
		Message:    d.childText("Message"),
		ServerItem: d.str("item"),
		LocalItem:  d.str("local"),
	}
	if d.err != nil {
		return Failure{}, d.err
	}
	return f, nil
}

func failuresFromXML(container *soap.Element) ([]Failure, error) {
	var failures []Failure
	for _, el := range container.ChildrenNamed(xml.Name{Space: container.Name.Space, Local: "Failure"}) {
		failure, err := FailureFromXML(el)
		if err != nil {
			return nil, err
		}
		failures = append(failures, failure)
	}
	return failures, nil
}
