package versioncontrol

import (
	"encoding/xml"

	"github.com/flowbaker/tfvc/pkg/soap"
	"github.com/google/uuid"
)

// PendingSet groups the pending changes of one workspace, owner and computer
type PendingSet struct {
	Name     string `yaml:"name"`
	Owner    string `yaml:"owner"`
	Computer string `yaml:"computer,omitempty"`
	// Signature changes whenever the set of pending changes changes
	Signature      uuid.UUID       `yaml:"signature"`
	PendingChanges []PendingChange `yaml:"pending_changes,omitempty"`
	Failures       []Failure       `yaml:"failures,omitempty"`
}

// ToXML renders the set under name
func (s PendingSet) ToXML(name xml.Name) *soap.Element {
	e := newEncoder(name).
		attr("name", s.Name).
		attr("owner", s.Owner).
		str("computer", s.Computer)
	if s.Signature != uuid.Nil {
		e.attr("signature", s.Signature.String())
	}

	if len(s.PendingChanges) > 0 {
		changes := soap.NewElement(e.child("PendingChanges"))
		for _, change := range s.PendingChanges {
			changes.AddChild(change.ToXML(e.child("PendingChange")))
		}
		e.add(changes)
	}
	if len(s.Failures) > 0 {
		failures := soap.NewElement(e.child("Failures"))
		for _, failure := range s.Failures {
			failures.AddChild(failure.ToXML(e.child("Failure")))
		}
		e.add(failures)
	}

	return e.element()
}

// PendingSetFromXML decodes a pending set; name and owner are required
func PendingSetFromXML(el *soap.Element) (PendingSet, error) {
	d := newDecoder(el)
	s := PendingSet{
		Name:     d.required("name"),
		Owner:    d.required("owner"),
		Computer: d.str("computer"),
	}
	if signature := d.str("signature"); signature != "" && d.err == nil {
		parsed, err := uuid.Parse(signature)
		if err != nil {
			d.fail("attribute %q: invalid GUID %q", "signature", signature)
		}
		s.Signature = parsed
	}
	if d.err != nil {
		return PendingSet{}, d.err
	}

	for _, changeEl := range el.Find(d.child("PendingChanges"), d.child("PendingChange")) {
		change, err := PendingChangeFromXML(changeEl)
		if err != nil {
			return PendingSet{}, err
		}
		s.PendingChanges = append(s.PendingChanges, change)
	}

	if failuresEl := el.Child(d.child("Failures")); failuresEl != nil {
		failures, err := failuresFromXML(failuresEl)
		if err != nil {
			return PendingSet{}, err
		}
		s.Failures = failures
	}

	return s, nil
}
