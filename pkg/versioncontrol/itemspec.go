package versioncontrol

import (
	"encoding/xml"

	"github.com/flowbaker/tfvc/pkg/soap"
)

// ItemSpec scopes a query to a server path pattern
type ItemSpec struct {
	Item      string
	Recursion RecursionType
	// DeletionID selects a deleted item that occupied the same path
	DeletionID int
}

// ToXML renders the spec under name
func (s ItemSpec) ToXML(name xml.Name) *soap.Element {
	return newEncoder(name).
		attr("item", s.Item).
		str("recurse", string(s.Recursion)).
		int("did", s.DeletionID).
		element()
}

// ItemSpecFromXML decodes an item spec
func ItemSpecFromXML(el *soap.Element) (ItemSpec, error) {
	d := newDecoder(el)
	s := ItemSpec{
		Item:       d.required("item"),
		Recursion:  enumAttr(d, "recurse", recursionTypes),
		DeletionID: d.int("did"),
	}
	if d.err != nil {
		return ItemSpec{}, d.err
	}
	return s, nil
}

func itemSpecsToXML(name xml.Name, specs []ItemSpec) *soap.Element {
	container := soap.NewElement(name)
	for _, spec := range specs {
		container.AddChild(spec.ToXML(xml.Name{Space: name.Space, Local: "ItemSpec"}))
	}
	return container
}
