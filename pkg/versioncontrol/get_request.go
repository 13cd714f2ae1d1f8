package versioncontrol

import (
	"encoding/xml"

	"github.com/flowbaker/tfvc/pkg/soap"
)

// GetRequest asks for the items under Item at Version. A nil Item means the whole workspace.
type GetRequest struct {
	Item    *ItemSpec
	Version VersionSpec
}

// ToXML renders the request under name
func (r GetRequest) ToXML(name xml.Name) *soap.Element {
	e := newEncoder(name)
	if r.Item != nil {
		e.add(r.Item.ToXML(e.child("ItemSpec")))
	}
	if r.Version != nil {
		e.add(r.Version.ToXML(e.child("VersionSpec")))
	}
	return e.element()
}

// GetRequestFromXML decodes a request; the VersionSpec child is required
func GetRequestFromXML(el *soap.Element) (GetRequest, error) {
	d := newDecoder(el)
	var r GetRequest

	if itemEl := el.Child(d.child("ItemSpec")); itemEl != nil {
		item, err := ItemSpecFromXML(itemEl)
		if err != nil {
			return GetRequest{}, err
		}
		r.Item = &item
	}

	versionEl := el.Child(d.child("VersionSpec"))
	if versionEl == nil {
		return GetRequest{}, soap.Malformed(el.Name.Local, "missing VersionSpec")
	}
	version, err := VersionSpecFromXML(versionEl)
	if err != nil {
		return GetRequest{}, err
	}
	r.Version = version

	return r, nil
}
