package versioncontrol

import (
	"encoding/xml"

	"github.com/flowbaker/tfvc/pkg/soap"
)

// LocalVersionUpdate records which version of an item now sits on disk. An empty
// TargetLocalItem tells the server the item was removed locally.
type LocalVersionUpdate struct {
	ItemID          int
	TargetLocalItem string
	LocalVersion    int
}

func (u LocalVersionUpdate) ToXML(name xml.Name) *soap.Element {
	return newEncoder(name).
		requiredInt("itemid", u.ItemID).
		str("tlocal", u.TargetLocalItem).
		requiredInt("lver", u.LocalVersion).
		element()
}

func LocalVersionUpdateFromXML(el *soap.Element) (LocalVersionUpdate, error) {
	d := newDecoder(el)
	u := LocalVersionUpdate{
		ItemID:          d.requiredInt("itemid"),
		TargetLocalItem: d.str("tlocal"),
		LocalVersion:    d.requiredInt("lver"),
	}
	if d.err != nil {
		return LocalVersionUpdate{}, d.err
	}
	return u, nil
}

// LocalVersionUpdateFor builds the update that acknowledges a processed GetOperation
func LocalVersionUpdateFor(operation GetOperation) LocalVersionUpdate {
	return LocalVersionUpdate{
		ItemID:          operation.ItemID,
		TargetLocalItem: operation.TargetLocalItem,
		LocalVersion:    operation.VersionServer,
	}
}
