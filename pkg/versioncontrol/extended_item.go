package versioncontrol

import (
	"encoding/xml"
	"time"

	"github.com/flowbaker/tfvc/pkg/soap"
)

// ExtendedItem is an item seen through a workspace: its local path, the version the
// workspace has and any change pending against it
type ExtendedItem struct {
	ItemID                int        `yaml:"item_id"`
	DeletionID            int        `yaml:"deletion_id,omitempty"`
	ItemType              ItemType   `yaml:"item_type"`
	Encoding              int        `yaml:"encoding,omitempty"`
	LocalItem             string     `yaml:"local_item,omitempty"`
	SourceServerItem      string     `yaml:"source_server_item,omitempty"`
	TargetServerItem      string     `yaml:"target_server_item,omitempty"`
	LocalVersion          int        `yaml:"local_version"`
	LatestVersion         int        `yaml:"latest_version"`
	ChangeType            ChangeType `yaml:"change_type"`
	HasOtherPendingChange bool       `yaml:"has_other_pending_change,omitempty"`
	LockStatus            LockLevel  `yaml:"lock_status,omitempty"`
	LockOwner             string     `yaml:"lock_owner,omitempty"`
	CheckinDate           time.Time  `yaml:"checkin_date"`
}

// HasPendingChange reports whether the workspace has a change pending on the item
func (i ExtendedItem) HasPendingChange() bool {
	return !i.ChangeType.IsEmpty()
}

// IsOutOfDate reports whether a newer version exists than the one in the workspace
func (i ExtendedItem) IsOutOfDate() bool {
	return i.LocalVersion != 0 && i.LocalVersion < i.LatestVersion
}

// ToXML renders the item under name
func (i ExtendedItem) ToXML(name xml.Name) *soap.Element {
	return newEncoder(name).
		int("itemid", i.ItemID).
		int("did", i.DeletionID).
		str("type", string(i.ItemType)).
		int("enc", i.Encoding).
		str("local", i.LocalItem).
		str("sitem", i.SourceServerItem).
		str("titem", i.TargetServerItem).
		int("lver", i.LocalVersion).
		int("latest", i.LatestVersion).
		changeType("chg", i.ChangeType).
		bool("ochg", i.HasOtherPendingChange).
		str("lock", string(i.LockStatus)).
		str("lowner", i.LockOwner).
		time("date", i.CheckinDate).
		element()
}

// ExtendedItemFromXML decodes an extended item
func ExtendedItemFromXML(el *soap.Element) (ExtendedItem, error) {
	d := newDecoder(el)
	i := ExtendedItem{
		ItemID:                d.int("itemid"),
		DeletionID:            d.int("did"),
		ItemType:              enumAttr(d, "type", itemTypes),
		Encoding:              d.int("enc"),
		LocalItem:             d.str("local"),
		SourceServerItem:      d.str("sitem"),
		TargetServerItem:      d.str("titem"),
		LocalVersion:          d.int("lver"),
		LatestVersion:         d.int("latest"),
		ChangeType:            d.changeType("chg"),
		HasOtherPendingChange: d.bool("ochg"),
		LockStatus:            enumAttr(d, "lock", lockLevels),
		LockOwner:             d.str("lowner"),
		CheckinDate:           d.time("date"),
	}
	if d.err != nil {
		return ExtendedItem{}, d.err
	}
	return i, nil
}
