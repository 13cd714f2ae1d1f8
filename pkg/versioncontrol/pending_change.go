package versioncontrol

import (
	"encoding/xml"
	"time"

	"github.com/flowbaker/tfvc/pkg/soap"
)

// PendingChange is a modification staged in a workspace and not yet checked in
type PendingChange struct {
	ServerItem       string     `yaml:"server_item"`
	SourceServerItem string     `yaml:"source_server_item,omitempty"`
	LocalItem        string     `yaml:"local_item,omitempty"`
	ItemID           int        `yaml:"item_id"`
	DeletionID       int        `yaml:"deletion_id,omitempty"`
	PendingChangeID  int        `yaml:"pending_change_id,omitempty"`
	Version          int        `yaml:"version"`
	ChangeType       ChangeType `yaml:"change_type"`
	LockLevel        LockLevel  `yaml:"lock_level,omitempty"`
	ItemType         ItemType   `yaml:"item_type"`
	Encoding         int        `yaml:"encoding,omitempty"`
	CreationDate     time.Time  `yaml:"creation_date"`
	DownloadURL      string     `yaml:"download_url,omitempty"`
	HashValue        []byte     `yaml:"-"`
}

// IsRename reports whether the change moves the item
func (c PendingChange) IsRename() bool {
	return c.ChangeType.Has(ChangeRename)
}

// ToXML renders the change under name
func (c PendingChange) ToXML(name xml.Name) *soap.Element {
	return newEncoder(name).
		attr("item", c.ServerItem).
		str("srcitem", c.SourceServerItem).
		str("local", c.LocalItem).
		int("itemid", c.ItemID).
		int("did", c.DeletionID).
		int("pcid", c.PendingChangeID).
		int("ver", c.Version).
		changeType("chg", c.ChangeType).
		str("lock", string(c.LockLevel)).
		str("type", string(c.ItemType)).
		int("enc", c.Encoding).
		time("date", c.CreationDate).
		str("durl", c.DownloadURL).
		hash(c.HashValue).
		element()
}

// PendingChangeFromXML decodes a pending change; the server item is required
func PendingChangeFromXML(el *soap.Element) (PendingChange, error) {
	d := newDecoder(el)
	c := PendingChange{
		ServerItem:       d.required("item"),
		SourceServerItem: d.str("srcitem"),
		LocalItem:        d.str("local"),
		ItemID:           d.int("itemid"),
		DeletionID:       d.int("did"),
		PendingChangeID:  d.int("pcid"),
		Version:          d.int("ver"),
		ChangeType:       d.changeType("chg"),
		LockLevel:        enumAttr(d, "lock", lockLevels),
		ItemType:         enumAttr(d, "type", itemTypes),
		Encoding:         d.int("enc"),
		CreationDate:     d.time("date"),
		DownloadURL:      d.str("durl"),
		HashValue:        d.hash(),
	}
	if d.err != nil {
		return PendingChange{}, d.err
	}
	return c, nil
}
