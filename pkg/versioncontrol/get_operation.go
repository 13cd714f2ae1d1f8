package versioncontrol

import (
	"encoding/xml"
	"time"

	"github.com/flowbaker/tfvc/pkg/soap"
)

// GetOperation tells the client how to bring one local file in line with the server
// after a Get, PendChanges or UndoPendingChanges call
type GetOperation struct {
	ItemID                int        `yaml:"item_id"`
	ItemType              ItemType   `yaml:"item_type"`
	DeletionID            int        `yaml:"deletion_id,omitempty"`
	PendingChangeID       int        `yaml:"pending_change_id,omitempty"`
	SourceServerItem      string     `yaml:"source_server_item,omitempty"`
	TargetServerItem      string     `yaml:"target_server_item,omitempty"`
	SourceLocalItem       string     `yaml:"source_local_item,omitempty"`
	TargetLocalItem       string     `yaml:"target_local_item,omitempty"`
	VersionLocal          int        `yaml:"version_local"`
	VersionServer         int        `yaml:"version_server"`
	VersionServerDate     time.Time  `yaml:"version_server_date"`
	ChangeType            ChangeType `yaml:"change_type"`
	LockLevel             LockLevel  `yaml:"lock_level,omitempty"`
	IsLatest              bool       `yaml:"is_latest"`
	HasConflict           bool       `yaml:"has_conflict,omitempty"`
	ConflictingChangeType ChangeType `yaml:"conflicting_change_type,omitempty"`
	ConflictingItemID     int        `yaml:"conflicting_item_id,omitempty"`
	Encoding              int        `yaml:"encoding,omitempty"`
	DownloadURL           string     `yaml:"download_url,omitempty"`
	HashValue             []byte     `yaml:"-"`
}

// IsDelete reports whether the local file should be removed
func (o GetOperation) IsDelete() bool {
	return o.TargetLocalItem == "" && o.SourceLocalItem != ""
}

// IsNew reports whether the file does not exist locally yet
func (o GetOperation) IsNew() bool {
	return o.SourceLocalItem == "" && o.TargetLocalItem != ""
}

// ToXML renders the operation under name
func (o GetOperation) ToXML(name xml.Name) *soap.Element {
	return newEncoder(name).
		str("type", string(o.ItemType)).
		requiredInt("itemid", o.ItemID).
		str("slocal", o.SourceLocalItem).
		str("tlocal", o.TargetLocalItem).
		str("titem", o.TargetServerItem).
		str("sitem", o.SourceServerItem).
		int("sver", o.VersionServer).
		int("lver", o.VersionLocal).
		int("did", o.DeletionID).
		changeType("chg", o.ChangeType).
		str("lock", string(o.LockLevel)).
		bool("il", o.IsLatest).
		int("pcid", o.PendingChangeID).
		bool("cnflct", o.HasConflict).
		changeType("cnflctchg", o.ConflictingChangeType).
		int("cnflctitemid", o.ConflictingItemID).
		str("durl", o.DownloadURL).
		int("enc", o.Encoding).
		time("vsd", o.VersionServerDate).
		hash(o.HashValue).
		element()
}

// GetOperationFromXML decodes an operation; the item id is required
func GetOperationFromXML(el *soap.Element) (GetOperation, error) {
	d := newDecoder(el)
	o := GetOperation{
		ItemType:              enumAttr(d, "type", itemTypes),
		ItemID:                d.requiredInt("itemid"),
		SourceLocalItem:       d.str("slocal"),
		TargetLocalItem:       d.str("tlocal"),
		TargetServerItem:      d.str("titem"),
		SourceServerItem:      d.str("sitem"),
		VersionServer:         d.int("sver"),
		VersionLocal:          d.int("lver"),
		DeletionID:            d.int("did"),
		ChangeType:            d.changeType("chg"),
		LockLevel:             enumAttr(d, "lock", lockLevels),
		IsLatest:              d.bool("il"),
		PendingChangeID:       d.int("pcid"),
		HasConflict:           d.bool("cnflct"),
		ConflictingChangeType: d.changeType("cnflctchg"),
		ConflictingItemID:     d.int("cnflctitemid"),
		DownloadURL:           d.str("durl"),
		Encoding:              d.int("enc"),
		VersionServerDate:     d.time("vsd"),
		HashValue:             d.hash(),
	}
	if d.err != nil {
		return GetOperation{}, d.err
	}
	return o, nil
}

func getOperationsFromXML(elements []*soap.Element) ([]GetOperation, error) {
	var operations []GetOperation
	for _, el := range elements {
		operation, err := GetOperationFromXML(el)
		if err != nil {
			return nil, err
		}
		operations = append(operations, operation)
	}
	return operations, nil
}
