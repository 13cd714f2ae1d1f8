package versioncontrol

import (
	"encoding/xml"
	"time"

	"github.com/flowbaker/tfvc/pkg/soap"
)

// Item is a point-in-time snapshot of a server file or folder
type Item struct {
	ServerItem    string    `yaml:"server_item"`
	ItemID        int       `yaml:"item_id"`
	DeletionID    int       `yaml:"deletion_id,omitempty"`
	ItemType      ItemType  `yaml:"item_type"`
	Encoding      int       `yaml:"encoding,omitempty"`
	ChangesetID   int       `yaml:"changeset"`
	CheckinDate   time.Time `yaml:"checkin_date"`
	ContentLength int64     `yaml:"content_length,omitempty"`
	HashValue     []byte    `yaml:"-"`
	// DownloadURL is only populated when download info was requested
	DownloadURL string `yaml:"download_url,omitempty"`
}

// ToXML renders the item under name
func (i Item) ToXML(name xml.Name) *soap.Element {
	return newEncoder(name).
		attr("item", i.ServerItem).
		int("itemid", i.ItemID).
		int("did", i.DeletionID).
		str("type", string(i.ItemType)).
		int("enc", i.Encoding).
		int("cs", i.ChangesetID).
		time("date", i.CheckinDate).
		int64("len", i.ContentLength).
		str("durl", i.DownloadURL).
		hash(i.HashValue).
		element()
}

// ItemFromXML decodes an item; the server path is required
func ItemFromXML(el *soap.Element) (Item, error) {
	d := newDecoder(el)
	i := Item{
		ServerItem:    d.required("item"),
		ItemID:        d.int("itemid"),
		DeletionID:    d.int("did"),
		ItemType:      enumAttr(d, "type", itemTypes),
		Encoding:      d.int("enc"),
		ChangesetID:   d.int("cs"),
		CheckinDate:   d.time("date"),
		ContentLength: d.int64("len"),
		DownloadURL:   d.str("durl"),
		HashValue:     d.hash(),
	}
	if d.err != nil {
		return Item{}, d.err
	}
	return i, nil
}
