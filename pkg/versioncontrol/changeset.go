package versioncontrol

import (
	"encoding/xml"
	"time"

	"github.com/flowbaker/tfvc/pkg/soap"
)

// Changeset is a committed, server-numbered set of changes
type Changeset struct {
	ID           int       `yaml:"id"`
	Owner        string    `yaml:"owner"`
	Committer    string    `yaml:"committer,omitempty"`
	CreationDate time.Time `yaml:"creation_date"`
	Comment      string    `yaml:"comment,omitempty"`
	// Changes is only populated when the query asked for them
	Changes []Change `yaml:"changes,omitempty"`
}

// Change is one item touched by a changeset
type Change struct {
	ChangeType ChangeType `yaml:"change_type"`
	Item       Item       `yaml:"item"`
}

// ToXML renders the changeset under name
func (c Changeset) ToXML(name xml.Name) *soap.Element {
	e := newEncoder(name).
		requiredInt("cset", c.ID).
		str("owner", c.Owner).
		str("cmtr", c.Committer).
		time("date", c.CreationDate).
		childText("Comment", c.Comment)

	if len(c.Changes) > 0 {
		changes := soap.NewElement(e.child("Changes"))
		for _, change := range c.Changes {
			changes.AddChild(change.ToXML(e.child("Change")))
		}
		e.add(changes)
	}

	return e.element()
}

// ChangesetFromXML decodes a changeset; the changeset number is required
func ChangesetFromXML(el *soap.Element) (Changeset, error) {
	d := newDecoder(el)
	c := Changeset{
		ID:           d.requiredInt("cset"),
		Owner:        d.str("owner"),
		Committer:    d.str("cmtr"),
		CreationDate: d.time("date"),
		Comment:      d.childText("Comment"),
	}
	if d.err != nil {
		return Changeset{}, d.err
	}

	for _, changeEl := range el.Find(d.child("Changes"), d.child("Change")) {
		change, err := ChangeFromXML(changeEl)
		if err != nil {
			return Changeset{}, err
		}
		c.Changes = append(c.Changes, change)
	}

	return c, nil
}

// ToXML renders the change under name
func (c Change) ToXML(name xml.Name) *soap.Element {
	e := newEncoder(name).changeType("type", c.ChangeType)
	return e.add(c.Item.ToXML(e.child("Item"))).element()
}

// ChangeFromXML decodes a change; the Item child is required
func ChangeFromXML(el *soap.Element) (Change, error) {
	d := newDecoder(el)
	c := Change{ChangeType: d.changeType("type")}
	if d.err != nil {
		return Change{}, d.err
	}

	itemEl := el.Child(d.child("Item"))
	if itemEl == nil {
		return Change{}, soap.Malformed(el.Name.Local, "missing Item")
	}
	item, err := ItemFromXML(itemEl)
	if err != nil {
		return Change{}, err
	}
	c.Item = item

	return c, nil
}
