package versioncontrol

import (
	"cmp"
	"encoding/xml"
	"strings"

	"github.com/flowbaker/tfvc/pkg/soap"
)

// Workspace is a named mapping of server paths to local paths, owned by a user on a computer
type Workspace struct {
	Name     string          `yaml:"name"`
	Owner    string          `yaml:"owner"`
	Computer string          `yaml:"computer,omitempty"`
	Comment  string          `yaml:"comment,omitempty"`
	Folders  []WorkingFolder `yaml:"folders,omitempty"`
}

// WorkingFolder maps one server path into the workspace
type WorkingFolder struct {
	ServerItem string            `yaml:"server_item"`
	LocalItem  string            `yaml:"local_item,omitempty"`
	Type       WorkingFolderType `yaml:"type,omitempty"`
}

// CompareWorkspaces orders workspaces by name ignoring case, then by owner and computer
func CompareWorkspaces(a, b Workspace) int {
	return cmp.Or(
		cmp.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)),
		cmp.Compare(a.Owner, b.Owner),
		cmp.Compare(a.Computer, b.Computer),
	)
}

// ToXML renders the workspace under name
func (w Workspace) ToXML(name xml.Name) *soap.Element {
	e := newEncoder(name).
		attr("name", w.Name).
		attr("owner", w.Owner).
		str("computer", w.Computer).
		childText("Comment", w.Comment)

	if len(w.Folders) > 0 {
		folders := soap.NewElement(e.child("Folders"))
		for _, folder := range w.Folders {
			folders.AddChild(folder.ToXML(e.child("WorkingFolder")))
		}
		e.add(folders)
	}

	return e.element()
}

// WorkspaceFromXML decodes a workspace; name and owner are required
func WorkspaceFromXML(el *soap.Element) (Workspace, error) {
	d := newDecoder(el)
	w := Workspace{
		Name:     d.required("name"),
		Owner:    d.required("owner"),
		Computer: d.str("computer"),
		Comment:  d.childText("Comment"),
	}
	if d.err != nil {
		return Workspace{}, d.err
	}

	for _, folderEl := range el.Find(d.child("Folders"), d.child("WorkingFolder")) {
		folder, err := WorkingFolderFromXML(folderEl)
		if err != nil {
			return Workspace{}, err
		}
		w.Folders = append(w.Folders, folder)
	}

	return w, nil
}

// ToXML renders the mapping under name
func (f WorkingFolder) ToXML(name xml.Name) *soap.Element {
	return newEncoder(name).
		attr("item", f.ServerItem).
		str("local", f.LocalItem).
		str("type", string(f.Type)).
		element()
}

// WorkingFolderFromXML decodes a mapping; the server item is required
func WorkingFolderFromXML(el *soap.Element) (WorkingFolder, error) {
	d := newDecoder(el)
	f := WorkingFolder{
		ServerItem: d.required("item"),
		LocalItem:  d.str("local"),
		Type:       enumAttr(d, "type", workingFolderTypes),
	}
	if d.err != nil {
		return WorkingFolder{}, d.err
	}
	return f, nil
}
