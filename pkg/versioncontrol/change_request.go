package versioncontrol

import (
	"encoding/xml"

	"github.com/flowbaker/tfvc/pkg/soap"
)

// ChangeOperation is the single change a ChangeRequest stages. The set of operations
// is closed; rename and branch carry their target path.
type ChangeOperation interface {
	RequestType() RequestType

	isChangeOperation()
}

type (
	AddChange      struct{}
	EditChange     struct{}
	DeleteChange   struct{}
	LockChange     struct{}
	PropertyChange struct{}
	EncodingChange struct{}

	RenameChange struct {
		Target     string
		TargetType ItemType
	}

	BranchChange struct {
		Target     string
		TargetType ItemType
	}

	// UndeleteChange restores a deleted item, optionally under a new name
	UndeleteChange struct {
		Target string
	}
)

func (AddChange) RequestType() RequestType      { return RequestTypeAdd }
func (EditChange) RequestType() RequestType     { return RequestTypeEdit }
func (DeleteChange) RequestType() RequestType   { return RequestTypeDelete }
func (LockChange) RequestType() RequestType     { return RequestTypeLock }
func (PropertyChange) RequestType() RequestType { return RequestTypeProperty }
func (EncodingChange) RequestType() RequestType { return RequestTypeEncoding }
func (RenameChange) RequestType() RequestType   { return RequestTypeRename }
func (BranchChange) RequestType() RequestType   { return RequestTypeBranch }
func (UndeleteChange) RequestType() RequestType { return RequestTypeUndelete }

func (AddChange) isChangeOperation()      {}
func (EditChange) isChangeOperation()     {}
func (DeleteChange) isChangeOperation()   {}
func (LockChange) isChangeOperation()     {}
func (PropertyChange) isChangeOperation() {}
func (EncodingChange) isChangeOperation() {}
func (RenameChange) isChangeOperation()   {}
func (BranchChange) isChangeOperation()   {}
func (UndeleteChange) isChangeOperation() {}

// ChangeRequest is the caller's intent to stage one change on Item
type ChangeRequest struct {
	Item      ItemSpec
	Operation ChangeOperation
	// Version is the base version of the change; nil omits it
	Version   VersionSpec
	ItemType  ItemType
	Encoding  int
	LockLevel LockLevel
}

// ToXML renders the request under name
func (r ChangeRequest) ToXML(name xml.Name) *soap.Element {
	e := newEncoder(name)
	if r.Operation != nil {
		e.attr("req", string(r.Operation.RequestType()))
	}
	e.int("enc", r.Encoding).
		str("type", string(r.ItemType)).
		str("lock", string(r.LockLevel))

	switch op := r.Operation.(type) {
	case RenameChange:
		e.attr("target", op.Target).str("targettype", string(op.TargetType))
	case BranchChange:
		e.attr("target", op.Target).str("targettype", string(op.TargetType))
	case UndeleteChange:
		e.str("target", op.Target)
	}

	e.add(r.Item.ToXML(e.child("item")))
	if r.Version != nil {
		e.add(r.Version.ToXML(e.child("vspec")))
	}

	return e.element()
}

// ChangeRequestFromXML decodes a request. The req attribute selects the operation;
// rename and branch require a target.
func ChangeRequestFromXML(el *soap.Element) (ChangeRequest, error) {
	d := newDecoder(el)
	r := ChangeRequest{
		Encoding:  d.int("enc"),
		ItemType:  enumAttr(d, "type", itemTypes),
		LockLevel: enumAttr(d, "lock", lockLevels),
	}
	d.required("req")
	req := enumAttr(d, "req", requestTypes)
	target, hasTarget := el.Attr("target")
	targetType := enumAttr(d, "targettype", itemTypes)
	if d.err != nil {
		return ChangeRequest{}, d.err
	}

	switch req {
	case RequestTypeAdd:
		r.Operation = AddChange{}
	case RequestTypeEdit:
		r.Operation = EditChange{}
	case RequestTypeDelete:
		r.Operation = DeleteChange{}
	case RequestTypeLock:
		r.Operation = LockChange{}
	case RequestTypeProperty:
		r.Operation = PropertyChange{}
	case RequestTypeEncoding:
		r.Operation = EncodingChange{}
	case RequestTypeUndelete:
		r.Operation = UndeleteChange{Target: target}
	case RequestTypeRename, RequestTypeBranch:
		if !hasTarget {
			return ChangeRequest{}, soap.Malformed(el.Name.Local, "%s request without target", req)
		}
		if req == RequestTypeRename {
			r.Operation = RenameChange{Target: target, TargetType: targetType}
		} else {
			r.Operation = BranchChange{Target: target, TargetType: targetType}
		}
	default:
		return ChangeRequest{}, soap.Malformed(el.Name.Local, "unsupported request type %q", req)
	}

	itemEl := el.Child(d.child("item"))
	if itemEl == nil {
		return ChangeRequest{}, soap.Malformed(el.Name.Local, "missing item")
	}
	item, err := ItemSpecFromXML(itemEl)
	if err != nil {
		return ChangeRequest{}, err
	}
	r.Item = item

	if versionEl := el.Child(d.child("vspec")); versionEl != nil {
		version, err := VersionSpecFromXML(versionEl)
		if err != nil {
			return ChangeRequest{}, err
		}
		r.Version = version
	}

	return r, nil
}
