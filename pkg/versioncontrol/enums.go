package versioncontrol

import (
	"fmt"
	"slices"
)

// ItemType represents the kind of a server item
type ItemType string

const (
	ItemTypeAny    ItemType = "Any"
	ItemTypeFolder ItemType = "Folder"
	ItemTypeFile   ItemType = "File"
)

var itemTypes = []ItemType{ItemTypeAny, ItemTypeFolder, ItemTypeFile}

// DeletedState filters items by deletion status
type DeletedState string

const (
	DeletedStateNonDeleted DeletedState = "NonDeleted"
	DeletedStateDeleted    DeletedState = "Deleted"
	DeletedStateAny        DeletedState = "Any"
)

var deletedStates = []DeletedState{DeletedStateNonDeleted, DeletedStateDeleted, DeletedStateAny}

// RecursionType controls how far an ItemSpec descends below its path
type RecursionType string

const (
	RecursionNone     RecursionType = "None"
	RecursionOneLevel RecursionType = "OneLevel"
	RecursionFull     RecursionType = "Full"
)

var recursionTypes = []RecursionType{RecursionNone, RecursionOneLevel, RecursionFull}

// LockLevel represents the lock held or requested on an item
type LockLevel string

const (
	LockLevelNone      LockLevel = "None"
	LockLevelCheckin   LockLevel = "Checkin"
	LockLevelCheckOut  LockLevel = "CheckOut"
	LockLevelUnchanged LockLevel = "Unchanged"
)

var lockLevels = []LockLevel{LockLevelNone, LockLevelCheckin, LockLevelCheckOut, LockLevelUnchanged}

// RequestType is the operation named by a ChangeRequest
type RequestType string

const (
	RequestTypeNone     RequestType = "None"
	RequestTypeAdd      RequestType = "Add"
	RequestTypeBranch   RequestType = "Branch"
	RequestTypeEncoding RequestType = "Encoding"
	RequestTypeEdit     RequestType = "Edit"
	RequestTypeDelete   RequestType = "Delete"
	RequestTypeLock     RequestType = "Lock"
	RequestTypeRename   RequestType = "Rename"
	RequestTypeUndelete RequestType = "Undelete"
	RequestTypeProperty RequestType = "Property"
)

var requestTypes = []RequestType{
	RequestTypeNone, RequestTypeAdd, RequestTypeBranch, RequestTypeEncoding, RequestTypeEdit,
	RequestTypeDelete, RequestTypeLock, RequestTypeRename, RequestTypeUndelete, RequestTypeProperty,
}

// VersionSpecKind identifies the active VersionSpec variant
type VersionSpecKind string

const (
	VersionSpecLatest    VersionSpecKind = "Latest"
	VersionSpecChangeset VersionSpecKind = "Changeset"
	VersionSpecDate      VersionSpecKind = "Date"
	VersionSpecLabel     VersionSpecKind = "Label"
	VersionSpecWorkspace VersionSpecKind = "Workspace"
)

// WorkingFolderType distinguishes mapped folders from cloaked ones
type WorkingFolderType string

const (
	WorkingFolderMap   WorkingFolderType = "Map"
	WorkingFolderCloak WorkingFolderType = "Cloak"
)

var workingFolderTypes = []WorkingFolderType{WorkingFolderMap, WorkingFolderCloak}

// SeverityType classifies a Failure
type SeverityType string

const (
	SeverityError   SeverityType = "Error"
	SeverityWarning SeverityType = "Warning"
)

var severityTypes = []SeverityType{SeverityError, SeverityWarning}

// ParseItemType converts a wire token into an ItemType
func ParseItemType(s string) (ItemType, error) {
	return parseToken(s, itemTypes)
}

// ParseDeletedState converts a wire token into a DeletedState
func ParseDeletedState(s string) (DeletedState, error) {
	return parseToken(s, deletedStates)
}

// ParseRecursionType converts a wire token into a RecursionType
func ParseRecursionType(s string) (RecursionType, error) {
	return parseToken(s, recursionTypes)
}

// ParseLockLevel converts a wire token into a LockLevel
func ParseLockLevel(s string) (LockLevel, error) {
	return parseToken(s, lockLevels)
}

func parseToken[T ~string](s string, allowed []T) (T, error) {
	if slices.Contains(allowed, T(s)) {
		return T(s), nil
	}
	var zero T
	return zero, fmt.Errorf("unknown %T value %q", zero, s)
}
