package versioncontrol

import (
	"fmt"
	"strings"
)

// ChangeType is a set of change flags. On the wire it is a single token joining the
// set members with ", " in canonical order, e.g. "Edit, Rename". Tokens in any other
// order decode to the same set and are normalized to canonical order when re-encoded.
type ChangeType uint16

const (
	ChangeAdd ChangeType = 1 << iota
	ChangeEdit
	ChangeEncoding
	ChangeRename
	ChangeDelete
	ChangeUndelete
	ChangeBranch
	ChangeMerge
	ChangeLock
	ChangeRollback
	ChangeSourceRename
	ChangeProperty
)

// ChangeNone is the empty set
const ChangeNone ChangeType = 0

var changeTypeNames = []struct {
	flag ChangeType
	name string
}{
	{ChangeAdd, "Add"},
	{ChangeEdit, "Edit"},
	{ChangeEncoding, "Encoding"},
	{ChangeRename, "Rename"},
	{ChangeDelete, "Delete"},
	{ChangeUndelete, "Undelete"},
	{ChangeBranch, "Branch"},
	{ChangeMerge, "Merge"},
	{ChangeLock, "Lock"},
	{ChangeRollback, "Rollback"},
	{ChangeSourceRename, "SourceRename"},
	{ChangeProperty, "Property"},
}

// Has reports whether every flag in flags is set
func (c ChangeType) Has(flags ChangeType) bool {
	return c&flags == flags
}

// IsEmpty reports whether no flag is set
func (c ChangeType) IsEmpty() bool {
	return c == ChangeNone
}

// Flags returns the individual flags in canonical order
func (c ChangeType) Flags() []ChangeType {
	var flags []ChangeType
	for _, entry := range changeTypeNames {
		if c&entry.flag != 0 {
			flags = append(flags, entry.flag)
		}
	}
	return flags
}

// Token returns the wire form. The empty set yields an empty token.
func (c ChangeType) Token() string {
	names := make([]string, 0, len(changeTypeNames))
	for _, entry := range changeTypeNames {
		if c&entry.flag != 0 {
			names = append(names, entry.name)
		}
	}
	return strings.Join(names, ", ")
}

// String implements fmt.Stringer
func (c ChangeType) String() string {
	if c == ChangeNone {
		return "None"
	}
	return c.Token()
}

// MarshalText implements encoding.TextMarshaler
func (c ChangeType) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (c *ChangeType) UnmarshalText(text []byte) error {
	parsed, err := ParseChangeType(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseChangeType decodes a wire token. An empty token or "None" is the empty set.
// Both ", " and space separated tokens are accepted.
func ParseChangeType(token string) (ChangeType, error) {
	var c ChangeType
	for _, field := range strings.FieldsFunc(token, func(r rune) bool { return r == ',' || r == ' ' }) {
		if field == "None" {
			continue
		}
		flag, ok := changeFlag(field)
		if !ok {
			return ChangeNone, fmt.Errorf("unknown change type %q", field)
		}
		c |= flag
	}
	return c, nil
}

func changeFlag(name string) (ChangeType, bool) {
	for _, entry := range changeTypeNames {
		if entry.name == name {
			return entry.flag, true
		}
	}
	return ChangeNone, false
}
