package versioncontrol

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/flowbaker/tfvc/pkg/soap"
)

// VersionSpec selects a point in version history. The set of variants is closed:
// LatestVersion, ChangesetVersion, DateVersion, LabelVersion and WorkspaceVersion.
type VersionSpec interface {
	Kind() VersionSpecKind
	// ToXML renders the variant under name, discriminated by xsi:type
	ToXML(name xml.Name) *soap.Element
	// String returns the tf.exe style specifier, e.g. "T" or "C42"
	String() string

	isVersionSpec()
}

// LatestVersion is the tip of the repository
type LatestVersion struct{}

// ChangesetVersion is the state after changeset ID was committed
type ChangesetVersion struct {
	ID int
}

// DateVersion is the state at a point in time
type DateVersion struct {
	Date time.Time
}

// LabelVersion is the set of item versions carrying a label
type LabelVersion struct {
	Label string
	Scope string
}

// WorkspaceVersion is the version a workspace currently has
type WorkspaceVersion struct {
	Name  string
	Owner string
}

const (
	xsiLatest    = "LatestVersionSpec"
	xsiChangeset = "ChangesetVersionSpec"
	xsiDate      = "DateVersionSpec"
	xsiLabel     = "LabelVersionSpec"
	xsiWorkspace = "WorkspaceVersionSpec"
)

func (LatestVersion) Kind() VersionSpecKind    { return VersionSpecLatest }
func (ChangesetVersion) Kind() VersionSpecKind { return VersionSpecChangeset }
func (DateVersion) Kind() VersionSpecKind      { return VersionSpecDate }
func (LabelVersion) Kind() VersionSpecKind     { return VersionSpecLabel }
func (WorkspaceVersion) Kind() VersionSpecKind { return VersionSpecWorkspace }

func (LatestVersion) isVersionSpec()    {}
func (ChangesetVersion) isVersionSpec() {}
func (DateVersion) isVersionSpec()      {}
func (LabelVersion) isVersionSpec()     {}
func (WorkspaceVersion) isVersionSpec() {}

func (LatestVersion) String() string      { return "T" }
func (v ChangesetVersion) String() string { return "C" + strconv.Itoa(v.ID) }
func (v DateVersion) String() string      { return "D" + formatDate(v.Date) }

func (v LabelVersion) String() string {
	if v.Scope == "" {
		return "L" + v.Label
	}
	return "L" + v.Label + "@" + v.Scope
}

func (v WorkspaceVersion) String() string {
	if v.Owner == "" {
		return "W" + v.Name
	}
	return "W" + v.Name + ";" + v.Owner
}

func versionSpecElement(name xml.Name, xsiType string) *soap.Element {
	return soap.NewElement(name).SetAttrNS(soap.XSINamespace, "type", xsiType)
}

// ToXML implements VersionSpec
func (LatestVersion) ToXML(name xml.Name) *soap.Element {
	return versionSpecElement(name, xsiLatest)
}

// ToXML implements VersionSpec
func (v ChangesetVersion) ToXML(name xml.Name) *soap.Element {
	return versionSpecElement(name, xsiChangeset).SetAttr("cs", strconv.Itoa(v.ID))
}

// ToXML implements VersionSpec
func (v DateVersion) ToXML(name xml.Name) *soap.Element {
	return versionSpecElement(name, xsiDate).SetAttr("date", formatDate(v.Date))
}

// ToXML implements VersionSpec
func (v LabelVersion) ToXML(name xml.Name) *soap.Element {
	el := versionSpecElement(name, xsiLabel).SetAttr("label", v.Label)
	if v.Scope != "" {
		el.SetAttr("scope", v.Scope)
	}
	return el
}

// ToXML implements VersionSpec
func (v WorkspaceVersion) ToXML(name xml.Name) *soap.Element {
	el := versionSpecElement(name, xsiWorkspace).SetAttr("name", v.Name)
	if v.Owner != "" {
		el.SetAttr("owner", v.Owner)
	}
	return el
}

// versionShapes maps each variant to the attribute that discriminates it.
// Latest has no attributes and is only recognized through xsi:type.
var versionShapes = []struct {
	xsiType string
	attr    string
}{
	{xsiChangeset, "cs"},
	{xsiDate, "date"},
	{xsiLabel, "label"},
	{xsiWorkspace, "name"},
}

// VersionSpecFromXML reconstructs exactly the variant el describes. The element must
// match one variant: an xsi:type that disagrees with the attributes present, an
// unknown xsi:type, or attributes of several variants are all malformed.
func VersionSpecFromXML(el *soap.Element) (VersionSpec, error) {
	if el == nil {
		return nil, soap.Malformed("VersionSpec", "missing element")
	}

	var matched []string
	for _, shape := range versionShapes {
		if _, ok := el.Attr(shape.attr); ok {
			matched = append(matched, shape.xsiType)
		}
	}

	declared, hasType := el.AttrNS(soap.XSINamespace, "type")
	if hasType {
		declared = stripTypePrefix(declared)
	}

	var kind string
	switch {
	case len(matched) > 1:
		return nil, soap.Malformed(el.Name.Local, "attributes of several version spec variants present: %s", strings.Join(matched, ", "))
	case hasType && declared == xsiLatest:
		if len(matched) != 0 {
			return nil, soap.Malformed(el.Name.Local, "%s carries attributes of %s", xsiLatest, matched[0])
		}
		return LatestVersion{}, nil
	case hasType:
		if !isKnownVersionType(declared) {
			return nil, soap.Malformed(el.Name.Local, "unknown version spec type %q", declared)
		}
		if len(matched) == 0 {
			return nil, soap.Malformed(el.Name.Local, "%s is missing its discriminating attribute", declared)
		}
		if matched[0] != declared {
			return nil, soap.Malformed(el.Name.Local, "%s carries attributes of %s", declared, matched[0])
		}
		kind = declared
	case len(matched) == 0:
		return nil, soap.Malformed(el.Name.Local, "element does not match any version spec variant")
	default:
		kind = matched[0]
	}

	d := newDecoder(el)
	var spec VersionSpec
	switch kind {
	case xsiChangeset:
		spec = ChangesetVersion{ID: d.requiredInt("cs")}
	case xsiDate:
		spec = DateVersion{Date: d.time("date")}
	case xsiLabel:
		spec = LabelVersion{Label: d.str("label"), Scope: d.str("scope")}
	case xsiWorkspace:
		spec = WorkspaceVersion{Name: d.str("name"), Owner: d.str("owner")}
	}
	if d.err != nil {
		return nil, d.err
	}

	return spec, nil
}

func isKnownVersionType(xsiType string) bool {
	if xsiType == xsiLatest {
		return true
	}
	for _, shape := range versionShapes {
		if shape.xsiType == xsiType {
			return true
		}
	}
	return false
}

func stripTypePrefix(s string) string {
	if i := strings.LastIndex(s, ":"); i >= 0 {
		return s[i+1:]
	}
	return s
}

// ParseVersionSpec reads the tf.exe specifier syntax: "T", "C42" (or "42"),
// "D2024-01-31T00:00:00Z", "Lname@scope" and "Wname;owner".
func ParseVersionSpec(s string) (VersionSpec, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("%w: empty version spec", ErrInvalidArgument)
	}

	if id, err := strconv.Atoi(s); err == nil {
		if id <= 0 {
			return nil, fmt.Errorf("%w: changeset number must be positive: %q", ErrInvalidArgument, s)
		}
		return ChangesetVersion{ID: id}, nil
	}

	rest := s[1:]
	switch strings.ToUpper(s[:1]) {
	case "T":
		if rest == "" {
			return LatestVersion{}, nil
		}
	case "C":
		id, err := strconv.Atoi(rest)
		if err == nil && id > 0 {
			return ChangesetVersion{ID: id}, nil
		}
	case "D":
		date, err := parseDate(rest)
		if err != nil {
			if date, err = time.Parse(time.DateOnly, rest); err == nil {
				return DateVersion{Date: date.UTC()}, nil
			}
			break
		}
		return DateVersion{Date: date}, nil
	case "L":
		label, scope, _ := strings.Cut(rest, "@")
		if label != "" {
			return LabelVersion{Label: label, Scope: scope}, nil
		}
	case "W":
		name, owner, _ := strings.Cut(rest, ";")
		if name != "" {
			return WorkspaceVersion{Name: name, Owner: owner}, nil
		}
	}

	return nil, fmt.Errorf("%w: invalid version spec %q", ErrInvalidArgument, s)
}
