package versioncontrol

import (
	"context"
	"fmt"

	"github.com/flowbaker/tfvc/pkg/soap"
)

// QueryHistoryOptions configures QueryHistory
type QueryHistoryOptions struct {
	Item ItemSpec
	// VersionItem is the version at which Item is resolved
	VersionItem VersionSpec
	// From and To bound the range; nil leaves the range open
	From VersionSpec
	To   VersionSpec
	// MaxCount defaults to DefaultMaxCount
	MaxCount int
}

// QueryChangesetOptions configures QueryChangeset
type QueryChangesetOptions struct {
	ID                  int
	IncludeChanges      bool
	IncludeDownloadURLs bool
	// ExcludeSourceRenames drops source renames from the changes; they are included by default
	ExcludeSourceRenames bool
}

// QueryHistory lists the changesets that touched an item, newest first. The changesets
// come back without their change lists.
func (s *Service) QueryHistory(ctx context.Context, opts QueryHistoryOptions) ([]Changeset, error) {
	if opts.Item.Item == "" {
		return nil, fmt.Errorf("%w: item spec path is required", ErrInvalidArgument)
	}
	if opts.VersionItem == nil {
		return nil, fmt.Errorf("%w: item version is required", ErrInvalidArgument)
	}
	if opts.MaxCount < 0 {
		return nil, fmt.Errorf("%w: max count must not be negative", ErrInvalidArgument)
	}

	maxCount := opts.MaxCount
	if maxCount == 0 {
		maxCount = DefaultMaxCount
	}

	children := []*soap.Element{
		opts.Item.ToXML(s.name("itemSpec")),
		opts.VersionItem.ToXML(s.name("versionItem")),
	}
	if opts.From != nil {
		children = append(children, opts.From.ToXML(s.name("versionFrom")))
	}
	if opts.To != nil {
		children = append(children, opts.To.ToXML(s.name("versionTo")))
	}
	children = append(children,
		s.intText("maxCount", maxCount),
		s.boolText("includeFiles", false),
		s.boolText("generateDownloadUrls", false),
		s.boolText("slotMode", false),
		s.boolText("sortAscending", false),
	)

	_, result, err := s.call(ctx, "QueryHistory", children...)
	if err != nil {
		return nil, err
	}

	var changesets []Changeset
	for _, el := range result.ChildrenNamed(s.name("Changeset")) {
		changeset, err := ChangesetFromXML(el)
		if err != nil {
			return nil, err
		}
		changesets = append(changesets, changeset)
	}

	return changesets, nil
}

// QueryChangeset retrieves one changeset
func (s *Service) QueryChangeset(ctx context.Context, opts QueryChangesetOptions) (*Changeset, error) {
	if opts.ID <= 0 {
		return nil, fmt.Errorf("%w: changeset id must be positive", ErrInvalidArgument)
	}

	_, result, err := s.call(ctx, "QueryChangeset",
		s.intText("changesetId", opts.ID),
		s.boolText("includeChanges", opts.IncludeChanges),
		s.boolText("generateDownloadUrls", opts.IncludeDownloadURLs),
		s.boolText("includeSourceRenames", !opts.ExcludeSourceRenames),
	)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, soap.Malformed("QueryChangesetResult", "missing result")
	}

	changeset, err := ChangesetFromXML(result)
	if err != nil {
		return nil, err
	}

	return &changeset, nil
}
