package versioncontrol

import (
	"context"
	"fmt"

	"github.com/flowbaker/tfvc/pkg/soap"
)

// QueryItemsOptions configures QueryItems
type QueryItemsOptions struct {
	// Workspace scopes the query; nil queries without workspace context
	Workspace *Workspace
	Items     []ItemSpec
	Version   VersionSpec
	// DeletedState defaults to DeletedStateNonDeleted
	DeletedState DeletedState
	// ItemType defaults to ItemTypeAny
	ItemType            ItemType
	IncludeDownloadInfo bool
}

// QueryItemsExtendedOptions configures QueryItemsExtended
type QueryItemsExtendedOptions struct {
	Workspace    *Workspace
	Items        []ItemSpec
	DeletedState DeletedState
	ItemType     ItemType
}

// GetOptions configures Get
type GetOptions struct {
	Workspace *Workspace
	Requests  []GetRequest
	// Force fetches items even when the workspace claims to have them
	Force bool
	// NoGet only previews the operations
	NoGet bool
}

func deletedStateOrDefault(state DeletedState) DeletedState {
	if state == "" {
		return DeletedStateNonDeleted
	}
	return state
}

func itemTypeOrDefault(itemType ItemType) ItemType {
	if itemType == "" {
		return ItemTypeAny
	}
	return itemType
}

// workspaceIdentity returns name and owner, or empty strings without a workspace
func workspaceIdentity(workspace *Workspace) (string, string) {
	if workspace == nil {
		return "", ""
	}
	return workspace.Name, workspace.Owner
}

// QueryItems retrieves item snapshots at a version. Without a workspace the workspace
// name and owner are left out of the request, which makes the server use its default scope.
func (s *Service) QueryItems(ctx context.Context, opts QueryItemsOptions) ([]Item, error) {
	if err := requireItemSpecs(opts.Items); err != nil {
		return nil, err
	}
	if opts.Version == nil {
		return nil, fmt.Errorf("%w: version is required", ErrInvalidArgument)
	}

	workspaceName, workspaceOwner := workspaceIdentity(opts.Workspace)
	_, result, err := s.call(ctx, "QueryItems",
		s.optionalText("workspaceName", workspaceName),
		s.optionalText("workspaceOwner", workspaceOwner),
		itemSpecsToXML(s.name("items"), opts.Items),
		opts.Version.ToXML(s.name("version")),
		s.text("deletedState", string(deletedStateOrDefault(opts.DeletedState))),
		s.text("itemType", string(itemTypeOrDefault(opts.ItemType))),
		s.boolText("generateDownloadUrls", opts.IncludeDownloadInfo),
	)
	if err != nil {
		return nil, err
	}

	var items []Item
	for _, el := range result.Descendants(s.name("Item")) {
		item, err := ItemFromXML(el)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	return items, nil
}

// QueryItemsExtended retrieves items together with their workspace state
func (s *Service) QueryItemsExtended(ctx context.Context, opts QueryItemsExtendedOptions) ([]ExtendedItem, error) {
	if err := requireItemSpecs(opts.Items); err != nil {
		return nil, err
	}

	workspaceName, workspaceOwner := workspaceIdentity(opts.Workspace)
	_, result, err := s.call(ctx, "QueryItemsExtended",
		s.optionalText("workspaceName", workspaceName),
		s.optionalText("workspaceOwner", workspaceOwner),
		itemSpecsToXML(s.name("items"), opts.Items),
		s.text("deletedState", string(deletedStateOrDefault(opts.DeletedState))),
		s.text("itemType", string(itemTypeOrDefault(opts.ItemType))),
	)
	if err != nil {
		return nil, err
	}

	var items []ExtendedItem
	for _, el := range result.Descendants(s.name("ExtendedItem")) {
		item, err := ExtendedItemFromXML(el)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	return items, nil
}

// Get asks the server which local operations bring the workspace to the requested
// versions. The server records the workspace as updated unless NoGet is set, so
// callers acknowledge processed operations with UpdateLocalVersion.
func (s *Service) Get(ctx context.Context, opts GetOptions) ([]GetOperation, error) {
	if err := requireWorkspace(opts.Workspace); err != nil {
		return nil, err
	}
	if len(opts.Requests) == 0 {
		return nil, fmt.Errorf("%w: at least one get request is required", ErrInvalidArgument)
	}

	requests := s.name("requests")
	container := newEncoder(requests)
	for _, request := range opts.Requests {
		if request.Version == nil {
			return nil, fmt.Errorf("%w: get request version is required", ErrInvalidArgument)
		}
		container.add(request.ToXML(container.child("GetRequest")))
	}

	children := []*soap.Element{
		s.text("workspaceName", opts.Workspace.Name),
		s.text("ownerName", opts.Workspace.Owner),
		container.element(),
	}
	if opts.Force {
		children = append(children, s.boolText("force", true))
	}
	if opts.NoGet {
		children = append(children, s.boolText("noGet", true))
	}

	_, result, err := s.call(ctx, "Get", children...)
	if err != nil {
		return nil, err
	}

	return getOperationsFromXML(result.Find(s.name("ArrayOfGetOperation"), s.name("GetOperation")))
}
