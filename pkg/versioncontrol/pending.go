package versioncontrol

import (
	"context"
	"fmt"

	"github.com/flowbaker/tfvc/pkg/soap"
)

// QueryPendingSetsOptions configures QueryPendingSets. Empty names are left out of the
// request, which widens the query on the server.
type QueryPendingSetsOptions struct {
	LocalWorkspaceName  string
	LocalWorkspaceOwner string
	QueryWorkspaceName  string
	OwnerName           string
	Items               []ItemSpec
	IncludeDownloadInfo bool
}

// QueryPendingSets retrieves the pending changes matching Items, grouped per workspace
func (s *Service) QueryPendingSets(ctx context.Context, opts QueryPendingSetsOptions) ([]PendingSet, error) {
	if err := requireItemSpecs(opts.Items); err != nil {
		return nil, err
	}

	_, result, err := s.call(ctx, "QueryPendingSets",
		s.optionalText("localWorkspaceName", opts.LocalWorkspaceName),
		s.optionalText("localWorkspaceOwner", opts.LocalWorkspaceOwner),
		s.optionalText("queryWorkspaceName", opts.QueryWorkspaceName),
		s.optionalText("ownerName", opts.OwnerName),
		itemSpecsToXML(s.name("itemSpecs"), opts.Items),
		s.boolText("generateDownloadUrls", opts.IncludeDownloadInfo),
	)
	if err != nil {
		return nil, err
	}

	var sets []PendingSet
	for _, el := range result.ChildrenNamed(s.name("PendingSet")) {
		set, err := PendingSetFromXML(el)
		if err != nil {
			return nil, err
		}
		sets = append(sets, set)
	}

	return sets, nil
}

// PendChanges stages changes in workspace. It returns the local operations that realize
// the staged changes and the per-item failures the server reported next to them.
func (s *Service) PendChanges(ctx context.Context, workspace *Workspace, changes []ChangeRequest) ([]GetOperation, []Failure, error) {
	if err := requireWorkspace(workspace); err != nil {
		return nil, nil, err
	}
	if len(changes) == 0 {
		return nil, nil, fmt.Errorf("%w: at least one change request is required", ErrInvalidArgument)
	}

	container := newEncoder(s.name("changes"))
	for _, change := range changes {
		if change.Operation == nil {
			return nil, nil, fmt.Errorf("%w: change request for %q has no operation", ErrInvalidArgument, change.Item.Item)
		}
		if change.Item.Item == "" {
			return nil, nil, fmt.Errorf("%w: change request item is required", ErrInvalidArgument)
		}
		container.add(change.ToXML(container.child("ChangeRequest")))
	}

	response, result, err := s.call(ctx, "PendChanges",
		s.text("workspaceName", workspace.Name),
		s.text("ownerName", workspace.Owner),
		container.element(),
	)
	if err != nil {
		return nil, nil, err
	}

	return s.operationsWithFailures(response, result)
}

// UndoPendChanges reverts the pending changes on items
func (s *Service) UndoPendChanges(ctx context.Context, workspace *Workspace, items []ItemSpec) ([]GetOperation, []Failure, error) {
	if err := requireWorkspace(workspace); err != nil {
		return nil, nil, err
	}
	if err := requireItemSpecs(items); err != nil {
		return nil, nil, err
	}

	response, result, err := s.call(ctx, "UndoPendingChanges",
		s.text("workspaceName", workspace.Name),
		s.text("ownerName", workspace.Owner),
		itemSpecsToXML(s.name("items"), items),
	)
	if err != nil {
		return nil, nil, err
	}

	return s.operationsWithFailures(response, result)
}

// operationsWithFailures decodes the GetOperation list of result and the failures
// element the server sends beside it
func (s *Service) operationsWithFailures(response, result *soap.Element) ([]GetOperation, []Failure, error) {
	operations, err := getOperationsFromXML(result.ChildrenNamed(s.name("GetOperation")))
	if err != nil {
		return nil, nil, err
	}

	var failures []Failure
	if failuresEl := response.Child(s.name("failures")); failuresEl != nil {
		failures, err = failuresFromXML(failuresEl)
		if err != nil {
			return nil, nil, err
		}
	}

	return operations, failures, nil
}

// QueryPendingChangesForWorkspace lists the pending changes of workspace under items
func (s *Service) QueryPendingChangesForWorkspace(ctx context.Context, workspace *Workspace, items []ItemSpec, includeDownloadInfo bool) ([]PendingChange, error) {
	if err := requireWorkspace(workspace); err != nil {
		return nil, err
	}
	if err := requireItemSpecs(items); err != nil {
		return nil, err
	}

	_, result, err := s.call(ctx, "QueryPendingChangesForWorkspace",
		s.text("workspaceName", workspace.Name),
		s.text("workspaceOwner", workspace.Owner),
		itemSpecsToXML(s.name("itemSpecs"), items),
		s.boolText("generateDownloadUrls", includeDownloadInfo),
	)
	if err != nil {
		return nil, err
	}

	var changes []PendingChange
	for _, el := range result.ChildrenNamed(s.name("PendingChange")) {
		change, err := PendingChangeFromXML(el)
		if err != nil {
			return nil, err
		}
		changes = append(changes, change)
	}

	return changes, nil
}

// UpdateLocalVersion tells the server which versions the workspace now holds on disk.
// An empty update list is a no-op and sends nothing.
func (s *Service) UpdateLocalVersion(ctx context.Context, workspace *Workspace, updates []LocalVersionUpdate) error {
	if err := requireWorkspace(workspace); err != nil {
		return err
	}
	if len(updates) == 0 {
		return nil
	}

	container := newEncoder(s.name("updates"))
	for _, update := range updates {
		container.add(update.ToXML(container.child("LocalVersionUpdate")))
	}

	_, _, err := s.call(ctx, "UpdateLocalVersion",
		s.text("workspaceName", workspace.Name),
		s.text("ownerName", workspace.Owner),
		container.element(),
	)
	return err
}
