// Package versioncontrol is a client for the Team Foundation Server version control
// web service: workspaces, item queries, gets, pending changes and history.
package versioncontrol

import (
	"context"
	"encoding/xml"
	"fmt"
	"slices"
	"strconv"

	"github.com/flowbaker/tfvc/pkg/soap"
)

const (
	// Namespace qualifies every request and response element of the service
	Namespace = "http://schemas.microsoft.com/TeamFoundation/2005/06/VersionControl/ClientServices/03"
	// RepositoryPath is the service endpoint relative to the collection URL
	RepositoryPath = "/VersionControl/v1.0/repository.asmx"
	// DefaultMaxCount asks QueryHistory for as many changesets as the server allows
	DefaultMaxCount = 32767
)

// Invoker sends one operation and returns its response element. Requests and results
// are qualified with the invoker's Namespace, normally the Namespace constant.
type Invoker interface {
	Invoke(ctx context.Context, operation string, children ...*soap.Element) (*soap.Element, error)
	Namespace() string
}

// Service exposes one method per remote operation. It holds no state besides the
// invoker, so it is as safe for concurrent use as the invoker's transport.
type Service struct {
	invoker Invoker
}

// NewService creates a service on top of invoker
func NewService(invoker Invoker) *Service {
	return &Service{invoker: invoker}
}

func (s *Service) name(local string) xml.Name {
	return xml.Name{Space: s.invoker.Namespace(), Local: local}
}

func (s *Service) text(local, value string) *soap.Element {
	return soap.NewTextElement(s.name(local), value)
}

// optionalText returns nil for an empty value so the element is left out of the request
func (s *Service) optionalText(local, value string) *soap.Element {
	if value == "" {
		return nil
	}
	return s.text(local, value)
}

func (s *Service) boolText(local string, value bool) *soap.Element {
	return s.text(local, formatBool(value))
}

func (s *Service) intText(local string, value int) *soap.Element {
	return s.text(local, strconv.Itoa(value))
}

// call invokes operation and returns its response together with the {operation}Result
// child, which is nil when the server sent no result
func (s *Service) call(ctx context.Context, operation string, children ...*soap.Element) (*soap.Element, *soap.Element, error) {
	response, err := s.invoker.Invoke(ctx, operation, children...)
	if err != nil {
		return nil, nil, err
	}
	return response, response.Child(s.name(operation + "Result")), nil
}

func requireWorkspace(workspace *Workspace) error {
	if workspace == nil {
		return fmt.Errorf("%w: workspace is required", ErrInvalidArgument)
	}
	if workspace.Name == "" {
		return fmt.Errorf("%w: workspace name is required", ErrInvalidArgument)
	}
	return nil
}

func requireItemSpecs(items []ItemSpec) error {
	if len(items) == 0 {
		return fmt.Errorf("%w: at least one item spec is required", ErrInvalidArgument)
	}
	for _, item := range items {
		if item.Item == "" {
			return fmt.Errorf("%w: item spec path is required", ErrInvalidArgument)
		}
	}
	return nil
}

func decodeWorkspaceResult(operation string, result *soap.Element) (*Workspace, error) {
	if result == nil {
		return nil, soap.Malformed(operation+"Result", "missing result")
	}
	workspace, err := WorkspaceFromXML(result)
	if err != nil {
		return nil, err
	}
	return &workspace, nil
}

// QueryWorkspace retrieves a single workspace by name and owner
func (s *Service) QueryWorkspace(ctx context.Context, name, owner string) (*Workspace, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: workspace name is required", ErrInvalidArgument)
	}

	_, result, err := s.call(ctx, "QueryWorkspace",
		s.text("workspaceName", name),
		s.text("ownerName", owner),
	)
	if err != nil {
		return nil, err
	}

	return decodeWorkspaceResult("QueryWorkspace", result)
}

// QueryWorkspaces lists workspaces, optionally filtered by owner and computer.
// The result is sorted with CompareWorkspaces whatever order the server used.
func (s *Service) QueryWorkspaces(ctx context.Context, owner, computer string) ([]Workspace, error) {
	_, result, err := s.call(ctx, "QueryWorkspaces",
		s.optionalText("ownerName", owner),
		s.optionalText("computer", computer),
	)
	if err != nil {
		return nil, err
	}

	var workspaces []Workspace
	for _, el := range result.ChildrenNamed(s.name("Workspace")) {
		workspace, err := WorkspaceFromXML(el)
		if err != nil {
			return nil, err
		}
		workspaces = append(workspaces, workspace)
	}

	slices.SortStableFunc(workspaces, CompareWorkspaces)

	return workspaces, nil
}

// CreateWorkspace creates workspace on the server and returns it as the server stored it
func (s *Service) CreateWorkspace(ctx context.Context, workspace Workspace) (*Workspace, error) {
	if err := requireWorkspace(&workspace); err != nil {
		return nil, err
	}

	_, result, err := s.call(ctx, "CreateWorkspace", workspace.ToXML(s.name("workspace")))
	if err != nil {
		return nil, err
	}

	return decodeWorkspaceResult("CreateWorkspace", result)
}

// UpdateWorkspace replaces the workspace currently named oldName. Renames are done by
// giving workspace a different name.
func (s *Service) UpdateWorkspace(ctx context.Context, oldName, owner string, workspace Workspace) (*Workspace, error) {
	if oldName == "" {
		return nil, fmt.Errorf("%w: current workspace name is required", ErrInvalidArgument)
	}
	if err := requireWorkspace(&workspace); err != nil {
		return nil, err
	}

	_, result, err := s.call(ctx, "UpdateWorkspace",
		s.text("oldWorkspaceName", oldName),
		s.text("ownerName", owner),
		workspace.ToXML(s.name("newWorkspace")),
	)
	if err != nil {
		return nil, err
	}

	return decodeWorkspaceResult("UpdateWorkspace", result)
}

// DeleteWorkspace removes a workspace from the server
func (s *Service) DeleteWorkspace(ctx context.Context, name, owner string) error {
	if name == "" {
		return fmt.Errorf("%w: workspace name is required", ErrInvalidArgument)
	}

	// The server expects these two elements without the service namespace.
	_, _, err := s.call(ctx, "DeleteWorkspace",
		soap.NewTextElement(xml.Name{Local: "workspaceName"}, name),
		soap.NewTextElement(xml.Name{Local: "ownerName"}, owner),
	)
	return err
}
