package versioncontrol

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/flowbaker/tfvc/pkg/soap"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// capturingTransport records the last request message and answers with a canned response
type capturingTransport struct {
	t        *testing.T
	calls    int
	action   string
	message  *soap.Element
	response string
	envelope *soap.Element
	err      error
}

func (c *capturingTransport) RoundTrip(ctx context.Context, action string, envelope *soap.Element) (*soap.Element, error) {
	c.calls++
	c.action = action

	message, err := soap.EnvelopeMessage(envelope)
	require.NoError(c.t, err)
	c.message = message

	if c.err != nil {
		return nil, c.err
	}
	if c.envelope != nil {
		return c.envelope, nil
	}

	response, err := soap.ParseElementBytes([]byte(c.response))
	require.NoError(c.t, err)
	return soap.NewEnvelope(response), nil
}

func newTestService(t *testing.T, response string) (*Service, *capturingTransport) {
	transport := &capturingTransport{t: t, response: response}
	invoker := soap.NewInvoker(transport, Namespace, soap.WithInvokerLogger(zerolog.Nop()))
	return NewService(invoker), transport
}

// respond wraps body in the {operation}Response element
func respond(operation, body string) string {
	return `<` + operation + `Response xmlns="` + Namespace + `">` + body + `</` + operation + `Response>`
}

func childNames(el *soap.Element) []string {
	var names []string
	for _, child := range el.Children {
		names = append(names, child.Name.Local)
	}
	return names
}

func childText(el *soap.Element, local string) string {
	return el.ChildText(vname(local))
}

var testWorkspace = &Workspace{Name: "W1", Owner: "alice"}

func TestService_QueryItems(t *testing.T) {
	service, transport := newTestService(t, respond("QueryItems", `
<QueryItemsResult>
  <ItemSet>
    <QueryPath>$/Proj</QueryPath>
    <Items>
      <Item cs="12" date="2024-01-02T03:04:05Z" enc="-3" type="Folder" itemid="100" item="$/Proj"/>
      <Item cs="42" date="2024-02-03T04:05:06.5Z" enc="65001" type="File" itemid="101" item="$/Proj/main.go" len="512">
        <HashValue>3q2+7w==</HashValue>
      </Item>
    </Items>
  </ItemSet>
</QueryItemsResult>`))

	items, err := service.QueryItems(context.Background(), QueryItemsOptions{
		Workspace:    testWorkspace,
		Items:        []ItemSpec{{Item: "$/Proj", Recursion: RecursionFull}},
		Version:      LatestVersion{},
		DeletedState: DeletedStateNonDeleted,
		ItemType:     ItemTypeAny,
	})
	require.NoError(t, err)

	assert.Equal(t, Namespace+"/QueryItems", transport.action)
	msg := transport.message
	assert.Equal(t, []string{"workspaceName", "workspaceOwner", "items", "version", "deletedState", "itemType", "generateDownloadUrls"}, childNames(msg))
	assert.Equal(t, "W1", childText(msg, "workspaceName"))
	assert.Equal(t, "alice", childText(msg, "workspaceOwner"))
	assert.Equal(t, "NonDeleted", childText(msg, "deletedState"))
	assert.Equal(t, "Any", childText(msg, "itemType"))
	assert.Equal(t, "false", childText(msg, "generateDownloadUrls"))

	specs := msg.Find(vname("items"), vname("ItemSpec"))
	require.Len(t, specs, 1)
	item, _ := specs[0].Attr("item")
	recurse, _ := specs[0].Attr("recurse")
	assert.Equal(t, "$/Proj", item)
	assert.Equal(t, "Full", recurse)

	versionType, _ := msg.Child(vname("version")).AttrNS(soap.XSINamespace, "type")
	assert.Equal(t, "LatestVersionSpec", versionType)

	require.Len(t, items, 2)
	assert.Equal(t, Item{
		ServerItem:  "$/Proj",
		ItemID:      100,
		ItemType:    ItemTypeFolder,
		Encoding:    -3,
		ChangesetID: 12,
		CheckinDate: mustDate(t, "2024-01-02T03:04:05Z"),
	}, items[0])
	assert.Equal(t, Item{
		ServerItem:    "$/Proj/main.go",
		ItemID:        101,
		ItemType:      ItemTypeFile,
		Encoding:      65001,
		ChangesetID:   42,
		CheckinDate:   mustDate(t, "2024-02-03T04:05:06.5Z"),
		ContentLength: 512,
		HashValue:     []byte{0xde, 0xad, 0xbe, 0xef},
	}, items[1])
}

func TestService_QueryItems_WithoutWorkspace(t *testing.T) {
	service, transport := newTestService(t, respond("QueryItems", `<QueryItemsResult/>`))

	items, err := service.QueryItems(context.Background(), QueryItemsOptions{
		Items:   []ItemSpec{{Item: "$/Proj"}},
		Version: ChangesetVersion{ID: 42},
	})
	require.NoError(t, err)
	assert.Empty(t, items)

	msg := transport.message
	assert.Nil(t, msg.Child(vname("workspaceName")))
	assert.Nil(t, msg.Child(vname("workspaceOwner")))
	assert.NotContains(t, msg.String(), "workspaceName")
	assert.NotContains(t, msg.String(), "workspaceOwner")
	assert.Equal(t, "NonDeleted", childText(msg, "deletedState"), "default deleted state")
	assert.Equal(t, "Any", childText(msg, "itemType"), "default item type")
}

func TestService_QueryItems_InvalidArguments(t *testing.T) {
	service, transport := newTestService(t, "")

	_, err := service.QueryItems(context.Background(), QueryItemsOptions{Version: LatestVersion{}})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = service.QueryItems(context.Background(), QueryItemsOptions{Items: []ItemSpec{{Item: "$/Proj"}}})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	assert.Zero(t, transport.calls)
}

func TestService_QueryItems_MalformedItem(t *testing.T) {
	service, _ := newTestService(t, respond("QueryItems", `
<QueryItemsResult><ItemSet><Items>
  <Item item="$/Proj/a" itemid="1"/>
  <Item itemid="2"/>
</Items></ItemSet></QueryItemsResult>`))

	items, err := service.QueryItems(context.Background(), QueryItemsOptions{
		Items:   []ItemSpec{{Item: "$/Proj"}},
		Version: LatestVersion{},
	})
	assert.True(t, soap.IsMalformed(err))
	assert.Nil(t, items, "no partial result")
}

func TestService_QueryItemsExtended(t *testing.T) {
	service, transport := newTestService(t, respond("QueryItemsExtended", `
<QueryItemsExtendedResult>
  <ArrayOfExtendedItem>
    <ExtendedItem lver="40" latest="42" type="File" itemid="7" local="/src/a.txt" titem="$/Proj/a.txt" chg="Edit"/>
  </ArrayOfExtendedItem>
</QueryItemsExtendedResult>`))

	items, err := service.QueryItemsExtended(context.Background(), QueryItemsExtendedOptions{
		Items:        []ItemSpec{{Item: "/src/a.txt"}},
		DeletedState: DeletedStateAny,
		ItemType:     ItemTypeFile,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"items", "deletedState", "itemType"}, childNames(transport.message))
	require.Len(t, items, 1)
	assert.Equal(t, "$/Proj/a.txt", items[0].TargetServerItem)
	assert.True(t, items[0].HasPendingChange())
	assert.True(t, items[0].IsOutOfDate())
}

func TestService_Get(t *testing.T) {
	service, transport := newTestService(t, respond("Get", `
<GetResult>
  <ArrayOfGetOperation>
    <GetOperation type="File" itemid="10" tlocal="/src/a.txt" titem="$/Proj/a.txt" sver="42" il="true"/>
    <GetOperation type="File" itemid="11" slocal="/src/b.txt" sver="42"/>
  </ArrayOfGetOperation>
</GetResult>`))

	operations, err := service.Get(context.Background(), GetOptions{
		Workspace: testWorkspace,
		Requests:  []GetRequest{{Item: &ItemSpec{Item: "$/Proj", Recursion: RecursionFull}, Version: LatestVersion{}}},
	})
	require.NoError(t, err)

	msg := transport.message
	assert.Equal(t, []string{"workspaceName", "ownerName", "requests"}, childNames(msg), "force and noGet are omitted when false")
	requests := msg.Find(vname("requests"), vname("GetRequest"))
	require.Len(t, requests, 1)
	assert.NotNil(t, requests[0].Child(vname("ItemSpec")))
	assert.NotNil(t, requests[0].Child(vname("VersionSpec")))

	require.Len(t, operations, 2)
	assert.Equal(t, 10, operations[0].ItemID)
	assert.True(t, operations[0].IsNew())
	assert.True(t, operations[0].IsLatest)
	assert.True(t, operations[1].IsDelete())
	assert.Equal(t, LocalVersionUpdate{ItemID: 10, TargetLocalItem: "/src/a.txt", LocalVersion: 42}, LocalVersionUpdateFor(operations[0]))
}

func TestService_Get_ForceAndNoGet(t *testing.T) {
	service, transport := newTestService(t, respond("Get", `<GetResult/>`))

	operations, err := service.Get(context.Background(), GetOptions{
		Workspace: testWorkspace,
		Requests:  []GetRequest{{Version: ChangesetVersion{ID: 3}}},
		Force:     true,
		NoGet:     true,
	})
	require.NoError(t, err)
	assert.Empty(t, operations)

	msg := transport.message
	assert.Equal(t, []string{"workspaceName", "ownerName", "requests", "force", "noGet"}, childNames(msg))
	assert.Equal(t, "true", childText(msg, "force"))
	assert.Equal(t, "true", childText(msg, "noGet"))
}

func TestService_Get_RequiresWorkspace(t *testing.T) {
	service, transport := newTestService(t, "")

	operations, err := service.Get(context.Background(), GetOptions{
		Requests: []GetRequest{{Version: LatestVersion{}}},
	})
	assert.ErrorIs(t, err, ErrInvalidArgument)
	assert.Nil(t, operations)
	assert.Zero(t, transport.calls)

	_, err = service.Get(context.Background(), GetOptions{Workspace: testWorkspace, Requests: []GetRequest{{}}})
	assert.ErrorIs(t, err, ErrInvalidArgument)
	assert.Zero(t, transport.calls)
}

func TestService_PendChanges(t *testing.T) {
	service, transport := newTestService(t, respond("PendChanges", `
<PendChangesResult>
  <GetOperation type="File" itemid="0" tlocal="/src/file.txt" titem="$/Proj/file.txt" chg="Add" pcid="5"/>
</PendChangesResult>`))

	operations, failures, err := service.PendChanges(context.Background(), testWorkspace, []ChangeRequest{
		{Item: ItemSpec{Item: "$/Proj/file.txt"}, Operation: AddChange{}, ItemType: ItemTypeFile},
	})
	require.NoError(t, err)
	assert.Empty(t, failures)

	msg := transport.message
	assert.Equal(t, []string{"workspaceName", "ownerName", "changes"}, childNames(msg))
	requests := msg.Find(vname("changes"), vname("ChangeRequest"))
	require.Len(t, requests, 1)
	req, _ := requests[0].Attr("req")
	assert.Equal(t, "Add", req)
	path, _ := requests[0].Child(vname("item")).Attr("item")
	assert.Equal(t, "$/Proj/file.txt", path)

	require.Len(t, operations, 1)
	assert.Equal(t, ChangeAdd, operations[0].ChangeType)
	assert.Equal(t, []ChangeType{ChangeAdd}, operations[0].ChangeType.Flags())
}

func TestService_PendChanges_ReturnsFailures(t *testing.T) {
	service, _ := newTestService(t, respond("PendChanges", `
<PendChangesResult/>
<failures>
  <Failure code="ItemNotFoundException" sev="Error" item="$/Proj/missing.txt">
    <Message>TF10169: Unsupported pending change attempted on $/Proj/missing.txt.</Message>
  </Failure>
</failures>`))

	operations, failures, err := service.PendChanges(context.Background(), testWorkspace, []ChangeRequest{
		{Item: ItemSpec{Item: "$/Proj/missing.txt"}, Operation: EditChange{}},
	})
	require.NoError(t, err, "failures are data, not errors")
	assert.Empty(t, operations)
	require.Len(t, failures, 1)
	assert.Equal(t, "ItemNotFoundException", failures[0].Code)
	assert.Equal(t, SeverityError, failures[0].Severity)
	assert.Contains(t, failures[0].Message, "TF10169")
}

func TestService_PendChanges_InvalidArguments(t *testing.T) {
	service, transport := newTestService(t, "")
	ctx := context.Background()

	_, _, err := service.PendChanges(ctx, nil, []ChangeRequest{{Item: ItemSpec{Item: "$/a"}, Operation: AddChange{}}})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, _, err = service.PendChanges(ctx, testWorkspace, nil)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, _, err = service.PendChanges(ctx, testWorkspace, []ChangeRequest{{Item: ItemSpec{Item: "$/a"}}})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	assert.Zero(t, transport.calls)
}

func TestService_UndoPendChanges(t *testing.T) {
	service, transport := newTestService(t, respond("UndoPendingChanges", `
<UndoPendingChangesResult>
  <GetOperation type="File" itemid="3" slocal="/src/new.txt" chg="Add"/>
</UndoPendingChangesResult>`))

	operations, failures, err := service.UndoPendChanges(context.Background(), testWorkspace, []ItemSpec{{Item: "$/Proj/new.txt"}})
	require.NoError(t, err)
	assert.Empty(t, failures)

	assert.Equal(t, Namespace+"/UndoPendingChanges", transport.action)
	assert.Equal(t, vname("UndoPendingChanges"), transport.message.Name)
	assert.Equal(t, []string{"workspaceName", "ownerName", "items"}, childNames(transport.message))
	require.Len(t, operations, 1)
	assert.True(t, operations[0].IsDelete())
}

func TestService_QueryPendingSets(t *testing.T) {
	service, transport := newTestService(t, respond("QueryPendingSets", `
<QueryPendingSetsResult>
  <PendingSet computer="DEVBOX" owner="alice" name="W1" signature="3f2504e0-4f89-11d3-9a0c-0305e82c3301">
    <PendingChanges>
      <PendingChange chg="Edit" ver="41" item="$/Proj/a.txt" itemid="7" type="File"/>
    </PendingChanges>
  </PendingSet>
</QueryPendingSetsResult>`))

	sets, err := service.QueryPendingSets(context.Background(), QueryPendingSetsOptions{
		LocalWorkspaceName:  "W1",
		LocalWorkspaceOwner: "alice",
		Items:               []ItemSpec{{Item: "$/Proj", Recursion: RecursionFull}},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"localWorkspaceName", "localWorkspaceOwner", "itemSpecs", "generateDownloadUrls"}, childNames(transport.message))
	require.Len(t, sets, 1)
	assert.Equal(t, "DEVBOX", sets[0].Computer)
	assert.Equal(t, "3f2504e0-4f89-11d3-9a0c-0305e82c3301", sets[0].Signature.String())
	require.Len(t, sets[0].PendingChanges, 1)
	assert.Equal(t, ChangeEdit, sets[0].PendingChanges[0].ChangeType)
	assert.Equal(t, 41, sets[0].PendingChanges[0].Version)
}

func TestService_QueryPendingChangesForWorkspace(t *testing.T) {
	service, transport := newTestService(t, respond("QueryPendingChangesForWorkspace", `
<QueryPendingChangesForWorkspaceResult>
  <PendingChange chg="Rename, Edit" item="$/Proj/new.txt" srcitem="$/Proj/old.txt" local="/src/new.txt" itemid="9"/>
  <PendingChange chg="Add" item="$/Proj/added.txt" itemid="0"/>
</QueryPendingChangesForWorkspaceResult>`))

	changes, err := service.QueryPendingChangesForWorkspace(context.Background(), testWorkspace, []ItemSpec{{Item: "$/Proj", Recursion: RecursionFull}}, true)
	require.NoError(t, err)

	msg := transport.message
	assert.Equal(t, []string{"workspaceName", "workspaceOwner", "itemSpecs", "generateDownloadUrls"}, childNames(msg))
	assert.Equal(t, "true", childText(msg, "generateDownloadUrls"))

	require.Len(t, changes, 2)
	assert.True(t, changes[0].IsRename())
	assert.Equal(t, ChangeEdit|ChangeRename, changes[0].ChangeType)
	assert.Equal(t, "$/Proj/old.txt", changes[0].SourceServerItem)
	assert.Equal(t, "$/Proj/added.txt", changes[1].ServerItem)
}

func TestService_QueryWorkspace(t *testing.T) {
	service, transport := newTestService(t, respond("QueryWorkspace", `
<QueryWorkspaceResult computer="DEVBOX" name="W1" owner="alice">
  <Comment>primary</Comment>
  <Folders>
    <WorkingFolder local="/src" item="$/Proj"/>
    <WorkingFolder item="$/Proj/bin" type="Cloak"/>
  </Folders>
</QueryWorkspaceResult>`))

	workspace, err := service.QueryWorkspace(context.Background(), "W1", "alice")
	require.NoError(t, err)

	assert.Equal(t, []string{"workspaceName", "ownerName"}, childNames(transport.message))
	assert.Equal(t, &Workspace{
		Name:     "W1",
		Owner:    "alice",
		Computer: "DEVBOX",
		Comment:  "primary",
		Folders: []WorkingFolder{
			{ServerItem: "$/Proj", LocalItem: "/src"},
			{ServerItem: "$/Proj/bin", Type: WorkingFolderCloak},
		},
	}, workspace)
}

func TestService_QueryWorkspace_Fault(t *testing.T) {
	service, transport := newTestService(t, "")
	transport.envelope = soap.NewFaultEnvelope("Receiver",
		"Microsoft.TeamFoundation.VersionControl.Server.WorkspaceNotFoundException",
		"TF14061: The workspace W1;alice does not exist.")

	workspace, err := service.QueryWorkspace(context.Background(), "W1", "alice")
	assert.Nil(t, workspace)

	fault, ok := soap.IsFault(err)
	require.True(t, ok, "error: %v", err)
	assert.Equal(t, "WorkspaceNotFound", fault.Code)
	assert.Equal(t, "QueryWorkspace", fault.Operation)
	assert.True(t, fault.IsNotFound())
}

func TestService_QueryWorkspace_MissingResult(t *testing.T) {
	service, _ := newTestService(t, respond("QueryWorkspace", ""))

	workspace, err := service.QueryWorkspace(context.Background(), "W1", "alice")
	assert.Nil(t, workspace)
	assert.True(t, soap.IsMalformed(err))
}

func TestService_CommunicationFailure(t *testing.T) {
	service, transport := newTestService(t, "")
	cause := errors.New("connection reset by peer")
	transport.err = cause

	_, err := service.QueryWorkspaces(context.Background(), "alice", "")
	assert.True(t, soap.IsCommunicationError(err))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, 1, transport.calls, "no retry")
}

func TestService_QueryWorkspaces_Sorted(t *testing.T) {
	entries := []string{
		`<Workspace name="zeta" owner="alice"/>`,
		`<Workspace name="Alpha" owner="alice"/>`,
		`<Workspace name="beta" owner="bob" computer="B"/>`,
		`<Workspace name="beta" owner="alice" computer="A"/>`,
	}
	want := []string{"Alpha/alice", "beta/alice", "beta/bob", "zeta/alice"}

	for _, perm := range permutations(len(entries)) {
		body := ""
		for _, i := range perm {
			body += entries[i]
		}

		service, transport := newTestService(t, respond("QueryWorkspaces", `<QueryWorkspacesResult>`+body+`</QueryWorkspacesResult>`))
		workspaces, err := service.QueryWorkspaces(context.Background(), "", "")
		require.NoError(t, err)
		assert.Empty(t, transport.message.Children, "empty filters are omitted")

		var got []string
		for _, w := range workspaces {
			got = append(got, w.Name+"/"+w.Owner)
		}
		assert.Equal(t, want, got, "permutation %v", perm)
	}
}

func TestService_UsesInvokerNamespace(t *testing.T) {
	const otherNS = "urn:tfs:other"
	transport := &capturingTransport{
		t:        t,
		response: `<QueryWorkspacesResponse xmlns="` + otherNS + `"><QueryWorkspacesResult><Workspace name="W1" owner="alice"/></QueryWorkspacesResult></QueryWorkspacesResponse>`,
	}
	service := NewService(soap.NewInvoker(transport, otherNS, soap.WithInvokerLogger(zerolog.Nop())))

	workspaces, err := service.QueryWorkspaces(context.Background(), "alice", "")
	require.NoError(t, err)
	require.Len(t, workspaces, 1)
	assert.Equal(t, "W1", workspaces[0].Name)

	assert.Equal(t, otherNS+"/QueryWorkspaces", transport.action)
	require.Len(t, transport.message.Children, 1)
	assert.Equal(t, otherNS, transport.message.Children[0].Name.Space)
}

func TestService_QueryWorkspaces_Filters(t *testing.T) {
	service, transport := newTestService(t, respond("QueryWorkspaces", `<QueryWorkspacesResult/>`))

	workspaces, err := service.QueryWorkspaces(context.Background(), "alice", "DEVBOX")
	require.NoError(t, err)
	assert.Empty(t, workspaces)
	assert.Equal(t, []string{"ownerName", "computer"}, childNames(transport.message))
}

func TestService_CreateAndUpdateWorkspace(t *testing.T) {
	draft := Workspace{
		Name:     "W2",
		Owner:    "alice",
		Computer: "DEVBOX",
		Folders:  []WorkingFolder{{ServerItem: "$/Proj", LocalItem: "/src", Type: WorkingFolderMap}},
	}

	service, transport := newTestService(t, respond("CreateWorkspace",
		`<CreateWorkspaceResult name="W2" owner="alice" computer="DEVBOX"><Folders><WorkingFolder item="$/Proj" local="/src" type="Map"/></Folders></CreateWorkspaceResult>`))
	created, err := service.CreateWorkspace(context.Background(), draft)
	require.NoError(t, err)
	assert.Equal(t, &draft, created)

	sent, err := WorkspaceFromXML(transport.message.Child(vname("workspace")))
	require.NoError(t, err)
	assert.Equal(t, draft, sent)

	renamed := draft
	renamed.Name = "W3"
	service, transport = newTestService(t, respond("UpdateWorkspace",
		`<UpdateWorkspaceResult name="W3" owner="alice" computer="DEVBOX"/>`))
	updated, err := service.UpdateWorkspace(context.Background(), "W2", "alice", renamed)
	require.NoError(t, err)
	assert.Equal(t, "W3", updated.Name)
	assert.Equal(t, []string{"oldWorkspaceName", "ownerName", "newWorkspace"}, childNames(transport.message))
	assert.Equal(t, "W2", childText(transport.message, "oldWorkspaceName"))

	_, err = service.CreateWorkspace(context.Background(), Workspace{Owner: "alice"})
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestService_DeleteWorkspace(t *testing.T) {
	service, transport := newTestService(t, respond("DeleteWorkspace", ""))

	err := service.DeleteWorkspace(context.Background(), "W1", "alice")
	require.NoError(t, err)

	msg := transport.message
	assert.Equal(t, vname("DeleteWorkspace"), msg.Name)
	require.Len(t, msg.Children, 2)
	for i, local := range []string{"workspaceName", "ownerName"} {
		assert.Equal(t, local, msg.Children[i].Name.Local)
		assert.Empty(t, msg.Children[i].Name.Space, "%s must be unnamespaced", local)
	}
	assert.Equal(t, "W1", msg.Children[0].Text)
	assert.Equal(t, "alice", msg.Children[1].Text)
	assert.Contains(t, msg.String(), `<workspaceName xmlns="">W1</workspaceName><ownerName xmlns="">alice</ownerName>`)
}

func TestService_QueryHistory(t *testing.T) {
	service, transport := newTestService(t, respond("QueryHistory", `
<QueryHistoryResult>
  <Changeset cmtr="alice" date="2024-02-01T10:00:00Z" cset="42" owner="alice"><Comment>second</Comment></Changeset>
  <Changeset cmtr="bob" date="2024-01-01T10:00:00Z" cset="41" owner="bob"><Comment>first</Comment></Changeset>
</QueryHistoryResult>`))

	changesets, err := service.QueryHistory(context.Background(), QueryHistoryOptions{
		Item:        ItemSpec{Item: "$/Proj", Recursion: RecursionFull},
		VersionItem: LatestVersion{},
	})
	require.NoError(t, err)

	msg := transport.message
	assert.Equal(t, []string{"itemSpec", "versionItem", "maxCount", "includeFiles", "generateDownloadUrls", "slotMode", "sortAscending"}, childNames(msg))
	assert.Equal(t, "32767", childText(msg, "maxCount"))
	for _, flag := range []string{"includeFiles", "generateDownloadUrls", "slotMode", "sortAscending"} {
		assert.Equal(t, "false", childText(msg, flag), flag)
	}

	require.Len(t, changesets, 2)
	assert.Equal(t, 42, changesets[0].ID)
	assert.Equal(t, "second", changesets[0].Comment)
	assert.Empty(t, changesets[0].Changes)
	assert.Equal(t, "bob", changesets[1].Owner)
}

func TestService_QueryHistory_Range(t *testing.T) {
	service, transport := newTestService(t, respond("QueryHistory", `<QueryHistoryResult/>`))

	_, err := service.QueryHistory(context.Background(), QueryHistoryOptions{
		Item:        ItemSpec{Item: "$/Proj"},
		VersionItem: LatestVersion{},
		From:        ChangesetVersion{ID: 10},
		To:          ChangesetVersion{ID: 20},
		MaxCount:    5,
	})
	require.NoError(t, err)

	msg := transport.message
	assert.Equal(t, []string{"itemSpec", "versionItem", "versionFrom", "versionTo", "maxCount", "includeFiles", "generateDownloadUrls", "slotMode", "sortAscending"}, childNames(msg))
	assert.Equal(t, "5", childText(msg, "maxCount"))
	from, _ := msg.Child(vname("versionFrom")).Attr("cs")
	assert.Equal(t, "10", from)

	_, err = service.QueryHistory(context.Background(), QueryHistoryOptions{Item: ItemSpec{Item: "$/Proj"}})
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestService_QueryChangeset(t *testing.T) {
	service, transport := newTestService(t, respond("QueryChangeset", `
<QueryChangesetResult cmtr="alice" date="2024-02-01T10:00:00Z" cset="42" owner="alice">
  <Comment>Fix build</Comment>
  <Changes>
    <Change type="Edit"><Item type="File" itemid="7" item="$/Proj/a.txt" cs="42"/></Change>
    <Change type="Rename, Edit"><Item type="File" itemid="8" item="$/Proj/c.txt" cs="42"/></Change>
  </Changes>
</QueryChangesetResult>`))

	changeset, err := service.QueryChangeset(context.Background(), QueryChangesetOptions{ID: 42, IncludeChanges: true})
	require.NoError(t, err)

	msg := transport.message
	assert.Equal(t, []string{"changesetId", "includeChanges", "generateDownloadUrls", "includeSourceRenames"}, childNames(msg))
	assert.Equal(t, "42", childText(msg, "changesetId"))
	assert.Equal(t, "true", childText(msg, "includeChanges"))
	assert.Equal(t, "false", childText(msg, "generateDownloadUrls"))
	assert.Equal(t, "true", childText(msg, "includeSourceRenames"), "renames are included by default")

	assert.Equal(t, 42, changeset.ID)
	assert.Equal(t, "Fix build", changeset.Comment)
	require.Len(t, changeset.Changes, 2)
	assert.Equal(t, ChangeEdit, changeset.Changes[0].ChangeType)
	assert.Equal(t, "$/Proj/c.txt", changeset.Changes[1].Item.ServerItem)
	assert.Equal(t, ChangeRename|ChangeEdit, changeset.Changes[1].ChangeType)

	_, err = service.QueryChangeset(context.Background(), QueryChangesetOptions{ID: 42, ExcludeSourceRenames: true})
	require.NoError(t, err)
	assert.Equal(t, "false", childText(transport.message, "includeSourceRenames"))

	_, err = service.QueryChangeset(context.Background(), QueryChangesetOptions{})
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestService_UpdateLocalVersion(t *testing.T) {
	service, transport := newTestService(t, respond("UpdateLocalVersion", ""))

	err := service.UpdateLocalVersion(context.Background(), testWorkspace, nil)
	require.NoError(t, err)
	assert.Zero(t, transport.calls)

	err = service.UpdateLocalVersion(context.Background(), testWorkspace, []LocalVersionUpdate{
		{ItemID: 10, TargetLocalItem: "/src/a.txt", LocalVersion: 42},
		{ItemID: 11, LocalVersion: 42},
	})
	require.NoError(t, err)

	msg := transport.message
	assert.Equal(t, []string{"workspaceName", "ownerName", "updates"}, childNames(msg))
	updates := msg.Find(vname("updates"), vname("LocalVersionUpdate"))
	require.Len(t, updates, 2)
	_, hasLocal := updates[1].Attr("tlocal")
	assert.False(t, hasLocal)
}

func TestRepositoryURL(t *testing.T) {
	got, err := RepositoryURL("https://tfs.example.com:8080/tfs/DefaultCollection/")
	require.NoError(t, err)
	assert.Equal(t, "https://tfs.example.com:8080/tfs/DefaultCollection/VersionControl/v1.0/repository.asmx", got)

	for _, bad := range []string{"", "tfs.example.com", "ftp://tfs.example.com", "http://"} {
		_, err := RepositoryURL(bad)
		assert.ErrorIs(t, err, ErrInvalidArgument, bad)
	}
}

func permutations(n int) [][]int {
	if n == 0 {
		return [][]int{{}}
	}
	var out [][]int
	for _, perm := range permutations(n - 1) {
		for i := 0; i <= len(perm); i++ {
			next := make([]int, 0, n)
			next = append(next, perm[:i]...)
			next = append(next, n-1)
			next = append(next, perm[i:]...)
			out = append(out, next)
		}
	}
	return out
}

func mustDate(t *testing.T, value string) time.Time {
	t.Helper()
	d, err := parseDate(value)
	require.NoError(t, err)
	return d
}
