package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/flowbaker/tfvc/pkg/versioncontrol"
	"github.com/spf13/cobra"
)

func NewWorkspacesCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "workspaces",
		Short: "Manage workspaces",
		Long:  `List, show, create and delete workspaces on the selected server.`,
	}

	cmd.AddCommand(NewWorkspacesListCommand(opts))
	cmd.AddCommand(NewWorkspacesShowCommand(opts))
	cmd.AddCommand(NewWorkspacesCreateCommand(opts))
	cmd.AddCommand(NewWorkspacesDeleteCommand(opts))

	return cmd
}

func NewWorkspacesListCommand(opts *rootOptions) *cobra.Command {
	var owner, computer string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List workspaces",
		Long:  `List workspaces, optionally filtered by owner and computer. An empty filter matches every value.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWorkspacesList(cmd.Context(), cmd.OutOrStdout(), opts, owner, computer)
		},
	}

	cmd.Flags().StringVar(&owner, "owner", "", "Only workspaces of this owner")
	cmd.Flags().StringVar(&computer, "computer", "", "Only workspaces on this computer")

	return cmd
}

func runWorkspacesList(ctx context.Context, w io.Writer, opts *rootOptions, owner, computer string) error {
	service, _, err := opts.newService()
	if err != nil {
		return err
	}

	workspaces, err := service.QueryWorkspaces(ctx, owner, computer)
	if err != nil {
		return fmt.Errorf("failed to query workspaces: %w", err)
	}

	return opts.render(w, workspaces, func(w io.Writer) error {
		if len(workspaces) == 0 {
			fmt.Fprintln(w, "No workspaces found")
			return nil
		}

		fmt.Fprintln(w, "NAME\tOWNER\tCOMPUTER\tCOMMENT\t")
		for _, ws := range workspaces {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t\n", ws.Name, ws.Owner, orDash(ws.Computer), orDash(ws.Comment))
		}
		return nil
	})
}

func NewWorkspacesShowCommand(opts *rootOptions) *cobra.Command {
	var owner string

	cmd := &cobra.Command{
		Use:   "show NAME",
		Short: "Show a workspace and its working folders",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWorkspacesShow(cmd.Context(), cmd.OutOrStdout(), opts, args[0], owner)
		},
	}

	cmd.Flags().StringVar(&owner, "owner", "", "Workspace owner (default: the server user)")

	return cmd
}

func runWorkspacesShow(ctx context.Context, w io.Writer, opts *rootOptions, name, owner string) error {
	service, server, err := opts.newService()
	if err != nil {
		return err
	}

	id := workspace(name, owner, server)
	ws, err := service.QueryWorkspace(ctx, id.Name, id.Owner)
	if err != nil {
		return fmt.Errorf("failed to query workspace %s: %w", name, err)
	}

	return opts.render(w, ws, func(w io.Writer) error {
		printWorkspace(w, ws)
		return nil
	})
}

func printWorkspace(w io.Writer, ws *versioncontrol.Workspace) {
	fmt.Fprintf(w, "Workspace:\t%s\t\n", ws.Name)
	fmt.Fprintf(w, "Owner:\t%s\t\n", ws.Owner)
	fmt.Fprintf(w, "Computer:\t%s\t\n", orDash(ws.Computer))
	fmt.Fprintf(w, "Comment:\t%s\t\n", orDash(ws.Comment))
	for _, folder := range ws.Folders {
		if folder.Type == versioncontrol.WorkingFolderCloak {
			fmt.Fprintf(w, "  (cloaked)\t%s\t\n", folder.ServerItem)
			continue
		}
		fmt.Fprintf(w, "  %s\t%s\t\n", folder.ServerItem, folder.LocalItem)
	}
}

func NewWorkspacesCreateCommand(opts *rootOptions) *cobra.Command {
	var ws versioncontrol.Workspace
	var mappings, cloaked []string

	cmd := &cobra.Command{
		Use:   "create NAME",
		Short: "Create a workspace",
		Long: `Create a workspace owned by the server user. Working folders are given as
--map $/Project/Main=/home/me/src/main and --cloak $/Project/Main/Binaries.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws.Name = args[0]

			folders, err := parseWorkingFolders(mappings, cloaked)
			if err != nil {
				return err
			}
			ws.Folders = folders

			return runWorkspacesCreate(cmd.Context(), cmd.OutOrStdout(), opts, ws)
		},
	}

	cmd.Flags().StringVar(&ws.Comment, "comment", "", "Workspace comment")
	cmd.Flags().StringVar(&ws.Computer, "computer", "", "Computer name (default: this host)")
	cmd.Flags().StringArrayVar(&mappings, "map", nil, "Map SERVER_PATH=LOCAL_PATH (repeatable)")
	cmd.Flags().StringArrayVar(&cloaked, "cloak", nil, "Cloak SERVER_PATH (repeatable)")

	return cmd
}

func parseWorkingFolders(mappings, cloaked []string) ([]versioncontrol.WorkingFolder, error) {
	var folders []versioncontrol.WorkingFolder

	for _, mapping := range mappings {
		serverItem, localItem, ok := strings.Cut(mapping, "=")
		if !ok || serverItem == "" || localItem == "" {
			return nil, fmt.Errorf("invalid mapping %q, expected SERVER_PATH=LOCAL_PATH", mapping)
		}
		folders = append(folders, versioncontrol.WorkingFolder{
			ServerItem: serverItem,
			LocalItem:  localItem,
			Type:       versioncontrol.WorkingFolderMap,
		})
	}

	for _, serverItem := range cloaked {
		folders = append(folders, versioncontrol.WorkingFolder{
			ServerItem: serverItem,
			Type:       versioncontrol.WorkingFolderCloak,
		})
	}

	return folders, nil
}

func runWorkspacesCreate(ctx context.Context, w io.Writer, opts *rootOptions, ws versioncontrol.Workspace) error {
	service, server, err := opts.newService()
	if err != nil {
		return err
	}

	ws.Owner = server.Username
	if ws.Computer == "" {
		hostname, err := os.Hostname()
		if err != nil {
			return fmt.Errorf("failed to get hostname: %w", err)
		}
		ws.Computer = hostname
	}

	created, err := service.CreateWorkspace(ctx, ws)
	if err != nil {
		return fmt.Errorf("failed to create workspace %s: %w", ws.Name, err)
	}

	return opts.render(w, created, func(w io.Writer) error {
		printWorkspace(w, created)
		return nil
	})
}

func NewWorkspacesDeleteCommand(opts *rootOptions) *cobra.Command {
	var owner string

	cmd := &cobra.Command{
		Use:   "delete NAME",
		Short: "Delete a workspace",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			service, server, err := opts.newService()
			if err != nil {
				return err
			}

			id := workspace(args[0], owner, server)
			if err := service.DeleteWorkspace(cmd.Context(), id.Name, id.Owner); err != nil {
				return fmt.Errorf("failed to delete workspace %s: %w", id.Name, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✅ Workspace %s deleted\n", id.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&owner, "owner", "", "Workspace owner (default: the server user)")

	return cmd
}
