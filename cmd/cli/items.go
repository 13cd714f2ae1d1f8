package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/flowbaker/tfvc/pkg/versioncontrol"
	"github.com/spf13/cobra"
)

type itemsOptions struct {
	recursion string
	version   string
	deleted   string
	itemType  string
	workspace string
	owner     string
	extended  bool
	download  bool
}

func NewItemsCommand(opts *rootOptions) *cobra.Command {
	itemsOpts := &itemsOptions{}

	cmd := &cobra.Command{
		Use:   "items SERVER_PATH...",
		Short: "List items on the server",
		Long: `List the items under one or more server paths such as $/Project/Main.
Versions use tf syntax: T (latest), C123, D2024-01-31, Llabel@$/scope, Wname;owner.
With --extended the listing shows the workspace's local and latest versions.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runItems(cmd.Context(), cmd.OutOrStdout(), opts, itemsOpts, args)
		},
	}

	cmd.Flags().StringVarP(&itemsOpts.recursion, "recursion", "r", string(versioncontrol.RecursionOneLevel), "Recursion: None, OneLevel or Full")
	cmd.Flags().StringVarP(&itemsOpts.version, "version", "v", "T", "Version to list")
	cmd.Flags().StringVar(&itemsOpts.deleted, "deleted", string(versioncontrol.DeletedStateNonDeleted), "Deleted state: NonDeleted, Deleted or Any")
	cmd.Flags().StringVar(&itemsOpts.itemType, "type", string(versioncontrol.ItemTypeAny), "Item type: Any, Folder or File")
	cmd.Flags().StringVarP(&itemsOpts.workspace, "workspace", "w", "", "Workspace context")
	cmd.Flags().StringVar(&itemsOpts.owner, "owner", "", "Workspace owner (default: the server user)")
	cmd.Flags().BoolVar(&itemsOpts.extended, "extended", false, "Show workspace state of each item")
	cmd.Flags().BoolVar(&itemsOpts.download, "download-urls", false, "Include download URLs")

	return cmd
}

func runItems(ctx context.Context, w io.Writer, opts *rootOptions, itemsOpts *itemsOptions, paths []string) error {
	recursion, err := versioncontrol.ParseRecursionType(itemsOpts.recursion)
	if err != nil {
		return err
	}
	deleted, err := versioncontrol.ParseDeletedState(itemsOpts.deleted)
	if err != nil {
		return err
	}
	itemType, err := versioncontrol.ParseItemType(itemsOpts.itemType)
	if err != nil {
		return err
	}

	specs := make([]versioncontrol.ItemSpec, 0, len(paths))
	for _, path := range paths {
		specs = append(specs, versioncontrol.ItemSpec{Item: path, Recursion: recursion})
	}

	service, server, err := opts.newService()
	if err != nil {
		return err
	}

	var ws *versioncontrol.Workspace
	if itemsOpts.workspace != "" {
		ws = workspace(itemsOpts.workspace, itemsOpts.owner, server)
	}

	if itemsOpts.extended {
		items, err := service.QueryItemsExtended(ctx, versioncontrol.QueryItemsExtendedOptions{
			Workspace:    ws,
			Items:        specs,
			DeletedState: deleted,
			ItemType:     itemType,
		})
		if err != nil {
			return fmt.Errorf("failed to query items: %w", err)
		}

		return opts.render(w, items, func(w io.Writer) error {
			fmt.Fprintln(w, "ITEM\tLOCAL\tLATEST\tCHANGE\tLOCK\t")
			for _, item := range items {
				fmt.Fprintf(w, "%s\t%d\t%d\t%s\t%s\t\n", orDash(item.TargetServerItem), item.LocalVersion, item.LatestVersion, item.ChangeType, orDash(string(item.LockStatus)))
			}
			return nil
		})
	}

	version, err := versioncontrol.ParseVersionSpec(itemsOpts.version)
	if err != nil {
		return err
	}

	items, err := service.QueryItems(ctx, versioncontrol.QueryItemsOptions{
		Workspace:           ws,
		Items:               specs,
		Version:             version,
		DeletedState:        deleted,
		ItemType:            itemType,
		IncludeDownloadInfo: itemsOpts.download,
	})
	if err != nil {
		return fmt.Errorf("failed to query items: %w", err)
	}

	return opts.render(w, items, func(w io.Writer) error {
		fmt.Fprintln(w, "ITEM\tTYPE\tCHANGESET\tDATE\tSIZE\t")
		for _, item := range items {
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%d\t\n", item.ServerItem, item.ItemType, item.ChangesetID, formatTime(item.CheckinDate), item.ContentLength)
		}
		return nil
	})
}
