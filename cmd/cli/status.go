package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/flowbaker/tfvc/pkg/versioncontrol"
	"github.com/spf13/cobra"
)

func NewStatusCommand(opts *rootOptions) *cobra.Command {
	var owner string

	cmd := &cobra.Command{
		Use:   "status WORKSPACE [SERVER_PATH...]",
		Short: "Show the pending changes of a workspace",
		Long:  `Show the pending changes of a workspace under the given server paths, or under $/ when none are given.`,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(cmd.Context(), cmd.OutOrStdout(), opts, args[0], owner, args[1:])
		},
	}

	cmd.Flags().StringVar(&owner, "owner", "", "Workspace owner (default: the server user)")

	return cmd
}

func runStatus(ctx context.Context, w io.Writer, opts *rootOptions, name, owner string, paths []string) error {
	if len(paths) == 0 {
		paths = []string{"$/"}
	}

	specs := make([]versioncontrol.ItemSpec, 0, len(paths))
	for _, path := range paths {
		specs = append(specs, versioncontrol.ItemSpec{Item: path, Recursion: versioncontrol.RecursionFull})
	}

	service, server, err := opts.newService()
	if err != nil {
		return err
	}

	changes, err := service.QueryPendingChangesForWorkspace(ctx, workspace(name, owner, server), specs, false)
	if err != nil {
		return fmt.Errorf("failed to query pending changes: %w", err)
	}

	return opts.render(w, changes, func(w io.Writer) error {
		if len(changes) == 0 {
			fmt.Fprintln(w, "There are no pending changes.")
			return nil
		}

		fmt.Fprintln(w, "CHANGE\tITEM\tLOCAL\t")
		for _, change := range changes {
			item := change.ServerItem
			if change.IsRename() && change.SourceServerItem != "" {
				item = change.SourceServerItem + " -> " + item
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t\n", change.ChangeType.Token(), item, orDash(change.LocalItem))
		}
		fmt.Fprintf(w, "\n%d change(s)\n", len(changes))
		return nil
	})
}
