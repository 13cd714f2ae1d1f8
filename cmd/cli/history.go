package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/flowbaker/tfvc/pkg/versioncontrol"
	"github.com/spf13/cobra"
)

type historyOptions struct {
	recursive bool
	version   string
	from      string
	to        string
	maxCount  int
}

func NewHistoryCommand(opts *rootOptions) *cobra.Command {
	historyOpts := &historyOptions{}

	cmd := &cobra.Command{
		Use:   "history SERVER_PATH",
		Short: "Show the changesets that touched an item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(cmd.Context(), cmd.OutOrStdout(), opts, historyOpts, args[0])
		},
	}

	cmd.Flags().BoolVarP(&historyOpts.recursive, "recursive", "R", false, "Include changes below the path")
	cmd.Flags().StringVarP(&historyOpts.version, "version", "v", "T", "Version at which the path is resolved")
	cmd.Flags().StringVar(&historyOpts.from, "from", "", "Oldest version of the range")
	cmd.Flags().StringVar(&historyOpts.to, "to", "", "Newest version of the range")
	cmd.Flags().IntVarP(&historyOpts.maxCount, "max", "n", 0, "Maximum number of changesets")

	return cmd
}

func parseOptionalVersion(s string) (versioncontrol.VersionSpec, error) {
	if s == "" {
		return nil, nil
	}
	return versioncontrol.ParseVersionSpec(s)
}

func runHistory(ctx context.Context, w io.Writer, opts *rootOptions, historyOpts *historyOptions, path string) error {
	versionItem, err := versioncontrol.ParseVersionSpec(historyOpts.version)
	if err != nil {
		return err
	}
	from, err := parseOptionalVersion(historyOpts.from)
	if err != nil {
		return err
	}
	to, err := parseOptionalVersion(historyOpts.to)
	if err != nil {
		return err
	}

	recursion := versioncontrol.RecursionNone
	if historyOpts.recursive {
		recursion = versioncontrol.RecursionFull
	}

	service, _, err := opts.newService()
	if err != nil {
		return err
	}

	changesets, err := service.QueryHistory(ctx, versioncontrol.QueryHistoryOptions{
		Item:        versioncontrol.ItemSpec{Item: path, Recursion: recursion},
		VersionItem: versionItem,
		From:        from,
		To:          to,
		MaxCount:    historyOpts.maxCount,
	})
	if err != nil {
		return fmt.Errorf("failed to query history: %w", err)
	}

	return opts.render(w, changesets, func(w io.Writer) error {
		fmt.Fprintln(w, "CHANGESET\tOWNER\tDATE\tCOMMENT\t")
		for _, changeset := range changesets {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t\n", changeset.ID, changeset.Owner, formatTime(changeset.CreationDate), firstLine(changeset.Comment))
		}
		return nil
	})
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return strings.TrimSpace(line)
}

func NewChangesetCommand(opts *rootOptions) *cobra.Command {
	var changes, downloadURLs bool

	cmd := &cobra.Command{
		Use:   "changeset ID",
		Short: "Show a changeset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(strings.TrimPrefix(strings.ToUpper(args[0]), "C"))
			if err != nil {
				return fmt.Errorf("invalid changeset id %q", args[0])
			}

			return runChangeset(cmd.Context(), cmd.OutOrStdout(), opts, versioncontrol.QueryChangesetOptions{
				ID:                  id,
				IncludeChanges:      changes,
				IncludeDownloadURLs: downloadURLs,
			})
		},
	}

	cmd.Flags().BoolVar(&changes, "changes", true, "Include the changed items")
	cmd.Flags().BoolVar(&downloadURLs, "download-urls", false, "Include download URLs")

	return cmd
}

func runChangeset(ctx context.Context, w io.Writer, opts *rootOptions, query versioncontrol.QueryChangesetOptions) error {
	service, _, err := opts.newService()
	if err != nil {
		return err
	}

	changeset, err := service.QueryChangeset(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to query changeset %d: %w", query.ID, err)
	}

	return opts.render(w, changeset, func(w io.Writer) error {
		fmt.Fprintf(w, "Changeset:\t%d\t\n", changeset.ID)
		fmt.Fprintf(w, "Owner:\t%s\t\n", changeset.Owner)
		if changeset.Committer != "" && changeset.Committer != changeset.Owner {
			fmt.Fprintf(w, "Committer:\t%s\t\n", changeset.Committer)
		}
		fmt.Fprintf(w, "Date:\t%s\t\n", formatTime(changeset.CreationDate))
		fmt.Fprintf(w, "Comment:\t%s\t\n", orDash(changeset.Comment))
		for _, change := range changeset.Changes {
			fmt.Fprintf(w, "  %s\t%s\t\n", change.ChangeType.Token(), change.Item.ServerItem)
		}
		return nil
	})
}
