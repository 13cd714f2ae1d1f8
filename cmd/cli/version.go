package cli

import (
	"fmt"
	"io"

	"github.com/flowbaker/tfvc/internal/version"
	"github.com/spf13/cobra"
)

func NewVersionCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := version.Get()
			return opts.render(cmd.OutOrStdout(), info, func(w io.Writer) error {
				_, err := fmt.Fprintln(w, info.String())
				return err
			})
		},
	}

	return cmd
}
