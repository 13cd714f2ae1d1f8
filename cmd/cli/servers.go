package cli

import (
	"fmt"
	"io"

	"github.com/flowbaker/tfvc/internal/config"
	"github.com/spf13/cobra"
)

func NewServersCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "servers",
		Short: "Manage registered servers",
		Long:  `Register, list and remove Team Foundation Server collections.`,
	}

	cmd.AddCommand(NewServersAddCommand(opts))
	cmd.AddCommand(NewServersListCommand(opts))
	cmd.AddCommand(NewServersRemoveCommand(opts))
	cmd.AddCommand(NewServersDefaultCommand(opts))

	return cmd
}

func NewServersAddCommand(opts *rootOptions) *cobra.Command {
	var server config.Server
	var makeDefault bool

	cmd := &cobra.Command{
		Use:   "add NAME URL",
		Short: "Register a server",
		Long: `Register a server under NAME. URL is the collection URL, for example
https://tfs.example.com:8080/tfs/DefaultCollection.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			server.Name = args[0]
			server.URL = args[1]
			return runServersAdd(cmd.OutOrStdout(), opts, server, makeDefault)
		},
	}

	cmd.Flags().StringVarP(&server.Username, "username", "u", "", "User name for the server")
	cmd.Flags().StringVarP(&server.Password, "password", "p", "", "Password or personal access token")
	cmd.Flags().BoolVar(&makeDefault, "default", false, "Make this the default server")

	return cmd
}

func runServersAdd(w io.Writer, opts *rootOptions, server config.Server, makeDefault bool) error {
	if err := opts.config.AddServer(server); err != nil {
		return err
	}
	if makeDefault {
		if err := opts.config.SetDefaultServer(server.Name); err != nil {
			return err
		}
	}
	if err := opts.config.Save(); err != nil {
		return err
	}

	fmt.Fprintf(w, "✅ Server %s added\n", server.Name)
	return nil
}

func NewServersListCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List registered servers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServersList(cmd.OutOrStdout(), opts)
		},
	}

	return cmd
}

func runServersList(w io.Writer, opts *rootOptions) error {
	cfg, err := opts.config.Config()
	if err != nil {
		return err
	}

	return opts.render(w, cfg.Servers, func(w io.Writer) error {
		if len(cfg.Servers) == 0 {
			fmt.Fprintln(w, "No servers registered")
			return nil
		}

		fmt.Fprintln(w, "NAME\tURL\tUSER\t")
		for _, server := range cfg.Servers {
			name := server.Name
			if name == cfg.DefaultServer {
				name += " *"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t\n", name, server.URL, orDash(server.Username))
		}
		return nil
	})
}

func NewServersRemoveCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remove NAME",
		Short: "Remove a registered server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.config.RemoveServer(args[0]); err != nil {
				return err
			}
			if err := opts.config.Save(); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✅ Server %s removed\n", args[0])
			return nil
		},
	}

	return cmd
}

func NewServersDefaultCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "default NAME",
		Short: "Set the default server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.config.SetDefaultServer(args[0]); err != nil {
				return err
			}
			return opts.config.Save()
		},
	}

	return cmd
}
