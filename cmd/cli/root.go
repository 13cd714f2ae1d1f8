package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/flowbaker/tfvc/internal/config"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	debug      bool
	configPath string
	server     string
	output     string

	config *config.Manager
}

func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "tfvc",
		Short: "Team Foundation version control client",
		Long: `tfvc talks to the version control service of a Team Foundation Server collection.
It manages registered servers and queries workspaces, items, history and pending changes.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup()
		},
	}

	rootCmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Config file (default ~/.tfvc/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&opts.server, "server", "s", "", "Registered server to use (default: the configured default server)")
	rootCmd.PersistentFlags().StringVarP(&opts.output, "output", "o", outputText, "Output format: text or yaml")

	rootCmd.AddCommand(NewServersCommand(opts))
	rootCmd.AddCommand(NewWorkspacesCommand(opts))
	rootCmd.AddCommand(NewItemsCommand(opts))
	rootCmd.AddCommand(NewHistoryCommand(opts))
	rootCmd.AddCommand(NewChangesetCommand(opts))
	rootCmd.AddCommand(NewStatusCommand(opts))
	rootCmd.AddCommand(NewVersionCommand(opts))

	return rootCmd
}

func (o *rootOptions) setup() error {
	if o.output != outputText && o.output != outputYAML {
		return fmt.Errorf("unsupported output format %q", o.output)
	}

	manager, err := config.Load(o.configPath)
	if err != nil {
		return err
	}
	o.config = manager

	cfg, err := manager.Config()
	if err != nil {
		return err
	}

	level := zerolog.InfoLevel
	if o.debug {
		level = zerolog.DebugLevel
	} else if cfg.LogLevel != "" {
		parsed, err := zerolog.ParseLevel(cfg.LogLevel)
		if err != nil {
			log.Warn().Str("log_level", cfg.LogLevel).Msg("Unknown log level, using info")
		} else {
			level = parsed
		}
	}
	zerolog.SetGlobalLevel(level)

	return nil
}

// Execute runs the root command
func Execute() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := NewRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		cancel()
		os.Exit(1)
	}
}
