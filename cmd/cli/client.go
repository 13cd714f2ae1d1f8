package cli

import (
	"fmt"

	"github.com/flowbaker/tfvc/internal/config"
	"github.com/flowbaker/tfvc/pkg/soap"
	"github.com/flowbaker/tfvc/pkg/versioncontrol"
	"github.com/rs/zerolog/log"
)

// newService connects to the server selected by --server or the configured default
func (o *rootOptions) newService() (*versioncontrol.Service, config.Server, error) {
	server, err := o.config.Server(o.server)
	if err != nil {
		return nil, config.Server{}, fmt.Errorf("failed to select server: %w", err)
	}

	cfg, err := o.config.Config()
	if err != nil {
		return nil, config.Server{}, err
	}

	options := []soap.ClientOption{
		soap.WithLogger(log.Logger),
	}
	if cfg.Timeout > 0 {
		options = append(options, soap.WithTimeout(cfg.Timeout))
	}
	if server.Username != "" {
		options = append(options, soap.WithCredentials(server.Username, server.Password))
	}

	service, err := versioncontrol.NewClient(server.URL, options...)
	if err != nil {
		return nil, config.Server{}, fmt.Errorf("failed to create client for %s: %w", server.Name, err)
	}

	log.Debug().Str("server", server.Name).Str("url", server.URL).Msg("Using server")

	return service, server, nil
}

// workspace identifies a workspace by name, owned by owner or by the server user
func workspace(name, owner string, server config.Server) *versioncontrol.Workspace {
	if owner == "" {
		owner = server.Username
	}

	return &versioncontrol.Workspace{Name: name, Owner: owner}
}
