package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

var (
	ErrServerNotFound = errors.New("server not found")
	ErrServerExists   = errors.New("server already registered")
	ErrNoServer       = errors.New("no server selected")
)

// Server is a registered Team Foundation Server collection
type Server struct {
	Name     string `mapstructure:"name" yaml:"name"`
	URL      string `mapstructure:"url" yaml:"url"`
	Username string `mapstructure:"username" yaml:"username,omitempty"`
	Password string `mapstructure:"password" yaml:"-"`
}

type Config struct {
	Servers       []Server      `mapstructure:"servers"`
	DefaultServer string        `mapstructure:"default_server"`
	Timeout       time.Duration `mapstructure:"timeout"`
	LogLevel      string        `mapstructure:"log_level"`

	// Username and Password apply to servers that carry no credentials of their own
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

type Manager struct {
	viper *viper.Viper
	path  string
}

// DefaultPath is ~/.tfvc/config.yaml
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	return filepath.Join(homeDir, ".tfvc", "config.yaml"), nil
}

// Load reads the config file at path, or ~/.tfvc/config.yaml when path is empty. A missing
// file is not an error.
func Load(path string) (*Manager, error) {
	v := viper.New()

	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvPrefix("TFVC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	envMappings := map[string]string{
		"default_server": "TFVC_SERVER",
		"timeout":        "TFVC_TIMEOUT",
		"log_level":      "TFVC_LOG_LEVEL",
		"username":       "TFVC_USERNAME",
		"password":       "TFVC_PASSWORD",
	}

	for configKey, envVar := range envMappings {
		if err := v.BindEnv(configKey, envVar); err != nil {
			log.Warn().Err(err).Msgf("Failed to bind environment variable %s for %s", envVar, configKey)
		}
	}

	if path == "" {
		defaultPath, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = defaultPath
	}

	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		log.Debug().Str("path", path).Msg("Config file not found, using environment variables and defaults")
	} else {
		log.Debug().Msgf("Using config file: %s", v.ConfigFileUsed())
	}

	return &Manager{
		viper: v,
		path:  path,
	}, nil
}

// Path is where Save writes
func (m *Manager) Path() string {
	return m.path
}

func (m *Manager) Config() (Config, error) {
	var config Config
	if err := m.viper.Unmarshal(&config); err != nil {
		return Config{}, fmt.Errorf("unable to decode config: %w", err)
	}

	return config, nil
}

func (m *Manager) Servers() ([]Server, error) {
	config, err := m.Config()
	if err != nil {
		return nil, err
	}

	return config.Servers, nil
}

// Server returns the named server, or the default server when name is empty. Servers
// without credentials inherit the top-level username and password.
func (m *Manager) Server(name string) (Server, error) {
	config, err := m.Config()
	if err != nil {
		return Server{}, err
	}

	if name == "" {
		name = config.DefaultServer
	}
	if name == "" {
		if len(config.Servers) != 1 {
			return Server{}, ErrNoServer
		}
		name = config.Servers[0].Name
	}

	index := findServer(config.Servers, name)
	if index < 0 {
		return Server{}, fmt.Errorf("%w: %s", ErrServerNotFound, name)
	}

	server := config.Servers[index]
	if server.Username == "" {
		server.Username = config.Username
		server.Password = config.Password
	}

	return server, nil
}

// AddServer registers server. Names are unique ignoring case and the URL must be an absolute
// http or https URL.
func (m *Manager) AddServer(server Server) error {
	server.Name = strings.TrimSpace(server.Name)
	server.URL = strings.TrimSpace(server.URL)

	if err := ValidateServer(server); err != nil {
		return err
	}

	servers, err := m.Servers()
	if err != nil {
		return err
	}

	if findServer(servers, server.Name) >= 0 {
		return fmt.Errorf("%w: %s", ErrServerExists, server.Name)
	}

	m.setServers(append(servers, server))

	return nil
}

// RemoveServer unregisters name and clears it as the default
func (m *Manager) RemoveServer(name string) error {
	servers, err := m.Servers()
	if err != nil {
		return err
	}

	index := findServer(servers, name)
	if index < 0 {
		return fmt.Errorf("%w: %s", ErrServerNotFound, name)
	}

	m.setServers(slices.Delete(servers, index, index+1))

	if strings.EqualFold(m.viper.GetString("default_server"), name) {
		m.viper.Set("default_server", "")
	}

	return nil
}

// SetDefaultServer selects the server used when none is named
func (m *Manager) SetDefaultServer(name string) error {
	servers, err := m.Servers()
	if err != nil {
		return err
	}

	index := findServer(servers, name)
	if index < 0 {
		return fmt.Errorf("%w: %s", ErrServerNotFound, name)
	}

	m.viper.Set("default_server", servers[index].Name)

	return nil
}

func (m *Manager) Save() error {
	if err := os.MkdirAll(filepath.Dir(m.path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := m.viper.WriteConfigAs(m.path); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	if err := os.Chmod(m.path, 0600); err != nil {
		return fmt.Errorf("failed to restrict config file permissions: %w", err)
	}

	return nil
}

func ValidateServer(server Server) error {
	if server.Name == "" {
		return fmt.Errorf("server name is required")
	}
	if strings.ContainsAny(server.Name, " \t\r\n") {
		return fmt.Errorf("server name %q must not contain whitespace", server.Name)
	}
	if server.URL == "" {
		return fmt.Errorf("server url is required")
	}

	parsed, err := url.Parse(server.URL)
	if err != nil {
		return fmt.Errorf("invalid server url: %w", err)
	}
	if !parsed.IsAbs() || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return fmt.Errorf("server url %q must be an absolute http or https url", server.URL)
	}
	if parsed.Host == "" {
		return fmt.Errorf("server url %q has no host", server.URL)
	}

	return nil
}

// setServers stores servers as plain maps so that WriteConfigAs emits lowercase keys
func (m *Manager) setServers(servers []Server) {
	entries := make([]map[string]any, 0, len(servers))
	for _, server := range servers {
		entry := map[string]any{
			"name": server.Name,
			"url":  server.URL,
		}
		if server.Username != "" {
			entry["username"] = server.Username
		}
		if server.Password != "" {
			entry["password"] = server.Password
		}
		entries = append(entries, entry)
	}

	m.viper.Set("servers", entries)
}

func findServer(servers []Server, name string) int {
	return slices.IndexFunc(servers, func(server Server) bool {
		return strings.EqualFold(server.Name, name)
	})
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("timeout", "2m")
	v.SetDefault("log_level", "info")
	v.SetDefault("default_server", "")
}
