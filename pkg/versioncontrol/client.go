package versioncontrol

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/flowbaker/tfvc/pkg/soap"
)

// NewClient creates a service talking to the repository endpoint of serverURL, the
// collection URL such as https://tfs.example.com:8080/tfs/DefaultCollection
func NewClient(serverURL string, options ...soap.ClientOption) (*Service, error) {
	endpoint, err := RepositoryURL(serverURL)
	if err != nil {
		return nil, err
	}

	transport := soap.NewHTTPTransport(endpoint, options...)
	invoker := soap.NewInvoker(transport, Namespace, soap.WithInvokerLogger(transport.Logger()))

	return NewService(invoker), nil
}

// RepositoryURL appends RepositoryPath to an absolute http(s) server URL
func RepositoryURL(serverURL string) (string, error) {
	parsed, err := url.Parse(strings.TrimSpace(serverURL))
	if err != nil {
		return "", fmt.Errorf("%w: invalid server URL: %v", ErrInvalidArgument, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", fmt.Errorf("%w: server URL must use http or https: %q", ErrInvalidArgument, serverURL)
	}
	if parsed.Host == "" {
		return "", fmt.Errorf("%w: server URL has no host: %q", ErrInvalidArgument, serverURL)
	}

	parsed.Path = strings.TrimSuffix(parsed.Path, "/") + RepositoryPath
	parsed.RawQuery = ""
	parsed.Fragment = ""

	return parsed.String(), nil
}
