package soap

import (
	"net/http"
	"time"

	"github.com/flowbaker/tfvc/internal/version"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ClientOption represents an option for configuring the SOAP transport
type ClientOption func(*ClientConfig)

// ClientConfig holds the configuration for the HTTP transport
type ClientConfig struct {
	Timeout        time.Duration
	RetryAttempts  int
	RetryDelay     time.Duration
	DefaultHeaders map[string]string
	HTTPClient     *http.Client
	UserAgent      string
	Username       string
	Password       string
	Logger         zerolog.Logger
}

// DefaultConfig returns the default configuration. Retries are off unless WithRetry is given.
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		Timeout:        2 * time.Minute,
		RetryAttempts:  0,
		RetryDelay:     1 * time.Second,
		DefaultHeaders: map[string]string{},
		UserAgent:      "tfvc-go/" + version.GetShortVersion(),
		Logger:         log.Logger,
	}
}

// WithTimeout bounds one SOAP round trip, request write through response decode. It is
// ignored when WithHTTPClient supplies a client, which keeps its own timeout.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *ClientConfig) {
		c.Timeout = timeout
	}
}

// WithRetry re-posts the envelope up to attempts more times when the connection fails.
// Faults and HTTP error statuses are never retried. Negative attempts mean no retry.
func WithRetry(attempts int, delay time.Duration) ClientOption {
	return func(c *ClientConfig) {
		c.RetryAttempts = max(attempts, 0)
		c.RetryDelay = delay
	}
}

// WithHeader adds a header to every request. Content-Type, SOAPAction and X-TFS-Session
// are owned by the transport and override it.
func WithHeader(key, value string) ClientOption {
	return func(c *ClientConfig) {
		if c.DefaultHeaders == nil {
			c.DefaultHeaders = make(map[string]string)
		}
		c.DefaultHeaders[key] = value
	}
}

// WithHeaders is WithHeader for each entry of headers
func WithHeaders(headers map[string]string) ClientOption {
	return func(c *ClientConfig) {
		for key, value := range headers {
			WithHeader(key, value)(c)
		}
	}
}

// WithHTTPClient posts envelopes through httpClient, e.g. one carrying NTLM or TLS settings
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *ClientConfig) {
		c.HTTPClient = httpClient
	}
}

// WithUserAgent replaces the tfvc-go/<version> User-Agent. An empty value leaves the net/http default.
func WithUserAgent(userAgent string) ClientOption {
	return func(c *ClientConfig) {
		c.UserAgent = userAgent
	}
}

// WithCredentials sets basic authentication credentials
func WithCredentials(username, password string) ClientOption {
	return func(c *ClientConfig) {
		c.Username = username
		c.Password = password
	}
}

// WithLogger sets the logger used for request tracing
func WithLogger(logger zerolog.Logger) ClientOption {
	return func(c *ClientConfig) {
		c.Logger = logger
	}
}
