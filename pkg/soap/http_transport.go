package soap

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Transport sends a request envelope and returns the parsed response envelope.
// Implementations own connection handling and authentication.
type Transport interface {
	RoundTrip(ctx context.Context, action string, envelope *Element) (*Element, error)
}

// TransportFunc adapts a function to the Transport interface
type TransportFunc func(ctx context.Context, action string, envelope *Element) (*Element, error)

// RoundTrip implements Transport
func (f TransportFunc) RoundTrip(ctx context.Context, action string, envelope *Element) (*Element, error) {
	return f(ctx, action, envelope)
}

// HTTPTransport posts SOAP 1.2 envelopes to a single service endpoint.
// It is safe for concurrent use.
type HTTPTransport struct {
	endpoint   string
	config     *ClientConfig
	httpClient *http.Client
	sessionID  uuid.UUID
}

// NewHTTPTransport creates a transport for the given endpoint URL
func NewHTTPTransport(endpoint string, options ...ClientOption) *HTTPTransport {
	config := DefaultConfig()

	for _, option := range options {
		option(config)
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: config.Timeout,
		}
	}

	return &HTTPTransport{
		endpoint:   endpoint,
		config:     config,
		httpClient: httpClient,
		sessionID:  uuid.New(),
	}
}

// Endpoint returns the service URL requests are posted to
func (t *HTTPTransport) Endpoint() string {
	return t.endpoint
}

// SessionID is sent as X-TFS-Session so the server can correlate calls from this transport
func (t *HTTPTransport) SessionID() uuid.UUID {
	return t.sessionID
}

// Logger returns the logger the transport was configured with
func (t *HTTPTransport) Logger() zerolog.Logger {
	return t.config.Logger
}

// RoundTrip implements Transport
func (t *HTTPTransport) RoundTrip(ctx context.Context, action string, envelope *Element) (*Element, error) {
	var body bytes.Buffer
	body.WriteString(xml.Header)
	if err := envelope.Encode(&body); err != nil {
		return nil, &CommunicationError{Operation: operationName(action), Err: fmt.Errorf("failed to encode envelope: %w", err)}
	}
	bodyBytes := body.Bytes()

	resp, err := t.send(ctx, action, bodyBytes)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &CommunicationError{Operation: operationName(action), StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	// Faults are delivered with status 500 and must reach the invoker.
	if resp.StatusCode >= 300 && resp.StatusCode != http.StatusInternalServerError {
		return nil, &CommunicationError{
			Operation:  operationName(action),
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("HTTP %d: %s", resp.StatusCode, truncate(string(respBody), 512)),
		}
	}

	parsed, err := ParseElementBytes(respBody)
	if err != nil {
		return nil, &CommunicationError{Operation: operationName(action), StatusCode: resp.StatusCode, Err: err}
	}

	return parsed, nil
}

func (t *HTTPTransport) send(ctx context.Context, action string, bodyBytes []byte) (*http.Response, error) {
	var lastErr error
	for attempt := 0; attempt <= t.config.RetryAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, &CommunicationError{Operation: operationName(action), Err: ctx.Err()}
			case <-time.After(t.config.RetryDelay):
			}
			t.config.Logger.Debug().
				Str("action", action).
				Int("attempt", attempt).
				Err(lastErr).
				Msg("retrying SOAP request")
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(bodyBytes))
		if err != nil {
			return nil, &CommunicationError{Operation: operationName(action), Err: fmt.Errorf("failed to create request: %w", err)}
		}

		for key, value := range t.config.DefaultHeaders {
			req.Header.Set(key, value)
		}
		req.Header.Set("Content-Type", fmt.Sprintf(`application/soap+xml; charset=utf-8; action="%s"`, action))
		req.Header.Set("SOAPAction", `"`+action+`"`)
		req.Header.Set("X-TFS-Session", t.sessionID.String())
		if t.config.UserAgent != "" {
			req.Header.Set("User-Agent", t.config.UserAgent)
		}
		if t.config.Username != "" {
			req.SetBasicAuth(t.config.Username, t.config.Password)
		}

		resp, err := t.httpClient.Do(req)
		if err != nil {
			lastErr = err
			if ctx.Err() != nil {
				break
			}
			continue
		}

		return resp, nil
	}

	return nil, &CommunicationError{Operation: operationName(action), Err: lastErr}
}

func operationName(action string) string {
	if i := strings.LastIndex(action, "/"); i >= 0 {
		return action[i+1:]
	}
	return action
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
